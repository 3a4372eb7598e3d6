package cc2svn

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// emptyProps is the shared block for files with no matching pattern.
// Callers must Copy it before mutating.
var emptyProps = NewProperties()

// autoPropsEntry pairs one filename pattern with the properties it grants.
type autoPropsEntry struct {
	pattern string
	props   *Properties
}

// AutoProps maps filename patterns to svn properties, in the spirit of
// the [auto-props] section of a subversion client config. Patterns apply
// to the base name only; the first match wins, in file order.
type AutoProps struct {
	entries []autoPropsEntry
}

// LoadAutoProps reads "pattern = key=value;key2=value2" lines from the
// given file. Lines without a " = " separator are skipped.
func LoadAutoProps(filename string) (*AutoProps, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ap := &AutoProps{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		pattern, spec, found := strings.Cut(line, " = ")
		if !found {
			continue
		}
		props := NewProperties()
		for _, avp := range strings.Split(spec, ";") {
			key, value, _ := strings.Cut(avp, "=")
			props.Set(key, value)
		}
		ap.entries = append(ap.entries, autoPropsEntry{pattern: pattern, props: props})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ap, nil
}

// Match returns the properties for a path's base name, or the shared
// empty block when nothing matches.
func (ap *AutoProps) Match(filepath string) *Properties {
	base := path.Base(filepath)
	for _, entry := range ap.entries {
		if ok, _ := path.Match(entry.pattern, base); ok {
			return entry.props
		}
	}
	return emptyProps
}
