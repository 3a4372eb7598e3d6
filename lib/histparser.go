package cc2svn

import (
	"fmt"
	"strings"
	"time"
)

// HistoryParser assembles cleartool -fmt events from physical lines that
// arrive in reverse order. A line with fewer than ten fields is the tail
// of an event whose beginning has not arrived yet; it is buffered and
// glued below the next line.
type HistoryParser struct {
	pending string
}

func NewHistoryParser() *HistoryParser {
	return &HistoryParser{}
}

// ParseLine consumes one physical line. It returns a record once an event
// is complete, (nil, nil) while one is still accumulating, and an error
// wrapping ErrCorruptRecord for input that can never form an event. The
// corrupt input is dropped and parsing continues cleanly with the next
// line.
func (p *HistoryParser) ParseLine(line string) (*ChangeRecord, error) {
	if len(p.pending) > 0 {
		// Reading backwards: the buffered text is the tail of this event.
		line = line + "\n" + p.pending
	}

	fields := strings.Split(line, HistoryFieldSeparator)
	if len(fields) < historyFieldCount {
		p.pending = line
		return nil, nil
	}
	p.pending = ""
	if len(fields) > historyFieldCount {
		return nil, fmt.Errorf("%w: %s", ErrCorruptRecord, line)
	}

	when, err := time.ParseInLocation(CCDateLayout, fields[0], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q in: %s", ErrCorruptRecord, fields[0], line)
	}

	rec := &ChangeRecord{
		Time:     when,
		Path:     NormalizePath(fields[1]),
		Revision: strings.ReplaceAll(fields[2], "\\", "/"),
		Op:       GetOpKind(fields[3]),
		Labels:   parseParenList(fields[4]),
		Kind:     GetElementKind(fields[6]),
		Author:   fields[7],
		Comment:  fields[8],
	}

	// Attributes ride along appended to the commit message.
	for _, attr := range parseParenList(fields[5]) {
		rec.Comment += "\n" + attr
	}

	rec.BranchNames, rec.Version = splitRevision(rec.Revision)

	return rec, nil
}

// SynthesizeCreate builds the event an element would have logged when it
// was created, for files that are visible in the view but absent from the
// recorded history of a branch.
func (p *HistoryParser) SynthesizeCreate(path, revision string) *ChangeRecord {
	when, _ := time.ParseInLocation(CCDateLayout, synthCreateStamp, time.UTC)
	rec := &ChangeRecord{
		Time:     when,
		Path:     path,
		Revision: revision,
		Op:       OpMkElem,
		Kind:     ElemFile,
	}
	rec.BranchNames, rec.Version = splitRevision(revision)
	return rec
}

// parseParenList parses cleartool's "(one, two, three)" list syntax;
// anything else, including an empty field, is an empty list.
func parseParenList(s string) []string {
	if len(s) > 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return strings.Split(s[1:len(s)-1], ", ")
	}
	return nil
}

// splitRevision derives the branch names and the version number from a
// version id such as "/main/dev/7". Backslash separators have already
// been normalized away by ParseLine.
func splitRevision(revision string) (branches []string, version string) {
	parts := strings.Split(revision, "/")
	if len(parts) >= 2 {
		branches = parts[1 : len(parts)-1]
	}
	return branches, parts[len(parts)-1]
}
