package cc2svn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/termie/go-shutil"
)

// Cache keeps everything retrieved from ClearCase on disk: content files
// keyed by element version, descr output, and label listings. Entries
// never expire, so a re-run only pays for versions it has not seen
// before.
type Cache struct {
	dir       string
	vobDir    string
	zeroCheck bool
	tool      Tool
	prompt    Prompter
	log       *logrus.Logger
}

func NewCache(dir, vobDir string, zeroCheck bool, tool Tool, prompt Prompter, log *logrus.Logger) *Cache {
	return &Cache{
		dir:       dir,
		vobDir:    vobDir,
		zeroCheck: zeroCheck,
		tool:      tool,
		prompt:    prompt,
		log:       log,
	}
}

// Dir returns the cache root, which also hosts the config spec scratch
// files used while reconciling labels.
func (c *Cache) Dir() string { return c.dir }

// entryPath maps an element version to its cache location. The version id
// nests under the element path, so all versions of one element share a
// directory tree.
func (c *Cache) entryPath(path, revision string) string {
	entry := filepath.Join(c.dir, filepath.FromSlash(path))
	if revision != "" {
		entry = filepath.Join(entry, filepath.FromSlash(revision))
	}
	return entry
}

// present reports whether a cache entry exists. Under the zero-size
// policy an empty entry counts as absent, as does a directory squatting
// on the entry path; both are removed so the fetch can recreate them.
func (c *Cache) present(localFile string) (bool, error) {
	info, err := os.Stat(localFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !c.zeroCheck {
		return true, nil
	}
	if info.IsDir() {
		if err := os.RemoveAll(localFile); err != nil {
			return false, err
		}
		return false, nil
	}
	if info.Size() > 0 {
		return true, nil
	}

	os.Chmod(localFile, 0o600)
	if err := os.Remove(localFile); err != nil {
		return false, err
	}
	return false, nil
}

// placeholder leaves an empty entry behind an ignored failure so the dump
// keeps its shape and the entry is retried on a later run under the
// zero-size policy.
func (c *Cache) placeholder(localFile string) error {
	if _, err := os.Stat(localFile); err == nil {
		return nil
	}
	file, err := os.Create(localFile)
	if err != nil {
		return err
	}
	return file.Close()
}

// Fetch returns the local content file for one element version, pulling
// it through cleartool on a cache miss.
func (c *Cache) Fetch(path, revision string) (string, error) {
	element := path
	if revision != "" {
		element += "@@" + revision
	}
	localFile := c.entryPath(path, revision)

	c.log.Infof("%s %s", path, revision)

	if err := os.MkdirAll(filepath.Dir(localFile), 0o777); err != nil {
		return "", err
	}
	have, err := c.present(localFile)
	if err != nil || have {
		return localFile, err
	}

	ignored, err := WithRetry(c.prompt, c.log, "cleartool get "+element, func() error {
		return c.tool.Fetch(localFile, element)
	})
	if err != nil {
		return "", err
	}
	if ignored {
		if perr := c.placeholder(localFile); perr != nil {
			return "", perr
		}
	}
	return localFile, nil
}

// FetchSymlink returns the cached "link target" stand-in subversion uses
// for symbolic links. The target is read from the live view.
func (c *Cache) FetchSymlink(path, revision string) (string, error) {
	localFile := c.entryPath(path, revision)

	c.log.Infof("%s %s", path, revision)

	if err := os.MkdirAll(filepath.Dir(localFile), 0o777); err != nil {
		return "", err
	}
	have, err := c.present(localFile)
	if err != nil || have {
		return localFile, err
	}

	ignored, err := WithRetry(c.prompt, c.log, "readlink "+path, func() error {
		target, rerr := os.Readlink(filepath.Join(c.vobDir, filepath.FromSlash(path)))
		if rerr != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotSymlink, path, rerr)
		}
		return os.WriteFile(localFile, []byte("link "+target), 0o666)
	})
	if err != nil {
		return "", err
	}
	if ignored {
		if perr := c.placeholder(localFile); perr != nil {
			return "", perr
		}
	}
	return localFile, nil
}

// Populate seeds the cache for one element straight from the view,
// bypassing cleartool. The per-branch mode uses this while the view is
// already sitting on the right config spec.
func (c *Cache) Populate(path, revision string) (string, error) {
	ccFile := filepath.Join(c.vobDir, filepath.FromSlash(path))
	localFile := c.entryPath(path, revision)

	c.log.Infof("%s %s", path, revision)

	if err := os.MkdirAll(filepath.Dir(localFile), 0o777); err != nil {
		return "", err
	}
	have, err := c.present(localFile)
	if err != nil || have {
		return localFile, err
	}

	ignored, err := WithRetry(c.prompt, c.log, "copy "+path, func() error {
		_, cerr := shutil.Copy(ccFile, localFile, false)
		return cerr
	})
	if err != nil {
		return "", err
	}
	if ignored {
		if perr := c.placeholder(localFile); perr != nil {
			return "", perr
		}
	}
	return localFile, nil
}

// Describe returns the formatted history event for a version-extended
// element name, cached beside the content entries.
func (c *Cache) Describe(element string) (string, error) {
	localFile := filepath.Join(c.dir, filepath.FromSlash(strings.ReplaceAll(element, "@@", "/"))+"_descr")
	if err := os.MkdirAll(filepath.Dir(localFile), 0o777); err != nil {
		return "", err
	}

	if info, err := os.Stat(localFile); err == nil && info.Size() > 0 {
		data, rerr := os.ReadFile(localFile)
		if rerr != nil {
			return "", rerr
		}
		return string(data), nil
	}

	var details string
	if _, err := WithRetry(c.prompt, c.log, "cleartool descr "+element, func() error {
		out, derr := c.tool.Describe(element)
		if derr != nil {
			return derr
		}
		details = out
		return nil
	}); err != nil {
		return "", err
	}

	if err := os.WriteFile(localFile, []byte(details), 0o666); err != nil {
		return "", err
	}
	return details, nil
}

// LabelListing returns the file listing every version carrying the label,
// generating it on first use. An existing listing is reused as-is.
func (c *Cache) LabelListing(label string) (string, error) {
	localFile := filepath.Join(c.dir, label)
	if _, err := os.Stat(localFile); err == nil {
		return localFile, nil
	}

	ignored, err := WithRetry(c.prompt, c.log, "cleartool find version("+label+")", func() error {
		return c.tool.FindLabeled(localFile, label)
	})
	if err != nil {
		return "", err
	}
	if ignored {
		if perr := c.placeholder(localFile); perr != nil {
			return "", perr
		}
	}
	return localFile, nil
}
