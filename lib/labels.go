package cc2svn

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Scratch files kept in the cache root while the view is switched
// between label config specs.
const (
	userSpecFile  = "user_config_spec_tmp_cc2svn"
	labelSpecFile = "label_config_spec_tmp_cc2svn"
)

// ReconcileLabels sweeps every pending label for versions the primary
// replay could not see: files removed or renamed before the current view
// was created. The view is pointed at one label at a time, every
// labelled version not already replayed is added straight to the tag
// tree, and the operator's own config spec is restored at the end,
// whatever happens in between.
func (c *Converter) ReconcileLabels(tool Tool) error {
	c.log.Info("Checking labels")

	if c.checkLabels.Size() == 0 {
		return nil
	}

	userSpec := filepath.Join(c.cache.Dir(), userSpecFile)
	if err := tool.CatConfigSpec(userSpec); err != nil {
		return err
	}
	defer func() {
		if err := tool.SetConfigSpec(userSpec); err != nil {
			c.log.Errorf("restoring config spec: %v", err)
		}
	}()

	pending := make([]string, 0, c.checkLabels.Size())
	for _, value := range c.checkLabels.Values() {
		pending = append(pending, value.(string))
	}

	for _, label := range pending {
		if err := c.reconcileLabel(tool, label); err != nil {
			if errors.Is(err, ErrAborted) {
				return err
			}
			// The label stays pending, a later run picks it up again.
			c.log.Errorf("label %s: %v", label, err)
			continue
		}
		c.checkLabels.Remove(label)
	}
	return nil
}

// setLabelSpec points the view at one label: anything checked out, then
// the labelled version, then the empty baseline.
func (c *Converter) setLabelSpec(tool Tool, label string) error {
	specFile := filepath.Join(c.cache.Dir(), labelSpecFile)
	spec := "element * CHECKEDOUT\nelement * " + label + "\nelement * /main/0\n"
	if err := os.WriteFile(specFile, []byte(spec), 0o666); err != nil {
		return err
	}
	return tool.SetConfigSpec(specFile)
}

func (c *Converter) reconcileLabel(tool Tool, label string) error {
	if err := c.setLabelSpec(tool, label); err != nil {
		return err
	}

	listing, err := c.cache.LabelListing(label)
	if err != nil {
		return err
	}
	file, err := os.Open(listing)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		element := strings.TrimSpace(scanner.Text())
		if element == "" {
			continue
		}
		if err := c.reconcileElement(label, element); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// reconcileElement decides what to do with one path@@version from a
// label listing. Versions the replay already handled are skipped.
// Anything else that turns out to be a file version gets added to the
// tag tree and fanned out to the other labels it carries; everything
// else is marked visited so it is never looked at again.
func (c *Converter) reconcileElement(label, element string) error {
	path, revision, found := strings.Cut(element, "@@")
	if !found {
		c.log.Warnf("label content entry %s has no version after @@", element)
		return nil
	}
	if path == "." {
		return nil
	}
	path = NormalizePath(path)
	revision = strings.ReplaceAll(revision, "\\", "/")

	key := path + "@@" + revision
	if c.visited.Contains(key) || c.ignored(path) {
		return nil
	}

	details, err := c.cache.Describe(path + "@@" + revision)
	if err != nil {
		return err
	}

	// Each describe output is one complete history event, so it gets a
	// parser of its own rather than sharing the replay parser's
	// partial-line state.
	rec, perr := NewHistoryParser().ParseLine(details)
	if perr != nil {
		c.log.Errorf("describe %s: %v", key, perr)
	}
	if perr != nil || rec == nil || rec.Kind != ElemFile {
		c.visited.Add(key)
		return nil
	}

	if !c.config.Since.IsZero() {
		if rec.Time.Before(c.config.Since) {
			c.dump.Disable()
		} else {
			c.dump.Enable()
		}
	}

	c.log.Infof("Found file %s", key)
	c.revProps.Apply(c.trans, rec)
	c.writeRevision()

	fileSet := c.tagFileSet(label)
	c.createParentDirs(fileSet, rec.Path)

	tagPath := fileSet.AbsolutePath(rec.Path)
	if err := c.emitFile(rec, tagPath, "add", false); err != nil {
		return err
	}
	fileSet.Add(rec.Path)

	c.propagateLabels(rec, tagPath, label, false)
	return c.dump.Err()
}
