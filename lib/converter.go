package cc2svn

import (
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/sirupsen/logrus"
)

// ConverterConfig carries the policy knobs for one conversion run.
type ConverterConfig struct {
	Labels      []string // label allow-list, nil converts every label
	Branches    []string // branch allow-list, nil converts every branch
	IgnoredDirs []string // path prefixes dropped from the conversion
	AutoProps   *AutoProps

	LinksBranch string // branch receiving symbolic link snapshots
	UUID        string

	Since time.Time // inclusive cutoff, zero keeps the whole history

	CreateTopDirs         bool
	TolerateMissingParent bool
}

// Converter replays ClearCase change records, oldest first, into a
// subversion dump stream. Branch and tag trees are modelled as ordered
// file sets so every record can be classified as an add, a change, or a
// branch/tag creation before anything is written.
type Converter struct {
	dump   *DumpWriter
	cache  *Cache
	trans  *Transcoder
	prompt Prompter
	log    *logrus.Logger

	config ConverterConfig

	branchSets map[string]*FileSet
	tagSets    map[string]*FileSet

	// visited holds the path@@version of every replayed record, so a
	// resumed run and the label pass know what the dump already has.
	visited *linkedhashset.Set

	// checkLabels names the labels the reconciliation pass still owes a
	// sweep. With an allow-list it starts as the whole list, otherwise it
	// accumulates the labels seen during replay.
	checkLabels *linkedhashset.Set

	revnum   int
	revProps *RevisionProps
}

func NewConverter(dump *DumpWriter, cache *Cache, trans *Transcoder, config ConverterConfig, prompt Prompter, log *logrus.Logger) *Converter {
	conv := &Converter{
		dump:        dump,
		cache:       cache,
		trans:       trans,
		prompt:      prompt,
		log:         log,
		config:      config,
		branchSets:  make(map[string]*FileSet),
		tagSets:     make(map[string]*FileSet),
		visited:     linkedhashset.New(),
		checkLabels: linkedhashset.New(),
		revnum:      1,
		revProps:    NewRevisionProps(),
	}
	for _, label := range config.Labels {
		conv.checkLabels.Add(label)
	}
	return conv
}

// Bootstrap starts a fresh dump: the preamble, then, when configured, an
// initial revision holding the top-level branch and tag directories. With
// a cutoff date configured the stream starts suppressed and switches on
// at the first record inside the window.
func (c *Converter) Bootstrap() error {
	c.dump.WritePreamble(c.config.UUID)

	if !c.config.Since.IsZero() {
		c.dump.Disable()
	}
	if c.config.CreateTopDirs {
		c.writeRevision()
		c.dump.WriteDir(SvnBranchPath(""))
		c.dump.WriteDir(SvnTagPath(""))
	}
	return c.dump.Err()
}

// writeRevision emits one revision header carrying the current revision
// properties and advances the counter. Callers only invoke it when at
// least one node write follows, so no revision number is spent on a
// record that contributes nothing.
func (c *Converter) writeRevision() {
	c.dump.WriteRevision(c.revnum, c.revProps.Block())
	c.revnum++
}

func (c *Converter) ignored(path string) bool {
	if HasOneOfPrefixes(path, c.config.IgnoredDirs) {
		c.log.Infof("ignored: %s", path)
		return true
	}
	return false
}

// Process replays one change record into the dump. Only creation events
// matter here:
//
//	checkin   version | directory version
//	mkbranch  version | directory version
//	mkelem    version | directory version   (version 0)
//	mkslink   symbolic link
//
// Everything else lshistory reports (checkout, lock, branch and element
// creation without a version) falls through untouched.
func (c *Converter) Process(rec *ChangeRecord) error {
	if rec.Path == "." {
		return nil
	}
	// Already in the dump from a previous, resumed run.
	if c.visited.Contains(rec.Addressed()) {
		return nil
	}

	branch := rec.Branch()
	if c.config.Branches != nil && Index(c.config.Branches, branch) == -1 {
		return nil
	}
	if c.ignored(rec.Path) {
		return nil
	}

	if !c.config.Since.IsZero() && c.dump.Disabled() && !rec.Time.Before(c.config.Since) {
		c.dump.Enable()
	}

	c.revProps.Apply(c.trans, rec)

	switch {
	case rec.Kind == ElemFile && rec.Op.Creates():
		return c.processFile(rec, branch)
	case rec.Kind == ElemDirectory && rec.Op.Creates():
		c.processDir(rec, branch)
	case rec.Kind == ElemSymlink && rec.Op == OpMkSymlink:
		return c.processSymlink(rec)
	}
	return c.dump.Err()
}

func (c *Converter) processFile(rec *ChangeRecord, branch string) error {
	branchSet, known := c.branchSets[branch]
	if !known {
		var err error
		if branchSet, err = c.createBranch(rec, branch); err != nil {
			return err
		}
	}

	svnPath := branchSet.AbsolutePath(rec.Path)
	switch {
	case !branchSet.Contains(rec.Path):
		c.writeRevision()
		c.createParentDirs(branchSet, rec.Path)
		if err := c.emitFile(rec, svnPath, "add", false); err != nil {
			return err
		}
		branchSet.Add(rec.Path)
	case rec.Version != "0":
		c.writeRevision()
		if err := c.emitFile(rec, svnPath, "change", false); err != nil {
			return err
		}
	default:
		// Version 0 of a file the branch already carries: the element was
		// freshly branched and has no content of its own yet.
	}

	c.propagateLabels(rec, svnPath, "", true)
	return c.dump.Err()
}

// createBranch materializes a branch the dump has not seen. A top-level
// branch starts empty; a child branch starts as a copy of its parent's
// current tree, approximating the content the source view would have
// shown at that instant. The creation takes a revision of its own, ahead
// of the revision carrying the record that triggered it.
func (c *Converter) createBranch(rec *ChangeRecord, branch string) (*FileSet, error) {
	copyfromRev := c.revnum - 1

	if parent, ok := rec.ParentBranch(); ok {
		if parentSet, found := c.branchSets[parent]; found {
			branchSet := parentSet.Copy(SvnBranchPath(branch))
			c.branchSets[branch] = branchSet
			c.writeRevision()
			c.dump.WriteCopy("dir", parentSet.Root, copyfromRev, branchSet.Root)
			return branchSet, nil
		}

		c.log.Errorf("ClearCase history is corrupted: branch %s appeared before its parent %s for %s",
			branch, parent, rec.Addressed())
		if !c.config.TolerateMissingParent &&
			!c.prompt.YesNo("Create branch anyway and ignore the error? (or exit)") {
			return nil, fmt.Errorf("%w: %s needs %s", ErrMissingParentBranch, branch, parent)
		}
	}

	branchSet := NewFileSet(SvnBranchPath(branch))
	c.branchSets[branch] = branchSet
	c.writeRevision()
	c.dump.WriteDir(branchSet.Root)
	return branchSet, nil
}

func (c *Converter) processDir(rec *ChangeRecord, branch string) {
	branchSet, known := c.branchSets[branch]
	if !known {
		// Branches materialize once they hold a file. Until then there is
		// nowhere to put the directory.
		return
	}

	if !branchSet.Contains(rec.Path) {
		c.writeRevision()
		c.createParentDirs(branchSet, rec.Path)
		c.dump.WriteDir(branchSet.AbsolutePath(rec.Path))
		branchSet.Add(rec.Path)
	}

	// Directory versions are remembered so label reconciliation does not
	// mistake them for missing files.
	c.visited.Add(rec.Addressed())
}

// processSymlink records the current target of a symbolic link. Links
// carry no usable version history, so the latest target lands on the
// configured links branch as a small "link <target>" file.
func (c *Converter) processSymlink(rec *ChangeRecord) error {
	branch := c.config.LinksBranch
	branchSet, known := c.branchSets[branch]
	if !known {
		c.log.Warnf("The branch %s does not exist, skipping the link %s", branch, rec.Path)
		return nil
	}

	svnPath := branchSet.AbsolutePath(rec.Path)
	c.writeRevision()
	if branchSet.Contains(rec.Path) {
		return c.emitFile(rec, svnPath, "change", true)
	}

	c.createParentDirs(branchSet, rec.Path)
	if err := c.emitFile(rec, svnPath, "add", true); err != nil {
		return err
	}
	branchSet.Add(rec.Path)
	return nil
}

// emitFile writes one file node, pulling content through the cache and
// attaching the configured auto-props. Symlink stand-ins get svn:special
// on their first appearance.
func (c *Converter) emitFile(rec *ChangeRecord, svnPath, action string, symlink bool) error {
	var contentFile string
	var err error
	if symlink {
		contentFile, err = c.cache.FetchSymlink(rec.Path, rec.Revision)
	} else {
		contentFile, err = c.cache.Fetch(rec.Path, rec.Revision)
	}
	if err != nil {
		return err
	}

	props := c.config.AutoProps.Match(svnPath)
	if symlink && action == "add" {
		props = props.Copy()
		props.Set("svn:special", "*")
	}
	return c.dump.WriteFile(action, svnPath, props, contentFile)
}

// createParentDirs emits directory nodes for every missing ancestor of
// the path, outermost first, and marks them in the file set.
func (c *Converter) createParentDirs(fileSet *FileSet, p string) {
	var missing []string
	for dir := path.Dir(p); dir != "." && dir != "/" && !fileSet.Contains(dir); dir = path.Dir(dir) {
		missing = append(missing, dir)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		c.dump.WriteDir(fileSet.AbsolutePath(missing[i]))
		fileSet.Add(missing[i])
	}
}

// tagFileSet returns the file set for a tag root, creating the root
// directory node inside the current revision on first use.
func (c *Converter) tagFileSet(label string) *FileSet {
	fileSet, ok := c.tagSets[label]
	if !ok {
		fileSet = NewFileSet(SvnTagPath(label))
		c.tagSets[label] = fileSet
		c.dump.WriteDir(fileSet.Root)
	}
	return fileSet
}

// propagateLabels copies the just-written node into every tag tree the
// record's labels name, one revision per tag so each copy hangs off a
// stable source revision. The skip argument keeps the reconciliation
// pass from requeueing the label it is currently expanding.
func (c *Converter) propagateLabels(rec *ChangeRecord, fromPath, skip string, collect bool) {
	c.visited.Add(rec.Addressed())

	copyfromRev := c.revnum - 1
	for _, label := range rec.Labels {
		if label == skip {
			continue
		}
		if c.config.Labels != nil && Index(c.config.Labels, label) == -1 {
			continue
		}

		c.writeRevision()
		fileSet := c.tagFileSet(label)
		c.createParentDirs(fileSet, rec.Path)
		c.dump.WriteCopy("file", fromPath, copyfromRev, fileSet.AbsolutePath(rec.Path))

		if collect && c.config.Labels == nil {
			c.checkLabels.Add(label)
		}
	}
}

// Snapshot captures the replay state for run-state persistence.
func (c *Converter) Snapshot() *RunState {
	state := &RunState{
		Revision: c.revnum,
		Branches: snapshotSets(c.branchSets),
		Tags:     snapshotSets(c.tagSets),
	}
	for _, value := range c.visited.Values() {
		state.Visited = append(state.Visited, value.(string))
	}
	for _, value := range c.checkLabels.Values() {
		state.Labels = append(state.Labels, value.(string))
	}
	return state
}

// RestoreSnapshot reloads a previous run's state so replay can continue
// appending to the existing dump. Replayed records are skipped through
// the visited set, and with a cutoff date the stream starts suppressed
// again until the first new record inside the window.
func (c *Converter) RestoreSnapshot(state *RunState) {
	c.revnum = state.Revision
	c.branchSets = restoreSets(state.Branches)
	c.tagSets = restoreSets(state.Tags)

	c.visited = linkedhashset.New()
	for _, addressed := range state.Visited {
		c.visited.Add(addressed)
	}
	c.checkLabels = linkedhashset.New()
	for _, label := range state.Labels {
		c.checkLabels.Add(label)
	}

	if !c.config.Since.IsZero() {
		c.dump.Disable()
	}
}

func snapshotSets(sets map[string]*FileSet) []BranchFiles {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	snap := make([]BranchFiles, 0, len(names))
	for _, name := range names {
		fileSet := sets[name]
		snap = append(snap, BranchFiles{Name: name, Root: fileSet.Root, Paths: fileSet.Paths()})
	}
	return snap
}

func restoreSets(snap []BranchFiles) map[string]*FileSet {
	sets := make(map[string]*FileSet, len(snap))
	for _, entry := range snap {
		fileSet := NewFileSet(entry.Root)
		for _, path := range entry.Paths {
			fileSet.Add(path)
		}
		sets[entry.Name] = fileSet
	}
	return sets
}
