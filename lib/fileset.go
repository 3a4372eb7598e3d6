package cc2svn

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// SvnBranchPath returns the dump path of a branch root. The empty name
// addresses the shared branches container itself.
func SvnBranchPath(branch string) string {
	if branch == "" {
		return "branches"
	}
	return "branches/" + branch
}

// SvnTagPath returns the dump path of a tag root.
func SvnTagPath(tag string) string {
	if tag == "" {
		return "tags"
	}
	return "tags/" + tag
}

// FileSet is the materialized membership of one branch or tag root: every
// file and directory path known to exist under that root in the emitted
// stream so far. Membership decides add versus change, and which parent
// directories still need creating.
//
// Insertion order is preserved so that persisted state and branch copies
// replay byte-identically.
type FileSet struct {
	Root  string
	paths *linkedhashset.Set
}

func NewFileSet(root string) *FileSet {
	return &FileSet{Root: root, paths: linkedhashset.New()}
}

func (fs *FileSet) Contains(path string) bool {
	return fs.paths.Contains(path)
}

func (fs *FileSet) Add(path string) {
	fs.paths.Add(path)
}

// AbsolutePath prefixes a vob-relative path with the set's root.
func (fs *FileSet) AbsolutePath(path string) string {
	return fs.Root + "/" + path
}

// Copy snapshots the membership under a new root, for branches created by
// copying their parent wholesale.
func (fs *FileSet) Copy(root string) *FileSet {
	clone := NewFileSet(root)
	fs.paths.Each(func(_ int, value interface{}) {
		clone.paths.Add(value)
	})
	return clone
}

// Paths lists the members in insertion order.
func (fs *FileSet) Paths() []string {
	out := make([]string, 0, fs.paths.Size())
	fs.paths.Each(func(_ int, value interface{}) {
		out = append(out, value.(string))
	})
	return out
}

func (fs *FileSet) Len() int {
	return fs.paths.Size()
}
