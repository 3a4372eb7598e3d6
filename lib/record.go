package cc2svn

import (
	"time"
)

// OpKind classifies the cleartool operation behind a history event.
type OpKind int

const (
	OpOther OpKind = iota
	OpCheckin
	OpMkBranch
	OpMkElem
	OpMkSymlink
)

var opKinds = map[string]OpKind{
	"checkin":  OpCheckin,
	"mkbranch": OpMkBranch,
	"mkelem":   OpMkElem,
	"mkslink":  OpMkSymlink,
}

// GetOpKind maps a cleartool operation name to its kind. Operations the
// replayer has no interest in (checkout, lock, rmver, ...) map to OpOther.
func GetOpKind(op string) OpKind {
	if kind, ok := opKinds[op]; ok {
		return kind
	}
	return OpOther
}

// Creates reports whether the operation produces element content, i.e. is
// one of checkin, mkbranch or mkelem.
func (o OpKind) Creates() bool {
	return o == OpCheckin || o == OpMkBranch || o == OpMkElem
}

// ElementKind classifies what a history event's version refers to.
// Events about branches and bare elements carry no content and come
// through as ElemOther.
type ElementKind int

const (
	ElemOther ElementKind = iota
	ElemFile
	ElemDirectory
	ElemSymlink
)

var elementKinds = map[string]ElementKind{
	"version":           ElemFile,
	"directory version": ElemDirectory,
	"symbolic link":     ElemSymlink,
}

// GetElementKind maps a cleartool element type string to its kind.
func GetElementKind(kind string) ElementKind {
	if result, ok := elementKinds[kind]; ok {
		return result
	}
	return ElemOther
}

// ChangeRecord is one parsed history event.
type ChangeRecord struct {
	Time     time.Time
	Path     string // element path relative to the vob root, slash separated
	Revision string // version id, e.g. "/main/dev/7"
	Op       OpKind
	Kind     ElementKind
	Author   string
	Comment  string
	Labels   []string

	// Derived from Revision: the branch names between the leading slash
	// and the trailing version number, and that number as a string.
	BranchNames []string
	Version     string
}

// Branch returns the name of the branch the version lives on, or
// "unknown" when the version id carried no branch names.
func (r *ChangeRecord) Branch() string {
	if len(r.BranchNames) > 0 {
		return r.BranchNames[len(r.BranchNames)-1]
	}
	return "unknown"
}

// ParentBranch returns the branch this version's branch was spawned from,
// or false for a top-level branch.
func (r *ChangeRecord) ParentBranch() (string, bool) {
	if len(r.BranchNames) < 2 {
		return "", false
	}
	return r.BranchNames[len(r.BranchNames)-2], true
}

// TopLevel reports whether the version sits on a branch with no parent.
func (r *ChangeRecord) TopLevel() bool {
	return len(r.BranchNames) < 2
}

// Addressed returns the version-extended name cleartool uses to address
// this exact version of the element.
func (r *ChangeRecord) Addressed() string {
	return r.Path + "@@" + r.Revision
}
