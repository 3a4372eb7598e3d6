package cc2svn

import (
	"errors"
)

var (
	ErrMissingField        = errors.New("missing required field")
	ErrCorruptRecord       = errors.New("corrupt history record")
	ErrMissingParentBranch = errors.New("parent branch missing")
	ErrAborted             = errors.New("aborted by user")
	ErrUnknownEncoding     = errors.New("unknown encoding")
	ErrNotSymlink          = errors.New("not a symbolic link")
)
