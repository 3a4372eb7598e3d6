package cc2svn

// Small helper functions.

import (
	"path"
	"strings"
)

// IndexFunc returns the first index i satisfying f(s[i]),
// or -1 if none do.
func IndexFunc[E any](s []E, f func(E) bool) int {
	for i, v := range s {
		if f(v) {
			return i
		}
	}
	return -1
}

// Index returns the first index of the array satisfying s[i] == e,
// or -1 if none do.
func Index[E comparable](s []E, e E) int {
	return IndexFunc(s, func(x E) bool { return x == e })
}

// HasOneOfPrefixes returns true if the string has one of the listed prefixes.
func HasOneOfPrefixes(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// NormalizePath rewrites a cleartool element path into the slash-separated
// cleaned form used throughout: backslashes become slashes, redundant
// separators and dot segments collapse.
func NormalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
