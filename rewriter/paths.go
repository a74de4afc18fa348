package rewriter

import (
	"path/filepath"
	"strings"
)

// HasPathSuffix reports whether the slash-separated path s
// ends with the elements in suffix.
func HasPathSuffix(s, suffix string) bool {
	if len(s) == len(suffix) {
		return s == suffix
	}
	if suffix == "" {
		return true
	}
	if len(s) > len(suffix) {
		if suffix[0] == '/' || s[len(s)-len(suffix)-1] == '/' {
			return s[len(s)-len(suffix):] == suffix
		}
	}
	return false
}

// isExcludedDir reports whether a directory with the given base name
// must not be descended into.
func isExcludedDir(name string, markers []string) bool {
	for _, m := range markers {
		if name == m {
			return true
		}
	}
	return false
}

// hasExcludedElem reports whether any element of the slash-separated
// relative path rel is one of markers.
func hasExcludedElem(rel string, markers []string) bool {
	for _, elem := range strings.Split(rel, "/") {
		if isExcludedDir(elem, markers) {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
