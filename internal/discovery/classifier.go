package discovery

import (
	"path/filepath"
	"slices"
	"strings"
)

// ClassifyFile determines the file type from the file name's extension
func ClassifyFile(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".sql":
		return FileTypeScript
	case ".pks":
		return FileTypePackageSpec
	case ".pkb":
		return FileTypePackageBody
	case ".pls", ".prc", ".fnc", ".trg":
		return FileTypeUnit
	default:
		return FileTypeUnknown
	}
}

// ClassifyPath determines file type from a full path
func ClassifyPath(path string) FileType {
	return ClassifyFile(filepath.Base(path))
}

// HasExtension reports whether filename ends in one of exts (case-insensitive).
// An empty exts falls back to DefaultExtensions.
func HasExtension(filename string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return ext != "" && slices.ContainsFunc(exts, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}
