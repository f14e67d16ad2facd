package discovery

import "time"

// DiscoveredFile represents a script file discovered during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root
	Type         FileType  // Derived from the extension
	ModTime      time.Time // Last modification time
}

// FileType indicates what kind of Oracle source a file holds
type FileType int

const (
	FileTypeScript      FileType = iota // .sql: SQL*Plus script
	FileTypePackageSpec                 // .pks
	FileTypePackageBody                 // .pkb
	FileTypeUnit                        // .pls .prc .fnc .trg: standalone PL/SQL unit
	FileTypeUnknown
)

// String returns a string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeScript:
		return "script"
	case FileTypePackageSpec:
		return "package_spec"
	case FileTypePackageBody:
		return "package_body"
	case FileTypeUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// DefaultExtensions lists the file extensions scanned when none are configured.
var DefaultExtensions = []string{".sql", ".pls", ".pks", ".pkb", ".prc", ".fnc", ".trg"}
