package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover recursively finds all script files in the given directory whose
// extension is listed in exts.  The result is sorted by path.
func Discover(rootPath string, exts []string) ([]DiscoveredFile, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Check if directory exists
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absRoot)
	}

	var files []DiscoveredFile

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !HasExtension(path, exts) {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		files = append(files, DiscoveredFile{
			Path:         path,
			RelativePath: relPath,
			Type:         ClassifyFile(path),
			ModTime:      info.ModTime(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

/*
 * DiscoverPaths resolves command-line arguments into script files.  A
 * directory is walked with Discover; a regular file is taken as given, even
 * when its extension is not in exts.  Files reached twice are reported once,
 * in first-seen order.
 */
func DiscoverPaths(paths []string, exts []string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	seen := make(map[string]bool)

	add := func(f DiscoveredFile) {
		if !seen[f.Path] {
			seen[f.Path] = true
			files = append(files, f)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path not found: %s", p)
			}
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		if !info.IsDir() {
			add(DiscoveredFile{
				Path:         abs,
				RelativePath: filepath.Base(abs),
				Type:         ClassifyFile(abs),
				ModTime:      info.ModTime(),
			})
			continue
		}

		found, err := Discover(abs, exts)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}
