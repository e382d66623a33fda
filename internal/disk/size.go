package disk

import (
	"io/fs"
	"path/filepath"
)

// PathStats contains the result of sizing one directory tree
type PathStats struct {
	Root      string // Directory actually walked (symlinks resolved)
	UsedBytes uint64 // Total bytes of regular files in the tree
	FileCount int64  // Number of regular files counted
	Skipped   int64  // Entries that could not be read or stat'ed
}

// ScanDir walks the tree rooted at path and sums the size of every regular
// file in it. Symlinks are never followed, so a link back to an ancestor
// cannot loop. Entries that cannot be read are counted in Skipped
// and do not fail the scan.
//
// A root that is itself a symlink is resolved first and its target walked.
// The only error is failing to resolve the root.
func ScanDir(path string) (*PathStats, error) {
	root, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}

	stats := &PathStats{Root: root}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			stats.Skipped++
			return nil // Skip errors
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			stats.Skipped++
			return nil
		}
		stats.UsedBytes += uint64(info.Size())
		stats.FileCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DirSize returns the total bytes of regular files under path.
func DirSize(path string) (uint64, error) {
	stats, err := ScanDir(path)
	if err != nil {
		return 0, err
	}
	return stats.UsedBytes, nil
}
