// Package files discovers and filters test files on disk before a batch
// run. Filtering is cheap and name/size based; anything content related
// belongs to the readers.
package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "camcli/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCloudFiles walks dir recursively and collects cloud-format files
// (.csv, .xlsx, .xls), skipping Excel lock files. Results are sorted by
// name so batch order is stable across runs.
func (d *Discovery) FindCloudFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	var files []FileInfo
	err := filepath.WalkDir(fullPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" && ext != ".xls" {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to scan input directory", err).
			WithContext("dir", fullPath)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FilterBySize keeps files within the [lowerKB, upperKB) size window.
// A zero upperKB disables the upper bound. Instrument files below the
// window are aborted runs; files above it are long-term tests this tool
// does not report on.
func FilterBySize(files []FileInfo, lowerKB, upperKB int) []FileInfo {
	lower := int64(lowerKB) * 1024
	upper := int64(upperKB) * 1024

	var filtered []FileInfo
	for _, file := range files {
		if file.Size < lower {
			continue
		}
		if upper > 0 && file.Size >= upper {
			continue
		}
		filtered = append(filtered, file)
	}
	return filtered
}

// FilterOCV drops files whose name carries the open-circuit-voltage
// marker; those tests are not supported and would otherwise fail per file
// during the batch.
func FilterOCV(files []FileInfo) []FileInfo {
	var filtered []FileInfo
	for _, file := range files {
		if strings.Contains(file.Name, "OCV") {
			continue
		}
		filtered = append(filtered, file)
	}
	return filtered
}

// Stem returns a filename without its directory and extension, the form
// the identity and protocol patterns are written against.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Exists checks if a file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
