// Package walk enumerates the files under a directory in a stable order,
// standing in for driver_function_stream's
// std::filesystem::recursive_directory_iterator pass: one ordered sequence
// of regular files, directories skipped, ready to be opened and streamed
// through a chunking.Chunker.
package walk

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/uwasl/dedupbench/internal/deduperr"
)

// File is one regular file discovered under a walked root.
type File struct {
	Path string
	Size int64
}

// Files walks root recursively and returns every regular file found, sorted
// by path so repeated runs over an unchanged tree visit files in the same
// order (spec §5's determinism guarantee extends to the directory walk).
func Files(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, File{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, deduperr.NewIoError(root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
