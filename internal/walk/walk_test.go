package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwasl/dedupbench/internal/deduperr"
)

func TestFilesOrderedAndSkipsDirs(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	write := func(rel string, size int) {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), make([]byte, size), 0o644))
	}
	write("c.txt", 3)
	write("a.txt", 1)
	write(filepath.Join("sub", "b.txt"), 2)

	files, err := Files(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	require.IsIncreasing(t, paths, "Files must return entries sorted by path")

	for _, f := range files {
		if filepath.Base(f.Path) == "c.txt" {
			require.EqualValues(t, 3, f.Size)
		}
	}
}

func TestFilesMissingRootIsIoError(t *testing.T) {
	_, err := Files(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	var ioErr *deduperr.IoError
	require.ErrorAs(t, err, &ioErr)
}

func TestFilesEmptyDir(t *testing.T) {
	files, err := Files(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, files)
}
