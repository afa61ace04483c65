package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b-book.txt", "b")
	writeFile(t, root, "a-book.txt", "aaa")
	writeFile(t, root, "notes.md", "# n")
	writeFile(t, root, "upper.TXT", "x")
	writeFile(t, root, "nested/deep.txt", "d")
	writeFile(t, root, "drafts/skip.txt", "s")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.txt"), 0o755))

	tests := []struct {
		name     string
		patterns []string
		excludes []string
		want     []string
	}{
		{
			name: "default top level txt",
			want: []string{"a-book.txt", "b-book.txt"},
		},
		{
			name:     "recursive",
			patterns: []string{"**/*.txt"},
			want:     []string{"a-book.txt", "b-book.txt", "drafts/skip.txt", "nested/deep.txt"},
		},
		{
			name:     "recursive with exclude",
			patterns: []string{"**/*.txt"},
			excludes: []string{"drafts/**"},
			want:     []string{"a-book.txt", "b-book.txt", "nested/deep.txt"},
		},
		{
			name:     "multiple patterns deduplicated",
			patterns: []string{"*.txt", "*.md", "a-*"},
			want:     []string{"a-book.txt", "b-book.txt", "notes.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(root, tt.patterns, tt.excludes)
			require.NoError(t, err)

			files, err := d.Discover()
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(files))
		})
	}
}

func TestDiscover_FileInfo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a-book.txt", "aaa")

	d, err := New(root, nil, nil)
	require.NoError(t, err)

	files, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "a-book.txt"), files[0].Path)
	assert.Equal(t, int64(3), files[0].Size)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := New(t.TempDir(), []string{"[unclosed"}, nil)
	assert.Error(t, err)

	d, err := New(filepath.Join(t.TempDir(), "missing"), nil, nil)
	require.NoError(t, err)
	_, err = d.Discover()
	assert.Error(t, err)

	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")
	d, err = New(filepath.Join(root, "file.txt"), nil, nil)
	require.NoError(t, err)
	_, err = d.Discover()
	assert.Error(t, err)
}
