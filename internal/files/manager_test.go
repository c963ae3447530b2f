package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	manager := NewManager("/test/base")
	assert.NotNil(t, manager)
	assert.Equal(t, "/test/base", manager.baseDir)
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "quotes.csv"), []byte("x"), 0644))
	manager := NewManager(tmpDir)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"relative existing", "quotes.csv", true},
		{"relative missing", "missing.csv", false},
		{"absolute existing", filepath.Join(tmpDir, "quotes.csv"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manager.FileExists(tt.path))
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewManager(tmpDir)

	require.NoError(t, manager.EnsureDirectory(filepath.Join("out", "2020")))
	info, err := os.Stat(filepath.Join(tmpDir, "out", "2020"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// second call is a no-op
	require.NoError(t, manager.EnsureDirectory(filepath.Join("out", "2020")))
}

func TestPrepareOutput(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewManager(tmpDir)

	t.Run("creates parent directory", func(t *testing.T) {
		full, err := manager.PrepareOutput(filepath.Join("exports", "quotes.csv"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpDir, "exports", "quotes.csv"), full)

		info, err := os.Stat(filepath.Dir(full))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("removes previous output", func(t *testing.T) {
		path := filepath.Join(tmpDir, "old.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

		full, err := manager.PrepareOutput(path)
		require.NoError(t, err)
		assert.Equal(t, path, full)
		assert.False(t, manager.FileExists(path))
	})

	t.Run("parent is a file", func(t *testing.T) {
		blocker := filepath.Join(tmpDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		_, err := manager.PrepareOutput(filepath.Join("blocker", "quotes.csv"))
		assert.Error(t, err)
	})
}
