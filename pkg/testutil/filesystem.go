package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// =====================================
// File System Testing Utilities
// =====================================

// CreateTestFile creates a test file with specified content and permissions
func CreateTestFile(t *testing.T, dir, filename, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

// CreateTestDir creates a test directory with specified permissions
func CreateTestDir(t *testing.T, dir, dirname string, perm os.FileMode) string {
	t.Helper()
	dirpath := filepath.Join(dir, dirname)
	require.NoError(t, os.MkdirAll(dirpath, perm))
	return dirpath
}

// AssertFileContains verifies the file exists and contains substr
func AssertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), substr)
}

// OSRelease writes an os-release file with the given ID and returns its path.
func OSRelease(t *testing.T, dir, id string) string {
	t.Helper()
	content := "NAME=\"Test Linux\"\nID=" + id + "\nVERSION_ID=\"1\"\n"
	return CreateTestFile(t, dir, "os-release", content, 0644)
}
