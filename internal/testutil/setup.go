package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTemp writes data to name inside a fresh temporary directory and
// returns the full path.
func WriteTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// DiffRanges returns the byte offsets at which a and b differ. Lengths must match.
func DiffRanges(a, b []byte) []int {
	var out []int
	for i := range a {
		if i < len(b) && a[i] != b[i] {
			out = append(out, i)
		}
	}
	return out
}
