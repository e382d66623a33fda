package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOSDeleterRemovesTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "out.o"), []byte("obj"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := (OSDeleter{}).RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected %s to be gone, stat err = %v", dir, err)
	}
}

func TestFakeDeleterRecordsAndFails(t *testing.T) {
	boom := errors.New("boom")
	f := &FakeDeleter{Err: boom, FailAt: 1}

	if err := f.RemoveAll("/a"); err != nil {
		t.Fatalf("first call should succeed, got %v", err)
	}
	if err := f.RemoveAll("/b"); !errors.Is(err, boom) {
		t.Fatalf("second call should fail with boom, got %v", err)
	}
	want := []string{"rmall:/a", "rmall:/b"}
	if len(f.Calls) != len(want) || f.Calls[0] != want[0] || f.Calls[1] != want[1] {
		t.Errorf("Calls = %v, want %v", f.Calls, want)
	}
}
