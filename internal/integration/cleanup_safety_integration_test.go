package integration

import (
	"os"
	"path/filepath"
	"testing"

	"dircleaner/internal/cleanup"
	"dircleaner/internal/cli"
	"dircleaner/internal/disk"
	"dircleaner/internal/logging"
)

// TestCleanupSafetyIntegration verifies the delete contract against the real
// filesystem with the OS deleter
func TestCleanupSafetyIntegration(t *testing.T) {
	// 1. Create temporary filesystem structure
	tmpRoot, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	project := filepath.Join(tmpRoot, "project")
	protectedDir := filepath.Join(tmpRoot, "protected")

	buildDir := filepath.Join(project, "build")
	if err := os.MkdirAll(filepath.Join(buildDir, "obj"), 0755); err != nil {
		t.Fatalf("Failed to create build dir: %v", err)
	}
	if err := os.MkdirAll(protectedDir, 0755); err != nil {
		t.Fatalf("Failed to create protected dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "obj", "main.o"), make([]byte, 4096), 0644); err != nil {
		t.Fatalf("Failed to create object file: %v", err)
	}

	// Protected file (must never be touched)
	protectedFile := filepath.Join(protectedDir, "keep.txt")
	if err := os.WriteFile(protectedFile, []byte("MUST KEEP"), 0644); err != nil {
		t.Fatalf("Failed to create protected file: %v", err)
	}

	// Symlink inside the target pointing outside it
	if err := os.Symlink(protectedDir, filepath.Join(buildDir, "link_to_protected")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	// Manifest entry that is itself a symlink to the protected dir
	if err := os.Symlink(protectedDir, filepath.Join(project, "cache")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	if err := os.WriteFile(filepath.Join(project, ".cleanup"), []byte("build\n"), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	newExecutor := func() *cleanup.Executor {
		e := cleanup.NewExecutor(logging.Discard())
		e.SetWorkDir(project)
		return e
	}

	// 2a. DRY-RUN: Assert no filesystem changes
	t.Run("DryRun_NoFilesystemChanges", func(t *testing.T) {
		before, err := disk.DirSize(tmpRoot)
		if err != nil {
			t.Fatalf("DirSize failed: %v", err)
		}

		res, err := newExecutor().Run(cli.Options{ManifestFile: ".cleanup", DryRun: true})
		if err != nil {
			t.Fatalf("DryRun cleanup failed: %v", err)
		}

		// Symlinked protected content is not counted
		if res.Stats.BytesFreed != 4096 {
			t.Errorf("BytesFreed = %d, want 4096", res.Stats.BytesFreed)
		}

		after, err := disk.DirSize(tmpRoot)
		if err != nil {
			t.Fatalf("DirSize failed: %v", err)
		}
		if before != after {
			t.Errorf("DRY-RUN VIOLATION: tree size changed %d -> %d", before, after)
		}
		if _, err := os.Stat(buildDir); err != nil {
			t.Errorf("DRY-RUN VIOLATION: build was deleted: %v", err)
		}
	})

	// 2b. EXECUTE: Symlinks inside the target are removed, not followed
	t.Run("RealMode_SymlinkNotFollowed", func(t *testing.T) {
		res, err := newExecutor().Run(cli.Options{ManifestFile: ".cleanup"})
		if err != nil {
			t.Fatalf("Real cleanup failed: %v", err)
		}
		if res.Stats.DirectoriesRemoved != 1 {
			t.Errorf("Expected 1 directory removed, got %d", res.Stats.DirectoriesRemoved)
		}
		if _, err := os.Stat(buildDir); !os.IsNotExist(err) {
			t.Error("build should have been deleted")
		}
		if _, err := os.Stat(protectedFile); err != nil {
			t.Errorf("SAFETY VIOLATION: protected file was deleted: %v", err)
		}
	})

	// 2c. SYMLINK ENTRY: only the link goes, its target stays
	t.Run("SymlinkEntry_RemovesLinkOnly", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(project, ".cleanup"), []byte("cache\n"), 0644); err != nil {
			t.Fatalf("Failed to write manifest: %v", err)
		}

		if _, err := newExecutor().Run(cli.Options{ManifestFile: ".cleanup"}); err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if _, err := os.Lstat(filepath.Join(project, "cache")); !os.IsNotExist(err) {
			t.Error("symlink entry should have been removed")
		}
		if _, err := os.Stat(protectedFile); err != nil {
			t.Errorf("SAFETY VIOLATION: symlink target was deleted: %v", err)
		}
	})

	// 2d. WORKING DIRECTORY: never removed, nothing else touched either
	t.Run("WorkingDirectory_Refused", func(t *testing.T) {
		if err := os.MkdirAll(filepath.Join(project, "dist"), 0755); err != nil {
			t.Fatalf("Failed to create dist: %v", err)
		}
		if err := os.WriteFile(filepath.Join(project, ".cleanup"), []byte("dist\n.\n"), 0644); err != nil {
			t.Fatalf("Failed to write manifest: %v", err)
		}

		if _, err := newExecutor().Run(cli.Options{ManifestFile: ".cleanup"}); err == nil {
			t.Fatal("expected safety violation")
		}
		if _, err := os.Stat(filepath.Join(project, "dist")); err != nil {
			t.Errorf("dist removed despite refused run: %v", err)
		}
	})
}
