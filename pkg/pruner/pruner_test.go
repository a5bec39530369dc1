package pruner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func mkdirs(t *testing.T, fs afero.Fs, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func TestPrune_RemovesNestedEmptyDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkdirs(t, fs, "/root/a/b/c", "/root/a/d", "/root/keep/inner", "/root/Docs")
	if err := afero.WriteFile(fs, "/root/keep/inner/file.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/root/Docs/a.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := New(fs, true).Prune("/root")
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	for _, gone := range []string{"/root/a/b/c", "/root/a/b", "/root/a/d", "/root/a"} {
		if ok, _ := afero.DirExists(fs, gone); ok {
			t.Errorf("%s should be removed", gone)
		}
	}
	for _, kept := range []string{"/root", "/root/keep", "/root/keep/inner", "/root/Docs"} {
		if ok, _ := afero.DirExists(fs, kept); !ok {
			t.Errorf("%s should be kept", kept)
		}
	}
	if len(stats.Removed) != 4 {
		t.Errorf("Removed = %v, want 4 dirs", stats.Removed)
	}
	if stats.Empty {
		t.Error("root still holds files, Empty should be false")
	}
}

func TestPrune_KeepRoot(t *testing.T) {
	tests := []struct {
		name     string
		keepRoot bool
		wantRoot bool
	}{
		{"keep root", true, true},
		{"prune root", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			mkdirs(t, fs, "/root/x/y")

			stats, err := New(fs, tt.keepRoot).Prune("/root")
			if err != nil {
				t.Fatalf("Prune() error: %v", err)
			}
			if !stats.Empty {
				t.Error("Empty should be true")
			}
			if ok, _ := afero.DirExists(fs, "/root"); ok != tt.wantRoot {
				t.Errorf("root exists = %v, want %v", ok, tt.wantRoot)
			}
		})
	}
}

func TestPrune_SymlinkKeepsDirAlive(t *testing.T) {
	root := t.TempDir()
	linkDir := filepath.Join(root, "links")
	emptyDir := filepath.Join(root, "empty", "deeper")
	if err := os.MkdirAll(linkDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "empty"), filepath.Join(linkDir, "to-empty")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	stats, err := New(afero.NewOsFs(), true).Prune(root)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	if _, err := os.Stat(linkDir); err != nil {
		t.Errorf("directory holding a symlink should be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "empty")); !os.IsNotExist(err) {
		t.Errorf("empty directory should be removed, stat err = %v", err)
	}
	if len(stats.Failures) != 0 {
		t.Errorf("Failures = %v, want none", stats.Failures)
	}
}

// failingRemoveFs 删除指定目录时返回错误
type failingRemoveFs struct {
	afero.Fs
	deny string
}

var errDenied = errors.New("permission denied")

func (f failingRemoveFs) Remove(name string) error {
	if name == f.deny {
		return errDenied
	}
	return f.Fs.Remove(name)
}

func TestPrune_RemoveFailureKeepsParent(t *testing.T) {
	mem := afero.NewMemMapFs()
	mkdirs(t, mem, "/root/parent/stuck", "/root/other")

	stats, err := New(failingRemoveFs{Fs: mem, deny: "/root/parent/stuck"}, true).Prune("/root")
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	if len(stats.Failures) != 1 || !errors.Is(stats.Failures[0], errDenied) {
		t.Fatalf("Failures = %v, want one denied removal", stats.Failures)
	}
	if ok, _ := afero.DirExists(mem, "/root/parent"); !ok {
		t.Error("parent of an unremovable dir should stay")
	}
	if ok, _ := afero.DirExists(mem, "/root/other"); ok {
		t.Error("/root/other should be removed")
	}
}

func TestPrune_InvalidRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := New(fs, true).Prune("/missing"); err == nil {
		t.Error("expected error for missing root")
	}

	if err := afero.WriteFile(fs, "/file.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(fs, true).Prune("/file.txt"); err == nil {
		t.Error("expected error when root is a file")
	}
}
