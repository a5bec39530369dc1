package organizer

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/pkg/categorizer"
	"github.com/moyu-x/sort-folder/pkg/mover"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestOrganize_OneFilePerCategory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/root/song.mp3":         "a",
		"/root/nested/pic.PNG":   "bb",
		"/root/clip.mkv":         "ccc",
		"/root/deep/x/Звіт.docx": "dddd",
		"/root/pack.tar":         "eeeee",
		"/root/notes.xyz":        "ffffff",
	})

	stats, err := New(fs, "/root", DefaultOptions().WithWorkers(3)).Organize()
	if err != nil {
		t.Fatalf("Organize() error: %v", err)
	}

	want := []string{
		"/root/Audios/song.mp3",
		"/root/Images/pic.PNG",
		"/root/Videos/clip.mkv",
		"/root/Docs/Zvit.docx",
		"/root/Archives/pack.tar",
		"/root/Other/notes.xyz",
	}
	for _, path := range want {
		if ok, _ := afero.Exists(fs, path); !ok {
			t.Errorf("expected %s to exist", path)
		}
	}
	for _, path := range []string{"/root/song.mp3", "/root/nested/pic.PNG", "/root/deep/x/Звіт.docx"} {
		if ok, _ := afero.Exists(fs, path); ok {
			t.Errorf("expected %s to be moved away", path)
		}
	}

	if stats.TotalFiles != 6 || stats.Moved != 6 || stats.Failed != 0 {
		t.Errorf("stats = files:%d moved:%d failed:%d, want 6/6/0", stats.TotalFiles, stats.Moved, stats.Failed)
	}
	if stats.MovedBytes != 21 {
		t.Errorf("MovedBytes = %d, want 21", stats.MovedBytes)
	}
	for _, c := range categorizer.All() {
		if stats.PerCategory[string(c)] != 1 {
			t.Errorf("PerCategory[%s] = %d, want 1", c, stats.PerCategory[string(c)])
		}
	}
}

func TestOrganize_AlreadySorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/root/Docs/a.txt":   "a",
		"/root/Images/b.png": "b",
	})

	stats, err := New(fs, "/root", nil).Organize()
	if err != nil {
		t.Fatalf("Organize() error: %v", err)
	}
	if stats.Unchanged != 2 || stats.Moved != 0 {
		t.Errorf("unchanged=%d moved=%d, want 2/0", stats.Unchanged, stats.Moved)
	}
}

func TestOrganize_ConcurrentRandomDelay(t *testing.T) {
	fs := afero.NewMemMapFs()
	exts := []string{".mp3", ".jpg", ".mp4", ".pdf", ".zip", ".bin"}
	const perExt = 20

	files := make(map[string]string)
	for i := 0; i < perExt; i++ {
		for _, ext := range exts {
			files[fmt.Sprintf("/root/d%d/f%d%s", i%4, i, ext)] = fmt.Sprintf("%d%s", i, ext)
		}
	}
	writeFiles(t, fs, files)

	org := New(fs, "/root", DefaultOptions().WithWorkers(8))
	rng := rand.New(rand.NewSource(1))
	delays := make(map[string]time.Duration, len(files))
	for path := range files {
		delays[path] = time.Duration(rng.Intn(2000)) * time.Microsecond
	}
	org.beforeMove = func(path string) {
		time.Sleep(delays[path])
	}

	stats, err := org.Organize()
	if err != nil {
		t.Fatalf("Organize() error: %v", err)
	}
	if stats.Moved != len(files) {
		t.Errorf("Moved = %d, want %d", stats.Moved, len(files))
	}

	for _, c := range categorizer.All() {
		entries, err := afero.ReadDir(fs, filepath.Join("/root", string(c)))
		if err != nil {
			t.Fatalf("ReadDir(%s): %v", c, err)
		}
		if len(entries) != perExt {
			t.Errorf("%s holds %d files, want %d", c, len(entries), perExt)
		}
	}
}

func TestOrganize_CollisionSuffix(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/root/a/report.pdf": "first",
		"/root/b/report.pdf": "second",
		"/root/c/report.pdf": "third",
	})

	opts := DefaultOptions().WithCollision(mover.CollisionSuffix)
	stats, err := New(fs, "/root", opts).Organize()
	if err != nil {
		t.Fatalf("Organize() error: %v", err)
	}
	if stats.Moved != 3 {
		t.Fatalf("Moved = %d, want 3", stats.Moved)
	}

	entries, _ := afero.ReadDir(fs, "/root/Docs")
	if len(entries) != 3 {
		t.Errorf("Docs holds %d files, want 3", len(entries))
	}
}

// failingFs 让名为 bad.txt 的文件既无法重命名也无法读取
type failingFs struct {
	afero.Fs
}

var errInjected = errors.New("injected failure")

func (f failingFs) Rename(oldname, newname string) error {
	if filepath.Base(oldname) == "bad.txt" {
		return errInjected
	}
	return f.Fs.Rename(oldname, newname)
}

func (f failingFs) Open(name string) (afero.File, error) {
	if filepath.Base(name) == "bad.txt" {
		return nil, errInjected
	}
	return f.Fs.Open(name)
}

func TestOrganize_FailureIsolated(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFiles(t, mem, map[string]string{
		"/root/bad.txt":  "x",
		"/root/good.txt": "y",
		"/root/pic.jpg":  "z",
	})

	stats, err := New(failingFs{mem}, "/root", nil).Organize()
	if err != nil {
		t.Fatalf("Organize() error: %v", err)
	}
	if stats.Failed != 1 || stats.Moved != 2 {
		t.Errorf("failed=%d moved=%d, want 1/2", stats.Failed, stats.Moved)
	}
	if len(stats.Failures) != 1 || !strings.HasSuffix(stats.Failures[0].Path, "bad.txt") {
		t.Fatalf("Failures = %v", stats.Failures)
	}
	if !errors.Is(stats.Failures[0], errInjected) {
		t.Errorf("failure should wrap the injected error: %v", stats.Failures[0])
	}
	if ok, _ := afero.Exists(mem, "/root/bad.txt"); !ok {
		t.Error("failed file should stay where it was")
	}
	if ok, _ := afero.Exists(mem, "/root/Docs/good.txt"); !ok {
		t.Error("good.txt should be moved")
	}
}

func TestOrganize_MissingRoot(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "/nope", nil).Organize()
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestOrganize_EmptyRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/root", 0755)

	stats, err := New(fs, "/root", nil).Organize()
	if err != nil {
		t.Fatalf("Organize() error: %v", err)
	}
	if stats.TotalFiles != 0 || stats.Moved != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
}

func TestPlan_NoSideEffects(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/root/Пісня.mp3":   "a",
		"/root/Docs/ok.txt": "b",
		"/root/x/y.unknown": "c",
	})

	moves, err := New(fs, "/root", nil).Plan()
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	got := make(map[string]string)
	for _, m := range moves {
		got[m.Source] = m.Dest
	}
	want := map[string]string{
		"/root/Пісня.mp3":   "/root/Audios/Pisnya.mp3",
		"/root/x/y.unknown": "/root/Other/y.unknown",
	}
	if len(got) != len(want) {
		t.Fatalf("Plan() = %v, want %v", got, want)
	}
	for src, dst := range want {
		if got[src] != dst {
			t.Errorf("Plan()[%s] = %q, want %q", src, got[src], dst)
		}
	}

	if ok, _ := afero.Exists(fs, "/root/Пісня.mp3"); !ok {
		t.Error("Plan() must not move files")
	}
	if ok, _ := afero.DirExists(fs, "/root/Audios"); ok {
		t.Error("Plan() must not create directories")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Workers <= 0 {
		t.Errorf("Workers = %d, want > 0", opts.Workers)
	}
	if opts.Collision != mover.CollisionOverwrite {
		t.Errorf("Collision = %q, want overwrite", opts.Collision)
	}

	org := New(afero.NewMemMapFs(), "/root", &Options{Workers: -1})
	if org.opts.Workers <= 0 {
		t.Errorf("negative workers should fall back to NumCPU, got %d", org.opts.Workers)
	}
}
