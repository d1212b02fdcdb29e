package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestDirPrefersXDGRuntimeDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDirFallsBackWithoutXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/disp-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketAndLockShareTheRuntimeDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if want := filepath.Join(td, "disp.sock"); socket != want {
		t.Fatalf("SocketPath() = %q, want %q", socket, want)
	}

	lock, err := LockPath()
	if err != nil {
		t.Fatalf("LockPath() error: %v", err)
	}
	if want := filepath.Join(td, "disp.lock"); lock != want {
		t.Fatalf("LockPath() = %q, want %q", lock, want)
	}
}

func TestPrivateDir(t *testing.T) {
	base := t.TempDir()

	created := filepath.Join(base, "new")
	if err := privateDir(created); err != nil {
		t.Fatalf("privateDir(new): %v", err)
	}
	assertMode(t, created, 0o700)

	loose := filepath.Join(base, "loose")
	if err := os.Mkdir(loose, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Chmod(loose, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := privateDir(loose); err != nil {
		t.Fatalf("privateDir(loose): %v", err)
	}
	assertMode(t, loose, 0o700)

	link := filepath.Join(base, "link")
	if err := os.Symlink(created, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := privateDir(link); err == nil {
		t.Fatal("privateDir accepted a symlink")
	}

	regular := filepath.Join(base, "file")
	if err := os.WriteFile(regular, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := privateDir(regular); err == nil {
		t.Fatal("privateDir accepted a regular file")
	}
}

func assertMode(t *testing.T, path string, want os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if got := info.Mode().Perm(); got != want {
		t.Fatalf("%s mode = %o, want %o", path, got, want)
	}
}
