// Package runtimepath locates per-session files of the running instance.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	socketName = "disp.sock"
	lockName   = "disp.lock"
)

// Dir returns the runtime directory holding the IPC socket and the instance
// lock. In order of preference: $XDG_RUNTIME_DIR, /run/user/<uid>, or a
// private /tmp/disp-runtime-<uid> created on demand.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}

	dir := fmt.Sprintf("/tmp/disp-runtime-%d", uid)
	if err := privateDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// SocketPath returns the IPC socket path.
func SocketPath() (string, error) {
	return file(socketName)
}

// LockPath returns the single-instance lock file path.
func LockPath() (string, error) {
	return file(lockName)
}

func file(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// privateDir makes sure path is a real directory closed to other users.
// Symlinks and directories whose mode cannot be tightened are refused.
func privateDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create runtime dir: %w", err)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to inspect runtime dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("runtime dir %s is not a directory", path)
	}
	if info.Mode().Perm()&0o077 != 0 {
		if err := os.Chmod(path, 0o700); err != nil {
			return fmt.Errorf("runtime dir %s is accessible to other users: %w", path, err)
		}
	}
	return nil
}
