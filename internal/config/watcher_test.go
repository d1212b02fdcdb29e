package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsReplacedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disp.cfg")
	if _, err := EnsureFile(path); err != nil {
		t.Fatalf("EnsureFile: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	w.settle = 20 * time.Millisecond

	changed := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func() { changed <- struct{}{} })

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	select {
	case <-changed:
		t.Fatal("change reported for unrelated file")
	case <-time.After(150 * time.Millisecond):
	}

	if err := Write(path, sampleStore()); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported after rewriting the document")
	}
}
