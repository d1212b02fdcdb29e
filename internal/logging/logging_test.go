package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewUsesEnvLevelAndNames(t *testing.T) {
	t.Setenv(EnvLevel, "trace")
	var buf bytes.Buffer
	logger, closer, err := New(Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	Trace(logger, "crtc call")
	logger.Warn("careful")

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") || !strings.Contains(out, "crtc call") {
		t.Fatalf("trace line missing:\n%s", out)
	}
	if !strings.Contains(out, "level=WARNING") {
		t.Fatalf("warning level name missing:\n%s", out)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	logger, _, err := New(Options{Verbose: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("details")
	Trace(logger, "hidden")
	if !strings.Contains(buf.String(), "details") || strings.Contains(buf.String(), "hidden") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestNewRejectsBadEnvLevel(t *testing.T) {
	t.Setenv(EnvLevel, "chatty")
	if _, _, err := New(Options{Stderr: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewTeesToFile(t *testing.T) {
	t.Setenv(EnvLevel, "")
	path := filepath.Join(t.TempDir(), "logs", "disp.log")
	var buf bytes.Buffer
	logger, closer, err := New(Options{FilePath: path, Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello file")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello file") || !strings.Contains(buf.String(), "hello file") {
		t.Fatal("message not written to both outputs")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("log file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestRotatingFileRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disp.log")
	r, err := OpenRotatingFile(path, 0, 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r.maxBytes = 10

	for i := 0; i < 4; i++ {
		if _, err := r.Write([]byte("0123456789ab\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, name := range []string{"disp.log", "disp.log.1", "disp.log.2"} {
		if _, err := os.Stat(filepath.Join(filepath.Dir(path), name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("disp.log.3 should not exist, stat err = %v", err)
	}
}
