package gateway

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// writeScript creates an executable shell script in a temp dir
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-aerospace")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestExecRunner_CapturesStdout(t *testing.T) {
	path := writeScript(t, `echo "$@"`)
	r := NewExecRunner(path, time.Second, zerolog.Nop())

	out, err := r.Run(context.Background(), "list-workspaces", "--all", "--json")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "list-workspaces --all --json" {
		t.Errorf("Run() output = %q, want %q", got, "list-workspaces --all --json")
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(filepath.Join(t.TempDir(), "does-not-exist"), time.Second, zerolog.Nop())

	out, err := r.Run(context.Background(), "list-workspaces")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, ErrSpawn) {
		t.Errorf("expected ErrSpawn, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected the spawn cause to be fs.ErrNotExist, got %v", err)
	}
	if out != nil {
		t.Errorf("expected nil output, got %q", out)
	}
}

func TestExecRunner_NotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain-file")
	if err := os.WriteFile(path, []byte("not a program"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	r := NewExecRunner(path, time.Second, zerolog.Nop())

	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrSpawn) {
		t.Errorf("expected ErrSpawn, got %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected the spawn cause to be fs.ErrPermission, got %v", err)
	}
}

func TestExecRunner_NotOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	r := NewExecRunner("aerospace", time.Second, zerolog.Nop())

	_, err := r.Run(context.Background(), "list-workspaces")
	if !errors.Is(err, ErrSpawn) {
		t.Errorf("expected ErrSpawn, got %v", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected exec.ErrNotFound in the chain, got %v", err)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	path := writeScript(t, "exec sleep 5")
	r := NewExecRunner(path, 100*time.Millisecond, zerolog.Nop())

	start := time.Now()
	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Run() took %v, expected it to stop near the timeout", elapsed)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	path := writeScript(t, "echo partial; exit 3")
	r := NewExecRunner(path, time.Second, zerolog.Nop())

	out, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if errors.Is(err, ErrSpawn) || errors.Is(err, ErrTimeout) {
		t.Errorf("non-zero exit should not be a spawn or timeout error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "partial" {
		t.Errorf("output = %q, want %q", out, "partial")
	}
}

func TestNewExecRunner_DefaultTimeout(t *testing.T) {
	r := NewExecRunner("/bin/true", 0, zerolog.Nop())
	if r.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", r.timeout, DefaultTimeout)
	}
	if r.Path() != "/bin/true" {
		t.Errorf("Path() = %q, want %q", r.Path(), "/bin/true")
	}
}
