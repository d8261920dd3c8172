package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	os.Stdout = w
	t.Cleanup(func() {
		os.Stdout = oldStdout
	})

	if err := fn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return out.String()
}

func TestRunVersionFlag(t *testing.T) {
	out := captureStdout(t, func() error {
		return run([]string{"arbo", "--version"})
	})
	if !strings.Contains(out, currentVersion()) {
		t.Fatalf("expected version %q in output %q", currentVersion(), out)
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := newRootCommand([]string{"arbo"})
	want := []string{"list", "branches", "create", "create-all", "remove", "config"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run([]string{"arbo", "frobnicate"}); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestConfigInit_TestModeWritesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARBO_TEST_MODE", "1")

	out := captureStdout(t, func() error {
		return run([]string{"arbo", "config", "init"})
	})
	if !strings.Contains(out, "wrote") {
		t.Fatalf("expected a wrote line, got %q", out)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WorktreeTemplate != defaultWorktreeTemplate {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestConfigInit_RefusesExistingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := SaveConfig(DefaultConfig()); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	if err := run([]string{"arbo", "config", "init", "--defaults"}); err == nil {
		t.Fatalf("expected an error when config already exists")
	}
}

func TestConfigShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out := captureStdout(t, func() error {
		return run([]string{"arbo", "config", "show"})
	})
	if !strings.Contains(out, defaultWorktreeTemplate) {
		t.Fatalf("expected the template in output, got %q", out)
	}
	if !strings.Contains(out, "default_branch_type:  both") {
		t.Fatalf("expected branch type line, got %q", out)
	}
}
