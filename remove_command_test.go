package main

import (
	"strings"
	"testing"
)

func TestRunRemove_RejectsNonWorktreePath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARBO_TEST_MODE", "1")

	err := runRemove(t.TempDir(), false, true)
	if err == nil || !strings.Contains(err.Error(), "not a worktree") {
		t.Fatalf("expected a not-a-worktree error, got %v", err)
	}
}

func TestRunRemove_EmptyPath(t *testing.T) {
	if err := runRemove("  ", false, true); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
}
