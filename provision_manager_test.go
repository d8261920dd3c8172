package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func provisionFixture(t *testing.T, locals []string) (*ProvisionManager, *fakeRunner, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	repoRoot := filepath.Join(root, "app")
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		t.Fatalf("mkdir repo root: %v", err)
	}

	runner := &fakeRunner{handler: func(_ string, args string) (string, error) {
		switch {
		case args == "worktree list --porcelain":
			return "worktree " + repoRoot + "\nbranch refs/heads/main\n", nil
		case strings.HasSuffix(args, "refs/heads"):
			return strings.Join(locals, "\n") + "\n", nil
		case strings.HasSuffix(args, "refs/remotes"):
			return "", nil
		}
		return "", nil
	}}

	cache := newSnapshotCache(runner, repoRoot, nil)
	reconciler := newBranchReconciler(runner, repoRoot)
	mgr := newProvisionManager(runner, repoRoot, cache, reconciler, NewLockManager(), defaultWorktreeTemplate)
	return mgr, runner, repoRoot
}

func outcomeNames(branches []BranchRef) map[string]bool {
	out := make(map[string]bool, len(branches))
	for _, b := range branches {
		out[string(b)] = true
	}
	return out
}

// Scenario: the destination directory already exists, so the branch is
// skipped and no creation subprocess runs for it.
func TestCreateForAllBranches_ExistingPathSkips(t *testing.T) {
	mgr, runner, _ := provisionFixture(t, []string{"feat-x"})
	if err := os.MkdirAll(mgr.WorktreePathFor("feat-x"), 0o755); err != nil {
		t.Fatalf("mkdir target: %v", err)
	}

	outcome, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Skipped) != 1 || outcome.Skipped[0] != "feat-x" {
		t.Fatalf("expected feat-x skipped, got %+v", outcome)
	}
	if runner.countCalls("worktree add") != 0 {
		t.Fatalf("no creation call may be issued for a skipped branch: %v", runner.callArgs())
	}
}

// Scenario: creation fails once with a stale-registration error, is retried
// with --force, and the branch lands in created.
func TestCreateForAllBranches_StaleRegistrationRetriesWithForce(t *testing.T) {
	mgr, runner, _ := provisionFixture(t, []string{"feat-x"})
	base := runner.handler
	runner.handler = func(dir string, args string) (string, error) {
		if strings.HasPrefix(args, "worktree add") && !strings.Contains(args, "--force") {
			return "", &CommandError{
				Stderr: "fatal: '/x' is already used by worktree at '/x'",
				Err:    errors.New("exit status 128"),
			}
		}
		return base(dir, args)
	}

	outcome, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Created) != 1 || outcome.Created[0] != "feat-x" {
		t.Fatalf("expected feat-x created after forced retry, got %+v", outcome)
	}
	if len(outcome.Errors) != 0 {
		t.Fatalf("forced retry succeeded; errors must be empty: %+v", outcome.Errors)
	}

	adds := 0
	sawForce := false
	for _, args := range runner.callArgs() {
		if strings.HasPrefix(args, "worktree add") {
			adds++
			if strings.Contains(args, "--force") {
				sawForce = true
			}
		}
	}
	if adds != 2 || !sawForce {
		t.Fatalf("expected one plain and one forced attempt, got %v", runner.callArgs())
	}
}

func TestCreateForAllBranches_RepeatedStaleFailureSurfaces(t *testing.T) {
	mgr, _, _ := provisionFixture(t, []string{"feat-x"})
	staleErr := &CommandError{
		Stderr: "fatal: '/x' is missing but already registered",
		Err:    errors.New("exit status 128"),
	}
	base := mgr.runner.(*fakeRunner).handler
	mgr.runner.(*fakeRunner).handler = func(dir string, args string) (string, error) {
		if strings.HasPrefix(args, "worktree add") {
			return "", staleErr
		}
		return base(dir, args)
	}

	outcome, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Errors) != 1 || outcome.Errors[0].Branch != "feat-x" {
		t.Fatalf("expected feat-x in errors after repeated failure, got %+v", outcome)
	}
}

// Partition law: created, skipped and errors are pairwise disjoint and a
// subset of the input branch set.
func TestCreateForAllBranches_PartitionsBranches(t *testing.T) {
	mgr, runner, _ := provisionFixture(t, []string{"ok-branch", "existing-branch", "broken-branch"})
	if err := os.MkdirAll(mgr.WorktreePathFor("existing-branch"), 0o755); err != nil {
		t.Fatalf("mkdir target: %v", err)
	}
	base := runner.handler
	runner.handler = func(dir string, args string) (string, error) {
		if strings.HasPrefix(args, "worktree add") && strings.Contains(args, "broken-branch") {
			return "", &CommandError{Stderr: "fatal: broken", Err: errors.New("exit status 128")}
		}
		return base(dir, args)
	}

	outcome, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created := outcomeNames(outcome.Created)
	skipped := outcomeNames(outcome.Skipped)
	if !created["ok-branch"] || !skipped["existing-branch"] || len(outcome.Errors) != 1 {
		t.Fatalf("unexpected partition: %+v", outcome)
	}
	for name := range created {
		if skipped[name] {
			t.Fatalf("branch %s in two partitions", name)
		}
	}
	for _, failure := range outcome.Errors {
		if created[string(failure.Branch)] || skipped[string(failure.Branch)] {
			t.Fatalf("branch %s in two partitions", failure.Branch)
		}
	}
}

func TestCreateForAllBranches_ReportsProgress(t *testing.T) {
	mgr, _, _ := provisionFixture(t, []string{"a", "b"})
	var seen []string
	var totals []int
	_, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, func(index int, total int, branch BranchRef) {
		seen = append(seen, string(branch))
		totals = append(totals, total)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("unexpected progress order: %v", seen)
	}
	for _, total := range totals {
		if total != 2 {
			t.Fatalf("unexpected total: %v", totals)
		}
	}
}

func TestCreateForAllBranches_CancellationStopsAtBoundary(t *testing.T) {
	mgr, runner, _ := provisionFixture(t, []string{"a", "b", "c"})
	ctx, cancel := context.WithCancel(context.Background())
	outcome, err := mgr.CreateForAllBranches(ctx, BranchTypeBoth, func(index int, _ int, _ BranchRef) {
		if index == 1 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("cancellation must not surface as an error: %v", err)
	}
	created := outcomeNames(outcome.Created)
	if !created["a"] || created["c"] {
		t.Fatalf("expected only branches before the cancel to finish, got %+v", outcome)
	}
	for _, args := range runner.callArgs() {
		if strings.HasPrefix(args, "worktree add") && strings.HasSuffix(args, " c") {
			t.Fatalf("branch after cancellation must not be started: %v", runner.callArgs())
		}
	}
	// One snapshot refresh still runs after a truncated loop.
	if runner.countCalls("worktree list --porcelain") < 2 {
		t.Fatalf("expected a post-loop refresh, got %v", runner.callArgs())
	}
}

func TestCreateForAllBranches_MapsMissingGitToActionableError(t *testing.T) {
	mgr, runner, _ := provisionFixture(t, []string{"feat-x"})
	base := runner.handler
	runner.handler = func(dir string, args string) (string, error) {
		if strings.HasPrefix(args, "worktree add") {
			return "", errGitNotInstalled
		}
		return base(dir, args)
	}
	outcome, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Errors) != 1 {
		t.Fatalf("expected one error, got %+v", outcome)
	}
	if !strings.Contains(outcome.Errors[0].Err.Error(), "install git") {
		t.Fatalf("expected actionable install message, got %v", outcome.Errors[0].Err)
	}
}

func TestCreateForAllBranches_MapsTimeoutToDistinctError(t *testing.T) {
	mgr, runner, _ := provisionFixture(t, []string{"feat-x"})
	base := runner.handler
	runner.handler = func(dir string, args string) (string, error) {
		if strings.HasPrefix(args, "worktree add") {
			return "", fmt.Errorf("%w: git %s", errCommandTimeout, args)
		}
		return base(dir, args)
	}
	outcome, err := mgr.CreateForAllBranches(context.Background(), BranchTypeBoth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Errors) != 1 || outcome.Errors[0].Branch != "feat-x" {
		t.Fatalf("expected feat-x in errors, got %+v", outcome)
	}
	if !errors.Is(outcome.Errors[0].Err, errCommandTimeout) {
		t.Fatalf("a timed-out creation must surface as a timeout, got %v", outcome.Errors[0].Err)
	}
	if len(outcome.Created) != 0 {
		t.Fatalf("a timed-out branch must not count as created: %+v", outcome)
	}
}

func TestCreateWorktree_NewBranchArguments(t *testing.T) {
	mgr, runner, repoRoot := provisionFixture(t, nil)
	target := filepath.Join(filepath.Dir(repoRoot), "app.wt", "feat")
	err := mgr.CreateWorktree(context.Background(), "feat", target, CreateOptions{NewBranch: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "worktree add -b feat " + target
	found := false
	for _, args := range runner.callArgs() {
		if args == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q, got %v", want, runner.callArgs())
	}
}

func TestCreateWorktree_ExistingBranchArguments(t *testing.T) {
	mgr, runner, repoRoot := provisionFixture(t, nil)
	target := filepath.Join(filepath.Dir(repoRoot), "app.wt", "feat")
	if err := mgr.CreateWorktree(context.Background(), "feat", target, CreateOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "worktree add " + target + " feat"
	found := false
	for _, args := range runner.callArgs() {
		if args == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q, got %v", want, runner.callArgs())
	}
}

// The orphan sequence: throwaway branch, orphan switch, index/worktree
// cleanout, untracked cleanup, throwaway deletion.
func TestCreateWorktree_OrphanSequence(t *testing.T) {
	mgr, runner, repoRoot := provisionFixture(t, nil)
	mgr.now = func() time.Time { return time.Unix(0, 42) }
	target := filepath.Join(filepath.Dir(repoRoot), "app.wt", "scratch")

	if err := mgr.CreateWorktree(context.Background(), "scratch", target, CreateOptions{Orphan: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sequence []string
	for _, call := range runner.calls {
		if strings.HasPrefix(call.Args, "worktree list") || strings.HasPrefix(call.Args, "status") {
			continue
		}
		sequence = append(sequence, call.Args)
	}
	want := []string{
		"worktree add -b arbo-orphan-42 " + target,
		"switch --orphan scratch",
		"rm -rf --ignore-unmatch .",
		"clean -fd",
		"branch -D arbo-orphan-42",
	}
	if len(sequence) != len(want) {
		t.Fatalf("unexpected call sequence: %v", sequence)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Fatalf("step %d: got %q, want %q", i, sequence[i], want[i])
		}
	}
}

func TestCreateWorktree_OrphanCleanoutFailureSurfaces(t *testing.T) {
	mgr, runner, repoRoot := provisionFixture(t, nil)
	target := filepath.Join(filepath.Dir(repoRoot), "app.wt", "scratch")
	base := runner.handler
	runner.handler = func(dir string, args string) (string, error) {
		if args == "clean -fd" {
			return "", &CommandError{Stderr: "fatal: cannot remove", Err: errors.New("exit status 1")}
		}
		return base(dir, args)
	}

	err := mgr.CreateWorktree(context.Background(), "scratch", target, CreateOptions{Orphan: true})
	if err == nil {
		t.Fatalf("a failed cleanout must fail the orphan creation")
	}
	if !strings.Contains(err.Error(), "cannot remove") {
		t.Fatalf("expected git's own message, got %v", err)
	}
}

func TestWorktreePathFor_Template(t *testing.T) {
	mgr, _, repoRoot := provisionFixture(t, nil)
	got := mgr.WorktreePathFor("origin/feature/login")
	want := filepath.Join(filepath.Dir(repoRoot), "app.wt", "feature-login")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
