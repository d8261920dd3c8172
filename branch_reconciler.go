package main

import (
	"context"
	"os"
	"strings"
)

// BranchReconciler computes which branches have no worktree yet. Results are
// deduplicated local-over-remote: when a branch exists both locally and on a
// remote, only the local form is ever surfaced.
type BranchReconciler struct {
	runner   GitRunner
	repoRoot string
}

func newBranchReconciler(runner GitRunner, repoRoot string) *BranchReconciler {
	return &BranchReconciler{runner: runner, repoRoot: repoRoot}
}

type branchCandidate struct {
	name   string
	remote bool
}

func (r *BranchReconciler) BranchesWithoutWorktrees(ctx context.Context, branchType BranchType) ([]BranchRef, error) {
	// Stale registrations cause creation conflicts; pruning them is cleanup,
	// not correctness, so a failure here is only worth a debug note.
	if _, err := r.runner.Run(ctx, r.repoRoot, "worktree", "prune"); err != nil {
		if isCancelled(err) {
			return nil, context.Canceled
		}
		debugf("worktree prune failed: %v", err)
	}

	worktrees, err := r.listWorktrees(ctx)
	if err != nil {
		return nil, err
	}
	locals, remotes, err := r.listBranches(ctx)
	if err != nil {
		return nil, err
	}

	// Local branches first; a remote branch enters only when no local branch
	// of the same base name is already present.
	candidates := make([]branchCandidate, 0, len(locals)+len(remotes))
	seen := make(map[string]bool, len(locals)+len(remotes))
	for _, b := range locals {
		name := string(b)
		if seen[name] {
			continue
		}
		seen[name] = true
		candidates = append(candidates, branchCandidate{name: name})
	}
	for _, b := range remotes {
		_, base, found := strings.Cut(string(b), "/")
		if !found {
			base = string(b)
		}
		if seen[base] {
			continue
		}
		seen[base] = true
		candidates = append(candidates, branchCandidate{name: base, remote: true})
	}

	attached := make(map[string]bool, len(worktrees))
	for _, wt := range worktrees {
		branch := strings.TrimSpace(wt.Branch)
		if branch == "" {
			continue
		}
		attached[branch] = true
		attached[branchBase(branch)] = true
	}

	result := make([]BranchRef, 0, len(candidates))
	for _, c := range candidates {
		switch branchType {
		case BranchTypeLocal:
			if c.remote {
				continue
			}
		case BranchTypeRemote:
			if !c.remote {
				continue
			}
		}
		if attached[c.name] || attached[branchBase(c.name)] {
			continue
		}
		result = append(result, BranchRef(c.name))
	}
	return result, nil
}

// listWorktrees loads the current registrations and drops any whose backing
// directory is gone; a registration can be stale even right after pruning.
func (r *BranchReconciler) listWorktrees(ctx context.Context) ([]WorktreeRecord, error) {
	out, err := r.runner.Run(ctx, r.repoRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	records := parseWorktreeList(out)
	kept := records[:0]
	for _, rec := range records {
		if pathsEqual(rec.Path, r.repoRoot) {
			kept = append(kept, rec)
			continue
		}
		if _, statErr := os.Stat(rec.Path); statErr != nil {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

func (r *BranchReconciler) listBranches(ctx context.Context) (locals []BranchRef, remotes []BranchRef, err error) {
	localOut, err := r.runner.Run(ctx, r.repoRoot, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, nil, err
	}
	remoteOut, err := r.runner.Run(ctx, r.repoRoot, "for-each-ref", "--format=%(refname:short)", "refs/remotes")
	if err != nil {
		return nil, nil, err
	}
	return parseBranchList(localOut), parseBranchList(remoteOut), nil
}
