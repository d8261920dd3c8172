package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ProvisionManager creates worktrees, one at a time or in bulk from the
// reconciler's branch list.
type ProvisionManager struct {
	runner     GitRunner
	repoRoot   string
	cache      *SnapshotCache
	reconciler *BranchReconciler
	lockMgr    *LockManager
	template   string
	now        func() time.Time
}

func newProvisionManager(runner GitRunner, repoRoot string, cache *SnapshotCache, reconciler *BranchReconciler, lockMgr *LockManager, template string) *ProvisionManager {
	return &ProvisionManager{
		runner:     runner,
		repoRoot:   repoRoot,
		cache:      cache,
		reconciler: reconciler,
		lockMgr:    lockMgr,
		template:   template,
		now:        time.Now,
	}
}

// WorktreePathFor computes the destination path for a branch from the
// configured naming template, anchored next to the repository like the
// sibling "<repo>.wt" directory layout.
func (p *ProvisionManager) WorktreePathFor(branch BranchRef) string {
	repoBase := filepath.Base(p.repoRoot)
	safeBranch := strings.ReplaceAll(branch.Base(), "/", "-")
	rel := strings.NewReplacer("{repo}", repoBase, "{branch}", safeBranch).Replace(p.template)
	return filepath.Join(filepath.Dir(p.repoRoot), rel)
}

func (p *ProvisionManager) CreateWorktree(ctx context.Context, branch BranchRef, targetPath string, opts CreateOptions) error {
	name := strings.TrimSpace(string(branch))
	if name == "" {
		return errors.New("branch name required")
	}
	if strings.TrimSpace(targetPath) == "" {
		targetPath = p.WorktreePathFor(branch)
	}

	lock, err := p.lockMgr.Acquire(p.repoRoot)
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := p.createLocked(ctx, name, targetPath, opts); err != nil {
		return err
	}
	rememberRecentBranch(p.repoRoot, name)
	return nil
}

func (p *ProvisionManager) createLocked(ctx context.Context, branch string, targetPath string, opts CreateOptions) error {
	if opts.Orphan {
		return p.createOrphan(ctx, branch, targetPath, opts.Force)
	}
	args := []string{"worktree", "add"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.NewBranch {
		args = append(args, "-b", branch, targetPath)
	} else {
		args = append(args, targetPath, branch)
	}
	_, err := p.runner.Run(ctx, p.repoRoot, args...)
	return err
}

// createOrphan builds a worktree whose branch has no commits and no files.
// git has no direct orphan-worktree primitive, so: add the worktree on a
// throwaway branch, switch it to a fresh orphan branch, empty the index and
// working tree, then drop the throwaway branch.
func (p *ProvisionManager) createOrphan(ctx context.Context, branch string, targetPath string, force bool) error {
	tmpBranch := fmt.Sprintf("arbo-orphan-%d", p.now().UnixNano())
	args := []string{"worktree", "add"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, "-b", tmpBranch, targetPath)
	if _, err := p.runner.Run(ctx, p.repoRoot, args...); err != nil {
		return err
	}
	if _, err := p.runner.Run(ctx, targetPath, "switch", "--orphan", branch); err != nil {
		return err
	}
	// An orphan worktree that keeps the throwaway branch's files is worse
	// than a failed creation; cleanout failures surface to the caller.
	if _, err := p.runner.Run(ctx, targetPath, "rm", "-rf", "--ignore-unmatch", "."); err != nil {
		return fmt.Errorf("orphan cleanout: %w", err)
	}
	if _, err := p.runner.Run(ctx, targetPath, "clean", "-fd"); err != nil {
		return fmt.Errorf("orphan cleanout: %w", err)
	}
	if _, err := p.runner.Run(ctx, p.repoRoot, "branch", "-D", tmpBranch); err != nil && !isCancelled(err) {
		debugf("orphan temp branch delete failed: %v", err)
	}
	return nil
}

// CreateForAllBranches provisions a worktree for every branch the reconciler
// reports as missing one. Cancellation is observed at iteration boundaries
// only; an in-flight creation finishes. The snapshot is refreshed exactly
// once after the loop, full or truncated.
func (p *ProvisionManager) CreateForAllBranches(ctx context.Context, branchType BranchType, onProgress ProgressFunc) (ProvisioningOutcome, error) {
	outcome := ProvisioningOutcome{}

	branches, err := p.reconciler.BranchesWithoutWorktrees(ctx, branchType)
	if err != nil {
		if isCancelled(err) {
			return outcome, nil
		}
		return outcome, err
	}

	lock, err := p.lockMgr.Acquire(p.repoRoot)
	if err != nil {
		return outcome, err
	}

	for i, branch := range branches {
		if ctx.Err() != nil {
			break
		}
		if onProgress != nil {
			onProgress(i, len(branches), branch)
		}

		target := p.WorktreePathFor(branch)
		if _, statErr := os.Stat(target); statErr == nil {
			// Existing directory wins over new provisioning.
			outcome.Skipped = append(outcome.Skipped, branch)
			continue
		}

		err := p.createLocked(ctx, string(branch), target, CreateOptions{})
		if err != nil && isStaleRegistrationError(err) {
			err = p.createLocked(ctx, string(branch), target, CreateOptions{Force: true})
		}
		switch {
		case err == nil:
			rememberRecentBranch(p.repoRoot, string(branch))
			outcome.Created = append(outcome.Created, branch)
		case isCancelled(err):
			// Truncated run; the branch lands in no list.
		case isGitMissing(err):
			outcome.Errors = append(outcome.Errors, ProvisionError{Branch: branch, Err: errGitNotInstalled})
		case isTimeout(err):
			outcome.Errors = append(outcome.Errors, ProvisionError{Branch: branch, Err: errCommandTimeout})
		default:
			outcome.Errors = append(outcome.Errors, ProvisionError{Branch: branch, Err: err})
		}
		if isCancelled(err) {
			break
		}
	}
	lock.Release()

	// One refresh regardless of how the loop ended; a cancelled bulk run
	// must not also cancel the snapshot rebuild.
	if refreshErr := p.cache.Refresh(context.Background()); refreshErr != nil {
		debugf("post-provision refresh failed: %v", refreshErr)
	}
	return outcome, nil
}
