package main

import (
	"context"
	"fmt"
	"time"
)

// ContextSwitcher is implemented by the caller (CLI, editor integration).
// SwitchContext re-roots the caller's working context at path; sameSession
// means the existing session must be reused rather than opening a new one.
type ContextSwitcher interface {
	SwitchContext(path string, sameSession bool) error
}

// RemovalManager removes worktrees. Removing the worktree the caller is
// currently positioned in requires switching away first: deleting the
// directory a live session is rooted in corrupts that session's view.
type RemovalManager struct {
	runner      GitRunner
	repoRoot    string
	cache       *SnapshotCache
	lockMgr     *LockManager
	switcher    ContextSwitcher
	settleDelay time.Duration
	sleep       func(time.Duration)
}

func newRemovalManager(runner GitRunner, repoRoot string, cache *SnapshotCache, lockMgr *LockManager, switcher ContextSwitcher, settleDelay time.Duration) *RemovalManager {
	return &RemovalManager{
		runner:      runner,
		repoRoot:    repoRoot,
		cache:       cache,
		lockMgr:     lockMgr,
		switcher:    switcher,
		settleDelay: settleDelay,
		sleep:       time.Sleep,
	}
}

// Remove deletes the worktree at worktreePath. activePath is the caller's
// current working context. The main repository is never removable, for any
// value of force.
func (m *RemovalManager) Remove(ctx context.Context, worktreePath string, force bool, activePath string) error {
	if pathsEqual(worktreePath, m.repoRoot) {
		return errMainRepositoryProtected
	}

	if pathsEqual(worktreePath, activePath) {
		main := resolveMainWorktree(ctx, m.runner, m.cache.Current(), m.repoRoot, activePath)
		if pathsEqual(main.Path, worktreePath) {
			// Contradiction with the guard above; never ignore it silently.
			return fmt.Errorf("internal error: escape target %s equals removal target", main.Path)
		}
		if m.switcher == nil {
			return fmt.Errorf("cannot remove the active worktree %s: no context switcher available", worktreePath)
		}
		if err := m.switcher.SwitchContext(main.Path, true); err != nil {
			return err
		}
		m.sleep(m.settleDelay)
	}

	lock, err := m.lockMgr.Acquire(m.repoRoot)
	if err != nil {
		return err
	}
	defer lock.Release()

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreePath)
	if _, err := m.runner.Run(ctx, m.repoRoot, args...); err != nil {
		if isMainWorktreeRefusal(err) {
			return errMainRepositoryProtected
		}
		return err
	}

	if refreshErr := m.cache.Refresh(context.Background()); refreshErr != nil {
		debugf("post-removal refresh failed: %v", refreshErr)
	}
	return nil
}
