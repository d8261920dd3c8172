package main

import (
	"context"
	"os"
	"sync"
)

// Engine is the public surface for one repository. All cached state (the
// resolved git path, the worktree snapshot, the active path) lives on the
// instance; multiple repositories mean multiple independent engines.
type Engine struct {
	repoRoot string

	runner      GitRunner
	cache       *SnapshotCache
	reconciler  *BranchReconciler
	provisioner *ProvisionManager
	remover     *RemovalManager
	lockMgr     *LockManager

	mu         sync.Mutex
	activePath string
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	runner   GitRunner
	switcher ContextSwitcher
	config   *Config
}

func WithGitRunner(r GitRunner) EngineOption {
	return func(c *engineConfig) { c.runner = r }
}

func WithContextSwitcher(s ContextSwitcher) EngineOption {
	return func(c *engineConfig) { c.switcher = s }
}

func WithConfig(cfg Config) EngineOption {
	return func(c *engineConfig) { c.config = &cfg }
}

// NewEngine builds an engine for the repository containing cwd. cwd may be
// inside the main repository or any linked worktree.
func NewEngine(cwd string, opts ...EngineOption) (*Engine, error) {
	var ec engineConfig
	for _, opt := range opts {
		opt(&ec)
	}
	cfg := DefaultConfig()
	if ec.config != nil {
		cfg = ec.config.withDefaults()
	}

	mainRoot, err := mainRepositoryRoot(cwd)
	if err != nil {
		return nil, err
	}
	activeRoot, err := repositoryRoot(cwd)
	if err != nil {
		return nil, err
	}

	runner := ec.runner
	if runner == nil {
		runner = NewExecGitRunner(cfg.CommandTimeout())
	}

	e := &Engine{
		repoRoot:   mainRoot,
		runner:     runner,
		lockMgr:    NewLockManager(),
		activePath: activeRoot,
	}
	e.cache = newSnapshotCache(runner, mainRoot, e.ActivePath)
	e.reconciler = newBranchReconciler(runner, mainRoot)
	e.provisioner = newProvisionManager(runner, mainRoot, e.cache, e.reconciler, e.lockMgr, cfg.WorktreeTemplate)

	switcher := ec.switcher
	if switcher == nil {
		switcher = &processSwitcher{engine: e}
	}
	e.remover = newRemovalManager(runner, mainRoot, e.cache, e.lockMgr, switcher, cfg.SettleDelay())
	return e, nil
}

func (e *Engine) RepoRoot() string {
	return e.repoRoot
}

// ActivePath is the worktree root the caller currently occupies.
func (e *Engine) ActivePath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activePath
}

func (e *Engine) setActivePath(path string) {
	e.mu.Lock()
	e.activePath = path
	e.mu.Unlock()
}

func (e *Engine) Refresh(ctx context.Context) error {
	return e.cache.Refresh(ctx)
}

func (e *Engine) OnChange(fn func([]WorktreeRecord)) {
	e.cache.OnChange(fn)
}

// ListWorktrees returns the last-known snapshot. Sorting and display caps
// are a caller concern.
func (e *Engine) ListWorktrees() []WorktreeRecord {
	return e.cache.Current()
}

func (e *Engine) BranchesWithoutWorktrees(ctx context.Context, branchType BranchType) ([]BranchRef, error) {
	return e.reconciler.BranchesWithoutWorktrees(ctx, branchType)
}

func (e *Engine) CreateWorktree(ctx context.Context, branch BranchRef, targetPath string, opts CreateOptions) error {
	if err := e.provisioner.CreateWorktree(ctx, branch, targetPath, opts); err != nil {
		return err
	}
	if err := e.cache.Refresh(context.Background()); err != nil {
		debugf("post-create refresh failed: %v", err)
	}
	return nil
}

func (e *Engine) CreateForAllBranches(ctx context.Context, branchType BranchType, onProgress ProgressFunc) (ProvisioningOutcome, error) {
	return e.provisioner.CreateForAllBranches(ctx, branchType, onProgress)
}

func (e *Engine) RemoveWorktree(ctx context.Context, worktreePath string, force bool) error {
	return e.remover.Remove(ctx, worktreePath, force, e.ActivePath())
}

func (e *Engine) ResolveMainWorktree(ctx context.Context) WorktreeRecord {
	return resolveMainWorktree(ctx, e.runner, e.cache.Current(), e.repoRoot, e.ActivePath())
}

// WorktreePathFor exposes the naming template used by bulk provisioning.
func (e *Engine) WorktreePathFor(branch BranchRef) string {
	return e.provisioner.WorktreePathFor(branch)
}

// processSwitcher re-roots the current process in the target worktree. It is
// the default ContextSwitcher for CLI use, where the "session" is this
// process and its engine state.
type processSwitcher struct {
	engine *Engine
}

func (s *processSwitcher) SwitchContext(path string, sameSession bool) error {
	if !sameSession {
		// The CLI has no window mechanics; a same-process switch is all
		// there is.
		debugf("switch requested a new session; reusing the current process")
	}
	if err := os.Chdir(path); err != nil {
		return err
	}
	s.engine.setActivePath(path)
	return nil
}
