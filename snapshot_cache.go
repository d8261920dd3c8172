package main

import (
	"context"
	"sync"
)

// SnapshotCache owns the last-known worktree inventory for one repository.
// Snapshots are rebuilt wholesale on every refresh and swapped atomically;
// records never survive a refresh by identity. Refresh is single-flight: a
// request while one is in flight is a no-op and callers rely on the change
// notification fired by the in-flight refresh.
type SnapshotCache struct {
	runner     GitRunner
	repoRoot   string
	activePath func() string

	mu         sync.Mutex
	snapshot   []WorktreeRecord
	refreshing bool
	cancelPrev context.CancelFunc
	listeners  []func([]WorktreeRecord)
}

func newSnapshotCache(runner GitRunner, repoRoot string, activePath func() string) *SnapshotCache {
	if activePath == nil {
		activePath = func() string { return "" }
	}
	return &SnapshotCache{runner: runner, repoRoot: repoRoot, activePath: activePath}
}

func (c *SnapshotCache) OnChange(fn func([]WorktreeRecord)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Current returns a copy of the latest snapshot.
func (c *SnapshotCache) Current() []WorktreeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]WorktreeRecord, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// Refresh rebuilds the snapshot. A failed refresh leaves the previous
// snapshot in place; a cancelled refresh returns silently without notifying.
func (c *SnapshotCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	if c.cancelPrev != nil {
		c.cancelPrev()
	}
	refreshCtx, cancel := context.WithCancel(ctx)
	c.cancelPrev = cancel
	c.mu.Unlock()

	records, err := c.build(refreshCtx, c.activePath())

	c.mu.Lock()
	c.refreshing = false
	if isCancelled(err) {
		c.mu.Unlock()
		return nil
	}
	if err == nil {
		c.snapshot = records
	}
	notify := make([]func([]WorktreeRecord), len(c.listeners))
	copy(notify, c.listeners)
	current := make([]WorktreeRecord, len(c.snapshot))
	copy(current, c.snapshot)
	c.mu.Unlock()

	for _, fn := range notify {
		fn(current)
	}
	return err
}

func (c *SnapshotCache) build(ctx context.Context, activePath string) ([]WorktreeRecord, error) {
	out, err := c.runner.Run(ctx, c.repoRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	parsed := parseWorktreeList(out)

	// The engine models the main repository separately; drop its listing
	// entry so resolveMainWorktree is the single source for it.
	records := make([]WorktreeRecord, 0, len(parsed))
	for _, rec := range parsed {
		if pathsEqual(rec.Path, c.repoRoot) {
			continue
		}
		rec.IsActive = pathsEqual(rec.Path, activePath)
		records = append(records, rec)
	}

	// Status enrichment runs concurrently across worktrees within the one
	// in-flight refresh. A failed status check degrades that record to unknown
	// instead of aborting the refresh.
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(rec *WorktreeRecord) {
			defer wg.Done()
			counts, err := statusCounts(ctx, c.runner, rec.Path)
			if err != nil {
				rec.Status = WorktreeStatusCounts{Unknown: true}
				return
			}
			rec.Status = counts
		}(&records[i])
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, context.Canceled
	}
	return records, nil
}
