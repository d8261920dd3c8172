package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const recentBranchCacheLimit = 40

// Recently provisioned branches are cached per repository and fed back into
// shell completion for the create command.
type recentBranchCache struct {
	Branches []string `json:"branches"`
}

func recentBranchCachePath(repoRoot string) (string, error) {
	repoRoot = strings.TrimSpace(repoRoot)
	if repoRoot == "" {
		return "", errors.New("repo root required")
	}
	home, err := arboHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "cache", "recent_branches", hashString(repoRoot)+".json"), nil
}

func readRecentBranches(repoRoot string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	path, err := recentBranchCachePath(repoRoot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var cache recentBranchCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	out := make([]string, 0, min(limit, len(cache.Branches)))
	seen := make(map[string]bool, len(cache.Branches))
	for _, raw := range cache.Branches {
		b := strings.TrimSpace(raw)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func writeRecentBranches(repoRoot string, branches []string) error {
	path, err := recentBranchCachePath(repoRoot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	trimmed := make([]string, 0, recentBranchCacheLimit)
	seen := make(map[string]bool, len(branches))
	for _, raw := range branches {
		b := strings.TrimSpace(raw)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		trimmed = append(trimmed, b)
		if len(trimmed) >= recentBranchCacheLimit {
			break
		}
	}
	data, err := json.Marshal(recentBranchCache{Branches: trimmed})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// rememberRecentBranch promotes branch to the front of the per-repo cache.
// Best-effort: completion hints are never worth failing a provision over.
func rememberRecentBranch(repoRoot string, branch string) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return
	}
	existing, err := readRecentBranches(repoRoot, recentBranchCacheLimit)
	if err != nil {
		return
	}
	updated := make([]string, 0, len(existing)+1)
	updated = append(updated, branch)
	for _, b := range existing {
		if b != branch {
			updated = append(updated, b)
		}
	}
	_ = writeRecentBranches(repoRoot, updated)
}
