package main

import "strings"

// parseWorktreeList parses `git worktree list --porcelain` output. A
// "worktree <path>" line starts a new record; following lines are attributes
// of that record. Unknown attribute lines are ignored so newer git versions
// keep parsing.
func parseWorktreeList(raw string) []WorktreeRecord {
	records := make([]WorktreeRecord, 0)
	var current *WorktreeRecord

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		attr, rest, _ := strings.Cut(line, " ")
		switch attr {
		case "worktree":
			if strings.TrimSpace(rest) == "" {
				current = nil
				continue
			}
			records = append(records, WorktreeRecord{Path: strings.TrimSpace(rest)})
			current = &records[len(records)-1]
		case "HEAD":
			if current != nil {
				current.HeadCommit = strings.TrimSpace(rest)
			}
		case "branch":
			if current != nil {
				current.Branch = shortBranch(rest)
			}
		case "bare":
			if current != nil {
				current.Bare = true
			}
		case "detached":
			if current != nil {
				current.Detached = true
			}
		case "locked":
			if current != nil {
				current.Locked = true
			}
		case "prunable":
			if current != nil {
				current.Prunable = true
			}
		}
	}
	return records
}

// parseBranchList parses `for-each-ref --format=%(refname:short)` output.
// Symbolic HEAD entries are dropped.
func parseBranchList(raw string) []BranchRef {
	branches := make([]BranchRef, 0)
	for _, rawLine := range strings.Split(raw, "\n") {
		name := strings.TrimSpace(rawLine)
		if name == "" || name == "HEAD" || strings.HasSuffix(name, "/HEAD") {
			continue
		}
		branches = append(branches, BranchRef(name))
	}
	return branches
}

func shortBranch(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "refs/heads/")
	value = strings.TrimPrefix(value, "refs/remotes/")
	return value
}

// branchBase strips a single leading remote prefix so that a local branch
// and its remote-tracking twin compare equal.
func branchBase(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "refs/heads/")
	if rest, ok := strings.CutPrefix(name, "refs/remotes/"); ok {
		if _, after, found := strings.Cut(rest, "/"); found {
			return after
		}
		return rest
	}
	return strings.TrimPrefix(name, "origin/")
}
