package main

import "path/filepath"

type BranchType int

const (
	BranchTypeLocal BranchType = iota
	BranchTypeRemote
	BranchTypeBoth
)

func (t BranchType) String() string {
	switch t {
	case BranchTypeLocal:
		return "local"
	case BranchTypeRemote:
		return "remote"
	default:
		return "both"
	}
}

func ParseBranchType(value string) (BranchType, bool) {
	switch value {
	case "local":
		return BranchTypeLocal, true
	case "remote":
		return BranchTypeRemote, true
	case "both", "":
		return BranchTypeBoth, true
	default:
		return BranchTypeBoth, false
	}
}

// WorktreeStatusCounts summarizes working-tree state for one worktree.
// Unknown is set when the status check failed; such a record is treated
// as dirty rather than failing the whole refresh.
type WorktreeStatusCounts struct {
	Clean          bool
	StagedCount    int
	UnstagedCount  int
	UntrackedCount int
	Unknown        bool
}

type WorktreeRecord struct {
	Path       string
	HeadCommit string
	Branch     string
	Bare       bool
	Detached   bool
	Locked     bool
	Prunable   bool
	Status     WorktreeStatusCounts
	IsActive   bool
}

func (r WorktreeRecord) DisplayName() string {
	return filepath.Base(r.Path)
}

// BranchRef is a branch name, possibly carrying a remote prefix such as
// "origin/". Base strips a single leading remote segment.
type BranchRef string

func (b BranchRef) IsRemote() bool {
	return string(b) != b.Base()
}

func (b BranchRef) Base() string {
	return branchBase(string(b))
}

type CreateOptions struct {
	NewBranch bool
	Orphan    bool
	Force     bool
}

type ProvisionError struct {
	Branch BranchRef
	Err    error
}

type ProvisioningOutcome struct {
	Created []BranchRef
	Skipped []BranchRef
	Errors  []ProvisionError
}

// ProgressFunc receives (index, total, branch) before each creation attempt.
type ProgressFunc func(index int, total int, branch BranchRef)
