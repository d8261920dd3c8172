package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

func isRepository(dir string) bool {
	_, err := repositoryRoot(dir)
	return err == nil
}

// repositoryRoot walks upward from dir until it finds a .git entry. The
// entry may be a directory (main repository) or a gitdir pointer file
// (linked worktree).
func repositoryRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errNotInGitRepository
		}
		dir = wd
	}
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", errNotInGitRepository
	}
	for {
		dotGit := filepath.Join(current, ".git")
		if _, err := os.Stat(dotGit); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", errNotInGitRepository
}

// mainRepositoryRoot resolves the main repository directory for dir, which
// may itself be inside a linked worktree. The main repository never appears
// in the worktree listing, so this is the only way to locate it.
func mainRepositoryRoot(dir string) (string, error) {
	root, err := repositoryRoot(dir)
	if err != nil {
		return "", err
	}
	commonDir, err := gitCommonDir(root)
	if err != nil {
		return "", err
	}
	return filepath.Dir(commonDir), nil
}

func isLinkedWorktreeDir(dir string) bool {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return false
	}
	dotGit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotGit)
	if err != nil || info.IsDir() {
		return false
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(string(data)), "gitdir:")
}

func gitCommonDir(repoRoot string) (string, error) {
	repoRoot = strings.TrimSpace(repoRoot)
	if repoRoot == "" {
		return "", errNotInGitRepository
	}
	dotGit := filepath.Join(repoRoot, ".git")
	info, err := os.Stat(dotGit)
	if err == nil && info.IsDir() {
		return filepath.Abs(dotGit)
	}
	if err == nil && !info.IsDir() {
		return parseGitdirPointer(dotGit, repoRoot)
	}
	if errors.Is(err, os.ErrNotExist) {
		return "", errNotInGitRepository
	}
	return "", err
}

func parseGitdirPointer(dotGitFile string, repoRoot string) (string, error) {
	data, err := os.ReadFile(dotGitFile)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(data))
	const prefix = "gitdir:"
	if !strings.HasPrefix(strings.ToLower(line), prefix) {
		return "", fmt.Errorf("invalid .git file format in %s", repoRoot)
	}
	target := strings.TrimSpace(line[len(prefix):])
	if target == "" {
		return "", fmt.Errorf("empty gitdir in %s", repoRoot)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(repoRoot, target)
	}
	target = filepath.Clean(target)
	// The common dir precedes the last "worktrees" segment; the repository
	// itself may live under a directory named worktrees.
	sep := string(filepath.Separator) + "worktrees" + string(filepath.Separator)
	if idx := strings.LastIndex(target, sep); idx > 0 {
		return filepath.Clean(target[:idx]), nil
	}
	return target, nil
}

// resolveMainWorktree returns a record for the main repository. The worktree
// listing excludes the main repository, so when the snapshot has no record at
// the main root one is synthesized from in-process lookups, falling back to a
// clean "main" record if every lookup fails. It never returns an error:
// removal of the active worktree depends on always having an escape target.
func resolveMainWorktree(ctx context.Context, runner GitRunner, snapshot []WorktreeRecord, mainRoot string, activePath string) WorktreeRecord {
	for _, rec := range snapshot {
		if rec.Path == mainRoot {
			rec.IsActive = pathsEqual(rec.Path, activePath)
			return rec
		}
	}

	record := WorktreeRecord{
		Path:     mainRoot,
		Branch:   "main",
		Status:   WorktreeStatusCounts{Clean: true},
		IsActive: pathsEqual(mainRoot, activePath),
	}
	repo, err := git.PlainOpenWithOptions(mainRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return record
	}
	if head, err := repo.Head(); err == nil {
		record.HeadCommit = head.Hash().String()
		if head.Name().IsBranch() {
			record.Branch = head.Name().Short()
		} else {
			record.Detached = true
		}
	}
	if counts, err := statusCounts(ctx, runner, mainRoot); err == nil {
		record.Status = counts
	}
	return record
}

// statusCounts reads working-tree status for one worktree. go-git's linked
// worktree support is incomplete, so linked worktrees go through the git
// binary instead.
func statusCounts(ctx context.Context, runner GitRunner, dir string) (WorktreeStatusCounts, error) {
	if !isLinkedWorktreeDir(dir) {
		if counts, err := goGitStatusCounts(dir); err == nil {
			return counts, nil
		}
	}
	out, err := runner.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return WorktreeStatusCounts{Unknown: true}, err
	}
	return parseStatusCounts(out), nil
}

func goGitStatusCounts(dir string) (WorktreeStatusCounts, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return WorktreeStatusCounts{Unknown: true}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return WorktreeStatusCounts{Unknown: true}, err
	}
	st, err := wt.Status()
	if err != nil {
		return WorktreeStatusCounts{Unknown: true}, err
	}
	counts := WorktreeStatusCounts{}
	for _, file := range st {
		if file.Staging == git.Untracked {
			counts.UntrackedCount++
			continue
		}
		if file.Staging != git.Unmodified {
			counts.StagedCount++
		}
		if file.Worktree != git.Unmodified && file.Worktree != git.Untracked {
			counts.UnstagedCount++
		}
	}
	counts.Clean = counts.StagedCount == 0 && counts.UnstagedCount == 0 && counts.UntrackedCount == 0
	return counts, nil
}

func parseStatusCounts(porcelain string) WorktreeStatusCounts {
	counts := WorktreeStatusCounts{}
	for _, line := range strings.Split(porcelain, "\n") {
		if len(line) < 2 {
			continue
		}
		staged, unstaged := line[0], line[1]
		if staged == '?' {
			counts.UntrackedCount++
			continue
		}
		if staged != ' ' {
			counts.StagedCount++
		}
		if unstaged != ' ' && unstaged != '?' {
			counts.UnstagedCount++
		}
	}
	counts.Clean = counts.StagedCount == 0 && counts.UnstagedCount == 0 && counts.UntrackedCount == 0
	return counts
}

func pathsEqual(a string, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
