package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	var create bool
	var orphan bool
	var force bool
	var targetPath string

	cmd := &cobra.Command{
		Use:   "create <branch>",
		Short: "Create a worktree for a branch",
		Long: "Without -b, <branch> must already exist locally or on a remote.\n" +
			"With -b, a new branch is created at the worktree.\n" +
			"With --orphan, the worktree starts on an empty branch with no history.",
		Example: strings.Join([]string{
			"  arbo create feature/auth-flow",
			"  arbo create -b feature/new-api",
			"  arbo create --orphan scratch",
			"  arbo create feature/auth-flow --path ../checkouts/auth",
		}, "\n"),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return nil
			}
			if len(args) == 0 {
				return usageError(cmd, "missing branch argument")
			}
			return usageError(cmd, "too many arguments; provide exactly one branch name")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if orphan && !create {
				// An orphan branch is by definition new.
				create = true
			}
			return runCreate(args[0], targetPath, CreateOptions{
				NewBranch: create && !orphan,
				Orphan:    orphan,
				Force:     force,
			})
		},
	}

	cmd.Flags().BoolVarP(&create, "new-branch", "b", false, "Create a new branch")
	cmd.Flags().BoolVar(&orphan, "orphan", false, "Create an orphan branch with no history")
	cmd.Flags().BoolVar(&force, "force", false, "Force creation over a stale registration")
	cmd.Flags().StringVar(&targetPath, "path", "", "Destination path (defaults to the naming template)")
	cmd.ValidArgsFunction = createBranchCompletion
	return cmd
}

func runCreate(branch string, targetPath string, opts CreateOptions) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return fmt.Errorf("branch name required")
	}
	engine, err := newEngineFromCwd()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	if err := engine.CreateWorktree(ctx, BranchRef(branch), targetPath, opts); err != nil {
		if isCancelled(err) {
			return nil
		}
		return err
	}
	path := targetPath
	if path == "" {
		path = engine.WorktreePathFor(BranchRef(branch))
	}
	fmt.Println("created", path)
	return nil
}

// createBranchCompletion suggests recently provisioned branches first, then
// branches the reconciler reports as lacking a worktree.
func createBranchCompletion(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	engine, err := newEngineFromCwd()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	suggestions := make([]string, 0, recentBranchCacheLimit)
	seen := make(map[string]bool)
	if recent, err := readRecentBranches(engine.RepoRoot(), recentBranchCacheLimit); err == nil {
		for _, b := range recent {
			if strings.HasPrefix(b, toComplete) && !seen[b] {
				seen[b] = true
				suggestions = append(suggestions, b)
			}
		}
	}
	if branches, err := engine.BranchesWithoutWorktrees(context.Background(), BranchTypeBoth); err == nil {
		extra := make([]string, 0, len(branches))
		for _, b := range branches {
			name := string(b)
			if strings.HasPrefix(name, toComplete) && !seen[name] {
				seen[name] = true
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		suggestions = append(suggestions, extra...)
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
