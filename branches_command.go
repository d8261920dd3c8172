package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchesCommand() *cobra.Command {
	var branchTypeFlag string
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List branches that have no worktree yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			branchType, ok := ParseBranchType(branchTypeFlag)
			if !ok {
				return usageError(cmd, fmt.Sprintf("invalid --type %q; use local, remote or both", branchTypeFlag))
			}
			return runBranches(branchType)
		},
	}
	cmd.Flags().StringVar(&branchTypeFlag, "type", "both", "Branch provenance filter: local, remote or both")
	return cmd
}

func runBranches(branchType BranchType) error {
	engine, err := newEngineFromCwd()
	if err != nil {
		return err
	}
	branches, err := engine.BranchesWithoutWorktrees(context.Background(), branchType)
	if err != nil {
		return err
	}
	if len(branches) == 0 {
		fmt.Println("every", branchType.String(), "branch already has a worktree")
		return nil
	}
	for _, branch := range branches {
		fmt.Println(string(branch))
	}
	return nil
}
