package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateAllCommand() *cobra.Command {
	var branchTypeFlag string
	var yes bool
	cmd := &cobra.Command{
		Use:   "create-all",
		Short: "Create a worktree for every branch that lacks one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			branchType, ok := ParseBranchType(branchTypeFlag)
			if !ok {
				return usageError(cmd, fmt.Sprintf("invalid --type %q; use local, remote or both", branchTypeFlag))
			}
			return runCreateAll(branchType, yes)
		},
	}
	cmd.Flags().StringVar(&branchTypeFlag, "type", "", "Branch provenance filter: local, remote or both")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runCreateAll(branchType BranchType, yes bool) error {
	engine, err := newEngineFromCwd()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	// Preview before mutating anything.
	branches, err := engine.BranchesWithoutWorktrees(ctx, branchType)
	if err != nil {
		return err
	}
	if len(branches) == 0 {
		fmt.Println("every", branchType.String(), "branch already has a worktree")
		return nil
	}

	if !yes {
		confirmed, err := confirmPrompt(
			fmt.Sprintf("Create %d worktrees?", len(branches)),
			fmt.Sprintf("One worktree per %s branch without one. Ctrl-C cancels mid-run.", branchType.String()),
		)
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}

	outcome, err := engine.CreateForAllBranches(ctx, branchType, func(index int, total int, branch BranchRef) {
		fmt.Printf("[%d/%d] %s\n", index+1, total, string(branch))
	})
	if err != nil {
		return err
	}

	fmt.Printf("created %d, skipped %d, failed %d\n", len(outcome.Created), len(outcome.Skipped), len(outcome.Errors))
	for _, skipped := range outcome.Skipped {
		fmt.Printf("  skipped %s: path already exists\n", string(skipped))
	}
	for _, failure := range outcome.Errors {
		fmt.Printf("  failed %s: %v\n", string(failure.Branch), failure.Err)
	}
	if ctx.Err() != nil {
		fmt.Println("cancelled; remaining branches were not started")
	}
	return nil
}
