package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newRemoveCommand() *cobra.Command {
	var force bool
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   "Remove a worktree",
		Long: "Removes the worktree at <path>. Removing the worktree you are\n" +
			"currently inside switches this session to the main repository first.\n" +
			"The main repository itself is never removable.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return nil
			}
			if len(args) == 0 {
				return usageError(cmd, "missing worktree path argument")
			}
			return usageError(cmd, "too many arguments; provide exactly one worktree path")
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return runRemove(args[0], force, yes)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with local modifications")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runRemove(worktreePath string, force bool, yes bool) error {
	worktreePath = strings.TrimSpace(worktreePath)
	if worktreePath == "" {
		return fmt.Errorf("worktree path required")
	}
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return err
	}
	if !isRepository(abs) {
		return fmt.Errorf("%s is not a worktree", abs)
	}

	engine, err := newEngineFromCwd()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	if !yes {
		description := "The directory and its checkout are deleted."
		if pathsEqual(abs, engine.ActivePath()) {
			description = "This is your current worktree; the session switches to the main repository first."
		}
		confirmed, err := confirmPrompt(fmt.Sprintf("Remove worktree %s?", filepath.Base(abs)), description)
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}

	if err := engine.RemoveWorktree(ctx, abs, force); err != nil {
		if isCancelled(err) {
			return nil
		}
		return err
	}
	fmt.Println("removed", abs)
	return nil
}
