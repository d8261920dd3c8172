package main

import (
	"context"
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	uiview "github.com/arbogit/arbo/ui"
)

func newListCommand() *cobra.Command {
	var includeMain bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List worktrees for the current repository",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(includeMain)
		},
	}
	cmd.Flags().BoolVar(&includeMain, "main", true, "Include the main repository row")
	return cmd
}

func runList(includeMain bool) error {
	engine, err := newEngineFromCwd()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := engine.Refresh(ctx); err != nil {
		return err
	}

	records := engine.ListWorktrees()
	rows := make([]uiview.WorktreeRow, 0, len(records)+1)
	if includeMain {
		rows = append(rows, worktreeRow(engine.ResolveMainWorktree(ctx), true))
	}
	for _, rec := range records {
		rows = append(rows, worktreeRow(rec, false))
	}
	fmt.Print(uiview.RenderWorktreeList(rows, uiview.PlainStyles()))
	return nil
}

func worktreeRow(rec WorktreeRecord, isMain bool) uiview.WorktreeRow {
	branch := rec.Branch
	if rec.Detached || branch == "" {
		branch = "detached"
	}
	path := rec.Path
	if !hyperlinksDisabled() {
		path = termenv.Hyperlink("file://"+rec.Path, rec.Path)
	}
	return uiview.WorktreeRow{
		Name:        rec.DisplayName(),
		Branch:      branch,
		StatusLabel: statusLabel(rec.Status),
		Path:        path,
		Active:      rec.IsActive,
		Main:        isMain,
		Locked:      rec.Locked,
		Prunable:    rec.Prunable,
	}
}

func statusLabel(status WorktreeStatusCounts) string {
	if status.Unknown {
		return "unknown"
	}
	if status.Clean {
		return "clean"
	}
	return fmt.Sprintf("+%d ~%d ?%d", status.StagedCount, status.UnstagedCount, status.UntrackedCount)
}
