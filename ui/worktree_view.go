package ui

import "strings"

type WorktreeRow struct {
	Name        string
	Branch      string
	StatusLabel string
	Path        string
	Active      bool
	Main        bool
	Locked      bool
	Prunable    bool
}

func (r WorktreeRow) markers() string {
	marks := make([]string, 0, 3)
	if r.Active {
		marks = append(marks, "active")
	}
	if r.Main {
		marks = append(marks, "main")
	}
	if r.Locked {
		marks = append(marks, "locked")
	}
	if r.Prunable {
		marks = append(marks, "prunable")
	}
	return strings.Join(marks, ",")
}

// RenderWorktreeList renders a plain table of worktrees.
func RenderWorktreeList(rows []WorktreeRow, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Header("  " + formatWorktreeLine("Name", "Branch", "Status", "", "Path")))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("  " + styles.Normal(formatWorktreeLine(row.Name, row.Branch, row.StatusLabel, row.markers(), row.Path)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderWorktreeSelector renders the interactive picker rows with a cursor.
func RenderWorktreeSelector(rows []WorktreeRow, cursor int, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Header("  " + formatWorktreeLine("Name", "Branch", "Status", "", "Path")))
	b.WriteString("\n")
	for i, row := range rows {
		line := formatWorktreeLine(row.Name, row.Branch, row.StatusLabel, row.markers(), row.Path)
		style := styles.Normal
		if i == cursor {
			style = styles.Selected
		}
		if row.Main {
			style = styles.Secondary
			if i == cursor {
				style = styles.Selected
			}
		}
		prefix := "  "
		if i == cursor {
			prefix = "> "
		}
		b.WriteString(prefix + style(line))
		b.WriteString("\n")
	}
	return b.String()
}

func formatWorktreeLine(name string, branch string, status string, markers string, path string) string {
	const (
		nameWidth    = 24
		branchWidth  = 32
		statusWidth  = 14
		markersWidth = 16
	)
	return PadOrTrim(name, nameWidth) + " " +
		PadOrTrim(branch, branchWidth) + " " +
		PadOrTrim(status, statusWidth) + " " +
		PadOrTrim(markers, markersWidth) + " " +
		path
}
