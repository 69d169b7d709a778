package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrbonezy/workty/worktree"
)

type WorktreeRow struct {
	Current     bool
	BranchLabel string
	StatusLabel string
	SyncLabel   string
	AgeLabel    string
	PathLabel   string
	Dirty       bool
	Disabled    bool
}

// BuildRows turns annotated worktrees into dashboard rows, keeping their
// order. current is the path of the worktree the user is in, if any.
func BuildRows(items []worktree.Annotated, current string, icons Icons, now time.Time) []WorktreeRow {
	home, _ := os.UserHomeDir()
	rows := make([]WorktreeRow, 0, len(items))
	for _, a := range items {
		row := WorktreeRow{
			Current:     current != "" && a.Record.Path == current,
			BranchLabel: branchLabel(a.Record),
			PathLabel:   shortenHome(a.Record.Path, home),
		}
		if a.Err != nil {
			row.StatusLabel = icons.Missing + " " + failureLabel(a)
			row.SyncLabel = "-"
			row.AgeLabel = "-"
			row.Disabled = true
			rows = append(rows, row)
			continue
		}
		row.Dirty = a.Status.Dirty
		row.StatusLabel = statusLabel(a, icons)
		row.SyncLabel = syncLabel(a.Status, icons)
		row.AgeLabel = FormatAge(a.Status.LastCommit, now)
		rows = append(rows, row)
	}
	return rows
}

func RenderWorktreeList(rows []WorktreeRow, styles Styles, icons Icons) string {
	const (
		markerWidth = 2
		branchWidth = 32
		statusWidth = 16
		syncWidth   = 12
		ageWidth    = 6
	)
	var b strings.Builder
	header := formatWorktreeLine("", "Branch", "Status", "Sync", "Age", "Path", markerWidth, branchWidth, statusWidth, syncWidth, ageWidth)
	b.WriteString(styles.Header(strings.TrimRight(header, " ")))
	b.WriteString("\n")
	for _, row := range rows {
		marker := ""
		if row.Current {
			marker = icons.Current
		}
		line := formatWorktreeLine(marker, row.BranchLabel, row.StatusLabel, row.SyncLabel, row.AgeLabel, row.PathLabel, markerWidth, branchWidth, statusWidth, syncWidth, ageWidth)
		line = strings.TrimRight(line, " ")
		switch {
		case row.Disabled:
			b.WriteString(styles.Disabled(line))
		case row.Current:
			b.WriteString(styles.Selected(line))
		case row.Dirty:
			b.WriteString(styles.Warn(line))
		default:
			b.WriteString(styles.Normal(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatWorktreeLine(marker string, branch string, status string, sync string, age string, path string, markerWidth int, branchWidth int, statusWidth int, syncWidth int, ageWidth int) string {
	return PadOrTrim(marker, markerWidth) +
		PadOrTrim(branch, branchWidth) + " " +
		PadOrTrim(status, statusWidth) + " " +
		PadOrTrim(sync, syncWidth) + " " +
		PadOrTrim(age, ageWidth) + " " +
		path
}

func branchLabel(rec worktree.WorktreeRecord) string {
	label := rec.Name()
	if rec.Detached {
		label = "(detached) " + label
	}
	if rec.Locked {
		label += " [locked]"
	}
	return label
}

func failureLabel(a worktree.Annotated) string {
	if a.Record.Prunable {
		return "missing"
	}
	return "error"
}

func statusLabel(a worktree.Annotated, icons Icons) string {
	s := a.Status
	if !s.Dirty {
		label := icons.Clean
		if s.MergedIntoBase {
			label += " merged"
		}
		return label
	}
	parts := []string{icons.Dirty}
	if s.StagedCount > 0 {
		parts = append(parts, fmt.Sprintf("+%d", s.StagedCount))
	}
	if s.UnstagedCount > 0 {
		parts = append(parts, fmt.Sprintf("~%d", s.UnstagedCount))
	}
	if s.UntrackedCount > 0 {
		parts = append(parts, fmt.Sprintf("?%d", s.UntrackedCount))
	}
	return strings.Join(parts, " ")
}

func syncLabel(s worktree.BranchStatus, icons Icons) string {
	switch {
	case s.UpstreamGone:
		return icons.Gone + " gone"
	case s.Ahead == nil || s.Behind == nil:
		return "-"
	case *s.Ahead == 0 && *s.Behind == 0:
		return "="
	}
	var parts []string
	if *s.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("%s%d", icons.Ahead, *s.Ahead))
	}
	if *s.Behind > 0 {
		parts = append(parts, fmt.Sprintf("%s%d", icons.Behind, *s.Behind))
	}
	return strings.Join(parts, " ")
}

// FormatAge renders the time since t in the largest whole unit.
func FormatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 14*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 60*24*time.Hour:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	default:
		return fmt.Sprintf("%dmo", int(d.Hours()/(24*30)))
	}
}

func shortenHome(path string, home string) string {
	if home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return "~" + string(filepath.Separator) + rel
	}
	return path
}
