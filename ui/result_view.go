package ui

import (
	"fmt"
	"strings"

	"github.com/mrbonezy/workty/worktree"
)

type ResultRow struct {
	KindLabel   string
	Branch      string
	Path        string
	DetailLabel string
	Kind        worktree.ResultKind
}

func BuildResultRow(r worktree.LifecycleResult, home string) ResultRow {
	return ResultRow{
		KindLabel:   formatKindLabel(r.Kind),
		Branch:      r.Branch,
		Path:        shortenHome(r.Path, home),
		DetailLabel: formatResultDetail(r),
		Kind:        r.Kind,
	}
}

// RenderResults prints one line per lifecycle result. An empty set prints
// emptyMessage instead.
func RenderResults(rows []ResultRow, emptyMessage string, styles Styles) string {
	const (
		kindWidth   = 9
		branchWidth = 32
		detailWidth = 24
	)
	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(styles.Secondary(emptyMessage))
		b.WriteString("\n")
		return b.String()
	}
	for _, row := range rows {
		line := strings.TrimRight(formatResultLine(row.KindLabel, row.Branch, row.DetailLabel, row.Path, kindWidth, branchWidth, detailWidth), " ")
		switch row.Kind {
		case worktree.ResultRemoved, worktree.ResultCreated:
			b.WriteString(styles.OK(line))
		case worktree.ResultFailed:
			b.WriteString(styles.Error(line))
		case worktree.ResultSkipped:
			b.WriteString(styles.Warn(line))
		default:
			b.WriteString(styles.Normal(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatResultLine(kind string, branch string, detail string, path string, kindWidth int, branchWidth int, detailWidth int) string {
	return PadOrTrim(kind, kindWidth) + " " +
		PadOrTrim(branch, branchWidth) + " " +
		PadOrTrim(detail, detailWidth) + " " +
		path
}

func formatKindLabel(kind worktree.ResultKind) string {
	switch kind {
	case worktree.ResultPlanned:
		return "would rm"
	case worktree.ResultRemoved:
		return "removed"
	case worktree.ResultSkipped:
		return "skipped"
	case worktree.ResultFailed:
		return "failed"
	case worktree.ResultCreated:
		return "created"
	}
	return string(kind)
}

func formatResultDetail(r worktree.LifecycleResult) string {
	var parts []string
	if r.Reason != "" {
		parts = append(parts, r.Reason)
	}
	if r.BranchDeleted {
		parts = append(parts, "branch deleted")
	}
	if r.Warning != "" {
		parts = append(parts, r.Warning)
	}
	if r.Err != nil {
		parts = append(parts, r.Err.Error())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

// SummarizeResults counts results per kind, in a fixed order.
func SummarizeResults(results []worktree.LifecycleResult) string {
	counts := map[worktree.ResultKind]int{}
	for _, r := range results {
		counts[r.Kind]++
	}
	order := []worktree.ResultKind{worktree.ResultRemoved, worktree.ResultPlanned, worktree.ResultSkipped, worktree.ResultFailed}
	var parts []string
	for _, kind := range order {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// RenderFindings prints doctor findings, with the suggested fix indented
// under each non-ok finding.
func RenderFindings(findings []worktree.Finding, styles Styles, icons Icons) string {
	var b strings.Builder
	for _, f := range findings {
		label := severityLabel(f.Severity, icons)
		line := PadOrTrim(label, 6) + " " + PadOrTrim(f.Check, 15) + " " + f.Description
		switch f.Severity {
		case worktree.SeverityOK:
			b.WriteString(styles.OK(line))
		case worktree.SeverityWarn:
			b.WriteString(styles.Warn(line))
		case worktree.SeverityError:
			b.WriteString(styles.Error(line))
		default:
			b.WriteString(styles.Normal(line))
		}
		b.WriteString("\n")
		if f.SuggestedFix != "" && f.Severity != worktree.SeverityOK {
			b.WriteString(styles.Secondary(strings.Repeat(" ", 23) + "fix: " + f.SuggestedFix))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func severityLabel(sev worktree.Severity, icons Icons) string {
	switch sev {
	case worktree.SeverityOK:
		return icons.Clean
	case worktree.SeverityWarn:
		return "warn"
	case worktree.SeverityError:
		return "error"
	}
	return "info"
}
