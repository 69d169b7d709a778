package worktree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	placeholderRepo   = "{repo}"
	placeholderID     = "{id}"
	placeholderBranch = "{branch}"
)

var userHomeDir = os.UserHomeDir

// SanitizeBranch maps a branch name to a single directory segment:
// anything but letters, digits, '-' and '_' becomes '-'.
func SanitizeBranch(branch string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, branch)
	return strings.Trim(mapped, "-")
}

// TemplateVars are the values substituted into root_template.
type TemplateVars struct {
	Repo   string
	ID     string
	Branch string
}

func (r *Repo) templateVars(branch string) TemplateVars {
	return TemplateVars{Repo: r.Name, ID: r.ID, Branch: SanitizeBranch(branch)}
}

// ExpandTemplate substitutes placeholders, expands a leading ~ and returns a
// cleaned absolute path.
func ExpandTemplate(template string, vars TemplateVars) (string, error) {
	out := strings.NewReplacer(
		placeholderRepo, vars.Repo,
		placeholderID, vars.ID,
		placeholderBranch, vars.Branch,
	).Replace(strings.TrimSpace(template))

	if out == "~" || strings.HasPrefix(out, "~/") {
		home, err := userHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		out = filepath.Join(home, strings.TrimPrefix(out, "~"))
	}
	if !filepath.IsAbs(out) {
		return "", fmt.Errorf("root_template %q does not expand to an absolute path", template)
	}
	return filepath.Clean(out), nil
}

// ValidateTemplate checks that template yields well-formed, per-branch paths.
func ValidateTemplate(template string) error {
	template = strings.TrimSpace(template)
	if template == "" {
		return errors.New("root_template is empty")
	}
	depth := 0
	var name strings.Builder
	for _, r := range template {
		switch {
		case r == '{':
			if depth > 0 {
				return fmt.Errorf("root_template %q has nested braces", template)
			}
			depth++
			name.Reset()
		case r == '}':
			if depth == 0 {
				return fmt.Errorf("root_template %q has an unmatched }", template)
			}
			depth--
			switch "{" + name.String() + "}" {
			case placeholderRepo, placeholderID, placeholderBranch:
			default:
				return fmt.Errorf("root_template %q uses unknown placeholder {%s}", template, name.String())
			}
		case depth > 0:
			name.WriteRune(r)
		}
	}
	if depth != 0 {
		return fmt.Errorf("root_template %q has an unmatched {", template)
	}
	if !strings.Contains(template, placeholderBranch) {
		return fmt.Errorf("root_template %q must contain %s", template, placeholderBranch)
	}
	_, err := ExpandTemplate(template, TemplateVars{Repo: "repo", ID: "0000000", Branch: "branch"})
	return err
}

// Resolve returns the directory for branch. It is deterministic for a given
// branch, config and repository. The live records, not just the
// filesystem, decide whether the path is taken.
func Resolve(branch string, cfg Config, repo *Repo, records []WorktreeRecord) (string, error) {
	vars := repo.templateVars(branch)
	if vars.Branch == "" {
		return "", fmt.Errorf("branch name %q has no path-safe characters", branch)
	}
	path, err := ExpandTemplate(cfg.RootTemplate, vars)
	if err != nil {
		return "", err
	}
	return path, checkPathFree(path, branch, records)
}

func checkPathFree(path string, branch string, records []WorktreeRecord) error {
	for _, rec := range records {
		if !samePath(rec.Path, path) {
			continue
		}
		if rec.Branch == branch {
			return nil
		}
		existing := rec.Branch
		if existing == "" {
			existing = rec.Name()
		}
		return &PathCollisionError{Path: path, Branch: branch, Existing: existing}
	}
	exists, err := pathExists(path)
	if err != nil {
		return err
	}
	if exists {
		return &PathCollisionError{Path: path, Branch: branch}
	}
	return nil
}

func samePath(a string, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := realPathOrAbs(a)
	rb, errB := realPathOrAbs(b)
	return errA == nil && errB == nil && ra == rb
}
