package worktree

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

type Severity string

const (
	SeverityOK    Severity = "ok"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Finding struct {
	Severity     Severity `json:"severity"`
	Check        string   `json:"check"`
	Description  string   `json:"description"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnose inspects the tooling, the repository containing dir, its config
// and its worktrees. It never modifies anything.
func Diagnose(dir string, opts Options) []Finding {
	var findings []Finding
	add := func(sev Severity, check, desc, fix string) {
		findings = append(findings, Finding{Severity: sev, Check: check, Description: desc, SuggestedFix: fix})
	}

	if _, err := lookPath("git"); err != nil {
		add(SeverityError, "git", "git is not installed", "Install git and make sure it is on PATH.")
		return findings
	}
	add(SeverityOK, "git", "git is installed", "")

	repo, err := OpenRepo(dir, opts.Logger)
	if err != nil {
		add(SeverityError, "repository", err.Error(), hintOf(err))
		return findings
	}
	add(SeverityOK, "repository", "repository "+repo.Name+" at "+repo.Root, "")

	cfgPath := ConfigPath(repo)
	cfg, err := decodeConfigFile(cfgPath)
	if err != nil {
		add(SeverityError, "config", err.Error(), "Fix or remove "+cfgPath+".")
		cfg = DefaultConfig()
	} else if exists, _ := pathExists(cfgPath); exists {
		add(SeverityOK, "config", "config loaded from "+cfgPath, "")
	} else {
		add(SeverityInfo, "config", "no config file, using defaults", "Run `git workty config init` to write one.")
	}

	templateOK := true
	if err := ValidateTemplate(cfg.RootTemplate); err != nil {
		templateOK = false
		add(SeverityError, "template", err.Error(), "Set root_template to an absolute path containing {branch}.")
		cfg.RootTemplate = DefaultRootTemplate
	} else {
		add(SeverityOK, "template", "root_template "+cfg.RootTemplate+" is valid", "")
	}

	e := New(repo, cfg, opts)
	if _, err := resolveBase(e.graph, cfg.BaseBranch); err != nil {
		add(SeverityWarn, "base-branch", err.Error(), "Set base_branch in "+cfgPath+" to an existing branch.")
	} else {
		add(SeverityOK, "base-branch", "base branch "+cfg.BaseBranch+" resolves", "")
	}

	records, err := e.Discover()
	if err != nil {
		add(SeverityError, "worktrees", err.Error(), hintOf(err))
		return findings
	}

	findings = append(findings, checkMissingPaths(records)...)
	findings = append(findings, checkDuplicates(records)...)
	if templateOK {
		findings = append(findings, checkOrphans(repo, cfg, records)...)
	}
	for _, rec := range records {
		if !rec.Locked {
			continue
		}
		desc := "worktree " + rec.Path + " is locked"
		if rec.LockReason != "" {
			desc += ": " + rec.LockReason
		}
		add(SeverityInfo, "locked", desc, "Run `git worktree unlock "+rec.Path+"` if the lock is stale.")
	}
	findings = append(findings, checkGH())
	return findings
}

func checkMissingPaths(records []WorktreeRecord) []Finding {
	var out []Finding
	for _, rec := range records {
		exists, err := pathExists(rec.Path)
		if err == nil && exists {
			continue
		}
		desc := "worktree " + rec.Name() + " points at missing directory " + rec.Path
		if err != nil {
			desc = fmt.Sprintf("cannot stat worktree %s: %v", rec.Path, err)
		}
		out = append(out, Finding{Severity: SeverityWarn, Check: "worktree-paths", Description: desc, SuggestedFix: "git worktree prune"})
	}
	if len(out) == 0 {
		out = append(out, Finding{Severity: SeverityOK, Check: "worktree-paths", Description: fmt.Sprintf("all %d worktree paths exist", len(records))})
	}
	return out
}

func checkDuplicates(records []WorktreeRecord) []Finding {
	var out []Finding
	byPath := map[string]string{}
	for _, rec := range records {
		resolved, err := realPathOrAbs(rec.Path)
		if err != nil {
			resolved = rec.Path
		}
		if prev, ok := byPath[resolved]; ok {
			out = append(out, Finding{
				Severity:     SeverityError,
				Check:        "duplicates",
				Description:  fmt.Sprintf("worktrees %s and %s resolve to the same directory %s", prev, rec.Name(), resolved),
				SuggestedFix: "git worktree repair",
			})
			continue
		}
		byPath[resolved] = rec.Name()
	}

	bySegment := map[string][]string{}
	for _, rec := range records {
		if rec.Branch == "" {
			continue
		}
		seg := SanitizeBranch(rec.Branch)
		bySegment[seg] = append(bySegment[seg], rec.Branch)
	}
	segments := make([]string, 0, len(bySegment))
	for seg := range bySegment {
		segments = append(segments, seg)
	}
	sort.Strings(segments)
	for _, seg := range segments {
		if branches := bySegment[seg]; len(branches) > 1 {
			out = append(out, Finding{
				Severity:     SeverityWarn,
				Check:        "duplicates",
				Description:  fmt.Sprintf("branches %s all map to directory name %q", strings.Join(branches, ", "), seg),
				SuggestedFix: "Use --path when creating one of them.",
			})
		}
	}
	if len(out) == 0 {
		out = append(out, Finding{Severity: SeverityOK, Check: "duplicates", Description: "no duplicate worktree paths"})
	}
	return out
}

const branchMarker = "workty-branch-marker"

// worktreeRoot is the directory the template places branch directories
// in. It is only reported for templates whose root is specific to this
// repository, since scanning a shared directory would flag unrelated data.
func worktreeRoot(repo *Repo, template string) (string, bool) {
	idx := strings.Index(template, placeholderBranch)
	if idx < 0 {
		return "", false
	}
	prefix := template[:idx]
	if !strings.Contains(prefix, placeholderRepo) && !strings.Contains(prefix, placeholderID) {
		return "", false
	}
	expanded, err := ExpandTemplate(template, TemplateVars{Repo: repo.Name, ID: repo.ID, Branch: branchMarker})
	if err != nil {
		return "", false
	}
	for cur := expanded; filepath.Dir(cur) != cur; cur = filepath.Dir(cur) {
		if strings.Contains(filepath.Base(cur), branchMarker) {
			return filepath.Dir(cur), true
		}
	}
	return "", false
}

func checkOrphans(repo *Repo, cfg Config, records []WorktreeRecord) []Finding {
	root, ok := worktreeRoot(repo, cfg.RootTemplate)
	if !ok {
		return []Finding{{Severity: SeverityInfo, Check: "orphans", Description: "orphan scan skipped: worktree root is not specific to this repository"}}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Finding{{Severity: SeverityOK, Check: "orphans", Description: "worktree root " + root + " does not exist yet"}}
		}
		return []Finding{{Severity: SeverityWarn, Check: "orphans", Description: fmt.Sprintf("cannot read %s: %v", root, err)}}
	}

	var out []Finding
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if ownedByRecord(dir, records) {
			continue
		}
		out = append(out, Finding{
			Severity:     SeverityWarn,
			Check:        "orphans",
			Description:  "directory " + dir + " is not a registered worktree",
			SuggestedFix: "Remove it, or run `git worktree repair " + dir + "` if it was moved.",
		})
	}
	if len(out) == 0 {
		out = append(out, Finding{Severity: SeverityOK, Check: "orphans", Description: "no orphaned directories under " + root})
	}
	return out
}

func ownedByRecord(dir string, records []WorktreeRecord) bool {
	for _, rec := range records {
		if samePath(dir, rec.Path) || isWithin(rec.Path, dir) {
			return true
		}
	}
	return false
}

func checkGH() Finding {
	gh, err := lookPath("gh")
	if err != nil {
		return Finding{Severity: SeverityInfo, Check: "gh", Description: "gh is not installed; `git workty pr` is unavailable", SuggestedFix: "Install the GitHub CLI from https://cli.github.com."}
	}
	if err := exec.Command(gh, "auth", "status").Run(); err != nil {
		return Finding{Severity: SeverityInfo, Check: "gh", Description: "gh is not authenticated", SuggestedFix: "gh auth login"}
	}
	return Finding{Severity: SeverityOK, Check: "gh", Description: "gh is installed and authenticated"}
}

func hintOf(err error) string {
	var h Hinter
	if errors.As(err, &h) {
		return h.Hint()
	}
	return ""
}
