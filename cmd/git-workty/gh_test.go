package main

import (
	"errors"
	"testing"
)

func TestSummarizeCI(t *testing.T) {
	tests := []struct {
		name   string
		checks []ghCheck
		state  PRCIState
		done   int
		total  int
	}{
		{name: "none", checks: nil, state: PRCINone},
		{name: "success", checks: []ghCheck{{Status: "COMPLETED", Conclusion: "SUCCESS"}, {Conclusion: "SKIPPED"}}, state: PRCISuccess, done: 2, total: 2},
		{name: "running", checks: []ghCheck{{Status: "IN_PROGRESS"}, {Status: "COMPLETED", Conclusion: "SUCCESS"}}, state: PRCIInProgress, done: 1, total: 2},
		{name: "failed wins", checks: []ghCheck{{Status: "IN_PROGRESS"}, {Status: "COMPLETED", Conclusion: "FAILURE"}}, state: PRCIFail, done: 1, total: 2},
		{name: "empty entries ignored", checks: []ghCheck{{}}, state: PRCINone},
	}
	for _, tt := range tests {
		state, done, total := summarizeCI(tt.checks)
		if state != tt.state || done != tt.done || total != tt.total {
			t.Fatalf("%s: got (%s, %d, %d), want (%s, %d, %d)", tt.name, state, done, total, tt.state, tt.done, tt.total)
		}
	}
}

func TestPRInfoSummary(t *testing.T) {
	tests := []struct {
		pr   PRInfo
		want string
	}{
		{
			pr:   PRInfo{Number: 4, Status: "open", Branch: "feat/x", CIState: PRCISuccess, CICompleted: 2, CITotal: 2, URL: "https://github.com/acme/demo/pull/4"},
			want: "PR #4 open, checks passing (2/2), branch feat/x\n  https://github.com/acme/demo/pull/4",
		},
		{
			pr:   PRInfo{Number: 5, Status: "open", Branch: "fix", CIState: PRCIFail, CICompleted: 1, CITotal: 3},
			want: "PR #5 open, checks failing (1/3 done), branch fix",
		},
		{
			pr:   PRInfo{Number: 6, Status: "merged", Branch: "old", CIState: PRCINone},
			want: "PR #6 merged, no checks, branch old",
		},
	}
	for _, tt := range tests {
		if got := tt.pr.Summary(); got != tt.want {
			t.Fatalf("Summary() = %q, want %q", got, tt.want)
		}
	}
}

func TestNormalizePRStatus(t *testing.T) {
	if got := normalizePRStatus("OPEN", ""); got != "open" {
		t.Fatalf("expected open, got %q", got)
	}
	if got := normalizePRStatus("CLOSED", "2026-01-02T00:00:00Z"); got != "merged" {
		t.Fatalf("expected merged when mergedAt is set, got %q", got)
	}
	if got := normalizePRStatus("", ""); got != "-" {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

func TestGithubRepoFromRemote(t *testing.T) {
	tests := map[string]string{
		"git@github.com:acme/demo.git":       "acme/demo",
		"https://github.com/acme/demo":       "acme/demo",
		"ssh://git@github.com/acme/demo.git": "acme/demo",
		"https://gitlab.com/acme/demo.git":   "",
		"/srv/git/demo.git":                  "",
		"":                                   "",
	}
	for remote, want := range tests {
		if got := githubRepoFromRemote(remote); got != want {
			t.Fatalf("githubRepoFromRemote(%q) = %q, want %q", remote, got, want)
		}
	}
}

func TestGHClientPullRequest(t *testing.T) {
	var gotArgs []string
	client := newGHClient("/repo", func(dir string, args ...string) ([]byte, error) {
		if dir != "/repo" {
			t.Fatalf("expected gh to run in /repo, got %q", dir)
		}
		gotArgs = args
		return []byte(`{"number":12,"url":" https://github.com/acme/demo/pull/12 ","headRefName":"feat/x","state":"OPEN","statusCheckRollup":[{"status":"COMPLETED","conclusion":"SUCCESS"}]}`), nil
	})

	pr, err := client.PullRequest(12, "acme/demo")
	if err != nil {
		t.Fatalf("pull request: %v", err)
	}
	if pr.Number != 12 || pr.Branch != "feat/x" || pr.Status != "open" || pr.CIState != PRCISuccess {
		t.Fatalf("unexpected pr %+v", pr)
	}
	if pr.URL != "https://github.com/acme/demo/pull/12" {
		t.Fatalf("expected trimmed url, got %q", pr.URL)
	}
	if n := len(gotArgs); n < 2 || gotArgs[n-2] != "--repo" || gotArgs[n-1] != "acme/demo" {
		t.Fatalf("expected --repo acme/demo, got %v", gotArgs)
	}
}

func TestGHClientReady(t *testing.T) {
	client := newGHClient("", func(_ string, args ...string) ([]byte, error) {
		if args[0] == "auth" {
			return nil, errors.New("exit status 1")
		}
		return nil, nil
	})
	err := client.Ready()
	var setup *ghSetupError
	if !errors.As(err, &setup) {
		t.Fatalf("expected setup error, got %v", err)
	}
	if setup.Hint() != "Run `gh auth login`." {
		t.Fatalf("unexpected hint %q", setup.Hint())
	}
}
