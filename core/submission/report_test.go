package submission

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ianchen-tw/invisible-hand/core"
	testutil "github.com/ianchen-tw/invisible-hand/tests"
)

type memberSet map[string]struct{}

func (m memberSet) Contains(handle string) bool {
	_, ok := m[handle]
	return ok
}

func feedWith(dir *testutil.FakeDirectory, repo, sha string, pushedAt time.Time) {
	dir.Events[repo] = []core.RepoEvent{
		{Type: core.PushEventType, CreatedAt: pushedAt, Commits: []core.EventCommit{{SHA: sha, Message: "hand in"}}},
	}
}

func TestCheckerCheck(t *testing.T) {
	loc := time.Local
	deadline := time.Date(2019, 11, 11, 23, 59, 59, 0, loc)

	dir := testutil.NewFakeDirectory()
	feedWith(dir, "hw1-aaa", "aaaaaaa111111", time.Date(2019, 11, 10, 23, 59, 59, 0, loc))
	feedWith(dir, "hw1-bbb", "bbbbbbb111111", time.Date(2019, 11, 11, 22, 59, 59, 0, loc))
	feedWith(dir, "hw1-ccc", "ccccccc111111", time.Date(2019, 11, 12, 13, 0, 11, 0, loc))
	feedWith(dir, "hw1-ddd", "ddddddd111111", time.Date(2019, 11, 13, 20, 59, 59, 0, loc))

	refs := []RepoCommitRef{
		{"hw1-aaa", "aaaaaaa"},
		{"hw1-bbb", "bbbbbbb"},
		{"hw1-ccc", "ccccccc"},
		{"hw1-ddd", "ddddddd"},
	}

	checker := NewChecker(dir, testutil.NewLogger(), 4)
	report, err := checker.Check(context.Background(), refs, deadline, nil)
	if err != nil {
		t.Fatalf("Check() unexpected error: %v", err)
	}

	if report.Total != 4 {
		t.Errorf("Total = %d, want 4", report.Total)
	}
	if report.OnTime != 2 {
		t.Errorf("OnTime = %d, want 2", report.OnTime)
	}
	if len(report.Late) != 2 {
		t.Fatalf("len(Late) = %d, want 2", len(report.Late))
	}
	// sorted by repo name
	if report.Late[0].Ref.Repo != "hw1-ccc" || report.Late[1].Ref.Repo != "hw1-ddd" {
		t.Errorf("Late repos = %s, %s; want hw1-ccc, hw1-ddd", report.Late[0].Ref.Repo, report.Late[1].Ref.Repo)
	}
	if want := 13*time.Hour + 12*time.Second; report.Late[0].Late != want {
		t.Errorf("Late[0].Late = %v, want %v", report.Late[0].Late, want)
	}
	if want := 45 * time.Hour; report.Late[1].Late != want {
		t.Errorf("Late[1].Late = %v, want %v", report.Late[1].Late, want)
	}
}

func TestCheckerSkipsAndConflicts(t *testing.T) {
	loc := time.Local
	deadline := time.Date(2019, 11, 11, 23, 59, 59, 0, loc)
	late := deadline.Add(2 * time.Hour)

	dir := testutil.NewFakeDirectory()
	feedWith(dir, "hw1-aaa", "aaaaaaa111111", late)
	dir.Events["hw1-bbb"] = []core.RepoEvent{
		{Type: core.PushEventType, CreatedAt: late, Commits: []core.EventCommit{
			{SHA: "bbbbbbb111111", Message: "x"},
			{SHA: "bbbbbbb222222", Message: "y"},
		}},
	}
	// hw1-ccc has no feed at all

	refs := []RepoCommitRef{
		{"hw1-aaa", "aaaaaaa"},
		{"hw1-bbb", "bbbbbbb"},
		{"hw1-ccc", "ccccccc"},
	}

	log := testutil.NewLogger()
	checker := NewChecker(dir, log, 2)
	report, err := checker.Check(context.Background(), refs, deadline, nil)
	if err != nil {
		t.Fatalf("Check() unexpected error: %v", err)
	}

	if len(report.Late) != 1 || report.Late[0].Ref.Repo != "hw1-aaa" {
		t.Errorf("Late = %+v, want only hw1-aaa", report.Late)
	}
	if len(report.Ambiguous) != 1 || report.Ambiguous[0].Repo != "hw1-bbb" {
		t.Errorf("Ambiguous = %+v, want only hw1-bbb", report.Ambiguous)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Repo != "hw1-ccc" {
		t.Errorf("Skipped = %+v, want only hw1-ccc", report.Skipped)
	}
	if len(log.Warnings) == 0 {
		t.Error("expected skipped submissions to be warned about")
	}
}

func TestCheckerTeamFilter(t *testing.T) {
	loc := time.Local
	deadline := time.Date(2019, 11, 11, 23, 59, 59, 0, loc)

	dir := testutil.NewFakeDirectory()
	feedWith(dir, "hw1-aaa", "aaaaaaa111111", deadline.Add(time.Hour))
	// hw1-bbb has no feed; it must never be looked up

	refs := []RepoCommitRef{
		{"hw1-aaa", "aaaaaaa"},
		{"hw1-bbb", "bbbbbbb"},
	}

	checker := NewChecker(dir, testutil.NewLogger(), 2)
	report, err := checker.Check(context.Background(), refs, deadline, memberSet{"aaa": {}})
	if err != nil {
		t.Fatalf("Check() unexpected error: %v", err)
	}
	if report.Total != 1 {
		t.Errorf("Total = %d, want 1 (filtered before resolution)", report.Total)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("Skipped = %+v, want none", report.Skipped)
	}
	if len(report.Late) != 1 || report.Late[0].Ref.Repo != "hw1-aaa" {
		t.Errorf("Late = %+v, want only hw1-aaa", report.Late)
	}
}

func TestLateReportRender(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	report := &LateReport{
		RunID:    "00000000-0000-0000-0000-000000000000",
		Deadline: time.Date(2019, 11, 11, 23, 59, 59, 0, loc),
		Total:    4,
		OnTime:   2,
		Late: []Verdict{
			{
				Ref:  RepoCommitRef{Repo: "hw1-ccc", Hash: "ccccccc"},
				Info: CommitPushInfo{Repo: "hw1-ccc", Hash: "ccccccc", PushedAt: time.Date(2019, 11, 12, 13, 0, 11, 0, loc), Message: "hand in"},
				Late: 13*time.Hour + 12*time.Second,
			},
		},
		Skipped:   []RepoCommitRef{{Repo: "hw1-eee", Hash: "eeeeeee"}},
		Ambiguous: []RepoCommitRef{{Repo: "hw1-fff", Hash: "fffffff"}},
	}

	var b strings.Builder
	if err := report.Render(&b); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	want := `==================== REPORT ====================
run: 00000000-0000-0000-0000-000000000000
deadline: 2019-11-11T23:59:59+08:00
total submissions: 4
on time: 2
late submissions: 1
REPO     COMMIT   PUSHED                     LATE BY   MESSAGE
hw1-ccc  ccccccc  2019-11-12T13:00:11+08:00  13h0m12s  hand in
skipped (cannot verify): hw1-eee:eeeeeee
conflict (ambiguous short hash): hw1-fff:fffffff
`
	testutil.AssertEqualText(t, want, b.String())
}
