package classroom

import (
	"context"
	"errors"
	"testing"

	"github.com/ianchen-tw/invisible-hand/core"
	testutil "github.com/ianchen-tw/invisible-hand/tests"
)

func seedDirectory() *testutil.FakeDirectory {
	dir := testutil.NewFakeDirectory()
	for _, h := range []string{"aaa", "bbb", "ccc", "ddd", "eee"} {
		dir.Users[h] = true
	}
	dir.SetTeam("students", map[string]core.MembershipState{
		"aaa": core.MembershipMember,
		"bbb": core.MembershipPending,
	})
	return dir
}

func newTestReconciler(t *testing.T, dir core.RemoteDirectory) *Reconciler {
	t.Helper()
	rc, err := NewReconciler(context.Background(), dir, "students", testutil.NewLogger(), 4)
	if err != nil {
		t.Fatalf("NewReconciler() unexpected error: %v", err)
	}
	return rc
}

func TestReconcilerPartitions(t *testing.T) {
	dir := seedDirectory()
	rc := newTestReconciler(t, dir)

	res, err := rc.Reconcile(context.Background(), []string{"aaa", "bbb", "ccc", "ghost"})
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}

	testutil.AssertStrings(t, "AlreadyMember", []string{"aaa"}, res.AlreadyMember)
	testutil.AssertStrings(t, "Pending", []string{"bbb"}, res.Pending)
	testutil.AssertStrings(t, "Invited", []string{"ccc"}, res.Invited)
	testutil.AssertStrings(t, "Invalid", []string{"ghost"}, res.Invalid)
	testutil.AssertStrings(t, "Failed", nil, res.Failed)

	if got := dir.InviteCalls["ccc"]; got != 1 {
		t.Errorf("invites for ccc = %d, want 1", got)
	}
	for _, h := range []string{"aaa", "bbb", "ghost"} {
		if got := dir.InviteCalls[h]; got != 0 {
			t.Errorf("invites for %s = %d, want 0", h, got)
		}
	}
}

func TestReconcilerInputCleaning(t *testing.T) {
	dir := seedDirectory()
	rc := newTestReconciler(t, dir)

	res, err := rc.Reconcile(context.Background(), []string{" ccc ", "ccc", "", "  "})
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}
	testutil.AssertStrings(t, "Invited", []string{"ccc"}, res.Invited)
	if got := dir.InviteCalls["ccc"]; got != 1 {
		t.Errorf("invites for ccc = %d, want 1 (duplicates must collapse)", got)
	}
}

// A second run over the same input must converge: the invite from the first
// run shows up as pending, nothing is invited twice.
func TestReconcilerIdempotence(t *testing.T) {
	dir := seedDirectory()
	handles := []string{"aaa", "ccc", "ddd"}

	rc := newTestReconciler(t, dir)
	if _, err := rc.Reconcile(context.Background(), handles); err != nil {
		t.Fatalf("first Reconcile() unexpected error: %v", err)
	}

	rc = newTestReconciler(t, dir)
	res, err := rc.Reconcile(context.Background(), handles)
	if err != nil {
		t.Fatalf("second Reconcile() unexpected error: %v", err)
	}

	testutil.AssertStrings(t, "Pending", []string{"ccc", "ddd"}, res.Pending)
	testutil.AssertStrings(t, "Invited", nil, res.Invited)
	for _, h := range []string{"ccc", "ddd"} {
		if got := dir.InviteCalls[h]; got != 1 {
			t.Errorf("invites for %s = %d, want 1 across both runs", h, got)
		}
	}
}

func TestReconcilerInviteFailure(t *testing.T) {
	dir := seedDirectory()
	dir.FailInvites["ccc"] = true
	rc := newTestReconciler(t, dir)

	res, err := rc.Reconcile(context.Background(), []string{"ccc", "ddd"})
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}
	testutil.AssertStrings(t, "Failed", []string{"ccc"}, res.Failed)
	testutil.AssertStrings(t, "Invited", []string{"ddd"}, res.Invited)
}

func TestReconcilerUnrecognizedState(t *testing.T) {
	dir := seedDirectory()
	dir.Teams["students"]["eee"] = core.MembershipState("suspended")
	log := testutil.NewLogger()

	rc, err := NewReconciler(context.Background(), dir, "students", log, 4)
	if err != nil {
		t.Fatalf("NewReconciler() unexpected error: %v", err)
	}
	res, err := rc.Reconcile(context.Background(), []string{"eee"})
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}

	// conservatively treated as not invited
	testutil.AssertStrings(t, "Invited", []string{"eee"}, res.Invited)
	if len(log.Warnings) == 0 {
		t.Error("expected a warning for the unrecognized membership state")
	}
}

func TestReconcilerUnknownTeam(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	_, err := NewReconciler(context.Background(), dir, "nope", testutil.NewLogger(), 4)
	if err == nil {
		t.Fatal("NewReconciler() expected an error for an unknown team")
	}
	if !errors.Is(err, ErrCannotFetchTeam) {
		t.Errorf("error = %v, want ErrCannotFetchTeam", err)
	}
}

func TestDryDirectoryReconcile(t *testing.T) {
	real := seedDirectory()
	dry := NewDryDirectory(real)

	rc, err := NewReconciler(context.Background(), dry, "students", testutil.NewLogger(), 4)
	if err != nil {
		t.Fatalf("NewReconciler() unexpected error: %v", err)
	}
	res, err := rc.Reconcile(context.Background(), []string{"aaa", "ccc", "ghost"})
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}

	// simulated snapshot: empty team, every user valid, nobody invited yet
	testutil.AssertStrings(t, "Invited", []string{"aaa", "ccc", "ghost"}, res.Invited)
	if real.MutationCalls != 0 {
		t.Errorf("MutationCalls = %d, want 0 in a rehearsal run", real.MutationCalls)
	}
}
