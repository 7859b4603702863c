package classroom

import (
	"context"
	"testing"

	"github.com/ianchen-tw/invisible-hand/core"
	testutil "github.com/ianchen-tw/invisible-hand/tests"
)

func TestNewTeamSnapshot(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetTeam("students", map[string]core.MembershipState{
		"bbb": core.MembershipMember,
		"aaa": core.MembershipMember,
		"ccc": core.MembershipPending, // invited, not a member yet
	})

	team, err := NewTeam(context.Background(), dir, "students")
	if err != nil {
		t.Fatalf("NewTeam() unexpected error: %v", err)
	}
	if team.Len() != 2 {
		t.Errorf("Len() = %d, want 2", team.Len())
	}
	testutil.AssertStrings(t, "Members", []string{"aaa", "bbb"}, team.Members())
	if !team.Contains("aaa") {
		t.Error("Contains(aaa) = false, want true")
	}
	if team.Contains("ccc") {
		t.Error("Contains(ccc) = true, want false for a pending invite")
	}
}

func TestNewTeamUnknownSlug(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	if _, err := NewTeam(context.Background(), dir, "nope"); err == nil {
		t.Fatal("NewTeam() expected an error for an unknown slug")
	}
}

func TestGrantReadAccess(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	dir.SetTeam("readers", map[string]core.MembershipState{"ta": core.MembershipMember})

	team, err := NewTeam(context.Background(), dir, "readers")
	if err != nil {
		t.Fatalf("NewTeam() unexpected error: %v", err)
	}

	repos := []string{"hw1-bbb", "hw1-aaa", "hw1-ccc"}
	res := GrantReadAccess(context.Background(), team, repos, testutil.NewLogger(), 2)
	testutil.AssertStrings(t, "Granted", []string{"hw1-aaa", "hw1-bbb", "hw1-ccc"}, res.Granted)
	testutil.AssertStrings(t, "Failed", nil, res.Failed)
	if dir.MutationCalls != 3 {
		t.Errorf("MutationCalls = %d, want 3", dir.MutationCalls)
	}
}
