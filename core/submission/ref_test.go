package submission

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		tok     string
		want    RepoCommitRef
		wantErr bool
	}{
		{name: "valid", tok: "hw0-ianre657:cb75e99", want: RepoCommitRef{Repo: "hw0-ianre657", Hash: "cb75e99"}},
		{name: "short hash", tok: "repo1:aaa", want: RepoCommitRef{Repo: "repo1", Hash: "aaa"}},
		{name: "missing colon", tok: "repo1-aaa", wantErr: true},
		{name: "two colons", tok: "repo1:aaa:bbb", wantErr: true},
		{name: "empty repo", tok: ":aaa", wantErr: true},
		{name: "empty hash", tok: "repo1:", wantErr: true},
		{name: "empty token", tok: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.tok)
			if tt.wantErr {
				if !errors.Is(err, ErrBadRef) {
					t.Errorf("ParseRef(%q) error = %v, want ErrBadRef", tt.tok, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%q) unexpected error: %v", tt.tok, err)
			}
			if got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.tok, got, tt.want)
			}
		})
	}
}

func TestParseRefs(t *testing.T) {
	refs, err := ParseRefs(strings.NewReader("repo1:aaa repo2:bbb\n\trepo3:ccc\n"))
	if err != nil {
		t.Fatalf("ParseRefs() unexpected error: %v", err)
	}
	want := []RepoCommitRef{{"repo1", "aaa"}, {"repo2", "bbb"}, {"repo3", "ccc"}}
	if len(refs) != len(want) {
		t.Fatalf("ParseRefs() = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("ParseRefs()[%d] = %+v, want %+v", i, refs[i], want[i])
		}
	}
}

func TestParseRefsRejectsWholeInput(t *testing.T) {
	if _, err := ParseRefs(strings.NewReader("repo1:aaa repo2-bbb")); !errors.Is(err, ErrBadRef) {
		t.Errorf("ParseRefs() error = %v, want ErrBadRef", err)
	}
}
