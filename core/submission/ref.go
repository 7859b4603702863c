package submission

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadRef reports a malformed repo:hash token.
var ErrBadRef = errors.New(`submission ref must look like "repo-name:short-hash"`)

// RepoCommitRef identifies one submission to check: a homework repository and
// the short hash the student claims to have handed in.
type RepoCommitRef struct {
	Repo string
	Hash string
}

// ParseRef parses a single "repo:hash" token. Exactly one colon, both parts
// non-empty.
func ParseRef(tok string) (RepoCommitRef, error) {
	parts := strings.Split(tok, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoCommitRef{}, errors.Wrapf(ErrBadRef, "parsing %q", tok)
	}
	return RepoCommitRef{Repo: parts[0], Hash: parts[1]}, nil
}

// ParseRefs reads whitespace-separated repo:hash tokens. The first malformed
// token fails the whole parse; a half-read submission list must never reach
// the checker.
func ParseRefs(r io.Reader) ([]RepoCommitRef, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var refs []RepoCommitRef
	for sc.Scan() {
		ref, err := ParseRef(sc.Text())
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading submission list")
	}
	return refs, nil
}
