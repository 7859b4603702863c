package submission

import "testing"

func TestEscapeMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hand in hw1", "hand in hw1"},
		{"percent and ampersand", "score 100% & done", `score 100\% \& done`},
		{"underscore", "fix test_case", `fix test\_case`},
		{"braces", "use {init}", `use \{init\}`},
		{"backslash", `a\b`, `a\textbackslash{}b`},
		{"tilde and caret", "a~b^c", `a\textasciitilde{}b\^{}c`},
		{"angle brackets", "a<b>c", `a\textless{}b\textgreater{}c`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeMessage(tt.in); got != tt.want {
				t.Errorf("EscapeMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
