package submission

import (
	"regexp"
	"sort"
	"strings"
)

// Commit messages end up embedded in LaTeX grading reports; escape the
// characters that would break them.
var escapeTable = map[string]string{
	"&": `\&`,
	"%": `\%`,
	"$": `\$`,
	"#": `\#`,
	"_": `\_`,
	"{": `\{`,
	"}": `\}`,
	"~": `\textasciitilde{}`,
	"^": `\^{}`,
	`\`: `\textbackslash{}`,
	"<": `\textless{}`,
	">": `\textgreater{}`,
}

var escapeRegex = buildEscapeRegex()

func buildEscapeRegex() *regexp.Regexp {
	keys := make([]string, 0, len(escapeTable))
	for k := range escapeTable {
		keys = append(keys, k)
	}
	// longest first so multi-char keys would win, mirroring the table order
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// EscapeMessage escapes a plain-text commit message for safe report embedding.
func EscapeMessage(text string) string {
	return escapeRegex.ReplaceAllStringFunc(text, func(m string) string {
		return escapeTable[m]
	})
}
