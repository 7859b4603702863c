package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ianchen-tw/invisible-hand/core"
)

// Logger records messages for assertions while keeping tests quiet.
type Logger struct {
	mu       sync.Mutex
	Warnings []string
	Errors   []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) Enable(enabled bool)                   {}
func (l *Logger) Debug(msg string, args ...interface{}) {}
func (l *Logger) Info(msg string, args ...interface{})  {}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warnings = append(l.Warnings, msg)
}
func (l *Logger) Error(msg string, err error, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, fmt.Sprintf("%s: %v", msg, err))
}

// AssertEqualText diffs two multi-line strings on mismatch.
func AssertEqualText(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("text mismatch:\n%s", diff)
}

// AssertStrings compares two string slices element-wise.
func AssertStrings(t *testing.T, name string, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s = %v, want %v", name, got, want)
		return
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}
