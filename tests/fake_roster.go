package testutil

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core/roster"
)

// FakeSource serves a fixed roster and extra worksheets from memory.
type FakeSource struct {
	Rows   []roster.Student
	Sheets map[string][]roster.Record
}

var _ roster.Source = (*FakeSource)(nil)

func (s *FakeSource) Students(ctx context.Context) ([]roster.Student, error) {
	return s.Rows, nil
}

func (s *FakeSource) Records(ctx context.Context, sheetTitle string) ([]roster.Record, error) {
	sheet, ok := s.Sheets[sheetTitle]
	if !ok {
		return nil, errors.Errorf("no worksheet titled %q", sheetTitle)
	}
	return sheet, nil
}

// DefaultRoster mirrors the roster most tests start from.
func DefaultRoster() *FakeSource {
	return &FakeSource{
		Rows: []roster.Student{
			{ID: "A1", Handle: "aaa", Name: "Andy", Email: "andy@example.com"},
			{ID: "A2", Handle: "bbb", Name: "Ben", Email: "ben@example.com"},
			{ID: "A3", Handle: "ccc", Name: "Cindy", Email: "cindy@example.com"},
		},
		Sheets: map[string][]roster.Record{
			"hw1": {
				{"student_id": "A1", "score": "99"},
				{"student_id": "A2", "score": "102"},
			},
		},
	}
}
