package roster_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/ianchen-tw/invisible-hand/core"
	"github.com/ianchen-tw/invisible-hand/core/roster"
	testutil "github.com/ianchen-tw/invisible-hand/tests"
)

func TestMain(m *testing.M) {
	core.InitValidators()
	os.Exit(m.Run())
}

func TestServiceLoad(t *testing.T) {
	svc := roster.NewService(testutil.DefaultRoster())
	students, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("len(students) = %d, want 3", len(students))
	}
	if students[0].ID != "A1" || students[0].Handle != "aaa" {
		t.Errorf("students[0] = %+v, want A1/aaa", students[0])
	}
}

func TestServiceLoadRejectsDuplicateID(t *testing.T) {
	src := testutil.DefaultRoster()
	src.Rows = append(src.Rows, roster.Student{ID: "A1", Handle: "zzz"})

	students, err := roster.NewService(src).Load(context.Background())
	if !errors.Is(err, roster.ErrDuplicateID) {
		t.Fatalf("Load() error = %v, want ErrDuplicateID", err)
	}
	if students != nil {
		t.Error("Load() returned a partial roster on a duplicate id")
	}
}

func TestServiceLoadRejectsContaminatedRows(t *testing.T) {
	tests := []struct {
		name    string
		student roster.Student
	}{
		{"space in id", roster.Student{ID: "A4 ", Handle: "ddd"}},
		{"space in handle", roster.Student{ID: "A4", Handle: "dd d"}},
		{"missing id", roster.Student{Handle: "ddd"}},
		{"missing handle", roster.Student{ID: "A4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testutil.DefaultRoster()
			src.Rows = append(src.Rows, tt.student)

			students, err := roster.NewService(src).Load(context.Background())
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Load() error = %v, want a ValidationError", err)
			}
			if students != nil {
				t.Error("Load() returned a partial roster with an invalid row")
			}
		})
	}
}

func TestServiceGet(t *testing.T) {
	svc := roster.NewService(testutil.DefaultRoster())

	s, err := svc.Get(context.Background(), "A2")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if s.Handle != "bbb" {
		t.Errorf("Handle = %q, want %q", s.Handle, "bbb")
	}

	if _, err = svc.Get(context.Background(), "A9"); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("Get(A9) error = %v, want ErrNotFound", err)
	}
}

func TestServiceLeftJoin(t *testing.T) {
	svc := roster.NewService(testutil.DefaultRoster())

	joined, err := svc.LeftJoin(context.Background(), "hw1")
	if err != nil {
		t.Fatalf("LeftJoin() unexpected error: %v", err)
	}
	want := []roster.Record{
		{"student_id": "A1", "github_handle": "aaa", "name": "Andy", "email": "andy@example.com", "score": "99"},
		{"student_id": "A2", "github_handle": "bbb", "name": "Ben", "email": "ben@example.com", "score": "102"},
	}
	if len(joined) != len(want) {
		t.Fatalf("len(joined) = %d, want %d", len(joined), len(want))
	}
	for i := range want {
		for k, v := range want[i] {
			if joined[i][k] != v {
				t.Errorf("joined[%d][%q] = %q, want %q", i, k, joined[i][k], v)
			}
		}
	}
}

func TestServiceLeftJoinUnknownSheet(t *testing.T) {
	svc := roster.NewService(testutil.DefaultRoster())
	if _, err := svc.LeftJoin(context.Background(), "hw9"); err == nil {
		t.Fatal("LeftJoin() expected an error for an unknown worksheet")
	}
}
