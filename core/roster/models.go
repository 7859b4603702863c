package roster

import (
	"context"

	"github.com/ianchen-tw/invisible-hand/core"
)

// Student is one roster record. ID is the unique grading identity; Handle is
// the platform account homework repos are named after.
type Student struct {
	ID     string `json:"student_id" validate:"required,nospace"`
	Handle string `json:"github_handle" validate:"required,nospace"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (s Student) Validate() error {
	if err := core.Validate.Struct(s); err != nil {
		return core.NewValidationError(err, core.TranslateErrors(err)...)
	}
	return nil
}

type (
	// Record is a raw spreadsheet row keyed by column header.
	Record map[string]string

	// Source is the spreadsheet adapter. One production implementation
	// (services/gsheet) and an in-memory fake in tests satisfy it.
	Source interface {
		Students(ctx context.Context) ([]Student, error)
		// Records returns the raw rows of an extra worksheet (per-homework
		// grade columns live there), keyed by header.
		Records(ctx context.Context, sheetTitle string) ([]Record, error)
	}
)
