package gsheetsvc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ianchen-tw/invisible-hand/core"
	"github.com/ianchen-tw/invisible-hand/core/roster"
)

// studentSheetTitle is the worksheet holding the main roster.
const studentSheetTitle = "StudentInfo"

// Source reads the class roster from a Google spreadsheet; the production
// roster.Source.
type Source struct {
	svc           *sheets.Service
	spreadsheetID string
}

var _ roster.Source = (*Source)(nil)

func NewSource(ctx context.Context, conf *core.Config) (*Source, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(conf.GoogleCredentials),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets client")
	}
	return &Source{svc: svc, spreadsheetID: conf.SpreadsheetID}, nil
}

func (s *Source) Students(ctx context.Context) ([]roster.Student, error) {
	records, err := s.Records(ctx, studentSheetTitle)
	if err != nil {
		return nil, err
	}
	students := make([]roster.Student, 0, len(records))
	for _, rec := range records {
		students = append(students, roster.Student{
			ID:     rec["student_id"],
			Handle: rec["github_handle"],
			Name:   rec["name"],
			Email:  rec["email"],
		})
	}
	return students, nil
}

// Records fetches a worksheet and keys each row by its header. Columns with
// a blank header are dropped; rows shorter than the header are padded.
func (s *Source) Records(ctx context.Context, sheetTitle string) ([]roster.Record, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheetTitle).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "fetching worksheet %q", sheetTitle)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	fieldIndex := make(map[string]int)
	for i, cell := range resp.Values[0] {
		if field := core.CleanString(asString(cell)); field != "" {
			fieldIndex[field] = i
		}
	}

	records := make([]roster.Record, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rec := make(roster.Record, len(fieldIndex))
		for field, i := range fieldIndex {
			if i < len(row) {
				rec[field] = asString(row[i])
			} else {
				rec[field] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func asString(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}
