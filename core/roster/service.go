package roster

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core"
)

var (
	ErrNotFound = errors.New("student not found in roster")
	// ErrDuplicateID rejects the whole roster: silently de-duplicating could
	// hide a grading-identity collision.
	ErrDuplicateID = errors.New("duplicate student id in roster")
)

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Load fetches and validates the full roster. Any integrity violation
// (duplicate id, whitespace-contaminated id or handle) rejects the roster as
// a whole; there is no partial result.
func (svc *Service) Load(ctx context.Context) ([]Student, error) {
	students, err := svc.src.Students(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching roster")
	}

	var flds []core.FieldError
	seen := make(map[string]struct{}, len(students))
	for i, s := range students {
		if err := s.Validate(); err != nil {
			var vErr *core.ValidationError
			if errors.As(err, &vErr) {
				for _, fe := range vErr.Fields {
					flds = append(flds, core.FieldError{
						Field: fmt.Sprintf("row %d: %s", i+1, fe.Field),
						Error: fe.Error,
					})
				}
				continue
			}
			return nil, err
		}
		if _, dup := seen[s.ID]; dup {
			return nil, errors.Wrapf(ErrDuplicateID, "student_id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	if len(flds) > 0 {
		return nil, core.NewValidationError(errors.New("roster contains invalid records"), flds...)
	}
	return students, nil
}

// Get traverses the roster for a single student.
func (svc *Service) Get(ctx context.Context, studentID string) (Student, error) {
	students, err := svc.Load(ctx)
	if err != nil {
		return Student{}, err
	}
	for _, s := range students {
		if s.ID == studentID {
			return s, nil
		}
	}
	return Student{}, errors.Wrapf(ErrNotFound, "student_id %q", studentID)
}

// LeftJoin matches the roster against another worksheet on student_id and
// merges the matched rows, roster columns first. Students without a matching
// row are dropped, mirroring an inner match on the key.
func (svc *Service) LeftJoin(ctx context.Context, sheetTitle string) ([]Record, error) {
	students, err := svc.Load(ctx)
	if err != nil {
		return nil, err
	}
	rights, err := svc.src.Records(ctx, sheetTitle)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching sheet %q", sheetTitle)
	}

	var joined []Record
	for _, s := range students {
		for _, right := range rights {
			if right["student_id"] != s.ID {
				continue
			}
			merged := Record{
				"student_id":    s.ID,
				"github_handle": s.Handle,
				"name":          s.Name,
				"email":         s.Email,
			}
			for k, v := range right {
				merged[k] = v
			}
			joined = append(joined, merged)
		}
	}
	return joined, nil
}
