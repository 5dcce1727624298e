package roster

import (
	"context"

	"github.com/campusdesk/campusdesk/pkg/roster/query"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// Mode distinguishes the create and edit flows of a form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// UniqueRule checks a draft value for uniqueness against the loaded roster,
// excluding the record under edit. The check runs against the last-fetched
// snapshot; the server's conflict response stays authoritative.
type UniqueRule[T any, D any] struct {
	Field       string
	Message     string
	DraftValue  func(D) string
	RecordValue func(T) string
}

// FormSpec supplies the per-area draft behavior consumed by the form
// lifecycle: templates, payload building and declarative validation.
type FormSpec[T any, D any] struct {
	// NewDraft returns the field-complete empty template for creation.
	NewDraft func() D
	// DraftOf clones a draft from an existing record. Password-like fields
	// start blank, dates are normalized to date-only form.
	DraftOf func(T) D
	// Payload builds the request body. Blank passwords are omitted in edit
	// mode; attachment removal is carried as an explicit flag.
	Payload func(d D, mode Mode) (any, error)
	// Validate runs every field validator.
	Validate func(ctx context.Context, d D, mode Mode) serrors.ValidationErrors
	// ValidateField runs a single field's validator for inline feedback.
	ValidateField func(ctx context.Context, d D, mode Mode, field string) (msg string, ok bool)
	// FieldOrder determines which invalid field is focused first.
	FieldOrder []string
}

// ExportSpec renders records into spreadsheet rows.
type ExportSpec[T any] struct {
	Headers []string
	Row     func(T) []string
}

// Descriptor is the complete capability description of one feature area:
// how its records are identified, queried, drafted, validated and exported.
type Descriptor[T any, D any] struct {
	// Area is the machine name ("personnel"), Singular the human one
	// ("staff member") used in notifications and prompts.
	Area     string
	Singular string

	Query  query.Descriptor[T]
	Form   FormSpec[T, D]
	Unique []UniqueRule[T, D]
	Export ExportSpec[T]

	// FileRef extracts the stored document/avatar reference, if the area
	// has one.
	FileRef func(T) string

	DefaultSort string
	DefaultDir  query.Direction
	PageSize    int
}
