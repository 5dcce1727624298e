package personnel

import (
	"context"
	"time"

	"github.com/campusdesk/campusdesk/modules/personnel/domain/aggregates/staff"
	"github.com/campusdesk/campusdesk/pkg/roster"
	"github.com/campusdesk/campusdesk/pkg/roster/query"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// NewController wires the personnel roster: searchable over the person's
// identifiers, a status filter derived over both underlying status fields,
// and last-name-first default ordering.
func NewController(source roster.Source[staff.Staff], pageSize int, deps roster.Deps) *roster.Controller[staff.Staff, staff.DTO] {
	return roster.NewController(Descriptor(pageSize), source, deps)
}

func Descriptor(pageSize int) roster.Descriptor[staff.Staff, staff.DTO] {
	return roster.Descriptor[staff.Staff, staff.DTO]{
		Area:     "personnel",
		Singular: "staff member",
		Query: query.Descriptor[staff.Staff]{
			ID: staff.Staff.ID,
			Searchable: []query.Field[staff.Staff]{
				{Name: "employee_no", Text: staff.Staff.EmployeeNo},
				{Name: "first_name", Text: staff.Staff.FirstName},
				{Name: "last_name", Text: staff.Staff.LastName},
				{Name: "username", Text: staff.Staff.Username},
				{Name: "email", Text: staff.Staff.Email},
			},
			Sortable: map[string]query.Field[staff.Staff]{
				"last_name":   {Name: "last_name", Text: staff.Staff.FullName},
				"employee_no": {Name: "employee_no", Text: staff.Staff.EmployeeNo},
				"username":    {Name: "username", Text: staff.Staff.Username},
				"position":    {Name: "position", Text: staff.Staff.Position},
				"hire_date":   {Name: "hire_date", Kind: query.Date, Date: staff.Staff.HireDate},
			},
			Filters: map[string]func(staff.Staff, string) bool{
				// "active" means employed with a usable account; "inactive"
				// matches when either underlying status says otherwise.
				"status": func(s staff.Staff, v string) bool {
					switch v {
					case "active":
						return s.IsActive()
					case "inactive":
						return !s.IsActive()
					}
					return true
				},
				"department": func(s staff.Staff, v string) bool {
					return s.Department() == v
				},
			},
		},
		Form: roster.FormSpec[staff.Staff, staff.DTO]{
			NewDraft: func() staff.DTO { return staff.DTO{} },
			DraftOf:  staff.DraftOf,
			Payload: func(d staff.DTO, mode roster.Mode) (any, error) {
				return d.Payload(mode == roster.ModeCreate)
			},
			Validate: func(ctx context.Context, d staff.DTO, mode roster.Mode) serrors.ValidationErrors {
				errs, _ := d.Ok(ctx, mode == roster.ModeCreate)
				return errs
			},
			ValidateField: func(ctx context.Context, d staff.DTO, mode roster.Mode, field string) (string, bool) {
				return d.OkField(ctx, field, mode == roster.ModeCreate)
			},
			FieldOrder: staff.FieldOrder,
		},
		Unique: []roster.UniqueRule[staff.Staff, staff.DTO]{
			{
				Field:       "EmployeeNo",
				Message:     "Employee number already exists",
				DraftValue:  func(d staff.DTO) string { return d.EmployeeNo },
				RecordValue: staff.Staff.EmployeeNo,
			},
			{
				Field:       "Username",
				Message:     "Username already exists",
				DraftValue:  func(d staff.DTO) string { return d.Username },
				RecordValue: staff.Staff.Username,
			},
		},
		Export: roster.ExportSpec[staff.Staff]{
			Headers: []string{"Employee No", "Last Name", "First Name", "Username", "Email", "Position", "Department", "Hire Date", "Status"},
			Row: func(s staff.Staff) []string {
				status := "inactive"
				if s.IsActive() {
					status = "active"
				}
				hireDate := ""
				if !s.HireDate().IsZero() {
					hireDate = s.HireDate().Format(time.DateOnly)
				}
				return []string{
					s.EmployeeNo(), s.LastName(), s.FirstName(), s.Username(),
					s.Email(), s.Position(), s.Department(), hireDate, status,
				}
			},
		},
		FileRef:     staff.Staff.AvatarRef,
		DefaultSort: "last_name",
		DefaultDir:  query.Ascending,
		PageSize:    pageSize,
	}
}
