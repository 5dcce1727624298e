package accounting

import (
	"context"
	"time"

	"github.com/campusdesk/campusdesk/modules/accounting/domain/aggregates/accountant"
	"github.com/campusdesk/campusdesk/pkg/roster"
	"github.com/campusdesk/campusdesk/pkg/roster/query"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

func NewController(source roster.Source[accountant.Accountant], pageSize int, deps roster.Deps) *roster.Controller[accountant.Accountant, accountant.DTO] {
	return roster.NewController(Descriptor(pageSize), source, deps)
}

func Descriptor(pageSize int) roster.Descriptor[accountant.Accountant, accountant.DTO] {
	return roster.Descriptor[accountant.Accountant, accountant.DTO]{
		Area:     "accounting",
		Singular: "accountant",
		Query: query.Descriptor[accountant.Accountant]{
			ID: accountant.Accountant.ID,
			Searchable: []query.Field[accountant.Accountant]{
				{Name: "employee_no", Text: accountant.Accountant.EmployeeNo},
				{Name: "first_name", Text: accountant.Accountant.FirstName},
				{Name: "last_name", Text: accountant.Accountant.LastName},
				{Name: "username", Text: accountant.Accountant.Username},
				{Name: "email", Text: accountant.Accountant.Email},
				{Name: "office", Text: accountant.Accountant.Office},
			},
			Sortable: map[string]query.Field[accountant.Accountant]{
				"last_name":    {Name: "last_name", Text: accountant.Accountant.FullName},
				"employee_no":  {Name: "employee_no", Text: accountant.Accountant.EmployeeNo},
				"office":       {Name: "office", Text: accountant.Accountant.Office},
				"certified_on": {Name: "certified_on", Kind: query.Date, Date: accountant.Accountant.CertifiedOn},
			},
			Filters: map[string]func(accountant.Accountant, string) bool{
				"status": func(a accountant.Accountant, v string) bool {
					return string(a.Status()) == v
				},
				"office": func(a accountant.Accountant, v string) bool {
					return a.Office() == v
				},
			},
		},
		Form: roster.FormSpec[accountant.Accountant, accountant.DTO]{
			NewDraft: func() accountant.DTO { return accountant.DTO{} },
			DraftOf:  accountant.DraftOf,
			Payload: func(d accountant.DTO, mode roster.Mode) (any, error) {
				return d.Payload(mode == roster.ModeCreate)
			},
			Validate: func(ctx context.Context, d accountant.DTO, mode roster.Mode) serrors.ValidationErrors {
				errs, _ := d.Ok(ctx, mode == roster.ModeCreate)
				return errs
			},
			ValidateField: func(ctx context.Context, d accountant.DTO, mode roster.Mode, field string) (string, bool) {
				return d.OkField(ctx, field, mode == roster.ModeCreate)
			},
			FieldOrder: accountant.FieldOrder,
		},
		Unique: []roster.UniqueRule[accountant.Accountant, accountant.DTO]{
			{
				Field:       "EmployeeNo",
				Message:     "Employee number already exists",
				DraftValue:  func(d accountant.DTO) string { return d.EmployeeNo },
				RecordValue: accountant.Accountant.EmployeeNo,
			},
			{
				Field:       "Username",
				Message:     "Username already exists",
				DraftValue:  func(d accountant.DTO) string { return d.Username },
				RecordValue: accountant.Accountant.Username,
			},
		},
		Export: roster.ExportSpec[accountant.Accountant]{
			Headers: []string{"Employee No", "Last Name", "First Name", "Username", "Email", "Office", "Ledger Scope", "Certified On", "Status"},
			Row: func(a accountant.Accountant) []string {
				certified := ""
				if !a.CertifiedOn().IsZero() {
					certified = a.CertifiedOn().Format(time.DateOnly)
				}
				return []string{
					a.EmployeeNo(), a.LastName(), a.FirstName(), a.Username(),
					a.Email(), a.Office(), a.LedgerScope(), certified, string(a.Status()),
				}
			},
		},
		FileRef:     accountant.Accountant.AvatarRef,
		DefaultSort: "last_name",
		DefaultDir:  query.Ascending,
		PageSize:    pageSize,
	}
}
