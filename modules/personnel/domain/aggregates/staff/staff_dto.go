package staff

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusdesk/campusdesk/pkg/constants"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// DTO is the modal form draft for a staff member. Password fields always
// start blank; a blank password on edit means "unchanged". Avatar selection
// and removal are carried as explicit flags so dirty tracking sees them.
type DTO struct {
	EmployeeNo      string `json:"employee_no" validate:"required,empno,max=12"`
	FirstName       string `json:"first_name" validate:"required,max=60"`
	LastName        string `json:"last_name" validate:"required,max=60"`
	Username        string `json:"username" validate:"required,username,min=3,max=32"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=5,max=20"`
	Position        string `json:"position" validate:"required,max=80"`
	Department      string `json:"department" validate:"omitempty,max=80"`
	HireDate        string `json:"hire_date" validate:"required,dateonly"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`
	AvatarFileName  string `json:"avatar_file_name"`
	AvatarRemoved   bool   `json:"avatar_removed"`
}

// FieldOrder is the on-screen field sequence, used to focus the first
// invalid input.
var FieldOrder = []string{
	"EmployeeNo", "FirstName", "LastName", "Username", "Email", "Phone",
	"Position", "Department", "HireDate", "Password", "PasswordConfirm",
}

func fieldLabel(field string) string {
	switch field {
	case "EmployeeNo":
		return "Employee number"
	case "FirstName":
		return "First name"
	case "LastName":
		return "Last name"
	case "HireDate":
		return "Hire date"
	case "PasswordConfirm":
		return "Password confirmation"
	default:
		return field
	}
}

// DraftOf clones a draft from an existing record, passwords blank and the
// hire date normalized to date-only form.
func DraftOf(s Staff) DTO {
	hireDate := ""
	if !s.HireDate().IsZero() {
		hireDate = s.HireDate().Format(time.DateOnly)
	}
	return DTO{
		EmployeeNo: s.EmployeeNo(),
		FirstName:  s.FirstName(),
		LastName:   s.LastName(),
		Username:   s.Username(),
		Email:      s.Email(),
		Phone:      s.Phone(),
		Position:   s.Position(),
		Department: s.Department(),
		HireDate:   hireDate,
	}
}

func (d DTO) normalized() DTO {
	d.EmployeeNo = strings.TrimSpace(d.EmployeeNo)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Position = strings.TrimSpace(d.Position)
	d.Department = strings.TrimSpace(d.Department)
	d.HireDate = strings.TrimSpace(d.HireDate)
	return d
}

// Ok runs every declarative validator. Passwords are required only when
// creating; the confirmation must agree whenever either is set.
func (d DTO) Ok(ctx context.Context, creating bool) (serrors.ValidationErrors, bool) {
	n := d.normalized()

	errs := serrors.ValidationErrors{}
	if err := constants.Validate.StructCtx(ctx, n); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			errs = serrors.ProcessValidatorErrors(vErrs, fieldLabel)
		}
	}
	if creating && n.Password == "" {
		errs["Password"] = "Password is required"
	}
	return errs, len(errs) == 0
}

// OkField validates a single field for inline feedback without touching the
// others.
func (d DTO) OkField(ctx context.Context, field string, creating bool) (string, bool) {
	n := d.normalized()

	if field == "Password" && creating && n.Password == "" {
		return "Password is required", false
	}
	err := constants.Validate.StructPartialCtx(ctx, n, field)
	if err == nil {
		return "", true
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error(), false
	}
	errs := serrors.ProcessValidatorErrors(vErrs, fieldLabel)
	if msg, found := errs[field]; found {
		return msg, false
	}
	return "", true
}

type payload struct {
	EmployeeNo   string `json:"employee_no"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	Department   string `json:"department"`
	HireDate     string `json:"hire_date"`
	Password     string `json:"password,omitempty"`
	AvatarFile   string `json:"avatar_file,omitempty"`
	RemoveAvatar bool   `json:"remove_avatar,omitempty"`
}

// Payload builds the request body. A blank password is omitted on edit; a
// cleared avatar without replacement travels as an explicit removal flag.
func (d DTO) Payload(creating bool) (any, error) {
	n := d.normalized()
	p := payload{
		EmployeeNo: n.EmployeeNo,
		FirstName:  n.FirstName,
		LastName:   n.LastName,
		Username:   n.Username,
		Email:      n.Email,
		Phone:      n.Phone,
		Position:   n.Position,
		Department: n.Department,
		HireDate:   n.HireDate,
		AvatarFile: n.AvatarFileName,
	}
	if n.Password != "" || creating {
		p.Password = n.Password
	}
	if n.AvatarRemoved && n.AvatarFileName == "" {
		p.RemoveAvatar = true
	}
	return p, nil
}
