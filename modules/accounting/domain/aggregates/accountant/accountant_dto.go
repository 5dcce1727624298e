package accountant

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusdesk/campusdesk/pkg/constants"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// DTO is the modal form draft for an accounting staff record.
type DTO struct {
	EmployeeNo      string `json:"employee_no" validate:"required,empno,max=12"`
	FirstName       string `json:"first_name" validate:"required,max=60"`
	LastName        string `json:"last_name" validate:"required,max=60"`
	Username        string `json:"username" validate:"required,username,min=3,max=32"`
	Email           string `json:"email" validate:"required,email"`
	Office          string `json:"office" validate:"required,max=80"`
	LedgerScope     string `json:"ledger_scope" validate:"omitempty,max=80"`
	CertifiedOn     string `json:"certified_on" validate:"omitempty,dateonly"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`
	AvatarFileName  string `json:"avatar_file_name"`
	AvatarRemoved   bool   `json:"avatar_removed"`
}

var FieldOrder = []string{
	"EmployeeNo", "FirstName", "LastName", "Username", "Email",
	"Office", "LedgerScope", "CertifiedOn", "Password", "PasswordConfirm",
}

func fieldLabel(field string) string {
	switch field {
	case "EmployeeNo":
		return "Employee number"
	case "FirstName":
		return "First name"
	case "LastName":
		return "Last name"
	case "LedgerScope":
		return "Ledger scope"
	case "CertifiedOn":
		return "Certification date"
	case "PasswordConfirm":
		return "Password confirmation"
	default:
		return field
	}
}

func DraftOf(a Accountant) DTO {
	certified := ""
	if !a.CertifiedOn().IsZero() {
		certified = a.CertifiedOn().Format(time.DateOnly)
	}
	return DTO{
		EmployeeNo:  a.EmployeeNo(),
		FirstName:   a.FirstName(),
		LastName:    a.LastName(),
		Username:    a.Username(),
		Email:       a.Email(),
		Office:      a.Office(),
		LedgerScope: a.LedgerScope(),
		CertifiedOn: certified,
	}
}

func (d DTO) normalized() DTO {
	d.EmployeeNo = strings.TrimSpace(d.EmployeeNo)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	d.Office = strings.TrimSpace(d.Office)
	d.LedgerScope = strings.TrimSpace(d.LedgerScope)
	d.CertifiedOn = strings.TrimSpace(d.CertifiedOn)
	return d
}

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
	Office       string `json:"office"`
	LedgerScope  string `json:"ledger_scope"`
	CertifiedOn  string `json:"certified_on"`
	Password     string `json:"password,omitempty"`
	AvatarFile   string `json:"avatar_file,omitempty"`
	RemoveAvatar bool   `json:"remove_avatar,omitempty"`
}

func (d DTO) Payload(creating bool) (any, error) {
	n := d.normalized()
	p := payload{
		EmployeeNo:  n.EmployeeNo,
		FirstName:   n.FirstName,
		LastName:    n.LastName,
		Username:    n.Username,
		Email:       n.Email,
		Office:      n.Office,
		LedgerScope: n.LedgerScope,
		CertifiedOn: n.CertifiedOn,
		AvatarFile:  n.AvatarFileName,
	}
	if n.Password != "" || creating {
		p.Password = n.Password
	}
	if n.AvatarRemoved && n.AvatarFileName == "" {
		p.RemoveAvatar = true
	}
	return p, nil
}
