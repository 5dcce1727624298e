package viewmodels

import (
	"time"

	"github.com/campusdesk/campusdesk/modules/accounting/domain/aggregates/accountant"
)

type Accountant struct {
	ID          string `json:"id"`
	EmployeeNo  string `json:"employee_no"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Office      string `json:"office"`
	LedgerScope string `json:"ledger_scope"`
	CertifiedOn string `json:"certified_on"`
	Status      string `json:"status"`
	StatusNote  string `json:"status_note,omitempty"`
	AvatarRef   string `json:"avatar,omitempty"`
}

func AccountantToViewModel(a accountant.Accountant) Accountant {
	certified := ""
	if !a.CertifiedOn().IsZero() {
		certified = a.CertifiedOn().Format(time.DateOnly)
	}
	return Accountant{
		ID:          a.ID(),
		EmployeeNo:  a.EmployeeNo(),
		FirstName:   a.FirstName(),
		LastName:    a.LastName(),
		FullName:    a.FullName(),
		Username:    a.Username(),
		Email:       a.Email(),
		Office:      a.Office(),
		LedgerScope: a.LedgerScope(),
		CertifiedOn: certified,
		Status:      string(a.Status()),
		StatusNote:  a.StatusNote(),
		AvatarRef:   a.AvatarRef(),
	}
}
