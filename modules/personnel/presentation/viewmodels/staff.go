package viewmodels

import (
	"time"

	"github.com/campusdesk/campusdesk/modules/personnel/domain/aggregates/staff"
)

// Staff is the JSON shape served to the console client.
type Staff struct {
	ID               string `json:"id"`
	EmployeeNo       string `json:"employee_no"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	FullName         string `json:"full_name"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Position         string `json:"position"`
	Department       string `json:"department"`
	HireDate         string `json:"hire_date"`
	EmploymentStatus string `json:"employment_status"`
	AccountStatus    string `json:"account_status"`
	StatusReason     string `json:"status_reason,omitempty"`
	AvatarRef        string `json:"avatar,omitempty"`
	Active           bool   `json:"active"`
}

func StaffToViewModel(s staff.Staff) Staff {
	hireDate := ""
	if !s.HireDate().IsZero() {
		hireDate = s.HireDate().Format(time.DateOnly)
	}
	return Staff{
		ID:               s.ID(),
		EmployeeNo:       s.EmployeeNo(),
		FirstName:        s.FirstName(),
		LastName:         s.LastName(),
		FullName:         s.FullName(),
		Username:         s.Username(),
		Email:            s.Email(),
		Phone:            s.Phone(),
		Position:         s.Position(),
		Department:       s.Department(),
		HireDate:         hireDate,
		EmploymentStatus: string(s.EmploymentStatus()),
		AccountStatus:    string(s.AccountStatus()),
		StatusReason:     s.StatusReason(),
		AvatarRef:        s.AvatarRef(),
		Active:           s.IsActive(),
	}
}
