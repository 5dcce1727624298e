package staff

import (
	"strings"
	"time"
)

// EmploymentStatus tracks whether the person still works for the school;
// AccountStatus tracks whether their console account is usable. The roster's
// "status" filter derives over both.
type EmploymentStatus string

const (
	EmploymentActive   EmploymentStatus = "active"
	EmploymentResigned EmploymentStatus = "resigned"
)

type AccountStatus string

const (
	AccountEnabled AccountStatus = "enabled"
	AccountLocked  AccountStatus = "locked"
)

type Staff struct {
	id               string
	employeeNo       string
	firstName        string
	lastName         string
	username         string
	email            string
	phone            string
	position         string
	department       string
	hireDate         time.Time
	employmentStatus EmploymentStatus
	accountStatus    AccountStatus
	statusReason     string
	avatarRef        string
	updatedAt        time.Time
}

// Fields carries every persisted attribute for hydration from the API.
type Fields struct {
	ID               string
	EmployeeNo       string
	FirstName        string
	LastName         string
	Username         string
	Email            string
	Phone            string
	Position         string
	Department       string
	HireDate         time.Time
	EmploymentStatus EmploymentStatus
	AccountStatus    AccountStatus
	StatusReason     string
	AvatarRef        string
	UpdatedAt        time.Time
}

func Hydrate(f Fields) Staff {
	return Staff{
		id:               f.ID,
		employeeNo:       strings.TrimSpace(f.EmployeeNo),
		firstName:        strings.TrimSpace(f.FirstName),
		lastName:         strings.TrimSpace(f.LastName),
		username:         strings.TrimSpace(f.Username),
		email:            strings.TrimSpace(f.Email),
		phone:            strings.TrimSpace(f.Phone),
		position:         strings.TrimSpace(f.Position),
		department:       strings.TrimSpace(f.Department),
		hireDate:         f.HireDate,
		employmentStatus: f.EmploymentStatus,
		accountStatus:    f.AccountStatus,
		statusReason:     f.StatusReason,
		avatarRef:        f.AvatarRef,
		updatedAt:        f.UpdatedAt,
	}
}

func (s Staff) ID() string                         { return s.id }
func (s Staff) EmployeeNo() string                 { return s.employeeNo }
func (s Staff) FirstName() string                  { return s.firstName }
func (s Staff) LastName() string                   { return s.lastName }
func (s Staff) Username() string                   { return s.username }
func (s Staff) Email() string                      { return s.email }
func (s Staff) Phone() string                      { return s.phone }
func (s Staff) Position() string                   { return s.position }
func (s Staff) Department() string                 { return s.department }
func (s Staff) HireDate() time.Time                { return s.hireDate }
func (s Staff) EmploymentStatus() EmploymentStatus { return s.employmentStatus }
func (s Staff) AccountStatus() AccountStatus       { return s.accountStatus }
func (s Staff) StatusReason() string               { return s.statusReason }
func (s Staff) AvatarRef() string                  { return s.avatarRef }
func (s Staff) UpdatedAt() time.Time               { return s.updatedAt }

// FullName renders "Last, First" for sorting and display.
func (s Staff) FullName() string {
	return s.lastName + ", " + s.firstName
}

// IsActive reports whether the person is employed and their account usable.
func (s Staff) IsActive() bool {
	return s.employmentStatus == EmploymentActive && s.accountStatus == AccountEnabled
}
