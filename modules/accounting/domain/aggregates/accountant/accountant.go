package accountant

import (
	"strings"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Accountant is one accounting staff record as served by the finance API.
type Accountant struct {
	id          string
	employeeNo  string
	firstName   string
	lastName    string
	username    string
	email       string
	office      string
	ledgerScope string
	certifiedOn time.Time
	status      Status
	statusNote  string
	avatarRef   string
}

type Fields struct {
	ID          string
	EmployeeNo  string
	FirstName   string
	LastName    string
	Username    string
	Email       string
	Office      string
	LedgerScope string
	CertifiedOn time.Time
	Status      Status
	StatusNote  string
	AvatarRef   string
}

func Hydrate(f Fields) Accountant {
	return Accountant{
		id:          f.ID,
		employeeNo:  strings.TrimSpace(f.EmployeeNo),
		firstName:   strings.TrimSpace(f.FirstName),
		lastName:    strings.TrimSpace(f.LastName),
		username:    strings.TrimSpace(f.Username),
		email:       strings.TrimSpace(f.Email),
		office:      strings.TrimSpace(f.Office),
		ledgerScope: strings.TrimSpace(f.LedgerScope),
		certifiedOn: f.CertifiedOn,
		status:      f.Status,
		statusNote:  f.StatusNote,
		avatarRef:   f.AvatarRef,
	}
}

func (a Accountant) ID() string             { return a.id }
func (a Accountant) EmployeeNo() string     { return a.employeeNo }
func (a Accountant) FirstName() string      { return a.firstName }
func (a Accountant) LastName() string       { return a.lastName }
func (a Accountant) Username() string       { return a.username }
func (a Accountant) Email() string          { return a.email }
func (a Accountant) Office() string         { return a.office }
func (a Accountant) LedgerScope() string    { return a.ledgerScope }
func (a Accountant) CertifiedOn() time.Time { return a.certifiedOn }
func (a Accountant) Status() Status         { return a.status }
func (a Accountant) StatusNote() string     { return a.statusNote }
func (a Accountant) AvatarRef() string      { return a.avatarRef }

func (a Accountant) FullName() string {
	return a.lastName + ", " + a.firstName
}
