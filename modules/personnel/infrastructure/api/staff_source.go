package api

import (
	"context"
	"time"

	"github.com/campusdesk/campusdesk/modules/personnel/domain/aggregates/staff"
	"github.com/campusdesk/campusdesk/pkg/apiclient"
)

const basePath = "/api/v1/personnel"

// StaffSource is the remote roster source for school personnel.
type StaffSource struct {
	api *apiclient.Client
}

func NewStaffSource(api *apiclient.Client) *StaffSource {
	return &StaffSource{api: api}
}

type staffWire struct {
	ID               string `json:"id"`
	EmployeeNo       string `json:"employee_no"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Position         string `json:"position"`
	Department       string `json:"department"`
	HireDate         string `json:"hire_date"`
	EmploymentStatus string `json:"employment_status"`
	AccountStatus    string `json:"account_status"`
	StatusReason     string `json:"status_reason"`
	AvatarRef        string `json:"avatar"`
	UpdatedAt        string `json:"updated_at"`
}

func (w staffWire) toEntity() staff.Staff {
	return staff.Hydrate(staff.Fields{
		ID:               w.ID,
		EmployeeNo:       w.EmployeeNo,
		FirstName:        w.FirstName,
		LastName:         w.LastName,
		Username:         w.Username,
		Email:            w.Email,
		Phone:            w.Phone,
		Position:         w.Position,
		Department:       w.Department,
		HireDate:         parseDate(w.HireDate),
		EmploymentStatus: staff.EmploymentStatus(w.EmploymentStatus),
		AccountStatus:    staff.AccountStatus(w.AccountStatus),
		StatusReason:     w.StatusReason,
		AvatarRef:        w.AvatarRef,
		UpdatedAt:        parseTime(w.UpdatedAt),
	})
}

func parseDate(v string) time.Time {
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *StaffSource) FetchAll(ctx context.Context) ([]staff.Staff, error) {
	var out struct {
		Data []staffWire `json:"data"`
	}
	if err := s.api.Get(ctx, basePath, &out); err != nil {
		return nil, err
	}
	entities := make([]staff.Staff, 0, len(out.Data))
	for _, w := range out.Data {
		entities = append(entities, w.toEntity())
	}
	return entities, nil
}

func (s *StaffSource) Create(ctx context.Context, payload any) (staff.Staff, error) {
	var out struct {
		Data staffWire `json:"data"`
	}
	if err := s.api.Post(ctx, basePath, payload, &out); err != nil {
		return staff.Staff{}, err
	}
	return out.Data.toEntity(), nil
}

func (s *StaffSource) Update(ctx context.Context, id string, payload any) (staff.Staff, error) {
	var out struct {
		Data staffWire `json:"data"`
	}
	if err := s.api.Put(ctx, basePath+"/"+id, payload, &out); err != nil {
		return staff.Staff{}, err
	}
	return out.Data.toEntity(), nil
}

func (s *StaffSource) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, basePath+"/"+id)
}

func (s *StaffSource) SetStatus(ctx context.Context, id, status, reason string) (staff.Staff, error) {
	var out struct {
		Data staffWire `json:"data"`
	}
	body := map[string]string{"status": status, "reason": reason}
	if err := s.api.Post(ctx, basePath+"/"+id+"/status", body, &out); err != nil {
		return staff.Staff{}, err
	}
	return out.Data.toEntity(), nil
}
