package api

import (
	"context"
	"time"

	"github.com/campusdesk/campusdesk/modules/accounting/domain/aggregates/accountant"
	"github.com/campusdesk/campusdesk/pkg/apiclient"
)

const basePath = "/api/v1/accounting"

// AccountantSource is the remote roster source for accounting staff.
type AccountantSource struct {
	api *apiclient.Client
}

func NewAccountantSource(api *apiclient.Client) *AccountantSource {
	return &AccountantSource{api: api}
}

type accountantWire struct {
	ID          string `json:"id"`
	EmployeeNo  string `json:"employee_no"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Office      string `json:"office"`
	LedgerScope string `json:"ledger_scope"`
	CertifiedOn string `json:"certified_on"`
	Status      string `json:"status"`
	StatusNote  string `json:"status_note"`
	AvatarRef   string `json:"avatar"`
}

func (w accountantWire) toEntity() accountant.Accountant {
	certified, err := time.Parse(time.DateOnly, w.CertifiedOn)
	if err != nil {
		certified = time.Time{}
	}
	return accountant.Hydrate(accountant.Fields{
		ID:          w.ID,
		EmployeeNo:  w.EmployeeNo,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		Username:    w.Username,
		Email:       w.Email,
		Office:      w.Office,
		LedgerScope: w.LedgerScope,
		CertifiedOn: certified,
		Status:      accountant.Status(w.Status),
		StatusNote:  w.StatusNote,
		AvatarRef:   w.AvatarRef,
	})
}

func (s *AccountantSource) FetchAll(ctx context.Context) ([]accountant.Accountant, error) {
	var out struct {
		Data []accountantWire `json:"data"`
	}
	if err := s.api.Get(ctx, basePath, &out); err != nil {
		return nil, err
	}
	entities := make([]accountant.Accountant, 0, len(out.Data))
	for _, w := range out.Data {
		entities = append(entities, w.toEntity())
	}
	return entities, nil
}

func (s *AccountantSource) Create(ctx context.Context, payload any) (accountant.Accountant, error) {
	var out struct {
		Data accountantWire `json:"data"`
	}
	if err := s.api.Post(ctx, basePath, payload, &out); err != nil {
		return accountant.Accountant{}, err
	}
	return out.Data.toEntity(), nil
}

func (s *AccountantSource) Update(ctx context.Context, id string, payload any) (accountant.Accountant, error) {
	var out struct {
		Data accountantWire `json:"data"`
	}
	if err := s.api.Put(ctx, basePath+"/"+id, payload, &out); err != nil {
		return accountant.Accountant{}, err
	}
	return out.Data.toEntity(), nil
}

func (s *AccountantSource) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, basePath+"/"+id)
}

func (s *AccountantSource) SetStatus(ctx context.Context, id, status, reason string) (accountant.Accountant, error) {
	var out struct {
		Data accountantWire `json:"data"`
	}
	body := map[string]string{"status": status, "reason": reason}
	if err := s.api.Post(ctx, basePath+"/"+id+"/status", body, &out); err != nil {
		return accountant.Accountant{}, err
	}
	return out.Data.toEntity(), nil
}
