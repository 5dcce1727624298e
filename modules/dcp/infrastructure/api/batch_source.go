package api

import (
	"context"
	"time"

	"github.com/campusdesk/campusdesk/modules/dcp/domain/aggregates/batch"
	"github.com/campusdesk/campusdesk/pkg/apiclient"
)

const basePath = "/api/v1/dcp/batches"

// BatchSource is the remote roster source for equipment packages.
type BatchSource struct {
	api *apiclient.Client
}

func NewBatchSource(api *apiclient.Client) *BatchSource {
	return &BatchSource{api: api}
}

type batchWire struct {
	ID            string `json:"id"`
	BatchCode     string `json:"batch_code"`
	SchoolName    string `json:"school_name"`
	EquipmentKind string `json:"equipment_kind"`
	UnitCount     int    `json:"unit_count"`
	DispatchedOn  string `json:"dispatched_on"`
	ReceivedOn    string `json:"received_on"`
	Status        string `json:"status"`
	StatusReason  string `json:"status_reason"`
	ManifestRef   string `json:"manifest"`
	Notes         string `json:"notes"`
}

func (w batchWire) toEntity() batch.Batch {
	return batch.Hydrate(batch.Fields{
		ID:            w.ID,
		BatchCode:     w.BatchCode,
		SchoolName:    w.SchoolName,
		EquipmentKind: w.EquipmentKind,
		UnitCount:     w.UnitCount,
		DispatchedOn:  parseDate(w.DispatchedOn),
		ReceivedOn:    parseDate(w.ReceivedOn),
		Status:        batch.Status(w.Status),
		StatusReason:  w.StatusReason,
		ManifestRef:   w.ManifestRef,
		Notes:         w.Notes,
	})
}

func parseDate(v string) time.Time {
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *BatchSource) FetchAll(ctx context.Context) ([]batch.Batch, error) {
	var out struct {
		Data []batchWire `json:"data"`
	}
	if err := s.api.Get(ctx, basePath, &out); err != nil {
		return nil, err
	}
	entities := make([]batch.Batch, 0, len(out.Data))
	for _, w := range out.Data {
		entities = append(entities, w.toEntity())
	}
	return entities, nil
}

func (s *BatchSource) Create(ctx context.Context, payload any) (batch.Batch, error) {
	var out struct {
		Data batchWire `json:"data"`
	}
	if err := s.api.Post(ctx, basePath, payload, &out); err != nil {
		return batch.Batch{}, err
	}
	return out.Data.toEntity(), nil
}

func (s *BatchSource) Update(ctx context.Context, id string, payload any) (batch.Batch, error) {
	var out struct {
		Data batchWire `json:"data"`
	}
	if err := s.api.Put(ctx, basePath+"/"+id, payload, &out); err != nil {
		return batch.Batch{}, err
	}
	return out.Data.toEntity(), nil
}

func (s *BatchSource) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, basePath+"/"+id)
}

func (s *BatchSource) SetStatus(ctx context.Context, id, status, reason string) (batch.Batch, error) {
	var out struct {
		Data batchWire `json:"data"`
	}
	body := map[string]string{"status": status, "reason": reason}
	if err := s.api.Post(ctx, basePath+"/"+id+"/status", body, &out); err != nil {
		return batch.Batch{}, err
	}
	return out.Data.toEntity(), nil
}
