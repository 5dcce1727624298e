package viewmodels

import (
	"time"

	"github.com/campusdesk/campusdesk/modules/dcp/domain/aggregates/batch"
)

type Batch struct {
	ID            string `json:"id"`
	BatchCode     string `json:"batch_code"`
	SchoolName    string `json:"school_name"`
	EquipmentKind string `json:"equipment_kind"`
	UnitCount     int    `json:"unit_count"`
	DispatchedOn  string `json:"dispatched_on"`
	ReceivedOn    string `json:"received_on,omitempty"`
	Status        string `json:"status"`
	StatusReason  string `json:"status_reason,omitempty"`
	ManifestRef   string `json:"manifest,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Open          bool   `json:"open"`
}

func BatchToViewModel(b batch.Batch) Batch {
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	}
	return Batch{
		ID:            b.ID(),
		BatchCode:     b.BatchCode(),
		SchoolName:    b.SchoolName(),
		EquipmentKind: b.EquipmentKind(),
		UnitCount:     b.UnitCount(),
		DispatchedOn:  format(b.DispatchedOn()),
		ReceivedOn:    format(b.ReceivedOn()),
		Status:        string(b.Status()),
		StatusReason:  b.StatusReason(),
		ManifestRef:   b.ManifestRef(),
		Notes:         b.Notes(),
		Open:          b.IsOpen(),
	}
}
