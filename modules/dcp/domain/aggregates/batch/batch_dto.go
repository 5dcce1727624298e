package batch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusdesk/campusdesk/pkg/constants"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// DTO is the modal form draft for an equipment package. Manifest selection
// and removal are flags on the draft so dirty tracking covers them.
type DTO struct {
	BatchCode        string `json:"batch_code" validate:"required,batchcode,max=16"`
	SchoolName       string `json:"school_name" validate:"required,max=120"`
	EquipmentKind    string `json:"equipment_kind" validate:"required,max=80"`
	UnitCount        int    `json:"unit_count" validate:"required,gt=0"`
	DispatchedOn     string `json:"dispatched_on" validate:"required,dateonly"`
	ReceivedOn       string `json:"received_on" validate:"omitempty,dateonly"`
	Notes            string `json:"notes" validate:"omitempty,max=500"`
	ManifestFileName string `json:"manifest_file_name"`
	ManifestRemoved  bool   `json:"manifest_removed"`
}

var FieldOrder = []string{
	"BatchCode", "SchoolName", "EquipmentKind", "UnitCount",
	"DispatchedOn", "ReceivedOn", "Notes",
}

func fieldLabel(field string) string {
	switch field {
	case "BatchCode":
		return "Batch code"
	case "SchoolName":
		return "School name"
	case "EquipmentKind":
		return "Equipment kind"
	case "UnitCount":
		return "Unit count"
	case "DispatchedOn":
		return "Dispatch date"
	case "ReceivedOn":
		return "Received date"
	default:
		return field
	}
}

func DraftOf(b Batch) DTO {
	dispatched := ""
	if !b.DispatchedOn().IsZero() {
		dispatched = b.DispatchedOn().Format(time.DateOnly)
	}
	received := ""
	if !b.ReceivedOn().IsZero() {
		received = b.ReceivedOn().Format(time.DateOnly)
	}
	return DTO{
		BatchCode:     b.BatchCode(),
		SchoolName:    b.SchoolName(),
		EquipmentKind: b.EquipmentKind(),
		UnitCount:     b.UnitCount(),
		DispatchedOn:  dispatched,
		ReceivedOn:    received,
		Notes:         b.Notes(),
	}
}

func (d DTO) normalized() DTO {
	d.BatchCode = strings.ToUpper(strings.TrimSpace(d.BatchCode))
	d.SchoolName = strings.TrimSpace(d.SchoolName)
	d.EquipmentKind = strings.TrimSpace(d.EquipmentKind)
	d.DispatchedOn = strings.TrimSpace(d.DispatchedOn)
	d.ReceivedOn = strings.TrimSpace(d.ReceivedOn)
	d.Notes = strings.TrimSpace(d.Notes)
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
	// A received date cannot precede the dispatch date.
	if _, ok := errs["ReceivedOn"]; !ok && n.ReceivedOn != "" && n.DispatchedOn != "" {
		dispatched, dErr := time.Parse(time.DateOnly, n.DispatchedOn)
		received, rErr := time.Parse(time.DateOnly, n.ReceivedOn)
		if dErr == nil && rErr == nil && received.Before(dispatched) {
			errs["ReceivedOn"] = "Received date cannot be before the dispatch date"
		}
	}
	return errs, len(errs) == 0
}

func (d DTO) OkField(ctx context.Context, field string, creating bool) (string, bool) {
	n := d.normalized()
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
	BatchCode      string `json:"batch_code"`
	SchoolName     string `json:"school_name"`
	EquipmentKind  string `json:"equipment_kind"`
	UnitCount      int    `json:"unit_count"`
	DispatchedOn   string `json:"dispatched_on"`
	ReceivedOn     string `json:"received_on,omitempty"`
	Notes          string `json:"notes,omitempty"`
	ManifestFile   string `json:"manifest_file,omitempty"`
	RemoveManifest bool   `json:"remove_manifest,omitempty"`
}

func (d DTO) Payload(creating bool) (any, error) {
	n := d.normalized()
	p := payload{
		BatchCode:     n.BatchCode,
		SchoolName:    n.SchoolName,
		EquipmentKind: n.EquipmentKind,
		UnitCount:     n.UnitCount,
		DispatchedOn:  n.DispatchedOn,
		ReceivedOn:    n.ReceivedOn,
		Notes:         n.Notes,
		ManifestFile:  n.ManifestFileName,
	}
	if n.ManifestRemoved && n.ManifestFileName == "" {
		p.RemoveManifest = true
	}
	return p, nil
}

// UnitCountString renders the count for spreadsheet export.
func (b Batch) UnitCountString() string {
	return strconv.Itoa(b.unitCount)
}
