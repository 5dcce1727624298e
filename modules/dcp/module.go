package dcp

import (
	"context"
	"time"

	"github.com/campusdesk/campusdesk/modules/dcp/domain/aggregates/batch"
	"github.com/campusdesk/campusdesk/pkg/roster"
	"github.com/campusdesk/campusdesk/pkg/roster/query"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// NewController wires the equipment package roster. Dispatch date sorts
// descending by default so the newest packages lead the list.
func NewController(source roster.Source[batch.Batch], pageSize int, deps roster.Deps) *roster.Controller[batch.Batch, batch.DTO] {
	return roster.NewController(Descriptor(pageSize), source, deps)
}

func Descriptor(pageSize int) roster.Descriptor[batch.Batch, batch.DTO] {
	return roster.Descriptor[batch.Batch, batch.DTO]{
		Area:     "dcp",
		Singular: "equipment package",
		Query: query.Descriptor[batch.Batch]{
			ID: batch.Batch.ID,
			Searchable: []query.Field[batch.Batch]{
				{Name: "batch_code", Text: batch.Batch.BatchCode},
				{Name: "school_name", Text: batch.Batch.SchoolName},
				{Name: "equipment_kind", Text: batch.Batch.EquipmentKind},
			},
			Sortable: map[string]query.Field[batch.Batch]{
				"batch_code":    {Name: "batch_code", Text: batch.Batch.BatchCode},
				"school_name":   {Name: "school_name", Text: batch.Batch.SchoolName},
				"dispatched_on": {Name: "dispatched_on", Kind: query.Date, Date: batch.Batch.DispatchedOn},
				"received_on":   {Name: "received_on", Kind: query.Date, Date: batch.Batch.ReceivedOn},
			},
			Filters: map[string]func(batch.Batch, string) bool{
				"status": func(b batch.Batch, v string) bool {
					if v == "open" {
						return b.IsOpen()
					}
					return string(b.Status()) == v
				},
				"equipment_kind": func(b batch.Batch, v string) bool {
					return b.EquipmentKind() == v
				},
			},
		},
		Form: roster.FormSpec[batch.Batch, batch.DTO]{
			NewDraft: func() batch.DTO { return batch.DTO{} },
			DraftOf:  batch.DraftOf,
			Payload: func(d batch.DTO, mode roster.Mode) (any, error) {
				return d.Payload(mode == roster.ModeCreate)
			},
			Validate: func(ctx context.Context, d batch.DTO, mode roster.Mode) serrors.ValidationErrors {
				errs, _ := d.Ok(ctx, mode == roster.ModeCreate)
				return errs
			},
			ValidateField: func(ctx context.Context, d batch.DTO, mode roster.Mode, field string) (string, bool) {
				return d.OkField(ctx, field, mode == roster.ModeCreate)
			},
			FieldOrder: batch.FieldOrder,
		},
		Unique: []roster.UniqueRule[batch.Batch, batch.DTO]{
			{
				Field:       "BatchCode",
				Message:     "Batch code already exists",
				DraftValue:  func(d batch.DTO) string { return d.BatchCode },
				RecordValue: batch.Batch.BatchCode,
			},
		},
		Export: roster.ExportSpec[batch.Batch]{
			Headers: []string{"Batch Code", "School", "Equipment", "Units", "Dispatched", "Received", "Status"},
			Row: func(b batch.Batch) []string {
				dispatched := ""
				if !b.DispatchedOn().IsZero() {
					dispatched = b.DispatchedOn().Format(time.DateOnly)
				}
				received := ""
				if !b.ReceivedOn().IsZero() {
					received = b.ReceivedOn().Format(time.DateOnly)
				}
				return []string{
					b.BatchCode(), b.SchoolName(), b.EquipmentKind(),
					b.UnitCountString(), dispatched, received, string(b.Status()),
				}
			},
		},
		FileRef:     batch.Batch.ManifestRef,
		DefaultSort: "dispatched_on",
		DefaultDir:  query.Descending,
		PageSize:    pageSize,
	}
}
