package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func validDraft() DTO {
	return DTO{
		BatchCode:     "DCP-3041",
		SchoolName:    "School 12",
		EquipmentKind: "Laptop",
		UnitCount:     25,
		DispatchedOn:  "2026-03-10",
	}
}

func TestDTO_Ok(t *testing.T) {
	ctx := context.Background()

	t.Run("valid draft passes", func(t *testing.T) {
		errs, ok := validDraft().Ok(ctx, true)
		require.True(t, ok, "%v", errs)
	})

	t.Run("batch code shape is enforced", func(t *testing.T) {
		d := validDraft()
		d.BatchCode = "B-3041"
		errs, ok := d.Ok(ctx, true)
		require.False(t, ok)
		require.Contains(t, errs["BatchCode"], "DCP-")
	})

	t.Run("batch code is upcased before validation", func(t *testing.T) {
		d := validDraft()
		d.BatchCode = "dcp-3041"
		_, ok := d.Ok(ctx, true)
		require.True(t, ok)
	})

	t.Run("unit count must be positive", func(t *testing.T) {
		d := validDraft()
		d.UnitCount = 0
		errs, ok := d.Ok(ctx, true)
		require.False(t, ok)
		require.Contains(t, errs, "UnitCount")
	})

	t.Run("received date cannot precede dispatch", func(t *testing.T) {
		d := validDraft()
		d.ReceivedOn = "2026-03-09"
		errs, ok := d.Ok(ctx, true)
		require.False(t, ok)
		require.Equal(t, "Received date cannot be before the dispatch date", errs["ReceivedOn"])
	})

	t.Run("received on dispatch day is fine", func(t *testing.T) {
		d := validDraft()
		d.ReceivedOn = "2026-03-10"
		_, ok := d.Ok(ctx, true)
		require.True(t, ok)
	})
}

func TestDTO_Payload_ManifestRemoval(t *testing.T) {
	d := validDraft()
	d.ManifestRemoved = true
	p, err := d.Payload(false)
	require.NoError(t, err)
	require.True(t, p.(payload).RemoveManifest)

	d.ManifestFileName = "manifest.pdf"
	p, err = d.Payload(false)
	require.NoError(t, err)
	require.False(t, p.(payload).RemoveManifest)
	require.Equal(t, "manifest.pdf", p.(payload).ManifestFile)
}

func TestBatch_IsOpen(t *testing.T) {
	open := Hydrate(Fields{ID: "b-1", Status: StatusDispatched})
	require.True(t, open.IsOpen())

	done := Hydrate(Fields{ID: "b-2", Status: StatusReceived})
	require.False(t, done.IsOpen())
}
