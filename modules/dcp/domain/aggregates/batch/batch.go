package batch

import (
	"strings"
	"time"
)

// Status is the dispatch lifecycle of an equipment package.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusReceived   Status = "received"
	StatusCancelled  Status = "cancelled"
)

// Batch is one DCP equipment package: a counted dispatch of equipment units
// to a school.
type Batch struct {
	id            string
	batchCode     string
	schoolName    string
	equipmentKind string
	unitCount     int
	dispatchedOn  time.Time
	receivedOn    time.Time
	status        Status
	statusReason  string
	manifestRef   string
	notes         string
}

type Fields struct {
	ID            string
	BatchCode     string
	SchoolName    string
	EquipmentKind string
	UnitCount     int
	DispatchedOn  time.Time
	ReceivedOn    time.Time
	Status        Status
	StatusReason  string
	ManifestRef   string
	Notes         string
}

func Hydrate(f Fields) Batch {
	return Batch{
		id:            f.ID,
		batchCode:     strings.TrimSpace(f.BatchCode),
		schoolName:    strings.TrimSpace(f.SchoolName),
		equipmentKind: strings.TrimSpace(f.EquipmentKind),
		unitCount:     f.UnitCount,
		dispatchedOn:  f.DispatchedOn,
		receivedOn:    f.ReceivedOn,
		status:        f.Status,
		statusReason:  f.StatusReason,
		manifestRef:   f.ManifestRef,
		notes:         f.Notes,
	}
}

func (b Batch) ID() string              { return b.id }
func (b Batch) BatchCode() string       { return b.batchCode }
func (b Batch) SchoolName() string      { return b.schoolName }
func (b Batch) EquipmentKind() string   { return b.equipmentKind }
func (b Batch) UnitCount() int          { return b.unitCount }
func (b Batch) DispatchedOn() time.Time { return b.dispatchedOn }
func (b Batch) ReceivedOn() time.Time   { return b.receivedOn }
func (b Batch) Status() Status          { return b.status }
func (b Batch) StatusReason() string    { return b.statusReason }
func (b Batch) ManifestRef() string     { return b.manifestRef }
func (b Batch) Notes() string           { return b.notes }

// IsOpen reports whether the package can still change status.
func (b Batch) IsOpen() bool {
	return b.status == StatusPending || b.status == StatusDispatched
}
