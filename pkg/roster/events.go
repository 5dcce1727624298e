package roster

import (
	"github.com/sirupsen/logrus"

	"github.com/campusdesk/campusdesk/pkg/eventbus"
)

// Domain events published on the event bus after a successful mutation has
// been reconciled into the roster.

type CreatedEvent[T any] struct {
	Area   string
	Record T
}

type UpdatedEvent[T any] struct {
	Area   string
	Record T
}

type StatusChangedEvent[T any] struct {
	Area   string
	Record T
	Status string
}

type RemovedEvent struct {
	Area string
	ID   string
}

// SubscribeAudit wires a logrus-backed audit trail for one record type's
// mutation events.
func SubscribeAudit[T any](bus eventbus.EventBus, logger *logrus.Logger, id func(T) string) {
	bus.Subscribe(func(e *CreatedEvent[T]) {
		logger.WithFields(logrus.Fields{"area": e.Area, "id": id(e.Record)}).Info("roster record created")
	})
	bus.Subscribe(func(e *UpdatedEvent[T]) {
		logger.WithFields(logrus.Fields{"area": e.Area, "id": id(e.Record)}).Info("roster record updated")
	})
	bus.Subscribe(func(e *StatusChangedEvent[T]) {
		logger.WithFields(logrus.Fields{
			"area":   e.Area,
			"id":     id(e.Record),
			"status": e.Status,
		}).Info("roster status changed")
	})
}

// SubscribeRemovedAudit logs removals, which carry only the record id.
func SubscribeRemovedAudit(bus eventbus.EventBus, logger *logrus.Logger) {
	bus.Subscribe(func(e *RemovedEvent) {
		logger.WithFields(logrus.Fields{"area": e.Area, "id": e.ID}).Info("roster record removed")
	})
}
