package eventbus

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type staffSaved struct {
	ID string
}

func TestPublish_DispatchesToMatchingHandler(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var got *staffSaved
	bus.Subscribe(func(e *staffSaved) {
		got = e
	})

	bus.Publish(&staffSaved{ID: "s-1"})
	require.NotNil(t, got)
	require.Equal(t, "s-1", got.ID)
}

func TestPublish_NoSubscribersLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.WarnLevel)

	bus := NewEventPublisher(log)
	bus.Subscribe(func(e *staffSaved) {
		t.Error("handler should not match")
	})

	type otherEvent struct{ ID string }
	bus.Publish(&otherEvent{ID: "x"})

	require.Contains(t, buf.String(), "no matching subscribers")
}

func TestPublish_RecoversFromHandlerPanic(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	bus.Subscribe(func(e *staffSaved) {
		panic("boom")
	})

	require.NotPanics(t, func() {
		bus.Publish(&staffSaved{ID: "s-2"})
	})
}

func TestUnsubscribe_RemovesHandler(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	calls := 0
	handler := func(e *staffSaved) { calls++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())
}
