package roster

import (
	"context"
	"strings"
)

// Source is the remote roster API for one feature area. Implementations own
// transport, authentication and payload encoding; failures must carry a
// human-readable message and may carry a field→message mapping
// (serrors.APIError). A single attempt per call, no retries.
type Source[T any] interface {
	FetchAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id string, payload any) (T, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status, reason string) (T, error)
}

// Confirmer is the explicit human confirmation step required before every
// mutation and before discarding a dirty draft.
type Confirmer interface {
	Confirm(ctx context.Context, title, message, confirmLabel, cancelLabel string) (bool, error)
}

// Notifier is the fire-and-forget notification surface. The controller
// calls it but never depends on its presentation.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Busy(msg string)
	BusyDone()
}

// URLResolver turns a record's stored file reference into a fetchable URL
// for download or preview.
type URLResolver interface {
	Resolve(ref string) string
}

// AutoApprove confirms every prompt. Transports whose clients run their own
// confirmation dialog (the JSON API surface) use it; interactive fronts use
// a real prompt.
type AutoApprove struct{}

func (AutoApprove) Confirm(ctx context.Context, title, message, confirmLabel, cancelLabel string) (bool, error) {
	return true, nil
}

// BaseURLResolver resolves stored file references against the API host's
// upload root.
type BaseURLResolver struct {
	Base string
}

func (r BaseURLResolver) Resolve(ref string) string {
	return strings.TrimRight(r.Base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(msg string) {}
func (NopNotifier) Error(msg string)   {}
func (NopNotifier) Busy(msg string)    {}
func (NopNotifier) BusyDone()          {}
