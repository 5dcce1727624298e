package roster

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/campusdesk/campusdesk/pkg/eventbus"
	"github.com/campusdesk/campusdesk/pkg/metrics"
	"github.com/campusdesk/campusdesk/pkg/roster/actionlock"
	"github.com/campusdesk/campusdesk/pkg/roster/preview"
	"github.com/campusdesk/campusdesk/pkg/roster/query"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

const refreshActionID = "__refresh__"

var (
	ErrFormOpen       = serrors.NewError("FORM_OPEN", "another form is already open")
	ErrRecordNotFound = serrors.NewError("RECORD_NOT_FOUND", "record not found in the loaded roster")
)

// Deps are the external collaborators a controller is wired with.
type Deps struct {
	Confirmer        Confirmer
	Notifier         Notifier
	Resolver         URLResolver
	Bus              eventbus.EventBus
	Logger           *logrus.Logger
	PreviewAllocator preview.Allocator
}

// Controller is the roster management composition root for one feature
// area. It owns the canonical record collection, the immutable query state,
// the single-flight action lock and at most one open form. It is built for
// a single-threaded, event-driven caller; only the action lock itself is
// safe for concurrent use.
type Controller[T any, D any] struct {
	desc      Descriptor[T, D]
	source    Source[T]
	confirmer Confirmer
	notifier  Notifier
	resolver  URLResolver
	bus       eventbus.EventBus
	log       *logrus.Entry
	locks     *actionlock.Coordinator
	alloc     preview.Allocator

	records []T
	state   query.State
	form    *Form[T, D]
}

func NewController[T any, D any](desc Descriptor[T, D], source Source[T], deps Deps) *Controller[T, D] {
	if source == nil {
		panic("roster: source is required")
	}
	if deps.Confirmer == nil {
		panic("roster: confirmer is required")
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.PreviewAllocator == nil {
		deps.PreviewAllocator = preview.TempFileAllocator{}
	}
	pageSize := desc.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	return &Controller[T, D]{
		desc:      desc,
		source:    source,
		confirmer: deps.Confirmer,
		notifier:  deps.Notifier,
		resolver:  deps.Resolver,
		bus:       deps.Bus,
		log:       deps.Logger.WithField("area", desc.Area),
		locks:     actionlock.New(),
		alloc:     deps.PreviewAllocator,
		state:     query.NewState(desc.DefaultSort, desc.DefaultDir, pageSize),
	}
}

// Refresh re-fetches the canonical roster. It runs under the action lock so
// a refresh can never race an in-flight edit.
func (c *Controller[T, D]) Refresh(ctx context.Context) error {
	if !c.locks.Begin(refreshActionID) {
		c.notifier.Error(serrors.ErrActionInFlight.Message)
		metrics.LockRejections.WithLabelValues(c.desc.Area).Inc()
		return serrors.ErrActionInFlight
	}
	defer c.locks.End()

	c.notifier.Busy("Loading " + c.desc.Area)
	defer c.notifier.BusyDone()

	records, err := c.source.FetchAll(ctx)
	if err != nil {
		classified := serrors.Classify(err)
		c.log.WithError(err).Warn("roster refresh failed")
		c.notifier.Error(classified.Error())
		return classified
	}
	c.records = records
	c.View()
	return nil
}

// View computes the visible page and clamps the stored current page to it.
func (c *Controller[T, D]) View() query.View[T] {
	v := query.ComputeView(c.records, c.state, c.desc.Query)
	c.state.Page = v.CurrentPage
	return v
}

func (c *Controller[T, D]) QueryState() query.State { return c.state }

func (c *Controller[T, D]) Search(term string)        { c.state = c.state.WithSearch(term) }
func (c *Controller[T, D]) Filter(name, value string) { c.state = c.state.WithFilter(name, value) }
func (c *Controller[T, D]) SortBy(field string)       { c.state = c.state.WithSort(field) }
func (c *Controller[T, D]) GoToPage(page int)         { c.state = c.state.WithPage(page) }
func (c *Controller[T, D]) SetPageSize(size int)      { c.state = c.state.WithPageSize(size) }

// RowDisabled reports whether a row's controls are inert because another
// row's action is in flight. RowBusy marks the row owning the action.
func (c *Controller[T, D]) RowDisabled(id string) bool { return c.locks.IsDisabled(id) }
func (c *Controller[T, D]) RowBusy(id string) bool     { return c.locks.IsBusy(id) }

// Records returns a copy of the canonical collection.
func (c *Controller[T, D]) Records() []T {
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Controller[T, D]) Get(id string) (T, bool) {
	for _, rec := range c.records {
		if c.desc.Query.ID(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// ExportRows renders the currently filtered and sorted set (all pages) for
// spreadsheet export.
func (c *Controller[T, D]) ExportRows() (headers []string, rows [][]string) {
	filtered := query.Filtered(c.records, c.state, c.desc.Query)
	rows = make([][]string, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, c.desc.Export.Row(rec))
	}
	return c.desc.Export.Headers, rows
}

// ExportRow renders one record with the area's export columns.
func (c *Controller[T, D]) ExportRow(rec T) []string {
	return c.desc.Export.Row(rec)
}

// BeginCreate opens a form over the field-complete empty template.
func (c *Controller[T, D]) BeginCreate() (*Form[T, D], error) {
	if c.form != nil && c.form.state != StateClosed {
		return nil, ErrFormOpen
	}
	f := c.newForm(ModeCreate, "", c.desc.Form.NewDraft())
	c.form = f
	return f, nil
}

// BeginEdit opens a form pre-populated from the source record.
func (c *Controller[T, D]) BeginEdit(id string) (*Form[T, D], error) {
	if c.form != nil && c.form.state != StateClosed {
		return nil, ErrFormOpen
	}
	rec, ok := c.Get(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	f := c.newForm(ModeEdit, id, c.desc.Form.DraftOf(rec))
	if c.desc.FileRef != nil && c.resolver != nil {
		if ref := c.desc.FileRef(rec); ref != "" {
			f.preview.SetFromURL(c.resolver.Resolve(ref))
		}
	}
	c.form = f
	return f, nil
}

func (c *Controller[T, D]) ActiveForm() *Form[T, D] { return c.form }

// SetStatus drives the deactivate/reactivate flow for one record: confirm,
// lock, a single API call, reconcile.
func (c *Controller[T, D]) SetStatus(ctx context.Context, id, status, reason string) error {
	if _, ok := c.Get(id); !ok {
		return ErrRecordNotFound
	}
	confirmed, err := c.confirmer.Confirm(ctx,
		"Change status?",
		"Set this "+c.desc.Singular+" to "+status+"?",
		"Yes, continue", "Cancel")
	if err != nil || !confirmed {
		return err
	}
	if !c.locks.Begin(id) {
		c.notifier.Error(serrors.ErrActionInFlight.Message)
		metrics.LockRejections.WithLabelValues(c.desc.Area).Inc()
		return serrors.ErrActionInFlight
	}
	rec, callErr := c.source.SetStatus(ctx, id, status, reason)
	if err := c.finishMutation(rec, callErr, "status", "Status updated"); err != nil {
		return err
	}
	// Published only after reconcile, so subscribers reading the controller
	// observe the post-mutation roster.
	c.publish(&StatusChangedEvent[T]{Area: c.desc.Area, Record: rec, Status: status})
	return nil
}

// Remove deletes one record after confirmation and drops it from the roster.
func (c *Controller[T, D]) Remove(ctx context.Context, id string) error {
	if _, ok := c.Get(id); !ok {
		return ErrRecordNotFound
	}
	confirmed, err := c.confirmer.Confirm(ctx,
		"Delete "+c.desc.Singular+"?",
		"This cannot be undone.",
		"Yes, delete", "Cancel")
	if err != nil || !confirmed {
		return err
	}
	if !c.locks.Begin(id) {
		c.notifier.Error(serrors.ErrActionInFlight.Message)
		metrics.LockRejections.WithLabelValues(c.desc.Area).Inc()
		return serrors.ErrActionInFlight
	}
	defer c.locks.End()

	if err := c.source.Delete(ctx, id); err != nil {
		classified := serrors.Classify(err)
		c.notifier.Error(classified.Error())
		metrics.Mutations.WithLabelValues(c.desc.Area, "delete", "failure").Inc()
		return classified
	}
	c.dropRecord(id)
	c.View()
	c.notifier.Success("Deleted")
	c.publish(&RemovedEvent{Area: c.desc.Area, ID: id})
	metrics.Mutations.WithLabelValues(c.desc.Area, "delete", "success").Inc()
	return nil
}

// finishMutation reconciles a server response while the action lock is
// held. Reconciling without the lock is a contract violation.
func (c *Controller[T, D]) finishMutation(rec T, callErr error, action, successMsg string) error {
	if !c.locks.Locked() {
		panic("roster: reconciling without holding the action lock")
	}
	defer c.locks.End()

	if callErr != nil {
		classified := serrors.Classify(callErr)
		c.notifier.Error(classified.Error())
		metrics.Mutations.WithLabelValues(c.desc.Area, action, "failure").Inc()
		return classified
	}
	c.reconcile(rec)
	c.View()
	c.notifier.Success(successMsg)
	metrics.Mutations.WithLabelValues(c.desc.Area, action, "success").Inc()
	return nil
}

// reconcile merges a canonical server record into the roster by id: replace
// in place when the id exists, prepend when it is new. The roster holds at
// most one record per id.
func (c *Controller[T, D]) reconcile(rec T) {
	id := c.desc.Query.ID(rec)
	for i := range c.records {
		if c.desc.Query.ID(c.records[i]) == id {
			c.records[i] = rec
			return
		}
	}
	c.records = append([]T{rec}, c.records...)
}

func (c *Controller[T, D]) dropRecord(id string) {
	for i := range c.records {
		if c.desc.Query.ID(c.records[i]) == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			return
		}
	}
}

func (c *Controller[T, D]) publish(event any) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}

// uniqueErrors checks the draft against the loaded roster snapshot,
// skipping the record under edit. Case-insensitive; blank values pass.
func (c *Controller[T, D]) uniqueErrors(d D, excludeID string) serrors.ValidationErrors {
	errs := serrors.ValidationErrors{}
	for _, rule := range c.desc.Unique {
		val := strings.TrimSpace(rule.DraftValue(d))
		if val == "" {
			continue
		}
		for _, rec := range c.records {
			if c.desc.Query.ID(rec) == excludeID {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(rule.RecordValue(rec)), val) {
				errs[rule.Field] = rule.Message
				break
			}
		}
	}
	return errs
}
