package roster

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"

	"github.com/campusdesk/campusdesk/pkg/metrics"
	"github.com/campusdesk/campusdesk/pkg/roster/preview"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// FormState is the lifecycle position of a modal form.
type FormState int

const (
	StateClosed FormState = iota
	StateOpen
	StateValidating
	StateConfirming
	StateSubmitting
	StateReconciling
)

func (s FormState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateValidating:
		return "validating"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	case StateReconciling:
		return "reconciling"
	}
	return "unknown"
}

var ErrFormNotOpen = serrors.NewError("FORM_NOT_OPEN", "form is not open")

// Form drives a single record's create/edit flow:
//
//	Closed → Open → Validating → Confirming → Submitting → Reconciling → Open/Closed
//
// with a dirty-checked cancel edge from Open back to Closed. Once a
// submission is dispatched the form cannot be closed until reconciliation
// releases the action lock.
type Form[T any, D any] struct {
	ctl        *Controller[T, D]
	mode       Mode
	recordID   string
	state      FormState
	draft      D
	snapshot   []byte
	errors     serrors.ValidationErrors
	preview    *preview.Manager
	fieldGen   map[string]uint64
	focusField string
}

func (c *Controller[T, D]) newForm(mode Mode, recordID string, draft D) *Form[T, D] {
	f := &Form[T, D]{
		ctl:      c,
		mode:     mode,
		recordID: recordID,
		state:    StateOpen,
		draft:    draft,
		errors:   serrors.ValidationErrors{},
		preview:  preview.NewManager(c.alloc),
		fieldGen: map[string]uint64{},
	}
	f.resnap()
	return f
}

func (f *Form[T, D]) State() FormState                 { return f.state }
func (f *Form[T, D]) Mode() Mode                       { return f.mode }
func (f *Form[T, D]) RecordID() string                 { return f.recordID }
func (f *Form[T, D]) Draft() D                         { return f.draft }
func (f *Form[T, D]) Errors() serrors.ValidationErrors { return f.errors }
func (f *Form[T, D]) Preview() *preview.Manager        { return f.preview }

// FocusField names the first invalid field of the last failed submit, so
// the presentation layer can scroll to and focus it.
func (f *Form[T, D]) FocusField() string { return f.focusField }

// IsDirty deep-compares the draft against its snapshot. Attachment
// selection and removal flags live on the draft, so they are covered by the
// same comparison.
func (f *Form[T, D]) IsDirty() bool {
	cur, err := json.Marshal(f.draft)
	if err != nil {
		return true
	}
	patch, err := jsondiff.CompareJSON(f.snapshot, cur)
	if err != nil {
		return true
	}
	return len(patch) > 0
}

func (f *Form[T, D]) resnap() {
	snap, err := json.Marshal(f.draft)
	if err != nil {
		snap = nil
	}
	f.snapshot = snap
}

// SetField applies one field edit in arrival order, then revalidates only
// that field for inline feedback. Unrelated fields are not revalidated.
func (f *Form[T, D]) SetField(ctx context.Context, field string, mutate func(draft *D)) {
	if f.state != StateOpen {
		return
	}
	mutate(&f.draft)
	f.fieldGen[field]++
	gen := f.fieldGen[field]
	if f.ctl.desc.Form.ValidateField == nil {
		return
	}
	msg, ok := f.ctl.desc.Form.ValidateField(ctx, f.draft, f.mode, field)
	f.applyFieldResult(field, gen, msg, ok)
}

// ReplaceDraft swaps the entire working copy at once, as transports that
// bind a complete form post do. Per-field generations advance so pending
// field validations are invalidated.
func (f *Form[T, D]) ReplaceDraft(d D) {
	if f.state != StateOpen {
		return
	}
	f.draft = d
	for field := range f.fieldGen {
		f.fieldGen[field]++
	}
}

// BeginFieldValidation supports validators that complete after further
// edits: the returned apply discards any result that is stale relative to a
// newer value of the same field.
func (f *Form[T, D]) BeginFieldValidation(field string) func(msg string, ok bool) {
	gen := f.fieldGen[field]
	return func(msg string, ok bool) {
		f.applyFieldResult(field, gen, msg, ok)
	}
}

func (f *Form[T, D]) applyFieldResult(field string, gen uint64, msg string, ok bool) {
	if f.fieldGen[field] != gen {
		return
	}
	if ok {
		delete(f.errors, field)
	} else {
		f.errors[field] = msg
	}
}

// AttachFile establishes a local preview for a selected file and lets the
// area mark the selection on the draft.
func (f *Form[T, D]) AttachFile(file preview.File, mutate func(draft *D)) error {
	if f.state != StateOpen {
		return ErrFormNotOpen
	}
	h, err := f.preview.SetFromFile(file)
	if err != nil {
		return errors.Wrap(err, "establish preview")
	}
	f.ctl.log.WithField("preview_id", h.ID()).Debug("preview established")
	if mutate != nil {
		mutate(&f.draft)
	}
	return nil
}

// ClearAttachment releases the preview and lets the area record a removal
// request on the draft.
func (f *Form[T, D]) ClearAttachment(mutate func(draft *D)) {
	if f.state != StateOpen {
		return
	}
	if h := f.preview.Current(); h != nil {
		f.ctl.log.WithField("preview_id", h.ID()).Debug("preview released")
	}
	f.preview.Clear()
	if mutate != nil {
		mutate(&f.draft)
	}
}

// Close is the cancel/escape/backdrop edge. While a submission is in flight
// it refuses. A dirty draft requires discard confirmation; declining keeps
// the modal open with the draft intact. Returns whether the form closed.
func (f *Form[T, D]) Close(ctx context.Context) (bool, error) {
	switch f.state {
	case StateClosed:
		return true, nil
	case StateSubmitting, StateReconciling:
		return false, nil
	}
	if f.IsDirty() {
		confirmed, err := f.ctl.confirmer.Confirm(ctx,
			"Discard changes?",
			"You have unsaved changes. Close without saving?",
			"Discard", "Keep editing")
		if err != nil {
			return false, err
		}
		if !confirmed {
			return false, nil
		}
	}
	f.destroy()
	return true, nil
}

func (f *Form[T, D]) destroy() {
	f.preview.Clear()
	f.state = StateClosed
	if f.ctl.form == f {
		f.ctl.form = nil
	}
}

// Submit drives validate → confirm → submit → reconcile. Submission never
// proceeds with errors present, requires an explicit confirmation, and
// dispatches to the API exactly once under the action lock.
func (f *Form[T, D]) Submit(ctx context.Context) error {
	if f.state != StateOpen {
		return ErrFormNotOpen
	}
	spec := f.ctl.desc.Form

	f.state = StateValidating
	errs := serrors.ValidationErrors{}
	if spec.Validate != nil {
		errs.Merge(spec.Validate(ctx, f.draft, f.mode))
	}
	errs.Merge(f.ctl.uniqueErrors(f.draft, f.recordID))
	if len(errs) > 0 {
		f.errors = errs
		field, msg := errs.First(spec.FieldOrder)
		f.focusField = field
		f.state = StateOpen
		f.ctl.notifier.Error(msg)
		return &serrors.DraftInvalidError{Fields: errs}
	}
	f.errors = serrors.ValidationErrors{}
	f.focusField = ""

	f.state = StateConfirming
	title, msg := f.confirmCopy()
	confirmed, err := f.ctl.confirmer.Confirm(ctx, title, msg, "Yes, save", "Cancel")
	if err != nil {
		f.state = StateOpen
		return err
	}
	if !confirmed {
		f.state = StateOpen
		return serrors.ErrSubmitDeclined
	}

	if !f.ctl.locks.Begin(f.actionID()) {
		f.state = StateOpen
		f.ctl.notifier.Error(serrors.ErrActionInFlight.Message)
		metrics.LockRejections.WithLabelValues(f.ctl.desc.Area).Inc()
		return serrors.ErrActionInFlight
	}

	f.state = StateSubmitting
	payload, err := spec.Payload(f.draft, f.mode)
	if err != nil {
		f.ctl.locks.End()
		f.state = StateOpen
		return errors.Wrap(err, "build payload")
	}

	var rec T
	var callErr error
	if f.mode == ModeCreate {
		rec, callErr = f.ctl.source.Create(ctx, payload)
	} else {
		rec, callErr = f.ctl.source.Update(ctx, f.recordID, payload)
	}
	f.state = StateReconciling
	return f.reconcileResult(rec, callErr)
}

// reconcileResult finishes a submission while the lock is held. On success
// the canonical record replaces or enters the roster, the draft is
// re-snapshotted from the response so the create flow can keep editing, and
// any local preview superseded by the server's stored resource is released.
// On failure no collection mutation occurs; the draft stays open and dirty.
func (f *Form[T, D]) reconcileResult(rec T, callErr error) error {
	if !f.ctl.locks.Locked() {
		panic("roster: reconciling without holding the action lock")
	}
	defer f.ctl.locks.End()

	action := "update"
	if f.mode == ModeCreate {
		action = "create"
	}

	if callErr != nil {
		classified := serrors.Classify(callErr)
		var conflict *serrors.ConflictError
		if errors.As(classified, &conflict) {
			f.errors.Merge(conflict.Fields)
			f.focusField, _ = f.errors.First(f.ctl.desc.Form.FieldOrder)
		}
		f.ctl.notifier.Error(classified.Error())
		f.state = StateOpen
		metrics.Mutations.WithLabelValues(f.ctl.desc.Area, action, "failure").Inc()
		return classified
	}

	f.ctl.reconcile(rec)
	f.ctl.View()

	wasCreate := f.mode == ModeCreate
	f.recordID = f.ctl.desc.Query.ID(rec)
	f.mode = ModeEdit
	f.draft = f.ctl.desc.Form.DraftOf(rec)
	f.resnap()
	f.errors = serrors.ValidationErrors{}
	f.fieldGen = map[string]uint64{}

	if f.ctl.desc.FileRef != nil && f.ctl.resolver != nil {
		if ref := f.ctl.desc.FileRef(rec); ref != "" {
			f.preview.SetFromURL(f.ctl.resolver.Resolve(ref))
		} else {
			f.preview.Clear()
		}
	} else {
		f.preview.Clear()
	}

	f.state = StateOpen
	if wasCreate {
		f.ctl.notifier.Success("Created " + f.ctl.desc.Singular)
		f.ctl.publish(&CreatedEvent[T]{Area: f.ctl.desc.Area, Record: rec})
	} else {
		f.ctl.notifier.Success("Saved " + f.ctl.desc.Singular)
		f.ctl.publish(&UpdatedEvent[T]{Area: f.ctl.desc.Area, Record: rec})
	}
	metrics.Mutations.WithLabelValues(f.ctl.desc.Area, action, "success").Inc()
	return nil
}

func (f *Form[T, D]) confirmCopy() (title, message string) {
	if f.mode == ModeCreate {
		return "Create " + f.ctl.desc.Singular + "?", "Save this new " + f.ctl.desc.Singular + "?"
	}
	return "Save changes?", "Apply your changes to this " + f.ctl.desc.Singular + "?"
}

func (f *Form[T, D]) actionID() string {
	if f.mode == ModeCreate {
		return "new:" + f.ctl.desc.Area
	}
	return f.recordID
}
