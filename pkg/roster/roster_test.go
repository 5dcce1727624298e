package roster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk/pkg/eventbus"
	"github.com/campusdesk/campusdesk/pkg/roster/preview"
	"github.com/campusdesk/campusdesk/pkg/roster/query"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

type unit struct {
	id      string
	name    string
	code    string
	status  string
	fileRef string
}

type unitDraft struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	FileName    string `json:"file_name"`
	FileRemoved bool   `json:"file_removed"`
}

func unitDescriptor() Descriptor[unit, unitDraft] {
	return Descriptor[unit, unitDraft]{
		Area:     "units",
		Singular: "unit",
		Query: query.Descriptor[unit]{
			ID: func(u unit) string { return u.id },
			Searchable: []query.Field[unit]{
				{Name: "name", Text: func(u unit) string { return u.name }},
				{Name: "code", Text: func(u unit) string { return u.code }},
			},
			Sortable: map[string]query.Field[unit]{
				"name": {Name: "name", Text: func(u unit) string { return u.name }},
			},
			Filters: map[string]func(unit, string) bool{
				"status": func(u unit, v string) bool { return u.status == v },
			},
		},
		Form: FormSpec[unit, unitDraft]{
			NewDraft: func() unitDraft { return unitDraft{} },
			DraftOf: func(u unit) unitDraft {
				return unitDraft{Name: u.name, Code: u.code}
			},
			Payload: func(d unitDraft, mode Mode) (any, error) {
				return map[string]string{"name": d.Name, "code": d.Code}, nil
			},
			Validate: func(ctx context.Context, d unitDraft, mode Mode) serrors.ValidationErrors {
				errs := serrors.ValidationErrors{}
				if strings.TrimSpace(d.Name) == "" {
					errs["Name"] = "Name is required"
				}
				if strings.TrimSpace(d.Code) == "" {
					errs["Code"] = "Code is required"
				}
				return errs
			},
			ValidateField: func(ctx context.Context, d unitDraft, mode Mode, field string) (string, bool) {
				switch field {
				case "Name":
					if strings.TrimSpace(d.Name) == "" {
						return "Name is required", false
					}
				case "Code":
					if strings.TrimSpace(d.Code) == "" {
						return "Code is required", false
					}
				}
				return "", true
			},
			FieldOrder: []string{"Code", "Name"},
		},
		Unique: []UniqueRule[unit, unitDraft]{{
			Field:       "Code",
			Message:     "Code already exists",
			DraftValue:  func(d unitDraft) string { return d.Code },
			RecordValue: func(u unit) string { return u.code },
		}},
		FileRef:     func(u unit) string { return u.fileRef },
		DefaultSort: "name",
		PageSize:    5,
	}
}

type fakeSource struct {
	records     []unit
	fetchCalls  int
	createCalls int
	updateCalls int
	statusCalls int
	deleteCalls int
	fail        error
	onSetStatus func()
}

func (s *fakeSource) FetchAll(ctx context.Context) ([]unit, error) {
	s.fetchCalls++
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]unit, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeSource) Create(ctx context.Context, payload any) (unit, error) {
	s.createCalls++
	if s.fail != nil {
		return unit{}, s.fail
	}
	body := payload.(map[string]string)
	return unit{
		id:     fmt.Sprintf("srv-%d", s.createCalls),
		name:   body["name"],
		code:   body["code"],
		status: "active",
	}, nil
}

func (s *fakeSource) Update(ctx context.Context, id string, payload any) (unit, error) {
	s.updateCalls++
	if s.fail != nil {
		return unit{}, s.fail
	}
	body := payload.(map[string]string)
	return unit{id: id, name: body["name"], code: body["code"], status: "active"}, nil
}

func (s *fakeSource) Delete(ctx context.Context, id string) error {
	s.deleteCalls++
	return s.fail
}

func (s *fakeSource) SetStatus(ctx context.Context, id, status, reason string) (unit, error) {
	s.statusCalls++
	if s.onSetStatus != nil {
		s.onSetStatus()
	}
	if s.fail != nil {
		return unit{}, s.fail
	}
	return unit{id: id, name: "n", code: "c", status: status}, nil
}

type fakeConfirmer struct {
	answers []bool
	calls   int
}

func (c *fakeConfirmer) Confirm(ctx context.Context, title, message, confirmLabel, cancelLabel string) (bool, error) {
	c.calls++
	if len(c.answers) == 0 {
		return true, nil
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

type spyNotifier struct {
	successes []string
	failures  []string
	busy      int
}

func (n *spyNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *spyNotifier) Error(msg string)   { n.failures = append(n.failures, msg) }
func (n *spyNotifier) Busy(msg string)    { n.busy++ }
func (n *spyNotifier) BusyDone()          {}

type prefixResolver struct{ prefix string }

func (r prefixResolver) Resolve(ref string) string { return r.prefix + ref }

type countingAllocator struct{ releases int }

func (a *countingAllocator) Acquire(f preview.File) (string, func() error, error) {
	return "local://" + f.Name, func() error {
		a.releases++
		return nil
	}, nil
}

func newFixture(t *testing.T, seed []unit) (*Controller[unit, unitDraft], *fakeSource, *fakeConfirmer, *spyNotifier) {
	t.Helper()
	src := &fakeSource{records: seed}
	conf := &fakeConfirmer{}
	spy := &spyNotifier{}
	c := NewController(unitDescriptor(), src, Deps{
		Confirmer:        conf,
		Notifier:         spy,
		Resolver:         prefixResolver{prefix: "https://files/"},
		PreviewAllocator: &countingAllocator{},
	})
	require.NoError(t, c.Refresh(context.Background()))
	return c, src, conf, spy
}

func seedUnits(n int) []unit {
	out := make([]unit, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, unit{
			id:     fmt.Sprintf("u-%02d", i),
			name:   fmt.Sprintf("Unit %02d", i),
			code:   fmt.Sprintf("C%02d", i),
			status: "active",
		})
	}
	return out
}

func TestRefresh_LoadsRosterUnderLock(t *testing.T) {
	c, src, _, _ := newFixture(t, seedUnits(3))
	require.Equal(t, 1, src.fetchCalls)
	require.Len(t, c.Records(), 3)
	require.False(t, c.locks.Locked(), "lock released after refresh")
}

func TestRefresh_RejectedWhileActionInFlight(t *testing.T) {
	c, src, _, spy := newFixture(t, seedUnits(1))

	require.True(t, c.locks.Begin("u-01"))
	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, serrors.ErrActionInFlight)
	require.Equal(t, 1, src.fetchCalls, "no second fetch while an action is pending")
	require.NotEmpty(t, spy.failures)
	c.locks.End()
}

func TestSubmit_CreateReconcilesByPrepend(t *testing.T) {
	c, src, _, spy := newFixture(t, seedUnits(2))

	f, err := c.BeginCreate()
	require.NoError(t, err)
	ctx := context.Background()

	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Fresh Unit" })
	f.SetField(ctx, "Code", func(d *unitDraft) { d.Code = "C99" })
	require.True(t, f.IsDirty())

	require.NoError(t, f.Submit(ctx))
	require.Equal(t, 1, src.createCalls)

	records := c.Records()
	require.Len(t, records, 3)
	require.Equal(t, "srv-1", records[0].id, "new record is prepended")

	// Create flow stays open, re-snapshotted from the response.
	require.Equal(t, StateOpen, f.State())
	require.Equal(t, ModeEdit, f.Mode())
	require.False(t, f.IsDirty())
	require.False(t, c.locks.Locked())
	require.Contains(t, spy.successes[0], "Created")

	closed, err := f.Close(ctx)
	require.NoError(t, err)
	require.True(t, closed, "clean draft closes without a discard prompt")
}

func TestSubmit_UpdateReplacesInPlace(t *testing.T) {
	c, _, _, _ := newFixture(t, seedUnits(3))
	ctx := context.Background()

	f, err := c.BeginEdit("u-02")
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Renamed" })

	require.NoError(t, f.Submit(ctx))

	records := c.Records()
	require.Len(t, records, 3)
	require.Equal(t, "u-02", records[1].id, "replaced in place, encounter order kept")
	require.Equal(t, "Renamed", records[1].name)
}

func TestSubmit_LocalValidationBlocksDispatch(t *testing.T) {
	c, src, conf, _ := newFixture(t, seedUnits(1))
	ctx := context.Background()

	f, err := c.BeginCreate()
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "No code" })

	err = f.Submit(ctx)
	var invalid *serrors.DraftInvalidError
	require.ErrorAs(t, err, &invalid)
	require.Contains(t, f.Errors(), "Code")
	require.Equal(t, "Code", f.FocusField(), "first invalid field in order is focused")
	require.Equal(t, StateOpen, f.State())
	require.Zero(t, src.createCalls, "submission is not dispatched with errors present")
	require.Zero(t, conf.calls, "no confirmation prompt for an invalid draft")
	require.False(t, c.locks.Locked())
}

func TestSubmit_DuplicateIdentifierFailsLocally(t *testing.T) {
	c, src, _, _ := newFixture(t, seedUnits(2))
	ctx := context.Background()

	f, err := c.BeginCreate()
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Duplicate" })
	f.SetField(ctx, "Code", func(d *unitDraft) { d.Code = "c01" }) // case-insensitive clash with C01

	err = f.Submit(ctx)
	var invalid *serrors.DraftInvalidError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "Code already exists", f.Errors()["Code"])
	require.Zero(t, src.createCalls)
}

func TestSubmit_UniquenessExcludesRecordUnderEdit(t *testing.T) {
	c, src, _, _ := newFixture(t, seedUnits(2))
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Keep own code" })

	require.NoError(t, f.Submit(ctx))
	require.Equal(t, 1, src.updateCalls)
}

func TestSubmit_DecliningConfirmationKeepsDraft(t *testing.T) {
	c, src, conf, _ := newFixture(t, seedUnits(1))
	conf.answers = []bool{false}
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Changed" })

	// The caller gets a distinguishable signal: nothing was dispatched.
	require.ErrorIs(t, f.Submit(ctx), serrors.ErrSubmitDeclined)
	require.Equal(t, StateOpen, f.State())
	require.Equal(t, "Changed", f.Draft().Name)
	require.True(t, f.IsDirty())
	require.Zero(t, src.updateCalls)
	require.False(t, c.locks.Locked())

	// Confirming afterwards dispatches normally.
	require.NoError(t, f.Submit(ctx))
	require.Equal(t, 1, src.updateCalls)
}

func TestSubmit_ConflictMergesFieldErrors(t *testing.T) {
	c, src, _, spy := newFixture(t, seedUnits(1))
	src.fail = &serrors.APIError{
		Status:  409,
		Message: "duplicate code",
		Fields:  map[string]string{"Code": "Code already taken on the server"},
	}
	ctx := context.Background()

	f, err := c.BeginCreate()
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Conflicted" })
	f.SetField(ctx, "Code", func(d *unitDraft) { d.Code = "CX" })

	err = f.Submit(ctx)
	var conflict *serrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "Code already taken on the server", f.Errors()["Code"])
	require.Equal(t, StateOpen, f.State())
	require.True(t, f.IsDirty(), "draft stays editable and dirty")
	require.Len(t, c.Records(), 1, "no collection mutation on failure")
	require.False(t, c.locks.Locked(), "lock released on the failure path")
	require.NotEmpty(t, spy.failures)
}

func TestSubmit_TransportFailureKeepsDraftForRetry(t *testing.T) {
	c, src, _, _ := newFixture(t, seedUnits(1))
	src.fail = fmt.Errorf("connection reset")
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Will fail" })

	err = f.Submit(ctx)
	var transport *serrors.TransportError
	require.ErrorAs(t, err, &transport)
	require.Equal(t, "Will fail", f.Draft().Name)
	require.True(t, f.IsDirty())
	require.False(t, c.locks.Locked())

	// Retry succeeds without re-entering data.
	src.fail = nil
	require.NoError(t, f.Submit(ctx))
	require.Equal(t, 2, src.updateCalls)
}

func TestClose_DirtyDraftNeedsDiscardConfirmation(t *testing.T) {
	c, _, conf, _ := newFixture(t, seedUnits(1))
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Edited" })

	conf.answers = []bool{false}
	closed, err := f.Close(ctx)
	require.NoError(t, err)
	require.False(t, closed, "declining keeps the modal open")
	require.Equal(t, "Edited", f.Draft().Name, "edited value intact")

	conf.answers = []bool{true}
	closed, err = f.Close(ctx)
	require.NoError(t, err)
	require.True(t, closed)
	require.Equal(t, StateClosed, f.State())
	require.Equal(t, "Unit 01", c.Records()[0].name, "roster unchanged after discard")
	require.Nil(t, c.ActiveForm())
}

func TestClose_CleanDraftSkipsPrompt(t *testing.T) {
	c, _, conf, _ := newFixture(t, seedUnits(1))
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)
	require.False(t, f.IsDirty())

	closed, err := f.Close(ctx)
	require.NoError(t, err)
	require.True(t, closed)
	require.Zero(t, conf.calls, "no discard prompt for an unchanged draft")
}

func TestSetStatus_SecondClickRejectedByLock(t *testing.T) {
	c, src, _, spy := newFixture(t, seedUnits(2))
	ctx := context.Background()

	var second error
	src.onSetStatus = func() {
		// The operator clicks again while the first call is pending.
		second = c.SetStatus(ctx, "u-01", "inactive", "")
	}

	require.NoError(t, c.SetStatus(ctx, "u-01", "inactive", "left school"))
	require.ErrorIs(t, second, serrors.ErrActionInFlight)
	require.Equal(t, 1, src.statusCalls, "exactly one API call")
	require.NotEmpty(t, spy.failures, "rejection surfaces a please-wait notice")
	require.False(t, c.locks.Locked())
}

func TestSetStatus_ReconcilesResponse(t *testing.T) {
	c, _, _, _ := newFixture(t, seedUnits(2))

	require.NoError(t, c.SetStatus(context.Background(), "u-02", "inactive", "retired"))
	rec, ok := c.Get("u-02")
	require.True(t, ok)
	require.Equal(t, "inactive", rec.status)
	require.Len(t, c.Records(), 2)
}

func TestSetStatus_EventObservesReconciledRoster(t *testing.T) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	bus := eventbus.NewEventPublisher(quiet)

	src := &fakeSource{records: seedUnits(1)}
	c := NewController(unitDescriptor(), src, Deps{
		Confirmer: &fakeConfirmer{},
		Notifier:  &spyNotifier{},
		Bus:       bus,
		Logger:    quiet,
	})
	require.NoError(t, c.Refresh(context.Background()))

	// A subscriber reading the controller at publish time must see the
	// post-mutation record, not the stale one.
	seen := ""
	bus.Subscribe(func(e *StatusChangedEvent[unit]) {
		rec, ok := c.Get("u-01")
		require.True(t, ok)
		seen = rec.status
	})

	require.NoError(t, c.SetStatus(context.Background(), "u-01", "inactive", "retired"))
	require.Equal(t, "inactive", seen)
}

func TestSubscribeAudit_LogsMutationEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	bus := eventbus.NewEventPublisher(logger)

	SubscribeAudit(bus, logger, func(u unit) string { return u.id })
	SubscribeRemovedAudit(bus, logger)

	bus.Publish(&CreatedEvent[unit]{Area: "units", Record: unit{id: "u-09"}})
	bus.Publish(&StatusChangedEvent[unit]{Area: "units", Record: unit{id: "u-09"}, Status: "inactive"})
	bus.Publish(&RemovedEvent{Area: "units", ID: "u-09"})

	out := buf.String()
	require.Contains(t, out, "roster record created")
	require.Contains(t, out, "roster status changed")
	require.Contains(t, out, "roster record removed")
	require.Contains(t, out, "u-09")
	require.NotContains(t, out, "no matching subscribers")
}

func TestRemove_DropsRecord(t *testing.T) {
	c, src, _, _ := newFixture(t, seedUnits(3))

	require.NoError(t, c.Remove(context.Background(), "u-02"))
	require.Equal(t, 1, src.deleteCalls)
	require.Len(t, c.Records(), 2)
	_, ok := c.Get("u-02")
	require.False(t, ok)
}

func TestRemove_DeclinedConfirmationMakesNoCall(t *testing.T) {
	c, src, conf, _ := newFixture(t, seedUnits(1))
	conf.answers = []bool{false}

	require.NoError(t, c.Remove(context.Background(), "u-01"))
	require.Zero(t, src.deleteCalls)
	require.Len(t, c.Records(), 1)
}

func TestRowDisabledAndBusyDuringAction(t *testing.T) {
	c, src, _, _ := newFixture(t, seedUnits(2))
	ctx := context.Background()

	src.onSetStatus = func() {
		require.True(t, c.RowBusy("u-01"))
		require.False(t, c.RowDisabled("u-01"), "locked row is busy, not disabled")
		require.True(t, c.RowDisabled("u-02"))
	}
	require.NoError(t, c.SetStatus(ctx, "u-01", "inactive", ""))
	require.False(t, c.RowDisabled("u-02"))
}

func TestBeginEdit_OnlyOneOpenForm(t *testing.T) {
	c, _, _, _ := newFixture(t, seedUnits(2))

	_, err := c.BeginEdit("u-01")
	require.NoError(t, err)

	_, err = c.BeginEdit("u-02")
	require.ErrorIs(t, err, ErrFormOpen)
	_, err = c.BeginCreate()
	require.ErrorIs(t, err, ErrFormOpen)
}

func TestStaleFieldValidationResultDiscarded(t *testing.T) {
	c, _, _, _ := newFixture(t, seedUnits(1))
	ctx := context.Background()

	f, err := c.BeginCreate()
	require.NoError(t, err)
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "" })
	require.Contains(t, f.Errors(), "Name")

	// A slow validator captured before the next edit must not overwrite
	// the newer value's result.
	apply := f.BeginFieldValidation("Name")
	f.SetField(ctx, "Name", func(d *unitDraft) { d.Name = "Valid now" })
	require.NotContains(t, f.Errors(), "Name")

	apply("Name is required", false)
	require.NotContains(t, f.Errors(), "Name", "stale result discarded")
}

func TestAttachmentLifecycleReleasesPreviews(t *testing.T) {
	alloc := &countingAllocator{}
	src := &fakeSource{records: seedUnits(1)}
	c := NewController(unitDescriptor(), src, Deps{
		Confirmer:        &fakeConfirmer{},
		Notifier:         &spyNotifier{},
		PreviewAllocator: alloc,
	})
	require.NoError(t, c.Refresh(context.Background()))
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)

	require.NoError(t, f.AttachFile(preview.File{Name: "a.png"}, func(d *unitDraft) { d.FileName = "a.png" }))
	require.True(t, f.IsDirty(), "file selection marks the draft dirty")
	require.NoError(t, f.AttachFile(preview.File{Name: "b.png"}, func(d *unitDraft) { d.FileName = "b.png" }))
	require.Equal(t, 1, alloc.releases, "selecting a new file releases the prior handle")

	f.ClearAttachment(func(d *unitDraft) {
		d.FileName = ""
		d.FileRemoved = true
	})
	require.Equal(t, 2, alloc.releases)
	require.True(t, f.IsDirty(), "removal request marks the draft dirty")

	conf := c.confirmer.(*fakeConfirmer)
	conf.answers = []bool{true}
	closed, err := f.Close(ctx)
	require.NoError(t, err)
	require.True(t, closed)
	require.Equal(t, 2, alloc.releases, "no double-free on close")
}

func TestSubmit_ServerResourceSupersedesLocalPreview(t *testing.T) {
	alloc := &countingAllocator{}
	src := &fakeSource{records: []unit{{id: "u-01", name: "Unit", code: "C01", fileRef: ""}}}
	c := NewController(unitDescriptor(), src, Deps{
		Confirmer:        &fakeConfirmer{},
		Notifier:         &spyNotifier{},
		Resolver:         prefixResolver{prefix: "https://files/"},
		PreviewAllocator: alloc,
	})
	require.NoError(t, c.Refresh(context.Background()))
	ctx := context.Background()

	f, err := c.BeginEdit("u-01")
	require.NoError(t, err)
	require.NoError(t, f.AttachFile(preview.File{Name: "new.png"}, func(d *unitDraft) { d.FileName = "new.png" }))

	require.NoError(t, f.Submit(ctx))
	require.Equal(t, 1, alloc.releases, "local handle released after the server took over")
}

func TestReconcileWithoutLockPanics(t *testing.T) {
	c, _, _, _ := newFixture(t, seedUnits(1))

	require.Panics(t, func() {
		c.finishMutation(unit{id: "u-01"}, nil, "status", "ok")
	})
}

func TestViewClampsStoredPage(t *testing.T) {
	c, _, _, _ := newFixture(t, seedUnits(12))

	c.GoToPage(3)
	v := c.View()
	require.Equal(t, 3, v.CurrentPage)
	require.Len(t, v.Page, 2)

	// Narrowing the result set pulls the stored page back into range.
	c.Search("Unit 01")
	v = c.View()
	require.Equal(t, 1, v.CurrentPage)
	require.Equal(t, 1, c.QueryState().Page)
}
