package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/campusdesk/campusdesk/pkg/export"
	"github.com/campusdesk/campusdesk/pkg/roster"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

const filterParamPrefix = "filter_"

// RosterRoutes exposes one feature area's roster controller as a JSON
// surface. The controller is single-threaded, so every handler runs under
// one mutex; the client performs its own confirmation dialogs, so the
// controller is expected to be wired with roster.AutoApprove.
type RosterRoutes[T any, D any] struct {
	Ctl    *roster.Controller[T, D]
	Base   string
	Sheet  string
	Render func(T) any
	Log    *logrus.Logger

	mu sync.Mutex
}

func (rr *RosterRoutes[T, D]) Register(r *mux.Router) {
	s := r.PathPrefix(rr.Base).Subrouter()
	s.HandleFunc("", rr.list).Methods(http.MethodGet)
	s.HandleFunc("", rr.create).Methods(http.MethodPost)
	s.HandleFunc("/refresh", rr.refresh).Methods(http.MethodPost)
	s.HandleFunc("/export", rr.export).Methods(http.MethodGet)
	s.HandleFunc("/{id}", rr.update).Methods(http.MethodPut)
	s.HandleFunc("/{id}", rr.remove).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/status", rr.setStatus).Methods(http.MethodPost)
}

// list applies the request's interactions to the query state, then renders
// the visible page. Unknown filter names are passed through; the query
// engine ignores them.
func (rr *RosterRoutes[T, D]) list(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	q := r.URL.Query()
	if q.Has("search") {
		rr.Ctl.Search(q.Get("search"))
	}
	for name, values := range q {
		if strings.HasPrefix(name, filterParamPrefix) && len(values) > 0 {
			rr.Ctl.Filter(strings.TrimPrefix(name, filterParamPrefix), values[0])
		}
	}
	if q.Has("sort") {
		rr.Ctl.SortBy(q.Get("sort"))
	}
	if q.Has("page_size") {
		if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
			rr.Ctl.SetPageSize(size)
		}
	}
	if q.Has("page") {
		if page, err := strconv.Atoi(q.Get("page")); err == nil {
			rr.Ctl.GoToPage(page)
		}
	}

	view := rr.Ctl.View()
	data := make([]any, 0, len(view.Page))
	for _, rec := range view.Page {
		data = append(data, rr.Render(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":        data,
		"total":       view.TotalFiltered,
		"total_pages": view.TotalPages,
		"page":        view.CurrentPage,
	})
}

func (rr *RosterRoutes[T, D]) refresh(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if err := rr.Ctl.Refresh(r.Context()); err != nil {
		rr.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rr *RosterRoutes[T, D]) export(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	headers, rows := rr.Ctl.ExportRows()
	rr.mu.Unlock()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rr.Sheet+`.xlsx"`)
	if err := export.Write(w, rr.Sheet, headers, rows); err != nil {
		rr.Log.WithError(err).Error("export failed")
	}
}

func (rr *RosterRoutes[T, D]) create(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	var draft D
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	form, err := rr.Ctl.BeginCreate()
	if err != nil {
		rr.writeError(w, err)
		return
	}
	form.ReplaceDraft(draft)
	rr.submit(w, r, form, http.StatusCreated)
}

func (rr *RosterRoutes[T, D]) update(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	var draft D
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	form, err := rr.Ctl.BeginEdit(mux.Vars(r)["id"])
	if err != nil {
		rr.writeError(w, err)
		return
	}
	form.ReplaceDraft(draft)
	rr.submit(w, r, form, http.StatusOK)
}

// submit dispatches a bound form and always closes it afterwards, so the
// next request starts from a clean controller.
func (rr *RosterRoutes[T, D]) submit(w http.ResponseWriter, r *http.Request, form *roster.Form[T, D], okStatus int) {
	err := form.Submit(r.Context())
	recordID := form.RecordID()
	if _, closeErr := form.Close(r.Context()); closeErr != nil {
		rr.Log.WithError(closeErr).Warn("form close failed")
	}
	if err != nil {
		rr.writeError(w, err)
		return
	}
	rec, ok := rr.Ctl.Get(recordID)
	if !ok {
		rr.writeError(w, roster.ErrRecordNotFound)
		return
	}
	writeJSON(w, okStatus, map[string]any{"data": rr.Render(rec)})
}

func (rr *RosterRoutes[T, D]) setStatus(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	id := mux.Vars(r)["id"]
	if err := rr.Ctl.SetStatus(r.Context(), id, body.Status, body.Reason); err != nil {
		rr.writeError(w, err)
		return
	}
	rec, ok := rr.Ctl.Get(id)
	if !ok {
		rr.writeError(w, roster.ErrRecordNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rr.Render(rec)})
}

func (rr *RosterRoutes[T, D]) remove(w http.ResponseWriter, r *http.Request) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if err := rr.Ctl.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		rr.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rr *RosterRoutes[T, D]) writeError(w http.ResponseWriter, err error) {
	var invalid *serrors.DraftInvalidError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": invalid.Error(),
			"errors":  invalid.Fields,
		})
		return
	}
	var conflict *serrors.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"message": conflict.Message,
			"errors":  conflict.Fields,
		})
		return
	}
	var transport *serrors.TransportError
	if errors.As(err, &transport) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": transport.Message})
		return
	}
	switch {
	case errors.Is(err, serrors.ErrActionInFlight):
		writeJSON(w, http.StatusLocked, map[string]any{"message": serrors.ErrActionInFlight.Message})
	case errors.Is(err, roster.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"message": roster.ErrRecordNotFound.Message})
	case errors.Is(err, roster.ErrFormOpen):
		writeJSON(w, http.StatusConflict, map[string]any{"message": roster.ErrFormOpen.Message})
	default:
		rr.Log.WithError(err).Error("roster request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
