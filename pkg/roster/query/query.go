package query

import (
	"sort"
	"strings"
	"time"
)

// Direction is the sort direction of the active sort field.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// FilterAll is the sentinel filter value meaning "no constraint".
const FilterAll = "all"

// State is the full search/filter/sort/pagination configuration of one
// roster page. It is an immutable value: every update helper returns a new
// State, and any realized change to search, a filter or the page size resets
// the current page to 1.
type State struct {
	Search    string
	Filters   map[string]string
	SortField string
	SortDir   Direction
	Page      int
	PageSize  int
}

func NewState(sortField string, dir Direction, pageSize int) State {
	if pageSize < 1 {
		pageSize = 1
	}
	return State{
		Filters:   map[string]string{},
		SortField: sortField,
		SortDir:   dir,
		Page:      1,
		PageSize:  pageSize,
	}
}

func (s State) clone() State {
	filters := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = v
	}
	s.Filters = filters
	return s
}

func (s State) WithSearch(term string) State {
	if term == s.Search {
		return s
	}
	next := s.clone()
	next.Search = term
	next.Page = 1
	return next
}

func (s State) WithFilter(name, value string) State {
	if s.Filters[name] == value {
		return s
	}
	next := s.clone()
	next.Filters[name] = value
	next.Page = 1
	return next
}

func (s State) WithPageSize(size int) State {
	if size < 1 || size == s.PageSize {
		return s
	}
	next := s.clone()
	next.PageSize = size
	next.Page = 1
	return next
}

// WithSort toggles the direction when the active field is re-selected and
// resets to ascending when a new field is chosen.
func (s State) WithSort(field string) State {
	next := s.clone()
	if field == s.SortField {
		if s.SortDir == Ascending {
			next.SortDir = Descending
		} else {
			next.SortDir = Ascending
		}
		return next
	}
	next.SortField = field
	next.SortDir = Ascending
	return next
}

func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	next := s.clone()
	next.Page = page
	return next
}

// Kind tells the engine how to compare a sortable field.
type Kind int

const (
	Text Kind = iota
	Date
)

// Field exposes one named field of a record to the engine. Text is used for
// search matching and text comparison; Date only for date-kind sorting,
// where a zero time sorts first.
type Field[T any] struct {
	Name string
	Kind Kind
	Text func(T) string
	Date func(T) time.Time
}

// Descriptor is the per-feature-area capability description: which fields
// are searchable, how each sortable field compares, and the named filter
// predicates.
type Descriptor[T any] struct {
	ID         func(T) string
	Searchable []Field[T]
	Sortable   map[string]Field[T]
	Filters    map[string]func(record T, value string) bool
}

// View is one derived read-only page of a roster.
type View[T any] struct {
	Page          []T
	TotalFiltered int
	TotalPages    int
	CurrentPage   int
}

// ComputeView derives the visible page from the canonical collection. Pure:
// it never mutates records or st and is deterministic for identical inputs,
// so it is safe to re-run on every keystroke. The requested page is clamped
// into [1, TotalPages]; TotalPages is never zero.
func ComputeView[T any](records []T, st State, d Descriptor[T]) View[T] {
	filtered := Filtered(records, st, d)

	pageSize := st.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (len(filtered) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := st.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return View[T]{
		Page:          filtered[start:end],
		TotalFiltered: len(filtered),
		TotalPages:    totalPages,
		CurrentPage:   page,
	}
}

// Filtered returns the searched, filtered and sorted set without pagination.
// Export and page computation share it.
func Filtered[T any](records []T, st State, d Descriptor[T]) []T {
	term := strings.ToLower(strings.TrimSpace(st.Search))

	filtered := make([]T, 0, len(records))
	for _, rec := range records {
		if term != "" && !matchesSearch(rec, term, d.Searchable) {
			continue
		}
		if !matchesFilters(rec, st.Filters, d.Filters) {
			continue
		}
		filtered = append(filtered, rec)
	}

	if field, ok := d.Sortable[st.SortField]; ok {
		desc := st.SortDir == Descending
		// Stable: equal keys keep encounter order.
		sort.SliceStable(filtered, func(i, j int) bool {
			less := fieldLess(field, filtered[i], filtered[j])
			if desc {
				return fieldLess(field, filtered[j], filtered[i])
			}
			return less
		})
	}
	return filtered
}

func matchesSearch[T any](rec T, term string, fields []Field[T]) bool {
	for _, f := range fields {
		if f.Text == nil {
			continue
		}
		if strings.Contains(strings.ToLower(f.Text(rec)), term) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](rec T, active map[string]string, predicates map[string]func(T, string) bool) bool {
	for name, value := range active {
		if value == "" || value == FilterAll {
			continue
		}
		pred, ok := predicates[name]
		if !ok {
			continue
		}
		if !pred(rec, value) {
			return false
		}
	}
	return true
}

func fieldLess[T any](f Field[T], a, b T) bool {
	if f.Kind == Date && f.Date != nil {
		return f.Date(a).Before(f.Date(b))
	}
	if f.Text == nil {
		return false
	}
	return strings.ToLower(f.Text(a)) < strings.ToLower(f.Text(b))
}
