package preview

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File is a locally selected file awaiting upload.
type File struct {
	Name    string
	Content []byte
}

// Allocator materializes a local preview resource for a selected file and
// hands back the release that frees it.
type Allocator interface {
	Acquire(f File) (url string, release func() error, err error)
}

// Handle is a transient reference to preview content. Handles built from a
// remote URL carry no release; local handles must be released exactly once.
type Handle struct {
	id       uuid.UUID
	url      string
	local    bool
	release  func() error
	released bool
}

func (h *Handle) ID() string    { return h.id.String() }
func (h *Handle) URL() string   { return h.url }
func (h *Handle) IsLocal() bool { return h.local }

// Manager owns at most one live local preview handle for a single form
// draft. Selecting a new file, clearing the selection and destroying the
// owning draft are the three release triggers; each is idempotent.
type Manager struct {
	alloc   Allocator
	current *Handle
}

func NewManager(alloc Allocator) *Manager {
	return &Manager{alloc: alloc}
}

// SetFromFile releases the previously held local handle, then establishes a
// new one for the selected file.
func (m *Manager) SetFromFile(f File) (*Handle, error) {
	url, release, err := m.alloc.Acquire(f)
	if err != nil {
		return nil, err
	}
	m.Clear()
	m.current = &Handle{
		id:      uuid.New(),
		url:     url,
		local:   true,
		release: release,
	}
	return m.current, nil
}

// SetFromURL points the preview at an already stored remote resource. No
// release is required for the new handle; any held local handle is released
// first.
func (m *Manager) SetFromURL(url string) *Handle {
	m.Clear()
	m.current = &Handle{id: uuid.New(), url: url}
	return m.current
}

// Clear releases the current handle if it is local and forgets it. Clearing
// with no handle held is a no-op.
func (m *Manager) Clear() {
	h := m.current
	m.current = nil
	if h == nil || !h.local || h.released {
		return
	}
	h.released = true
	if h.release != nil {
		_ = h.release()
	}
}

func (m *Manager) Current() *Handle {
	return m.current
}

// TempFileAllocator backs previews with files under the OS temp directory.
type TempFileAllocator struct {
	Dir string
}

func (a TempFileAllocator) Acquire(f File) (string, func() error, error) {
	dir := a.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	tmp, err := os.CreateTemp(dir, "preview-*"+filepath.Ext(f.Name))
	if err != nil {
		return "", nil, err
	}
	if _, err := tmp.Write(f.Content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, err
	}
	name := tmp.Name()
	return "file://" + name, func() error { return os.Remove(name) }, nil
}
