package preview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingAllocator struct {
	acquired int
	releases int
}

func (a *countingAllocator) Acquire(f File) (string, func() error, error) {
	a.acquired++
	return fmt.Sprintf("local://%s/%d", f.Name, a.acquired), func() error {
		a.releases++
		return nil
	}, nil
}

func TestSequentialSelectionsReleaseExactlyOnce(t *testing.T) {
	alloc := &countingAllocator{}
	m := NewManager(alloc)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := m.SetFromFile(File{Name: "avatar.png", Content: []byte{1}})
		require.NoError(t, err)
	}
	m.Clear()

	require.Equal(t, n, alloc.acquired)
	require.Equal(t, n, alloc.releases, "every local handle released exactly once")

	// Further clears must not double-free.
	m.Clear()
	m.Clear()
	require.Equal(t, n, alloc.releases)
}

func TestRemoteHandlesNeedNoRelease(t *testing.T) {
	alloc := &countingAllocator{}
	m := NewManager(alloc)

	h := m.SetFromURL("https://files.example/avatars/7.png")
	require.False(t, h.IsLocal())
	require.Equal(t, "https://files.example/avatars/7.png", h.URL())

	m.Clear()
	require.Equal(t, 0, alloc.releases)
}

func TestRemoteSelectionReleasesPriorLocalHandle(t *testing.T) {
	alloc := &countingAllocator{}
	m := NewManager(alloc)

	_, err := m.SetFromFile(File{Name: "avatar.png"})
	require.NoError(t, err)
	m.SetFromURL("https://files.example/avatars/7.png")

	require.Equal(t, 1, alloc.releases)
	require.NotNil(t, m.Current())
}

func TestHandlesCarryDistinctIDs(t *testing.T) {
	alloc := &countingAllocator{}
	m := NewManager(alloc)

	a, err := m.SetFromFile(File{Name: "a.png"})
	require.NoError(t, err)
	b, err := m.SetFromFile(File{Name: "b.png"})
	require.NoError(t, err)

	require.NotEmpty(t, a.ID())
	require.NotEmpty(t, b.ID())
	require.NotEqual(t, a.ID(), b.ID(), "each handle is individually traceable")

	r := m.SetFromURL("https://files.example/c.png")
	require.NotEmpty(t, r.ID())
}

func TestTempFileAllocatorRoundTrip(t *testing.T) {
	alloc := TempFileAllocator{Dir: t.TempDir()}
	m := NewManager(alloc)

	h, err := m.SetFromFile(File{Name: "manifest.pdf", Content: []byte("payload")})
	require.NoError(t, err)
	require.True(t, h.IsLocal())
	require.Contains(t, h.URL(), "file://")

	m.Clear()
	require.Nil(t, m.Current())
}
