package actionlock

import "sync"

// Coordinator serializes mutating roster actions: at most one mutation is in
// flight at any time, tracked by the id of the record being mutated. The
// locked row shows a busy indicator, every other row is merely disabled.
type Coordinator struct {
	mu       sync.Mutex
	locked   bool
	lockedID string
}

func New() *Coordinator {
	return &Coordinator{}
}

// Begin grants the lock only when no action is in flight. A rejected call is
// not queued; the caller must surface a "please wait" notice and retry after
// the current action completes.
func (c *Coordinator) Begin(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return false
	}
	c.locked = true
	c.lockedID = id
	return true
}

// End releases the lock. It must run on every exit path of an admitted
// action; releasing an unheld lock is a no-op.
func (c *Coordinator) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = false
	c.lockedID = ""
}

// IsDisabled reports whether the row's controls should be inert: an action
// is in flight and it belongs to a different row.
func (c *Coordinator) IsDisabled(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked && c.lockedID != id
}

// IsBusy reports whether this row owns the in-flight action.
func (c *Coordinator) IsBusy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked && c.lockedID == id
}

func (c *Coordinator) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

func (c *Coordinator) LockedID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lockedID, c.locked
}
