package tags

import (
	"context"
	"sync"
	"time"

	"filling_line/internal/models"
)

// Frame is one published reading of the address space.
type Frame struct {
	Version uint64    `json:"version"`
	At      time.Time `json:"at"`
	Values  Values    `json:"-"`
	// Changed lists the tags whose value differs from the previous frame.
	// The first frame reports every tag as changed.
	Changed []ID `json:"-"`
}

// Get returns the value of one tag.
func (f Frame) Get(id ID) Value {
	if id < 0 || id >= Count {
		return Value{}
	}
	return f.Values[id]
}

// Map returns every tag keyed by name.
func (f Frame) Map() map[string]Value {
	out := make(map[string]Value, Count)
	for id := ID(0); id < Count; id++ {
		out[id.Name()] = f.Values[id]
	}
	return out
}

// ChangedMap returns only the changed tags keyed by name.
func (f Frame) ChangedMap() map[string]Value {
	out := make(map[string]Value, len(f.Changed))
	for _, id := range f.Changed {
		out[id.Name()] = f.Values[id]
	}
	return out
}

// Publisher forwards frames to a transport. Implementations must not block
// for long; they run on the tick loop outside the machine lock.
type Publisher interface {
	Publish(ctx context.Context, f Frame) error
}

// AddressSpace holds the last published frame.
type AddressSpace struct {
	mu      sync.RWMutex
	current Frame
	started bool
}

func NewAddressSpace() *AddressSpace {
	return &AddressSpace{}
}

// Publish reads every tag from s, diffs it against the previous frame and
// stores the result as the current frame. A state older than the current
// frame is dropped and the current frame is returned with no changes.
func (a *AddressSpace) Publish(s models.MachineState) Frame {
	values := Read(s)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started && s.UpdatedAt.Before(a.current.At) {
		stale := a.current
		stale.Changed = nil
		return stale
	}

	var changed []ID
	if a.started {
		changed = Diff(&a.current.Values, &values)
	} else {
		changed = allIDs()
		a.started = true
	}

	a.current = Frame{
		Version: a.current.Version + 1,
		At:      s.UpdatedAt,
		Values:  values,
		Changed: changed,
	}
	return a.current
}

// Current returns the last published frame. Before the first Publish it is
// the zero Frame.
func (a *AddressSpace) Current() Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	f := a.current
	f.Changed = append([]ID(nil), a.current.Changed...)
	return f
}

// Diff lists the tags whose values differ between prev and next, in ID order.
func Diff(prev, next *Values) []ID {
	var out []ID
	for id := ID(0); id < Count; id++ {
		if !prev[id].Equal(next[id]) {
			out = append(out, id)
		}
	}
	return out
}

func allIDs() []ID {
	out := make([]ID, Count)
	for id := range out {
		out[id] = ID(id)
	}
	return out
}
