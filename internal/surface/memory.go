package surface

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jpalmerr/sidebar"
)

// ErrObjectiveExists is returned by [Memory.RegisterObjective] when the id
// is already registered.
var ErrObjectiveExists = errors.New("objective already registered")

// subscriberBuffer is the channel buffer size handed to each subscriber.
const subscriberBuffer = 100

// objectiveState is the host-side record of a registered objective.
type objectiveState struct {
	id          string
	criteria    string
	displayName string
	rows        map[string]int32
	registered  bool
}

// Memory is an in-memory scoreboard implementing [sidebar.Provider] and
// [sidebar.Surface].
//
// A new Memory is not ready: [Memory.MainSurface] reports false until
// [Memory.SetReady] is called, mirroring a host that is still bootstrapping.
//
// Every mutation publishes the sidebar slot's [Panel] to subscribers.
// Handles returned for unregistered objectives become inert.
type Memory struct {
	mu         sync.RWMutex
	ready      bool
	objectives map[string]*objectiveState
	slots      map[sidebar.DisplaySlot]string

	subscribers map[chan Panel]struct{}
	subMu       sync.RWMutex
}

// NewMemory creates an empty, not yet ready, scoreboard.
func NewMemory() *Memory {
	return &Memory{
		objectives:  make(map[string]*objectiveState),
		slots:       make(map[sidebar.DisplaySlot]string),
		subscribers: make(map[chan Panel]struct{}),
	}
}

// SetReady marks the scoreboard as available (or not) to [Memory.MainSurface].
func (m *Memory) SetReady(ready bool) {
	m.mu.Lock()
	m.ready = ready
	m.mu.Unlock()
}

// MainSurface implements [sidebar.Provider].
func (m *Memory) MainSurface() (sidebar.Surface, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, false
	}
	return m, true
}

// RegisterObjective implements [sidebar.Surface].
func (m *Memory) RegisterObjective(id, criteria string) (sidebar.Objective, error) {
	m.mu.Lock()
	if _, exists := m.objectives[id]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrObjectiveExists, id)
	}
	st := &objectiveState{
		id:         id,
		criteria:   criteria,
		rows:       make(map[string]int32),
		registered: true,
	}
	m.objectives[id] = st
	m.mu.Unlock()

	m.publish()
	return &objective{m: m, st: st}, nil
}

// Objective implements [sidebar.Surface].
func (m *Memory) Objective(id string) (sidebar.Objective, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.objectives[id]
	if !ok {
		return nil, false
	}
	return &objective{m: m, st: st}, true
}

// ResetScore implements [sidebar.Surface].
func (m *Memory) ResetScore(entry string) {
	m.mu.Lock()
	for _, st := range m.objectives {
		delete(st.rows, entry)
	}
	m.mu.Unlock()

	m.publish()
}

// ClearSlot implements [sidebar.Surface].
func (m *Memory) ClearSlot(slot sidebar.DisplaySlot) {
	m.mu.Lock()
	delete(m.slots, slot)
	m.mu.Unlock()

	m.publish()
}

// Objectives returns the ids of all registered objectives, sorted.
func (m *Memory) Objectives() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.objectives))
	for id := range m.objectives {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Entries returns every entry holding a row in any objective, sorted.
func (m *Memory) Entries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, st := range m.objectives {
		for entry := range st.rows {
			seen[entry] = struct{}{}
		}
	}
	entries := make([]string, 0, len(seen))
	for entry := range seen {
		entries = append(entries, entry)
	}
	slices.Sort(entries)
	return entries
}

// Panel renders what a client sees in slot.
func (m *Memory) Panel(slot sidebar.DisplaySlot) Panel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := Panel{Slot: slot.String(), Rows: []Row{}}
	id, ok := m.slots[slot]
	if !ok {
		return p
	}
	st, ok := m.objectives[id]
	if !ok {
		return p
	}

	p.Objective = st.id
	p.Title = st.displayName
	for name, score := range st.rows {
		p.Rows = append(p.Rows, Row{Name: name, Score: score})
	}
	sortRows(p.Rows)
	p.Visible = anyNonZero(p.Rows)
	return p
}

// Subscribe creates a new subscription and returns a channel for receiving
// sidebar panels.
//
// The returned channel has a buffer of 100 panels. If the buffer fills
// (slow consumer), new panels are dropped for this subscriber.
//
// Caller must call [Memory.Unsubscribe] when done to prevent resource leaks.
func (m *Memory) Subscribe() <-chan Panel {
	ch := make(chan Panel, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *Memory) Unsubscribe(ch <-chan Panel) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// publish sends the current sidebar panel to all subscribers without blocking.
func (m *Memory) publish() {
	p := m.Panel(sidebar.SlotSidebar)

	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- p:
		default:
			// subscriber is slow, drop the panel
		}
	}
}

// objective is the [sidebar.Objective] handle handed out by Memory.
type objective struct {
	m  *Memory
	st *objectiveState
}

func (o *objective) Unregister() {
	o.m.mu.Lock()
	if !o.st.registered {
		o.m.mu.Unlock()
		return
	}
	o.st.registered = false
	o.st.rows = make(map[string]int32)
	if cur, ok := o.m.objectives[o.st.id]; ok && cur == o.st {
		delete(o.m.objectives, o.st.id)
	}
	for slot, id := range o.m.slots {
		if id == o.st.id {
			delete(o.m.slots, slot)
		}
	}
	o.m.mu.Unlock()

	o.m.publish()
}

func (o *objective) SetDisplayName(name string) {
	o.m.mu.Lock()
	if !o.st.registered {
		o.m.mu.Unlock()
		return
	}
	o.st.displayName = name
	o.m.mu.Unlock()

	o.m.publish()
}

func (o *objective) SetDisplaySlot(slot sidebar.DisplaySlot) {
	o.m.mu.Lock()
	if !o.st.registered {
		o.m.mu.Unlock()
		return
	}
	o.m.slots[slot] = o.st.id
	o.m.mu.Unlock()

	o.m.publish()
}

func (o *objective) Score(entry string) sidebar.Score {
	return &score{o: o, entry: entry}
}

// score is the [sidebar.Score] handle for one entry of one objective.
type score struct {
	o     *objective
	entry string
}

func (s *score) Set(value int32) {
	m := s.o.m
	m.mu.Lock()
	if !s.o.st.registered {
		m.mu.Unlock()
		return
	}
	s.o.st.rows[s.entry] = value
	m.mu.Unlock()

	m.publish()
}

func (s *score) Value() int32 {
	m := s.o.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	return s.o.st.rows[s.entry]
}
