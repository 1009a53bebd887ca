package sidebar

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"
)

const (
	// MaxNameLength is the longest item name, in characters, a host accepts
	// for a score row.
	MaxNameLength = 16

	// MaxTitleLength is the longest objective display name, in characters.
	MaxTitleLength = 32

	// DefaultObjectiveName is the identifier the sidebar objective is
	// registered under unless [WithObjectiveName] overrides it.
	DefaultObjectiveName = "simplesidebar"
)

// Table manages the items shown on the sidebar and mirrors every change onto
// the host's display surface.
//
// A Table starts uninitialized and acquires the surface lazily on the first
// call that needs it. If the host is not ready yet, the call is a silent
// no-op (or returns zero) and the next call tries again:
//
//	tbl, err := sidebar.New(host)
//	if err != nil {
//	    return err
//	}
//	tbl.SetTitle("Stats")
//	tbl.SetScore("Alice", 5)
//	tbl.AddScore("Alice", 3) // Alice is now 8
//
// Table is not safe for concurrent use. The host is expected to serialize
// command dispatch and lifecycle hooks into it.
//
// Name and title lengths are not re-checked here; callers validate against
// [MaxNameLength] and [MaxTitleLength] before calling in.
type Table struct {
	provider    Provider
	objectiveID string
	criteria    string
	logger      *slog.Logger

	surface     Surface
	objective   Objective
	title       string
	items       []string
	tracked     map[string]struct{}
	initialized bool
}

// New creates a [Table] bound to provider. The surface is not touched until
// the first call that needs it.
//
// Returns an error if provider is nil or any option is invalid.
func New(provider Provider, opts ...Option) (*Table, error) {
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}

	cfg := &tableConfig{
		objectiveID: DefaultObjectiveName,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Table{
		provider:    provider,
		objectiveID: cfg.objectiveID,
		criteria:    cfg.criteria,
		logger:      logger,
	}, nil
}

// Init acquires the main surface and registers the sidebar objective.
//
// Init is idempotent: once it has succeeded, further calls return true
// without touching the surface. It returns false with no side effects when
// the provider has no surface yet or registration fails.
//
// Any objective already registered under the same identifier is unregistered
// first, which reclaims the slot after an unclean shutdown.
func (t *Table) Init() bool {
	if t.initialized {
		return true
	}
	if err := t.acquire(); err != nil {
		if errors.Is(err, ErrSurfaceUnavailable) {
			t.logger.Debug("sidebar init deferred", "error", err)
		} else {
			t.logger.Warn("sidebar init failed", "objective", t.objectiveID, "error", err)
		}
		return false
	}
	return true
}

func (t *Table) acquire() error {
	surface, ok := t.provider.MainSurface()
	if !ok || surface == nil {
		return ErrSurfaceUnavailable
	}

	if stale, ok := surface.Objective(t.objectiveID); ok {
		t.logger.Info("unregistering stale sidebar objective", "objective", t.objectiveID)
		stale.Unregister()
	}

	objective, err := surface.RegisterObjective(t.objectiveID, t.criteria)
	if err != nil {
		return fmt.Errorf("register objective %q: %w", t.objectiveID, err)
	}
	objective.SetDisplayName("")
	objective.SetDisplaySlot(SlotSidebar)

	t.surface = surface
	t.objective = objective
	t.title = ""
	t.items = []string{}
	t.tracked = make(map[string]struct{})
	t.initialized = true

	t.logger.Info("sidebar initialized", "objective", t.objectiveID)
	return nil
}

// Initialized reports whether the surface is currently held. It never
// triggers initialization.
func (t *Table) Initialized() bool {
	return t.initialized
}

// Unregister tears the sidebar down: every row is zeroed and reset, the
// objective is unregistered and the sidebar slot is cleared. A later call
// that needs the surface starts again from scratch.
//
// Unregister is a no-op when the table is not initialized, so it is safe to
// call repeatedly and from shutdown hooks.
func (t *Table) Unregister() {
	if !t.initialized {
		return
	}

	for _, name := range t.items {
		t.objective.Score(name).Set(0)
		t.surface.ResetScore(name)
	}

	t.objective.Unregister()
	t.surface.ClearSlot(SlotSidebar)

	count := len(t.items)
	t.surface = nil
	t.objective = nil
	t.title = ""
	t.items = nil
	t.tracked = nil
	t.initialized = false

	t.logger.Info("sidebar unregistered", "objective", t.objectiveID, "items", count)
}

// SetTitle sets the text shown above the rows. It must be at most
// [MaxTitleLength] characters.
func (t *Table) SetTitle(title string) {
	if !t.Init() {
		return
	}
	t.objective.SetDisplayName(title)
	t.title = title
	t.logger.Debug("sidebar title set", "title", title)
}

// Title returns the current title, or "" if the table is not initialized.
func (t *Table) Title() string {
	if !t.Init() {
		return ""
	}
	return t.title
}

// SetScore sets the score of name, adding the item to the end of the list
// if it is not tracked yet. name must be at most [MaxNameLength] characters.
//
// Hosts hide the sidebar entirely while every row is 0, so setting all items
// to 0 makes the panel disappear until some score changes again.
func (t *Table) SetScore(name string, point int32) {
	if !t.Init() {
		return
	}
	if _, ok := t.tracked[name]; !ok {
		t.items = append(t.items, name)
		t.tracked[name] = struct{}{}
	}
	t.objective.Score(name).Set(point)
	t.logger.Debug("sidebar score set", "name", name, "score", point)
}

// Score returns the score of name, or 0 if it is not tracked or the table
// cannot be initialized.
func (t *Table) Score(name string) int32 {
	if !t.Init() {
		return 0
	}
	if _, ok := t.tracked[name]; !ok {
		return 0
	}
	return t.objective.Score(name).Value()
}

// AddScore adds amount to the score of name, creating the item if needed.
// The sum uses int32 arithmetic and wraps around on overflow.
func (t *Table) AddScore(name string, amount int32) {
	t.SetScore(name, t.Score(name)+amount)
}

// RemoveScore drops name from the sidebar. The row is set to 0 before being
// reset so hosts that keep a reset row around never show a stale value.
// Unknown names are ignored.
func (t *Table) RemoveScore(name string) {
	if !t.Init() {
		return
	}
	if _, ok := t.tracked[name]; !ok {
		return
	}

	t.objective.Score(name).Set(0)
	t.surface.ResetScore(name)

	t.items = slices.DeleteFunc(t.items, func(n string) bool { return n == name })
	delete(t.tracked, name)
	t.logger.Debug("sidebar score removed", "name", name)
}

// Clear removes every item but keeps the title and the objective
// registration, unlike [Table.Unregister].
func (t *Table) Clear() {
	if !t.Init() {
		return
	}
	for _, name := range t.items {
		t.objective.Score(name).Set(0)
		t.surface.ResetScore(name)
	}
	count := len(t.items)
	t.items = []string{}
	t.tracked = make(map[string]struct{})
	t.logger.Info("sidebar cleared", "objective", t.objectiveID, "items", count)
}

// Items returns the tracked items in insertion order with their current
// scores. The returned slice is a copy.
func (t *Table) Items() []Item {
	if !t.Init() {
		return nil
	}
	items := make([]Item, len(t.items))
	for i, name := range t.items {
		items[i] = Item{Name: name, Score: t.objective.Score(name).Value()}
	}
	return items
}

// Len returns the number of tracked items.
func (t *Table) Len() int {
	if !t.Init() {
		return 0
	}
	return len(t.items)
}

// ValidName reports whether name fits in a score row.
func ValidName(name string) bool {
	return utf8.RuneCountInString(name) <= MaxNameLength
}

// ValidTitle reports whether title fits in the objective display name.
func ValidTitle(title string) bool {
	return utf8.RuneCountInString(title) <= MaxTitleLength
}
