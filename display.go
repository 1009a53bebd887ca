package sidebar

import "errors"

// DisplaySlot identifies where on the client screen an objective is shown.
//
// DisplaySlot is a string type so that slot names read naturally in logs
// and JSON. Only [SlotSidebar] is used by [Table]; hosts may define more.
type DisplaySlot string

const (
	// SlotSidebar is the panel drawn on the right-hand side of the screen.
	SlotSidebar DisplaySlot = "sidebar"

	// SlotList is the player list slot. It is never bound by [Table].
	SlotList DisplaySlot = "list"

	// SlotBelowName is the slot rendered under player names. It is never bound by [Table].
	SlotBelowName DisplaySlot = "below_name"
)

// String returns the string representation of the slot.
func (s DisplaySlot) String() string {
	return string(s)
}

// ErrSurfaceUnavailable indicates the presentation host has not exposed its
// display subsystem yet. [Table] never returns it to callers; it is logged
// when [Table.Init] fails and is available to [Provider] implementations
// that want to report the condition.
var ErrSurfaceUnavailable = errors.New("display surface unavailable")

// Provider hands out the host's main display surface.
//
// MainSurface reports false while the host is still bootstrapping. A
// [Table] asks again on every call until it succeeds, so a provider may
// become ready at any point during the process lifetime.
type Provider interface {
	MainSurface() (Surface, bool)
}

// ProviderFunc adapts an ordinary function to the [Provider] interface.
type ProviderFunc func() (Surface, bool)

// MainSurface calls f().
func (f ProviderFunc) MainSurface() (Surface, bool) {
	return f()
}

// Surface is the host's scoreboard: a registry of objectives plus the score
// rows they hold. It is a process-wide resource shared with anything else
// running inside the host.
type Surface interface {
	// RegisterObjective creates a new objective. Hosts typically reject an
	// id that is already registered.
	RegisterObjective(id, criteria string) (Objective, error)

	// Objective looks up a registered objective by id.
	Objective(id string) (Objective, bool)

	// ResetScore removes every score row held for entry, across all objectives.
	ResetScore(entry string)

	// ClearSlot unbinds whatever objective is shown in slot.
	ClearSlot(slot DisplaySlot)
}

// Objective is a single titled set of score rows on a [Surface].
type Objective interface {
	// Unregister removes the objective and its rows from the surface.
	Unregister()

	// SetDisplayName sets the title shown above the rows.
	SetDisplayName(name string)

	// SetDisplaySlot binds the objective to slot.
	SetDisplaySlot(slot DisplaySlot)

	// Score returns the row handle for entry. Calling Score does not create
	// a row; setting a value does.
	Score(entry string) Score
}

// Score is a handle on one entry's row within an [Objective].
type Score interface {
	Set(value int32)
	Value() int32
}

// Item is one named row tracked by a [Table].
type Item struct {
	Name  string `json:"name"`
	Score int32  `json:"score"`
}
