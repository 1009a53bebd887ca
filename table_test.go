package sidebar

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSurface is a minimal scoreboard that records every call made on it.
type fakeSurface struct {
	ready       bool
	registerErr error
	objectives  map[string]*fakeObjective
	slots       map[DisplaySlot]string
	calls       []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		ready:      true,
		objectives: make(map[string]*fakeObjective),
		slots:      make(map[DisplaySlot]string),
	}
}

func (f *fakeSurface) MainSurface() (Surface, bool) {
	if !f.ready {
		return nil, false
	}
	return f, true
}

func (f *fakeSurface) RegisterObjective(id, criteria string) (Objective, error) {
	f.calls = append(f.calls, "register "+id)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if _, ok := f.objectives[id]; ok {
		return nil, fmt.Errorf("objective %q exists", id)
	}
	o := &fakeObjective{f: f, id: id, rows: make(map[string]int32)}
	f.objectives[id] = o
	return o, nil
}

func (f *fakeSurface) Objective(id string) (Objective, bool) {
	o, ok := f.objectives[id]
	if !ok {
		return nil, false
	}
	return o, true
}

func (f *fakeSurface) ResetScore(entry string) {
	f.calls = append(f.calls, "reset "+entry)
	for _, o := range f.objectives {
		delete(o.rows, entry)
	}
}

func (f *fakeSurface) ClearSlot(slot DisplaySlot) {
	f.calls = append(f.calls, "clear "+slot.String())
	delete(f.slots, slot)
}

// rowCount returns the number of rows held across all objectives.
func (f *fakeSurface) rowCount() int {
	n := 0
	for _, o := range f.objectives {
		n += len(o.rows)
	}
	return n
}

type fakeObjective struct {
	f     *fakeSurface
	id    string
	title string
	rows  map[string]int32
}

func (o *fakeObjective) Unregister() {
	o.f.calls = append(o.f.calls, "unregister "+o.id)
	delete(o.f.objectives, o.id)
}

func (o *fakeObjective) SetDisplayName(name string) {
	o.f.calls = append(o.f.calls, "title "+name)
	o.title = name
}

func (o *fakeObjective) SetDisplaySlot(slot DisplaySlot) {
	o.f.calls = append(o.f.calls, "slot "+slot.String())
	o.f.slots[slot] = o.id
}

func (o *fakeObjective) Score(entry string) Score {
	return &fakeScore{o: o, entry: entry}
}

type fakeScore struct {
	o     *fakeObjective
	entry string
}

func (s *fakeScore) Set(value int32) {
	s.o.f.calls = append(s.o.f.calls, fmt.Sprintf("set %s=%d", s.entry, value))
	s.o.rows[s.entry] = value
}

func (s *fakeScore) Value() int32 {
	return s.o.rows[s.entry]
}

func newTestTable(t *testing.T, f *fakeSurface) *Table {
	t.Helper()
	tbl, err := New(f, WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tbl
}

func TestNew_NilProvider(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) error = nil, want error")
	}
}

func TestNew_DoesNotTouchSurface(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	if tbl.Initialized() {
		t.Error("Initialized() = true before first call, want false")
	}
	if len(f.calls) != 0 {
		t.Errorf("surface calls = %v, want none", f.calls)
	}
}

func TestInit_Sequence(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	if !tbl.Init() {
		t.Fatal("Init() = false, want true")
	}

	want := []string{"register simplesidebar", "title ", "slot sidebar"}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
	if f.slots[SlotSidebar] != DefaultObjectiveName {
		t.Errorf("sidebar slot = %q, want %q", f.slots[SlotSidebar], DefaultObjectiveName)
	}
}

func TestInit_Idempotent(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	for i := 0; i < 5; i++ {
		if !tbl.Init() {
			t.Fatalf("Init() call %d = false, want true", i+1)
		}
	}

	if len(f.calls) != 3 {
		t.Errorf("surface calls = %v, want a single initialization", f.calls)
	}
	if len(f.objectives) != 1 {
		t.Errorf("objectives = %d, want 1", len(f.objectives))
	}
}

func TestInit_SurfaceUnavailable(t *testing.T) {
	f := newFakeSurface()
	f.ready = false
	tbl := newTestTable(t, f)

	if tbl.Init() {
		t.Fatal("Init() = true with unavailable surface, want false")
	}
	if tbl.Initialized() {
		t.Error("Initialized() = true after failed Init")
	}

	// every operation degrades to a no-op
	tbl.SetTitle("Stats")
	tbl.SetScore("Alice", 5)
	tbl.AddScore("Alice", 3)
	tbl.RemoveScore("Alice")
	tbl.Clear()
	tbl.Unregister()

	if got := tbl.Score("Alice"); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
	if got := tbl.Items(); got != nil {
		t.Errorf("Items() = %v, want nil", got)
	}
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if got := tbl.Title(); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
	if len(f.calls) != 0 {
		t.Errorf("surface calls = %v, want none", f.calls)
	}
}

func TestInit_BecomesReadyLater(t *testing.T) {
	f := newFakeSurface()
	f.ready = false
	tbl := newTestTable(t, f)

	tbl.SetScore("Alice", 5)
	f.ready = true
	tbl.SetScore("Alice", 7)

	if got := tbl.Score("Alice"); got != 7 {
		t.Errorf("Score() = %d, want 7", got)
	}
	if got := tbl.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestInit_RegisterError(t *testing.T) {
	f := newFakeSurface()
	f.registerErr = errors.New("host refused")
	tbl := newTestTable(t, f)

	if tbl.Init() {
		t.Fatal("Init() = true with failing registration, want false")
	}
	if tbl.Initialized() {
		t.Error("Initialized() = true after failed registration")
	}

	f.registerErr = nil
	if !tbl.Init() {
		t.Error("Init() = false after registration recovers, want true")
	}
}

func TestInit_ReclaimsStaleObjective(t *testing.T) {
	f := newFakeSurface()
	stale, _ := f.RegisterObjective(DefaultObjectiveName, "")
	stale.Score("Ghost").Set(4)
	f.calls = nil

	tbl := newTestTable(t, f)
	if !tbl.Init() {
		t.Fatal("Init() = false, want true")
	}

	want := []string{
		"unregister simplesidebar",
		"register simplesidebar",
		"title ",
		"slot sidebar",
	}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Score("Ghost"); got != 0 {
		t.Errorf("Score(Ghost) = %d, want 0", got)
	}
}

func TestWithObjectiveName(t *testing.T) {
	f := newFakeSurface()
	tbl, err := New(f, WithObjectiveName("arena"), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tbl.Init()
	if _, ok := f.objectives["arena"]; !ok {
		t.Errorf("objectives = %v, want arena registered", f.objectives)
	}
}

func TestSetScore_GetScore(t *testing.T) {
	tests := []struct {
		name  string
		item  string
		point int32
	}{
		{"positive", "Alice", 5},
		{"zero", "Bob", 0},
		{"negative", "Carol", -42},
		{"max", "Max", math.MaxInt32},
		{"min", "Min", math.MinInt32},
		{"sixteen chars", "abcdefghijklmnop", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(t, newFakeSurface())
			tbl.SetScore(tt.item, tt.point)
			if got := tbl.Score(tt.item); got != tt.point {
				t.Errorf("Score(%q) = %d, want %d", tt.item, got, tt.point)
			}
		})
	}
}

func TestScore_Untracked(t *testing.T) {
	tbl := newTestTable(t, newFakeSurface())

	if got := tbl.Score("nobody"); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len() = %d after read, want 0", got)
	}
}

func TestSetScore_Idempotent(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.SetScore("Alice", 5)
	tbl.SetScore("Alice", 5)
	tbl.SetScore("Alice", 5)

	want := []Item{{Name: "Alice", Score: 5}}
	if diff := cmp.Diff(want, tbl.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
	if f.rowCount() != 1 {
		t.Errorf("surface rows = %d, want 1", f.rowCount())
	}
}

func TestSetScore_KeepsInsertionOrder(t *testing.T) {
	tbl := newTestTable(t, newFakeSurface())

	tbl.SetScore("Carol", 1)
	tbl.SetScore("Alice", 9)
	tbl.SetScore("Bob", 4)
	tbl.SetScore("Carol", 2)

	want := []Item{
		{Name: "Carol", Score: 2},
		{Name: "Alice", Score: 9},
		{Name: "Bob", Score: 4},
	}
	if diff := cmp.Diff(want, tbl.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddScore(t *testing.T) {
	tests := []struct {
		name    string
		amounts []int32
		want    int32
	}{
		{"from nothing", []int32{3}, 3},
		{"two adds", []int32{5, 3}, 8},
		{"negative", []int32{5, -8}, -3},
		{"zero amount creates item", []int32{0}, 0},
		{"overflow wraps", []int32{math.MaxInt32, 1}, math.MinInt32},
		{"underflow wraps", []int32{math.MinInt32, -1}, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(t, newFakeSurface())
			for _, a := range tt.amounts {
				tbl.AddScore("Alice", a)
			}
			if got := tbl.Score("Alice"); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
			if got := tbl.Len(); got != 1 {
				t.Errorf("Len() = %d, want 1", got)
			}
		})
	}
}

func TestRemoveScore_ZeroThenReset(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.SetScore("Alice", 5)
	f.calls = nil
	tbl.RemoveScore("Alice")

	want := []string{"set Alice=0", "reset Alice"}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Score("Alice"); got != 0 {
		t.Errorf("Score() after remove = %d, want 0", got)
	}
	if got := tbl.Items(); len(got) != 0 {
		t.Errorf("Items() after remove = %v, want empty", got)
	}
	if f.rowCount() != 0 {
		t.Errorf("surface rows = %d, want 0", f.rowCount())
	}
}

func TestRemoveScore_Untracked(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)
	tbl.Init()
	f.calls = nil

	tbl.RemoveScore("nobody")

	if len(f.calls) != 0 {
		t.Errorf("surface calls = %v, want none", f.calls)
	}
}

func TestRemoveScore_KeepsOtherItems(t *testing.T) {
	tbl := newTestTable(t, newFakeSurface())

	tbl.SetScore("Alice", 1)
	tbl.SetScore("Bob", 2)
	tbl.SetScore("Carol", 3)
	tbl.RemoveScore("Bob")

	want := []Item{{Name: "Alice", Score: 1}, {Name: "Carol", Score: 3}}
	if diff := cmp.Diff(want, tbl.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnregister_Teardown(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.SetTitle("Stats")
	tbl.SetScore("Alice", 5)
	tbl.SetScore("Bob", 2)
	f.calls = nil

	tbl.Unregister()

	want := []string{
		"set Alice=0",
		"reset Alice",
		"set Bob=0",
		"reset Bob",
		"unregister simplesidebar",
		"clear sidebar",
	}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
	if tbl.Initialized() {
		t.Error("Initialized() = true after Unregister")
	}
	if len(f.objectives) != 0 {
		t.Errorf("objectives = %d, want 0", len(f.objectives))
	}
	if _, ok := f.slots[SlotSidebar]; ok {
		t.Error("sidebar slot still bound after Unregister")
	}
}

func TestUnregister_NotInitialized(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.Unregister()
	tbl.Unregister()

	if len(f.calls) != 0 {
		t.Errorf("surface calls = %v, want none", f.calls)
	}
}

func TestUnregister_Twice(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)
	tbl.SetScore("Alice", 1)

	tbl.Unregister()
	n := len(f.calls)
	tbl.Unregister()

	if len(f.calls) != n {
		t.Errorf("second Unregister made calls: %v", f.calls[n:])
	}
}

func TestUnregister_ReinitIsFresh(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.SetTitle("Stats")
	tbl.SetScore("Alice", 5)
	tbl.Unregister()

	if got := tbl.Score("Alice"); got != 0 {
		t.Errorf("Score() after Unregister = %d, want 0", got)
	}
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len() after re-init = %d, want 0", got)
	}
	if got := tbl.Title(); got != "" {
		t.Errorf("Title() after re-init = %q, want empty", got)
	}

	tbl.SetScore("Bob", 1)
	want := []Item{{Name: "Bob", Score: 1}}
	if diff := cmp.Diff(want, tbl.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetTitle(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.SetTitle("Stats")

	if got := tbl.Title(); got != "Stats" {
		t.Errorf("Title() = %q, want %q", got, "Stats")
	}
	if got := f.objectives[DefaultObjectiveName].title; got != "Stats" {
		t.Errorf("surface display name = %q, want %q", got, "Stats")
	}
}

func TestClear_KeepsRegistration(t *testing.T) {
	f := newFakeSurface()
	tbl := newTestTable(t, f)

	tbl.SetTitle("Stats")
	tbl.SetScore("Alice", 5)
	tbl.SetScore("Bob", 2)
	f.calls = nil

	tbl.Clear()

	want := []string{"set Alice=0", "reset Alice", "set Bob=0", "reset Bob"}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
	if !tbl.Initialized() {
		t.Error("Initialized() = false after Clear, want true")
	}
	if got := tbl.Title(); got != "Stats" {
		t.Errorf("Title() = %q, want %q", got, "Stats")
	}
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}

	tbl.SetScore("Alice", 1)
	if got := tbl.Score("Alice"); got != 1 {
		t.Errorf("Score() after Clear = %d, want 1", got)
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	tbl := newTestTable(t, newFakeSurface())
	tbl.SetScore("Alice", 5)

	items := tbl.Items()
	items[0].Name = "Mallory"
	items[0].Score = 99

	if got := tbl.Score("Alice"); got != 5 {
		t.Errorf("Score() = %d after mutating snapshot, want 5", got)
	}
}

func TestScenario(t *testing.T) {
	tbl := newTestTable(t, newFakeSurface())

	tbl.SetTitle("Stats")
	tbl.SetScore("Alice", 5)
	tbl.AddScore("Alice", 3)
	if got := tbl.Score("Alice"); got != 8 {
		t.Fatalf("Score(Alice) = %d, want 8", got)
	}

	tbl.RemoveScore("Alice")
	if got := tbl.Score("Alice"); got != 0 {
		t.Fatalf("Score(Alice) after remove = %d, want 0", got)
	}

	tbl.Unregister()
	if !tbl.Init() {
		t.Fatal("Init() after Unregister = false, want true")
	}
	if got := tbl.Score("Alice"); got != 0 {
		t.Errorf("Score(Alice) after re-init = %d, want 0", got)
	}
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len() after re-init = %d, want 0", got)
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", true},
		{"sixteen", "abcdefghijklmnop", true},
		{"seventeen", "abcdefghijklmnopq", false},
		{"multibyte sixteen", "ééééééééééééééé§", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidName(tt.in); got != tt.want {
				t.Errorf("ValidName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidTitle(t *testing.T) {
	if !ValidTitle("abcdefghijklmnopqrstuvwxyz012345") {
		t.Error("ValidTitle(32 chars) = false, want true")
	}
	if ValidTitle("abcdefghijklmnopqrstuvwxyz0123456") {
		t.Error("ValidTitle(33 chars) = true, want false")
	}
}
