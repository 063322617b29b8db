package main

import (
	"slices"
	"testing"
	"time"
)

// testHost records the events of a controller.
type testHost struct {
	focused     []string
	settled     []bool
	interacting []bool
	clicks      []Cell
}

func (h *testHost) events() Events {
	return Events{
		FocusedItemChange: func(item *Item) { h.focused = append(h.focused, itemID(item)) },
		SettledChange:     func(settled bool) { h.settled = append(h.settled, settled) },
		InteractingChange: func(busy bool) { h.interacting = append(h.interacting, busy) },
		TileClick:         func(t Tile) { h.clicks = append(h.clicks, t.Cell) },
	}
}

type controllerTest struct {
	ctl   *Controller
	tk    *Tweener
	clock *fakeClock
	host  *testHost
}

// newControllerTest returns a controller with n items on a 1200x800 viewport.
func newControllerTest(n int) *controllerTest {
	ct := &controllerTest{clock: newFakeClock(), host: &testHost{}}
	ct.tk = NewTweener(ct.clock.Now)
	ct.ctl = NewController(ct.tk, DefaultSettings(), ct.host.events())
	ct.ctl.SetItems(testItems(n))
	ct.ctl.Resize(1200, 800)
	return ct
}

// run ticks frames until no animation is left.
func (ct *controllerTest) run(t *testing.T) {
	t.Helper()
	for i := 0; ct.tk.Active(); i++ {
		if i > 1000 {
			t.Fatalf("Expected the animations to end")
		}
		ct.tk.Tick(ct.clock.Advance(frameInterval))
	}
}

func (ct *controllerTest) expectFocus(t *testing.T, cell Cell, id string) {
	t.Helper()
	f := ct.ctl.Focus()
	if f == nil || *f != cell {
		t.Errorf("Expected focus %v, got %v", cell, f)
	}
	if got := itemID(ct.ctl.FocusedItem()); got != id {
		t.Errorf("Expected focused item %s, got %s", id, got)
	}
}

func (ct *controllerTest) expectIdle(t *testing.T) {
	t.Helper()
	if ct.ctl.Mode() != Idle {
		t.Fatalf("Expected idle, got %v", ct.ctl.Mode())
	}
	f := ct.ctl.Focus()
	if f == nil {
		t.Fatalf("Expected a focus")
	}
	if ct.ctl.Position() != f.Vec() {
		t.Errorf("Expected position %v at rest, got %v", f.Vec(), ct.ctl.Position())
	}
	l := ct.ctl.Layout()
	if ct.ctl.Pan() != l.CenteringPan(f.Vec(), Size{1200, 800}) {
		t.Errorf("Expected the focused cell centered")
	}
}

func TestControllerInitialFocus(t *testing.T) {
	ct := newControllerTest(12)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{1, 3}, "p9")
	if !slices.Equal(ct.host.focused, []string{"p9"}) {
		t.Errorf("Expected one focus event for p9, got %v", ct.host.focused)
	}
	if !ct.ctl.Settled() {
		t.Errorf("Expected a settled canvas")
	}

	tile, ok := ct.ctl.Window().Nearest()
	if !ok || tile.Cell != (Cell{1, 3}) || !tile.Focused {
		t.Errorf("Expected the focused tile at the center, got %+v", tile)
	}
}

func TestControllerDragSnapsToNearestCell(t *testing.T) {
	tests := []struct {
		name     string
		dx       float64
		expected Cell
		id       string
	}{
		{"One stride left", -195, Cell{0, 1}, "p1"},
		{"Past half a stride left", -100, Cell{0, 1}, "p1"},
		{"Short of half a stride", -90, Cell{0, 0}, "p0"},
		{"One stride right", 195, Cell{0, -1}, "p11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := newControllerTest(12)
			ct.ctl.CenterOn(Cell{0, 0}, false)
			ct.expectFocus(t, Cell{0, 0}, "p0")

			t0 := ct.clock.Now()
			ct.ctl.PointerDown(1, Vec{600, 400}, t0)
			ct.ctl.PointerMove(1, Vec{600 + tt.dx, 400}, t0.Add(10*time.Millisecond))
			if ct.ctl.Mode() != Dragging {
				t.Fatalf("Expected dragging, got %v", ct.ctl.Mode())
			}
			ct.expectFocus(t, Cell{0, 0}, "p0")

			// released long after the last move: no velocity
			ct.ctl.PointerUp(1, Vec{600 + tt.dx, 400}, t0.Add(500*time.Millisecond))
			ct.run(t)
			ct.expectIdle(t)
			ct.expectFocus(t, tt.expected, tt.id)
		})
	}
}

func TestControllerDragInteractingEvents(t *testing.T) {
	ct := newControllerTest(12)
	t0 := ct.clock.Now()
	ct.ctl.PointerDown(1, Vec{600, 400}, t0)
	ct.ctl.PointerMove(1, Vec{400, 400}, t0.Add(10*time.Millisecond))
	ct.ctl.PointerUp(1, Vec{400, 400}, t0.Add(500*time.Millisecond))
	ct.run(t)

	if !slices.Equal(ct.host.interacting, []bool{true, false}) {
		t.Errorf("Expected interacting true then false, got %v", ct.host.interacting)
	}
	if !slices.Equal(ct.host.settled, []bool{false, true}) {
		t.Errorf("Expected settled false then true, got %v", ct.host.settled)
	}
}

func TestControllerReleaseOnCellSettlesAtOnce(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)
	t0 := ct.clock.Now()
	ct.ctl.PointerDown(1, Vec{600, 400}, t0)
	ct.ctl.PointerMove(1, Vec{405, 400}, t0.Add(10*time.Millisecond))
	ct.ctl.PointerUp(1, Vec{405, 400}, t0.Add(500*time.Millisecond))

	if ct.tk.Active() {
		t.Errorf("Expected no snap animation for a release on a cell")
	}
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{0, 1}, "p1")
	if !slices.Equal(ct.host.interacting, []bool{true, false}) {
		t.Errorf("Expected interacting true then false, got %v", ct.host.interacting)
	}
}

func TestControllerFlingCoasts(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)

	t0 := ct.clock.Now()
	ct.ctl.PointerDown(1, Vec{600, 400}, t0)
	ct.ctl.PointerMove(1, Vec{580, 400}, t0.Add(10*time.Millisecond))
	ct.ctl.PointerUp(1, Vec{580, 400}, t0.Add(20*time.Millisecond))
	if ct.ctl.Mode() != Animating {
		t.Fatalf("Expected animating, got %v", ct.ctl.Mode())
	}

	ct.tk.Tick(ct.clock.Advance(frameInterval))
	ct.expectFocus(t, Cell{0, 0}, "p0")

	ct.run(t)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{0, 3}, "p3")
}

func TestControllerClick(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)

	t0 := ct.clock.Now()
	ct.ctl.PointerDown(1, Vec{795, 400}, t0)
	ct.ctl.PointerUp(1, Vec{797, 401}, t0.Add(80*time.Millisecond))

	if !slices.Equal(ct.host.clicks, []Cell{{0, 1}}) {
		t.Errorf("Expected a click on (0,1), got %v", ct.host.clicks)
	}
	// the focus moves at once, the canvas follows
	ct.expectFocus(t, Cell{0, 1}, "p1")
	if ct.ctl.Mode() != Animating {
		t.Errorf("Expected animating, got %v", ct.ctl.Mode())
	}
	ct.run(t)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{0, 1}, "p1")
}

func TestControllerClickOnSpacing(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)
	ct.ctl.Click(Vec{692.5, 400})
	if len(ct.host.clicks) != 0 {
		t.Errorf("Expected no click between tiles, got %v", ct.host.clicks)
	}
	ct.expectIdle(t)
}

func TestControllerKeys(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)

	steps := []struct {
		dir      Direction
		expected Cell
		id       string
	}{
		{Right, Cell{0, 1}, "p1"},
		{Down, Cell{1, 1}, "p7"},
		{Left, Cell{1, 0}, "p6"},
		{Up, Cell{0, 0}, "p0"},
		{Up, Cell{-1, 0}, "p6"},
	}
	for _, s := range steps {
		ct.ctl.Key(s.dir)
		ct.expectFocus(t, s.expected, s.id)
		ct.run(t)
		ct.expectIdle(t)
		ct.expectFocus(t, s.expected, s.id)
	}
}

func TestControllerKeysRetarget(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)
	ct.ctl.Key(Right)
	ct.tk.Tick(ct.clock.Advance(frameInterval))
	ct.ctl.Key(Right)
	ct.expectFocus(t, Cell{0, 2}, "p2")
	ct.run(t)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{0, 2}, "p2")
}

func TestControllerKeysStayOnRenderedCells(t *testing.T) {
	ct := &controllerTest{clock: newFakeClock(), host: &testHost{}}
	ct.tk = NewTweener(ct.clock.Now)
	ct.ctl = NewController(ct.tk, DefaultSettings(), ct.host.events())
	ct.ctl.SetItems(testItems(12))
	// a single pixel viewport renders the focused cell and the cells after it
	ct.ctl.Resize(1, 1)

	start := *ct.ctl.Focus()
	ct.ctl.Key(Left)
	ct.ctl.Key(Up)
	if f := ct.ctl.Focus(); *f != start || ct.ctl.Mode() != Idle {
		t.Errorf("Expected the focus to stay on %v, got %v in %v", start, *f, ct.ctl.Mode())
	}
	ct.ctl.Key(Right)
	if f := ct.ctl.Focus(); *f != start.Add(0, 1) {
		t.Errorf("Expected the focus on %v, got %v", start.Add(0, 1), *f)
	}
}

func TestControllerWheel(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)
	ct.host.focused = nil

	ct.ctl.Wheel(Vec{0, 100})
	if ct.ctl.Mode() != Animating {
		t.Fatalf("Expected animating, got %v", ct.ctl.Mode())
	}
	// the focus changes when the wheel animation ends
	ct.tk.Tick(ct.clock.Advance(frameInterval))
	ct.expectFocus(t, Cell{0, 0}, "p0")
	ct.run(t)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{1, 0}, "p6")
	if !slices.Equal(ct.host.focused, []string{"p6"}) {
		t.Errorf("Expected one focus event, got %v", ct.host.focused)
	}
}

func TestControllerWheelAccumulates(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)

	for range 3 {
		ct.ctl.Wheel(Vec{0, 60})
		ct.tk.Tick(ct.clock.Advance(frameInterval))
	}
	ct.run(t)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{2, 0}, "p0")
}

func TestControllerPointerCancelsAnimation(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 0}, false)
	ct.ctl.Key(Right)
	ct.tk.Tick(ct.clock.Advance(frameInterval))

	ct.ctl.PointerDown(1, Vec{600, 400}, ct.clock.Now())
	pos := ct.ctl.Position()
	ct.tk.Tick(ct.clock.Advance(frameInterval))
	if ct.ctl.Position() != pos {
		t.Errorf("Expected the cancelled animation to leave the position alone")
	}
	if ct.ctl.Mode() != Dragging {
		t.Errorf("Expected dragging, got %v", ct.ctl.Mode())
	}
}

func TestControllerSetItemsKeepsFocusedItem(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 2}, false)
	ct.host.focused = nil

	items := testItems(12)
	slices.Reverse(items)
	ct.ctl.SetItems(items)
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{-1, 3}, "p2")
	if len(ct.host.focused) != 0 {
		t.Errorf("Expected no focus event for the same item, got %v", ct.host.focused)
	}

	ct.ctl.SetItems(testItems(5))
	ct.expectFocus(t, Cell{-1, 3}, "p2")

	// p2 is gone: back to the initial cell
	ct.ctl.SetItems(testItems(2))
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{0, 3}, "p1")
}

func TestControllerResizeKeepsFocusedItem(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{0, 4}, false)
	ct.ctl.Resize(500, 800)
	if ct.ctl.Layout().Columns != 5 {
		t.Fatalf("Expected 5 columns, got %d", ct.ctl.Layout().Columns)
	}
	if got := itemID(ct.ctl.FocusedItem()); got != "p4" {
		t.Errorf("Expected p4 after resize, got %s", got)
	}
}

func TestControllerEmptyItems(t *testing.T) {
	ct := newControllerTest(12)
	ct.host.focused = nil

	ct.ctl.SetItems(nil)
	ct.ctl.SetItems([]*Item{})
	if ct.ctl.Focus() != nil || ct.ctl.FocusedItem() != nil {
		t.Errorf("Expected no focus")
	}
	if !slices.Equal(ct.host.focused, []string{"<none>"}) {
		t.Errorf("Expected one nil focus event, got %v", ct.host.focused)
	}
	if !ct.ctl.Window().Empty() {
		t.Errorf("Expected an empty window")
	}

	ct.ctl.Key(Right)
	ct.ctl.Wheel(Vec{0, 100})
	ct.ctl.PointerDown(1, Vec{600, 400}, ct.clock.Now())
	ct.ctl.CenterOn(Cell{1, 1}, true)
	if ct.ctl.Mode() != Idle || ct.tk.Active() {
		t.Errorf("Expected input to be ignored, got %v", ct.ctl.Mode())
	}
}

func TestControllerEmptyItemsWhileAnimating(t *testing.T) {
	ct := newControllerTest(12)
	ct.ctl.CenterOn(Cell{1, 3}, false)
	ct.ctl.Key(Down)
	ct.tk.Tick(ct.clock.Advance(frameInterval))
	ct.expectFocus(t, Cell{2, 3}, "p3")
	if ct.ctl.Mode() != Animating || !ct.tk.Active() {
		t.Fatalf("Expected an animation in flight, got %v", ct.ctl.Mode())
	}

	ct.host.focused = nil
	ct.ctl.SetItems(nil)
	if !slices.Equal(ct.host.focused, []string{"<none>"}) {
		t.Errorf("Expected one nil focus event, got %v", ct.host.focused)
	}
	if ct.ctl.Focus() != nil || ct.ctl.Mode() != Idle || ct.tk.Active() {
		t.Errorf("Expected idle with no focus and no tween, got %v", ct.ctl.Mode())
	}
	ct.run(t)
	if len(ct.host.focused) != 1 {
		t.Errorf("Expected no focus events after the cancel, got %v", ct.host.focused)
	}
}

func TestControllerWaitsForViewport(t *testing.T) {
	ct := &controllerTest{clock: newFakeClock(), host: &testHost{}}
	ct.tk = NewTweener(ct.clock.Now)
	ct.ctl = NewController(ct.tk, DefaultSettings(), ct.host.events())
	ct.ctl.SetItems(testItems(12))

	if ct.ctl.Focus() != nil {
		t.Errorf("Expected no focus before the viewport has a size")
	}
	ct.ctl.Key(Right)
	ct.ctl.Wheel(Vec{0, 100})
	if ct.ctl.Mode() != Idle || len(ct.host.focused) != 0 {
		t.Errorf("Expected input to be ignored")
	}

	ct.ctl.Resize(1200, 800)
	ct.expectFocus(t, Cell{1, 3}, "p9")
}

func TestControllerFocusItem(t *testing.T) {
	ct := newControllerTest(12)
	if !ct.ctl.FocusItem("p5", false) {
		t.Fatalf("Expected p5 to be found")
	}
	ct.expectIdle(t)
	ct.expectFocus(t, Cell{0, 5}, "p5")

	if ct.ctl.FocusItem("missing", false) {
		t.Errorf("Expected a missing item not to be found")
	}
	ct.expectFocus(t, Cell{0, 5}, "p5")
}
