package main

import (
	"log"
	"math"
	"slices"
	"time"
)

// Mode is the interaction state of the canvas. Exactly one is active.
type Mode int

const (
	Idle      Mode = iota // the focused cell is centered, nothing moves
	Dragging              // a pointer is captured and the canvas follows it
	Animating             // the canvas eases toward a target cell
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Animating:
		return "animating"
	}
	return "unknown"
}

// Direction is a keyboard step.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// Events are the notifications of the controller to its host. Nil functions
// are skipped.
type Events struct {
	FocusedItemChange func(item *Item)
	SettledChange     func(settled bool)
	InteractingChange func(interacting bool)
	TileClick         func(t Tile)
}

// Settings tune the motion of the canvas.
type Settings struct {
	Buffer           float64       // fraction of the viewport rendered beyond each edge
	WheelSensitivity float64       // cells per wheel pixel
	SnapDuration     time.Duration // elastic snap to the nearest cell
	CoastDuration    time.Duration // inertial coast after a fling
	StepDuration     time.Duration // keyboard and click moves
	WheelDuration    time.Duration
	CoastFactor      float64 // coast distance in pixels per px/ms of release speed
	MinCoastSpeed    float64 // px/ms; slower releases snap at once
	VelocityTimeout  time.Duration
	ClickSlop        float64 // pixels a click may travel
}

// DefaultSettings returns the settings used when the configuration is silent.
func DefaultSettings() Settings {
	return Settings{
		Buffer:           defaultBufferFactor,
		WheelSensitivity: 0.01,
		SnapDuration:     700 * time.Millisecond,
		CoastDuration:    400 * time.Millisecond,
		StepDuration:     500 * time.Millisecond,
		WheelDuration:    350 * time.Millisecond,
		CoastFactor:      320,
		MinCoastSpeed:    0.1,
		VelocityTimeout:  100 * time.Millisecond,
		ClickSlop:        4,
	}
}

// dragState is the pointer captured by a drag.
type dragState struct {
	pointer int
	last    Vec
	lastT   time.Time
	vel     Vec // px/ms of the last movement sample
	travel  float64
}

// Controller owns the focus and the pan of the canvas and is their only
// writer. The pan is kept as a position in cell space, the fractional cell at
// the viewport center; in Idle it is exactly the focused cell.
type Controller struct {
	settings Settings
	anim     Animator
	events   Events

	items    []*Item
	viewport Size
	layout   LayoutConfig

	focus *Cell
	pos   Vec
	mode  Mode

	motion      Handle
	drag        dragState
	wheeling    bool
	wheelTarget Vec

	// last published state
	lastItem *Item
	lastBusy bool
}

// NewController returns an idle controller without items.
func NewController(anim Animator, settings Settings, events Events) *Controller {
	return &Controller{
		settings: settings,
		anim:     anim,
		events:   events,
	}
}

// Mode returns the interaction state.
func (c *Controller) Mode() Mode { return c.mode }

// Settled reports whether the canvas rests on the focused cell.
func (c *Controller) Settled() bool { return c.mode == Idle }

// Layout returns the current layout.
func (c *Controller) Layout() LayoutConfig { return c.layout }

// Position returns the cell-space position at the viewport center.
func (c *Controller) Position() Vec { return c.pos }

// Focus returns the focused cell, or nil when there is nothing to focus.
func (c *Controller) Focus() *Cell {
	if c.focus == nil {
		return nil
	}
	f := *c.focus
	return &f
}

// FocusedItem returns the item under the focused cell.
func (c *Controller) FocusedItem() *Item {
	if c.focus == nil || len(c.items) == 0 {
		return nil
	}
	return c.items[IndexOf(c.focus.Row, c.focus.Col, len(c.items), c.layout.Columns)]
}

// Pan returns the pixel offset of the virtual plane on the screen.
func (c *Controller) Pan() Vec {
	return c.layout.CenteringPan(c.pos, c.viewport)
}

// Window returns the visible window for the current state.
func (c *Controller) Window() *Window {
	return &Window{
		Pan:         c.Pan(),
		Viewport:    c.viewport,
		Layout:      c.layout,
		Items:       c.items,
		Focus:       c.Focus(),
		Buffer:      c.settings.Buffer,
		Interacting: c.mode != Idle,
	}
}

// ready reports whether input can be handled.
func (c *Controller) ready() bool {
	return len(c.items) > 0 && c.layout.Ready() && c.viewport.H > 0 && c.focus != nil
}

// SetItems replaces the item list. The focus stays on the same item when the
// new list has it, on the cell nearest to the old focus that shows it;
// otherwise it goes to the initial cell. An empty list clears the focus.
func (c *Controller) SetItems(items []*Item) {
	c.items = slices.Clone(items)
	c.relayout()
}

// Resize sets the viewport size and lays the canvas out again.
func (c *Controller) Resize(w, h float64) {
	if c.viewport == (Size{w, h}) {
		return
	}
	c.viewport = Size{w, h}
	c.relayout()
}

func (c *Controller) relayout() {
	c.stopMotion()
	prev := c.lastItem
	c.layout = ComputeLayout(c.viewport.W, len(c.items))
	if len(c.items) == 0 {
		c.focus = nil
		c.mode = Idle
		c.publish()
		return
	}
	if !c.layout.Ready() {
		// the focus is resolved when the viewport gets a size
		c.mode = Idle
		c.publishBusy()
		return
	}
	c.settle(c.resolve(prev))
}

// resolve finds the cell to focus after the items or the layout changed.
func (c *Controller) resolve(prev *Item) Cell {
	n := len(c.items)
	if prev != nil && c.focus != nil {
		k := slices.IndexFunc(c.items, func(it *Item) bool { return it.ID == prev.ID })
		if k >= 0 {
			cols := c.layout.Columns
			return CellOf(nearestFlatOf(flatOf(*c.focus, cols), k, n), cols)
		}
	}
	return c.layout.InitialCell(n)
}

// CenterOn focuses the cell. With animate the canvas moves there, otherwise
// it jumps.
func (c *Controller) CenterOn(cell Cell, animate bool) {
	if len(c.items) == 0 || !c.layout.Ready() {
		return
	}
	if !animate {
		c.stopMotion()
		c.settle(cell)
		return
	}
	c.focus = &cell
	c.moveTo(cell.Vec(), Tween{c.settings.StepDuration, Spring(300, 25, c.settings.StepDuration)}, func() {
		c.settle(cell)
	})
}

// FocusItem moves the focus to the nearest cell showing the item with id.
func (c *Controller) FocusItem(id string, animate bool) bool {
	if !c.ready() {
		return false
	}
	k := slices.IndexFunc(c.items, func(it *Item) bool { return it.ID == id })
	if k < 0 {
		return false
	}
	cols := c.layout.Columns
	c.CenterOn(CellOf(nearestFlatOf(flatOf(*c.focus, cols), k, len(c.items)), cols), animate)
	return true
}

// PointerDown captures the pointer and starts a drag. An animation in flight
// is cancelled.
func (c *Controller) PointerDown(pointer int, p Vec, t time.Time) {
	if !c.ready() || c.mode == Dragging {
		return
	}
	c.stopMotion()
	c.drag = dragState{pointer: pointer, last: p, lastT: t}
	c.mode = Dragging
	c.publish()
}

// PointerMove drags the canvas with the captured pointer. The focus does not
// change until the drag ends.
func (c *Controller) PointerMove(pointer int, p Vec, t time.Time) {
	if c.mode != Dragging || pointer != c.drag.pointer {
		return
	}
	d := p.Sub(c.drag.last)
	dt := max(t.Sub(c.drag.lastT), time.Millisecond)
	stride := c.layout.Stride()
	// dragging the content left brings the cells on the right to the center
	c.pos = c.pos.Sub(Vec{d.X / stride.X, d.Y / stride.Y})
	c.drag.vel = d.Mul(float64(time.Millisecond) / float64(dt))
	c.drag.last = p
	c.drag.lastT = t
	c.drag.travel += d.Len()
}

// PointerUp releases the pointer. A release that barely moved is a click on
// the tile under it; a fast one coasts before snapping to the cell nearest
// to the viewport center.
func (c *Controller) PointerUp(pointer int, p Vec, t time.Time) {
	if c.mode != Dragging || pointer != c.drag.pointer {
		return
	}
	if p != c.drag.last {
		c.PointerMove(pointer, p, t)
	}
	if c.drag.travel <= c.settings.ClickSlop {
		if tile, ok := c.Window().TileAt(p); ok {
			c.click(tile)
			return
		}
	}

	vel := c.drag.vel
	if t.Sub(c.drag.lastT) > c.settings.VelocityTimeout {
		vel = Vec{}
	}
	if vel.Len() < c.settings.MinCoastSpeed {
		c.snap()
		return
	}
	stride := c.layout.Stride()
	coast := vel.Mul(c.settings.CoastFactor)
	to := c.pos.Sub(Vec{coast.X / stride.X, coast.Y / stride.Y})
	c.moveTo(to, Tween{c.settings.CoastDuration, OutQuad}, c.snap)
}

// Click selects the tile at the screen point.
func (c *Controller) Click(p Vec) {
	if !c.ready() || c.mode == Dragging {
		return
	}
	if tile, ok := c.Window().TileAt(p); ok {
		c.click(tile)
	}
}

func (c *Controller) click(tile Tile) {
	if c.events.TileClick != nil {
		c.events.TileClick(tile)
	}
	c.CenterOn(tile.Cell, true)
}

// snap eases the canvas onto the rendered tile nearest to the viewport center.
func (c *Controller) snap() {
	tile, ok := c.Window().Nearest()
	if !ok {
		c.mode = Idle
		c.publish()
		return
	}
	cell := tile.Cell
	if c.pos == cell.Vec() {
		c.settle(cell)
		return
	}
	c.moveTo(cell.Vec(), Tween{c.settings.SnapDuration, OutElastic(0.6)}, func() {
		c.settle(cell)
	})
}

// Key steps the focus by one cell. The new cell must already be rendered.
// The focus changes at once and the canvas follows.
func (c *Controller) Key(d Direction) {
	if !c.ready() || c.mode == Dragging {
		return
	}
	dr, dc := d.delta()
	cell := c.focus.Add(dr, dc)
	if !c.Window().Contains(cell) {
		return
	}
	c.CenterOn(cell, true)
}

// Wheel scrolls by the wheel delta. Deltas accumulate on a fractional target
// and the canvas eases to the cell nearest to it; each event retargets the
// animation in flight. The focus changes when the canvas arrives.
func (c *Controller) Wheel(delta Vec) {
	if !c.ready() || c.mode == Dragging {
		return
	}
	target := c.pos
	if c.wheeling {
		target = c.wheelTarget
	}
	target = target.Add(delta.Mul(c.settings.WheelSensitivity))
	to := Vec{math.Round(target.X), math.Round(target.Y)}
	cell := Cell{int(to.Y), int(to.X)}
	c.moveTo(to, Tween{c.settings.WheelDuration, OutCubic}, func() {
		c.settle(cell)
	})
	c.wheeling = true
	c.wheelTarget = target
}

// moveTo replaces the animation in flight with one from the current position
// to the target.
func (c *Controller) moveTo(to Vec, cfg Tween, done func()) {
	c.stopMotion()
	from := c.pos
	var h Handle
	h = c.anim.Animate(0, 1, cfg, func(t float64) {
		c.pos = from.Lerp(to, t)
	}, func() {
		if c.motion != h {
			return
		}
		c.motion = nil
		c.pos = to
		done()
	})
	c.motion = h
	c.mode = Animating
	c.publish()
}

func (c *Controller) stopMotion() {
	if c.motion != nil {
		c.motion.Cancel()
		c.motion = nil
	}
	c.wheeling = false
}

// settle rests the canvas on the cell.
func (c *Controller) settle(cell Cell) {
	c.motion = nil
	c.wheeling = false
	c.pos = cell.Vec()
	c.focus = &cell
	c.mode = Idle
	c.publish()
}

// publish notifies the host of what changed since the last notification.
// It runs after the state is complete, so hosts may call back in.
func (c *Controller) publish() {
	c.publishItem()
	c.publishBusy()
}

func (c *Controller) publishItem() {
	item := c.FocusedItem()
	if !sameItem(item, c.lastItem) {
		c.lastItem = item
		if *verbose {
			log.Printf("canvas: focus %v %v", c.focus, itemID(item))
		}
		if c.events.FocusedItemChange != nil {
			c.events.FocusedItemChange(item)
		}
	}
}

func (c *Controller) publishBusy() {
	busy := c.mode != Idle
	if busy != c.lastBusy {
		c.lastBusy = busy
		if c.events.InteractingChange != nil {
			c.events.InteractingChange(busy)
		}
		if c.events.SettledChange != nil {
			c.events.SettledChange(!busy)
		}
	}
}

func sameItem(a, b *Item) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func itemID(it *Item) string {
	if it == nil {
		return "<none>"
	}
	return it.ID
}
