package main

import (
	"fmt"
	"iter"
	"log"
	"math"
)

// defaultBufferFactor is how much of the viewport size is rendered beyond
// each edge, so fast pans do not show empty cells.
const defaultBufferFactor = 0.8

// Placement is the position of a tile on the virtual plane, in pixels.
type Placement struct {
	Left, Top, Width, Height float64
}

// Center returns the center of the placement.
func (p Placement) Center() Vec {
	return Vec{p.Left + p.Width/2, p.Top + p.Height/2}
}

// Tile is the rendering of one cell for one frame. Tiles are recomputed on
// every pan or layout change and never kept.
type Tile struct {
	UniqueID       string // item id and cell
	Cell           Cell
	Item           *Item
	Placement      Placement
	DistanceFactor float64 // 0 at the viewport center, 1 far away
	Focused        bool
}

// Window is the buffered rectangle of the virtual plane around the viewport.
type Window struct {
	Pan         Vec // screen = pan + virtual
	Viewport    Size
	Layout      LayoutConfig
	Items       []*Item
	Focus       *Cell
	Buffer      float64 // fraction of the viewport added on each side
	Interacting bool    // no tile is focused while the user interacts
}

// Empty reports whether the window has nothing to show.
func (w *Window) Empty() bool {
	return !w.Layout.Ready() || len(w.Items) == 0 || w.Viewport.W <= 0 || w.Viewport.H <= 0
}

// Range returns the inclusive rows and columns of the buffered rectangle.
func (w *Window) Range() (minRow, maxRow, minCol, maxCol int) {
	bx := w.Viewport.W * w.Buffer
	by := w.Viewport.H * w.Buffer
	minCol = int(math.Floor((-w.Pan.X - bx) / w.Layout.StrideX))
	maxCol = int(math.Ceil((-w.Pan.X + w.Viewport.W + bx) / w.Layout.StrideX))
	minRow = int(math.Floor((-w.Pan.Y - by) / w.Layout.StrideY))
	maxRow = int(math.Ceil((-w.Pan.Y + w.Viewport.H + by) / w.Layout.StrideY))
	return
}

// Tiles returns the tiles of the window in row-major order. The sequence is
// lazy and can be ranged over again.
func (w *Window) Tiles() iter.Seq[Tile] {
	return func(yield func(Tile) bool) {
		if w.Empty() {
			return
		}
		minRow, maxRow, minCol, maxCol := w.Range()
		for vr := minRow; vr <= maxRow; vr++ {
			for vc := minCol; vc <= maxCol; vc++ {
				if !yield(w.tileAt(Cell{vr, vc})) {
					return
				}
			}
		}
	}
}

// Contains reports whether the cell is rendered.
func (w *Window) Contains(c Cell) bool {
	if w.Empty() {
		return false
	}
	minRow, maxRow, minCol, maxCol := w.Range()
	return minRow <= c.Row && c.Row <= maxRow && minCol <= c.Col && c.Col <= maxCol
}

// Nearest returns the rendered tile whose center is nearest to the viewport
// center. Among tiles at the same distance the first in row-major order wins.
func (w *Window) Nearest() (Tile, bool) {
	var best Tile
	found := false
	minDist := math.Inf(1)
	vc := w.Viewport.Center()
	for t := range w.Tiles() {
		d := w.Pan.Add(t.Placement.Center()).Sub(vc).Len()
		if d < minDist {
			minDist = d
			best = t
			found = true
		}
	}
	return best, found
}

// TileAt returns the tile under the screen point p. Points on the spacing
// between tiles hit nothing.
func (w *Window) TileAt(p Vec) (Tile, bool) {
	if w.Empty() {
		return Tile{}, false
	}
	v := p.Sub(w.Pan)
	c := Cell{
		Row: int(math.Floor(v.Y / w.Layout.StrideY)),
		Col: int(math.Floor(v.X / w.Layout.StrideX)),
	}
	if v.X-float64(c.Col)*w.Layout.StrideX >= w.Layout.TileWidth ||
		v.Y-float64(c.Row)*w.Layout.StrideY >= w.Layout.TileHeight {
		return Tile{}, false
	}
	return w.tileAt(c), true
}

// itemAt resolves the item of a cell. An index outside the list cannot happen
// with IndexOf; if it does, it is clamped and logged.
func (w *Window) itemAt(c Cell) *Item {
	n := len(w.Items)
	i := IndexOf(c.Row, c.Col, n, w.Layout.Columns)
	if i < 0 || i >= n {
		log.Printf("window: index %d of cell %v outside [0,%d)", i, c, n)
		i = min(max(i, 0), n-1)
	}
	return w.Items[i]
}

func (w *Window) tileAt(c Cell) Tile {
	item := w.itemAt(c)
	p := Placement{
		Left:   float64(c.Col) * w.Layout.StrideX,
		Top:    float64(c.Row) * w.Layout.StrideY,
		Width:  w.Layout.TileWidth,
		Height: w.Layout.TileHeight,
	}
	return Tile{
		UniqueID:       fmt.Sprintf("%s-%d-%d", item.ID, c.Row, c.Col),
		Cell:           c,
		Item:           item,
		Placement:      p,
		DistanceFactor: w.distanceFactor(p),
		Focused:        !w.Interacting && w.Focus != nil && *w.Focus == c,
	}
}

// distanceFactor normalizes the distance of the tile center from the
// viewport center to [0, 1]. Tiles beyond 80% of the half diagonal are 1.
func (w *Window) distanceFactor(p Placement) float64 {
	vc := w.Viewport.Center()
	d := w.Pan.Add(p.Center()).Sub(vc).Len()
	maxDist := vc.Len()*0.8 + 1e-6
	return clamp(d/maxDist, 0, 1)
}
