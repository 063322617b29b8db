package main

import (
	"fmt"
	"image"
)

// Overlay paints over the canvas after the tiles.
type Overlay interface {
	Paint(dctl *DisplayControl, area image.Rectangle, w *Window)
}

// debugOverlay shows the target the focused tile snaps to, and the cell and
// distance factor of every visible tile.
type debugOverlay struct{}

func (debugOverlay) Paint(dctl *DisplayControl, area image.Rectangle, w *Window) {
	screen := dctl.display.Image
	font := dctl.display.Font
	zp := image.Point{}

	l := w.Layout
	origin := Vec{float64(area.Min.X), float64(area.Min.Y)}
	target := origin.Add(w.Viewport.Center()).Sub(Vec{l.TileWidth / 2, l.TileHeight / 2})
	screen.Border(rectOf(target, l.TileWidth, l.TileHeight), 1, dctl.debugColor, zp)
	pos := l.PositionOf(w.Pan, w.Viewport)
	screen.String(area.Min.Add(image.Pt(4, 4)), dctl.debugColor, zp, font,
		fmt.Sprintf("pos %.2f,%.2f focus %v", pos.X, pos.Y, w.Focus))

	for t := range w.Tiles() {
		r := tileRect(area, w.Pan, t.Placement)
		if !r.Overlaps(area) {
			continue
		}
		screen.String(r.Min.Add(image.Pt(4, 4)), dctl.debugColor, zp, font, debugLabel(t))
	}
}

func debugLabel(t Tile) string {
	return fmt.Sprintf("%d,%d %.2f", t.Cell.Row, t.Cell.Col, t.DistanceFactor)
}
