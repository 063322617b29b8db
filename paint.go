package main

import (
	"fmt"
	"image"
	"strings"

	draw9 "9fans.net/go/draw"
)

const (
	// maxShrink is the part of a tile lost on each side at distance factor 1.
	maxShrink = 0.08
	// focusBorder is the width of the border of the focused tile.
	focusBorder = 3
	// markSize is the size of the corner mark of marked tiles.
	markSize = 12
)

// tileRect returns the screen rectangle of a placement.
func tileRect(area image.Rectangle, pan Vec, p Placement) image.Rectangle {
	origin := Vec{float64(area.Min.X), float64(area.Min.Y)}.Add(pan)
	return rectOf(origin.Add(Vec{p.Left, p.Top}), p.Width, p.Height)
}

// paintTiles draws the tiles of the canvas. Tiles far from the center are
// smaller and veiled. The focused tile is drawn last. load returns nil for
// items without a ready image; they get a placeholder.
func paintTiles(dctl *DisplayControl, area image.Rectangle, pan Vec, tiles []Tile,
	load func(*Item) *ItemImage, marked func(*Item) bool) {
	var focused []Tile
	for _, t := range tiles {
		if t.Focused {
			focused = append(focused, t)
			continue
		}
		paintTile(dctl, tileRect(area, pan, t.Placement), t, load(t.Item), marked(t.Item))
	}
	for _, t := range focused {
		paintTile(dctl, tileRect(area, pan, t.Placement), t, load(t.Item), marked(t.Item))
	}
}

func paintTile(dctl *DisplayControl, r image.Rectangle, t Tile, img *ItemImage, marked bool) {
	screen := dctl.display.Image
	zp := image.Point{}

	shrink := int(float64(min(r.Dx(), r.Dy())) * maxShrink * t.DistanceFactor)
	r = inset(r, shrink)
	screen.Draw(r, dctl.tileColor, nil, zp)

	painted := false
	if img != nil {
		painted = img.Display(func(thumb *draw9.Image) {
			dr, sp := cropCenter(r, thumb.Bounds())
			screen.Draw(dr, thumb, nil, sp)
		}) == nil
	}
	if !painted {
		font := dctl.display.Font
		label := clipText(t.Item.Name, func(s string) int { return font.StringWidth(s) }, r.Dx()-4)
		w := font.StringWidth(label)
		p := r.Min.Add(image.Pt((r.Dx()-w)/2, (r.Dy()-font.Height)/2))
		screen.String(p, dctl.fontColor, zp, font, label)
	}

	if veil := dctl.veil(t.DistanceFactor); veil != nil {
		screen.Draw(r, dctl.bgColor, veil, zp)
	}
	if marked {
		mr := image.Rect(r.Max.X-markSize, r.Min.Y, r.Max.X, r.Min.Y+markSize)
		screen.Draw(mr.Intersect(r), dctl.borderColor, nil, zp)
	}
	if t.Focused {
		screen.Border(r, focusBorder, dctl.borderColor, zp)
	}
}

// cropCenter returns where to draw sr inside r and the source point, so that
// the center of sr is shown at the center of r.
func cropCenter(r, sr image.Rectangle) (image.Rectangle, image.Point) {
	shown := image.Rect(0, 0, min(sr.Dx(), r.Dx()), min(sr.Dy(), r.Dy()))
	d := sr.Size().Sub(shown.Size())
	return center(r, shown), sr.Min.Add(d.Div(2))
}

// clipText shortens s with an ellipsis until its width is at most w.
func clipText(s string, width func(string) int, w int) string {
	if width(s) <= w {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 {
		rs = rs[:len(rs)-1]
		if t := string(rs) + "..."; width(t) <= w {
			return t
		}
	}
	return ""
}

// paintMessage shows msg at the center of area.
func paintMessage(dctl *DisplayControl, area image.Rectangle, msg string) {
	font := dctl.display.Font
	w := font.StringWidth(msg)
	p := area.Min.Add(image.Pt((area.Dx()-w)/2, (area.Dy()-font.Height)/2))
	dctl.display.Image.String(p, dctl.fontColor, image.Point{}, font, msg)
}

// paintInfo describes the focused product at the bottom of area once the
// canvas is settled. While the canvas moves, only a header with the filters
// is shown.
func paintInfo(dctl *DisplayControl, area image.Rectangle, browser *Browser, settled bool) {
	screen := dctl.display.Image
	font := dctl.display.Font
	zp := image.Point{}

	var lines []string
	item := browser.Focused()
	if settled && item != nil {
		lines = infoLines(item, browser.Pins(), browser.IsMarked(item))
	} else {
		lines = []string{headerLine(len(browser.Displayed()), browser.Pins())}
	}

	h := (len(lines) + 1) * font.Height
	pane := image.Rect(area.Min.X, area.Min.Y, area.Max.X, area.Min.Y+h)
	if settled && item != nil {
		pane = image.Rect(area.Min.X, area.Max.Y-h, area.Max.X, area.Max.Y)
	}
	screen.Draw(pane, dctl.bgColor, nil, zp)
	p := pane.Min.Add(image.Pt(font.Height, font.Height/2))
	for _, line := range lines {
		screen.String(p, dctl.fontColor, zp, font, line)
		p.Y += font.Height
	}
}

// infoLines are the lines of the info pane. Pinned values are starred.
func infoLines(item *Item, pins Pins, marked bool) []string {
	title := item.Label()
	if marked {
		title += " [marked]"
	}
	var tags []string
	for i, cat := range tagCategories {
		v := item.Tags[cat.key]
		if v == "" {
			continue
		}
		if pins[cat.key] == v {
			v += "*"
		}
		tags = append(tags, fmt.Sprintf("%d %s: %s", i+1, cat.name, v))
	}
	lines := []string{title}
	if len(tags) > 0 {
		lines = append(lines, strings.Join(tags, "  "))
	}
	if item.Alt != "" && item.Alt != item.Name {
		lines = append(lines, item.Alt)
	}
	return lines
}

// headerLine is the compact header shown while the canvas moves.
func headerLine(n int, pins Pins) string {
	parts := []string{fmt.Sprintf("%d products", n)}
	for _, cat := range tagCategories {
		if _, ok := pins[cat.key]; ok {
			parts = append(parts, pinLabel(pins, cat.key, cat.name))
		}
	}
	return strings.Join(parts, "  ")
}
