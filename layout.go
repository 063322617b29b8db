package main

import "math"

// LayoutConfig is the tile geometry for a viewport width and an item count.
// The stride is the distance between the origins of adjacent cells.
type LayoutConfig struct {
	TileWidth  float64
	TileHeight float64
	Spacing    float64
	Columns    int
	StrideX    float64
	StrideY    float64
}

// Ready reports whether the layout can place tiles.
func (l LayoutConfig) Ready() bool {
	return l.TileWidth > 0 && l.StrideX > 0 && l.StrideY > 0
}

// Stride returns the strides as a vector.
func (l LayoutConfig) Stride() Vec {
	return Vec{l.StrideX, l.StrideY}
}

// tileAspect is width over height.
const tileAspect = 3.0 / 4.0

// deviceClass holds the limits of one class of viewports.
type deviceClass struct {
	minSpacing, maxSpacing float64
	minWidth, maxWidth     float64 // acceptable tile widths
	floorWidth             float64 // tiles are never narrower than this
	maxCols                int
}

var (
	mobileClass = deviceClass{
		minSpacing: 15,
		maxSpacing: 25,
		minWidth:   60,
		maxWidth:   100,
		floorWidth: 50,
		maxCols:    6,
	}
	desktopClass = deviceClass{
		minSpacing: 30,
		maxSpacing: 70,
		minWidth:   120,
		maxWidth:   250,
		floorWidth: 100,
		maxCols:    10,
	}
)

// breakpoints maps viewport widths to the target column count.
// The last entry catches every wider viewport.
var breakpoints = []struct {
	below float64
	cols  int
}{
	{480, 3},
	{768, 4},
	{1024, 5},
	{1440, 6},
	{math.Inf(1), 7},
}

// mobileBelow is the width under which a viewport is treated as mobile.
const mobileBelow = 768

// targetColumns returns the column count of the breakpoint table for width.
func targetColumns(width float64) int {
	for _, bp := range breakpoints {
		if width < bp.below {
			return max(1, bp.cols)
		}
	}
	return 1
}

func classOf(width float64) deviceClass {
	if width < mobileBelow {
		return mobileClass
	}
	return desktopClass
}

// ComputeLayout returns the layout for a viewport width and an item count.
// Columns start from the breakpoint table and are adjusted so that tiles stay
// between the acceptable widths of the device class; the spacing is then
// stretched to fill the width edge to edge, within the class limits.
// A zero width or an empty item list gives the zero layout.
func ComputeLayout(width float64, itemCount int) LayoutConfig {
	if width <= 0 || itemCount <= 0 {
		return LayoutConfig{}
	}

	dc := classOf(width)
	tileWidth := func(cols int, spacing float64) float64 {
		return (width - float64(cols+1)*spacing) / float64(cols)
	}

	cols := targetColumns(width)
	spacing := dc.minSpacing
	w := tileWidth(cols, spacing)
	for w < dc.minWidth && cols > 1 {
		cols--
		w = tileWidth(cols, spacing)
	}
	for w > dc.maxWidth && cols < dc.maxCols {
		cols++
		w = tileWidth(cols, spacing)
	}
	w = math.Max(dc.floorWidth, w)

	spacing = (width - float64(cols)*w) / float64(cols+1)
	spacing = clamp(spacing, dc.minSpacing, dc.maxSpacing)

	w = math.Max(dc.floorWidth, tileWidth(cols, spacing))
	h := w / tileAspect

	return LayoutConfig{
		TileWidth:  w,
		TileHeight: h,
		Spacing:    spacing,
		Columns:    cols,
		StrideX:    w + spacing,
		StrideY:    h + spacing,
	}
}

// CenteringPan returns the pan offset that puts the center of the cell at
// position p (in cell units, possibly fractional) on the viewport center.
// Screen coordinates of a virtual point are pan + point.
func (l LayoutConfig) CenteringPan(p Vec, vp Size) Vec {
	cellCenter := Vec{
		p.X*l.StrideX + l.TileWidth/2,
		p.Y*l.StrideY + l.TileHeight/2,
	}
	return vp.Center().Sub(cellCenter)
}

// PositionOf is the inverse of CenteringPan.
func (l LayoutConfig) PositionOf(pan Vec, vp Size) Vec {
	c := vp.Center().Sub(pan)
	return Vec{
		(c.X - l.TileWidth/2) / l.StrideX,
		(c.Y - l.TileHeight/2) / l.StrideY,
	}
}

// InitialCell is the cell a fresh canvas centers on: half way down the rows a
// list of itemCount fills twice, in the middle column.
func (l LayoutConfig) InitialCell(itemCount int) Cell {
	cols := max(1, l.Columns)
	return Cell{itemCount / (cols * 2), cols / 2}
}
