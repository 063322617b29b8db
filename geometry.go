package main

import (
	"image"
	"math"
)

// Vec is a point or displacement in pixels or in cell units.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y} }
func (v Vec) Sub(w Vec) Vec { return Vec{v.X - w.X, v.Y - w.Y} }
func (v Vec) Mul(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec) Lerp(w Vec, t float64) Vec {
	return Vec{v.X + (w.X-v.X)*t, v.Y + (w.Y-v.Y)*t}
}

// Size is the viewport size in pixels.
type Size struct {
	W, H float64
}

// Center returns the center of a viewport of size s.
func (s Size) Center() Vec {
	return Vec{s.W / 2, s.H / 2}
}

// center assume sr fits in dr and centers it inside dr. If this is not the case, it returns dr.
func center(dr, sr image.Rectangle) image.Rectangle {
	dx := dr.Dx() - sr.Dx()
	dy := dr.Dy() - sr.Dy()

	if dx < 0 || dy < 0 {
		return dr
	}

	return sr.Sub(sr.Min).Add(dr.Min.Add(image.Pt(dx, dy).Div(2)))
}

// bestFit scales down sr to fix in dr. If sr already fits, it is not scaled up.
func bestFit(dr, sr image.Rectangle) image.Rectangle {
	var r image.Rectangle
	if sr.Dx() <= dr.Dx() && sr.Dy() <= dr.Dy() {
		r = sr
	} else {
		scale := max(float32(sr.Dy())/float32(dr.Dy()), float32(sr.Dx())/float32(dr.Dx()))
		r.Max.X = int(float32(sr.Dx()) / scale)
		r.Max.Y = int(float32(sr.Dy()) / scale)
	}
	return center(dr, r)
}

// inset shrinks r by n pixels on every side. It never returns an empty rectangle
// smaller than a single pixel around the center of r.
func inset(r image.Rectangle, n int) image.Rectangle {
	n = min(n, (r.Dx()-1)/2, (r.Dy()-1)/2)
	if n <= 0 {
		return r
	}
	return r.Inset(n)
}

// rectOf rounds a placement in screen coordinates to an integer rectangle.
func rectOf(origin Vec, w, h float64) image.Rectangle {
	x0 := int(math.Round(origin.X))
	y0 := int(math.Round(origin.Y))
	return image.Rect(x0, y0, x0+int(math.Round(w)), y0+int(math.Round(h)))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
