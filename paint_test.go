package main

import (
	"image"
	"slices"
	"testing"
)

func TestCropCenter(t *testing.T) {
	tests := []struct {
		name  string
		r, sr image.Rectangle
		dr    image.Rectangle
		sp    image.Point
	}{
		{
			name: "Fits",
			r:    image.Rect(0, 0, 100, 100),
			sr:   image.Rect(0, 0, 50, 80),
			dr:   image.Rect(25, 10, 75, 90),
			sp:   image.Pt(0, 0),
		},
		{
			name: "Too wide",
			r:    image.Rect(0, 0, 100, 100),
			sr:   image.Rect(0, 0, 200, 60),
			dr:   image.Rect(0, 20, 100, 80),
			sp:   image.Pt(50, 0),
		},
		{
			name: "Offset target",
			r:    image.Rect(10, 10, 30, 30),
			sr:   image.Rect(0, 0, 40, 40),
			dr:   image.Rect(10, 10, 30, 30),
			sp:   image.Pt(10, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, sp := cropCenter(tt.r, tt.sr)
			if dr != tt.dr || sp != tt.sp {
				t.Errorf("Expected %v from %v, got %v from %v", tt.dr, tt.sp, dr, sp)
			}
		})
	}
}

func TestClipText(t *testing.T) {
	width := func(s string) int { return len(s) }
	tests := []struct {
		name     string
		w        int
		expected string
	}{
		{"Fits", 20, "Oak chair"},
		{"Exact", 9, "Oak chair"},
		{"Clipped", 6, "Oak..."},
		{"Too narrow", 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clipText("Oak chair", width, tt.w); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTileRect(t *testing.T) {
	area := image.Rect(10, 20, 1210, 820)
	p := Placement{Left: 195, Top: 250, Width: 165, Height: 220}
	got := tileRect(area, Vec{5.5, -3}, p)
	if expected := image.Rect(211, 267, 376, 487); got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestVeilLevel(t *testing.T) {
	tests := []struct {
		d        float64
		expected int
	}{
		{0, 0},
		{0.06, 0},
		{0.07, 1},
		{0.5, 4},
		{1, 8},
		{-1, 0},
		{2, 8},
	}
	for _, tt := range tests {
		if got := veilLevel(tt.d, 8); got != tt.expected {
			t.Errorf("Expected level %d for %v, got %d", tt.expected, tt.d, got)
		}
	}
}

func TestInfoLines(t *testing.T) {
	item := &Item{
		ID:    "chair-1",
		Name:  "Oak chair",
		Alt:   "A chair of oak",
		Price: "$120",
		Tags:  map[string]string{tagType: "chair", tagTexture: "wood", tagColor: "brown"},
	}
	got := infoLines(item, Pins{tagType: "chair"}, true)
	expected := []string{
		"Oak chair $120 [marked]",
		"1 Category: chair*  2 Material: wood  3 Color: brown",
		"A chair of oak",
	}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %q, got %q", expected, got)
	}

	bare := &Item{ID: "x", Name: "x", Alt: "x"}
	if got := infoLines(bare, Pins{}, false); !slices.Equal(got, []string{"x"}) {
		t.Errorf("Expected the name only, got %q", got)
	}
}

func TestHeaderLine(t *testing.T) {
	if got := headerLine(4, Pins{}); got != "4 products" {
		t.Errorf("Expected the count only, got %q", got)
	}
	got := headerLine(2, Pins{tagTexture: "wood", tagColor: "brown"})
	if expected := "2 products  Material: wood*  Color: brown*"; got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestDebugLabel(t *testing.T) {
	tile := Tile{Cell: Cell{-1, 2}, DistanceFactor: 0.5}
	if got := debugLabel(tile); got != "-1,2 0.50" {
		t.Errorf("Expected \"-1,2 0.50\", got %q", got)
	}
}
