package main

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	draw9 "9fans.net/go/draw"
)

// writeTestPNG writes a w x h picture in dir and returns its path.
func writeTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, "p.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

// boundsDisplayer stands in for the display, keeping only the size.
func boundsDisplayer(img image.Image) (*draw9.Image, error) {
	return &draw9.Image{R: img.Bounds()}, nil
}

func TestItemImageNotLoaded(t *testing.T) {
	img := NewItemImage(&Item{ID: "p0", Src: "missing.png"}, boundsDisplayer)
	called := false
	if err := img.Display(func(*draw9.Image) { called = true }); err == nil {
		t.Errorf("Expected an error before Load")
	}
	if called {
		t.Errorf("Expected no call before Load")
	}
	if img.Exif() != "" {
		t.Errorf("Expected no exif before Load, got %q", img.Exif())
	}
}

func TestItemImageWithoutSource(t *testing.T) {
	img := NewItemImage(&Item{ID: "p0"}, boundsDisplayer)
	if err := img.Load(); !errors.Is(err, errNoImage) {
		t.Errorf("Expected errNoImage, got %v", err)
	}
}

func TestItemImageLoadWhileDisplaying(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 8, 6)
	img := NewItemImage(&Item{ID: "p0", Src: path}, boundsDisplayer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := img.Load(); err != nil {
			t.Errorf("Expected the load to succeed, got %v", err)
		}
	}()
	for range 100 {
		img.Display(func(thumb *draw9.Image) { _ = thumb.R })
		img.Exif()
	}
	wg.Wait()

	var size image.Point
	if err := img.Display(func(thumb *draw9.Image) { size = thumb.R.Size() }); err != nil {
		t.Fatalf("Expected a loaded picture, got %v", err)
	}
	if size != image.Pt(8, 6) {
		t.Errorf("Expected size (8,6), got %v", size)
	}
}
