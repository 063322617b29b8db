package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	draw9 "9fans.net/go/draw"
	"github.com/xor-gate/goexif2/exif"
	"github.com/xor-gate/goexif2/tiff"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	// fastScaler is used to scale tiles.
	fastScaler xdraw.Scaler = xdraw.BiLinear
	// bestScaler is used to scale the detail view.
	bestScaler xdraw.Scaler = xdraw.CatmullRom
)

// Displayer returns the display version of the image.
type Displayer func(image.Image) (*draw9.Image, error)

// ItemImage holds the picture of a product, loaded on demand. Caches load
// and unload it on their own goroutines while views draw it.
type ItemImage struct {
	*Item               // the product shown
	displayer Displayer // function to compute the display for the image

	mu       sync.Mutex
	data     []byte       // the image contents from file
	thumb    *draw9.Image // scaled image for display
	exifInfo string       // a summary of the EXIF data if present
}

var (
	errNotSupportedFormat = errors.New("not supported format")
	errNoImage            = errors.New("product has no image")
)

// NewItemImage returns a new, unloaded, picture of the item.
func NewItemImage(item *Item, displayer Displayer) *ItemImage {
	return &ItemImage{Item: item, displayer: displayer}
}

// NewItemImages makes the pictures of items, by item id.
func NewItemImages(items []*Item, displayer Displayer) map[string]*ItemImage {
	images := make(map[string]*ItemImage, len(items))
	for _, item := range items {
		images[item.ID] = NewItemImage(item, displayer)
	}
	return images
}

// Key identifies the picture in caches.
func (i *ItemImage) Key() string {
	return i.ID
}

// Display calls fn with the scaled image. The image stays valid until fn
// returns. The picture must be loaded.
func (i *ItemImage) Display(fn func(*draw9.Image)) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.thumb == nil {
		return fmt.Errorf("%s: not loaded", i.ID)
	}
	fn(i.thumb)
	return nil
}

// Exif returns the summary of the EXIF data, if any was read.
func (i *ItemImage) Exif() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.exifInfo
}

// Load reads, decodes and scales the image file.
func (i *ItemImage) Load() error {
	if i.Src == "" {
		return fmt.Errorf("load %s: %w", i.ID, errNoImage)
	}
	i.mu.Lock()
	data, thumb := i.data, i.thumb
	i.mu.Unlock()

	exifInfo := ""
	if data == nil {
		var err error
		data, err = os.ReadFile(i.Src)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}

		switch ct := http.DetectContentType(data); ct {
		case "image/gif", "image/jpeg", "image/png", "image/webp":
			// supported format
		default:
			return fmt.Errorf("load: cannot handle %s: %w", ct, errNotSupportedFormat)
		}

		exifInfo = getExifInfo(bytes.NewReader(data))
	}

	if thumb == nil {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("load: decode image: %w", err)
		}
		thumb, err = i.displayer(img)
		if err != nil {
			return fmt.Errorf("load: display image: %w", err)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.data == nil {
		i.exifInfo = exifInfo
	}
	i.data, i.thumb = data, thumb
	return nil
}

// Unload frees the image data. To use it again, call Load first.
func (i *ItemImage) Unload() {
	i.mu.Lock()
	thumb := i.thumb
	i.data, i.thumb = nil, nil
	i.mu.Unlock()

	if thumb != nil {
		if err := thumb.Free(); err != nil {
			log.Printf("unload: failed to free image of %s: %v", i.ID, err)
		}
	}
}

// Fit fits img in r with the scaler and uploads the result to the display.
func Fit(disp *draw9.Display, scaler xdraw.Scaler, img image.Image, r image.Rectangle) (*draw9.Image, error) {
	dr := bestFit(r, img.Bounds())
	dimg := image.NewRGBA(dr)
	scaler.Scale(dimg, dr, img, img.Bounds(), xdraw.Src, nil)
	return disp.ReadImage(toPlan9Bitmap(dimg))
}

// FitFast fits img in r using a fast algorithm and an acceptable result.
func FitFast(disp *draw9.Display, img image.Image, r image.Rectangle) (*draw9.Image, error) {
	return Fit(disp, fastScaler, img, r)
}

// FitBest fits img in r produces the best result but it is slow.
func FitBest(disp *draw9.Display, img image.Image, r image.Rectangle) (*draw9.Image, error) {
	return Fit(disp, bestScaler, img, r)
}

// toPlan9Bitmap converts an image to the plan9 format for display.
func toPlan9Bitmap(img *image.RGBA) *bytes.Buffer {
	n := 60 + img.Bounds().Dx()*img.Bounds().Dy()*4
	b := bytes.NewBuffer(make([]byte, 0, n))
	fmt.Fprintf(b, "%11s %11d %11d %11d %11d ",
		"r8g8b8a8", 0, 0, img.Bounds().Dx(), img.Bounds().Dy())
	for data := img.Pix; len(data) > 0; data = data[4:] {
		b.WriteByte(data[3])
		b.WriteByte(data[2])
		b.WriteByte(data[1])
		b.WriteByte(data[0])
	}
	return b
}

// getExifInfo returns an online human readable string of the exif data.
func getExifInfo(r tiff.ReadAtReaderSeeker) string {
	ex, err := exif.Decode(r)
	if err != nil {
		return ""
	}

	asString := func(t *tiff.Tag) string {
		return t.String()
	}

	asRatFloat := func(t *tiff.Tag) string {
		f, _ := t.Rat(0)
		return f.FloatString(2)
	}

	labels := []struct {
		pat     string
		name    exif.FieldName
		printer func(*tiff.Tag) string
	}{
		{"Date: %s", exif.DateTimeOriginal, asString},
		{"Model: %s", exif.Model, asString},
		{"f/%s", exif.FNumber, asRatFloat},
		{"Exp: %s", exif.ExposureTime, asRatFloat},
		{"ISO: %s", exif.ISOSpeedRatings, asString},
	}

	var fields []string
	for _, label := range labels {
		if tag, err := ex.Get(label.name); err == nil {
			fields = append(fields, fmt.Sprintf(label.pat, label.printer(tag)))
		}
	}
	if len(fields) == 0 {
		return ""
	}
	return "Exif: " + strings.Join(fields, " ")
}
