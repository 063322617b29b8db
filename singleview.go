package main

import (
	"fmt"
	"image"
	"log"
	"strings"

	draw9 "9fans.net/go/draw"
)

// detailCacheSize is how many full size images the detail view keeps: the
// current one and its neighbours.
const detailCacheSize = 3

// SingleView is a View that shows one product at large scale.
type SingleView struct {
	items    []*Item
	images   []*ItemImage
	cache    *ImageCache[*ItemImage]
	browser  *Browser
	at       int
	area     image.Rectangle
	showInfo bool
	buttons  int

	dctl *DisplayControl
}

// NewSingleView shows items[at]. The arrows cycle through items.
func NewSingleView(items []*Item, at int, r image.Rectangle, browser *Browser) *SingleView {
	return &SingleView{
		items:    items,
		browser:  browser,
		at:       at,
		area:     r,
		showInfo: true,
	}
}

// Item returns the product shown.
func (sv *SingleView) Item() *Item {
	return sv.items[sv.at]
}

func (sv *SingleView) resetCache() {
	if sv.cache != nil {
		sv.cache.Free()
	}
	sv.images = make([]*ItemImage, len(sv.items))
	for i, item := range sv.items {
		sv.images[i] = NewItemImage(item, func(img image.Image) (*draw9.Image, error) {
			return FitBest(sv.dctl.display, img, sv.area)
		})
	}
	cache, err := NewImageCache[*ItemImage]("detail", detailCacheSize)
	if err != nil {
		log.Fatalf("detail: %v", err)
	}
	sv.cache = cache
}

func (sv *SingleView) Connect(dctl *DisplayControl) {
	sv.dctl = dctl
	sv.resetCache()
}

func (sv *SingleView) Attach(r image.Rectangle) {
	if r.Eq(sv.area) {
		return
	}

	sv.dctl.showWaitingAndCall(func() {
		sv.dctl.cls()
		sv.area = r
		sv.resetCache()
	})
}

func (sv *SingleView) Free() {
	if sv.cache != nil {
		sv.cache.Free()
		sv.cache = nil
	}
}

// step moves d products forward, wrapping around the list.
func (sv *SingleView) step(d int) {
	sv.at = floorMod(sv.at+d, len(sv.items))
}

func (sv *SingleView) Handle() View {
	bt2menu := &draw9.Menu{
		Item: []string{"info", "mark", "plumb", "back"},
	}

	dctl := sv.dctl
	sv.paint(dctl)
	for {
		select {
		case err := <-dctl.errch:
			log.Printf("display: %v", err)
		case k := <-dctl.kctl.C:
			switch k {
			case 'q', 'b', escKey: // back
				return nil
			case leftArrowKey: // prev product
				sv.step(-1)
				sv.paint(dctl)
			case rightArrowKey, ' ': // next product
				sv.step(1)
				sv.paint(dctl)
			case 'i': // info
				sv.showInfo = !sv.showInfo
				sv.paint(dctl)
			case 'm': // mark
				sv.browser.ToggleMark(sv.Item())
				sv.paint(dctl)
			case 'p': // plumb
				plumbImage(sv.Item().Src)
			}
		case dctl.mctl.Mouse = <-dctl.mctl.C:
			prev := sv.buttons
			sv.buttons = dctl.mctl.Mouse.Buttons
			if sv.buttons&^prev == 0 {
				break // releases and motion
			}
			switch sv.buttons {
			case 1: // prev product
				sv.step(-1)
				sv.paint(dctl)
			case 2: // view menu
				sv.buttons = 0
				switch draw9.MenuHit(2, dctl.mctl, bt2menu, nil) {
				case 0: // info
					sv.showInfo = !sv.showInfo
					sv.paint(dctl)
				case 1: // mark
					sv.browser.ToggleMark(sv.Item())
					sv.paint(dctl)
				case 2: // plumb
					plumbImage(sv.Item().Src)
				case 3: // back
					return nil
				}
			case 4: // next product
				sv.step(1)
				sv.paint(dctl)
			}
		case <-dctl.mctl.Resize:
			if err := dctl.display.Attach(draw9.RefNone); err != nil {
				log.Fatalf("display: failed to attach: %v", err)
			}
			sv.Attach(dctl.display.Image.Bounds())
			sv.paint(dctl)
		}
	}
}

func (sv *SingleView) paint(dctl *DisplayControl) {
	dctl.display.Image.Draw(dctl.display.Image.Bounds(), dctl.bgColor, nil, image.Point{})

	current := sv.images[sv.at]
	var err error
	dctl.showWaitingAndCall(func() {
		err = sv.cache.At(current)
	})
	if len(sv.images) > 1 {
		sv.cache.Prefetch(sv.images[floorMod(sv.at+1, len(sv.images))])
	}

	font := dctl.display.Font
	window := dctl.display.Image

	var text []string
	if sv.showInfo {
		text = sv.infoLines(current)
	}
	imgR := sv.area
	imgR.Min.Y += (len(text) + 1) * font.Height
	if err == nil {
		err = current.Display(func(img *draw9.Image) {
			window.Draw(bestFit(imgR, img.Bounds()), img, nil, img.Bounds().Min)
		})
	}
	if err != nil {
		log.Printf("singleView: image not ready: %v", err)
		paintMessage(dctl, imgR, sv.Item().Name)
	}

	if sv.browser.IsMarked(sv.Item()) {
		mr := image.Rect(window.Bounds().Max.X-50, window.Bounds().Min.Y,
			window.Bounds().Max.X, window.Bounds().Min.Y+font.Height)
		window.Draw(mr, dctl.borderColor, nil, image.Point{})
	}
	p := sv.area.Min
	for _, line := range text {
		window.String(p, dctl.fontColor, image.Point{}, font, line)
		p.Y += font.Height
	}

	if err := dctl.display.Flush(); err != nil {
		log.Printf("display: flush: %v", err)
	}
}

// infoLines describes the product: position, name and price, tags, source
// and the EXIF summary of the image when loaded.
func (sv *SingleView) infoLines(img *ItemImage) []string {
	item := img.Item
	lines := []string{fmt.Sprintf("%d/%d %s", sv.at+1, len(sv.items), item.Label())}
	var tags []string
	for _, cat := range tagCategories {
		if v := item.Tags[cat.key]; v != "" {
			tags = append(tags, cat.name+": "+v)
		}
	}
	if len(tags) > 0 {
		lines = append(lines, strings.Join(tags, "  "))
	}
	if item.Src != "" {
		lines = append(lines, item.Src)
	}
	if exif := img.Exif(); exif != "" {
		lines = append(lines, exif)
	}
	return lines
}
