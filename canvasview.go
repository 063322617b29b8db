package main

import (
	"fmt"
	"image"
	"log"
	"slices"
	"time"

	draw9 "9fans.net/go/draw"
)

const (
	// frameInterval paces animation frames.
	frameInterval = 16 * time.Millisecond
	// wheelStep is the wheel delta of one wheel click, in pixels.
	wheelStep = 100
	// maxCachedImages bounds the loaded tile images.
	maxCachedImages = 256
)

// CanvasView shows the displayed products on an infinite canvas. Dragging,
// the wheel and the arrow keys move the canvas; the tile nearest to the
// center is focused and described at the bottom of the window.
type CanvasView struct {
	browser *Browser
	ctl     *Controller
	tweens  *Tweener
	overlay Overlay

	images   map[string]*ItemImage
	thumbs   *ImageCache[*ItemImage]
	tileSize image.Point // the size images are scaled for
	area     image.Rectangle

	settled     bool
	interacting bool
	buttons     int // mouse buttons of the last event

	dctl *DisplayControl
}

// NewCanvasView returns a canvas for the products of the browser. The overlay
// is optional.
func NewCanvasView(browser *Browser, settings Settings, overlay Overlay) *CanvasView {
	cv := &CanvasView{
		browser: browser,
		tweens:  NewTweener(time.Now),
		overlay: overlay,
		settled: true,
	}
	cv.ctl = NewController(cv.tweens, settings, Events{
		FocusedItemChange: func(item *Item) {
			browser.SetFocused(item)
		},
		SettledChange: func(settled bool) {
			cv.settled = settled
		},
		InteractingChange: func(interacting bool) {
			cv.interacting = interacting
		},
		TileClick: func(t Tile) {
			if *verbose {
				log.Printf("canvas: click %s", t.UniqueID)
			}
		},
	})
	cv.ctl.SetItems(browser.Displayed())
	return cv
}

func (cv *CanvasView) Connect(dctl *DisplayControl) {
	cv.dctl = dctl
	cv.resetCache()
}

func (cv *CanvasView) Attach(r image.Rectangle) {
	if r.Eq(cv.area) {
		return
	}
	cv.area = r
	cv.ctl.Resize(float64(r.Dx()), float64(r.Dy()))
	cv.resetCache()
}

func (cv *CanvasView) Free() {
	if cv.thumbs != nil {
		cv.thumbs.Free()
		cv.thumbs = nil
	}
}

// resetCache makes a new image cache when the tile size changed.
func (cv *CanvasView) resetCache() {
	if cv.dctl == nil {
		return
	}
	l := cv.ctl.Layout()
	size := image.Pt(int(l.TileWidth), int(l.TileHeight))
	if size.X <= 0 || size.Y <= 0 || (cv.thumbs != nil && size == cv.tileSize) {
		return
	}
	cv.Free()
	cv.tileSize = size
	cv.images = NewItemImages(cv.browser.All(), func(img image.Image) (*draw9.Image, error) {
		return FitFast(cv.dctl.display, img, image.Rectangle{image.Point{}, size})
	})
	thumbs, err := NewImageCache[*ItemImage]("tiles", max(1, min(len(cv.images), maxCachedImages)))
	if err != nil {
		log.Fatalf("canvas: %v", err)
	}
	cv.thumbs = thumbs
}

// Handle handles mouse and keyboard actions
func (cv *CanvasView) Handle() View {
	dctl := cv.dctl
	frames := time.NewTicker(frameInterval)
	defer frames.Stop()

	cv.paint()
	for {
		var frameC <-chan time.Time
		if cv.tweens.Active() {
			frameC = frames.C
		}
		select {
		case err := <-dctl.errch:
			log.Printf("display: %v", err)
		case now := <-frameC:
			cv.tweens.Tick(now)
			cv.paint()
		case k := <-dctl.kctl.C:
			v, quit := cv.key(k)
			if quit || v != nil {
				return v
			}
			cv.paint()
		case dctl.mctl.Mouse = <-dctl.mctl.C:
			v, quit := cv.mouse(dctl.mctl.Mouse)
			if quit || v != nil {
				return v
			}
			cv.paint()
		case <-dctl.mctl.Resize:
			if err := dctl.display.Attach(draw9.RefNone); err != nil {
				log.Fatalf("display: failed to attach: %v", err)
			}
			cv.Attach(dctl.display.Image.Bounds())
			cv.paint()
		}
	}
}

// key handles a key press. It returns a view to push or whether to quit.
func (cv *CanvasView) key(k rune) (View, bool) {
	switch k {
	case 'q', escKey:
		return nil, true
	case upArrowKey:
		cv.ctl.Key(Up)
	case downArrowKey:
		cv.ctl.Key(Down)
	case leftArrowKey:
		cv.ctl.Key(Left)
	case rightArrowKey:
		cv.ctl.Key(Right)
	case '\n':
		return cv.detail(), false
	case 'm':
		cv.browser.ToggleMark(cv.browser.Focused())
	case 'p':
		if item := cv.browser.Focused(); item != nil {
			plumbImage(item.Src)
		}
	case 'n':
		cv.nextMarked()
	case '1', '2', '3':
		if cv.browser.TogglePin(tagCategories[k-'1'].key) {
			cv.refresh()
		}
	case 's':
		if cv.browser.FindSimilar() {
			cv.refresh()
		}
	case 'u':
		cv.previous()
	case 'r':
		cv.browser.Restart()
		cv.refresh()
	}
	return nil, false
}

// mouse handles a mouse event. Button 1 drags or clicks, button 2 opens the
// menu, button 3 marks the tile under the pointer.
func (cv *CanvasView) mouse(m draw9.Mouse) (View, bool) {
	p := localPoint(cv.area, m.Point)
	t := time.Time{}.Add(time.Duration(m.Msec) * time.Millisecond)
	prev := cv.buttons
	cv.buttons = m.Buttons
	pressed := func(b int) bool { return m.Buttons&b != 0 && prev&b == 0 }

	switch {
	case pressed(1):
		cv.ctl.PointerDown(1, p, t)
	case m.Buttons&1 != 0:
		cv.ctl.PointerMove(1, p, t)
	case prev&1 != 0:
		cv.ctl.PointerUp(1, p, t)
	case pressed(2):
		cv.buttons = 0 // the menu consumes the release
		return cv.menu()
	case pressed(4):
		if tile, ok := cv.ctl.Window().TileAt(p); ok {
			cv.browser.ToggleMark(tile.Item)
		}
	case pressed(scrollWheelUp):
		cv.ctl.Wheel(Vec{0, -wheelStep})
	case pressed(scrollWheelDown):
		cv.ctl.Wheel(Vec{0, wheelStep})
	}
	return nil, false
}

// menu shows the button 2 menu: pins, history, product actions, and every
// tag value of the catalog to pin directly.
func (cv *CanvasView) menu() (View, bool) {
	pins := cv.browser.Pins()
	var items []string
	for _, cat := range tagCategories {
		items = append(items, "pin "+pinLabel(pins, cat.key, cat.name))
	}
	actions := []string{"", "similar", "previous", "restart", "", "mark", "next marked", "plumb", "detail", "exit"}
	items = append(items, actions...)

	type swap struct{ cat, value string }
	var swaps []swap
	options := TagOptions(cv.browser.All())
	for _, cat := range tagCategories {
		for _, v := range options[cat.key] {
			if len(swaps) == 0 {
				items = append(items, "")
			}
			items = append(items, cat.name+"="+v)
			swaps = append(swaps, swap{cat.key, v})
		}
	}

	hit := draw9.MenuHit(2, cv.dctl.mctl, &draw9.Menu{Item: items}, nil)
	if hit < 0 {
		return nil, false
	}
	if hit < len(tagCategories) {
		if cv.browser.TogglePin(tagCategories[hit].key) {
			cv.refresh()
		}
		return nil, false
	}
	if i := hit - len(tagCategories) - len(actions) - 1; i >= 0 {
		cv.browser.SwapTag(swaps[i].cat, swaps[i].value)
		cv.refresh()
		return nil, false
	}
	switch items[hit] {
	case "similar":
		if cv.browser.FindSimilar() {
			cv.refresh()
		}
	case "previous":
		cv.previous()
	case "restart":
		cv.browser.Restart()
		cv.refresh()
	case "mark":
		cv.browser.ToggleMark(cv.browser.Focused())
	case "next marked":
		cv.nextMarked()
	case "plumb":
		if item := cv.browser.Focused(); item != nil {
			plumbImage(item.Src)
		}
	case "detail":
		return cv.detail(), false
	case "exit":
		return nil, true
	}
	return nil, false
}

// refresh gives the canvas the items of the browser and focuses the item the
// browser asks for.
func (cv *CanvasView) refresh() {
	want := cv.browser.Focused()
	cv.ctl.SetItems(cv.browser.Displayed())
	if want != nil {
		cv.ctl.FocusItem(want.ID, false)
	}
}

// focus centers the canvas on the item without animation.
func (cv *CanvasView) focus(item *Item) {
	if item != nil {
		cv.ctl.FocusItem(item.ID, false)
	}
}

// nextMarked moves the canvas to the next marked product.
func (cv *CanvasView) nextMarked() {
	if item := cv.browser.NextMarked(); item != nil {
		cv.ctl.FocusItem(item.ID, true)
	}
}

func (cv *CanvasView) previous() {
	if err := cv.browser.Previous(); err != nil {
		log.Printf("canvas: %v", err)
		return
	}
	cv.refresh()
}

// detail returns the single view of the focused product.
func (cv *CanvasView) detail() View {
	item := cv.browser.Focused()
	if item == nil {
		return nil
	}
	items := cv.browser.Displayed()
	at := slices.IndexFunc(items, func(it *Item) bool { return it.ID == item.ID })
	if at < 0 {
		return nil
	}
	return NewSingleView(items, at, cv.area, cv.browser)
}

func (cv *CanvasView) paint() {
	dctl := cv.dctl
	screen := dctl.display.Image
	screen.Draw(screen.Bounds(), dctl.bgColor, nil, image.Point{})

	w := cv.ctl.Window()
	if w.Empty() {
		msg := "Loading products..."
		if len(cv.browser.Displayed()) == 0 {
			msg = "No matching products. Try adjusting filters."
		}
		paintMessage(dctl, cv.area, msg)
		cv.flush()
		return
	}

	var onscreen []Tile
	var offscreen []*ItemImage
	for t := range w.Tiles() {
		if tileRect(cv.area, w.Pan, t.Placement).Overlaps(cv.area) {
			onscreen = append(onscreen, t)
		} else if img := cv.images[t.Item.ID]; img != nil && !slices.Contains(offscreen, img) {
			offscreen = append(offscreen, img)
		}
	}

	load := func(item *Item) *ItemImage {
		img := cv.images[item.ID]
		if img == nil {
			return nil
		}
		if cv.interacting && !cv.thumbs.Loaded(img) {
			// do not stall animation frames on file loads
			cv.thumbs.Prefetch(img)
			return nil
		}
		if err := cv.thumbs.At(img); err != nil {
			return nil
		}
		return img
	}
	paintTiles(dctl, cv.area, w.Pan, onscreen, load, cv.browser.IsMarked)
	cv.thumbs.Prefetch(offscreen...)

	paintInfo(dctl, cv.area, cv.browser, cv.settled && !cv.interacting)
	if cv.overlay != nil {
		cv.overlay.Paint(dctl, cv.area, w)
	}
	cv.flush()
}

func (cv *CanvasView) flush() {
	if err := cv.dctl.display.Flush(); err != nil {
		log.Printf("display: flush: %v", err)
	}
}

// pinLabel describes the pin of a category for the menu and the info line.
func pinLabel(pins Pins, cat string, name string) string {
	if v, ok := pins[cat]; ok {
		return fmt.Sprintf("%s: %s*", name, v)
	}
	return name
}
