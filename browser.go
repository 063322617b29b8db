package main

import (
	"errors"
	"maps"
	"slices"
)

// historySize is how many snapshots Previous can go back.
const historySize = 10

var errNoHistory = errors.New("no previous state")

// Pins are the pinned tag value of every category. A missing category is
// not pinned.
type Pins map[string]string

// snapshot is one entry of the undo history.
type snapshot struct {
	items   []*Item
	pins    Pins
	focusID string
}

// Browser holds the catalog and the filtering state around the canvas. It
// decides which items the canvas shows; the canvas decides which is focused.
type Browser struct {
	all       []*Item
	displayed []*Item
	pins      Pins
	focused   *Item
	history   []snapshot
	marked    map[string]bool
}

// NewBrowser returns a browser showing the whole catalog.
func NewBrowser(all []*Item) *Browser {
	return &Browser{
		all:       all,
		displayed: all,
		pins:      Pins{},
		marked:    make(map[string]bool),
	}
}

// All returns the whole catalog.
func (b *Browser) All() []*Item { return b.all }

// Displayed returns the items the canvas should show.
func (b *Browser) Displayed() []*Item { return b.displayed }

// Pins returns the pinned tags.
func (b *Browser) Pins() Pins { return maps.Clone(b.pins) }

// Focused returns the item focused on the canvas.
func (b *Browser) Focused() *Item { return b.focused }

// SetFocused records the item focused on the canvas.
func (b *Browser) SetFocused(item *Item) { b.focused = item }

// HistoryLen returns how many states Previous can restore.
func (b *Browser) HistoryLen() int { return len(b.history) }

func (b *Browser) push() {
	s := snapshot{items: b.displayed, pins: maps.Clone(b.pins)}
	if b.focused != nil {
		s.focusID = b.focused.ID
	}
	b.history = append(b.history, s)
	if len(b.history) > historySize {
		b.history = slices.Delete(b.history, 0, len(b.history)-historySize)
	}
}

// TogglePin pins the focused item's value of the category, or unpins it if
// that value is already pinned. It returns false if there is nothing to pin.
func (b *Browser) TogglePin(category string) bool {
	if b.focused == nil {
		return false
	}
	value := b.focused.Tags[category]
	if value == "" && b.pins[category] == "" {
		return false
	}
	b.push()
	if value != "" && b.pins[category] != value {
		b.pins[category] = value
	} else {
		delete(b.pins, category)
	}
	b.filter()
	return true
}

// SwapTag pins value for the category.
func (b *Browser) SwapTag(category, value string) {
	b.push()
	b.pins[category] = value
	b.filter()
}

// filter shows the items matching every pin. When nothing matches, the first
// item of the catalog is shown alone.
func (b *Browser) filter() {
	var out []*Item
	for _, item := range b.all {
		if b.matches(item) {
			out = append(out, item)
		}
	}
	if len(out) == 0 && len(b.all) > 0 {
		out = b.all[:1]
	}
	b.displayed = out
}

func (b *Browser) matches(item *Item) bool {
	for k, v := range b.pins {
		if item.Tags[k] != v {
			return false
		}
	}
	return true
}

// FindSimilar clears the pins and shows the whole catalog. The first item
// becomes the focus.
func (b *Browser) FindSimilar() bool {
	if b.focused == nil {
		return false
	}
	b.push()
	b.reset()
	return true
}

func (b *Browser) reset() {
	b.pins = Pins{}
	b.displayed = b.all
	b.focused = nil
	if len(b.all) > 0 {
		b.focused = b.all[0]
	}
}

// Previous restores the state before the last change.
func (b *Browser) Previous() error {
	if len(b.history) == 0 {
		return errNoHistory
	}
	s := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.displayed = s.items
	b.pins = s.pins
	b.focused = nil
	if i := slices.IndexFunc(s.items, func(it *Item) bool { return it.ID == s.focusID }); i >= 0 {
		b.focused = s.items[i]
	} else if len(s.items) > 0 {
		b.focused = s.items[0]
	} else if len(b.all) > 0 {
		b.focused = b.all[0]
	}
	return nil
}

// Restart shows the whole catalog and forgets the history.
func (b *Browser) Restart() {
	b.reset()
	b.history = nil
}

// ToggleMark marks or unmarks the item.
func (b *Browser) ToggleMark(item *Item) {
	if item == nil {
		return
	}
	if b.marked[item.ID] {
		delete(b.marked, item.ID)
	} else {
		b.marked[item.ID] = true
	}
}

// IsMarked reports whether the item is marked.
func (b *Browser) IsMarked(item *Item) bool {
	return item != nil && b.marked[item.ID]
}

// NextMarked returns the first marked item of the displayed list after the
// focused one, wrapping around. It returns nil when none is marked.
func (b *Browser) NextMarked() *Item {
	n := len(b.displayed)
	at := -1
	if b.focused != nil {
		at = slices.IndexFunc(b.displayed, func(it *Item) bool { return it.ID == b.focused.ID })
	}
	for i := 1; i <= n; i++ {
		if item := b.displayed[floorMod(at+i, n)]; b.marked[item.ID] {
			return item
		}
	}
	return nil
}

// Marked returns the marked items in catalog order.
func (b *Browser) Marked() []*Item {
	var out []*Item
	for _, item := range b.all {
		if b.marked[item.ID] {
			out = append(out, item)
		}
	}
	return out
}
