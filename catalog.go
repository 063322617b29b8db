package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Item is a product of the catalog. Items are never modified after loading.
type Item struct {
	ID    string
	Src   string // path of the image file
	Alt   string
	Name  string
	Price string
	Tags  map[string]string // category -> value
}

// Tag categories, in display order.
const (
	tagType    = "type"
	tagTexture = "texture"
	tagColor   = "color"
)

// tagCategories lists the categories the browser filters on.
var tagCategories = []struct {
	key, name string
}{
	{tagType, "Category"},
	{tagTexture, "Material"},
	{tagColor, "Color"},
}

var (
	errEmptyCatalog = errors.New("empty catalog")
	errNoProductID  = errors.New("product without id or src")
)

// TagOptions returns the distinct values of every category, in the order they
// first appear in items.
func TagOptions(items []*Item) map[string][]string {
	options := make(map[string][]string)
	for _, cat := range tagCategories {
		options[cat.key] = nil
	}
	for _, item := range items {
		for k, v := range item.Tags {
			if v != "" && !slices.Contains(options[k], v) {
				options[k] = append(options[k], v)
			}
		}
	}
	return options
}

// Label returns the text shown for the item.
func (it *Item) Label() string {
	if it.Price == "" {
		return it.Name
	}
	return it.Name + " " + it.Price
}

// newItemOfPath makes an item for an image file without catalog entry.
func newItemOfPath(path string) *Item {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Item{ID: path, Src: path, Alt: name, Name: name}
}

var acceptedFormats = []string{".gif", ".jpg", ".jpeg", ".png", ".webp"}

// isImageFile checks the file suffix to check if it is an image.
func isImageFile(name string) bool {
	return slices.Contains(acceptedFormats, strings.ToLower(filepath.Ext(name)))
}

// addImagesOfPath adds the image at path, descending it if a directory.
func addImagesOfPath(name string) []*Item {
	info, err := os.Stat(name)
	if err != nil {
		log.Printf("addImagesOfPath: cannot stat file: %v", err)
		return nil
	}
	if info.IsDir() {
		return scanForImages(name)
	}
	if !info.Mode().IsRegular() {
		log.Printf("addImagesOfPath: ignoring special file %s", name)
		return nil
	}
	if !isImageFile(name) {
		return nil
	}
	return []*Item{newItemOfPath(name)}
}

// scanForImages walks dir and adds the images found.
func scanForImages(dir string) []*Item {
	var items []*Item

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			log.Printf("scanForImages: ignoring special file %s", path)
			return nil
		}
		if !isImageFile(path) {
			return nil
		}
		items = append(items, newItemOfPath(path))
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		log.Printf("scanForImages: %s: %v", dir, err)
	}

	return items
}

// dedupItems drops items whose id was already seen.
func dedupItems(items []*Item) []*Item {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		if seen[item.ID] {
			log.Printf("catalog: duplicate product %s", item.ID)
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

// loadCatalog returns the products of the config file, if any, followed by the
// images of the paths.
func loadCatalog(cfg *Config, paths []string) ([]*Item, error) {
	var items []*Item
	if cfg != nil {
		for i, p := range cfg.Products {
			item, err := p.item(cfg.dir)
			if err != nil {
				return nil, fmt.Errorf("catalog: product %d: %w", i, err)
			}
			items = append(items, item)
		}
	}
	for _, p := range paths {
		items = append(items, addImagesOfPath(p)...)
	}
	items = dedupItems(items)
	if len(items) == 0 {
		return nil, errEmptyCatalog
	}
	return items, nil
}
