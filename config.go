package main

import (
	"fmt"
	"log"
	"maps"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the contents of the catalog file.
//
//	[canvas]
//	buffer_factor = 0.8
//	wheel_sensitivity = 0.01
//	debug = false
//
//	[[product]]
//	id = "chair-1"
//	src = "images/chair.jpg"
//	name = "Oak chair"
//	price = "$120"
//	tags = { type = "chair", texture = "wood", color = "brown" }
type Config struct {
	Canvas   CanvasConfig    `toml:"canvas"`
	Products []ProductConfig `toml:"product"`

	dir string // relative image paths are resolved against it
}

// CanvasConfig overrides the motion settings. Zero values keep the defaults.
type CanvasConfig struct {
	BufferFactor     float64 `toml:"buffer_factor"`
	WheelSensitivity float64 `toml:"wheel_sensitivity"`
	SnapMs           int     `toml:"snap_ms"`
	CoastMs          int     `toml:"coast_ms"`
	StepMs           int     `toml:"step_ms"`
	WheelMs          int     `toml:"wheel_ms"`
	Debug            bool    `toml:"debug"`
}

// ProductConfig is one product entry.
type ProductConfig struct {
	ID    string            `toml:"id"`
	Src   string            `toml:"src"`
	Alt   string            `toml:"alt"`
	Name  string            `toml:"name"`
	Price string            `toml:"price"`
	Tags  map[string]string `toml:"tags"`
}

// LoadConfig reads the catalog file at path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	warnUndecoded(md)
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// ParseConfig decodes a catalog from data. Relative image paths are resolved
// against dir.
func ParseConfig(data, dir string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	warnUndecoded(md)
	cfg.dir = dir
	return &cfg, nil
}

func warnUndecoded(md toml.MetaData) {
	for _, key := range md.Undecoded() {
		log.Printf("config: unknown key %s", key)
	}
}

// Settings returns the default settings with the overrides of c.
func (c CanvasConfig) Settings() Settings {
	s := DefaultSettings()
	if c.BufferFactor > 0 {
		s.Buffer = c.BufferFactor
	}
	if c.WheelSensitivity > 0 {
		s.WheelSensitivity = c.WheelSensitivity
	}
	ms := func(n int, d *time.Duration) {
		if n > 0 {
			*d = time.Duration(n) * time.Millisecond
		}
	}
	ms(c.SnapMs, &s.SnapDuration)
	ms(c.CoastMs, &s.CoastDuration)
	ms(c.StepMs, &s.StepDuration)
	ms(c.WheelMs, &s.WheelDuration)
	return s
}

// item returns the catalog item of the entry. A missing id defaults to src.
func (p ProductConfig) item(dir string) (*Item, error) {
	id := p.ID
	if id == "" {
		id = p.Src
	}
	if id == "" {
		return nil, errNoProductID
	}
	src := p.Src
	if src != "" && !filepath.IsAbs(src) {
		src = filepath.Join(dir, src)
	}
	name := p.Name
	if name == "" {
		name = id
	}
	return &Item{
		ID:    id,
		Src:   src,
		Alt:   p.Alt,
		Name:  name,
		Price: p.Price,
		Tags:  maps.Clone(p.Tags),
	}, nil
}
