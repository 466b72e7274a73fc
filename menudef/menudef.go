// SPDX-License-Identifier: Unlicense OR MIT

// Package menudef loads radial menu definitions from YAML documents.
//
// A definition looks like
//
//	item_radius: 70       # dp
//	center_radius: 100    # dp
//	open_delay: 1s
//	release: 350ms
//	collapse: 250ms
//	center_spring: {tension: 400, friction: 10}
//	pulse_spring: {tension: 200, friction: 10}
//	items:
//	  - {kind: center, label: Menu, payload: menu, color: "#3f51b5"}
//	  - {kind: radial, label: Cloud, color: "#009688"}
//
// Every field but items is optional. An open_delay of 0s disables the
// delay.
package menudef

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/spiderui/spider/choreo"
	"github.com/spiderui/spider/menu"
	"github.com/spiderui/spider/spring"
)

//go:embed schema.json
var schema []byte

// ErrInvalid is returned for documents that do not match the schema.
var ErrInvalid = errors.New("menudef: invalid definition")

// Spring is the YAML form of a spring configuration.
type Spring struct {
	Tension  float64 `yaml:"tension"`
	Friction float64 `yaml:"friction"`
}

// Item is one menu item.
type Item struct {
	Kind    string `yaml:"kind"`
	Label   string `yaml:"label"`
	Payload string `yaml:"payload"`
	Color   string `yaml:"color"`
}

// Definition is a parsed menu definition.
type Definition struct {
	ItemRadius   float32        `yaml:"item_radius"`
	CenterRadius float32        `yaml:"center_radius"`
	OpenDelay    *time.Duration `yaml:"open_delay"`
	Release      time.Duration  `yaml:"release"`
	Collapse     time.Duration  `yaml:"collapse"`
	CenterSpring *Spring        `yaml:"center_spring"`
	PulseSpring  *Spring        `yaml:"pulse_spring"`
	Items        []Item         `yaml:"items"`
}

// Load reads and parses the definition in the named file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse validates and decodes a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	d := new(Definition)
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	center := -1
	for i, it := range d.Items {
		if _, err := ParseColor(it.Color); err != nil {
			return nil, &menu.ConfigError{Index: i, Err: err}
		}
		if it.Kind != "center" {
			continue
		}
		if center >= 0 {
			return nil, &menu.ConfigError{Index: i, Err: menu.ErrManyCenters}
		}
		center = i
	}
	if center < 0 {
		return nil, &menu.ConfigError{Index: -1, Err: menu.ErrNoCenter}
	}
	return d, nil
}

func validate(doc map[string]interface{}) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !res.Valid() {
		var errs []string
		for _, desc := range res.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Entries converts the items to menu entries. The visual function, if
// not nil, supplies the visual of every item.
func (d *Definition) Entries(visual func(Item) any) []menu.Entry {
	entries := make([]menu.Entry, len(d.Items))
	for i, it := range d.Items {
		e := menu.Entry{
			Kind:    menu.Radial,
			Label:   it.Label,
			Payload: it.Payload,
		}
		if it.Kind == "center" {
			e.Kind = menu.Center
		}
		if e.Payload == "" {
			e.Payload = it.Label
		}
		if visual != nil {
			e.Visual = visual(it)
		}
		entries[i] = e
	}
	return entries
}

// Config returns the container configuration for a display with
// pxPerDp pixels per dp.
func (d *Definition) Config(pxPerDp float32) menu.Config {
	if pxPerDp <= 0 {
		pxPerDp = 1
	}
	px := func(dp, def float32) int {
		if dp <= 0 {
			dp = def
		}
		return int(math.Round(float64(dp * pxPerDp)))
	}
	cfg := menu.Config{
		ItemRadius:   px(d.ItemRadius, 70),
		CenterRadius: px(d.CenterRadius, 100),
		Choreo: choreo.Config{
			ReleaseDuration:  d.Release,
			CollapseDuration: d.Collapse,
		},
	}
	if d.OpenDelay != nil {
		cfg.Choreo.OpenDelay = *d.OpenDelay
		if cfg.Choreo.OpenDelay == 0 {
			cfg.Choreo.OpenDelay = -1
		}
	}
	if s := d.CenterSpring; s != nil {
		cfg.Choreo.CenterOpen = spring.Config{Tension: s.Tension, Friction: s.Friction}
		cfg.Choreo.CenterClose = cfg.Choreo.CenterOpen
	}
	if s := d.PulseSpring; s != nil {
		cfg.Choreo.RadialPulse = spring.Config{Tension: s.Tension, Friction: s.Friction}
	}
	return cfg
}

// ParseColor parses a #rrggbb or #rrggbbaa color. The empty string is
// the zero color.
func ParseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 8 || err != nil || !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("menudef: invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
