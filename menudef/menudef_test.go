// SPDX-License-Identifier: Unlicense OR MIT

package menudef

import (
	"errors"
	"image/color"
	"io/fs"
	"testing"
	"time"

	"github.com/spiderui/spider/menu"
	"github.com/spiderui/spider/spring"
)

func TestLoad(t *testing.T) {
	d, err := Load("testdata/menu.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if d.ItemRadius != 60 || d.CenterRadius != 90 {
		t.Errorf("radii = %v, %v", d.ItemRadius, d.CenterRadius)
	}
	if d.OpenDelay == nil || *d.OpenDelay != 500*time.Millisecond {
		t.Errorf("open delay = %v", d.OpenDelay)
	}
	if len(d.Items) != 4 {
		t.Fatalf("%d items", len(d.Items))
	}

	var seen []string
	entries := d.Entries(func(it Item) any {
		seen = append(seen, it.Label)
		return it.Color
	})
	want := []menu.Entry{
		{Kind: menu.Center, Label: "Menu", Payload: "menu", Visual: "#3f51b5"},
		{Kind: menu.Radial, Label: "Cloud", Payload: "Cloud", Visual: "#009688"},
		{Kind: menu.Radial, Label: "Mail", Payload: "mail", Visual: "#ff5722cc"},
		{Kind: menu.Radial, Label: "Camera", Payload: "Camera", Visual: ""},
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
	if len(seen) != 4 {
		t.Errorf("visual called for %v", seen)
	}
	c := menu.New(d.Config(1))
	if err := c.SetEntries(entries); err != nil {
		t.Errorf("SetEntries: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("testdata/missing.yaml"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v", err)
	}
}

func TestConfig(t *testing.T) {
	d, err := Load("testdata/menu.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cfg := d.Config(2)
	if cfg.ItemRadius != 120 || cfg.CenterRadius != 180 {
		t.Errorf("radii = %d, %d", cfg.ItemRadius, cfg.CenterRadius)
	}
	ch := cfg.Choreo
	if ch.OpenDelay != 500*time.Millisecond || ch.ReleaseDuration != 300*time.Millisecond || ch.CollapseDuration != 200*time.Millisecond {
		t.Errorf("durations = %+v", ch)
	}
	if ch.CenterOpen != (spring.Config{Tension: 350, Friction: 12}) || ch.CenterClose != ch.CenterOpen {
		t.Errorf("center springs = %+v, %+v", ch.CenterOpen, ch.CenterClose)
	}
	if ch.RadialPulse != (spring.Config{Tension: 180, Friction: 9}) {
		t.Errorf("pulse spring = %+v", ch.RadialPulse)
	}
}

func TestDefaults(t *testing.T) {
	d, err := Parse([]byte(`
items:
  - kind: center
  - kind: radial
    label: A
`))
	if err != nil {
		t.Fatal(err)
	}
	cfg := d.Config(1.5)
	if cfg.ItemRadius != 105 || cfg.CenterRadius != 150 {
		t.Errorf("radii = %d, %d", cfg.ItemRadius, cfg.CenterRadius)
	}
	if cfg.Choreo.OpenDelay != 0 {
		t.Errorf("open delay = %v, want the default", cfg.Choreo.OpenDelay)
	}
	if es := d.Entries(nil); es[1].Visual != nil || es[1].Payload != "A" {
		t.Errorf("entry = %+v", es[1])
	}
}

func TestNoOpenDelay(t *testing.T) {
	for _, delay := range []string{"0s", "0ms"} {
		d, err := Parse([]byte("open_delay: " + delay + "\nitems: [{kind: center}, {kind: radial}]\n"))
		if err != nil {
			t.Fatalf("%s: %v", delay, err)
		}
		if got := d.Config(1).Choreo.OpenDelay; got >= 0 {
			t.Errorf("%s: open delay = %v, want none", delay, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		err  error
	}{
		{"empty", ``, ErrInvalid},
		{"syntax", `items: [`, ErrInvalid},
		{"unknown field", "size: 3\nitems: [{kind: center}, {kind: radial}]", ErrInvalid},
		{"few items", "items: [{kind: center}]", ErrInvalid},
		{"bad kind", "items: [{kind: center}, {kind: spoke}]", ErrInvalid},
		{"bad color", "items: [{kind: center, color: red}, {kind: radial}]", ErrInvalid},
		{"bad duration", "release: fast\nitems: [{kind: center}, {kind: radial}]", ErrInvalid},
		{"bad radius", "item_radius: -4\nitems: [{kind: center}, {kind: radial}]", ErrInvalid},
		{"bad spring", "pulse_spring: {tension: 0}\nitems: [{kind: center}, {kind: radial}]", ErrInvalid},
		{"no center", "items: [{kind: radial}, {kind: radial}]", menu.ErrNoCenter},
		{"two centers", "items: [{kind: center}, {kind: radial}, {kind: center}]", menu.ErrManyCenters},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if !errors.Is(err, tc.err) {
				t.Errorf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestDuplicateCenterIndex(t *testing.T) {
	_, err := Parse([]byte("items: [{kind: center}, {kind: radial}, {kind: center}]"))
	var cerr *menu.ConfigError
	if !errors.As(err, &cerr) || cerr.Index != 2 {
		t.Errorf("got %v, want an error for item 2", err)
	}
}

func TestParseColor(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"", color.NRGBA{}, true},
		{"#3f51b5", color.NRGBA{R: 0x3f, G: 0x51, B: 0xb5, A: 0xff}, true},
		{"#ff572280", color.NRGBA{R: 0xff, G: 0x57, B: 0x22, A: 0x80}, true},
		{"3f51b5", color.NRGBA{}, false},
		{"#3f51", color.NRGBA{}, false},
		{"#zzzzzz", color.NRGBA{}, false},
	} {
		got, err := ParseColor(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("ParseColor(%q) = %v, %v", tc.in, got, err)
		}
	}
}
