// SPDX-License-Identifier: Unlicense OR MIT

package main

// A radial menu in a Gio window. Tapped items are shown above the menu.

import (
	_ "embed"
	"flag"
	"image/color"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	giowidget "gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/spiderui/spider/menudef"
	"github.com/spiderui/spider/widget"
)

//go:embed menu.yaml
var builtin []byte

var defFile = flag.String("menu", "", "menu definition `file`")

func main() {
	flag.Parse()
	d, err := definition()
	if err != nil {
		log.Fatal(err)
	}
	go func() {
		w := new(app.Window)
		w.Option(app.Title("Spider"), app.Size(unit.Dp(480), unit.Dp(560)))
		if err := loop(w, d); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func definition() (*menudef.Definition, error) {
	if *defFile != "" {
		return menudef.Load(*defFile)
	}
	return menudef.Parse(builtin)
}

func loop(w *app.Window, d *menudef.Definition) error {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	// The radii are in dp; Menu scales them to the window.
	cfg := d.Config(1)
	m := widget.New(cfg)
	m.ItemRadius = unit.Dp(cfg.ItemRadius)
	m.CenterRadius = unit.Dp(cfg.CenterRadius)
	m.Theme = th
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	err := m.SetEntries(d.Entries(func(it menudef.Item) any {
		bg, _ := menudef.ParseColor(it.Color)
		return widget.Look{Background: bg, Foreground: white}
	}))
	if err != nil {
		return err
	}
	status := "Tap an item"
	m.SetClickListener(func(payload string) {
		status = payload
	})

	var (
		ops    op.Ops
		reopen giowidget.Clickable
	)
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			if reopen.Clicked(gtx) {
				m.Open()
			}
			layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(12)).Layout(gtx, material.H6(th, status).Layout)
				}),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Center.Layout(gtx, m.Layout)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(12)).Layout(gtx, material.Button(th, &reopen, "Open").Layout)
				}),
			)
			e.Frame(gtx.Ops)
		}
	}
}
