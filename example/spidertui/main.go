// SPDX-License-Identifier: Unlicense OR MIT

package main

// A radial menu in the terminal. Click an item, press o to open the
// menu again and q to quit.

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/spiderui/spider/menu"
	"github.com/spiderui/spider/menudef"
	"github.com/spiderui/spider/term"
)

//go:embed menu.yaml
var builtin []byte

var (
	defFile = flag.String("menu", "", "menu definition `file`")
	density = flag.Float64("density", 0.15, "terminal pixels per dp")
)

func main() {
	flag.Parse()
	var (
		d   *menudef.Definition
		err error
	)
	if *defFile != "" {
		d, err = menudef.Load(*defFile)
	} else {
		d, err = menudef.Parse(builtin)
	}
	if err != nil {
		log.Fatal(err)
	}
	cfg := d.Config(float32(*density))
	cfg.Accept = term.Accept
	c := menu.New(cfg)
	err = c.SetEntries(d.Entries(func(it menudef.Item) any {
		col, _ := menudef.ParseColor(it.Color)
		if col.A == 0 {
			return nil
		}
		return tcell.NewRGBColor(int32(col.R), int32(col.G), int32(col.B))
	}))
	if err != nil {
		log.Fatal(err)
	}
	var taps []string
	c.SetClickListener(func(payload string) {
		taps = append(taps, payload)
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := term.Run(ctx, screen, c); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	for _, p := range taps {
		fmt.Println(p)
	}
}
