// Command nesmu runs the emulator against an iNES ROM file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fox-two/nesmu/internal/app"
	"github.com/fox-two/nesmu/internal/applog"
	"github.com/fox-two/nesmu/internal/graphics"
	"github.com/fox-two/nesmu/internal/ines"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "path to an iNES ROM file")
		configFile = flag.String("config", "", "path to a JSON config file (optional)")
		debug      = flag.Bool("debug", false, "enable verbose logging")
	)
	flag.Parse()

	if *romFile == "" {
		fmt.Println("usage: nesmu -rom <file.nes> [-config config.json] [-debug]")
		os.Exit(1)
	}

	cfg := app.NewConfig()
	if *configFile != "" {
		loaded, err := app.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	applog.SetVerbose(*debug || cfg.Debug.Verbose)

	rom, err := ines.Load(*romFile)
	if err != nil {
		log.Fatalf("loading rom: %v", err)
	}

	cart, err := rom.BuildMapper()
	if err != nil {
		log.Fatalf("building mapper: %v", err)
	}

	emu := app.New(cart)

	km := graphics.KeyMap{
		Up: cfg.Input.Up, Down: cfg.Input.Down, Left: cfg.Input.Left, Right: cfg.Input.Right,
		A: cfg.Input.A, B: cfg.Input.B, Start: cfg.Input.Start, Select: cfg.Input.Select,
	}
	game, err := graphics.New(emu, km, cfg.Window.Scale)
	if err != nil {
		log.Fatalf("building game window: %v", err)
	}

	if err := graphics.Run(game, "nesmu - "+*romFile); err != nil {
		log.Fatalf("running emulator: %v", err)
	}
}
