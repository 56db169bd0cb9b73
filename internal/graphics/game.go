// Package graphics presents the emulator's framebuffer through
// Ebitengine: one window, one 256x240 image redrawn every tick, and
// keyboard polling for the single joypad.
package graphics

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/fox-two/nesmu/internal/app"
	"github.com/fox-two/nesmu/internal/applog"
	"github.com/fox-two/nesmu/internal/input"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// KeyMap binds a keyboard key to each joypad button. Field values are
// ebiten.Key identifiers with the "Key" prefix dropped, matching
// app.InputConfig's string fields.
type KeyMap struct {
	Up, Down, Left, Right string
	A, B, Start, Select   string
}

// Game implements ebiten.Game, driving one emulator frame per tick and
// blitting the resolved framebuffer into the window.
type Game struct {
	emu    *app.Emulator
	keys   map[ebiten.Key]input.Button
	scale  int
	img    *ebiten.Image
	pixels *image.RGBA
	paused bool
}

// New builds a Game around an already-constructed Emulator. scale sets
// the window's integer pixel multiplier.
func New(emu *app.Emulator, km KeyMap, scale int) (*Game, error) {
	keys, err := buildKeyMap(km)
	if err != nil {
		return nil, err
	}
	if scale < 1 {
		scale = 1
	}
	return &Game{
		emu:    emu,
		keys:   keys,
		scale:  scale,
		img:    ebiten.NewImage(nesWidth, nesHeight),
		pixels: image.NewRGBA(image.Rect(0, 0, nesWidth, nesHeight)),
	}, nil
}

// Update advances the joypad state and runs exactly one console frame,
// unless paused. Escape toggles pause and F5 triggers a console reset;
// both are edge-triggered so holding the key doesn't repeat the action.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
		applog.Debugf("paused = %v", g.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.emu.Reset()
		applog.Debugf("console reset")
	}

	pad := g.emu.Gamepad()
	for key, button := range g.keys {
		pad.SetState(button, ebiten.IsKeyPressed(key))
	}

	if g.paused {
		return nil
	}

	frame, err := g.emu.Frame()
	if err != nil {
		return fmt.Errorf("graphics: running frame: %w", err)
	}

	for y := 0; y < nesHeight; y++ {
		for x := 0; x < nesWidth; x++ {
			c := frame[y*nesWidth+x]
			g.pixels.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	g.img.WritePixels(g.pixels.Pix)
	return nil
}

// Draw blits the NES framebuffer scaled to fill the window.
func (g *Game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.img, op)
}

// Layout reports the window's logical pixel size at the configured scale.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return nesWidth * g.scale, nesHeight * g.scale
}

func buildKeyMap(km KeyMap) (map[ebiten.Key]input.Button, error) {
	bindings := map[input.Button]string{
		input.Up: km.Up, input.Down: km.Down, input.Left: km.Left, input.Right: km.Right,
		input.A: km.A, input.B: km.B, input.Start: km.Start, input.Select: km.Select,
	}

	out := make(map[ebiten.Key]input.Button, len(bindings))
	for button, name := range bindings {
		key, ok := keyByName[name]
		if !ok {
			return nil, fmt.Errorf("graphics: unknown key name %q", name)
		}
		out[key] = button
	}
	return out, nil
}

// keyByName covers the key names app.NewConfig's defaults use plus the
// common alternates a user's config.json might reasonably pick.
var keyByName = map[string]ebiten.Key{
	"ArrowUp": ebiten.KeyArrowUp, "ArrowDown": ebiten.KeyArrowDown,
	"ArrowLeft": ebiten.KeyArrowLeft, "ArrowRight": ebiten.KeyArrowRight,
	"Enter": ebiten.KeyEnter, "Space": ebiten.KeySpace, "Escape": ebiten.KeyEscape,
	"ShiftLeft": ebiten.KeyShiftLeft, "ShiftRight": ebiten.KeyShiftRight,
	"Backspace": ebiten.KeyBackspace, "Tab": ebiten.KeyTab,
	"A": ebiten.KeyA, "B": ebiten.KeyB, "C": ebiten.KeyC, "D": ebiten.KeyD,
	"E": ebiten.KeyE, "F": ebiten.KeyF, "G": ebiten.KeyG, "H": ebiten.KeyH,
	"I": ebiten.KeyI, "J": ebiten.KeyJ, "K": ebiten.KeyK, "L": ebiten.KeyL,
	"M": ebiten.KeyM, "N": ebiten.KeyN, "O": ebiten.KeyO, "P": ebiten.KeyP,
	"Q": ebiten.KeyQ, "R": ebiten.KeyR, "S": ebiten.KeyS, "T": ebiten.KeyT,
	"U": ebiten.KeyU, "V": ebiten.KeyV, "W": ebiten.KeyW, "X": ebiten.KeyX,
	"Y": ebiten.KeyY, "Z": ebiten.KeyZ,
}

// Run opens the window and blocks until it closes or the emulator
// returns a fatal error.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(nesWidth*g.scale, nesHeight*g.scale)
	ebiten.SetWindowTitle(title)
	applog.Debugf("starting ebiten game loop at %dx scale", g.scale)
	return ebiten.RunGame(g)
}
