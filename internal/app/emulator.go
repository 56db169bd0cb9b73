package app

import (
	"github.com/fox-two/nesmu/internal/applog"
	"github.com/fox-two/nesmu/internal/bus"
	"github.com/fox-two/nesmu/internal/cartridge"
	"github.com/fox-two/nesmu/internal/cpu"
	"github.com/fox-two/nesmu/internal/input"
	"github.com/fox-two/nesmu/internal/memory"
	"github.com/fox-two/nesmu/internal/ppu"
	"github.com/fox-two/nesmu/internal/scheduler"
)

// dotsPerFrame is the NTSC PPU dot count for one 262-scanline frame,
// expressed in the frame loop's "3 * cpu cycles" units.
const dotsPerFrame = 89342

// Emulator is the full console: CPU, PPU, one cartridge, one joypad,
// and the scheduler tying PPU/cartridge timing to CPU execution.
type Emulator struct {
	ram       *memory.Ram
	cpu       *cpu.CPU
	ppu       *ppu.PPU
	gamepad   *input.Joypad
	cartridge cartridge.Cartridge
	bus       *bus.Bus
	sched     *scheduler.Scheduler

	framebuffer [240 * 256]uint8
}

// New builds an Emulator around the given cartridge and resets the CPU
// to its power-on state.
func New(cart cartridge.Cartridge) *Emulator {
	e := &Emulator{
		ram:       memory.New(),
		ppu:       ppu.New(),
		gamepad:   input.New(),
		cartridge: cart,
		sched:     scheduler.New(),
	}
	e.cpu = cpu.New(nil)
	e.bus = bus.New(e.ram, e.ppu, cart, e.gamepad, e.cpu)
	e.cpu.SetMemory(e.bus)

	if mmc3, ok := cart.(*cartridge.MMC3); ok {
		mmc3.SetIRQAcknowledge(e.cpu.ClearIRQ)
	}

	e.cpu.Reset()
	return e
}

// Gamepad exposes the joypad for the presentation layer to drive.
func (e *Emulator) Gamepad() *input.Joypad {
	return e.gamepad
}

// Reset drives the 6502's reset sequence, as pressing the console's
// physical reset button does: RAM, PPU, and cartridge state are left
// untouched, only the CPU jumps back through the reset vector.
func (e *Emulator) Reset() {
	e.cpu.Reset()
}

// ppuMemory adapts the cartridge to ppu.Memory for the frame loop's
// direct calls into ppu.HandleEvent (the Bus keeps its own copy for
// register reads/writes).
type ppuMemory struct {
	cart cartridge.Cartridge
}

func (m ppuMemory) PPURead(addr uint16) uint8         { return m.cart.PPURead(addr) }
func (m ppuMemory) PPUWrite(addr uint16, value uint8) { m.cart.PPUWrite(addr, value) }

// Frame runs the console for exactly one NTSC frame: it raises VBlank,
// lets the PPU and cartridge schedule their events, invokes NMI if
// PPUCTRL currently wants one, then alternates draining ready
// scheduler events with executing CPU instructions until the frame's
// dot budget is exhausted. It returns the resolved RGB framebuffer.
func (e *Emulator) Frame() (*[240 * 256]ppu.RGB, error) {
	startCycle := e.cpu.Cycles()
	mem := ppuMemory{cart: e.cartridge}

	e.ppu.SetVBlankFlag(startCycle, e.sched)
	e.cartridge.StartOfFrame(e.sched, startCycle)

	if e.ppu.NMIActive() {
		e.cpu.NMI()
	}

	for 3*(e.cpu.Cycles()-startCycle) < dotsPerFrame {
		dot := 3 * (e.cpu.Cycles() - startCycle)
		for _, ev := range e.sched.DrainReady(dot) {
			if ev.Kind == scheduler.CartridgeTick {
				e.cartridge.OnEvent(e.ppu.RenderingEnabled(), e.cpu.RequestIRQ)
				continue
			}
			e.ppu.HandleEvent(ev.Kind, e.cpu.Cycles(), mem, &e.framebuffer, e.sched)
		}

		if _, err := e.cpu.Step(); err != nil {
			return nil, err
		}
		if err := e.bus.LastDMAError(); err != nil {
			applog.Warnf("%v", err)
		}
	}

	e.sched.Clear()

	var out [240 * 256]ppu.RGB
	for i, raw := range e.framebuffer {
		out[i] = ppu.Resolve(raw)
	}
	return &out, nil
}
