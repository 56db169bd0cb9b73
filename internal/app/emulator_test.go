package app

import (
	"testing"

	"github.com/fox-two/nesmu/internal/cartridge"
	"github.com/fox-two/nesmu/internal/input"
)

// infiniteLoopCartridge is an NROM-shaped cartridge whose reset vector
// points at a single JMP-to-self, enough to let the frame loop run
// real CPU cycles without ever hitting an unimplemented opcode.
func infiniteLoopCartridge() *cartridge.NROM {
	var bank [16384]byte
	bank[0x3ffc] = 0x00 // reset vector low -> $8000
	bank[0x3ffd] = 0x80 // reset vector high
	bank[0x0000] = 0x4C // JMP absolute
	bank[0x0001] = 0x00
	bank[0x0002] = 0x80
	return cartridge.NewNROM([][16384]byte{bank}, [8192]byte{}, cartridge.Horizontal)
}

func TestNewWiresCPUAndBusWithoutPanicking(t *testing.T) {
	emu := New(infiniteLoopCartridge())
	if emu.cpu.PC != 0x8000 {
		t.Fatalf("expected CPU PC at reset vector $8000, got %#x", emu.cpu.PC)
	}
}

func TestFrameAdvancesCycleCountAndProducesAFramebuffer(t *testing.T) {
	emu := New(infiniteLoopCartridge())
	before := emu.cpu.Cycles()

	frame, err := emu.Frame()
	if err != nil {
		t.Fatalf("unexpected error running a frame: %v", err)
	}
	if frame == nil {
		t.Fatalf("expected a non-nil framebuffer")
	}
	if emu.cpu.Cycles() <= before {
		t.Fatalf("expected CPU cycles to advance over a frame")
	}
	if emu.sched.Len() != 0 {
		t.Fatalf("expected scheduler cleared at end of frame, got %d pending events", emu.sched.Len())
	}
}

func TestGamepadAccessorReturnsTheWiredJoypad(t *testing.T) {
	emu := New(infiniteLoopCartridge())
	if emu.Gamepad() != emu.bus.Joypad {
		t.Fatalf("expected Gamepad to return the joypad wired into the bus")
	}
	emu.Gamepad().SetState(input.Start, true)
}
