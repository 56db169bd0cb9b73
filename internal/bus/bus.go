// Package bus assembles the CPU's $0000-$FFFF address space out of
// internal RAM, the PPU's eight mirrored registers, the single
// joypad port, and the cartridge.
package bus

import (
	"fmt"

	"github.com/fox-two/nesmu/internal/cartridge"
	"github.com/fox-two/nesmu/internal/input"
	"github.com/fox-two/nesmu/internal/memory"
	"github.com/fox-two/nesmu/internal/neserr"
	"github.com/fox-two/nesmu/internal/ppu"
)

// cartridgePPUMemory adapts a cartridge.Cartridge to ppu.Memory; both
// interfaces already agree on method names, but a named type keeps the
// dependency direction one-way (ppu never imports cartridge).
type cartridgePPUMemory struct {
	cart cartridge.Cartridge
}

func (m cartridgePPUMemory) PPURead(addr uint16) uint8         { return m.cart.PPURead(addr) }
func (m cartridgePPUMemory) PPUWrite(addr uint16, value uint8) { m.cart.PPUWrite(addr, value) }

// cycleAdder is the sliver of cpu.CPU the bus needs to charge OAM DMA's
// flat cost to; the bus takes it as an interface rather than importing
// the cpu package.
type cycleAdder interface {
	AddCycles(n uint64)
}

// Bus wires the CPU's memory interface to every addressable device.
type Bus struct {
	RAM       *memory.Ram
	PPU       *ppu.PPU
	Cartridge cartridge.Cartridge
	Joypad    *input.Joypad
	CPU       cycleAdder

	ppuMemory cartridgePPUMemory

	lastDMAErr error
}

// New wires a Bus to its devices. cpu is charged the 513-cycle DMA
// cost the instant a $4014 write triggers a transfer.
func New(ram *memory.Ram, p *ppu.PPU, cart cartridge.Cartridge, pad *input.Joypad, cpu cycleAdder) *Bus {
	return &Bus{RAM: ram, PPU: p, Cartridge: cart, Joypad: pad, CPU: cpu, ppuMemory: cartridgePPUMemory{cart: cart}}
}

// Read implements cpu.Memory.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM.Read(addr)
	case addr <= 0x3fff:
		return b.PPU.ReadRegister(addr, b.ppuMemory)
	case addr == 0x4016:
		return b.Joypad.Read()
	default:
		return b.Cartridge.Read(addr)
	}
}

// Write implements cpu.Memory. A write to $4014 triggers OAM DMA; a
// source page inside $20-$3F (the PPU's own register mirror) has no
// memory to source bytes from and is rejected rather than attempted.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.RAM.Write(addr, value)
	case addr <= 0x3fff:
		b.PPU.WriteRegister(addr, value, b.ppuMemory)
	case addr == 0x4014:
		b.oamDMA(value)
	case addr == 0x4016:
		b.Joypad.Write(value)
	default:
		b.Cartridge.Write(addr, value)
	}
}

func (b *Bus) oamDMA(page uint8) {
	switch {
	case page < 0x20:
		b.PPU.DMATransfer(page, b.RAM)
	case page >= 0x40:
		b.PPU.DMATransfer(page, cartridgeDMASource{b})
	default:
		b.lastDMAErr = fmt.Errorf("%w: page $%02X", neserr.ErrBadDMASource, page)
		return
	}
	b.CPU.AddCycles(513)
}

// LastDMAError returns the most recent bad-source DMA error, if any,
// and clears it. The frame driver logs this rather than aborting.
func (b *Bus) LastDMAError() error {
	err := b.lastDMAErr
	b.lastDMAErr = nil
	return err
}

// cartridgeDMASource lets OAM DMA pull a page from cartridge space
// (PRG ROM or SRAM) when the source page is $40 or higher.
type cartridgeDMASource struct {
	bus *Bus
}

func (s cartridgeDMASource) ReadPage(page uint8) [256]byte {
	var out [256]byte
	start := uint16(page) << 8
	for i := range out {
		out[i] = s.bus.Cartridge.Read(start + uint16(i))
	}
	return out
}
