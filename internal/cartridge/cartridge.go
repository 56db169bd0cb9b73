// Package cartridge implements the CPU- and PPU-side memory mapping a
// game cartridge provides: NROM (mapper 0) and MMC3 (mapper 4).
package cartridge

import "github.com/fox-two/nesmu/internal/scheduler"

// Mirroring selects which physical nametable a PPU nametable address
// resolves to. MMC3 can change this at runtime via its mirroring
// control register; NROM's is fixed at load time from the iNES header.
type Mirroring int

const (
	Horizontal Mirroring = iota
	Vertical
)

// Cartridge is a mapper's full surface: CPU-side reads/writes in
// $4020-$FFFF, PPU-side reads/writes for pattern tables and
// nametables, and the two hooks the frame driver calls once per frame
// and once per scheduled cartridge tick (MMC3's scanline counter).
type Cartridge interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)

	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)

	// StartOfFrame lets a mapper schedule its own events (MMC3 queues
	// 241 scanline ticks) ahead of the frame's CPU execution loop.
	StartOfFrame(sched *scheduler.Scheduler, cyc uint64)

	// OnEvent fires for a scheduler.CartridgeTick event. irq is called
	// to raise the CPU's IRQ line if the counter reaches zero; the
	// mapper itself later clears it via its own register writes.
	OnEvent(renderingEnabled bool, irq func())
}
