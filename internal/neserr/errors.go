// Package neserr collects the sentinel errors shared across the
// emulator's packages, so callers can use errors.Is without import
// cycles back into cpu, cartridge, or ines.
package neserr

import "errors"

var (
	// ErrInvalidROM is returned when an iNES file fails header
	// validation (bad magic, truncated PRG/CHR data).
	ErrInvalidROM = errors.New("nes: invalid rom file")

	// ErrUnsupportedMapper is returned when a ROM declares a mapper
	// number other than 0 (NROM) or 4 (MMC3).
	ErrUnsupportedMapper = errors.New("nes: unsupported mapper")

	// ErrUnknownOpcode is returned when the CPU fetches an opcode with
	// no entry in the official instruction table, including $00 (BRK),
	// which this core never dispatches as a software interrupt.
	ErrUnknownOpcode = errors.New("cpu: unknown opcode")

	// ErrBadDMASource is returned when a $4014 write names a page in
	// the PPU's own register space, which has no addressable memory
	// to source a DMA transfer from.
	ErrBadDMASource = errors.New("bus: bad oam dma source page")
)
