// Package ines parses the iNES cartridge container format and builds
// the matching cartridge.Cartridge implementation.
package ines

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fox-two/nesmu/internal/cartridge"
	"github.com/fox-two/nesmu/internal/neserr"
)

var magic = []byte{0x4e, 0x45, 0x53, 0x1a} // "NES\x1a"

const (
	flag6Mirroring = 1 << 0
	flag6Trainer   = 1 << 2
)

// ROM holds a parsed iNES file: its raw bank data plus the header
// fields needed to pick and construct a mapper.
type ROM struct {
	MapperCode uint8
	PRGBanks   [][16384]byte
	CHRBanks   [][8192]byte
	Mirroring  cartridge.Mirroring
}

// Load reads and validates an iNES file at path. A present trainer
// (flag 6, bit 2) is skipped; this core has no trainer RAM to load it
// into, a supplement beyond the reference's bare `File::read_exact`
// calls, which assumed no trainer was ever present.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", neserr.ErrInvalidROM, err)
	}
	return Parse(data)
}

// Parse decodes an in-memory iNES image.
func Parse(data []byte) (*ROM, error) {
	if len(data) < 16 || !bytes.Equal(data[:4], magic) {
		return nil, fmt.Errorf("%w: bad magic number", neserr.ErrInvalidROM)
	}

	header := data[:16]
	prgPages := int(header[4])
	chrPages := int(header[5])
	flags6 := header[6]
	flags7 := header[7]

	rom := &ROM{
		MapperCode: (flags7 & 0xf0) | (flags6 >> 4),
	}
	if flags6&flag6Mirroring != 0 {
		rom.Mirroring = cartridge.Vertical
	} else {
		rom.Mirroring = cartridge.Horizontal
	}

	offset := 16
	if flags6&flag6Trainer != 0 {
		offset += 512
	}

	for i := 0; i < prgPages; i++ {
		end := offset + 16384
		if end > len(data) {
			return nil, fmt.Errorf("%w: truncated PRG ROM", neserr.ErrInvalidROM)
		}
		var bank [16384]byte
		copy(bank[:], data[offset:end])
		rom.PRGBanks = append(rom.PRGBanks, bank)
		offset = end
	}
	if len(rom.PRGBanks) == 0 {
		return nil, fmt.Errorf("%w: no PRG ROM banks", neserr.ErrInvalidROM)
	}

	for i := 0; i < chrPages; i++ {
		end := offset + 8192
		if end > len(data) {
			return nil, fmt.Errorf("%w: truncated CHR ROM", neserr.ErrInvalidROM)
		}
		var bank [8192]byte
		copy(bank[:], data[offset:end])
		rom.CHRBanks = append(rom.CHRBanks, bank)
		offset = end
	}

	return rom, nil
}

// BuildMapper constructs the concrete cartridge.Cartridge for this
// ROM's declared mapper number, supporting NROM (0) and MMC3 (4).
func (r *ROM) BuildMapper() (cartridge.Cartridge, error) {
	switch r.MapperCode {
	case 0:
		if len(r.PRGBanks) > 2 {
			return nil, fmt.Errorf("%w: mapper 0 (NROM) ROM has %d PRG banks, want at most 2", neserr.ErrInvalidROM, len(r.PRGBanks))
		}
		var chr [8192]byte
		if len(r.CHRBanks) > 0 {
			chr = r.CHRBanks[0]
		}
		return cartridge.NewNROM(r.PRGBanks, chr, r.Mirroring), nil
	case 4:
		return cartridge.NewMMC3(r.PRGBanks, r.CHRBanks, r.Mirroring), nil
	default:
		return nil, fmt.Errorf("%w: mapper %d", neserr.ErrUnsupportedMapper, r.MapperCode)
	}
}
