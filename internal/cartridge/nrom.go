package cartridge

import "github.com/fox-two/nesmu/internal/scheduler"

// NROM is mapper 0: a fixed 32 KiB PRG window (mirrored from a single
// 16 KiB bank when the ROM supplies only one) and a fixed 8 KiB CHR
// bank. It has no SRAM and no CHR-RAM: CHR writes are always no-ops,
// even inside the pattern-table range.
type NROM struct {
	prgROM [0x8000]uint8
	chrROM [0x2000]uint8
	nametables [2][0x400]uint8
	mirroring Mirroring
}

// NewNROM builds an NROM cartridge from one or two 16 KiB PRG banks
// and a single 8 KiB CHR bank. A single PRG bank is mirrored into both
// halves of the $8000-$FFFF window.
func NewNROM(prgBanks [][16384]byte, chr [8192]byte, mirroring Mirroring) *NROM {
	c := &NROM{mirroring: mirroring}
	c.chrROM = chr
	for i := 0; i < 2; i++ {
		bank := prgBanks[i%len(prgBanks)]
		copy(c.prgROM[i*16384:(i+1)*16384], bank[:])
	}
	return c
}

func (c *NROM) Read(addr uint16) uint8 {
	return c.prgROM[addr&0x7fff]
}

func (c *NROM) Write(addr uint16, value uint8) {
	// PRG ROM is not writable; NROM carries no SRAM.
}

func (c *NROM) nametableIndex(addr uint16) int {
	if c.mirroring == Vertical {
		return int((addr >> 10) & 0x1)
	}
	return int((addr >> 11) & 0x1)
}

func (c *NROM) PPURead(addr uint16) uint8 {
	if addr < 0x2000 {
		return c.chrROM[addr]
	}
	return c.nametables[c.nametableIndex(addr)][addr&0x3ff]
}

func (c *NROM) PPUWrite(addr uint16, value uint8) {
	if addr < 0x2000 || addr >= 0x3000 {
		return
	}
	c.nametables[c.nametableIndex(addr)][addr&0x3ff] = value
}

func (c *NROM) StartOfFrame(sched *scheduler.Scheduler, cyc uint64) {}

func (c *NROM) OnEvent(renderingEnabled bool, irq func()) {}
