// Package ppu implements the 2C02 picture processing unit: its eight
// memory-mapped registers, OAM, the 32-byte palette RAM, and the
// per-scanline background/sprite rendering driven by scheduled events.
package ppu

import "github.com/fox-two/nesmu/internal/scheduler"

// PPUMASK and PPUCTRL bits the rendering and timing code reads directly.
const (
	maskShowSpriteLeft     = 1 << 2
	maskShowBackground     = 1 << 3
	maskShowBackgroundLeft = 1 << 1
	maskShowSprite         = 1 << 4

	statusVBlank     = 1 << 7
	statusSprite0Hit = 1 << 6

	ctrlVRAMIncrement = 1 << 2
	ctrlVBlankEnable  = 1 << 7
)

// Memory is the PPU-side address space a cartridge exposes: pattern
// tables, nametables (subject to its own mirroring), and it owns no
// palette RAM itself — that lives in the PPU.
type Memory interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
}

// latch tracks which byte of a two-write register ($2005/$2006) is next.
type latch int

const (
	latchLow latch = iota
	latchHigh
)

// register packs the scroll position and active nametable the way the
// original's PPURegister does: not the textbook NESdev loopy v/t/x/w
// layout, but a simpler x/y/nametable triple that round-trips through
// the same packed 16-bit form PPUADDR and PPUSCROLL both manipulate.
type register struct {
	x, y      uint8
	nametable uint8
}

func (r register) addr() uint16 {
	var v uint16
	v |= uint16(r.x) >> 3
	v |= (uint16(r.y) >> 3) << 5
	v |= (uint16(r.nametable) & 0x3) << 10
	v |= (uint16(r.y) & 0x7) << 12
	return v
}

func parseAddr(v uint16) register {
	return register{
		x:         uint8((v & 0x1f) << 3),
		y:         uint8(((v & 0x3e0) >> 2) | ((v & 0x7000) >> 12)),
		nametable: uint8((v >> 10) & 0x3),
	}
}

// PPU holds all register and rendering state for the 2C02.
type PPU struct {
	ctrl   uint8
	mask   uint8
	status uint8
	oamAddr uint8

	scrollX, scrollY uint8
	tempAddr         uint16
	writeLatch       latch
	lastReadByte     uint8

	OAM     [256]uint8
	Palette [32]uint8

	frameStartCycle uint64
}

// New returns a freshly powered-on PPU.
func New() *PPU {
	return &PPU{}
}

// NMIActive reports whether PPUCTRL's NMI-enable bit is set. The frame
// driver calls this once per frame to decide whether to invoke the
// CPU's NMI entry point; the PPU itself never triggers interrupts.
func (p *PPU) NMIActive() bool {
	return p.ctrl&ctrlVBlankEnable != 0
}

// RenderingEnabled reports whether PPUMASK has background or sprite
// rendering turned on, the gate MMC3's scanline counter checks before
// decrementing.
func (p *PPU) RenderingEnabled() bool {
	return p.mask&maskShowBackground != 0 || p.mask&maskShowSprite != 0
}

// SetSprite0Flag marks PPUSTATUS bit 6, used by the Sprite0Hit event.
func (p *PPU) SetSprite0Flag() {
	p.status |= statusSprite0Hit
}

func (p *PPU) getAddr() uint16 {
	return register{nametable: p.ctrl & 0x3, x: p.scrollX, y: p.scrollY}.addr()
}

func (p *PPU) setAddr(v uint16) {
	data := parseAddr(v)
	p.scrollX = data.x
	p.ctrl = (p.ctrl &^ 0x3) | data.nametable
	p.scrollY = data.y
	p.tempAddr = data.addr()
}

// ReadRegister handles a CPU read from $2000-$2007 (addr&7 decoded).
func (p *PPU) ReadRegister(addr uint16, mem Memory) uint8 {
	switch addr & 7 {
	case 2: // PPUSTATUS
		v := p.status
		p.lastReadByte = 0
		p.writeLatch = latchLow
		p.status &^= statusVBlank
		return v
	case 4: // OAMDATA
		return p.OAM[p.oamAddr]
	case 7: // PPUDATA
		return p.readData(mem)
	default:
		return 0
	}
}

func (p *PPU) readData(mem Memory) uint8 {
	ptr := p.getAddr()
	value := mem.PPURead(ptr)

	if p.ctrl&ctrlVRAMIncrement != 0 {
		p.setAddr(ptr + 32)
	} else {
		p.setAddr(ptr + 1)
	}

	if ptr <= 0x3EFF {
		old := p.lastReadByte
		p.lastReadByte = value
		return old
	}
	// Palette reads bypass the buffer but still refill it from the
	// nametable mirror underneath the palette address range.
	p.lastReadByte = value
	return p.Palette[ptr&0x1f] & 0x3f
}

// WriteRegister handles a CPU write to $2000-$2007 (addr&7 decoded).
func (p *PPU) WriteRegister(addr uint16, value uint8, mem Memory) {
	switch addr & 7 {
	case 0: // PPUCTRL
		tmp := parseAddr(p.tempAddr)
		tmp.nametable = value & 0x3
		p.tempAddr = tmp.addr()
		p.ctrl = (value &^ 0x3) | (p.ctrl & 0x3)
	case 1: // PPUMASK
		p.mask = value
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.OAM[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		p.writeScroll(value)
	case 6: // PPUADDR
		p.writeAddrLatch(value)
	case 7: // PPUDATA
		p.writeData(value, mem)
	}
}

func (p *PPU) writeData(value uint8, mem Memory) {
	addr := p.getAddr()
	if addr >= 0x3F00 {
		idx := addr & 0x1f
		p.Palette[idx] = value & 0x3f
		if idx%4 == 0 {
			p.Palette[(idx+0x10)&0x1f] = value & 0x3f
		}
	} else {
		mem.PPUWrite(addr, value)
	}

	if p.ctrl&ctrlVRAMIncrement != 0 {
		p.setAddr(addr + 32)
	} else {
		p.setAddr(addr + 1)
	}
}

func (p *PPU) writeScroll(value uint8) {
	switch p.writeLatch {
	case latchLow:
		a := parseAddr(p.tempAddr)
		a.x = value
		p.tempAddr = a.addr()
		p.scrollX = (p.scrollX &^ 0x7) | (value & 0x7)
		p.writeLatch = latchHigh
	case latchHigh:
		a := parseAddr(p.tempAddr)
		a.y = value
		p.tempAddr = a.addr()
		p.scrollX = (a.x &^ 0x7) | (p.scrollX & 0x7)
		p.writeLatch = latchLow
	}
}

func (p *PPU) writeAddrLatch(value uint8) {
	switch p.writeLatch {
	case latchLow:
		p.tempAddr = (p.tempAddr & 0x00ff) | ((uint16(value) & 0x3f) << 8)
		p.writeLatch = latchHigh
	case latchHigh:
		p.tempAddr = (p.tempAddr & 0xff00) | uint16(value)
		data := parseAddr(p.tempAddr)
		p.scrollX = data.x | (p.scrollX & 0x7)
		p.ctrl = (p.ctrl &^ 0x3) | data.nametable
		p.scrollY = data.y
		p.writeLatch = latchLow
	}
}

// DMASource supplies the 256 bytes OAM DMA copies from, in terms of the
// CPU's address space (so a cartridge-sourced DMA can read PRG/SRAM).
type DMASource interface {
	ReadPage(page uint8) [256]byte
}

// DMATransfer copies one 256-byte page into OAM. The original's DMA has
// no odd/even alignment penalty and always costs a flat 513 cycles;
// the caller is responsible for charging that to the CPU.
func (p *PPU) DMATransfer(page uint8, source DMASource) {
	p.OAM = source.ReadPage(page)
}

func (p *PPU) computeScanline(cyc uint64) int64 {
	return int64((cyc-p.frameStartCycle)*3/341) - 22
}

// SetVBlankFlag begins a new frame: sets PPUSTATUS's VBlank bit,
// remembers the frame's starting cycle for scanline math, and schedules
// the pre-render line plus all 239 visible-scanline-end events.
func (p *PPU) SetVBlankFlag(cyc uint64, sched *scheduler.Scheduler) {
	p.status |= statusVBlank
	p.frameStartCycle = cyc

	sched.Add(scheduler.Event{Dot: 7502, Kind: scheduler.VBlankEnd})
	for i := uint64(0); i < 239; i++ {
		sched.Add(scheduler.Event{Dot: 341 * (i + 23), Kind: scheduler.ScanlineEnd})
	}
}

// HandleEvent dispatches one scheduled PPU event.
func (p *PPU) HandleEvent(kind scheduler.Kind, cyc uint64, mem Memory, framebuffer *[240 * 256]uint8, sched *scheduler.Scheduler) {
	switch kind {
	case scheduler.ScanlineEnd:
		p.onScanlineEnd(cyc, mem, framebuffer, sched)
	case scheduler.VBlankEnd:
		p.onVBlankEnd(mem, framebuffer, sched)
	case scheduler.Sprite0Hit:
		p.SetSprite0Flag()
	}
}

func (p *PPU) onScanlineEnd(cyc uint64, mem Memory, framebuffer *[240 * 256]uint8, sched *scheduler.Scheduler) {
	if p.mask&maskShowBackground == 0 {
		return
	}
	data := parseAddr(p.tempAddr)

	nametableBaseY := uint16(0)
	if p.ctrl&0x03&2 != 0 {
		nametableBaseY = 0xf0
	}
	nametableBaseY = (nametableBaseY + uint16(p.scrollY) + 1) % 480
	p.ctrl &^= 0x2
	if nametableBaseY >= 240 {
		p.ctrl |= 0x2
		p.scrollY = uint8(nametableBaseY - 240)
	} else {
		p.scrollY = uint8(nametableBaseY)
	}

	p.scrollX = data.x | (p.scrollX & 0x7)
	p.ctrl = (p.ctrl &^ 0x1) | (data.nametable & 0x1)

	scanline := p.computeScanline(cyc)
	if scanline < 1 {
		return
	}
	row := framebuffer[scanline*256 : (scanline+1)*256]
	if x, y, ok := p.drawScanline(mem, row, uint8(scanline)); ok {
		sched.Add(scheduler.Event{Dot: 341*(uint64(y)+22) + uint64(x), Kind: scheduler.Sprite0Hit})
	}
}

func (p *PPU) onVBlankEnd(mem Memory, framebuffer *[240 * 256]uint8, sched *scheduler.Scheduler) {
	if p.mask&maskShowBackground != 0 || p.mask&maskShowSprite != 0 {
		parsed := parseAddr(p.tempAddr)
		p.scrollY = parsed.y
		p.ctrl = (p.ctrl &^ 0x2) | (parsed.nametable & 0x2)
	}
	p.afterVBlank(mem, framebuffer, sched)
}

func (p *PPU) afterVBlank(mem Memory, framebuffer *[240 * 256]uint8, sched *scheduler.Scheduler) {
	p.status &^= statusSprite0Hit
	if x, y, ok := p.drawScanline(mem, framebuffer[:256], 0); ok {
		sched.Add(scheduler.Event{Dot: 341*(uint64(y)+22) + uint64(x), Kind: scheduler.Sprite0Hit})
	}
}
