package cartridge

import "testing"

func oneBankPRG(fill byte) [][16384]byte {
	var bank [16384]byte
	for i := range bank {
		bank[i] = fill
	}
	return [][16384]byte{bank}
}

func TestNROMMirrorsSinglePRGBankAcrossBothHalves(t *testing.T) {
	c := NewNROM(oneBankPRG(0xAA), [8192]byte{}, Horizontal)
	if got := c.Read(0x8000); got != 0xAA {
		t.Fatalf("expected mirrored bank at $8000, got %#x", got)
	}
	if got := c.Read(0xC000); got != 0xAA {
		t.Fatalf("expected mirrored bank at $C000, got %#x", got)
	}
}

func TestNROMWriteIsANoOp(t *testing.T) {
	c := NewNROM(oneBankPRG(0x11), [8192]byte{}, Horizontal)
	c.Write(0x8000, 0xFF)
	if got := c.Read(0x8000); got != 0x11 {
		t.Fatalf("expected PRG write to be ignored, got %#x", got)
	}
}

func TestNROMCHRWritesAreAlwaysNoOps(t *testing.T) {
	var chr [8192]byte
	chr[0] = 0x42
	c := NewNROM(oneBankPRG(0), chr, Horizontal)
	c.PPUWrite(0, 0x99)
	if got := c.PPURead(0); got != 0x42 {
		t.Fatalf("expected CHR write to be a no-op, got %#x", got)
	}
}

func TestNROMHorizontalMirroring(t *testing.T) {
	c := NewNROM(oneBankPRG(0), [8192]byte{}, Horizontal)
	c.PPUWrite(0x2000, 0x5)
	if got := c.PPURead(0x2400); got != 0x5 {
		t.Fatalf("expected $2000 and $2400 to share a nametable under horizontal mirroring, got %#x", got)
	}
	if got := c.PPURead(0x2800); got == 0x5 {
		t.Fatalf("expected $2800 to use a different nametable under horizontal mirroring")
	}
}

func twoBankPRG() [][16384]byte {
	var a, b [16384]byte
	a[0] = 0x01
	b[0] = 0x02
	return [][16384]byte{a, b}
}

func TestMMC3PRGBankModeSwapsSwappableAndFixedWindows(t *testing.T) {
	c := NewMMC3(twoBankPRG(), nil, Horizontal)
	c.Write(0x8000, 0x06) // select register 6
	c.Write(0x8001, 0x00) // bank 0
	if got := c.Read(0x8000); got != 0x01 {
		t.Fatalf("expected swappable window to read bank 0 at $8000, got %#x", got)
	}

	c.Write(0x8000, 0x40) // flip PRG bank mode
	c.Write(0x8001, 0x00)
	if got := c.Read(0xC000); got != 0x01 {
		t.Fatalf("expected swappable window moved to $C000 after mode flip, got %#x", got)
	}
}

func TestMMC3EvenE000WriteAcknowledgesIRQ(t *testing.T) {
	c := NewMMC3(twoBankPRG(), nil, Horizontal)
	acked := false
	c.SetIRQAcknowledge(func() { acked = true })
	c.Write(0xE000, 0x00)
	if !acked {
		t.Fatalf("expected even $E000 write to acknowledge the pending IRQ")
	}
	if c.enableInterrupt {
		t.Fatalf("expected even $E000 write to disable future IRQs")
	}
}

func TestMMC3OddE000WriteEnablesInterrupt(t *testing.T) {
	c := NewMMC3(twoBankPRG(), nil, Horizontal)
	c.Write(0xE001, 0x00)
	if !c.enableInterrupt {
		t.Fatalf("expected odd $E000 write to enable IRQs")
	}
}

func TestMMC3CounterFiresOnlyWhenRenderingEnabled(t *testing.T) {
	c := NewMMC3(twoBankPRG(), nil, Horizontal)
	c.Write(0xC000, 1) // latch = 1
	c.Write(0xC001, 0) // request reload
	c.Write(0xE001, 0) // enable interrupt

	fired := false
	c.OnEvent(false, func() { fired = true }) // reload consumes this tick
	c.OnEvent(false, func() { fired = true }) // rendering disabled, no decrement
	if fired {
		t.Fatalf("expected no IRQ while rendering is disabled")
	}

	c.OnEvent(true, func() { fired = true })
	if !fired {
		t.Fatalf("expected IRQ once the counter reaches zero with rendering enabled")
	}
}

func TestMMC3ReloadFlagTakesPriorityOverDecrement(t *testing.T) {
	c := NewMMC3(twoBankPRG(), nil, Horizontal)
	c.Write(0xC000, 5)
	c.irqValue = 1
	c.reload = true
	c.OnEvent(true, func() {})
	if c.irqValue != 5 {
		t.Fatalf("expected reload to win over decrement, got irqValue=%d", c.irqValue)
	}
	if c.reload {
		t.Fatalf("expected reload flag cleared after servicing")
	}
}
