package cpu

import (
	"errors"
	"testing"

	"github.com/fox-two/nesmu/internal/neserr"
)

// mockMemory implements Memory for testing, a flat 64 KiB array with
// no mirroring so instruction effects are easy to assert against.
type mockMemory struct {
	data [0x10000]uint8
}

func (m *mockMemory) Read(address uint16) uint8 {
	return m.data[address]
}

func (m *mockMemory) Write(address uint16, value uint8) {
	m.data[address] = value
}

func (m *mockMemory) setBytes(address uint16, values ...uint8) {
	for i, v := range values {
		m.data[address+uint16(i)] = v
	}
}

func newTestCPU() (*CPU, *mockMemory) {
	mem := &mockMemory{}
	c := New(mem)
	return c, mem
}

func step(t *testing.T, c *CPU) uint64 {
	t.Helper()
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step() error: %v", err)
	}
	return cycles
}

func TestResetSequence(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(resetVector, 0x00, 0x80)
	c.Reset()

	if c.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Fatalf("SP = %#02x, want 0xFD", c.SP)
	}
	if !c.I {
		t.Fatal("I flag should be set after reset")
	}
	if c.cycles != 7 {
		t.Fatalf("cycles = %d, want 7", c.cycles)
	}
}

func TestLdaImmediateSetsFlags(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xA9, 0x00)
	c.PC = 0x8000

	step(t, c)

	if c.A != 0 || !c.Z || c.N {
		t.Fatalf("A=%#02x Z=%v N=%v, want A=0 Z=true N=false", c.A, c.Z, c.N)
	}

	mem.setBytes(0x8002, 0xA9, 0xFF)
	step(t, c)
	if c.A != 0xFF || c.Z || !c.N {
		t.Fatalf("A=%#02x Z=%v N=%v, want A=0xFF Z=false N=true", c.A, c.Z, c.N)
	}
}

func TestAdcOverflowAndCarry(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.A = 0x50
	mem.setBytes(0x8000, 0x69, 0x50) // ADC #$50

	step(t, c)

	if c.A != 0xA0 {
		t.Fatalf("A = %#02x, want 0xA0", c.A)
	}
	if !c.V {
		t.Fatal("signed overflow (0x50+0x50) should set V")
	}
	if c.C {
		t.Fatal("unsigned result 0xA0 should not set carry")
	}
}

func TestSbcBorrow(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.A = 0x00
	c.C = true                      // no borrow requested
	mem.setBytes(0x8000, 0xE9, 0x01) // SBC #$01

	step(t, c)

	if c.A != 0xFF {
		t.Fatalf("A = %#02x, want 0xFF", c.A)
	}
	if c.C {
		t.Fatal("0x00 - 0x01 should clear carry (borrow occurred)")
	}
}

func TestCompareSetsCarryOnGreaterOrEqual(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.A = 0x10
	mem.setBytes(0x8000, 0xC9, 0x10) // CMP #$10

	step(t, c)

	if !c.C || !c.Z || c.N {
		t.Fatalf("C=%v Z=%v N=%v, want C=true Z=true N=false", c.C, c.Z, c.N)
	}
}

func TestIndirectJmpPageWrapBug(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem.setBytes(0x8000, 0x6C, 0xFF, 0x30) // JMP ($30FF)
	mem.setBytes(0x30FF, 0x00)
	mem.setBytes(0x3000, 0x80) // high byte wraps to $3000, not $3100

	step(t, c)

	if c.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000 (wrapped high byte)", c.PC)
	}
}

func TestBranchTakenCrossingPageCostsExtraCycle(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x80FE
	c.Z = true
	mem.setBytes(0x80FE, 0xF0, 0x10) // BEQ +16, crosses to $8110

	cycles := step(t, c)

	if c.PC != 0x8110 {
		t.Fatalf("PC = %#04x, want 0x8110", c.PC)
	}
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 (2 base + 1 taken + 1 page cross)", cycles)
	}
}

func TestBranchTakenSamePageCostsOneExtraCycle(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.Z = true
	mem.setBytes(0x8000, 0xF0, 0x10) // BEQ +16, stays on page $80

	cycles := step(t, c)

	if c.PC != 0x8012 {
		t.Fatalf("PC = %#04x, want 0x8012", c.PC)
	}
	if cycles != 3 {
		t.Fatalf("cycles = %d, want 3 (2 base + 1 taken, no page cross)", cycles)
	}
}

func TestBranchNotTakenCostsBaseCycleEvenAcrossPageBoundary(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x80FE
	c.Z = false
	mem.setBytes(0x80FE, 0xF0, 0x10) // BEQ +16, not taken; would have crossed

	cycles := step(t, c)

	if c.PC != 0x8100 {
		t.Fatalf("PC = %#04x, want 0x8100 (fell through)", c.PC)
	}
	if cycles != 2 {
		t.Fatalf("cycles = %d, want 2 (base only, no taken/page-cross penalty)", cycles)
	}
}

func TestPhpForcesBreakAndUnusedBits(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem.setBytes(0x8000, 0x08) // PHP

	step(t, c)

	pushed := mem.Read(stackBase + uint16(c.SP) + 1)
	if pushed&bFlagMask == 0 || pushed&unusedMask == 0 {
		t.Fatalf("pushed status %#02x should have B and U set", pushed)
	}
}

func TestPlpNeverSetsBreakAndAlwaysSetsUnused(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.SP = 0xFC
	mem.setBytes(0x01FD, bFlagMask) // pulled status, only B set
	mem.setBytes(0x8000, 0x28)      // PLP

	step(t, c)

	if c.statusByte()&bFlagMask != 0 {
		t.Fatal("B should never be set by PLP")
	}
	if c.statusByte()&unusedMask == 0 {
		t.Fatal("U should always read as set")
	}
}

func TestNmiEntryPushesRawStatusAndJumpsToVector(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x1234
	c.N = true
	mem.setBytes(nmiVector, 0x00, 0x90)
	want := c.statusByte() // status as it stood before entry set I

	c.NMI()

	if c.PC != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000", c.PC)
	}
	if !c.I {
		t.Fatal("I should be set on interrupt entry")
	}
	pushed := mem.Read(stackBase + uint16(c.SP) + 1)
	if pushed != want {
		t.Fatalf("pushed status %#02x, want raw statusByte %#02x", pushed, want)
	}
}

func TestIrqServicedOnlyWhenInterruptDisableClear(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	c.I = true
	mem.setBytes(irqVector, 0x00, 0x90)
	mem.setBytes(0x8000, 0xEA) // NOP

	c.RequestIRQ()
	step(t, c)
	if c.PC == 0x9000 {
		t.Fatal("IRQ should not fire while I is set")
	}

	c.I = false
	mem.setBytes(0x8001, 0xEA)
	mem.setBytes(0x9000, 0xEA) // the handler's first NOP, run in the same Step
	step(t, c)
	if c.PC != 0x9001 {
		t.Fatalf("PC = %#04x, want 0x9001 (IRQ taken, handler's first NOP run) once I clears", c.PC)
	}
}

func TestIrqLineIsNotAutoCleared(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem.setBytes(irqVector, 0x00, 0x90)
	mem.setBytes(0x9000, 0xEA) // the handler's first NOP

	c.RequestIRQ()
	step(t, c) // services the IRQ, jumps to $9000

	if !c.irqLine {
		t.Fatal("servicing an IRQ must not clear the line; only ClearIRQ does")
	}

	c.ClearIRQ()
	if c.irqLine {
		t.Fatal("ClearIRQ should lower the line")
	}
}

func TestUnknownOpcodeReturnsError(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem.setBytes(0x8000, 0x00) // $00 has no table entry

	_, err := c.Step()
	if !errors.Is(err, neserr.ErrUnknownOpcode) {
		t.Fatalf("err = %v, want ErrUnknownOpcode", err)
	}
}

func TestJsrRtsRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8000
	mem.setBytes(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	mem.setBytes(0x9000, 0x60)             // RTS

	step(t, c) // JSR
	if c.PC != 0x9000 {
		t.Fatalf("PC after JSR = %#04x, want 0x9000", c.PC)
	}
	step(t, c) // RTS
	if c.PC != 0x8003 {
		t.Fatalf("PC after RTS = %#04x, want 0x8003", c.PC)
	}
}
