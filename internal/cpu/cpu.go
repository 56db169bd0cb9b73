// Package cpu implements the 6502 processor used in the NES, restricted
// to its official instruction set.
package cpu

import (
	"fmt"

	"github.com/fox-two/nesmu/internal/neserr"
)

// AddressingMode identifies how an opcode's operand is fetched.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Instruction describes one opcode: its addressing mode and base cycle
// cost. Addressing modes other than Relative never carry a page-cross
// penalty; only a taken branch does.
type Instruction struct {
	Name   string
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// Memory is the CPU's view of the address bus.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is the 6502 core: registers, discrete status flags, and the
// official opcode table.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal (unused on the NES)
	B bool // Break, only meaningful as pushed onto the stack
	V bool // Overflow
	N bool // Negative

	memory Memory
	cycles uint64

	instructions [256]*Instruction

	irqLine bool

	// branchTaken is set by a Relative-mode opcode's dispatch case
	// whenever its condition holds, even if the offset is zero; Step
	// reads it once per instruction to price the branch's extra cycles.
	branchTaken bool
}

// New creates a CPU wired to the given memory bus. memory may be nil
// when the bus itself needs a reference to the CPU to finish wiring
// (e.g. for OAM DMA's cycle cost); call SetMemory once it's built.
func New(memory Memory) *CPU {
	cpu := &CPU{memory: memory, SP: 0xFD}
	cpu.initInstructions()
	return cpu
}

// SetMemory completes construction for a CPU built with a nil bus.
func (cpu *CPU) SetMemory(memory Memory) {
	cpu.memory = memory
}

// Cycles reports the total cycle count since the CPU was created; Reset
// adds its 7 cycles to the count rather than zeroing it.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// AddCycles charges extra cycles to the CPU's clock, used by OAM DMA
// (a flat 513 cycles, charged the moment $4014 is written).
func (cpu *CPU) AddCycles(n uint64) {
	cpu.cycles += n
}

// Reset drives the 6502 power-up/reset sequence: 5 dummy bus reads
// followed by the two reset-vector reads, 7 cycles total.
func (cpu *CPU) Reset() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = 0xFD

	cpu.C = false
	cpu.Z = false
	cpu.I = true
	cpu.D = false
	cpu.B = false
	cpu.V = false
	cpu.N = false

	for i := 0; i < 5; i++ {
		cpu.memory.Read(cpu.PC)
		cpu.cycles++
	}

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 2
}

// RequestIRQ raises the level-triggered IRQ line. A mapper (MMC3's
// scanline counter) holds this set until it is explicitly cleared;
// the CPU itself never clears it after servicing the interrupt.
func (cpu *CPU) RequestIRQ() {
	cpu.irqLine = true
}

// ClearIRQ lowers the IRQ line, acknowledging the interrupt.
func (cpu *CPU) ClearIRQ() {
	cpu.irqLine = false
}

// NMI drives the CPU's non-maskable interrupt entry immediately: it is
// not edge-latched here, so the caller (the frame driver, once per
// frame) is responsible for invoking it only when PPUCTRL's NMI-enable
// bit is set at vblank.
func (cpu *CPU) NMI() {
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.statusByte())
	cpu.I = true
	low := uint16(cpu.memory.Read(nmiVector))
	high := uint16(cpu.memory.Read(nmiVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 7
}

// Step services a pending IRQ (if the interrupt-disable flag allows
// it), then executes one instruction, returning the cycles consumed.
// It returns ErrUnknownOpcode, wrapped with the offending opcode and
// PC, for any opcode absent from the official table.
func (cpu *CPU) Step() (uint64, error) {
	before := cpu.cycles

	if cpu.irqLine && !cpu.I {
		cpu.pushWord(cpu.PC)
		cpu.push(cpu.statusByte())
		cpu.I = true
		low := uint16(cpu.memory.Read(irqVector))
		high := uint16(cpu.memory.Read(irqVector + 1))
		cpu.PC = (high << 8) | low
		cpu.cycles += 7
	}

	opcode := cpu.memory.Read(cpu.PC)
	inst := cpu.instructions[opcode]
	if inst == nil {
		return 0, fmt.Errorf("%w: opcode $%02X at $%04X", neserr.ErrUnknownOpcode, opcode, cpu.PC)
	}

	opcodePC := cpu.PC
	address := cpu.operandAddress(inst.Mode)
	cpu.branchTaken = false
	cpu.executeInstruction(opcode, address)

	var extra uint64
	if inst.Mode == Relative && cpu.branchTaken {
		// A taken branch always costs one extra cycle; it costs a
		// second if the destination lands on a different page than
		// the branch opcode itself (not the following instruction).
		extra = 1
		if (opcodePC & pageMask) != (address & pageMask) {
			extra++
		}
	}

	cpu.cycles += uint64(inst.Cycles) + extra
	return cpu.cycles - before, nil
}

// operandAddress advances PC past the instruction's operand bytes and
// returns the effective address. For Relative mode this is the branch
// destination; whether that branch is actually taken, and any page-cross
// penalty that follows from it, is resolved separately in Step once
// executeInstruction has run.
func (cpu *CPU) operandAddress(mode AddressingMode) uint16 {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0

	case Immediate:
		addr := cpu.PC + 1
		cpu.PC += 2
		return addr

	case ZeroPage:
		addr := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return addr

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC + 1)
		addr := uint16(base+cpu.X) & zeroPageMask
		cpu.PC += 2
		return addr

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC + 1)
		addr := uint16(base+cpu.Y) & zeroPageMask
		cpu.PC += 2
		return addr

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		nextPC := cpu.PC + 2
		dest := uint16(int32(nextPC) + int32(offset))
		cpu.PC = nextPC
		return dest

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		cpu.PC += 3
		return (high << 8) | low

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		cpu.PC += 3
		return ((high << 8) | low) + uint16(cpu.X)

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		cpu.PC += 3
		return ((high << 8) | low) + uint16(cpu.Y)

	case Indirect: // JMP only
		lowPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr
		cpu.PC += 3

		low := uint16(cpu.memory.Read(ptr))
		// Hardware bug: the high byte wraps within the same page
		// instead of crossing into the next one.
		high := uint16(cpu.memory.Read((ptr & pageMask) | ((ptr + 1) & zeroPageMask)))
		return (high << 8) | low

	case IndexedIndirect:
		base := cpu.memory.Read(cpu.PC + 1)
		ptr := uint16(base+cpu.X) & zeroPageMask
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		cpu.PC += 2
		return (high << 8) | low

	case IndirectIndexed:
		ptr := uint16(cpu.memory.Read(cpu.PC + 1))
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		cpu.PC += 2
		return ((high << 8) | low) + uint16(cpu.Y)

	default:
		return 0
	}
}

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// statusByte packs the discrete flags into the 6502 status register
// layout, with bit 5 (unused) always set.
func (cpu *CPU) statusByte() uint8 {
	var status uint8 = unusedMask
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// setStatusByte unpacks an 8-bit status byte onto the discrete flags.
// B is never a live flag: it only has meaning as pushed onto the
// stack, so it is left untouched here regardless of caller.
func (cpu *CPU) setStatusByte(status uint8) {
	cpu.N = status&nFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.C = status&cFlagMask != 0
}

// StatusByte exposes the packed status register, e.g. for a trace log.
func (cpu *CPU) StatusByte() uint8 {
	return cpu.statusByte()
}
