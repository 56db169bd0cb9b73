package cpu

// executeInstruction performs the opcode's effect once its operand
// address has been resolved and PC already advanced past it.
func (cpu *CPU) executeInstruction(opcode uint8, address uint16) {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.A = cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.X = cpu.memory.Read(address)
		cpu.setZN(cpu.X)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.Y = cpu.memory.Read(address)
		cpu.setZN(cpu.Y)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.memory.Write(address, cpu.A)
	case 0x86, 0x96, 0x8E:
		cpu.memory.Write(address, cpu.X)
	case 0x84, 0x94, 0x8C:
		cpu.memory.Write(address, cpu.Y)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(cpu.memory.Read(address))
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		cpu.adc(cpu.memory.Read(address) ^ 0xFF)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.A |= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.A ^= cpu.memory.Read(address)
		cpu.setZN(cpu.A)

	case 0x0A:
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		cpu.setZN(cpu.A)
	case 0x06, 0x16, 0x0E, 0x1E:
		value := cpu.memory.Read(address)
		cpu.C = value&0x80 != 0
		value <<= 1
		cpu.memory.Write(address, value)
		cpu.setZN(value)

	case 0x4A:
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
	case 0x46, 0x56, 0x4E, 0x5E:
		value := cpu.memory.Read(address)
		cpu.C = value&0x01 != 0
		value >>= 1
		cpu.memory.Write(address, value)
		cpu.setZN(value)

	case 0x2A:
		carry := cpu.C
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		if carry {
			cpu.A |= 0x01
		}
		cpu.setZN(cpu.A)
	case 0x26, 0x36, 0x2E, 0x3E:
		value := cpu.memory.Read(address)
		carry := cpu.C
		cpu.C = value&0x80 != 0
		value <<= 1
		if carry {
			value |= 0x01
		}
		cpu.memory.Write(address, value)
		cpu.setZN(value)

	case 0x6A:
		carry := cpu.C
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		if carry {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
	case 0x66, 0x76, 0x6E, 0x7E:
		value := cpu.memory.Read(address)
		carry := cpu.C
		cpu.C = value&0x01 != 0
		value >>= 1
		if carry {
			value |= 0x80
		}
		cpu.memory.Write(address, value)
		cpu.setZN(value)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.compare(cpu.A, cpu.memory.Read(address))
	case 0xE0, 0xE4, 0xEC:
		cpu.compare(cpu.X, cpu.memory.Read(address))
	case 0xC0, 0xC4, 0xCC:
		cpu.compare(cpu.Y, cpu.memory.Read(address))

	case 0xE6, 0xF6, 0xEE, 0xFE:
		value := cpu.memory.Read(address) + 1
		cpu.memory.Write(address, value)
		cpu.setZN(value)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		value := cpu.memory.Read(address) - 1
		cpu.memory.Write(address, value)
		cpu.setZN(value)
	case 0xE8:
		cpu.X++
		cpu.setZN(cpu.X)
	case 0xCA:
		cpu.X--
		cpu.setZN(cpu.X)
	case 0xC8:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case 0x88:
		cpu.Y--
		cpu.setZN(cpu.Y)

	case 0xAA:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case 0x8A:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case 0xA8:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case 0x98:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case 0xBA:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case 0x9A:
		cpu.SP = cpu.X

	case 0x48:
		cpu.push(cpu.A)
	case 0x68:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case 0x08:
		cpu.push(cpu.statusByte() | bFlagMask)
	case 0x28:
		cpu.setStatusByte(cpu.pop())

	case 0x18:
		cpu.C = false
	case 0x38:
		cpu.C = true
	case 0x58:
		cpu.I = false
	case 0x78:
		cpu.I = true
	case 0xB8:
		cpu.V = false
	case 0xD8:
		cpu.D = false
	case 0xF8:
		cpu.D = true

	case 0x4C, 0x6C:
		cpu.PC = address
	case 0x20:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case 0x60:
		cpu.PC = cpu.popWord() + 1
	case 0x40:
		cpu.setStatusByte(cpu.pop())
		cpu.PC = cpu.popWord()

	case 0x90:
		if !cpu.C {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0xB0:
		if cpu.C {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0xF0:
		if cpu.Z {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0x30:
		if cpu.N {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0xD0:
		if !cpu.Z {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0x10:
		if !cpu.N {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0x50:
		if !cpu.V {
			cpu.PC = address
			cpu.branchTaken = true
		}
	case 0x70:
		if cpu.V {
			cpu.PC = address
			cpu.branchTaken = true
		}

	case 0x24, 0x2C:
		value := cpu.memory.Read(address)
		cpu.N = value&nFlagMask != 0
		cpu.V = value&vFlagMask != 0
		cpu.Z = value&cpu.A == 0

	case 0xEA:
		// NOP

	default:
		panic("cpu: unimplemented official opcode dispatch")
	}
}

// adc implements both ADC and SBC: SBC feeds in the one's complement
// of its operand so the same carry-in/carry-out arithmetic applies.
func (cpu *CPU) adc(operand uint8) {
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(operand) + carry

	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^operand)&0x80 == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

// compare implements CMP/CPX/CPY: an unsigned subtraction whose
// borrow-free cases set Carry.
func (cpu *CPU) compare(reg, operand uint8) {
	result := reg - operand
	cpu.C = reg >= operand
	cpu.setZN(result)
}
