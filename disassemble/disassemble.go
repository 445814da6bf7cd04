// Package disassemble turns a 65816 instruction stream into the text used
// by host.Processor's instruction-trace sink. It never interprets control
// flow: a JMP followed by more bytes disassembles as that literal sequence,
// it does not follow the jump.
package disassemble

import (
	"fmt"

	"github.com/lunarlabs/EightSixteenEmu/bus"
)

// addrMode enumerates the operand formats the disassembler prints, a
// finer-grained private table than cpu.AddrMode rather than an import of it,
// so this package only depends on the bus, not on cpu's internal
// register-width plumbing.
type addrMode int

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediateM
	modeImmediateX
	modeImmediate8
	modeRelative8
	modeRelativeLong
	modeDirect
	modeDirectX
	modeDirectY
	modeDirectIndirect
	modeDirectIndexedIndirect
	modeDirectIndirectIndexed
	modeDirectIndirectLong
	modeDirectIndirectLongIndexed
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeAbsoluteLong
	modeAbsoluteLongX
	modeStackRelative
	modeStackRelativeIndirectIndexedY
	modeAbsoluteIndirect
	modeAbsoluteIndirectLong
	modeAbsoluteIndexedIndirect
	modeBlockMove
)

type entry struct {
	op   string
	mode addrMode
}

// opcodeTable is the full 65816 instruction matrix. Every position is a
// defined opcode: the 816 has no illegal-opcode gaps the way the 6502 does.
var opcodeTable = [256]entry{
	0x00: {"BRK", modeImmediate8}, 0x01: {"ORA", modeDirectIndexedIndirect},
	0x02: {"COP", modeImmediate8}, 0x03: {"ORA", modeStackRelative},
	0x04: {"TSB", modeDirect}, 0x05: {"ORA", modeDirect},
	0x06: {"ASL", modeDirect}, 0x07: {"ORA", modeDirectIndirectLong},
	0x08: {"PHP", modeImplied}, 0x09: {"ORA", modeImmediateM},
	0x0A: {"ASL", modeAccumulator}, 0x0B: {"PHD", modeImplied},
	0x0C: {"TSB", modeAbsolute}, 0x0D: {"ORA", modeAbsolute},
	0x0E: {"ASL", modeAbsolute}, 0x0F: {"ORA", modeAbsoluteLong},
	0x10: {"BPL", modeRelative8}, 0x11: {"ORA", modeDirectIndirectIndexed},
	0x12: {"ORA", modeDirectIndirect}, 0x13: {"ORA", modeStackRelativeIndirectIndexedY},
	0x14: {"TRB", modeDirect}, 0x15: {"ORA", modeDirectX},
	0x16: {"ASL", modeDirectX}, 0x17: {"ORA", modeDirectIndirectLongIndexed},
	0x18: {"CLC", modeImplied}, 0x19: {"ORA", modeAbsoluteY},
	0x1A: {"INC", modeAccumulator}, 0x1B: {"TCS", modeImplied},
	0x1C: {"TRB", modeAbsolute}, 0x1D: {"ORA", modeAbsoluteX},
	0x1E: {"ASL", modeAbsoluteX}, 0x1F: {"ORA", modeAbsoluteLongX},
	0x20: {"JSR", modeAbsolute}, 0x21: {"AND", modeDirectIndexedIndirect},
	0x22: {"JSL", modeAbsoluteLong}, 0x23: {"AND", modeStackRelative},
	0x24: {"BIT", modeDirect}, 0x25: {"AND", modeDirect},
	0x26: {"ROL", modeDirect}, 0x27: {"AND", modeDirectIndirectLong},
	0x28: {"PLP", modeImplied}, 0x29: {"AND", modeImmediateM},
	0x2A: {"ROL", modeAccumulator}, 0x2B: {"PLD", modeImplied},
	0x2C: {"BIT", modeAbsolute}, 0x2D: {"AND", modeAbsolute},
	0x2E: {"ROL", modeAbsolute}, 0x2F: {"AND", modeAbsoluteLong},
	0x30: {"BMI", modeRelative8}, 0x31: {"AND", modeDirectIndirectIndexed},
	0x32: {"AND", modeDirectIndirect}, 0x33: {"AND", modeStackRelativeIndirectIndexedY},
	0x34: {"BIT", modeDirectX}, 0x35: {"AND", modeDirectX},
	0x36: {"ROL", modeDirectX}, 0x37: {"AND", modeDirectIndirectLongIndexed},
	0x38: {"SEC", modeImplied}, 0x39: {"AND", modeAbsoluteY},
	0x3A: {"DEC", modeAccumulator}, 0x3B: {"TSC", modeImplied},
	0x3C: {"BIT", modeAbsoluteX}, 0x3D: {"AND", modeAbsoluteX},
	0x3E: {"ROL", modeAbsoluteX}, 0x3F: {"AND", modeAbsoluteLongX},
	0x40: {"RTI", modeImplied}, 0x41: {"EOR", modeDirectIndexedIndirect},
	0x42: {"WDM", modeImmediate8}, 0x43: {"EOR", modeStackRelative},
	0x44: {"MVP", modeBlockMove}, 0x45: {"EOR", modeDirect},
	0x46: {"LSR", modeDirect}, 0x47: {"EOR", modeDirectIndirectLong},
	0x48: {"PHA", modeImplied}, 0x49: {"EOR", modeImmediateM},
	0x4A: {"LSR", modeAccumulator}, 0x4B: {"PHK", modeImplied},
	0x4C: {"JMP", modeAbsolute}, 0x4D: {"EOR", modeAbsolute},
	0x4E: {"LSR", modeAbsolute}, 0x4F: {"EOR", modeAbsoluteLong},
	0x50: {"BVC", modeRelative8}, 0x51: {"EOR", modeDirectIndirectIndexed},
	0x52: {"EOR", modeDirectIndirect}, 0x53: {"EOR", modeStackRelativeIndirectIndexedY},
	0x54: {"MVN", modeBlockMove}, 0x55: {"EOR", modeDirectX},
	0x56: {"LSR", modeDirectX}, 0x57: {"EOR", modeDirectIndirectLongIndexed},
	0x58: {"CLI", modeImplied}, 0x59: {"EOR", modeAbsoluteY},
	0x5A: {"PHY", modeImplied}, 0x5B: {"TCD", modeImplied},
	0x5C: {"JMP", modeAbsoluteLong}, 0x5D: {"EOR", modeAbsoluteX},
	0x5E: {"LSR", modeAbsoluteX}, 0x5F: {"EOR", modeAbsoluteLongX},
	0x60: {"RTS", modeImplied}, 0x61: {"ADC", modeDirectIndexedIndirect},
	0x62: {"PER", modeRelativeLong}, 0x63: {"ADC", modeStackRelative},
	0x64: {"STZ", modeDirect}, 0x65: {"ADC", modeDirect},
	0x66: {"ROR", modeDirect}, 0x67: {"ADC", modeDirectIndirectLong},
	0x68: {"PLA", modeImplied}, 0x69: {"ADC", modeImmediateM},
	0x6A: {"ROR", modeAccumulator}, 0x6B: {"RTL", modeImplied},
	0x6C: {"JMP", modeAbsoluteIndirect}, 0x6D: {"ADC", modeAbsolute},
	0x6E: {"ROR", modeAbsolute}, 0x6F: {"ADC", modeAbsoluteLong},
	0x70: {"BVS", modeRelative8}, 0x71: {"ADC", modeDirectIndirectIndexed},
	0x72: {"ADC", modeDirectIndirect}, 0x73: {"ADC", modeStackRelativeIndirectIndexedY},
	0x74: {"STZ", modeDirectX}, 0x75: {"ADC", modeDirectX},
	0x76: {"ROR", modeDirectX}, 0x77: {"ADC", modeDirectIndirectLongIndexed},
	0x78: {"SEI", modeImplied}, 0x79: {"ADC", modeAbsoluteY},
	0x7A: {"PLY", modeImplied}, 0x7B: {"TDC", modeImplied},
	0x7C: {"JMP", modeAbsoluteIndexedIndirect}, 0x7D: {"ADC", modeAbsoluteX},
	0x7E: {"ROR", modeAbsoluteX}, 0x7F: {"ADC", modeAbsoluteLongX},
	0x80: {"BRA", modeRelative8}, 0x81: {"STA", modeDirectIndexedIndirect},
	0x82: {"BRL", modeRelativeLong}, 0x83: {"STA", modeStackRelative},
	0x84: {"STY", modeDirect}, 0x85: {"STA", modeDirect},
	0x86: {"STX", modeDirect}, 0x87: {"STA", modeDirectIndirectLong},
	0x88: {"DEY", modeImplied}, 0x89: {"BIT", modeImmediateM},
	0x8A: {"TXA", modeImplied}, 0x8B: {"PHB", modeImplied},
	0x8C: {"STY", modeAbsolute}, 0x8D: {"STA", modeAbsolute},
	0x8E: {"STX", modeAbsolute}, 0x8F: {"STA", modeAbsoluteLong},
	0x90: {"BCC", modeRelative8}, 0x91: {"STA", modeDirectIndirectIndexed},
	0x92: {"STA", modeDirectIndirect}, 0x93: {"STA", modeStackRelativeIndirectIndexedY},
	0x94: {"STY", modeDirectX}, 0x95: {"STA", modeDirectX},
	0x96: {"STX", modeDirectY}, 0x97: {"STA", modeDirectIndirectLongIndexed},
	0x98: {"TYA", modeImplied}, 0x99: {"STA", modeAbsoluteY},
	0x9A: {"TXS", modeImplied}, 0x9B: {"TXY", modeImplied},
	0x9C: {"STZ", modeAbsolute}, 0x9D: {"STA", modeAbsoluteX},
	0x9E: {"STZ", modeAbsoluteX}, 0x9F: {"STA", modeAbsoluteLongX},
	0xA0: {"LDY", modeImmediateX}, 0xA1: {"LDA", modeDirectIndexedIndirect},
	0xA2: {"LDX", modeImmediateX}, 0xA3: {"LDA", modeStackRelative},
	0xA4: {"LDY", modeDirect}, 0xA5: {"LDA", modeDirect},
	0xA6: {"LDX", modeDirect}, 0xA7: {"LDA", modeDirectIndirectLong},
	0xA8: {"TAY", modeImplied}, 0xA9: {"LDA", modeImmediateM},
	0xAA: {"TAX", modeImplied}, 0xAB: {"PLB", modeImplied},
	0xAC: {"LDY", modeAbsolute}, 0xAD: {"LDA", modeAbsolute},
	0xAE: {"LDX", modeAbsolute}, 0xAF: {"LDA", modeAbsoluteLong},
	0xB0: {"BCS", modeRelative8}, 0xB1: {"LDA", modeDirectIndirectIndexed},
	0xB2: {"LDA", modeDirectIndirect}, 0xB3: {"LDA", modeStackRelativeIndirectIndexedY},
	0xB4: {"LDY", modeDirectX}, 0xB5: {"LDA", modeDirectX},
	0xB6: {"LDX", modeDirectY}, 0xB7: {"LDA", modeDirectIndirectLongIndexed},
	0xB8: {"CLV", modeImplied}, 0xB9: {"LDA", modeAbsoluteY},
	0xBA: {"TSX", modeImplied}, 0xBB: {"TYX", modeImplied},
	0xBC: {"LDY", modeAbsoluteX}, 0xBD: {"LDA", modeAbsoluteX},
	0xBE: {"LDX", modeAbsoluteY}, 0xBF: {"LDA", modeAbsoluteLongX},
	0xC0: {"CPY", modeImmediateX}, 0xC1: {"CMP", modeDirectIndexedIndirect},
	0xC2: {"REP", modeImmediate8}, 0xC3: {"CMP", modeStackRelative},
	0xC4: {"CPY", modeDirect}, 0xC5: {"CMP", modeDirect},
	0xC6: {"DEC", modeDirect}, 0xC7: {"CMP", modeDirectIndirectLong},
	0xC8: {"INY", modeImplied}, 0xC9: {"CMP", modeImmediateM},
	0xCA: {"DEX", modeImplied}, 0xCB: {"WAI", modeImplied},
	0xCC: {"CPY", modeAbsolute}, 0xCD: {"CMP", modeAbsolute},
	0xCE: {"DEC", modeAbsolute}, 0xCF: {"CMP", modeAbsoluteLong},
	0xD0: {"BNE", modeRelative8}, 0xD1: {"CMP", modeDirectIndirectIndexed},
	0xD2: {"CMP", modeDirectIndirect}, 0xD3: {"CMP", modeStackRelativeIndirectIndexedY},
	0xD4: {"PEI", modeDirectIndirect}, 0xD5: {"CMP", modeDirectX},
	0xD6: {"DEC", modeDirectX}, 0xD7: {"CMP", modeDirectIndirectLongIndexed},
	0xD8: {"CLD", modeImplied}, 0xD9: {"CMP", modeAbsoluteY},
	0xDA: {"PHX", modeImplied}, 0xDB: {"STP", modeImplied},
	0xDC: {"JMP", modeAbsoluteIndirectLong}, 0xDD: {"CMP", modeAbsoluteX},
	0xDE: {"DEC", modeAbsoluteX}, 0xDF: {"CMP", modeAbsoluteLongX},
	0xE0: {"CPX", modeImmediateX}, 0xE1: {"SBC", modeDirectIndexedIndirect},
	0xE2: {"SEP", modeImmediate8}, 0xE3: {"SBC", modeStackRelative},
	0xE4: {"CPX", modeDirect}, 0xE5: {"SBC", modeDirect},
	0xE6: {"INC", modeDirect}, 0xE7: {"SBC", modeDirectIndirectLong},
	0xE8: {"INX", modeImplied}, 0xE9: {"SBC", modeImmediateM},
	0xEA: {"NOP", modeImplied}, 0xEB: {"XBA", modeImplied},
	0xEC: {"CPX", modeAbsolute}, 0xED: {"SBC", modeAbsolute},
	0xEE: {"INC", modeAbsolute}, 0xEF: {"SBC", modeAbsoluteLong},
	0xF0: {"BEQ", modeRelative8}, 0xF1: {"SBC", modeDirectIndirectIndexed},
	0xF2: {"SBC", modeDirectIndirect}, 0xF3: {"SBC", modeStackRelativeIndirectIndexedY},
	0xF4: {"PEA", modeAbsolute}, 0xF5: {"SBC", modeDirectX},
	0xF6: {"INC", modeDirectX}, 0xF7: {"SBC", modeDirectIndirectLongIndexed},
	0xF8: {"SED", modeImplied}, 0xF9: {"SBC", modeAbsoluteY},
	0xFA: {"PLX", modeImplied}, 0xFB: {"XCE", modeImplied},
	0xFC: {"JSR", modeAbsoluteIndexedIndirect}, 0xFD: {"SBC", modeAbsoluteX},
	0xFE: {"INC", modeAbsoluteX}, 0xFF: {"SBC", modeAbsoluteLongX},
}

// peek reads one byte through m without any of the open-bus/MD side effects
// a live core would apply; disassembly is read-only and must never perturb
// the machine it is inspecting.
func peek(m *bus.Mapper, addr uint32) uint8 {
	v, _ := m.Read(addr)
	return v
}

// Step disassembles the instruction at bank:pc and returns its text and the
// number of bytes (including the opcode) it occupies. longA/longX report
// whether the M/X flags are currently clear (16-bit accumulator/index),
// which is the only register state that changes an instruction's length on
// the 65816: every other addressing mode has a fixed byte count.
func Step(pc uint16, bank uint8, m *bus.Mapper, longA, longX bool) (string, int) {
	addr := uint32(bank)<<16 | uint32(pc)
	o := peek(m, addr)
	e := opcodeTable[o]

	b1 := peek(m, addr+1)
	b2 := peek(m, addr+2)
	b3 := peek(m, addr+3)
	word := uint16(b1) | uint16(b2)<<8
	long := uint32(b1) | uint32(b2)<<8 | uint32(b3)<<16

	count := 1
	var operand string
	switch e.mode {
	case modeImplied:
		// nothing
	case modeAccumulator:
		operand = " A"
	case modeImmediateM:
		if longA {
			operand = fmt.Sprintf(" #$%04X", word)
			count = 3
		} else {
			operand = fmt.Sprintf(" #$%02X", b1)
			count = 2
		}
	case modeImmediateX:
		if longX {
			operand = fmt.Sprintf(" #$%04X", word)
			count = 3
		} else {
			operand = fmt.Sprintf(" #$%02X", b1)
			count = 2
		}
	case modeImmediate8:
		operand = fmt.Sprintf(" #$%02X", b1)
		count = 2
	case modeRelative8:
		target := uint16(int32(pc) + 2 + int32(int8(b1)))
		operand = fmt.Sprintf(" $%04X", target)
		count = 2
	case modeRelativeLong:
		target := uint16(int32(pc) + 3 + int32(int16(word)))
		operand = fmt.Sprintf(" $%04X", target)
		count = 3
	case modeDirect:
		operand = fmt.Sprintf(" $%02X", b1)
		count = 2
	case modeDirectX:
		operand = fmt.Sprintf(" $%02X,X", b1)
		count = 2
	case modeDirectY:
		operand = fmt.Sprintf(" $%02X,Y", b1)
		count = 2
	case modeDirectIndirect:
		operand = fmt.Sprintf(" ($%02X)", b1)
		count = 2
	case modeDirectIndexedIndirect:
		operand = fmt.Sprintf(" ($%02X,X)", b1)
		count = 2
	case modeDirectIndirectIndexed:
		operand = fmt.Sprintf(" ($%02X),Y", b1)
		count = 2
	case modeDirectIndirectLong:
		operand = fmt.Sprintf(" [$%02X]", b1)
		count = 2
	case modeDirectIndirectLongIndexed:
		operand = fmt.Sprintf(" [$%02X],Y", b1)
		count = 2
	case modeAbsolute:
		operand = fmt.Sprintf(" $%04X", word)
		count = 3
	case modeAbsoluteX:
		operand = fmt.Sprintf(" $%04X,X", word)
		count = 3
	case modeAbsoluteY:
		operand = fmt.Sprintf(" $%04X,Y", word)
		count = 3
	case modeAbsoluteLong:
		operand = fmt.Sprintf(" $%06X", long)
		count = 4
	case modeAbsoluteLongX:
		operand = fmt.Sprintf(" $%06X,X", long)
		count = 4
	case modeStackRelative:
		operand = fmt.Sprintf(" $%02X,S", b1)
		count = 2
	case modeStackRelativeIndirectIndexedY:
		operand = fmt.Sprintf(" ($%02X,S),Y", b1)
		count = 2
	case modeAbsoluteIndirect:
		operand = fmt.Sprintf(" ($%04X)", word)
		count = 3
	case modeAbsoluteIndirectLong:
		operand = fmt.Sprintf(" [$%04X]", word)
		count = 3
	case modeAbsoluteIndexedIndirect:
		operand = fmt.Sprintf(" ($%04X,X)", word)
		count = 3
	case modeBlockMove:
		// MVN/MVP encode destination bank then source bank.
		operand = fmt.Sprintf(" $%02X,$%02X", b2, b1)
		count = 3
	}

	return fmt.Sprintf("%02X:%04X %02X %s%s", bank, pc, o, e.op, operand), count
}
