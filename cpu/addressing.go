package cpu

// AddrMode enumerates the addressing modes dispatchAddr drives generically
// for load/store/RMW-style opcodes. Of the 25 modes in §4.4, the remaining
// ones — Implied, Accumulator, the three immediate widths, the two relative
// branch-displacement forms, the three indirect-jump forms (JMP/JMPL/JSR's
// (abs), (abs,X), [abs]), and block move — have no effective-address
// computation to share, so JMP/JSR/Bcc/REP/SEP/COP/BRK/MVN/MVP build their
// operand tails directly in opcodes.go instead of going through this enum.
type AddrMode int

const (
	AddrDirect AddrMode = iota
	AddrDirectX
	AddrDirectY
	AddrDirectIndirect
	AddrDirectIndexedIndirect
	AddrDirectIndirectIndexed
	AddrDirectIndirectLong
	AddrDirectIndirectLongIndexed
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrAbsoluteLong
	AddrAbsoluteLongX
	AddrStackRelative
	AddrStackRelativeIndirectIndexedY
)

// pcAddr returns the 24-bit address of the next byte in the instruction
// stream.
func (c *Core) pcAddr() uint32 { return uint32(c.PB)<<16 | uint32(c.PC) }

// busRead performs one bus read with open-bus MD retention (spec §4.2):
// an unmapped address leaves MD (and the returned value) at its previous
// contents instead of synthesizing a zero.
func (c *Core) busRead(addr uint32) uint8 {
	if v, ok := c.mapper.Read(addr); ok {
		c.MD = v
	}
	return c.MD
}

func (c *Core) busWrite(addr uint32, val uint8) {
	c.MD = val
	c.mapper.Write(addr, val)
}

// pushReadOperand enqueues one ReadToAdvancePC micro-op: reads the next
// instruction-stream byte into dest and advances PC.
func (c *Core) pushReadOperand(dest *uint8) {
	c.enqueue(opReadToAdvancePC, func(c *Core) Cycle {
		addr := c.pcAddr()
		val := c.busRead(addr)
		*dest = val
		c.PC++
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

// pushReadAt enqueues a plain bus read (no PC involvement) into dest.
func (c *Core) pushReadAt(addrFn func(c *Core) uint32, dest *uint8) {
	c.enqueue(opReadTo, func(c *Core) Cycle {
		addr := addrFn(c)
		val := c.busRead(addr)
		*dest = val
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

func (c *Core) pushWriteAt(addrFn func(c *Core) uint32, src func(c *Core) uint8) {
	c.enqueue(opWriteFrom, func(c *Core) Cycle {
		addr := addrFn(c)
		val := src(c)
		c.busWrite(addr, val)
		return Cycle{Kind: CycleWrite, Address: addr, Data: val}
	})
}

// directBase computes the direct-page effective address from the already
// fetched offset byte(s), applying the E=1/DL=0 shortcut of §3.
func (c *Core) directBase(off uint16) uint32 {
	if c.E && c.DP&0xFF == 0 {
		return uint32(c.DP&0xFF00) | uint32(uint8(c.DP)+uint8(off))
	}
	return uint32(uint16(c.DP + off))
}

func (c *Core) directPageExtraCycle() bool {
	return !(c.E && c.DP&0xFF == 0)
}

// pageCrossExtra implements the Open-Question decision recorded in
// DESIGN.md: indexed modes take one extra internal cycle for a page
// crossing only in emulation mode; native mode's 16-bit index path never
// pays it.
func (c *Core) pageCrossExtra(base uint32, idx uint16) int {
	if !c.E {
		return 0
	}
	if (base>>8)&0xFF != ((base+uint32(idx))>>8)&0xFF {
		return 1
	}
	return 0
}

// --- effective-address builders -------------------------------------------
//
// Each builder enqueues the micro-ops that compute c.opAddr (the 24-bit
// effective address) from the instruction stream and the register file,
// then invokes data(c) to append the load/store/rmw-specific tail. This is
// the direct generalization of the teacher's addrZP/addrAbsolute/
// addrIndirectX family, parameterized by mode instead of duplicated per
// opcode.

func (c *Core) buildDirect(data func(c *Core)) {
	c.pushReadOperand(&c.opVal1)
	extra := c.directPageExtraCycle()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = c.directBase(uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	if extra {
		c.enqueueInternal()
	}
	data(c)
}

func (c *Core) buildDirectIndexed(index func(c *Core) uint16, data func(c *Core)) {
	c.pushReadOperand(&c.opVal1)
	extra := c.directPageExtraCycle()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = c.directBase(uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	if extra {
		c.enqueueInternal()
	}
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(uint16(c.opAddr) + index(c))
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildDirectX(data func(c *Core)) {
	c.buildDirectIndexed(func(c *Core) uint16 { return c.getX() }, data)
}

func (c *Core) buildDirectY(data func(c *Core)) {
	c.buildDirectIndexed(func(c *Core) uint16 { return c.getY() }, data)
}

// pushDirectPointer reads the 16-bit bank-0 pointer word stored at the
// direct page; the address of its second byte wraps within bank 0.
func (c *Core) pushDirectPointer(bankFixed bool) {
	c.pushReadOperand(&c.opVal1)
	extra := c.directPageExtraCycle()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = c.directBase(uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	if extra {
		c.enqueueInternal()
	}
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return (c.opPtr & 0xFF0000) | uint32(uint16(c.opPtr)+1) }, &c.opVal2)
}

func (c *Core) buildDirectIndirect(data func(c *Core)) {
	c.pushDirectPointer(true)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.DB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildDirectIndexedIndirect(data func(c *Core)) {
	// (d,X): add X to the direct-page offset before indirection.
	c.pushReadOperand(&c.opVal1)
	extra := c.directPageExtraCycle()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = c.directBase(uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	if extra {
		c.enqueueInternal()
	}
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = (c.opPtr & 0xFF0000) | uint32(uint16(c.opPtr)+c.getX())
		return Cycle{Kind: CycleInternal}
	})
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return (c.opPtr & 0xFF0000) | uint32(uint16(c.opPtr)+1) }, &c.opVal2)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.DB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildDirectIndirectIndexed(data func(c *Core)) {
	// (d),Y: indirect first, then add Y.
	c.pushDirectPointer(true)
	c.enqueue(opInternal, func(c *Core) Cycle {
		base := uint32(c.DB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		c.opAddr = base
		return Cycle{Kind: CycleInternal}
	})
	c.enqueue(opInternal, func(c *Core) Cycle {
		extra := c.pageCrossExtra(c.opAddr, c.getY())
		bank := c.opAddr & 0xFF0000
		c.opAddr = bank | uint32(uint16(c.opAddr)+c.getY())
		if extra > 0 {
			// The page-cross cycle runs next, ahead of the data tail.
			c.queue = append([]microOp{{kind: opInternal, fn: func(*Core) Cycle { return Cycle{Kind: CycleInternal} }}}, c.queue...)
		}
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) pushDirectPointerLong() {
	c.pushReadOperand(&c.opVal1)
	extra := c.directPageExtraCycle()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = c.directBase(uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	if extra {
		c.enqueueInternal()
	}
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return (c.opPtr & 0xFF0000) | uint32(uint16(c.opPtr)+1) }, &c.opVal2)
	c.pushReadAt(func(c *Core) uint32 { return (c.opPtr & 0xFF0000) | uint32(uint16(c.opPtr)+2) }, &c.opBank)
}

func (c *Core) buildDirectIndirectLong(data func(c *Core)) {
	c.pushDirectPointerLong()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.opBank)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildDirectIndirectLongIndexed(data func(c *Core)) {
	c.pushDirectPointerLong()
	c.enqueue(opInternal, func(c *Core) Cycle {
		base := uint32(c.opBank)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		c.opAddr = (base & 0xFF0000) | uint32(uint16(base)+c.getY())
		if uint32(uint16(base)+c.getY()) < uint32(uint16(base)) {
			c.opAddr += 0x010000
		}
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) pushAbsoluteOperand() {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
}

func (c *Core) buildAbsolute(data func(c *Core)) {
	c.pushAbsoluteOperand()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.DB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildAbsoluteIndexed(index func(c *Core) uint16, data func(c *Core)) {
	c.pushAbsoluteOperand()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.DB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	c.enqueue(opInternal, func(c *Core) Cycle {
		extra := c.pageCrossExtra(c.opAddr, index(c))
		bank := c.opAddr & 0xFF0000
		c.opAddr = bank | uint32(uint16(c.opAddr)+index(c))
		if extra > 0 {
			// The page-cross cycle runs next, ahead of the data tail.
			c.queue = append([]microOp{{kind: opInternal, fn: func(*Core) Cycle { return Cycle{Kind: CycleInternal} }}}, c.queue...)
		}
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildAbsoluteX(data func(c *Core)) {
	c.buildAbsoluteIndexed(func(c *Core) uint16 { return c.getX() }, data)
}

func (c *Core) buildAbsoluteY(data func(c *Core)) {
	c.buildAbsoluteIndexed(func(c *Core) uint16 { return c.getY() }, data)
}

func (c *Core) buildAbsoluteLong(data func(c *Core)) {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.pushReadOperand(&c.opBank)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.opBank)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildAbsoluteLongX(data func(c *Core)) {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.pushReadOperand(&c.opBank)
	c.enqueue(opInternal, func(c *Core) Cycle {
		base := uint32(c.opBank)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		sum := uint64(base) + uint64(c.getX())
		c.opAddr = uint32(sum & 0xFFFFFF)
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildStackRelative(data func(c *Core)) {
	c.pushReadOperand(&c.opVal1)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(uint16(c.SP) + uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildStackRelativeIndirectIndexedY(data func(c *Core)) {
	c.pushReadOperand(&c.opVal1)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = uint32(uint16(c.SP) + uint16(c.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return uint32(uint16(c.opPtr) + 1) }, &c.opVal2)
	c.enqueue(opInternal, func(c *Core) Cycle {
		base := uint32(c.DB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		c.opAddr = (base & 0xFF0000) | uint32(uint16(base)+c.getY())
		return Cycle{Kind: CycleInternal}
	})
	c.enqueueInternal()
	data(c)
}

func (c *Core) buildAbsoluteIndirect(data func(c *Core)) {
	c.pushAbsoluteOperand()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return uint32(uint16(c.opPtr) + 1) }, &c.opVal2)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.PB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildAbsoluteIndirectLong(data func(c *Core)) {
	c.pushAbsoluteOperand()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return uint32(uint16(c.opPtr) + 1) }, &c.opVal2)
	c.pushReadAt(func(c *Core) uint32 { return uint32(uint16(c.opPtr) + 2) }, &c.opBank)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.opBank)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}

func (c *Core) buildAbsoluteIndexedIndirect(data func(c *Core)) {
	c.pushAbsoluteOperand()
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opPtr = uint32(c.PB)<<16 | uint32(uint16(uint32(c.opVal1)|uint32(c.opVal2)<<8)+c.getX())
		return Cycle{Kind: CycleInternal}
	})
	c.pushReadAt(func(c *Core) uint32 { return c.opPtr }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return (c.opPtr & 0xFF0000) | uint32(uint16(c.opPtr)+1) }, &c.opVal2)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.opAddr = uint32(c.PB)<<16 | uint32(c.opVal1) | uint32(c.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	data(c)
}
