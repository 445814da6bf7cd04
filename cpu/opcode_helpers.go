package cpu

// dispatchAddr appends the micro-ops for one of the "addressed" modes (the
// ones that produce an effective address in c.opAddr), then invokes final
// to append the load/store/rmw-specific tail. Implied/Accumulator/Immediate
// opcodes bypass this and build their own tails directly.
func (c *Core) dispatchAddr(mode AddrMode, final func(c *Core)) {
	switch mode {
	case AddrDirect:
		c.buildDirect(final)
	case AddrDirectX:
		c.buildDirectX(final)
	case AddrDirectY:
		c.buildDirectY(final)
	case AddrDirectIndirect:
		c.buildDirectIndirect(final)
	case AddrDirectIndexedIndirect:
		c.buildDirectIndexedIndirect(final)
	case AddrDirectIndirectIndexed:
		c.buildDirectIndirectIndexed(final)
	case AddrDirectIndirectLong:
		c.buildDirectIndirectLong(final)
	case AddrDirectIndirectLongIndexed:
		c.buildDirectIndirectLongIndexed(final)
	case AddrAbsolute:
		c.buildAbsolute(final)
	case AddrAbsoluteX:
		c.buildAbsoluteX(final)
	case AddrAbsoluteY:
		c.buildAbsoluteY(final)
	case AddrAbsoluteLong:
		c.buildAbsoluteLong(final)
	case AddrAbsoluteLongX:
		c.buildAbsoluteLongX(final)
	case AddrStackRelative:
		c.buildStackRelative(final)
	case AddrStackRelativeIndirectIndexedY:
		c.buildStackRelativeIndirectIndexedY(final)
	}
}

// buildImmediate reads one byte (eightBit) or two (PC-advancing each time)
// and hands the assembled value to exec on the very cycle the last operand
// byte lands, the same way the teacher's immediate-mode cases never emit a
// separate "apply" tick.
func (c *Core) buildImmediate(eightBit bool, exec func(val uint16)) {
	if eightBit {
		c.enqueue(opReadToAdvancePC, func(cc *Core) Cycle {
			addr := cc.pcAddr()
			val := cc.busRead(addr)
			cc.PC++
			exec(uint16(val))
			return Cycle{Kind: CycleRead, Address: addr, Data: val}
		})
		return
	}
	c.pushReadOperand(&c.opVal1)
	c.enqueue(opReadToAdvancePC, func(cc *Core) Cycle {
		addr := cc.pcAddr()
		val := cc.busRead(addr)
		cc.PC++
		exec(uint16(cc.opVal1) | uint16(val)<<8)
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

// accALU wires an addressed operand into one of the accumulator-width ALU
// ops (ORA/AND/EOR/ADC/SBC/LDA), whose width always tracks the M flag.
func (c *Core) accALU(mode AddrMode, exec func(val uint16)) {
	eightBit := c.flagM()
	final := c.finishLoad(eightBit, func(cc *Core, v uint16) { exec(v) })
	c.dispatchAddr(mode, final)
}

func (c *Core) accCompare(mode AddrMode) {
	eightBit := c.flagM()
	final := c.finishLoad(eightBit, func(cc *Core, v uint16) { cc.cmp(cc.getA(), v, eightBit) })
	c.dispatchAddr(mode, final)
}

// indexCompare and indexLoad wire CPX/CPY/LDX/LDY's memory operand forms,
// whose width tracks the X flag instead of M.
func (c *Core) indexCompare(mode AddrMode, reg func() uint16) {
	eightBit := c.flagX()
	final := c.finishLoad(eightBit, func(cc *Core, v uint16) { cc.cmp(reg(), v, eightBit) })
	c.dispatchAddr(mode, final)
}

func (c *Core) indexLoad(mode AddrMode, exec func(val uint16)) {
	eightBit := c.flagX()
	final := c.finishLoad(eightBit, func(cc *Core, v uint16) { exec(v) })
	c.dispatchAddr(mode, final)
}

func (c *Core) storeA(mode AddrMode) {
	final := c.finishStore(c.flagM(), func(cc *Core) uint16 { return cc.getA() })
	c.dispatchAddr(mode, final)
}

func (c *Core) storeIndex(mode AddrMode, reg func() uint16) {
	final := c.finishStore(c.flagX(), func(cc *Core) uint16 { return reg() })
	c.dispatchAddr(mode, final)
}

func (c *Core) storeZero(mode AddrMode) {
	final := c.finishStore(c.flagM(), func(cc *Core) uint16 { return 0 })
	c.dispatchAddr(mode, final)
}

// rmw and accumulatorRMW adapt the shift/rotate/inc-dec family (whose
// methods already take (val, eightBit)) into finishRMW's tail, freezing the
// operating width at decode time as every other builder does.
func (c *Core) rmw(mode AddrMode, op func(val uint16, eightBit bool) uint16) {
	eightBit := c.flagM()
	final := c.finishRMW(eightBit, func(cc *Core, v uint16) uint16 { return op(v, eightBit) })
	c.dispatchAddr(mode, final)
}

func (c *Core) accumulatorRMW(op func(val uint16, eightBit bool) uint16) {
	eightBit := c.flagM()
	c.enqueue(opInternal, func(cc *Core) Cycle {
		res := op(cc.getA(), eightBit)
		cc.setA(res)
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) lda(val uint16) { c.setA(val); c.setNZWidth(val, c.flagM()) }
func (c *Core) ldx(val uint16) { c.setX(val); c.setNZWidth(val, c.flagX()) }
func (c *Core) ldy(val uint16) { c.setY(val); c.setNZWidth(val, c.flagX()) }

// branch builds the always-read-the-offset, conditionally-take shape common
// to all eight Bcc opcodes and BRA; a taken branch adds one internal cycle.
// Whether the page-cross penalty applies can't be known until the offset
// byte itself has been read, so this one grows the queue from inside a
// running micro-op rather than deciding everything up front.
func (c *Core) branch(taken bool) {
	c.pushReadOperand(&c.opVal1)
	if !taken {
		return
	}
	c.enqueue(opInternal, func(cc *Core) Cycle {
		offset := int8(cc.opVal1)
		oldPC := cc.PC
		cc.PC = uint16(int32(oldPC) + int32(offset))
		if cc.E && (oldPC>>8) != (cc.PC>>8) {
			cc.enqueueInternal()
		}
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) branchLong() {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		offset := int16(uint16(cc.opVal1) | uint16(cc.opVal2)<<8)
		cc.PC = uint16(int32(cc.PC) + int32(offset))
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) jmpAbsolute() {
	c.pushReadOperand(&c.opVal1)
	c.enqueue(opReadToAdvancePC, func(cc *Core) Cycle {
		addr := cc.pcAddr()
		val := cc.busRead(addr)
		cc.PC = uint16(cc.opVal1) | uint16(val)<<8
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

func (c *Core) jmpAbsoluteLong() {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.enqueue(opReadToAdvancePC, func(cc *Core) Cycle {
		addr := cc.pcAddr()
		val := cc.busRead(addr)
		cc.PC = uint16(cc.opVal1) | uint16(cc.opVal2)<<8
		cc.PB = val
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

func (c *Core) jmpIndirect() {
	c.buildAbsoluteIndirect(func(cc *Core) {
		cc.enqueue(opInternal, func(cc *Core) Cycle {
			cc.PC = uint16(cc.opAddr)
			return Cycle{Kind: CycleInternal}
		})
	})
}

func (c *Core) jmpIndirectLong() {
	c.buildAbsoluteIndirectLong(func(cc *Core) {
		cc.enqueue(opInternal, func(cc *Core) Cycle {
			cc.PC = uint16(cc.opAddr)
			cc.PB = uint8(cc.opAddr >> 16)
			return Cycle{Kind: CycleInternal}
		})
	})
}

func (c *Core) jmpIndexedIndirect() {
	c.buildAbsoluteIndexedIndirect(func(cc *Core) {
		cc.enqueue(opInternal, func(cc *Core) Cycle {
			cc.PC = uint16(cc.opAddr)
			return Cycle{Kind: CycleInternal}
		})
	})
}

func (c *Core) jsr() {
	c.pushReadOperand(&c.opVal1)
	c.pushByte(func(cc *Core) uint8 { return uint8(cc.PC >> 8) })
	c.pushByte(func(cc *Core) uint8 { return uint8(cc.PC) })
	c.pushReadOperand(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.PC = uint16(cc.opVal1) | uint16(cc.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) jsl() {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.pushByte(func(cc *Core) uint8 { return cc.PB })
	c.pushByte(func(cc *Core) uint8 { return uint8(cc.PC >> 8) })
	c.pushByte(func(cc *Core) uint8 { return uint8(cc.PC) })
	c.pushReadOperand(&c.opBank)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.PC = uint16(cc.opVal1) | uint16(cc.opVal2)<<8
		cc.PB = cc.opBank
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) jsrIndexedIndirect() {
	c.pushReadOperand(&c.opVal1)
	c.pushByte(func(cc *Core) uint8 { return uint8(cc.PC >> 8) })
	c.pushByte(func(cc *Core) uint8 { return uint8(cc.PC) })
	c.pushReadOperand(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.opPtr = uint32(cc.PB)<<16 | uint32(uint16(uint32(cc.opVal1)|uint32(cc.opVal2)<<8)+cc.getX())
		return Cycle{Kind: CycleInternal}
	})
	c.pushReadAt(func(cc *Core) uint32 { return cc.opPtr }, &c.opVal1)
	c.pushReadAt(func(cc *Core) uint32 { return (cc.opPtr & 0xFF0000) | uint32(uint16(cc.opPtr)+1) }, &c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.PC = uint16(cc.opVal1) | uint16(cc.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) rts() {
	c.enqueueInternal()
	c.pullByte(&c.opVal1)
	c.pullByte(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.PC = (uint16(cc.opVal1) | uint16(cc.opVal2)<<8) + 1
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) rtl() {
	c.enqueueInternal()
	c.pullByte(&c.opVal1)
	c.pullByte(&c.opVal2)
	c.pullByte(&c.opBank)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.PC = (uint16(cc.opVal1) | uint16(cc.opVal2)<<8) + 1
		cc.PB = cc.opBank
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) rti() {
	c.enqueueInternal()
	c.pullByte(&c.opVal1)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.P = cc.opVal1
		if cc.E {
			cc.P |= PMemory | PIndex
		}
		return Cycle{Kind: CycleInternal}
	})
	c.pullByte(&c.opVal1)
	c.pullByte(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.PC = uint16(cc.opVal1) | uint16(cc.opVal2)<<8
		return Cycle{Kind: CycleInternal}
	})
	if !c.E {
		c.pullByte(&c.opBank)
		c.enqueue(opInternal, func(cc *Core) Cycle {
			cc.PB = cc.opBank
			return Cycle{Kind: CycleInternal}
		})
	}
}

// blockMove implements MVN (mvn=true, incrementing) / MVP (decrementing).
// Per §4.4, X/Y/A are always treated as the full 16-bit register here
// regardless of the M/X width flags, and the instruction re-enqueues itself
// by rewinding PC over its own three opcode bytes while A (the 16-bit
// byte-remaining counter, biased by one) has not yet wrapped to 0xFFFF.
func (c *Core) blockMove(mvn bool) {
	c.pushReadOperand(&c.opVal2) // destination bank
	c.pushReadOperand(&c.opVal1) // source bank
	c.enqueueInternal()
	c.enqueueInternal()
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.DB = cc.opVal2
		srcAddr := uint32(cc.opVal1)<<16 | uint32(cc.X)
		cc.opBank = cc.busRead(srcAddr)
		return Cycle{Kind: CycleRead, Address: srcAddr, Data: cc.opBank}
	})
	c.enqueue(opInternal, func(cc *Core) Cycle {
		dstAddr := uint32(cc.opVal2)<<16 | uint32(cc.Y)
		val := cc.opBank
		cc.busWrite(dstAddr, val)
		if mvn {
			cc.X++
			cc.Y++
		} else {
			cc.X--
			cc.Y--
		}
		cc.A--
		if cc.A != 0xFFFF {
			cc.PC -= 3
		}
		return Cycle{Kind: CycleWrite, Address: dstAddr, Data: val}
	})
}

// transfer covers the register-to-register moves whose target width tracks
// a flag (TAX/TAY/TXA/TYA/TSX/TXY/TYX); the width-invariant C<->D/S moves
// (TCD/TDC/TCS/TSC) and the no-flag TXS are built inline in opcodes.go since
// each has its own special-cased width or flag behavior.
func (c *Core) transfer(src func() uint16, dst func(uint16), widthFlag func() bool) {
	c.enqueue(opInternal, func(cc *Core) Cycle {
		v := src()
		dst(v)
		if widthFlag() {
			cc.setNZ8(uint8(v))
		} else {
			cc.setNZ16(v)
		}
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) flagOp(mask uint8, set bool) {
	c.enqueue(opChangeFlags, func(cc *Core) Cycle {
		cc.setFlag(mask, set)
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) repSep(isSep bool) {
	c.pushReadOperand(&c.opVal1)
	c.enqueue(opChangeFlags, func(cc *Core) Cycle {
		if isSep {
			cc.P |= cc.opVal1
		} else {
			cc.P &^= cc.opVal1
		}
		if cc.E {
			cc.enforceEmulationInvariants()
		}
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) xce() {
	c.enqueue(opInternal, func(cc *Core) Cycle {
		carry := cc.P&PCarry != 0
		wasE := cc.E
		cc.E = carry
		cc.setFlag(PCarry, wasE)
		if cc.E {
			cc.enforceEmulationInvariants()
		}
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) phImplied(src func() uint16, eightBit bool) {
	if eightBit {
		c.pushByte(func(cc *Core) uint8 { return uint8(src()) })
		return
	}
	c.pushByte(func(cc *Core) uint8 { return uint8(src() >> 8) })
	c.pushByte(func(cc *Core) uint8 { return uint8(src()) })
}

func (c *Core) plImplied(dst func(uint16), eightBit bool) {
	c.enqueueInternal()
	if eightBit {
		c.pullByte(&c.opVal1)
		c.enqueue(opInternal, func(cc *Core) Cycle {
			v := uint16(cc.opVal1)
			dst(v)
			cc.setNZ8(uint8(v))
			return Cycle{Kind: CycleInternal}
		})
		return
	}
	c.pullByte(&c.opVal1)
	c.pullByte(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		v := uint16(cc.opVal1) | uint16(cc.opVal2)<<8
		dst(v)
		cc.setNZ16(v)
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) pea() {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.pushByte(func(cc *Core) uint8 { return cc.opVal2 })
	c.pushByte(func(cc *Core) uint8 { return cc.opVal1 })
}

func (c *Core) pei() {
	c.pushReadOperand(&c.opVal1)
	extra := c.directPageExtraCycle()
	c.enqueue(opInternal, func(cc *Core) Cycle {
		cc.opPtr = cc.directBase(uint16(cc.opVal1))
		return Cycle{Kind: CycleInternal}
	})
	if extra {
		c.enqueueInternal()
	}
	c.pushReadAt(func(cc *Core) uint32 { return cc.opPtr }, &c.opVal1)
	c.pushReadAt(func(cc *Core) uint32 { return (cc.opPtr & 0xFF0000) | uint32(uint16(cc.opPtr)+1) }, &c.opVal2)
	c.pushByte(func(cc *Core) uint8 { return cc.opVal2 })
	c.pushByte(func(cc *Core) uint8 { return cc.opVal1 })
}

func (c *Core) per() {
	c.pushReadOperand(&c.opVal1)
	c.pushReadOperand(&c.opVal2)
	c.enqueue(opInternal, func(cc *Core) Cycle {
		offset := int16(uint16(cc.opVal1) | uint16(cc.opVal2)<<8)
		addr := uint16(int32(cc.PC) + int32(offset))
		cc.opVal1 = uint8(addr)
		cc.opVal2 = uint8(addr >> 8)
		return Cycle{Kind: CycleInternal}
	})
	c.pushByte(func(cc *Core) uint8 { return cc.opVal2 })
	c.pushByte(func(cc *Core) uint8 { return cc.opVal1 })
}
