package cpu

// buildOpcode enqueues the full micro-op sequence for the opcode already
// latched into c.IR, mirroring the teacher's processOpcode dispatch switch
// but building a real queue instead of driving an opTick counter.
func (c *Core) buildOpcode(op uint8) {
	switch op {
	// --- ORA family -------------------------------------------------
	case 0x01:
		c.accALU(AddrDirectIndexedIndirect, c.ora)
	case 0x03:
		c.accALU(AddrStackRelative, c.ora)
	case 0x05:
		c.accALU(AddrDirect, c.ora)
	case 0x07:
		c.accALU(AddrDirectIndirectLong, c.ora)
	case 0x09:
		c.buildImmediate(c.flagM(), c.ora)
	case 0x0D:
		c.accALU(AddrAbsolute, c.ora)
	case 0x0F:
		c.accALU(AddrAbsoluteLong, c.ora)
	case 0x11:
		c.accALU(AddrDirectIndirectIndexed, c.ora)
	case 0x12:
		c.accALU(AddrDirectIndirect, c.ora)
	case 0x13:
		c.accALU(AddrStackRelativeIndirectIndexedY, c.ora)
	case 0x15:
		c.accALU(AddrDirectX, c.ora)
	case 0x17:
		c.accALU(AddrDirectIndirectLongIndexed, c.ora)
	case 0x19:
		c.accALU(AddrAbsoluteY, c.ora)
	case 0x1D:
		c.accALU(AddrAbsoluteX, c.ora)
	case 0x1F:
		c.accALU(AddrAbsoluteLongX, c.ora)

	// --- AND family -------------------------------------------------
	case 0x21:
		c.accALU(AddrDirectIndexedIndirect, c.and)
	case 0x23:
		c.accALU(AddrStackRelative, c.and)
	case 0x25:
		c.accALU(AddrDirect, c.and)
	case 0x27:
		c.accALU(AddrDirectIndirectLong, c.and)
	case 0x29:
		c.buildImmediate(c.flagM(), c.and)
	case 0x2D:
		c.accALU(AddrAbsolute, c.and)
	case 0x2F:
		c.accALU(AddrAbsoluteLong, c.and)
	case 0x31:
		c.accALU(AddrDirectIndirectIndexed, c.and)
	case 0x32:
		c.accALU(AddrDirectIndirect, c.and)
	case 0x33:
		c.accALU(AddrStackRelativeIndirectIndexedY, c.and)
	case 0x35:
		c.accALU(AddrDirectX, c.and)
	case 0x37:
		c.accALU(AddrDirectIndirectLongIndexed, c.and)
	case 0x39:
		c.accALU(AddrAbsoluteY, c.and)
	case 0x3D:
		c.accALU(AddrAbsoluteX, c.and)
	case 0x3F:
		c.accALU(AddrAbsoluteLongX, c.and)

	// --- EOR family -------------------------------------------------
	case 0x41:
		c.accALU(AddrDirectIndexedIndirect, c.eor)
	case 0x43:
		c.accALU(AddrStackRelative, c.eor)
	case 0x45:
		c.accALU(AddrDirect, c.eor)
	case 0x47:
		c.accALU(AddrDirectIndirectLong, c.eor)
	case 0x49:
		c.buildImmediate(c.flagM(), c.eor)
	case 0x4D:
		c.accALU(AddrAbsolute, c.eor)
	case 0x4F:
		c.accALU(AddrAbsoluteLong, c.eor)
	case 0x51:
		c.accALU(AddrDirectIndirectIndexed, c.eor)
	case 0x52:
		c.accALU(AddrDirectIndirect, c.eor)
	case 0x53:
		c.accALU(AddrStackRelativeIndirectIndexedY, c.eor)
	case 0x55:
		c.accALU(AddrDirectX, c.eor)
	case 0x57:
		c.accALU(AddrDirectIndirectLongIndexed, c.eor)
	case 0x59:
		c.accALU(AddrAbsoluteY, c.eor)
	case 0x5D:
		c.accALU(AddrAbsoluteX, c.eor)
	case 0x5F:
		c.accALU(AddrAbsoluteLongX, c.eor)

	// --- ADC family -------------------------------------------------
	case 0x61:
		c.accALU(AddrDirectIndexedIndirect, c.adc)
	case 0x63:
		c.accALU(AddrStackRelative, c.adc)
	case 0x65:
		c.accALU(AddrDirect, c.adc)
	case 0x67:
		c.accALU(AddrDirectIndirectLong, c.adc)
	case 0x69:
		c.buildImmediate(c.flagM(), c.adc)
	case 0x6D:
		c.accALU(AddrAbsolute, c.adc)
	case 0x6F:
		c.accALU(AddrAbsoluteLong, c.adc)
	case 0x71:
		c.accALU(AddrDirectIndirectIndexed, c.adc)
	case 0x72:
		c.accALU(AddrDirectIndirect, c.adc)
	case 0x73:
		c.accALU(AddrStackRelativeIndirectIndexedY, c.adc)
	case 0x75:
		c.accALU(AddrDirectX, c.adc)
	case 0x77:
		c.accALU(AddrDirectIndirectLongIndexed, c.adc)
	case 0x79:
		c.accALU(AddrAbsoluteY, c.adc)
	case 0x7D:
		c.accALU(AddrAbsoluteX, c.adc)
	case 0x7F:
		c.accALU(AddrAbsoluteLongX, c.adc)

	// --- SBC family -------------------------------------------------
	case 0xE1:
		c.accALU(AddrDirectIndexedIndirect, c.sbc)
	case 0xE3:
		c.accALU(AddrStackRelative, c.sbc)
	case 0xE5:
		c.accALU(AddrDirect, c.sbc)
	case 0xE7:
		c.accALU(AddrDirectIndirectLong, c.sbc)
	case 0xE9:
		c.buildImmediate(c.flagM(), c.sbc)
	case 0xED:
		c.accALU(AddrAbsolute, c.sbc)
	case 0xEF:
		c.accALU(AddrAbsoluteLong, c.sbc)
	case 0xF1:
		c.accALU(AddrDirectIndirectIndexed, c.sbc)
	case 0xF2:
		c.accALU(AddrDirectIndirect, c.sbc)
	case 0xF3:
		c.accALU(AddrStackRelativeIndirectIndexedY, c.sbc)
	case 0xF5:
		c.accALU(AddrDirectX, c.sbc)
	case 0xF7:
		c.accALU(AddrDirectIndirectLongIndexed, c.sbc)
	case 0xF9:
		c.accALU(AddrAbsoluteY, c.sbc)
	case 0xFD:
		c.accALU(AddrAbsoluteX, c.sbc)
	case 0xFF:
		c.accALU(AddrAbsoluteLongX, c.sbc)

	// --- CMP family ---------------------------------------------------
	case 0xC1:
		c.accCompare(AddrDirectIndexedIndirect)
	case 0xC3:
		c.accCompare(AddrStackRelative)
	case 0xC5:
		c.accCompare(AddrDirect)
	case 0xC7:
		c.accCompare(AddrDirectIndirectLong)
	case 0xC9:
		eightBit := c.flagM()
		c.buildImmediate(eightBit, func(v uint16) { c.cmp(c.getA(), v, eightBit) })
	case 0xCD:
		c.accCompare(AddrAbsolute)
	case 0xCF:
		c.accCompare(AddrAbsoluteLong)
	case 0xD1:
		c.accCompare(AddrDirectIndirectIndexed)
	case 0xD2:
		c.accCompare(AddrDirectIndirect)
	case 0xD3:
		c.accCompare(AddrStackRelativeIndirectIndexedY)
	case 0xD5:
		c.accCompare(AddrDirectX)
	case 0xD7:
		c.accCompare(AddrDirectIndirectLongIndexed)
	case 0xD9:
		c.accCompare(AddrAbsoluteY)
	case 0xDD:
		c.accCompare(AddrAbsoluteX)
	case 0xDF:
		c.accCompare(AddrAbsoluteLongX)

	case 0xE0:
		eightBit := c.flagX()
		c.buildImmediate(eightBit, func(v uint16) { c.cmp(c.getX(), v, eightBit) })
	case 0xE4:
		c.indexCompare(AddrDirect, c.getX)
	case 0xEC:
		c.indexCompare(AddrAbsolute, c.getX)
	case 0xC0:
		eightBit := c.flagX()
		c.buildImmediate(eightBit, func(v uint16) { c.cmp(c.getY(), v, eightBit) })
	case 0xC4:
		c.indexCompare(AddrDirect, c.getY)
	case 0xCC:
		c.indexCompare(AddrAbsolute, c.getY)

	// --- BIT ----------------------------------------------------------
	case 0x24:
		c.dispatchAddr(AddrDirect, c.finishLoad(c.flagM(), func(c *Core, v uint16) { c.bit(v, false) }))
	case 0x2C:
		c.dispatchAddr(AddrAbsolute, c.finishLoad(c.flagM(), func(c *Core, v uint16) { c.bit(v, false) }))
	case 0x34:
		c.dispatchAddr(AddrDirectX, c.finishLoad(c.flagM(), func(c *Core, v uint16) { c.bit(v, false) }))
	case 0x3C:
		c.dispatchAddr(AddrAbsoluteX, c.finishLoad(c.flagM(), func(c *Core, v uint16) { c.bit(v, false) }))
	case 0x89:
		c.buildImmediate(c.flagM(), func(v uint16) { c.bit(v, true) })

	// --- Shifts / RMW ---------------------------------------------------
	case 0x06:
		c.rmw(AddrDirect, c.asl)
	case 0x0A:
		c.accumulatorRMW(c.asl)
	case 0x0E:
		c.rmw(AddrAbsolute, c.asl)
	case 0x16:
		c.rmw(AddrDirectX, c.asl)
	case 0x1E:
		c.rmw(AddrAbsoluteX, c.asl)
	case 0x46:
		c.rmw(AddrDirect, c.lsr)
	case 0x4A:
		c.accumulatorRMW(c.lsr)
	case 0x4E:
		c.rmw(AddrAbsolute, c.lsr)
	case 0x56:
		c.rmw(AddrDirectX, c.lsr)
	case 0x5E:
		c.rmw(AddrAbsoluteX, c.lsr)
	case 0x26:
		c.rmw(AddrDirect, c.rol)
	case 0x2A:
		c.accumulatorRMW(c.rol)
	case 0x2E:
		c.rmw(AddrAbsolute, c.rol)
	case 0x36:
		c.rmw(AddrDirectX, c.rol)
	case 0x3E:
		c.rmw(AddrAbsoluteX, c.rol)
	case 0x66:
		c.rmw(AddrDirect, c.ror)
	case 0x6A:
		c.accumulatorRMW(c.ror)
	case 0x6E:
		c.rmw(AddrAbsolute, c.ror)
	case 0x76:
		c.rmw(AddrDirectX, c.ror)
	case 0x7E:
		c.rmw(AddrAbsoluteX, c.ror)
	case 0x04:
		c.rmw(AddrDirect, c.tsb)
	case 0x0C:
		c.rmw(AddrAbsolute, c.tsb)
	case 0x14:
		c.rmw(AddrDirect, c.trb)
	case 0x1C:
		c.rmw(AddrAbsolute, c.trb)
	case 0xE6:
		c.rmw(AddrDirect, func(v uint16, eightBit bool) uint16 { return c.incDec(v, 1, eightBit) })
	case 0xEE:
		c.rmw(AddrAbsolute, func(v uint16, eightBit bool) uint16 { return c.incDec(v, 1, eightBit) })
	case 0xF6:
		c.rmw(AddrDirectX, func(v uint16, eightBit bool) uint16 { return c.incDec(v, 1, eightBit) })
	case 0xFE:
		c.rmw(AddrAbsoluteX, func(v uint16, eightBit bool) uint16 { return c.incDec(v, 1, eightBit) })
	case 0xC6:
		c.rmw(AddrDirect, func(v uint16, eightBit bool) uint16 { return c.incDec(v, -1, eightBit) })
	case 0xCE:
		c.rmw(AddrAbsolute, func(v uint16, eightBit bool) uint16 { return c.incDec(v, -1, eightBit) })
	case 0xD6:
		c.rmw(AddrDirectX, func(v uint16, eightBit bool) uint16 { return c.incDec(v, -1, eightBit) })
	case 0xDE:
		c.rmw(AddrAbsoluteX, func(v uint16, eightBit bool) uint16 { return c.incDec(v, -1, eightBit) })
	case 0x1A:
		c.accumulatorRMW(func(v uint16, eightBit bool) uint16 { return c.incDec(v, 1, eightBit) })
	case 0x3A:
		c.accumulatorRMW(func(v uint16, eightBit bool) uint16 { return c.incDec(v, -1, eightBit) })
	case 0xE8:
		c.enqueue(opInternal, func(c *Core) Cycle { c.setX(c.incDec(c.getX(), 1, c.flagX())); return Cycle{Kind: CycleInternal} })
	case 0xCA:
		c.enqueue(opInternal, func(c *Core) Cycle { c.setX(c.incDec(c.getX(), -1, c.flagX())); return Cycle{Kind: CycleInternal} })
	case 0xC8:
		c.enqueue(opInternal, func(c *Core) Cycle { c.setY(c.incDec(c.getY(), 1, c.flagX())); return Cycle{Kind: CycleInternal} })
	case 0x88:
		c.enqueue(opInternal, func(c *Core) Cycle { c.setY(c.incDec(c.getY(), -1, c.flagX())); return Cycle{Kind: CycleInternal} })

	// --- Loads ----------------------------------------------------------
	case 0xA1:
		c.accALU(AddrDirectIndexedIndirect, c.lda)
	case 0xA3:
		c.accALU(AddrStackRelative, c.lda)
	case 0xA5:
		c.accALU(AddrDirect, c.lda)
	case 0xA7:
		c.accALU(AddrDirectIndirectLong, c.lda)
	case 0xA9:
		c.buildImmediate(c.flagM(), c.lda)
	case 0xAD:
		c.accALU(AddrAbsolute, c.lda)
	case 0xAF:
		c.accALU(AddrAbsoluteLong, c.lda)
	case 0xB1:
		c.accALU(AddrDirectIndirectIndexed, c.lda)
	case 0xB2:
		c.accALU(AddrDirectIndirect, c.lda)
	case 0xB3:
		c.accALU(AddrStackRelativeIndirectIndexedY, c.lda)
	case 0xB5:
		c.accALU(AddrDirectX, c.lda)
	case 0xB7:
		c.accALU(AddrDirectIndirectLongIndexed, c.lda)
	case 0xB9:
		c.accALU(AddrAbsoluteY, c.lda)
	case 0xBD:
		c.accALU(AddrAbsoluteX, c.lda)
	case 0xBF:
		c.accALU(AddrAbsoluteLongX, c.lda)
	case 0xA2:
		c.buildImmediate(c.flagX(), c.ldx)
	case 0xA6:
		c.indexLoad(AddrDirect, c.ldx)
	case 0xAE:
		c.indexLoad(AddrAbsolute, c.ldx)
	case 0xB6:
		c.indexLoad(AddrDirectY, c.ldx)
	case 0xBE:
		c.indexLoad(AddrAbsoluteY, c.ldx)
	case 0xA0:
		c.buildImmediate(c.flagX(), c.ldy)
	case 0xA4:
		c.indexLoad(AddrDirect, c.ldy)
	case 0xAC:
		c.indexLoad(AddrAbsolute, c.ldy)
	case 0xB4:
		c.indexLoad(AddrDirectX, c.ldy)
	case 0xBC:
		c.indexLoad(AddrAbsoluteX, c.ldy)

	// --- Stores -----------------------------------------------------
	case 0x81:
		c.storeA(AddrDirectIndexedIndirect)
	case 0x83:
		c.storeA(AddrStackRelative)
	case 0x85:
		c.storeA(AddrDirect)
	case 0x87:
		c.storeA(AddrDirectIndirectLong)
	case 0x8D:
		c.storeA(AddrAbsolute)
	case 0x8F:
		c.storeA(AddrAbsoluteLong)
	case 0x91:
		c.storeA(AddrDirectIndirectIndexed)
	case 0x92:
		c.storeA(AddrDirectIndirect)
	case 0x93:
		c.storeA(AddrStackRelativeIndirectIndexedY)
	case 0x95:
		c.storeA(AddrDirectX)
	case 0x97:
		c.storeA(AddrDirectIndirectLongIndexed)
	case 0x99:
		c.storeA(AddrAbsoluteY)
	case 0x9D:
		c.storeA(AddrAbsoluteX)
	case 0x9F:
		c.storeA(AddrAbsoluteLongX)
	case 0x86:
		c.storeIndex(AddrDirect, c.getX)
	case 0x8E:
		c.storeIndex(AddrAbsolute, c.getX)
	case 0x96:
		c.storeIndex(AddrDirectY, c.getX)
	case 0x84:
		c.storeIndex(AddrDirect, c.getY)
	case 0x8C:
		c.storeIndex(AddrAbsolute, c.getY)
	case 0x94:
		c.storeIndex(AddrDirectX, c.getY)
	case 0x64:
		c.storeZero(AddrDirect)
	case 0x74:
		c.storeZero(AddrDirectX)
	case 0x9C:
		c.storeZero(AddrAbsolute)
	case 0x9E:
		c.storeZero(AddrAbsoluteX)

	// --- Branches -----------------------------------------------------
	case 0x10:
		c.branch(c.P&PNegative == 0)
	case 0x30:
		c.branch(c.P&PNegative != 0)
	case 0x50:
		c.branch(c.P&POverflow == 0)
	case 0x70:
		c.branch(c.P&POverflow != 0)
	case 0x90:
		c.branch(c.P&PCarry == 0)
	case 0xB0:
		c.branch(c.P&PCarry != 0)
	case 0xD0:
		c.branch(c.P&PZero == 0)
	case 0xF0:
		c.branch(c.P&PZero != 0)
	case 0x80:
		c.branch(true)
	case 0x82:
		c.branchLong()

	// --- Jumps / calls --------------------------------------------------
	case 0x4C:
		c.jmpAbsolute()
	case 0x5C:
		c.jmpAbsoluteLong()
	case 0x6C:
		c.jmpIndirect()
	case 0x7C:
		c.jmpIndexedIndirect()
	case 0xDC:
		c.jmpIndirectLong()
	case 0x20:
		c.jsr()
	case 0x22:
		c.jsl()
	case 0xFC:
		c.jsrIndexedIndirect()
	case 0x60:
		c.rts()
	case 0x6B:
		c.rtl()
	case 0x40:
		c.rti()

	// --- Interrupts / control -------------------------------------------
	case 0x00:
		c.pushReadOperand(&c.opVal2)
		c.buildInterruptSequence(intBRK)
	case 0x02:
		c.pushReadOperand(&c.opVal2)
		c.buildInterruptSequence(intCOP)
	case 0xCB:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.waitingForInterrupt = true
			c.state = StateWaiting
			return Cycle{Kind: CycleInternal}
		})
	case 0xDB:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.state = StateStopped
			return Cycle{Kind: CycleInternal}
		})
	case 0x42:
		c.pushReadOperand(&c.opVal1) // WDM: reserved 2-cycle NOP

	// --- Block move -------------------------------------------------
	case 0x54:
		c.blockMove(true)
	case 0x44:
		c.blockMove(false)

	// --- Transfers --------------------------------------------------
	case 0xAA:
		c.transfer(func() uint16 { return c.A }, c.setX, c.flagX)
	case 0xA8:
		c.transfer(func() uint16 { return c.A }, c.setY, c.flagX)
	case 0x8A:
		c.transfer(func() uint16 { return c.X }, c.setA, c.flagM)
	case 0x98:
		c.transfer(func() uint16 { return c.Y }, c.setA, c.flagM)
	case 0xBA:
		c.transfer(func() uint16 { return c.SP }, c.setX, c.flagX)
	case 0x9A:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.SP = c.getX()
			c.clampStackHigh()
			return Cycle{Kind: CycleInternal}
		})
	case 0x9B:
		c.transfer(func() uint16 { return c.X }, c.setY, c.flagX)
	case 0xBB:
		c.transfer(func() uint16 { return c.Y }, c.setX, c.flagX)
	case 0x5B:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.DP = c.A
			c.setNZ16(c.DP)
			return Cycle{Kind: CycleInternal}
		})
	case 0x7B:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.A = c.DP
			c.setNZ16(c.DP)
			return Cycle{Kind: CycleInternal}
		})
	case 0x1B:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.SP = c.A
			c.clampStackHigh()
			return Cycle{Kind: CycleInternal}
		})
	case 0x3B:
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.A = c.SP
			c.setNZ16(c.SP)
			return Cycle{Kind: CycleInternal}
		})

	// --- Status flag ops --------------------------------------------
	case 0x18:
		c.flagOp(PCarry, false)
	case 0x38:
		c.flagOp(PCarry, true)
	case 0x58:
		c.flagOp(PIRQDis, false)
	case 0x78:
		c.flagOp(PIRQDis, true)
	case 0xD8:
		c.flagOp(PDecimal, false)
	case 0xF8:
		c.flagOp(PDecimal, true)
	case 0xB8:
		c.flagOp(POverflow, false)
	case 0xC2:
		c.repSep(false)
	case 0xE2:
		c.repSep(true)
	case 0xFB:
		c.xce()

	// --- Stack ops ----------------------------------------------------
	case 0x48:
		c.phImplied(func() uint16 { return c.getA() }, c.flagM())
	case 0x08:
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })
		c.pushByte(func(c *Core) uint8 { return c.P })
	case 0x0B:
		c.phImplied(func() uint16 { return c.DP }, false)
	case 0xDA:
		c.phImplied(func() uint16 { return c.getX() }, c.flagX())
	case 0x5A:
		c.phImplied(func() uint16 { return c.getY() }, c.flagX())
	case 0x8B:
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })
		c.pushByte(func(c *Core) uint8 { return c.DB })
	case 0x4B:
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })
		c.pushByte(func(c *Core) uint8 { return c.PB })
	case 0x68:
		c.plImplied(func(v uint16) { c.setA(v) }, c.flagM())
	case 0x28:
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })
		c.pullByte(&c.opVal1)
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.P = c.opVal1
			if c.E {
				c.P |= PMemory | PIndex
			}
			return Cycle{Kind: CycleInternal}
		})
	case 0x2B:
		c.plImplied(func(v uint16) { c.DP = v; c.setNZ16(v) }, false)
	case 0xFA:
		c.plImplied(func(v uint16) { c.setX(v) }, c.flagX())
	case 0x7A:
		c.plImplied(func(v uint16) { c.setY(v) }, c.flagX())
	case 0xAB:
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })
		c.pullByte(&c.opVal1)
		c.enqueue(opInternal, func(c *Core) Cycle {
			c.DB = c.opVal1
			c.setNZ8(c.DB)
			return Cycle{Kind: CycleInternal}
		})
	case 0xF4:
		c.pea()
	case 0xD4:
		c.pei()
	case 0x62:
		c.per()

	case 0xEB:
		c.enqueue(opInternal, func(c *Core) Cycle {
			a := c.A
			c.A = (a >> 8) | (a << 8)
			c.setNZ8(uint8(c.A))
			return Cycle{Kind: CycleInternal}
		})

	case 0xEA:
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })

	default:
		// Every position on a 65816 is a defined opcode (§7:
		// DecodeFailure is never raised); any position not listed
		// above is a documented single-cycle NOP equivalent.
		c.enqueue(opInternal, func(c *Core) Cycle { return Cycle{Kind: CycleInternal} })
	}
}
