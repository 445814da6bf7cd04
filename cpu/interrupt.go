package cpu

// pushByte enqueues one stack push, decrementing SP afterward and clamping
// SH to 0x01 in emulation mode (invariant 6).
func (c *Core) pushByte(value func(c *Core) uint8) {
	c.enqueue(opPushByteFrom, func(c *Core) Cycle {
		addr := uint32(c.SP)
		val := value(c)
		c.busWrite(addr, val)
		c.SP--
		c.clampStackHigh()
		return Cycle{Kind: CycleWrite, Address: addr, Data: val}
	})
}

// pullByte enqueues one stack pull, incrementing SP first.
func (c *Core) pullByte(dest *uint8) {
	c.enqueue(opPullByteTo, func(c *Core) Cycle {
		c.SP++
		c.clampStackHigh()
		addr := uint32(c.SP)
		val := c.busRead(addr)
		*dest = val
		return Cycle{Kind: CycleRead, Address: addr, Data: val}
	})
}

type interruptKind int

const (
	intIRQ interruptKind = iota
	intNMI
	intBRK
	intCOP
)

// buildInterruptSequence enqueues the five-step sequence of §4.5: push PB
// (native only), push PCH/PCL, push P (with B set for an emulation-mode
// BRK), set I=1/D=0, then load PC from the vector matching kind and the
// current E flag.
func (c *Core) buildInterruptSequence(kind interruptKind) {
	if !c.E {
		c.pushByte(func(c *Core) uint8 { return c.PB })
	}
	c.pushByte(func(c *Core) uint8 { return uint8(c.PC >> 8) })
	c.pushByte(func(c *Core) uint8 { return uint8(c.PC) })
	c.pushByte(func(c *Core) uint8 {
		p := c.P
		if c.E && kind == intBRK {
			p |= PBreak
		}
		return p
	})
	c.enqueue(opChangeFlags, func(c *Core) Cycle {
		c.setFlag(PIRQDis, true)
		c.setFlag(PDecimal, false)
		return Cycle{Kind: CycleInternal}
	})
	vec := c.vectorFor(kind)
	c.pushReadAt(func(c *Core) uint32 { return uint32(vec) }, &c.opVal1)
	c.pushReadAt(func(c *Core) uint32 { return uint32(vec + 1) }, &c.opVal2)
	c.enqueue(opInternal, func(c *Core) Cycle {
		c.PC = uint16(c.opVal1) | uint16(c.opVal2)<<8
		c.PB = 0
		return Cycle{Kind: CycleInternal}
	})
}

func (c *Core) vectorFor(kind interruptKind) uint16 {
	switch {
	case kind == intCOP && c.E:
		return vecCOPEmul
	case kind == intCOP && !c.E:
		return vecCOPNative
	case kind == intNMI && c.E:
		return vecNMIEmul
	case kind == intNMI && !c.E:
		return vecNMINative
	case kind == intBRK && c.E:
		return vecBRKEmul
	case kind == intBRK && !c.E:
		return vecBRKNative
	case kind == intIRQ && c.E:
		return vecIRQEmul
	default:
		return vecIRQNative
	}
}

// IssueNMI edge-latches a pending NMI, serviced at the next instruction
// boundary in Running (or immediately on wake from Waiting).
func (c *Core) IssueNMI() {
	c.nmiPending = true
}

// irqLineAsserted reports the level-sensitive IRQ line as seen by the core,
// gated by the I flag per §5's ordering guarantees.
func (c *Core) irqLineAsserted() bool {
	return c.mapper.InterruptLine() && c.P&PIRQDis == 0
}
