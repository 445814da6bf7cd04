package cpu

// CycleKind classifies one externally observable bus cycle.
type CycleKind int

const (
	CycleInternal CycleKind = iota
	CycleRead
	CycleWrite
)

func (k CycleKind) String() string {
	switch k {
	case CycleRead:
		return "Read"
	case CycleWrite:
		return "Write"
	default:
		return "Internal"
	}
}

// Cycle is the external observation emitted once per dequeued micro-op.
type Cycle struct {
	Kind    CycleKind
	Address uint32
	Data    uint8
}

// microOpKind tags a queued micro-op for external observability (§3's
// representative kind list); the behavior itself lives in fn, which is
// invoked exactly once, the tick it is dequeued.
type microOpKind int

const (
	opFetchDecode microOpKind = iota
	opReadTo
	opReadToAdvancePC
	opWriteFrom
	opPushByteFrom
	opPullByteTo
	opChangeFlags
	opInternal
)

// microOp is one queued bus cycle. fn performs the cycle's actual effect
// (register mutation, bus access) and returns the Cycle record to emit;
// everything before "the one microop that matters" for a given addressing
// mode is still a real, distinctly tagged queue entry. Each operand byte is
// read on its own tick into the Core's opVal/opBank fields, where later
// micro-ops of the same instruction pick it up, the same way the teacher's
// cpu.go caches opVal at tick 2 for use on later ticks.
type microOp struct {
	kind microOpKind
	fn   func(c *Core) Cycle
}

func (c *Core) enqueue(kind microOpKind, fn func(c *Core) Cycle) {
	c.queue = append(c.queue, microOp{kind: kind, fn: fn})
}

// enqueueInternal pushes a no-data internal cycle, used for the extra
// cycles named in §4.3's contract (direct-page DL≠0, BCD adjust, taken
// branches, E-mode page-cross, etc).
func (c *Core) enqueueInternal() {
	c.enqueue(opInternal, func(c *Core) Cycle {
		return Cycle{Kind: CycleInternal}
	})
}

// LastCycle returns the Cycle record produced by the most recent Tick.
func (c *Core) LastCycle() Cycle { return c.lastCycle }

// Cycles returns the running bus-cycle counter.
func (c *Core) Cycles() uint64 { return c.cycles }

// InstructionBoundary reports whether the queue is empty and the core is
// about to fetch a new opcode on the next Tick (spec's "must be empty
// between instructions in Running state except for pipelined interrupt
// sequences").
func (c *Core) InstructionBoundary() bool {
	return len(c.queue) == 0
}
