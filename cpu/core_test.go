package cpu_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/lunarlabs/EightSixteenEmu/bus"
	"github.com/lunarlabs/EightSixteenEmu/cpu"
	"github.com/lunarlabs/EightSixteenEmu/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCore wires a single flat 128KiB RAM across the whole bank-0/bank-1
// window, which is all these tests need: enough room for a reset vector,
// a short program, and scratch data.
func newTestCore(t *testing.T) (*cpu.Core, *device.RAM) {
	t.Helper()
	ram := device.NewRAM(0x20000)
	m := &bus.Mapper{}
	require.NoError(t, m.Add(ram, 0, 0, 0x20000))
	m.PowerOn()
	c, err := cpu.Init(&cpu.ChipDef{Mapper: m})
	require.NoError(t, err)
	return c, ram
}

func poke(ram *device.RAM, addr uint32, bytes ...uint8) {
	for i, b := range bytes {
		ram.Write(addr+uint32(i), b)
	}
}

func tickN(t *testing.T, c *cpu.Core, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v\nstate: %s", i, err, spew.Sdump(c.Snapshot()))
		}
	}
}

func runUntilState(t *testing.T, c *cpu.Core, want cpu.State, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if c.State() == want {
			return
		}
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v\nstate: %s", i, err, spew.Sdump(c.Snapshot()))
		}
	}
	t.Fatalf("state never reached %s after %d ticks (still %s)", want, maxTicks, c.State())
}

// --- Universal invariants (spec §8) -----------------------------------

func TestInvariant1_ResetEstablishesEmulationDefaults(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)

	r := c.Snapshot()
	assert.True(t, r.E)
	assert.Equal(t, uint8(0), r.P&^(cpu.PMemory|cpu.PIndex|cpu.PIRQDis))
	assert.NotZero(t, r.P&cpu.PMemory)
	assert.NotZero(t, r.P&cpu.PIndex)
	assert.NotZero(t, r.P&cpu.PIRQDis)
	assert.Zero(t, r.P&cpu.PDecimal)
	assert.Equal(t, uint16(0x8000), r.PC)
	assert.Equal(t, uint16(0x0100), r.SP)
}

func TestInvariant2_EnteringEmulationClampsWidths(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	// CLC ; XCE ; REP #$30 ; SEC ; XCE ; STP: switch to native mode, widen
	// M and X to 16 bits, then go back to emulation to verify the clamp.
	poke(ram, 0x8000, 0x18, 0xFB, 0xC2, 0x30, 0x38, 0xFB, 0xDB)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	tickN(t, c, 100)

	r := c.Snapshot()
	assert.True(t, r.E)
	assert.NotZero(t, r.P&cpu.PMemory)
	assert.NotZero(t, r.P&cpu.PIndex)
	assert.Equal(t, uint16(0x0100), r.SP&0xFF00)
}

func TestInvariant6_StackHighByteClampedInEmulation(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000, 0x48, 0x48, 0x48, 0xDB) // PHA; PHA; PHA; STP
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	runUntilState(t, c, cpu.StateStopped, 64)

	assert.Equal(t, uint16(0x0100), c.Snapshot().SP&0xFF00)
}

func TestInvariant8_MapperRejectsOverlapAcceptsAdjacent(t *testing.T) {
	var m bus.Mapper
	a := device.NewRAM(0x100)
	b := device.NewRAM(0x100)
	require.NoError(t, m.Add(a, 0x1000, 0, 0x100))
	assert.Error(t, m.Add(b, 0x1050, 0, 0x100))
	assert.NoError(t, m.Add(b, 0x1100, 0, 0x100))
}

func TestInvariant9_SnapshotRoundTrip(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	tickN(t, c, 20)

	c2, _ := newTestCore(t)
	require.NoError(t, c2.Disable())
	snap := c.Snapshot()
	require.NoError(t, c2.SetState(snap))
	if diff := deep.Equal(snap, c2.Snapshot()); diff != nil {
		t.Errorf("round trip mismatch: %v", diff)
	}
}

func TestInvariant10_TickAfterStoppedIsIdempotent(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000, 0xDB) // STP
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	runUntilState(t, c, cpu.StateStopped, 16)

	before := c.Cycles()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Tick())
	}
	assert.Equal(t, before, c.Cycles(), "Stopped core must not advance the bus-cycle counter")
}

// --- Concrete scenarios (spec §8) --------------------------------------

func TestScenarioS1_ResetVectorLoad(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)

	// The two reset-vector reads, and the PC load they feed, complete
	// before Running is ever observed (core.go's tickResetting flips state
	// only once its internal "set PC, go Running" micro-op has run) — so
	// PC is already loaded the instant Running is first seen, with no
	// further ticks needed.
	r := c.Snapshot()
	assert.Equal(t, uint16(0x8000), r.PC)
	assert.Equal(t, uint8(0), r.PB)
	assert.NotZero(t, r.Cycles)
}

func TestScenarioS2_LoadStoreSanity(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000,
		0x18,       // CLC
		0xFB,       // XCE -> native mode
		0xA9, 0x12, // LDA #$12 (8-bit: M still 1 until REP)
		0xA2, 0x34, // LDX #$34
		0xA0, 0x56, // LDY #$56
		0xDB, // STP
	)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	runUntilState(t, c, cpu.StateStopped, 200)

	r := c.Snapshot()
	assert.Equal(t, uint16(0x12), r.A&0xFF)
	assert.Equal(t, uint16(0x34), r.X&0xFF)
	assert.Equal(t, uint16(0x56), r.Y&0xFF)
	assert.False(t, r.E)
}

func TestScenarioS3_MVNBlockCopy(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)

	src := make([]uint8, 32)
	for i := range src {
		if i%2 == 0 {
			src[i] = 0x0F
		} else {
			src[i] = 0xF0
		}
	}
	poke(ram, 0x8100, src...)

	poke(ram, 0x8000,
		0x18,             // CLC
		0xFB,             // XCE
		0xC2, 0x30,       // REP #$30 (M=0, X=0)
		0xA9, 0x1F, 0x00, // LDA #31
		0xA2, 0x00, 0x81, // LDX #$8100
		0xA0, 0x00, 0x02, // LDY #$0200
		0x54, 0x00, 0x00, // MVN #$00,#$00
		0xDB, // STP
	)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	runUntilState(t, c, cpu.StateStopped, 2000)

	for i := 0; i < 32; i++ {
		assert.Equal(t, src[i], ram.Read(0x0200+uint32(i)), "byte %d", i)
	}
	assert.Equal(t, uint16(0xFFFF), c.Snapshot().A)
}

func TestScenarioS4_NMIInNativeMode(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x00FFEA, 0x00, 0x90) // native NMI vector -> 0x9000
	poke(ram, 0x8000, 0x18, 0xFB, 0xEA, 0xEA, 0xEA, 0xEA) // CLC;XCE;NOP...
	poke(ram, 0x9000, 0xEA, 0xEA, 0xEA, 0xEA)             // NOPs at the NMI target
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	tickN(t, c, 4) // run CLC, XCE -> native mode

	spBefore := c.Snapshot().SP
	c.IssueNMI()
	tickN(t, c, 8) // native NMI sequence: 4 pushes, flags, 2 vector reads, 1 internal

	r := c.Snapshot()
	assert.Equal(t, uint16(0x9000), r.PC)
	assert.NotZero(t, r.P&cpu.PIRQDis)
	assert.Zero(t, r.P&cpu.PDecimal)
	assert.Equal(t, spBefore-4, r.SP)
}

// assertedIRQ is a one-byte bus device whose interrupt line is always raised.
type assertedIRQ struct{}

func (assertedIRQ) Read(uint32) uint8   { return 0 }
func (assertedIRQ) Write(uint32, uint8) {}
func (assertedIRQ) PowerOn()            {}
func (assertedIRQ) Size() uint32        { return 1 }
func (assertedIRQ) Raised() bool        { return true }

func TestScenarioS5_IRQIgnoredWhenIFlagSet(t *testing.T) {
	ram := device.NewRAM(0x20000)
	m := &bus.Mapper{}
	require.NoError(t, m.Add(ram, 0, 0, 0x20000))
	require.NoError(t, m.Add(assertedIRQ{}, 0xFF0000, 0, 1))
	m.PowerOn()
	c, err := cpu.Init(&cpu.ChipDef{Mapper: m})
	require.NoError(t, err)
	require.True(t, m.InterruptLine())
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000, 0xEA, 0xEA, 0xEA) // NOP NOP NOP; I=1 after reset
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)

	spBefore := c.Snapshot().SP
	tickN(t, c, 2) // one full NOP

	r := c.Snapshot()
	assert.Equal(t, spBefore, r.SP)
	assert.Equal(t, uint16(0x8001), r.PC)
}

func TestScenarioS7_ADCDecimal(t *testing.T) {
	c, ram := newTestCore(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000,
		0x18,       // CLC
		0xFB,       // XCE -> native
		0xE2, 0x20, // SEP #$20 (M=1, 8-bit A)
		0xF8,       // SED
		0xA9, 0x25, // LDA #$25
		0x69, 0x47, // ADC #$47
		0xDB, // STP
	)
	require.NoError(t, c.PowerOn())
	runUntilState(t, c, cpu.StateRunning, 16)
	runUntilState(t, c, cpu.StateStopped, 200)

	r := c.Snapshot()
	assert.Equal(t, uint16(0x72), r.A&0xFF)
	assert.Zero(t, r.P&cpu.PCarry)
	assert.Zero(t, r.P&cpu.PNegative)
	assert.Zero(t, r.P&cpu.PZero)
}

func TestInvalidStateTransitions(t *testing.T) {
	c, _ := newTestCore(t)
	assert.Error(t, c.Tick(), "tick while Disabled must fail")
	assert.Error(t, c.BusRelease(), "busRelease outside BusAcquired must fail")

	require.NoError(t, c.Enable())
	assert.Error(t, c.Enable(), "enable from a non-Disabled state must fail")
}
