package host_test

import (
	"testing"

	"github.com/lunarlabs/EightSixteenEmu/bus"
	"github.com/lunarlabs/EightSixteenEmu/cpu"
	"github.com/lunarlabs/EightSixteenEmu/device"
	"github.com/lunarlabs/EightSixteenEmu/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) (*host.Processor, *device.RAM) {
	t.Helper()
	ram := device.NewRAM(0x20000)
	m := &bus.Mapper{}
	require.NoError(t, m.Add(ram, 0, 0, 0x20000))
	p, err := host.New(&host.ProcessorDef{Mapper: m, TraceSize: 16})
	require.NoError(t, err)
	return p, ram
}

func poke(ram *device.RAM, addr uint32, bytes ...uint8) {
	for i, b := range bytes {
		ram.Write(addr+uint32(i), b)
	}
}

func tickN(t *testing.T, p *host.Processor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, p.Tick())
	}
}

func runUntilState(t *testing.T, p *host.Processor, want cpu.State, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if p.State() == want {
			return
		}
		require.NoError(t, p.Tick())
	}
	t.Fatalf("state never reached %s after %d ticks (still %s)", want, maxTicks, p.State())
}

func TestPowerOnRunsResetVector(t *testing.T) {
	p, ram := newTestProcessor(t)
	require.NoError(t, p.PowerOn())
	poke(ram, 0xFFFC, 0x00, 0x80)
	runUntilState(t, p, cpu.StateRunning, 16)

	r := p.Snapshot()
	assert.Equal(t, uint16(0x8000), r.PC)
	assert.True(t, r.E)
}

func TestCycleAndInstructionObservers(t *testing.T) {
	p, ram := newTestProcessor(t)
	require.NoError(t, p.PowerOn())
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000, 0xEA, 0xEA, 0xDB) // NOP; NOP; STP

	var cycles int
	var instrs []uint8
	p.OnNewCycle(func(cpu.Cycle, cpu.State) { cycles++ })
	p.OnNewInstruction(func(op uint8, text string) {
		instrs = append(instrs, op)
		assert.NotEmpty(t, text)
	})

	runUntilState(t, p, cpu.StateRunning, 16)
	runUntilState(t, p, cpu.StateStopped, 16)

	assert.NotZero(t, cycles)
	assert.Equal(t, []uint8{0xEA, 0xEA, 0xDB}, instrs)

	trace := p.Trace()
	require.Len(t, trace, 3)
	assert.Equal(t, uint16(0x8000), trace[0].PC)
	assert.Equal(t, uint16(0x8001), trace[1].PC)
}

func TestIssueIRQWakesWaitingCore(t *testing.T) {
	p, ram := newTestProcessor(t)
	require.NoError(t, p.PowerOn())
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x00FFEE, 0x00, 0x90) // native IRQ vector -> 0x9000
	poke(ram, 0x8000, 0x18, 0xFB, 0x58, 0xCB) // CLC;XCE;CLI;WAI
	poke(ram, 0x9000, 0xEA)

	runUntilState(t, p, cpu.StateRunning, 16)
	tickN(t, p, 6) // CLC(2) XCE(2) CLI(2)
	tickN(t, p, 2) // WAI: FetchDecode + 1 internal -> Waiting

	assert.Equal(t, cpu.StateWaiting, p.State())
	p.IssueIRQ(true)
	tickN(t, p, 1)
	assert.Equal(t, cpu.StateRunning, p.State())
}

func TestBusRequestRelease(t *testing.T) {
	p, _ := newTestProcessor(t)
	require.NoError(t, p.PowerOn())
	runUntilState(t, p, cpu.StateRunning, 16)

	require.NoError(t, p.BusRequest())
	assert.Equal(t, cpu.StateBusAcquired, p.State())
	require.Error(t, p.BusRequest(), "busRequest from BusAcquired must fail")
	require.NoError(t, p.BusRelease())
	assert.Equal(t, cpu.StateRunning, p.State())
}

func TestSaveStateRoundTrip(t *testing.T) {
	p, ram := newTestProcessor(t)
	require.NoError(t, p.PowerOn())
	poke(ram, 0xFFFC, 0x00, 0x80)
	poke(ram, 0x8000, 0xA9, 0x42, 0xDB) // LDA #$42 ; STP

	runUntilState(t, p, cpu.StateRunning, 16)
	runUntilState(t, p, cpu.StateStopped, 16)

	before := p.Snapshot()
	dir := t.TempDir()
	path, err := p.SaveState(dir)
	require.NoError(t, err)
	require.FileExists(t, path)

	p2, ram2 := newTestProcessor(t)
	require.NoError(t, p2.LoadState(dir))

	after := p2.Snapshot()
	assert.Equal(t, before.A, after.A)
	assert.Equal(t, before.PC, after.PC)
	assert.Equal(t, ram.Read(0x8000), ram2.Read(0x8000))
	assert.Equal(t, ram.Read(0x8001), ram2.Read(0x8001))
}

func TestSetProcessorStateRejectedOutsideDisabled(t *testing.T) {
	p, ram := newTestProcessor(t)
	poke(ram, 0xFFFC, 0x00, 0x80)
	require.NoError(t, p.PowerOn())
	runUntilState(t, p, cpu.StateRunning, 16)

	err := p.SetProcessorState(cpu.Registers{PC: 0x1234})
	assert.Error(t, err)
}
