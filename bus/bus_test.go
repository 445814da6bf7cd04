package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a minimal bus.Device used to exercise Mapper in isolation,
// independent of any real device package.
type fakeDevice struct {
	NoInterrupt
	mem        []uint8
	interrupt  bool
	writable   bool
	readable   bool
	gateWrite  bool
	gateRead   bool
	badWrites  int
}

func newFakeDevice(size uint32) *fakeDevice {
	return &fakeDevice{mem: make([]uint8, size), writable: true, readable: true}
}

func (d *fakeDevice) Read(offset uint32) uint8 { return d.mem[offset] }
func (d *fakeDevice) Write(offset uint32, val uint8) {
	if !d.writable {
		d.badWrites++
		return
	}
	d.mem[offset] = val
}
func (d *fakeDevice) PowerOn()     {}
func (d *fakeDevice) Size() uint32 { return uint32(len(d.mem)) }
func (d *fakeDevice) Raised() bool { return d.interrupt }

// fakeGatedDevice additionally implements ReadCapable/WriteCapable so the
// Mapper can be seen refusing to even call into the device.
type fakeGatedDevice struct {
	fakeDevice
}

func (d *fakeGatedDevice) CanRead() bool  { return d.gateRead }
func (d *fakeGatedDevice) CanWrite() bool { return d.gateWrite }

func TestMapperAddRejectsZeroLength(t *testing.T) {
	var m Mapper
	err := m.Add(newFakeDevice(16), 0x1000, 0, 0)
	require.ErrorIs(t, err, error(ZeroLength{}))
}

func TestMapperAddRejectsOutOfRange(t *testing.T) {
	var m Mapper
	err := m.Add(newFakeDevice(16), MaxAddress-4, 0, 16)
	require.Error(t, err)
	_, ok := err.(AddressOutOfRange)
	assert.True(t, ok)
}

func TestMapperAddRejectsOversizeDeviceWindow(t *testing.T) {
	var m Mapper
	err := m.Add(newFakeDevice(4), 0x1000, 0, 16)
	require.Error(t, err)
	_, ok := err.(AddressOutOfRange)
	assert.True(t, ok)
}

func TestMapperAddRejectsOverlap(t *testing.T) {
	var m Mapper
	require.NoError(t, m.Add(newFakeDevice(0x100), 0x1000, 0, 0x100))
	err := m.Add(newFakeDevice(0x100), 0x1080, 0, 0x100)
	require.Error(t, err)
	_, ok := err.(MappingOverlap)
	assert.True(t, ok)
}

func TestMapperAddAllowsAdjacentIntervals(t *testing.T) {
	var m Mapper
	require.NoError(t, m.Add(newFakeDevice(0x100), 0x1000, 0, 0x100))
	err := m.Add(newFakeDevice(0x100), 0x1100, 0, 0x100)
	assert.NoError(t, err)
}

func TestMapperReadWriteRoundTrip(t *testing.T) {
	var m Mapper
	dev := newFakeDevice(0x10)
	require.NoError(t, m.Add(dev, 0x2000, 0, 0x10))

	m.Write(0x2005, 0x42)
	got, ok := m.Read(0x2005)
	assert.True(t, ok)
	assert.Equal(t, uint8(0x42), got)
}

func TestMapperOpenBusReadReportsFalse(t *testing.T) {
	var m Mapper
	dev := newFakeDevice(0x10)
	require.NoError(t, m.Add(dev, 0x2000, 0, 0x10))

	val, ok := m.Read(0x4000)
	assert.False(t, ok)
	assert.Equal(t, uint8(0), val)
}

func TestMapperWriteToUnmappedAddressIsDropped(t *testing.T) {
	var m Mapper
	dev := newFakeDevice(0x10)
	require.NoError(t, m.Add(dev, 0x2000, 0, 0x10))

	assert.NotPanics(t, func() { m.Write(0x9000, 0xFF) })
}

func TestMapperWriteToReadOnlyDeviceIsDroppedButCounted(t *testing.T) {
	var m Mapper
	dev := newFakeDevice(0x10)
	dev.writable = false
	require.NoError(t, m.Add(dev, 0x3000, 0, 0x10))

	m.Write(0x3003, 0xAA)
	assert.Equal(t, uint8(0), dev.mem[3])
	assert.Equal(t, 1, dev.badWrites)
}

func TestMapperGatedDeviceRefusesWriteAtBusLevel(t *testing.T) {
	var m Mapper
	dev := &fakeGatedDevice{fakeDevice: *newFakeDevice(0x10)}
	dev.gateWrite = false
	dev.gateRead = true
	require.NoError(t, m.Add(dev, 0x5000, 0, 0x10))

	m.Write(0x5001, 0x99)
	assert.Equal(t, uint8(0), dev.mem[1])
	assert.Equal(t, 0, dev.badWrites, "bus-level gate should short-circuit before the device's own Write runs")
}

func TestMapperGatedDeviceRefusesReadAtBusLevel(t *testing.T) {
	var m Mapper
	dev := &fakeGatedDevice{fakeDevice: *newFakeDevice(0x10)}
	dev.mem[2] = 0x7A
	dev.gateRead = false
	require.NoError(t, m.Add(dev, 0x6000, 0, 0x10))

	val, ok := m.Read(0x6002)
	assert.False(t, ok)
	assert.Equal(t, uint8(0), val)
}

func TestMapperInterruptLineIsLogicalOr(t *testing.T) {
	var m Mapper
	a := newFakeDevice(4)
	b := newFakeDevice(4)
	require.NoError(t, m.Add(a, 0x0000, 0, 4))
	require.NoError(t, m.Add(b, 0x0100, 0, 4))

	assert.False(t, m.InterruptLine())
	b.interrupt = true
	assert.True(t, m.InterruptLine())
}

func TestMapperPowerOnResetsEveryDevice(t *testing.T) {
	var m Mapper
	a := newFakeDevice(4)
	require.NoError(t, m.Add(a, 0x0000, 0, 4))
	a.mem[0] = 0xFF
	m.PowerOn()
	// PowerOn on fakeDevice is a no-op; this test exercises that Mapper
	// actually visits every registered device without panicking, and that
	// Devices() reports it exactly once even though it holds one interval.
	assert.Len(t, m.Devices(), 1)
}

func TestMapperDevicesDeduplicatesMultiIntervalDevice(t *testing.T) {
	var m Mapper
	dev := newFakeDevice(0x200)
	require.NoError(t, m.Add(dev, 0x0000, 0x000, 0x100))
	require.NoError(t, m.Add(dev, 0x1000, 0x100, 0x100))

	assert.Len(t, m.Devices(), 1)
}
