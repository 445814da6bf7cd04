// Package bus implements the W65C816S host's 24-bit unified address bus:
// a sparse interval map from bus addresses to device slots, open-bus reads
// and OR-aggregated interrupt lines. It is the "external collaborator"
// described at spec.md §4.2; devices themselves live in package device.
package bus

import (
	"fmt"
	"sort"

	"github.com/lunarlabs/EightSixteenEmu/irq"
)

// MaxAddress is the highest address on the 24-bit unified bus.
const MaxAddress = uint32(1)<<24 - 1

// Device is the contract a memory-mapped peripheral must implement to be
// added to a Mapper. Every Device is also an irq.Sender: its Raised() is
// what Mapper.InterruptLine ORs together, the same way the teacher's chips
// plug an irq.Sender into their cpu.Chip. Devices that never raise an
// interrupt can embed NoInterrupt to satisfy Raised trivially.
type Device interface {
	irq.Sender
	// Read returns the data byte at the device-relative offset.
	Read(offset uint32) uint8
	// Write updates the device-relative offset with val. Devices that are
	// read-only must silently drop the write (optionally counting it) and
	// must not panic or otherwise fault.
	Write(offset uint32, val uint8)
	// PowerOn resets the device to its power-on state.
	PowerOn()
	// Size returns the addressable size of the device in bytes.
	Size() uint32
}

// ReadCapable and WriteCapable let a device opt out of one direction
// without needing a dummy implementation; a device that only implements
// Device is assumed readable and writable.
type ReadCapable interface {
	CanRead() bool
}

// WriteCapable mirrors ReadCapable for the write direction.
type WriteCapable interface {
	CanWrite() bool
}

// NoInterrupt can be embedded by devices that never assert an interrupt
// line, so they don't each need to redeclare the trivial Raised().
type NoInterrupt struct{}

// Raised always returns false, satisfying irq.Sender.
func (NoInterrupt) Raised() bool { return false }

// MappingOverlap is returned by Add when the requested range intersects an
// already-registered interval.
type MappingOverlap struct {
	BusStart, BusEnd uint32
}

// Error implements the error interface.
func (e MappingOverlap) Error() string {
	return fmt.Sprintf("bus: mapping [0x%06X, 0x%06X) overlaps an existing interval", e.BusStart, e.BusEnd)
}

// AddressOutOfRange is returned by Add when the requested range would
// extend past the 24-bit bus or past the device's own size.
type AddressOutOfRange struct {
	Reason string
}

// Error implements the error interface.
func (e AddressOutOfRange) Error() string {
	return fmt.Sprintf("bus: address out of range: %s", e.Reason)
}

// ZeroLength is returned by Add when length is zero.
type ZeroLength struct{}

// Error implements the error interface.
func (ZeroLength) Error() string {
	return "bus: zero length mapping"
}

type interval struct {
	busStart, busEnd uint32 // half-open [busStart, busEnd)
	devOffset        uint32
	device           Device
}

// Mapper is a sparse interval map from 24-bit bus addresses to devices.
// The zero value is ready to use.
type Mapper struct {
	intervals []interval // kept sorted by busStart
}

// Add registers device at [busStart, busStart+length) on the bus, reading
// and writing through to [devOffset, devOffset+length) on the device. The
// mapping must not overlap any existing interval; adjacent intervals are
// permitted. Add never mutates the Mapper on failure.
func (m *Mapper) Add(device Device, busStart, devOffset, length uint32) error {
	if length == 0 {
		return ZeroLength{}
	}
	end64 := uint64(busStart) + uint64(length)
	if end64-1 > uint64(MaxAddress) {
		return AddressOutOfRange{Reason: fmt.Sprintf("busEnd 0x%X exceeds 24-bit bus", end64)}
	}
	if uint64(devOffset)+uint64(length) > uint64(device.Size()) {
		return AddressOutOfRange{Reason: fmt.Sprintf("devOffset %d + length %d exceeds device size %d", devOffset, length, device.Size())}
	}
	newStart, newEnd := busStart, busStart+length

	i := sort.Search(len(m.intervals), func(i int) bool { return m.intervals[i].busStart >= newStart })
	// Check the interval immediately before the insertion point for overlap.
	if i > 0 && m.intervals[i-1].busEnd > newStart {
		return MappingOverlap{BusStart: newStart, BusEnd: newEnd}
	}
	// Check the interval at the insertion point (and possibly beyond, though
	// a well-formed sorted non-overlapping list only needs the one check).
	if i < len(m.intervals) && m.intervals[i].busStart < newEnd {
		return MappingOverlap{BusStart: newStart, BusEnd: newEnd}
	}

	iv := interval{busStart: newStart, busEnd: newEnd, devOffset: devOffset, device: device}
	m.intervals = append(m.intervals, interval{})
	copy(m.intervals[i+1:], m.intervals[i:])
	m.intervals[i] = iv
	return nil
}

// find returns the interval containing addr, or nil if none does.
func (m *Mapper) find(addr uint32) *interval {
	i := sort.Search(len(m.intervals), func(i int) bool { return m.intervals[i].busEnd > addr })
	if i < len(m.intervals) && m.intervals[i].busStart <= addr {
		return &m.intervals[i]
	}
	return nil
}

// Read returns the byte at addr and true if a device claims that address,
// or (0, false) on open bus. The processor core is responsible for
// retaining the previous data-bus value on an open-bus read (spec.md §7);
// Mapper itself does not simulate bus capacitance, it simply reports the
// fact of the gap so the core can do that.
func (m *Mapper) Read(addr uint32) (uint8, bool) {
	iv := m.find(addr)
	if iv == nil {
		return 0, false
	}
	if rc, ok := iv.device.(ReadCapable); ok && !rc.CanRead() {
		return 0, false
	}
	val := iv.device.Read(addr - iv.busStart + iv.devOffset)
	return val, true
}

// Write stores val at addr if a device claims that address and reports
// itself writable. Writes to addresses with no mapped device, or to a
// device that opts out via WriteCapable, are silently dropped before ever
// reaching the device: the device may still count bad writes on its own
// CanWrite()-gated path, but Write itself never faults.
func (m *Mapper) Write(addr uint32, val uint8) {
	iv := m.find(addr)
	if iv == nil {
		return
	}
	if wc, ok := iv.device.(WriteCapable); ok && !wc.CanWrite() {
		return
	}
	iv.device.Write(addr-iv.busStart+iv.devOffset, val)
}

// InterruptLine returns the logical OR of every registered device's
// Raised() state.
func (m *Mapper) InterruptLine() bool {
	for _, iv := range m.intervals {
		if iv.device.Raised() {
			return true
		}
	}
	return false
}

// PowerOn resets every registered device to its power-on state.
func (m *Mapper) PowerOn() {
	for _, iv := range m.intervals {
		iv.device.PowerOn()
	}
}

// Devices returns the distinct devices registered on the bus, in the order
// their first interval was added. Used by host for save-state iteration.
func (m *Mapper) Devices() []Device {
	seen := make(map[Device]bool)
	var out []Device
	for _, iv := range m.intervals {
		if !seen[iv.device] {
			seen[iv.device] = true
			out = append(out, iv.device)
		}
	}
	return out
}
