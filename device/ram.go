// Package device implements the external collaborators hung off a
// bus.Mapper: RAM with a sidecar-dump save format, file-backed ROM, and a
// register-mapped interrupting UART. None of them know about the cpu or
// host packages; they only implement bus.Device (and, where relevant,
// irq.Sender).
package device

import (
	"fmt"
	"io/ioutil"
)

// RAM is a flat byte array device. The zero value is not usable; construct
// with NewRAM.
type RAM struct {
	mem []uint8
}

// NewRAM allocates a RAM device of the given size, zero filled.
func NewRAM(size uint32) *RAM {
	return &RAM{mem: make([]uint8, size)}
}

// Read implements bus.Device.
func (r *RAM) Read(offset uint32) uint8 { return r.mem[offset] }

// Write implements bus.Device.
func (r *RAM) Write(offset uint32, val uint8) { r.mem[offset] = val }

// PowerOn zeros the array, matching real static RAM's undefined-but-we-pick-
// zero power-on behavior used throughout the retrieval pack.
func (r *RAM) PowerOn() {
	for i := range r.mem {
		r.mem[i] = 0
	}
}

// Raised implements irq.Sender (via bus.Device); RAM never interrupts.
func (r *RAM) Raised() bool { return false }

// Size implements bus.Device.
func (r *RAM) Size() uint32 { return uint32(len(r.mem)) }

// Dump writes the full contents of the RAM to path, the sidecar
// "<guid>.ramdump" file named in the save-state format.
func (r *RAM) Dump(path string) error {
	if err := ioutil.WriteFile(path, r.mem, 0o644); err != nil {
		return fmt.Errorf("device: dumping RAM to %s: %w", path, err)
	}
	return nil
}

// LoadRAMDump reads a sidecar dump file written by Dump and constructs a RAM
// device from it. The file's length becomes the device's Size().
func LoadRAMDump(path string) (*RAM, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("device: loading RAM dump %s: %w", path, err)
	}
	return &RAM{mem: b}, nil
}

// LoadInto overwrites the RAM's contents in place from an existing dump,
// used when restoring a save-state onto an already-constructed bus so the
// device identity (and thus any interval registered against it) survives.
func (r *RAM) LoadInto(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("device: loading RAM dump %s: %w", path, err)
	}
	if uint32(len(b)) != r.Size() {
		return fmt.Errorf("device: RAM dump %s is %d bytes, device is %d", path, len(b), r.Size())
	}
	copy(r.mem, b)
	return nil
}
