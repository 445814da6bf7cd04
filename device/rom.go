package device

import (
	"fmt"
	"io/ioutil"
)

// ROM is a file-backed, read-only device. Writes are silently dropped but
// counted, per §6's "ROM device ... writes are counted but ignored"; it is
// reloadable from disk without changing identity, so a host can re-flash it
// mid-run the way convertprg.go re-images a cartridge.
type ROM struct {
	path      string
	mem       []uint8
	badWrites uint64
}

// NewROMFromFile reads path fully into memory and returns the ROM backed by
// it. The file's length becomes the device's Size().
func NewROMFromFile(path string) (*ROM, error) {
	r := &ROM{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the backing file from disk in place, keeping the ROM's
// identity (and thus any bus.Mapper interval registered against it) intact.
// Returns an error, and leaves the prior contents untouched, if the new
// image's length differs from the current Size() and the ROM was already
// sized (size 0 means "not yet loaded", accepting any length).
func (r *ROM) Reload() error {
	b, err := ioutil.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("device: loading ROM image %s: %w", r.path, err)
	}
	if len(r.mem) != 0 && len(b) != len(r.mem) {
		return fmt.Errorf("device: ROM image %s is %d bytes, device is %d", r.path, len(b), len(r.mem))
	}
	r.mem = b
	return nil
}

// Read implements bus.Device.
func (r *ROM) Read(offset uint32) uint8 { return r.mem[offset] }

// Write implements bus.Device. The write never reaches storage; it is
// counted so a host can surface "program wrote to ROM" diagnostics.
func (r *ROM) Write(offset uint32, val uint8) {
	r.badWrites++
}

// PowerOn is a no-op: ROM contents persist across a power-on reset by
// definition.
func (r *ROM) PowerOn() {}

// Raised implements irq.Sender (via bus.Device); ROM never interrupts.
func (r *ROM) Raised() bool { return false }

// Size implements bus.Device.
func (r *ROM) Size() uint32 { return uint32(len(r.mem)) }

// CanWrite implements bus.WriteCapable, always returning true so bus.Mapper
// still forwards writes into Write for counting rather than dropping them
// before the device sees them.
func (r *ROM) CanWrite() bool { return true }

// BadWrites returns the number of writes attempted against this ROM since
// it was constructed; PowerOn does not reset the count.
func (r *ROM) BadWrites() uint64 { return r.badWrites }

// Path returns the backing file path, used by host's save-state writer to
// record where the ROM image came from.
func (r *ROM) Path() string { return r.path }
