package host

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/lunarlabs/EightSixteenEmu/bus"
	"github.com/lunarlabs/EightSixteenEmu/cpu"
	"github.com/lunarlabs/EightSixteenEmu/device"
)

// registersJSON mirrors cpu.Registers with explicit JSON tags, since the
// save-state format's keys are opaque-but-stable (§6) and must not drift if
// cpu.Registers's Go field names ever do.
type registersJSON struct {
	A      uint16 `json:"a"`
	X      uint16 `json:"x"`
	Y      uint16 `json:"y"`
	DP     uint16 `json:"dp"`
	SP     uint16 `json:"sp"`
	DB     uint8  `json:"db"`
	PB     uint8  `json:"pb"`
	PC     uint16 `json:"pc"`
	P      uint8  `json:"p"`
	E      bool   `json:"e"`
	Cycles uint64 `json:"cycles"`
}

// deviceJSON is one entry in the save-state's device list, per §6:
// "{guid, type, modulefile, params, state}".
type deviceJSON struct {
	GUID       string            `json:"guid"`
	Type       string            `json:"type"`
	ModuleFile string            `json:"modulefile,omitempty"`
	Params     map[string]uint32 `json:"params,omitempty"`
	State      string            `json:"state,omitempty"`
}

type saveStateJSON struct {
	Registers registersJSON `json:"registers"`
	Devices   []deviceJSON  `json:"devices"`
}

// deviceGUID lazily assigns and remembers a stable identifier for d. GUIDs
// are generated with google/uuid (named, not grounded on the teacher per
// SPEC_FULL.md §3 — this repo has no prior save-state feature to inherit
// one from) and persist for the Processor's lifetime so repeated saves
// describe the same device under the same guid.
func (p *Processor) deviceGUID(d bus.Device) uuid.UUID {
	if p.guids == nil {
		p.guids = make(map[bus.Device]uuid.UUID)
	}
	if id, ok := p.guids[d]; ok {
		return id
	}
	id := uuid.New()
	p.guids[d] = id
	return id
}

// SaveState writes the save-state JSON to <dir>/state.json, plus one
// "<guid>.ramdump" sidecar per RAM device, per §6's external interface.
// ROM devices persist only their backing file path (they are reloadable and
// writes to them are dropped, so there is no mutable state to dump); other
// device types are recorded by Go type name with no recoverable state, a
// documented limitation of this minimal format.
func (p *Processor) SaveState(dir string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.core.Snapshot()
	s := saveStateJSON{
		Registers: registersJSON{
			A: r.A, X: r.X, Y: r.Y, DP: r.DP, SP: r.SP,
			DB: r.DB, PB: r.PB, PC: r.PC, P: r.P, E: r.E, Cycles: r.Cycles,
		},
	}

	for _, d := range p.mapper.Devices() {
		id := p.deviceGUID(d)
		dj := deviceJSON{GUID: id.String()}
		switch dev := d.(type) {
		case *device.RAM:
			dj.Type = "RAM"
			dj.Params = map[string]uint32{"size": dev.Size()}
			dumpName := id.String() + ".ramdump"
			if err := dev.Dump(filepath.Join(dir, dumpName)); err != nil {
				return "", err
			}
			dj.State = dumpName
		case *device.ROM:
			dj.Type = "ROM"
			dj.ModuleFile = dev.Path()
			dj.Params = map[string]uint32{"size": dev.Size()}
		case *device.UART:
			dj.Type = "UART"
		default:
			dj.Type = fmt.Sprintf("%T", d)
		}
		s.Devices = append(s.Devices, dj)
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("host: marshaling save state: %w", err)
	}
	path := filepath.Join(dir, "state.json")
	if err := ioutil.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("host: writing save state %s: %w", path, err)
	}
	return path, nil
}

// LoadState restores registers (only permitted while the core is Disabled,
// per §4.6) and reloads each RAM/ROM device's contents in place, then
// resumes the core directly into Running: `PowerOn`/`Enable` would run the
// reset sequence and load PC from the reset vector, clobbering the very
// state just restored, so LoadState uses cpu.Core.Resume instead. Devices
// are matched positionally against bus.Mapper.Devices(), the same order
// SaveState walked them in: a save-state restores onto an already-
// constructed bus, it does not reconstruct one, so the caller must build
// the identical device topology before calling LoadState.
func (p *Processor) LoadState(dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := ioutil.ReadFile(filepath.Join(dir, "state.json"))
	if err != nil {
		return fmt.Errorf("host: reading save state: %w", err)
	}
	var s saveStateJSON
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("host: parsing save state: %w", err)
	}

	p.mapper.PowerOn()
	if err := p.core.SetState(cpu.Registers{
		A: s.Registers.A, X: s.Registers.X, Y: s.Registers.Y,
		DP: s.Registers.DP, SP: s.Registers.SP,
		DB: s.Registers.DB, PB: s.Registers.PB, PC: s.Registers.PC,
		P: s.Registers.P, E: s.Registers.E, Cycles: s.Registers.Cycles,
	}); err != nil {
		return err
	}

	devices := p.mapper.Devices()
	if len(devices) != len(s.Devices) {
		return fmt.Errorf("host: save state has %d devices, bus has %d", len(s.Devices), len(devices))
	}
	for i, dj := range s.Devices {
		switch dev := devices[i].(type) {
		case *device.RAM:
			if dj.State == "" {
				continue
			}
			if err := dev.LoadInto(filepath.Join(dir, dj.State)); err != nil {
				return err
			}
		case *device.ROM:
			if err := dev.Reload(); err != nil {
				return err
			}
		}
	}
	return p.core.Resume()
}
