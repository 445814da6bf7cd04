package device

import "github.com/lunarlabs/EightSixteenEmu/io"

// UART register offsets within its 4-byte window.
const (
	regData    = 0x0 // read: last received byte; write: queue a byte for transmit
	regStatus  = 0x1 // read-only: bit0 RxReady, bit1 TxEmpty, bit2 IrqPending
	regControl = 0x2 // bit0 RxIrqEnable, bit1 TxIrqEnable
	regDiv     = 0x3 // baud-rate divisor, latched, cosmetic for this emulation
)

const (
	statusRxReady   = 1 << 0
	statusTxEmpty   = 1 << 1
	statusIrqPend   = 1 << 2
	controlRxIrqEn  = 1 << 0
	controlTxIrqEn  = 1 << 1
)

// UART is a minimal register-mapped, interrupting serial device: a single
// byte of receive buffering latched from an optional io.Port8 input, and a
// transmit sink callback fired once per byte written to regData. It is
// shaped after pia6532.Chip's shadow-register-then-TickDone commit pattern,
// trading timer/PA7 edge detection for RxReady/TxEmpty/IRQ bits appropriate
// to a UART.
type UART struct {
	input  io.Port8 // optional; nil means RxReady never asserts from hardware
	onTx   func(uint8)

	rxData    uint8
	rxReady   bool
	rxIrqEn   bool
	txIrqEn   bool
	divisor   uint8

	shadowRxReady bool
	shadowRxData  uint8
}

// NewUART returns a UART device. input may be nil if nothing ever drives
// the receive line; onTx may be nil to discard transmitted bytes.
func NewUART(input io.Port8, onTx func(uint8)) *UART {
	u := &UART{input: input, onTx: onTx}
	u.PowerOn()
	return u
}

// PowerOn resets all registers to their power-on state: buffers empty,
// interrupts disabled.
func (u *UART) PowerOn() {
	u.rxData = 0
	u.rxReady = false
	u.rxIrqEn = false
	u.txIrqEn = false
	u.divisor = 0
	u.shadowRxReady = false
	u.shadowRxData = 0
}

// Read implements bus.Device.
func (u *UART) Read(offset uint32) uint8 {
	switch offset {
	case regData:
		u.rxReady = false
		return u.rxData
	case regStatus:
		var s uint8
		if u.rxReady {
			s |= statusRxReady
		}
		s |= statusTxEmpty // transmit is always immediately drained
		if u.Raised() {
			s |= statusIrqPend
		}
		return s
	case regControl:
		var c uint8
		if u.rxIrqEn {
			c |= controlRxIrqEn
		}
		if u.txIrqEn {
			c |= controlTxIrqEn
		}
		return c
	case regDiv:
		return u.divisor
	}
	return 0
}

// Write implements bus.Device.
func (u *UART) Write(offset uint32, val uint8) {
	switch offset {
	case regData:
		if u.onTx != nil {
			u.onTx(val)
		}
	case regControl:
		u.rxIrqEn = val&controlRxIrqEn != 0
		u.txIrqEn = val&controlTxIrqEn != 0
	case regDiv:
		u.divisor = val
	}
}

// Raised implements irq.Sender (via bus.Device): asserted while the receive
// interrupt is enabled and a received byte is waiting. The transmit
// interrupt enable bit is stored and read back but never raises the line.
func (u *UART) Raised() bool {
	return u.rxIrqEn && u.rxReady
}

// Size implements bus.Device.
func (u *UART) Size() uint32 { return 4 }

// Tick samples the input line, if any, into a shadow register; call
// TickDone afterward to commit it. Mirrors pia6532.Chip's split so a host
// can coordinate multiple devices sampling the same clock edge.
func (u *UART) Tick() {
	if u.input == nil {
		return
	}
	if !u.rxReady {
		u.shadowRxData = u.input.Input()
		u.shadowRxReady = true
	}
}

// TickDone commits the shadow receive state latched during Tick.
func (u *UART) TickDone() {
	if u.shadowRxReady {
		u.rxData = u.shadowRxData
		u.rxReady = true
		u.shadowRxReady = false
	}
}
