// Package irq defines the basic interfaces for working
// with a W65C816S hardware interrupt line. A receiver of interrupts (IRQ/NMI)
// will implement this interface to allow other components which generate
// them to easily raise state without cross coupling component logic.
// NOTE: Even though the chip makes a distinction between level (IRQ) and
//
//	edge (NMI) type interrupts the interface here doesn't care; implementors
//	simply account for this in how they manage clock cycles. The processor
//	core is the one that does edge-latching for NMI (see cpu.Core).
package irq

// Sender defines the interface for an IRQ source.
type Sender interface {
	// Raised indicates whether the interrupt is currently held high.
	Raised() bool
}
