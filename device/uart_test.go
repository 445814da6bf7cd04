package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedInput struct{ val uint8 }

func (f fixedInput) Input() uint8 { return f.val }

func TestUARTTransmitCallsSink(t *testing.T) {
	var got []uint8
	u := NewUART(nil, func(b uint8) { got = append(got, b) })

	u.Write(regData, 'H')
	u.Write(regData, 'i')

	assert.Equal(t, []uint8{'H', 'i'}, got)
}

func TestUARTStatusReflectsTxEmptyAlways(t *testing.T) {
	u := NewUART(nil, nil)
	assert.Equal(t, uint8(statusTxEmpty), u.Read(regStatus))
}

func TestUARTReceiveLatchesOnTickDone(t *testing.T) {
	u := NewUART(fixedInput{val: 0x42}, nil)

	assert.False(t, u.Raised())
	u.Tick()
	u.TickDone()

	status := u.Read(regStatus)
	assert.NotZero(t, status&statusRxReady)
	assert.Equal(t, uint8(0x42), u.Read(regData))
}

func TestUARTReadDataClearsRxReady(t *testing.T) {
	u := NewUART(fixedInput{val: 0x7E}, nil)
	u.Tick()
	u.TickDone()

	_ = u.Read(regData)
	status := u.Read(regStatus)
	assert.Zero(t, status&statusRxReady)
}

func TestUARTInterruptsOnlyWhenEnabledAndReady(t *testing.T) {
	u := NewUART(fixedInput{val: 0x01}, nil)
	u.Tick()
	u.TickDone()
	assert.False(t, u.Raised(), "RxIrqEnable is off by default")

	u.Write(regControl, controlRxIrqEn)
	assert.True(t, u.Raised())
}

func TestUARTPowerOnClearsState(t *testing.T) {
	u := NewUART(fixedInput{val: 0x01}, nil)
	u.Write(regControl, controlRxIrqEn)
	u.Tick()
	u.TickDone()

	u.PowerOn()
	assert.False(t, u.Raised())
	assert.Zero(t, u.Read(regStatus)&statusRxReady)
}

func TestUARTDivisorRoundTrip(t *testing.T) {
	u := NewUART(nil, nil)
	u.Write(regDiv, 0x0C)
	assert.Equal(t, uint8(0x0C), u.Read(regDiv))
}
