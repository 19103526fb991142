package halsim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/trace"
)

type collectLogger struct {
	mu     sync.Mutex
	events []trace.Event
}

func (c *collectLogger) Log(e trace.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collectLogger) byCategory(cat trace.Category) []trace.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []trace.Event
	for _, e := range c.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

func TestBusRegisterUnregister(t *testing.T) {
	bus := NewBus()
	u := NewUART(bus, "uart2")

	require.NoError(t, bus.RegisterCallback(u, hal.EventTxComplete, func(hal.Handle) {}))

	err := bus.RegisterCallback(u, hal.EventTxComplete, func(hal.Handle) {})
	assert.ErrorIs(t, err, hal.ErrAlreadyRegistered)

	require.NoError(t, bus.UnregisterCallback(u, hal.EventTxComplete))
	err = bus.UnregisterCallback(u, hal.EventTxComplete)
	assert.ErrorIs(t, err, hal.ErrNotRegistered)
}

func TestBusRejectsNilTrampoline(t *testing.T) {
	bus := NewBus()
	u := NewUART(bus, "uart2")

	assert.Error(t, bus.RegisterCallback(u, hal.EventTxComplete, nil))
}

func TestBusRaiseSyncDispatches(t *testing.T) {
	bus := NewBus()
	u := NewUART(bus, "uart2")

	calls := 0
	require.NoError(t, bus.RegisterCallback(u, hal.EventTxComplete, func(h hal.Handle) {
		calls++
		assert.Equal(t, "uart2", h.Peripheral())
	}))

	assert.True(t, bus.RaiseSync(u, hal.EventTxComplete))
	assert.Equal(t, 1, calls)
}

func TestBusDropsUnregisteredEvents(t *testing.T) {
	logger := &collectLogger{}
	bus := NewBus(WithLogger(logger))
	u := NewUART(bus, "uart2")

	assert.False(t, bus.RaiseSync(u, hal.EventRxComplete))
	bus.Raise(u, hal.EventRxComplete)
	bus.Wait()

	drops := logger.byCategory(trace.CategoryDrop)
	require.Len(t, drops, 2)
	assert.Equal(t, "uart2", drops[0].Peripheral)
	assert.Equal(t, hal.EventRxComplete, drops[0].Kind)
}

func TestBusRaiseRunsAsynchronously(t *testing.T) {
	bus := NewBus()
	u := NewUART(bus, "uart2")

	done := make(chan struct{})
	require.NoError(t, bus.RegisterCallback(u, hal.EventTxComplete, func(hal.Handle) {
		close(done)
	}))

	bus.Raise(u, hal.EventTxComplete)
	<-done
	bus.Wait()
}

func TestBusRaiseRecoversPanickingCallback(t *testing.T) {
	logger := &collectLogger{}
	bus := NewBus(WithLogger(logger))
	u := NewUART(bus, "uart2")

	require.NoError(t, bus.RegisterCallback(u, hal.EventTxComplete, func(hal.Handle) {
		panic("callback exploded")
	}))

	bus.Raise(u, hal.EventTxComplete)
	bus.Wait()

	errs := logger.byCategory(trace.CategoryError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error.Message, "callback exploded")
}

func TestBusEntriesAreIndependentPerHandleAndEvent(t *testing.T) {
	bus := NewBus()
	u2 := NewUART(bus, "uart2")
	u3 := NewUART(bus, "uart3")

	var fromU2, fromU3, fromRx int
	require.NoError(t, bus.RegisterCallback(u2, hal.EventTxComplete, func(hal.Handle) { fromU2++ }))
	require.NoError(t, bus.RegisterCallback(u3, hal.EventTxComplete, func(hal.Handle) { fromU3++ }))
	require.NoError(t, bus.RegisterCallback(u2, hal.EventRxComplete, func(hal.Handle) { fromRx++ }))

	bus.RaiseSync(u2, hal.EventTxComplete)

	assert.Equal(t, 1, fromU2)
	assert.Equal(t, 0, fromU3)
	assert.Equal(t, 0, fromRx)
}

func TestSimUARTBlockingTransfer(t *testing.T) {
	bus := NewBus()
	u := NewUART(bus, "uart2")

	require.NoError(t, u.Transmit([]byte("hello"), 0))
	sent := u.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte("hello"), sent[0])

	buf := make([]byte, 5)
	assert.ErrorIs(t, u.Receive(buf, 0), hal.ErrTimeout)

	u.FeedRx([]byte("world"))
	require.NoError(t, u.Receive(buf, 0))
	assert.Equal(t, []byte("world"), buf)
}

func TestSimUARTAsyncTransfer(t *testing.T) {
	bus := NewBus()
	u := NewUART(bus, "uart2")

	var txDone, rxDone bool
	require.NoError(t, bus.RegisterCallback(u, hal.EventTxComplete, func(hal.Handle) { txDone = true }))
	require.NoError(t, bus.RegisterCallback(u, hal.EventRxComplete, func(hal.Handle) { rxDone = true }))

	require.NoError(t, u.TransmitAsync([]byte("ping"), hal.ModeInterrupt))
	assert.ErrorIs(t, u.TransmitAsync([]byte("again"), hal.ModeInterrupt), hal.ErrBusy)
	assert.False(t, txDone)
	assert.True(t, u.CompleteTx())
	assert.True(t, txDone)
	assert.False(t, u.CompleteTx(), "no pending transmit left")

	buf := make([]byte, 4)
	require.NoError(t, u.ReceiveAsync(buf, hal.ModeDMA))
	u.FeedRx([]byte("pong"))
	assert.True(t, rxDone)
	assert.Equal(t, []byte("pong"), buf)
}

func TestSimTimerAdvanceRequiresRunning(t *testing.T) {
	bus := NewBus()
	tmr := NewTimer(bus, "tim3")

	tmr.Advance(5)
	assert.Equal(t, uint32(0), tmr.Counter(), "a stopped timer does not move")

	require.NoError(t, tmr.Start(hal.ModeBlocking))
	tmr.Advance(5)
	assert.Equal(t, uint32(5), tmr.Counter())

	tmr.SetCounter(100)
	assert.Equal(t, uint32(100), tmr.Counter())

	require.NoError(t, tmr.Stop(hal.ModeBlocking))
}
