package uart_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/dispatch"
	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/uart"
)

func openPort(t *testing.T, name string) (*halsim.Bus, *halsim.UART, *uart.UART) {
	t.Helper()
	bus := halsim.NewBus()
	drv := halsim.NewUART(bus, name)
	port, err := uart.Open(bus, drv, tag.Named(name), uart.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })
	return bus, drv, port
}

func TestOpenValidation(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewUART(bus, "uart2")

	t.Run("nil driver", func(t *testing.T) {
		_, err := uart.Open(bus, nil, tag.New(), uart.DefaultConfig())
		assert.Error(t, err)
	})

	t.Run("blocking async mode", func(t *testing.T) {
		cfg := uart.DefaultConfig()
		cfg.Mode = hal.ModeBlocking
		_, err := uart.Open(bus, drv, tag.New(), cfg)
		assert.ErrorContains(t, err, "async working mode")
	})

	t.Run("zero timeout", func(t *testing.T) {
		cfg := uart.DefaultConfig()
		cfg.Timeout = 0
		_, err := uart.Open(bus, drv, tag.New(), cfg)
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestOpenReusedInstanceTagCollides(t *testing.T) {
	bus := halsim.NewBus()
	instance := tag.Named("board")

	first, err := uart.Open(bus, halsim.NewUART(bus, "uart2"), instance, uart.DefaultConfig())
	require.NoError(t, err)
	defer first.Close()

	// Same instance identity, different hardware: the second port
	// would alias the first one's storage, so Open must refuse.
	_, err = uart.Open(bus, halsim.NewUART(bus, "uart3"), instance, uart.DefaultConfig())
	assert.ErrorIs(t, err, dispatch.ErrSlotBound)

	// A fresh instance tag opens fine alongside.
	second, err := uart.Open(bus, halsim.NewUART(bus, "uart3"), tag.Named("board-b"), uart.DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestBlockingTransfers(t *testing.T) {
	_, drv, port := openPort(t, "uart2")

	require.NoError(t, port.Transmit([]byte("hello")))
	sent := drv.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte("hello"), sent[0])

	drv.FeedRx([]byte("world"))
	buf := make([]byte, 5)
	require.NoError(t, port.Receive(buf))
	assert.Equal(t, []byte("world"), buf)
}

func TestTransmitAsyncCompletion(t *testing.T) {
	_, drv, port := openPort(t, "uart2")

	done := make(chan struct{})
	require.NoError(t, port.TransmitAsync([]byte("ping"), func() { close(done) }))

	drv.CompleteTx()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tx completion callback never ran")
	}
}

func TestTransmitAsyncNilCallbackIsNoop(t *testing.T) {
	_, drv, port := openPort(t, "uart2")

	require.NoError(t, port.TransmitAsync([]byte("ping"), nil))
	assert.True(t, drv.CompleteTx(), "the completion is delivered and safely ignored")
}

func TestTransmitAsyncArmFailureClearsSlot(t *testing.T) {
	_, drv, port := openPort(t, "uart2")

	require.NoError(t, port.TransmitAsync([]byte("one"), func() {}))

	calls := 0
	err := port.TransmitAsync([]byte("two"), func() { calls++ })
	require.ErrorIs(t, err, hal.ErrBusy)

	// The failed arm must not leave its callback in the slot.
	drv.CompleteTx()
	assert.Equal(t, 0, calls)
}

func TestReceiveAsyncCompletion(t *testing.T) {
	_, drv, port := openPort(t, "uart2")

	buf := make([]byte, 4)
	got := make(chan struct{})
	require.NoError(t, port.ReceiveAsync(buf, func() { close(got) }))

	drv.FeedRx([]byte("pong"))
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("rx completion callback never ran")
	}
	assert.Equal(t, []byte("pong"), buf)
}

func TestTransmitClampsOversizedMessage(t *testing.T) {
	_, drv, port := openPort(t, "uart2")

	big := bytes.Repeat([]byte{0xAB}, hal.MaxTransferLen+100)
	require.NoError(t, port.Transmit(big))

	sent := drv.Sent()
	require.Len(t, sent, 1)
	assert.Len(t, sent[0], hal.MaxTransferLen)
}

func TestCloseReleasesSlots(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewUART(bus, "uart2")
	instance := tag.Named("uart2-instance")

	port, err := uart.Open(bus, drv, instance, uart.DefaultConfig())
	require.NoError(t, err)

	calls := 0
	require.NoError(t, port.TransmitAsync([]byte("x"), func() { calls++ }))
	require.NoError(t, port.Close())
	require.NoError(t, port.Close(), "Close must be idempotent")

	// A late completion after Close is dropped by the source.
	assert.False(t, bus.RaiseSync(drv, hal.EventTxComplete))
	assert.Equal(t, 0, calls)

	// The port can be reopened with the same driver and tag.
	again, err := uart.Open(bus, drv, instance, uart.DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}
