package halio_test

import (
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/board"
	"github.com/halio-project/halio-go/pkg/dispatch"
	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/trace"
	"github.com/halio-project/halio-go/pkg/uart"
)

// TestE2E_SingleCompletionFlow drives one asynchronous transmit from
// the façade down to the simulated hardware and back up through the
// dispatch trampoline.
func TestE2E_SingleCompletionFlow(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewUART(bus, "usart2")

	port, err := uart.Open(bus, drv, tag.Named("usart2"), uart.DefaultConfig())
	require.NoError(t, err)
	defer port.Close()

	var completed atomic.Int32
	require.NoError(t, port.TransmitAsync([]byte("ping"), func() {
		completed.Add(1)
	}))

	// Nothing runs until the hardware raises the completion.
	assert.Equal(t, int32(0), completed.Load())

	require.True(t, drv.CompleteTx())
	assert.Equal(t, int32(1), completed.Load())
	assert.Equal(t, [][]byte{[]byte("ping")}, drv.Sent())

	// A second completion with nothing armed is the safe no-op path.
	require.NoError(t, port.TransmitAsync([]byte("pong"), nil))
	require.True(t, drv.CompleteTx())
	assert.Equal(t, int32(1), completed.Load())
}

// TestE2E_TwoInstancesIndependent opens two ports on one bus and
// checks that completions never cross between them.
func TestE2E_TwoInstancesIndependent(t *testing.T) {
	bus := halsim.NewBus()
	drv2 := halsim.NewUART(bus, "usart2")
	drv3 := halsim.NewUART(bus, "usart3")

	port2, err := uart.Open(bus, drv2, tag.Named("usart2"), uart.DefaultConfig())
	require.NoError(t, err)
	defer port2.Close()

	port3, err := uart.Open(bus, drv3, tag.Named("usart3"), uart.DefaultConfig())
	require.NoError(t, err)
	defer port3.Close()

	var ran2, ran3 atomic.Int32
	require.NoError(t, port2.TransmitAsync([]byte("a"), func() { ran2.Add(1) }))
	require.NoError(t, port3.TransmitAsync([]byte("b"), func() { ran3.Add(1) }))

	require.True(t, drv3.CompleteTx())
	assert.Equal(t, int32(0), ran2.Load())
	assert.Equal(t, int32(1), ran3.Load())

	require.True(t, drv2.CompleteTx())
	assert.Equal(t, int32(1), ran2.Load())
	assert.Equal(t, int32(1), ran3.Load())
}

// TestE2E_CloseStopsDelivery closes a port and checks that stale
// completions are dropped by the source instead of reaching the old
// callback.
func TestE2E_CloseStopsDelivery(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewUART(bus, "usart2")

	port, err := uart.Open(bus, drv, tag.Named("usart2"), uart.DefaultConfig())
	require.NoError(t, err)

	var ran atomic.Int32
	require.NoError(t, port.TransmitAsync([]byte("x"), func() { ran.Add(1) }))
	require.NoError(t, port.Close())

	// The trampoline is unregistered, the completion has nowhere to go.
	assert.False(t, bus.RaiseSync(drv, hal.EventTxComplete))
	assert.Equal(t, int32(0), ran.Load())

	// The identity is free again for a new port.
	reopened, err := uart.Open(bus, drv, tag.Named("usart2"), uart.DefaultConfig())
	require.NoError(t, err)
	defer reopened.Close()
}

// TestE2E_BoardTraceRoundTrip builds a board with file tracing, runs a
// transfer, and reads the recorded trace back.
func TestE2E_BoardTraceRoundTrip(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "session.trace")
	logger, err := trace.NewFileLogger(tracePath)
	require.NoError(t, err)

	def, err := board.Parse([]byte(`
board: trace-rig
uarts:
  - name: usart2
`))
	require.NoError(t, err)

	b, err := def.Build(logger)
	require.NoError(t, err)

	var done atomic.Int32
	require.NoError(t, b.UARTs["usart2"].TransmitAsync([]byte("traced"), func() {
		done.Add(1)
	}))
	require.True(t, b.SimUARTs["usart2"].CompleteTx())
	require.Equal(t, int32(1), done.Load())

	require.NoError(t, b.Close())
	require.NoError(t, logger.Close())

	reader, err := trace.NewReader(tracePath)
	require.NoError(t, err)
	defer reader.Close()

	var categories []trace.Category
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Equal(t, trace.SessionID(), event.SessionID)
		categories = append(categories, event.Category)
	}

	// Both slots register, the armed transmit dispatches, and closing
	// unregisters everything.
	assert.Contains(t, categories, trace.CategoryRegister)
	assert.Contains(t, categories, trace.CategoryArm)
	assert.Contains(t, categories, trace.CategoryDispatch)
	assert.Contains(t, categories, trace.CategoryUnregister)
}

// TestE2E_IdentityCollision reuses one instance tag for two ports and
// checks the second open is refused instead of silently sharing slots.
func TestE2E_IdentityCollision(t *testing.T) {
	bus := halsim.NewBus()
	instance := tag.Named("shared")

	drvA := halsim.NewUART(bus, "usart1")
	drvB := halsim.NewUART(bus, "usart6")

	portA, err := uart.Open(bus, drvA, instance, uart.DefaultConfig())
	require.NoError(t, err)
	defer portA.Close()

	_, err = uart.Open(bus, drvB, instance, uart.DefaultConfig())
	require.ErrorIs(t, err, dispatch.ErrSlotBound)
}
