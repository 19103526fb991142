package gpio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/gpio"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
)

func TestPinStateString(t *testing.T) {
	assert.Equal(t, "low", gpio.Low.String())
	assert.Equal(t, "high", gpio.High.String())
}

func TestOutputWriteToggleRead(t *testing.T) {
	port := halsim.NewGPIO("gpioa")

	out, err := gpio.NewOutput(port, 5, gpio.Low)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, out.Read())

	out.Write(gpio.High)
	assert.Equal(t, gpio.High, out.Read())

	out.Toggle()
	assert.Equal(t, gpio.Low, out.Read())
	out.Toggle()
	assert.Equal(t, gpio.High, out.Read())
}

func TestOutputInitialState(t *testing.T) {
	port := halsim.NewGPIO("gpioa")

	_, err := gpio.NewOutput(port, 3, gpio.High)
	require.NoError(t, err)
	assert.Equal(t, gpio.High, port.ReadPin(3))
}

func TestInputReadsDriverState(t *testing.T) {
	port := halsim.NewGPIO("gpioa")

	in, err := gpio.NewInput(port, 7)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, in.Read())

	port.WritePin(7, gpio.High)
	assert.Equal(t, gpio.High, in.Read())
}

func TestPinsAreIndependent(t *testing.T) {
	port := halsim.NewGPIO("gpioa")

	a, err := gpio.NewOutput(port, 1, gpio.High)
	require.NoError(t, err)
	b, err := gpio.NewOutput(port, 2, gpio.Low)
	require.NoError(t, err)

	assert.Equal(t, gpio.High, a.Read())
	assert.Equal(t, gpio.Low, b.Read())
}

func TestNilDriverRejected(t *testing.T) {
	_, err := gpio.NewInput(nil, 0)
	assert.Error(t, err)
	_, err = gpio.NewOutput(nil, 0, gpio.Low)
	assert.Error(t, err)
}
