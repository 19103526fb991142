package dac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/dac"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
)

func TestAlignmentMax(t *testing.T) {
	assert.Equal(t, uint32(4095), dac.Align12BitRight.Max())
	assert.Equal(t, uint32(4095), dac.Align12BitLeft.Max())
	assert.Equal(t, uint32(255), dac.Align8BitRight.Max())
}

func TestOpenStartsChannelAndZeroesOutput(t *testing.T) {
	drv := halsim.NewDAC("dac1")

	d, err := dac.Open(drv, dac.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, uint32(0), drv.Value(dac.Channel1))
	assert.Equal(t, uint32(0), d.Get())
}

func TestSetMapsInputOntoRegister(t *testing.T) {
	drv := halsim.NewDAC("dac1")
	cfg := dac.DefaultConfig() // input 0..100, 12-bit

	d, err := dac.Open(drv, cfg)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Set(50))
	assert.Equal(t, uint32(2048), drv.Value(dac.Channel1))
	assert.Equal(t, uint32(50), d.Get())

	require.NoError(t, d.Set(100))
	assert.Equal(t, uint32(4095), drv.Value(dac.Channel1))
}

func TestSetClampsInput(t *testing.T) {
	drv := halsim.NewDAC("dac1")
	d, err := dac.Open(drv, dac.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Set(5000))
	assert.Equal(t, uint32(4095), drv.Value(dac.Channel1))
}

func TestEightBitAlignment(t *testing.T) {
	drv := halsim.NewDAC("dac1")
	cfg := dac.DefaultConfig()
	cfg.Alignment = dac.Align8BitRight

	d, err := dac.Open(drv, cfg)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Set(100))
	assert.Equal(t, uint32(255), drv.Value(dac.Channel1))
}

func TestCloseStopsChannel(t *testing.T) {
	drv := halsim.NewDAC("dac1")
	d, err := dac.Open(drv, dac.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, d.Close())
	assert.Error(t, d.Set(10), "a stopped channel rejects writes")
}

func TestConfigValidation(t *testing.T) {
	drv := halsim.NewDAC("dac1")

	cfg := dac.DefaultConfig()
	cfg.InputMax = 0
	_, err := dac.Open(drv, cfg)
	assert.Error(t, err)

	cfg = dac.DefaultConfig()
	cfg.Alignment = dac.Alignment(9)
	_, err = dac.Open(drv, cfg)
	assert.Error(t, err)
}
