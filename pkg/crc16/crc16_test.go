package crc16

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// check is the catalog test vector: the checksum of "123456789".
var check = []byte("123456789")

func TestPredefinedVariants(t *testing.T) {
	tests := []struct {
		engine *Engine
		want   uint16
	}{
		{CcittFalse, 0x29B1},
		{Xmodem, 0x31C3},
		{Kermit, 0x2189},
		{X25, 0x906E},
		{Modbus, 0x4B37},
		{Usb, 0xB4C8},
		{Arc, 0xBB3D},
		{Dnp, 0xEA82},
	}

	for _, tt := range tests {
		t.Run(tt.engine.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.engine.Checksum(check))
		})
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	for _, e := range []*Engine{CcittFalse, Modbus, Dnp} {
		t.Run(e.Name(), func(t *testing.T) {
			crc := e.Init()
			crc = e.Update(crc, check[:3])
			crc = e.Update(crc, check[3:7])
			crc = e.Update(crc, check[7:])
			assert.Equal(t, e.Checksum(check), e.Finalize(crc))
		})
	}
}

func TestCustomVariant(t *testing.T) {
	// CRC-16/AUG-CCITT from the catalog.
	aug := New(Config{Name: "CRC-16/AUG-CCITT", Poly: 0x1021, Init: 0x1D0F})
	assert.Equal(t, uint16(0xE5CC), aug.Checksum(check))
	assert.Equal(t, "CRC-16/AUG-CCITT", aug.Name())
}

func TestEmptyInput(t *testing.T) {
	// An empty message leaves the register at Init, transformed by
	// the output stage only.
	assert.Equal(t, uint16(0xFFFF), CcittFalse.Checksum(nil))
	assert.Equal(t, uint16(0x0000), Xmodem.Checksum(nil))
}
