// Package i2c provides an I2C master façade over a hal backend.
//
// The façade covers plain master transfers, memory-mapped device
// access with 8- or 16-bit register addresses, and device probing. It
// owns four dispatch slots: master transmit/receive completion and
// memory write/read completion.
package i2c
