// Package spi provides an SPI master façade over a hal backend.
//
// An SPI port owns three dispatch slots: transmit, receive and
// full-duplex completion. Lifecycle and arming rules match package
// uart.
package spi
