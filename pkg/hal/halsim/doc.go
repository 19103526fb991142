// Package halsim is an in-memory hal backend.
//
// Bus implements hal.EventSource with a plain dispatch table, and the
// sim peripherals (UART, SPI, I2C, ADC, DAC, PWM, Timer, GPIO)
// implement the façade driver interfaces against in-memory state.
// Tests and tooling drive transfers from the foreground and deliver
// completions either synchronously (RaiseSync, deterministic) or on a
// separate goroutine (Raise, modelling the asynchronous completion
// context of real hardware).
package halsim
