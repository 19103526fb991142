// Package uart provides a UART port façade over a hal backend.
//
// A UART owns two dispatch slots, one per completion kind (transmit
// and receive). Both are bound when the port is opened and released
// when it is closed. Asynchronous transfers store their completion
// callback into the slot before arming the hardware, so a completion
// can never observe a stale callback from an earlier transfer.
package uart
