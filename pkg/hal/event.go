package hal

import "fmt"

// Event is the kind of completion a peripheral raises.
type Event uint8

const (
	// EventTxComplete signals a finished transmit transfer.
	EventTxComplete Event = iota
	// EventRxComplete signals a finished receive transfer.
	EventRxComplete
	// EventTxRxComplete signals a finished full-duplex transfer.
	EventTxRxComplete
	// EventMemTxComplete signals a finished memory-mapped write.
	EventMemTxComplete
	// EventMemRxComplete signals a finished memory-mapped read.
	EventMemRxComplete
	// EventConvComplete signals a finished conversion.
	EventConvComplete
	// EventPeriodElapsed signals a timer period rollover.
	EventPeriodElapsed
	// EventError signals a transfer error reported by the peripheral.
	EventError
)

// String returns the event kind name.
func (e Event) String() string {
	switch e {
	case EventTxComplete:
		return "tx-complete"
	case EventRxComplete:
		return "rx-complete"
	case EventTxRxComplete:
		return "txrx-complete"
	case EventMemTxComplete:
		return "mem-tx-complete"
	case EventMemRxComplete:
		return "mem-rx-complete"
	case EventConvComplete:
		return "conv-complete"
	case EventPeriodElapsed:
		return "period-elapsed"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}
