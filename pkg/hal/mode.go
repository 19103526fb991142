package hal

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mode selects how a peripheral operation completes.
type Mode uint8

const (
	// ModeBlocking runs the operation synchronously with a timeout.
	ModeBlocking Mode = iota
	// ModeInterrupt arms the operation and raises a completion event
	// from interrupt context.
	ModeInterrupt
	// ModeDMA arms the operation with DMA transfer and raises a
	// completion event when the transfer finishes.
	ModeDMA
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeBlocking:
		return "blocking"
	case ModeInterrupt:
		return "interrupt"
	case ModeDMA:
		return "dma"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// IsValid reports whether m is one of the defined modes.
func (m Mode) IsValid() bool {
	return m <= ModeDMA
}

// IsAsync reports whether operations in this mode complete through a
// raised event rather than a blocking return.
func (m Mode) IsAsync() bool {
	return m == ModeInterrupt || m == ModeDMA
}

// ParseMode converts a mode name as found in board definitions.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "blocking":
		return ModeBlocking, nil
	case "interrupt":
		return ModeInterrupt, nil
	case "dma":
		return ModeDMA, nil
	default:
		return 0, fmt.Errorf("hal: unknown mode %q", s)
	}
}

// UnmarshalYAML decodes a mode from its string name.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML encodes the mode as its string name.
func (m Mode) MarshalYAML() (interface{}, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("hal: cannot marshal invalid mode %d", uint8(m))
	}
	return m.String(), nil
}

// Compile-time interface satisfaction checks.
var (
	_ yaml.Unmarshaler = (*Mode)(nil)
	_ yaml.Marshaler   = Mode(0)
)
