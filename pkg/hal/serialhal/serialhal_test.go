package serialhal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout)
	assert.Nil(t, cfg.Logger)
}

func TestOpenMissingDevice(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "no-such-tty"))
	_, err := Open("usart1", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serialhal: open")
}
