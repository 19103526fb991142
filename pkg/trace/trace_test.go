package trace

import (
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/hal"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryRegister, "REGISTER"},
		{CategoryUnregister, "UNREGISTER"},
		{CategoryArm, "ARM"},
		{CategoryDisarm, "DISARM"},
		{CategoryDispatch, "DISPATCH"},
		{CategoryEmptyDispatch, "EMPTY-DISPATCH"},
		{CategoryDrop, "DROP"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.String())
		})
	}
}

func TestNewStampsSessionAndTime(t *testing.T) {
	e := New(CategoryDispatch)

	assert.Equal(t, SessionID(), e.SessionID)
	assert.NotEmpty(t, e.SessionID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, CategoryDispatch, e.Category)
}

func TestEncodeDecodeEvent(t *testing.T) {
	e := New(CategoryError)
	e.Peripheral = "uart2"
	e.Kind = hal.EventTxComplete
	e.Instance = "tag(1:motor)"
	e.Purpose = "tag(2:uart2/tx-complete)"
	e.Error = &ErrorData{Message: "register failed", Context: "bind"}

	data, err := EncodeEvent(e)
	require.NoError(t, err)

	got, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.Equal(t, e.SessionID, got.SessionID)
	assert.Equal(t, e.Category, got.Category)
	assert.Equal(t, e.Peripheral, got.Peripheral)
	assert.Equal(t, e.Instance, got.Instance)
	require.NotNil(t, got.Error)
	assert.Equal(t, "register failed", got.Error.Message)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.htrace")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	reg := New(CategoryRegister)
	reg.Peripheral = "uart2"
	disp := New(CategoryDispatch)
	disp.Peripheral = "uart2"
	other := New(CategoryDispatch)
	other.Peripheral = "spi1"

	logger.Log(reg)
	logger.Log(disp)
	logger.Log(other)
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "Close must be idempotent")

	// Log after Close is silently ignored.
	logger.Log(New(CategoryError))

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	var categories []Category
	for {
		e, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		categories = append(categories, e.Category)
	}
	assert.Equal(t, []Category{CategoryRegister, CategoryDispatch, CategoryDispatch}, categories)
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.htrace")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	for _, p := range []string{"uart2", "spi1", "uart2"} {
		e := New(CategoryDispatch)
		e.Peripheral = p
		logger.Log(e)
	}
	e := New(CategoryDrop)
	e.Peripheral = "uart2"
	logger.Log(e)
	require.NoError(t, logger.Close())

	drop := CategoryDrop
	reader, err := NewFilteredReader(path, Filter{Peripheral: "uart2", Category: &drop})
	require.NoError(t, err)
	defer reader.Close()

	got, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, CategoryDrop, got.Category)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

// collectLogger is a test logger accumulating events under a lock.
type collectLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *collectLogger) Log(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func TestTailLoggerKeepsNewest(t *testing.T) {
	tail := NewTailLogger(3)

	for _, p := range []string{"a", "b", "c", "d", "e"} {
		e := New(CategoryDispatch)
		e.Peripheral = p
		tail.Log(e)
	}

	all := tail.Tail(0)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Peripheral)
	assert.Equal(t, "e", all[2].Peripheral)

	last := tail.Tail(2)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].Peripheral)
	assert.Equal(t, "e", last[1].Peripheral)
}

func TestTailLoggerPartialFill(t *testing.T) {
	tail := NewTailLogger(8)
	tail.Log(New(CategoryRegister))
	tail.Log(New(CategoryArm))

	got := tail.Tail(10)
	require.Len(t, got, 2)
	assert.Equal(t, CategoryRegister, got[0].Category)
	assert.Equal(t, CategoryArm, got[1].Category)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &collectLogger{}
	b := &collectLogger{}
	multi := NewMultiLogger(a, b, NoopLogger{})

	multi.Log(New(CategoryArm))

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}
