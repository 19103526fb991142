package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStats(t *testing.T) {
	path := writeTrace(t)

	var buf strings.Builder
	require.NoError(t, RunStats(path, &buf))

	out := buf.String()
	assert.Contains(t, out, "Total Events: 4")
	assert.Contains(t, out, "Sessions:     1")
	assert.Contains(t, out, "REGISTER:")
	assert.Contains(t, out, "DISPATCH:")
	assert.Contains(t, out, "Peripherals: 2")
	assert.Contains(t, out, "[usart2] 3 events, 1 dispatched, 0 empty")
	assert.Contains(t, out, "Dropped Completions: 1")
	assert.Contains(t, out, "Errors: 1")
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.trace")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var buf strings.Builder
	require.NoError(t, RunStats(path, &buf))
	assert.Contains(t, buf.String(), "Total Events: 0")
}
