package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExportJSONL(t *testing.T) {
	path := writeTrace(t)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	require.NoError(t, RunExport(path, "jsonl", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)

	var first jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "REGISTER", first.Category)
	assert.Equal(t, "usart2", first.Peripheral)
	assert.Equal(t, "tx-complete", first.Kind)

	var last jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "ERROR", last.Category)
	assert.Equal(t, "boom", last.Error)
}

func TestRunExportCSV(t *testing.T) {
	path := writeTrace(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, RunExport(path, "csv", out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + 4 events
	assert.Equal(t, "timestamp", rows[0][0])
	assert.Equal(t, "REGISTER", rows[1][2])
	assert.Equal(t, "usart2", rows[1][3])
}

func TestRunExportInvalidFormat(t *testing.T) {
	path := writeTrace(t)
	err := RunExport(path, "xml", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
