package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/halio-project/halio-go/pkg/trace"
)

// RunExport exports the trace file in the given format to the output
// path, or to stdout when the path is empty.
func RunExport(path, format, output string) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("invalid format: %s (must be jsonl or csv)", format)
	}
}

// jsonEvent is the JSON export shape, with readable field names
// instead of the compact integer keys of the wire format.
type jsonEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	Category   string    `json:"category"`
	Peripheral string    `json:"peripheral,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Instance   string    `json:"instance,omitempty"`
	Purpose    string    `json:"purpose,omitempty"`
	Error      string    `json:"error,omitempty"`
	Context    string    `json:"context,omitempty"`
}

func exportJSONL(reader *trace.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		je := jsonEvent{
			Timestamp:  event.Timestamp,
			SessionID:  event.SessionID,
			Category:   event.Category.String(),
			Peripheral: event.Peripheral,
			Instance:   event.Instance,
			Purpose:    event.Purpose,
		}
		if event.Peripheral != "" {
			je.Kind = event.Kind.String()
		}
		if event.Error != nil {
			je.Error = event.Error.Message
			je.Context = event.Error.Context
		}
		if err := enc.Encode(je); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *trace.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "category", "peripheral", "kind", "instance", "purpose", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		kind := ""
		if event.Peripheral != "" {
			kind = event.Kind.String()
		}
		errMsg := ""
		if event.Error != nil {
			errMsg = event.Error.Message
		}
		row := []string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.SessionID,
			event.Category.String(),
			event.Peripheral,
			kind,
			event.Instance,
			event.Purpose,
			errMsg,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}
