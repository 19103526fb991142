// Package commands implements the halio-trace CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/halio-project/halio-go/pkg/trace"
)

// ViewFilter specifies criteria for filtering events in the view
// command.
type ViewFilter struct {
	Category   *trace.Category
	Peripheral string
	SessionID  string
}

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (trace.Category, error) {
	switch strings.ToLower(s) {
	case "register":
		return trace.CategoryRegister, nil
	case "unregister":
		return trace.CategoryUnregister, nil
	case "arm":
		return trace.CategoryArm, nil
	case "disarm":
		return trace.CategoryDisarm, nil
	case "dispatch":
		return trace.CategoryDispatch, nil
	case "empty-dispatch", "empty":
		return trace.CategoryEmptyDispatch, nil
	case "drop":
		return trace.CategoryDrop, nil
	case "error":
		return trace.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be register, unregister, arm, disarm, dispatch, empty-dispatch, drop, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := trace.NewFilteredReader(path, trace.Filter{
		SessionID:  filter.SessionID,
		Category:   filter.Category,
		Peripheral: filter.Peripheral,
	})
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event trace.Event) {
	// Header line: timestamp [session:id] CATEGORY peripheral/kind
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)

	fmt.Fprintf(w, "%s [session:%s] %-14s", ts, session, event.Category)
	if event.Peripheral != "" {
		if event.Category == trace.CategoryError && event.Error != nil {
			fmt.Fprintf(w, " %s", event.Peripheral)
		} else {
			fmt.Fprintf(w, " %s/%s", event.Peripheral, event.Kind)
		}
	}
	fmt.Fprintln(w)

	if event.Instance != "" {
		fmt.Fprintf(w, "  Instance: %s\n", event.Instance)
	}
	if event.Purpose != "" {
		fmt.Fprintf(w, "  Purpose:  %s\n", event.Purpose)
	}
	if event.Error != nil {
		fmt.Fprintf(w, "  Error:    %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context:  %s\n", event.Error.Context)
		}
	}
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
