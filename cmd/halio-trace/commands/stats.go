package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/halio-project/halio-go/pkg/trace"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[trace.Category]int
	Peripherals      map[string]*PeripheralStats
	Sessions         map[string]int
	Errors           int
	Drops            int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// PeripheralStats holds statistics for a single peripheral.
type PeripheralStats struct {
	Events          int
	Dispatches      int
	EmptyDispatches int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[trace.Category]int),
		Peripherals:      make(map[string]*PeripheralStats),
		Sessions:         make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.Sessions[event.SessionID]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Peripheral != "" {
			p, ok := stats.Peripherals[event.Peripheral]
			if !ok {
				p = &PeripheralStats{}
				stats.Peripherals[event.Peripheral] = p
			}
			p.Events++
			switch event.Category {
			case trace.CategoryDispatch:
				p.Dispatches++
			case trace.CategoryEmptyDispatch:
				p.EmptyDispatches++
			}
		}

		switch event.Category {
		case trace.CategoryError:
			stats.Errors++
		case trace.CategoryDrop:
			stats.Drops++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Dispatch Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:     %d\n", len(stats.Sessions))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []trace.Category{
		trace.CategoryRegister, trace.CategoryUnregister,
		trace.CategoryArm, trace.CategoryDisarm,
		trace.CategoryDispatch, trace.CategoryEmptyDispatch,
		trace.CategoryDrop, trace.CategoryError,
	} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-15s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Peripherals: %d\n", len(stats.Peripherals))
	if len(stats.Peripherals) > 0 {
		names := make([]string, 0, len(stats.Peripherals))
		for name := range stats.Peripherals {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w)
		for _, name := range names {
			p := stats.Peripherals[name]
			fmt.Fprintf(w, "  [%s] %d events, %d dispatched, %d empty\n",
				name, p.Events, p.Dispatches, p.EmptyDispatches)
		}
	}

	if stats.Drops > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Dropped Completions: %d\n", stats.Drops)
	}
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
