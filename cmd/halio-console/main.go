// Command halio-console is an interactive console for a simulated
// board.
//
// The console builds a complete fake board from a YAML board file and
// drops into a command loop where peripherals can be exercised and the
// simulated hardware driven by hand: transmit on a UART, feed receive
// data, queue ADC samples, advance timers, toggle pins.
//
// Usage:
//
//	halio-console -board <file> [flags]
//
// Flags:
//
//	-board string   Board definition file (required)
//	-trace string   Write a CBOR dispatch trace to this file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Open a console on the demo board
//	halio-console -board boards/nucleo-f446re.yaml
//
//	# Record the dispatch trace for later analysis with halio-trace
//	halio-console -board boards/nucleo-f446re.yaml -trace session.cbor
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/halio-project/halio-go/cmd/halio-console/interactive"
	"github.com/halio-project/halio-go/pkg/board"
	"github.com/halio-project/halio-go/pkg/trace"
)

type config struct {
	BoardFile string
	TraceFile string
	LogLevel  string
}

var cfg config

func init() {
	flag.StringVar(&cfg.BoardFile, "board", "", "Board definition file (required)")
	flag.StringVar(&cfg.TraceFile, "trace", "", "Write a CBOR dispatch trace to this file")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	logger := setupLogging(cfg.LogLevel)

	if cfg.BoardFile == "" {
		logger.Error("missing -board flag")
		flag.Usage()
		os.Exit(2)
	}

	def, err := board.Load(cfg.BoardFile)
	if err != nil {
		logger.Error("load board", "error", err)
		os.Exit(1)
	}

	// The tail buffer always records, so the 'trace' command works
	// even without a trace file.
	tail := trace.NewTailLogger(256)
	var tracer trace.Logger = tail
	if cfg.TraceFile != "" {
		fl, err := trace.NewFileLogger(cfg.TraceFile)
		if err != nil {
			logger.Error("open trace file", "error", err)
			os.Exit(1)
		}
		defer fl.Close()
		tracer = trace.NewMultiLogger(tail, fl)
		logger.Info("tracing enabled", "file", cfg.TraceFile, "session", trace.SessionID())
	}

	b, err := def.Build(tracer)
	if err != nil {
		logger.Error("build board", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	logger.Info("board ready", "name", b.Name)

	console, err := interactive.New(b, tail)
	if err != nil {
		logger.Error("create console", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A signal ends the command loop the same way quit does.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	console.Run(ctx, cancel)

	b.Bus.Wait()
	logger.Info("goodbye")
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
