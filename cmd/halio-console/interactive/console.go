// Package interactive provides the interactive command-line interface
// for halio-console.
package interactive

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/halio-project/halio-go/pkg/board"
	"github.com/halio-project/halio-go/pkg/crc16"
	"github.com/halio-project/halio-go/pkg/gpio"
	"github.com/halio-project/halio-go/pkg/trace"
)

// Console handles interactive mode for halio-console.
type Console struct {
	board *board.Board
	tail  *trace.TailLogger
	rl    *readline.Instance

	// Armed receive buffers by UART name, so a later feed can show
	// what arrived.
	rxArmed map[string][]byte
}

// New creates a new interactive console over a built board. The tail
// logger backs the trace command and must be the one the board's bus
// logs to.
func New(b *board.Board, tail *trace.TailLogger) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          b.Name + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		board:   b,
		tail:    tail,
		rl:      rl,
		rxArmed: make(map[string][]byte),
	}, nil
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "list", "l":
			c.cmdList()

		case "status":
			c.cmdStatus()

		case "uart", "u":
			c.cmdUART(args)

		case "i2c":
			c.cmdI2C(args)

		case "adc":
			c.cmdADC(args)

		case "dac":
			c.cmdDAC(args)

		case "pwm":
			c.cmdPWM(args)

		case "timer", "t":
			c.cmdTimer(args)

		case "gpio", "g":
			c.cmdGPIO(args)

		case "crc":
			c.cmdCRC(args)

		case "trace":
			c.cmdTrace(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Board Console Commands:
  Overview:
    list                      - List board peripherals
    status                    - Show board status

  UART:
    uart tx <name> <text>     - Transmit asynchronously and complete
    uart rx <name> <n>        - Arm an n-byte asynchronous receive
    uart feed <name> <text>   - Feed receive data into the port
    uart sent <name>          - Show transmitted frames

  I2C:
    i2c tx <name> <dev> <hex> - Transmit hex bytes to a device
    i2c mem <name> <dev> <addr> <n> - Dump n bytes of device memory

  Analog / PWM:
    adc read <name>           - Run a filtered read
    adc queue <name> <s...>   - Queue raw samples
    dac set <name> <value>    - Drive the output
    dac get <name>            - Show the driven value
    pwm set <name> <value>    - Set the scaled duty value
    pwm get <name>            - Show the scaled duty value

  Timer / GPIO:
    timer advance <name> <n>  - Advance the counter by n ticks
    timer counter <name>      - Show the counter
    timer raise <name>        - Raise a period-elapsed event
    gpio read <name> <pin>    - Read a pin
    gpio write <name> <pin> <0|1> - Drive a pin
    gpio toggle <name> <pin>  - Toggle a pin

  Checksums:
    crc <variant> <text>      - CRC-16 of text (variant: ccitt-false,
                                xmodem, kermit, x25, modbus, usb, arc, dnp)

  General:
    trace [n]                 - Show the last n dispatch trace events (default 10)
    help                      - Show this help
    quit                      - Exit console`)
}

// cmdList shows the board's peripherals grouped by kind.
func (c *Console) cmdList() {
	kinds := c.board.Peripherals()
	if len(kinds) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No peripherals declared")
		return
	}
	for _, kind := range []string{"uart", "spi", "i2c", "adc", "dac", "pwm", "timer", "gpio"} {
		names := kinds[kind]
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(c.rl.Stdout(), "  %-6s %s\n", kind, strings.Join(names, ", "))
	}
}

// cmdStatus shows the board status.
func (c *Console) cmdStatus() {
	fmt.Fprintln(c.rl.Stdout(), "\nBoard Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  Board:         %s\n", c.board.Name)
	fmt.Fprintf(c.rl.Stdout(), "  Trace Session: %s\n", trace.SessionID())

	total := 0
	for _, names := range c.board.Peripherals() {
		total += len(names)
	}
	fmt.Fprintf(c.rl.Stdout(), "  Peripherals:   %d\n", total)

	if len(c.rxArmed) > 0 {
		armed := make([]string, 0, len(c.rxArmed))
		for name := range c.rxArmed {
			armed = append(armed, name)
		}
		fmt.Fprintf(c.rl.Stdout(), "  Armed RX:      %s\n", strings.Join(armed, ", "))
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdUART handles the uart subcommands.
func (c *Console) cmdUART(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: uart tx|rx|feed|sent <name> [args]")
		return
	}
	sub, name := args[0], args[1]

	port, ok := c.board.UARTs[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown UART: %s\n", name)
		return
	}
	sim := c.board.SimUARTs[name]

	switch sub {
	case "tx":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: uart tx <name> <text>")
			return
		}
		data := []byte(strings.Join(args[2:], " "))
		err := port.TransmitAsync(data, func() {
			fmt.Fprintf(c.rl.Stdout(), "[%s] tx complete (%d bytes)\n", name, len(data))
		})
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Transmit failed: %v\n", err)
			return
		}
		sim.CompleteTx()

	case "rx":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: uart rx <name> <n>")
			return
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			fmt.Fprintf(c.rl.Stdout(), "Invalid length: %s\n", args[2])
			return
		}
		buf := make([]byte, n)
		err = port.ReceiveAsync(buf, func() {
			fmt.Fprintf(c.rl.Stdout(), "[%s] rx complete: %q\n", name, buf)
			delete(c.rxArmed, name)
		})
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Receive failed: %v\n", err)
			return
		}
		c.rxArmed[name] = buf
		fmt.Fprintf(c.rl.Stdout(), "Armed %d-byte receive, use 'uart feed %s <text>'\n", n, name)

	case "feed":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: uart feed <name> <text>")
			return
		}
		sim.FeedRx([]byte(strings.Join(args[2:], " ")))

	case "sent":
		frames := sim.Sent()
		if len(frames) == 0 {
			fmt.Fprintln(c.rl.Stdout(), "Nothing transmitted")
			return
		}
		for i, f := range frames {
			fmt.Fprintf(c.rl.Stdout(), "  [%d] %q\n", i, f)
		}

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown uart subcommand: %s\n", sub)
	}
}

// cmdI2C handles the i2c subcommands.
func (c *Console) cmdI2C(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: i2c tx|mem <name> <dev> [args]")
		return
	}
	sub, name := args[0], args[1]

	port, ok := c.board.I2Cs[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown I2C: %s\n", name)
		return
	}
	sim := c.board.SimI2Cs[name]

	dev, err := parseUint16(args[2])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid device address: %s\n", args[2])
		return
	}

	switch sub {
	case "tx":
		if len(args) < 4 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: i2c tx <name> <dev> <hex>")
			return
		}
		data, err := hex.DecodeString(strings.Join(args[3:], ""))
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid hex payload: %v\n", err)
			return
		}
		err = port.TransmitAsync(dev, data, func() {
			fmt.Fprintf(c.rl.Stdout(), "[%s] tx complete to 0x%02X (%d bytes)\n", name, dev, len(data))
		})
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Transmit failed: %v\n", err)
			return
		}
		sim.CompleteTx()

	case "mem":
		if len(args) < 5 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: i2c mem <name> <dev> <addr> <n>")
			return
		}
		addr, err := parseUint16(args[3])
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid memory address: %s\n", args[3])
			return
		}
		n, err := strconv.Atoi(args[4])
		if err != nil || n <= 0 {
			fmt.Fprintf(c.rl.Stdout(), "Invalid length: %s\n", args[4])
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "  0x%04X: % X\n", addr, sim.Memory(dev, addr, n))

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown i2c subcommand: %s\n", sub)
	}
}

// cmdADC handles the adc subcommands.
func (c *Console) cmdADC(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: adc read|queue <name> [samples...]")
		return
	}
	sub, name := args[0], args[1]

	a, ok := c.board.ADCs[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown ADC: %s\n", name)
		return
	}

	switch sub {
	case "read":
		v, err := a.Read()
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
			fmt.Fprintln(c.rl.Stdout(), "  Queue samples first: adc queue <name> <samples...>")
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "%s = %d\n", name, v)

	case "queue":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: adc queue <name> <samples...>")
			return
		}
		samples := make([]uint32, 0, len(args)-2)
		for _, s := range args[2:] {
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				fmt.Fprintf(c.rl.Stdout(), "Invalid sample: %s\n", s)
				return
			}
			samples = append(samples, uint32(v))
		}
		c.board.SimADCs[name].QueueSamples(samples...)
		fmt.Fprintf(c.rl.Stdout(), "Queued %d samples\n", len(samples))

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown adc subcommand: %s\n", sub)
	}
}

// cmdDAC handles the dac subcommands.
func (c *Console) cmdDAC(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: dac set|get <name> [value]")
		return
	}
	sub, name := args[0], args[1]

	d, ok := c.board.DACs[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown DAC: %s\n", name)
		return
	}

	switch sub {
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: dac set <name> <value>")
			return
		}
		v, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid value: %s\n", args[2])
			return
		}
		if err := d.Set(uint32(v)); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Set failed: %v\n", err)
			return
		}
		fmt.Fprintln(c.rl.Stdout(), "OK")

	case "get":
		fmt.Fprintf(c.rl.Stdout(), "%s = %d\n", name, d.Get())

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown dac subcommand: %s\n", sub)
	}
}

// cmdPWM handles the pwm subcommands.
func (c *Console) cmdPWM(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: pwm set|get <name> [value]")
		return
	}
	sub, name := args[0], args[1]

	p, ok := c.board.PWMs[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown PWM: %s\n", name)
		return
	}

	switch sub {
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: pwm set <name> <value>")
			return
		}
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid value: %s\n", args[2])
			return
		}
		p.Set(v)
		fmt.Fprintf(c.rl.Stdout(), "Compare register: %d\n", c.board.SimPWMs[name].Compare())

	case "get":
		fmt.Fprintf(c.rl.Stdout(), "%s = %.2f (compare %d, period %d)\n",
			name, p.Get(), c.board.SimPWMs[name].Compare(), c.board.SimPWMs[name].Period())

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown pwm subcommand: %s\n", sub)
	}
}

// cmdTimer handles the timer subcommands.
func (c *Console) cmdTimer(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: timer advance|counter|raise|reset <name> [ticks]")
		return
	}
	sub, name := args[0], args[1]

	t, ok := c.board.Timers[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown timer: %s\n", name)
		return
	}
	sim := c.board.SimTimers[name]

	switch sub {
	case "advance":
		if len(args) < 3 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: timer advance <name> <ticks>")
			return
		}
		ticks, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid ticks: %s\n", args[2])
			return
		}
		sim.Advance(uint32(ticks))
		fmt.Fprintf(c.rl.Stdout(), "Counter now %d\n", t.Counter())

	case "counter":
		fmt.Fprintf(c.rl.Stdout(), "%s counter = %d\n", name, t.Counter())

	case "raise":
		if err := t.OnPeriodElapsed(func() {
			fmt.Fprintf(c.rl.Stdout(), "[%s] period elapsed\n", name)
		}); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Cannot arm period callback: %v\n", err)
			return
		}
		if !sim.RaisePeriod() {
			fmt.Fprintln(c.rl.Stdout(), "Event dropped (no registration)")
		}

	case "reset":
		t.Reset()
		fmt.Fprintln(c.rl.Stdout(), "OK")

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown timer subcommand: %s\n", sub)
	}
}

// cmdGPIO handles the gpio subcommands.
func (c *Console) cmdGPIO(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: gpio read|write|toggle <name> <pin> [0|1]")
		return
	}
	sub, name := args[0], args[1]

	g, ok := c.board.GPIOs[name]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown GPIO: %s\n", name)
		return
	}

	pin, err := parseUint16(args[2])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid pin: %s\n", args[2])
		return
	}

	switch sub {
	case "read":
		fmt.Fprintf(c.rl.Stdout(), "%s pin %d = %s\n", name, pin, g.ReadPin(pin))

	case "write":
		if len(args) < 4 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: gpio write <name> <pin> <0|1>")
			return
		}
		state, err := parsePinState(args[3])
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid state: %s\n", args[3])
			return
		}
		g.WritePin(pin, state)
		fmt.Fprintln(c.rl.Stdout(), "OK")

	case "toggle":
		g.TogglePin(pin)
		fmt.Fprintf(c.rl.Stdout(), "%s pin %d = %s\n", name, pin, g.ReadPin(pin))

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown gpio subcommand: %s\n", sub)
	}
}

// cmdCRC computes a CRC-16 checksum over the given text.
func (c *Console) cmdCRC(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: crc <variant> <text>")
		return
	}

	engine := crcEngine(args[0])
	if engine == nil {
		fmt.Fprintf(c.rl.Stdout(), "Unknown CRC variant: %s\n", args[0])
		return
	}

	data := []byte(strings.Join(args[1:], " "))
	fmt.Fprintf(c.rl.Stdout(), "%s(%q) = 0x%04X\n", engine.Name(), data, engine.Checksum(data))
}

// cmdTrace shows the tail of the dispatch trace.
func (c *Console) cmdTrace(args []string) {
	n := 10
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			fmt.Fprintf(c.rl.Stdout(), "Invalid count: %s\n", args[0])
			return
		}
		n = v
	}

	events := c.tail.Tail(n)
	if len(events) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No trace events yet")
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s %-14s", e.Timestamp.Format("15:04:05.000000"), e.Category)
		if e.Peripheral != "" {
			if e.Category == trace.CategoryError && e.Error != nil {
				line += " " + e.Peripheral
			} else {
				line += fmt.Sprintf(" %s/%s", e.Peripheral, e.Kind)
			}
		}
		if e.Error != nil {
			line += fmt.Sprintf(" (%s)", e.Error.Message)
		}
		fmt.Fprintln(c.rl.Stdout(), line)
	}
}

func crcEngine(name string) *crc16.Engine {
	switch strings.ToLower(name) {
	case "ccitt-false", "ccitt":
		return crc16.CcittFalse
	case "xmodem":
		return crc16.Xmodem
	case "kermit":
		return crc16.Kermit
	case "x25", "x-25":
		return crc16.X25
	case "modbus":
		return crc16.Modbus
	case "usb":
		return crc16.Usb
	case "arc":
		return crc16.Arc
	case "dnp":
		return crc16.Dnp
	default:
		return nil
	}
}

func parseUint16(s string) (uint16, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseUint(rest, 16, 16)
		return uint16(v), err
	}
	v, err := strconv.ParseUint(s, 10, 16)
	return uint16(v), err
}

func parsePinState(s string) (gpio.PinState, error) {
	switch s {
	case "0", "low":
		return gpio.Low, nil
	case "1", "high":
		return gpio.High, nil
	default:
		return gpio.Low, fmt.Errorf("invalid pin state %q", s)
	}
}
