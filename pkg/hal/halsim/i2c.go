package halsim

import (
	"sync"
	"time"

	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/i2c"
)

// I2C is a simulated I2C master with a byte-addressable memory per
// attached device. Devices are attached with AttachDevice; transfers
// to unattached devices fail.
type I2C struct {
	bus  *Bus
	name string

	mu      sync.Mutex
	mem     map[uint16]map[uint16]byte
	sent    map[uint16][][]byte
	rxQueue map[uint16][][]byte

	pendingTx    bool
	pendingRx    []byte
	pendingRxDev uint16
	pendingMemTx bool
	pendingMemRx bool
}

// NewI2C creates a simulated I2C master named name on bus.
func NewI2C(bus *Bus, name string) *I2C {
	return &I2C{
		bus:     bus,
		name:    name,
		mem:     make(map[uint16]map[uint16]byte),
		sent:    make(map[uint16][][]byte),
		rxQueue: make(map[uint16][][]byte),
	}
}

// Peripheral returns the port's name.
func (d *I2C) Peripheral() string {
	return d.name
}

// AttachDevice makes dev respond on the bus.
func (d *I2C) AttachDevice(dev uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.mem[dev]; !ok {
		d.mem[dev] = make(map[uint16]byte)
	}
}

func (d *I2C) attached(dev uint16) bool {
	_, ok := d.mem[dev]
	return ok
}

// MasterTransmit records p as sent to dev.
func (d *I2C) MasterTransmit(dev uint16, p []byte, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.attached(dev) {
		return hal.ErrTimeout
	}
	d.sent[dev] = append(d.sent[dev], append([]byte(nil), p...))
	return nil
}

// MasterReceive fills p from dev's queued responses.
func (d *I2C) MasterReceive(dev uint16, p []byte, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.attached(dev) || len(d.rxQueue[dev]) == 0 {
		return hal.ErrTimeout
	}
	copy(p, d.rxQueue[dev][0])
	d.rxQueue[dev] = d.rxQueue[dev][1:]
	return nil
}

// MasterTransmitAsync records p and marks a transmit pending.
func (d *I2C) MasterTransmitAsync(dev uint16, p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.attached(dev) {
		return hal.ErrTimeout
	}
	if d.pendingTx {
		return hal.ErrBusy
	}
	d.pendingTx = true
	d.sent[dev] = append(d.sent[dev], append([]byte(nil), p...))
	return nil
}

// MasterReceiveAsync arms p as the target of the next FeedRx for dev.
func (d *I2C) MasterReceiveAsync(dev uint16, p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.attached(dev) {
		return hal.ErrTimeout
	}
	if d.pendingRx != nil {
		return hal.ErrBusy
	}
	d.pendingRx = p
	d.pendingRxDev = dev
	return nil
}

// MemoryWrite stores p at addr in dev's memory.
func (d *I2C) MemoryWrite(dev, addr uint16, _ i2c.AddrSize, p []byte, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.memWrite(dev, addr, p)
}

// MemoryRead fills p from addr in dev's memory.
func (d *I2C) MemoryRead(dev, addr uint16, _ i2c.AddrSize, p []byte, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.memRead(dev, addr, p)
}

// MemoryWriteAsync stores p and marks a memory write pending.
func (d *I2C) MemoryWriteAsync(dev, addr uint16, _ i2c.AddrSize, p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pendingMemTx {
		return hal.ErrBusy
	}
	if err := d.memWrite(dev, addr, p); err != nil {
		return err
	}
	d.pendingMemTx = true
	return nil
}

// MemoryReadAsync fills p and marks a memory read pending.
func (d *I2C) MemoryReadAsync(dev, addr uint16, _ i2c.AddrSize, p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pendingMemRx {
		return hal.ErrBusy
	}
	if err := d.memRead(dev, addr, p); err != nil {
		return err
	}
	d.pendingMemRx = true
	return nil
}

func (d *I2C) memWrite(dev, addr uint16, p []byte) error {
	if !d.attached(dev) {
		return hal.ErrTimeout
	}
	for i, b := range p {
		d.mem[dev][addr+uint16(i)] = b
	}
	return nil
}

func (d *I2C) memRead(dev, addr uint16, p []byte) error {
	if !d.attached(dev) {
		return hal.ErrTimeout
	}
	for i := range p {
		p[i] = d.mem[dev][addr+uint16(i)]
	}
	return nil
}

// IsDeviceReady reports whether dev is attached.
func (d *I2C) IsDeviceReady(dev uint16, _ int, _ time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attached(dev)
}

// CompleteTx finishes a pending master transmit and raises
// tx-complete.
func (d *I2C) CompleteTx() bool {
	return d.completePending(&d.pendingTx, hal.EventTxComplete)
}

// CompleteMemWrite finishes a pending memory write and raises
// mem-tx-complete.
func (d *I2C) CompleteMemWrite() bool {
	return d.completePending(&d.pendingMemTx, hal.EventMemTxComplete)
}

// CompleteMemRead finishes a pending memory read and raises
// mem-rx-complete.
func (d *I2C) CompleteMemRead() bool {
	return d.completePending(&d.pendingMemRx, hal.EventMemRxComplete)
}

func (d *I2C) completePending(flag *bool, event hal.Event) bool {
	d.mu.Lock()
	if !*flag {
		d.mu.Unlock()
		return false
	}
	*flag = false
	d.mu.Unlock()
	return d.bus.RaiseSync(d, event)
}

// FeedRx delivers data from dev. An armed asynchronous receive is
// filled and rx-complete raised; otherwise the data is queued for
// blocking receives.
func (d *I2C) FeedRx(dev uint16, data []byte) {
	d.mu.Lock()
	if d.pendingRx != nil && d.pendingRxDev == dev {
		copy(d.pendingRx, data)
		d.pendingRx = nil
		d.mu.Unlock()
		d.bus.RaiseSync(d, hal.EventRxComplete)
		return
	}
	d.rxQueue[dev] = append(d.rxQueue[dev], append([]byte(nil), data...))
	d.mu.Unlock()
}

// Memory returns a copy of len bytes of dev's memory at addr.
func (d *I2C) Memory(dev, addr uint16, n int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = d.mem[dev][addr+uint16(i)]
	}
	return out
}

// SentTo returns copies of all frames sent to dev in order.
func (d *I2C) SentTo(dev uint16) [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.sent[dev]))
	for i, f := range d.sent[dev] {
		out[i] = append([]byte(nil), f...)
	}
	return out
}
