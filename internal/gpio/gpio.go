// Package gpio drives the digital outputs: the power line that pulses the
// PC and the status LED.
package gpio

import (
	"errors"
	"fmt"
	"sync"

	"zenith_pc_control/internal/models"

	gpiod "github.com/warthog618/go-gpiocdev"
)

const consumer = "zenith-pc-control"

// Output is a single digital line.
type Output interface {
	Set(high bool) error
}

// Chip owns the character device and every line requested from it.
type Chip struct {
	mu    sync.Mutex
	chip  *gpiod.Chip
	lines []*gpiod.Line
}

func OpenChip(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", name, err)
	}
	return &Chip{chip: c}, nil
}

// RequestOutput claims offset as an output driven low.
func (c *Chip) RequestOutput(offset int) (*Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.chip.RequestLine(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}
	c.lines = append(c.lines, l)
	return &Line{line: l, offset: offset}, nil
}

func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, l := range c.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.lines = nil
	if err := c.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	return errors.Join(errs...)
}

type Line struct {
	line   *gpiod.Line
	offset int
}

func (l *Line) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set line %d: %w", l.offset, err)
	}
	return nil
}

// MemoryHistory is how many recent levels a Memory output keeps.
const MemoryHistory = 64

// Memory is an in-process output used when no GPIO chip is configured. It
// keeps the last MemoryHistory levels and a total write count.
type Memory struct {
	mu      sync.Mutex
	levels  []bool
	count   uint64
	failErr error
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Set(high bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if len(m.levels) == MemoryHistory {
		copy(m.levels, m.levels[1:])
		m.levels = m.levels[:MemoryHistory-1]
	}
	m.levels = append(m.levels, high)
	m.count++
	return nil
}

// FailWith makes every later Set return err (nil restores normal writes).
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.failErr = err
	m.mu.Unlock()
}

// Writes returns the retained levels, oldest first.
func (m *Memory) Writes() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.levels))
	copy(out, m.levels)
	return out
}

// Count is the number of successful writes since creation.
func (m *Memory) Count() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Level is the last written level (false before any write).
func (m *Memory) Level() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.levels) == 0 {
		return false
	}
	return m.levels[len(m.levels)-1]
}

// LED shows an indicator signal on a single-channel output: any signal other
// than off lights it. Only one write happens per signal.
type LED struct {
	out Output
}

func NewLED(out Output) *LED { return &LED{out: out} }

func (l *LED) Show(sig models.IndicatorSignal) error {
	return l.out.Set(sig != models.SignalOff)
}
