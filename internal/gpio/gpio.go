//go:build !amd64

// Package gpio drives the piezo output pin through the sysfs gpio interface
// and provides the periodic toggle source for the tone driver.
package gpio

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/juju/loggo"
)

// orangepi pc plus gpio numbering:
// (position of letter in alphabet - 1) * 32 + pin number
// Piezo - PA20 => 20
const base = "/sys/class/gpio"

var logger = loggo.GetLogger("main.gpio")

// Pin is a sysfs GPIO output line.
type Pin struct {
	num string

	mu    sync.Mutex
	level bool
}

func (p *Pin) String() string {
	return "GPIO PIN: " + p.num
}

// Toggle flips the pin's logic level. This is the whole audible part of the
// player: two toggles per armed interval make one square wave cycle.
func (p *Pin) Toggle() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = !p.level
	v := "0"
	if p.level {
		v = "1"
	}
	return write(gpioPath(p.num, "value"), v)
}

// Clear drives the pin low.
func (p *Pin) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = false
	return write(gpioPath(p.num, "value"), "0")
}

func (p *Pin) export() error {
	path := base + "/gpio" + p.num
	if _, err := os.Stat(path); err == nil {
		return nil // already exported
	}

	if err := write(base+"/export", p.num); err != nil {
		return fmt.Errorf("failed to export: %v %v", p, err)
	}

	return nil
}

func (p *Pin) directionOut() error {
	if err := write(gpioPath(p.num, "direction"), "out"); err != nil {
		return fmt.Errorf("failed to set direction 'out': %v %v", p, err)
	}

	return nil
}

// Toggler flips a pin at a programmed half-period. It stands in for a
// hardware timer interrupt: Arm programs the interval and restarts it from
// zero, Disarm stops the toggling and leaves the pin at its last level.
// Both are cheap and never block, so the 1kHz sequencer can call them from
// its tick path.
type Toggler struct {
	pin *Pin

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}

	logErr sync.Once
}

// NewToggler exports and configures the pin and returns a disarmed toggle
// source for it.
func NewToggler(pinNum string) (*Toggler, error) {
	p := &Pin{num: pinNum}
	if err := p.export(); err != nil {
		return nil, err
	}
	if err := p.directionOut(); err != nil {
		return nil, err
	}
	if err := p.Clear(); err != nil {
		return nil, err
	}

	return &Toggler{pin: p}, nil
}

// Pin returns the underlying output line.
func (t *Toggler) Pin() *Pin { return t.pin }

func (t *Toggler) Arm(halfPeriod time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticker != nil {
		t.ticker.Reset(halfPeriod)
		return
	}

	t.ticker = time.NewTicker(halfPeriod)
	t.done = make(chan struct{})
	go t.run(t.ticker, t.done)
}

func (t *Toggler) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticker == nil {
		return
	}

	t.ticker.Stop()
	close(t.done)
	t.ticker = nil
	t.done = nil
}

func (t *Toggler) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := t.pin.Toggle(); err != nil {
				// At up to 20k toggles a second a broken pin
				// would flood the log, complain once.
				t.logErr.Do(func() {
					logger.Warningf("pin toggle failed: %v", err)
				})
			}
		}
	}
}

func gpioPath(p string, file string) string {
	return base + "/gpio" + p + "/" + file
}

func write(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.WriteString(value)
	if err != nil {
		return err
	}

	if n < len(value) {
		return io.ErrShortWrite
	}

	return nil
}
