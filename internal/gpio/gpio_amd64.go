//go:build amd64

// Package gpio drives the piezo output pin through the sysfs gpio interface
// and provides the periodic toggle source for the tone driver.
// On amd64 there is no piezo; the toggler only tracks its armed state so
// the daemon can be developed on a workstation.
package gpio

import (
	"sync"
	"time"
)

type Pin struct {
	num string
}

func (p *Pin) String() string {
	return "GPIO PIN: " + p.num
}

func (p *Pin) Toggle() error { return nil }

func (p *Pin) Clear() error { return nil }

type Toggler struct {
	pin *Pin

	mu    sync.Mutex
	armed bool
	half  time.Duration
}

func NewToggler(pinNum string) (*Toggler, error) {
	return &Toggler{pin: &Pin{num: pinNum}}, nil
}

func (t *Toggler) Pin() *Pin { return t.pin }

func (t *Toggler) Arm(halfPeriod time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.half = halfPeriod
}

func (t *Toggler) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
}

// Armed reports the simulated toggle state.
func (t *Toggler) Armed() (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed, t.half
}
