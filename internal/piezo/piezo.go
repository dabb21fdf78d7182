// Package piezo plays queued tone samples on a piezo actuator.
//
// Producers feed encoded samples through Enqueue, the owner calls Tick at a
// steady 1kHz, and the driver arms the board's toggle source so the piezo
// pin flips at twice the sample's frequency, synthesizing a square wave.
package piezo

import (
	"sync"
	"sync/atomic"
	"time"
)

// maxFreq caps the toggle rate so a pathological producer cannot saturate
// the timer with interrupts. The clamp is silent, never an error.
const maxFreq = 10000

// Hardware is the capability surface the driver needs from the board: a
// periodic toggle source wired to the piezo pin. Arm makes the pin flip
// once per half period, restarting the interval from zero; Disarm stops the
// flipping and leaves the pin at its last level.
type Hardware interface {
	Arm(halfPeriod time.Duration)
	Disarm()
}

// Stats is a snapshot of the driver's counters.
type Stats struct {
	Ticks    uint64
	Played   uint64 // samples consumed from the queue
	Accepted uint64 // successful admissions
	Rejected uint64
}

// Driver is the playback core for one piezo device.
//
// Enqueue is safe for concurrent use: the queue itself is single-producer,
// so admissions are serialized here before they touch it. Tick runs
// lock-free against the producer side but must only ever be called from a
// single goroutine. No method blocks.
type Driver struct {
	hw    Hardware
	queue *sampleQueue

	// enqMu serializes producers; the tick path never takes it.
	enqMu sync.Mutex

	// Sequencer state, touched only from Tick.
	elapsed  uint
	duration uint

	// Frequency of the sample now sounding, plus one, or 0 when idle.
	// Read by the display without disturbing the sequencer.
	current atomic.Uint32

	ticks    atomic.Uint64
	played   atomic.Uint64
	accepted atomic.Uint64
	rejected atomic.Uint64
}

// New returns an idle, disarmed driver. A queueLen < 2 selects
// DefaultQueueLen.
func New(hw Hardware, queueLen int) *Driver {
	if queueLen < 2 {
		queueLen = DefaultQueueLen
	}
	return &Driver{
		hw:    hw,
		queue: newSampleQueue(queueLen),
	}
}

// Enqueue admits a payload of encoded samples, see AppendSample for the
// format. Rejections leave the queue untouched; retrying is the caller's
// business, the driver never retries.
func (d *Driver) Enqueue(data []byte) error {
	d.enqMu.Lock()
	err := d.queue.enqueue(data)
	d.enqMu.Unlock()

	if err != nil {
		d.rejected.Add(1)
		return err
	}
	d.accepted.Add(1)
	return nil
}

// Free reports the number of free queue slots, including the one reserved
// slot; at most Free()-1 samples can be admitted in one payload.
func (d *Driver) Free() int { return d.queue.free() }

// Len reports the number of queued samples not yet picked up.
func (d *Driver) Len() int { return d.queue.len() }

// Current reports the frequency of the sample now sounding. sounding is
// false when the driver is idle; a sounding zero frequency is a queued
// silence.
func (d *Driver) Current() (freq uint16, sounding bool) {
	c := d.current.Load()
	if c == 0 {
		return 0, false
	}
	return uint16(c - 1), true
}

// Stats returns a snapshot of the driver's counters.
func (d *Driver) Stats() Stats {
	return Stats{
		Ticks:    d.ticks.Load(),
		Played:   d.played.Load(),
		Accepted: d.accepted.Load(),
		Rejected: d.rejected.Load(),
	}
}

// Tick advances playback by one millisecond. Call it at 1kHz; jitter is not
// compensated. While the current sample still has duration left it only
// counts; once the duration is up it disarms and immediately picks up the
// next queued sample, or goes idle when there is none.
func (d *Driver) Tick() {
	d.ticks.Add(1)

	if d.elapsed < d.duration {
		d.elapsed++
		return
	}

	d.hw.Disarm()

	s, ok := d.queue.pop()
	if !ok {
		d.elapsed = 0
		d.duration = 0
		d.current.Store(0)
		return
	}

	d.arm(s.Freq)
	d.duration = uint(s.Duration)
	d.elapsed = 0
	d.current.Store(uint32(s.Freq) + 1)
	d.played.Add(1)
}

// arm programs the toggle source for freq. Zero disarms: the pin holds its
// last level and the piezo stays silent.
func (d *Driver) arm(freq uint16) {
	if freq == 0 {
		d.hw.Disarm()
		return
	}

	f := uint32(freq)
	if f > maxFreq {
		f = maxFreq
	}
	// The pin must toggle twice per wave cycle.
	half := time.Duration(500000/f) * time.Microsecond
	d.hw.Arm(half)
}
