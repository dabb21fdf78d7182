package piezo

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeHardware records arm/disarm calls in place of a real toggle source.
type fakeHardware struct {
	armed   bool
	half    time.Duration
	arms    int
	disarms int
}

func (h *fakeHardware) Arm(halfPeriod time.Duration) {
	h.armed = true
	h.half = halfPeriod
	h.arms++
}

func (h *fakeHardware) Disarm() {
	h.armed = false
	h.disarms++
}

func TestArmHalfPeriod(t *testing.T) {
	tests := []struct {
		freq uint16
		want time.Duration
	}{
		{freq: 440, want: 1136 * time.Microsecond}, // 500000/440
		{freq: 1000, want: 500 * time.Microsecond},
		{freq: 10000, want: 50 * time.Microsecond},
		{freq: 10001, want: 50 * time.Microsecond}, // clamped
		{freq: 65535, want: 50 * time.Microsecond}, // clamped
		{freq: 1, want: 500000 * time.Microsecond},
	}

	for _, tt := range tests {
		hw := &fakeHardware{}
		d := New(hw, 0)
		if err := d.Enqueue(payload(Sample{Freq: tt.freq, Duration: 10})); err != nil {
			t.Fatalf("freq %d: Enqueue failed: %v", tt.freq, err)
		}
		d.Tick()

		if !hw.armed {
			t.Errorf("freq %d: not armed after pickup", tt.freq)
		}
		if hw.half != tt.want {
			t.Errorf("freq %d: half period = %v, want %v", tt.freq, hw.half, tt.want)
		}
	}
}

func TestClampMatchesMax(t *testing.T) {
	// Any frequency above the clamp programs the identical interval as
	// the clamp itself.
	ref := &fakeHardware{}
	d := New(ref, 0)
	_ = d.Enqueue(payload(Sample{Freq: 10000, Duration: 1}))
	d.Tick()

	for _, freq := range []uint16{10001, 20000, 44100, 65535} {
		hw := &fakeHardware{}
		d := New(hw, 0)
		_ = d.Enqueue(payload(Sample{Freq: freq, Duration: 1}))
		d.Tick()

		if hw.half != ref.half {
			t.Errorf("freq %d: half period = %v, want %v", freq, hw.half, ref.half)
		}
	}
}

func TestZeroFrequencyIsSilent(t *testing.T) {
	hw := &fakeHardware{}
	d := New(hw, 0)
	if err := d.Enqueue(payload(Sample{Freq: 0, Duration: 20})); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	d.Tick()

	if hw.armed {
		t.Error("armed while playing a silence sample")
	}
	if hw.arms != 0 {
		t.Errorf("arms = %d, want 0", hw.arms)
	}
	freq, sounding := d.Current()
	if !sounding || freq != 0 {
		t.Errorf("Current() = %d, %v, want 0, true", freq, sounding)
	}
}

func TestIdleTicksDoNothing(t *testing.T) {
	hw := &fakeHardware{}
	d := New(hw, 0)

	for i := 0; i < 10; i++ {
		d.Tick()
	}
	if hw.armed || hw.arms != 0 {
		t.Errorf("idle driver touched the hardware: %+v", hw)
	}
	if _, sounding := d.Current(); sounding {
		t.Error("idle driver reports a sounding sample")
	}
	if got := d.Stats().Ticks; got != 10 {
		t.Errorf("Stats().Ticks = %d, want 10", got)
	}
}

func TestPlaybackScenario(t *testing.T) {
	// Empty queue, capacity 32. Admit (440,100) then (0,50): sounding at
	// 440Hz for the full duration, then an immediate transition into the
	// 50ms silence, then idle until someone admits more.
	hw := &fakeHardware{}
	d := New(hw, 32)

	data := payload(
		Sample{Freq: 440, Duration: 100},
		Sample{Freq: 0, Duration: 50},
	)
	if len(data) != 8 {
		t.Fatalf("payload size = %d, want 8", len(data))
	}
	if err := d.Enqueue(data); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if got := d.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	// First tick picks up the 440Hz sample.
	d.Tick()
	if !hw.armed {
		t.Fatal("not armed after first tick")
	}
	if want := 1136 * time.Microsecond; hw.half != want {
		t.Errorf("half period = %v, want %v", hw.half, want)
	}
	if freq, sounding := d.Current(); !sounding || freq != 440 {
		t.Errorf("Current() = %d, %v, want 440, true", freq, sounding)
	}

	// Stays sounding for the full 100ms without touching the hardware.
	arms, disarms := hw.arms, hw.disarms
	for i := 0; i < 100; i++ {
		d.Tick()
	}
	if hw.arms != arms || hw.disarms != disarms {
		t.Errorf("hardware touched mid-sample: %+v", hw)
	}
	if !hw.armed {
		t.Error("disarmed before the duration elapsed")
	}

	// Next tick: duration is up, disarm and pick up the silence.
	d.Tick()
	if hw.armed {
		t.Error("still armed during the queued silence")
	}
	if freq, sounding := d.Current(); !sounding || freq != 0 {
		t.Errorf("Current() = %d, %v, want 0, true", freq, sounding)
	}
	if got := d.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}

	// The silence runs its 50ms, then the driver goes idle and stays.
	for i := 0; i < 51; i++ {
		d.Tick()
	}
	if _, sounding := d.Current(); sounding {
		t.Error("driver not idle after the queue drained")
	}
	for i := 0; i < 20; i++ {
		d.Tick()
	}
	if hw.armed {
		t.Error("armed while idle")
	}

	// A later admission is picked up on the next tick.
	if err := d.Enqueue(payload(Sample{Freq: 880, Duration: 10})); err != nil {
		t.Fatalf("late Enqueue failed: %v", err)
	}
	d.Tick()
	if freq, sounding := d.Current(); !sounding || freq != 880 {
		t.Errorf("Current() = %d, %v, want 880, true", freq, sounding)
	}

	stats := d.Stats()
	if stats.Played != 3 {
		t.Errorf("Stats().Played = %d, want 3", stats.Played)
	}
	if stats.Accepted != 2 || stats.Rejected != 0 {
		t.Errorf("Stats() admissions = %d/%d, want 2/0", stats.Accepted, stats.Rejected)
	}
}

func TestConcurrentProducers(t *testing.T) {
	// Several transports enqueue at once while the sequencer drains.
	// Admissions are serialized inside the driver: every accepted sample
	// must come back out, none lost to a torn tail publication.
	const producers = 4
	const perProducer = 500

	hw := &fakeHardware{}
	d := New(hw, 16)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			data := payload(Sample{Freq: uint16(100 + p), Duration: 0})
			for accepted := 0; accepted < perProducer; {
				err := d.Enqueue(data)
				switch {
				case err == nil:
					accepted++
				case errors.Is(err, ErrInsufficientCapacity):
					// queue full, the sequencer will catch up
				default:
					t.Errorf("producer %d: Enqueue = %v", p, err)
					return
				}
			}
		}(p)
	}

	producersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(producersDone)
	}()

	// Zero-duration samples make every tick consume one sample, so the
	// frequency observed after a tick identifies its producer.
	counts := make(map[uint16]int)
	deadline := time.After(30 * time.Second)
	for d.Stats().Played < producers*perProducer {
		select {
		case <-deadline:
			t.Fatalf("timed out, played %d of %d", d.Stats().Played, producers*perProducer)
		default:
		}

		d.Tick()
		if freq, sounding := d.Current(); sounding {
			counts[freq]++
		}
	}
	<-producersDone

	for p := 0; p < producers; p++ {
		freq := uint16(100 + p)
		if counts[freq] != perProducer {
			t.Errorf("producer %d: %d samples came through, want %d", p, counts[freq], perProducer)
		}
	}
	if got := d.Stats().Accepted; got != producers*perProducer {
		t.Errorf("Stats().Accepted = %d, want %d", got, producers*perProducer)
	}
}

func TestRearmIsIdempotent(t *testing.T) {
	hw := &fakeHardware{}
	d := New(hw, 0)

	for i := 0; i < 3; i++ {
		if err := d.Enqueue(payload(Sample{Freq: 440, Duration: 0})); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}
	// Zero-duration samples re-arm on every tick.
	d.Tick()
	d.Tick()
	d.Tick()

	if hw.arms != 3 {
		t.Errorf("arms = %d, want 3", hw.arms)
	}
	if want := 1136 * time.Microsecond; hw.half != want {
		t.Errorf("half period = %v, want %v", hw.half, want)
	}
}
