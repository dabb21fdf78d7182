package tune

import (
	"testing"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		name string
		want uint16
	}{
		{name: "a4", want: 440},
		{name: "A4", want: 440},
		{name: "a", want: 440}, // octave defaults to 4
		{name: "c4", want: 262},
		{name: "b4", want: 494},
		{name: "a5", want: 880},
		{name: "a3", want: 220},
		{name: "c0", want: 16},
	}

	for _, tt := range tests {
		got, err := Frequency(tt.name)
		if err != nil {
			t.Errorf("Frequency(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Frequency(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFrequencyRejects(t *testing.T) {
	for _, name := range []string{"", "h4", "c#4", "cx", "c-1", "c10"} {
		if got, err := Frequency(name); err == nil {
			t.Errorf("Frequency(%q) = %d, want error", name, got)
		}
	}
}

func TestPayload(t *testing.T) {
	data, err := Payload("a4 - c5", 100)
	if err != nil {
		t.Fatalf("Payload error: %v", err)
	}
	// Three notes, each with a trailing rest.
	if len(data) != 6*piezo.SampleSize {
		t.Fatalf("payload size = %d, want %d", len(data), 6*piezo.SampleSize)
	}

	d := piezo.New(nopHardware{}, 16)
	if err := d.Enqueue(data); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if got := d.Len(); got != 6 {
		t.Errorf("queued samples = %d, want 6", got)
	}

	// The rest in the middle is a zero-frequency sample of the note
	// duration: drive the sequencer past the first note and its gap.
	for i := 0; i < 1+100+15+1; i++ {
		d.Tick()
	}
	if freq, sounding := d.Current(); !sounding || freq != 0 {
		t.Errorf("during rest: Current() = %d, %v, want 0, true", freq, sounding)
	}
}

func TestPayloadEmpty(t *testing.T) {
	data, err := Payload("   ", 100)
	if err != nil {
		t.Fatalf("Payload error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("payload size = %d, want 0", len(data))
	}
}

func TestPayloadDefaultDuration(t *testing.T) {
	data, err := Payload("a4", 0)
	if err != nil {
		t.Fatalf("Payload error: %v", err)
	}
	d := piezo.New(nopHardware{}, 8)
	if err := d.Enqueue(data); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	d.Tick()
	for i := 0; i < DefaultNoteDuration; i++ {
		d.Tick()
		if freq, _ := d.Current(); freq != 440 {
			t.Fatalf("tick %d: Current() = %d, want 440", i, freq)
		}
	}
}

func TestNote(t *testing.T) {
	tests := []struct {
		r      rune
		octave uint8
		want   string
		ok     bool
	}{
		{r: 'a', octave: 4, want: "a4", ok: true},
		{r: 'G', octave: 4, want: "g4", ok: true},
		{r: 'c', octave: 6, want: "c6", ok: true},
		{r: ' ', octave: 4, want: "-", ok: true},
		{r: 'h', octave: 4, want: "", ok: false},
		{r: '1', octave: 4, want: "", ok: false},
		{r: '\x04', octave: 4, want: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := Note(tt.r, tt.octave)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Note(%q, %d) = %q, %v, want %q, %v", tt.r, tt.octave, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNoteOctaveRoundTrip(t *testing.T) {
	// Whatever Note produces must parse; the jukebox octave comes from
	// config, so cover the whole configurable range.
	for octave := uint8(0); octave <= 9; octave++ {
		name, ok := Note('a', octave)
		if !ok {
			t.Fatalf("Note('a', %d) not ok", octave)
		}
		if _, err := Frequency(name); err != nil {
			t.Errorf("Frequency(%q) error: %v", name, err)
		}
	}
}

func TestScale(t *testing.T) {
	d := piezo.New(nopHardware{}, piezo.DefaultQueueLen)
	if err := d.Enqueue(Scale()); err != nil {
		t.Fatalf("Enqueue(Scale()) = %v", err)
	}
	if got := d.Len(); got != 16 {
		t.Errorf("queued samples = %d, want 16", got)
	}
}

type nopHardware struct{}

func (nopHardware) Arm(_ time.Duration) {}
func (nopHardware) Disarm()             {}
