// Package tune converts human-friendly note sequences into tone payloads
// for the piezo driver.
package tune

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
)

// DefaultNoteDuration is how long one note sounds when the caller does not
// say otherwise, in milliseconds.
const DefaultNoteDuration = 200

// restDuration is the silence appended after every note so queued melodies
// read as separate notes instead of one long slur. The sequencer itself
// transitions between samples with no gap; the rest is an explicit sample.
const restDuration = 15

// noteOffsets are semitone offsets of the natural notes within an octave.
var noteOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Frequency returns the equal-temperament frequency of a note name like
// "c4" or "A5", rounded to the nearest hertz. The octave defaults to 4 when
// omitted. Only natural notes A-G are recognised.
func Frequency(name string) (uint16, error) {
	if name == "" {
		return 0, fmt.Errorf("tune: empty note")
	}

	up := strings.ToUpper(name)
	base, ok := noteOffsets[up[0]]
	if !ok {
		return 0, fmt.Errorf("tune: unknown note %q", name)
	}

	octave := 4
	if len(up) > 1 {
		o, err := strconv.Atoi(up[1:])
		if err != nil {
			return 0, fmt.Errorf("tune: bad octave in %q", name)
		}
		octave = o
	}
	if octave < 0 || octave > 9 {
		return 0, fmt.Errorf("tune: octave out of range in %q", name)
	}

	midi := base + (octave+1)*12
	f := 440 * math.Pow(2, float64(midi-69)/12)
	return uint16(f + 0.5), nil
}

// Note maps a key of the keyboard jukebox to a note name at the given
// octave; space maps to a rest. ok is false for keys that carry no note.
func Note(r rune, octave uint8) (name string, ok bool) {
	if r == ' ' {
		return "-", true
	}

	l := unicode.ToLower(r)
	if l < 'a' || l > 'g' {
		return "", false
	}
	return fmt.Sprintf("%c%d", l, octave), true
}

// Payload builds an admission payload from a space-separated list of notes;
// "-" is a rest. Each note sounds for durMS milliseconds and is followed by
// a short rest. An empty list yields an empty payload, which the driver
// admits as a no-op.
func Payload(notes string, durMS uint16) ([]byte, error) {
	if durMS == 0 {
		durMS = DefaultNoteDuration
	}

	fields := strings.Fields(notes)
	buf := make([]byte, 0, 2*piezo.SampleSize*len(fields))
	for _, n := range fields {
		var freq uint16
		if n != "-" {
			f, err := Frequency(n)
			if err != nil {
				return nil, err
			}
			freq = f
		}

		buf = piezo.AppendSample(buf, piezo.Sample{Freq: freq, Duration: durMS})
		buf = piezo.AppendSample(buf, piezo.Sample{Freq: 0, Duration: restDuration})
	}

	return buf, nil
}

// Scale returns one octave of C major, the smoke-test melody.
func Scale() []byte {
	data, err := Payload("c4 d4 e4 f4 g4 a4 b4 c5", 150)
	if err != nil {
		panic("tune: scale does not parse: " + err.Error())
	}
	return data
}
