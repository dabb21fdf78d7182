package piezo

import "testing"

func decodeAll(t *testing.T, data []byte) []Sample {
	t.Helper()
	if len(data)%SampleSize != 0 {
		t.Fatalf("payload size %d not a multiple of %d", len(data), SampleSize)
	}
	samples := make([]Sample, 0, len(data)/SampleSize)
	for i := 0; i < len(data); i += SampleSize {
		samples = append(samples, decodeSample(data[i:]))
	}
	return samples
}

func TestVersionTuneZero(t *testing.T) {
	if data := VersionTune(0); len(data) != 0 {
		t.Errorf("VersionTune(0) = %d bytes, want none", len(data))
	}
}

func TestVersionTuneMax(t *testing.T) {
	// Revision 255 is 3333 in base 4: three beeps per digit position,
	// most significant first, each followed by a rest.
	samples := decodeAll(t, VersionTune(255))
	if len(samples) != 24 {
		t.Fatalf("sample count = %d, want 24", len(samples))
	}

	wantOrder := []uint16{130, 164, 196, 261}
	for d, freq := range wantOrder {
		for j := 0; j < 3; j++ {
			beep := samples[(d*3+j)*2]
			rest := samples[(d*3+j)*2+1]
			if beep.Freq != freq || beep.Duration != 150 {
				t.Errorf("digit %d beep %d = %v, want {%d 150}", d, j, beep, freq)
			}
			if rest.Freq != 0 || rest.Duration != 15 {
				t.Errorf("digit %d rest %d = %v, want {0 15}", d, j, rest)
			}
		}
	}
}

func TestVersionTuneDigits(t *testing.T) {
	// 0x1B is 0123 in base 4, most significant digit first.
	samples := decodeAll(t, VersionTune(0x1b))
	wantBeeps := []uint16{164, 196, 196, 261, 261, 261}
	if len(samples) != 2*len(wantBeeps) {
		t.Fatalf("sample count = %d, want %d", len(samples), 2*len(wantBeeps))
	}
	for i, freq := range wantBeeps {
		if got := samples[i*2].Freq; got != freq {
			t.Errorf("beep %d = %dHz, want %dHz", i, got, freq)
		}
	}
}

func TestVersionTuneFitsQueue(t *testing.T) {
	// The longest possible tune must be admissible into a fresh
	// default-size queue in one payload.
	d := New(&fakeHardware{}, DefaultQueueLen)
	if err := d.Enqueue(VersionTune(255)); err != nil {
		t.Fatalf("Enqueue(VersionTune(255)) = %v", err)
	}
}
