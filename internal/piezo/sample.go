package piezo

import "encoding/binary"

// Sample is one queued tone command: the frequency to sound and how long to
// hold it. A frequency of zero means silence for the duration.
type Sample struct {
	Freq     uint16 // Hz
	Duration uint16 // milliseconds
}

// SampleSize is the wire size of one encoded sample: two bytes of frequency
// followed by two bytes of duration, native byte order.
const SampleSize = 4

func decodeSample(b []byte) Sample {
	return Sample{
		Freq:     binary.NativeEndian.Uint16(b[0:2]),
		Duration: binary.NativeEndian.Uint16(b[2:4]),
	}
}

// AppendSample appends the wire encoding of s to buf and returns the
// extended buffer. Producers use it to build Enqueue payloads.
func AppendSample(buf []byte, s Sample) []byte {
	buf = binary.NativeEndian.AppendUint16(buf, s.Freq)
	buf = binary.NativeEndian.AppendUint16(buf, s.Duration)
	return buf
}
