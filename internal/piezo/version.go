package piezo

// versionTones are the per-digit tones of the boot version tune, indexed by
// base-4 digit position, least significant first. A descending C arpeggio.
var versionTones = [4]uint16{261, 196, 164, 130}

// VersionTune encodes a firmware revision as a playable payload. The
// revision is read in base 4, most significant digit first; each digit's
// tone beeps digit-many times, 150ms a beep with a 15ms rest after each.
// Different tones per digit position keep the count short: with a single
// tone, revision 255 would need 255 beeps instead of at most 12.
//
// This is not version detection, USB has that. It lets someone confirm a
// deployed board is at the expected revision without plugging anything in.
func VersionTune(rev uint8) []byte {
	buf := make([]byte, 0, 24*SampleSize)
	for digit := 3; digit >= 0; digit-- {
		count := int(rev>>(2*digit)) & 0x3
		freq := versionTones[digit]

		for j := 0; j < count; j++ {
			buf = AppendSample(buf, Sample{Freq: freq, Duration: 150})
			buf = AppendSample(buf, Sample{Freq: 0, Duration: 15})
		}
	}

	return buf
}
