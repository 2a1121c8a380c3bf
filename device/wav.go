package device

import (
	"fmt"
	"os"

	"github.com/youpy/go-wav"

	"github.com/tempograph/microloop/timing"
)

// DumpWAV writes a stereo 16-bit PCM WAV file containing left and right,
// which must be equal length. Used by the debug console's "w" command to
// snapshot a STUTTER or FREEZE capture buffer to disk for offline
// inspection — never called from the audio path.
func DumpWAV(path string, left, right []int16) error {
	if len(left) != len(right) {
		return fmt.Errorf("device: left/right length mismatch: %d != %d", len(left), len(right))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	numSamples := uint32(len(left))
	w := wav.NewWriter(f, numSamples, 2, uint32(timing.SampleRate), 16)
	samples := make([]wav.Sample, len(left))
	for i := range left {
		samples[i].Values[0] = int(left[i])
		samples[i].Values[1] = int(right[i])
	}
	return w.WriteSamples(samples)
}
