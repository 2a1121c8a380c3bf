// Package device implements the concrete adapters for the hardware
// collaborators a real pedal would carry but this environment can't:
// the audio codec, the OLED framebuffer, the GPIO button/encoder
// inputs, the external clock parser, and the serial debug console. Each
// collaborator is a narrow Go interface here, backed by one concrete
// terminal- or portaudio-based implementation wired up in main.go.
package device

import (
	"math"

	"github.com/gordonklaus/portaudio"

	"github.com/tempograph/microloop/effects"
)

// AudioIO opens a duplex stereo portaudio stream and drives an
// effects.Chain once per callback, converting between portaudio's
// []float32 and the core's [2][]int16 wire format at the boundary —
// the only place in the module that conversion happens.
type AudioIO struct {
	stream *portaudio.Stream
	chain  *effects.Chain

	in  effects.Block
	out effects.Block
}

// NewAudioIO opens the default portaudio duplex stream at the chain's
// configured sample rate and block size and returns an AudioIO ready to
// Start.
func NewAudioIO(chain *effects.Chain, sampleRate float64, blockSize int) (*AudioIO, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	a := &AudioIO{
		chain: chain,
		in:    effects.Block{make([]int16, blockSize), make([]int16, blockSize)},
		out:   effects.Block{make([]int16, blockSize), make([]int16, blockSize)},
	}
	stream, err := portaudio.OpenDefaultStream(2, 2, sampleRate, blockSize, a.process)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	a.stream = stream
	return a, nil
}

// Start begins streaming.
func (a *AudioIO) Start() error { return a.stream.Start() }

// Stop closes the stream and releases the portaudio session.
func (a *AudioIO) Stop() error {
	if err := a.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}

// process is the audio-context callback: convert float32 input to int16,
// run the effects chain, convert back. samples is non-interleaved, one
// []float32 per channel.
func (a *AudioIO) process(in, out [][]float32) {
	n := len(in[0])
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < n; i++ {
			a.in[ch][i] = float32ToInt16(in[ch][i])
		}
	}

	a.chain.Process(a.in, a.out)

	for ch := 0; ch < 2; ch++ {
		for i := 0; i < n; i++ {
			out[ch][i] = int16ToFloat32(a.out[ch][i])
		}
	}
}

func float32ToInt16(v float32) int16 {
	scaled := math.Round(float64(v) * 32767.0)
	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}

func int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}
