package playtone

import (
	"encoding/binary"
	"math"

	intplay "github.com/cbegin/playtone-go/internal/play"
	intseq "github.com/cbegin/playtone-go/internal/sequencer"
	inttone "github.com/cbegin/playtone-go/internal/tonegen"
)

// releaseTailSec pads offline renders so the final tone's release is not
// truncated.
const releaseTailSec = 0.25

// RenderSamples renders tone events to interleaved stereo float32 samples
// with the default square waveform. The buffer is sized from the events'
// total gap plus a short release tail.
func RenderSamples(events []intplay.ToneEvent, sampleRate int) []float32 {
	return RenderSamplesWaveform(events, sampleRate, WaveformSquare)
}

func RenderSamplesWaveform(events []intplay.ToneEvent, sampleRate int, waveform Waveform) []float32 {
	params, err := paramsForWaveform(waveform)
	if err != nil {
		params = inttone.DefaultParams()
	}
	engine := inttone.New(sampleRate, params)
	seq := intseq.New(events, engine, sampleRate)
	frames := renderFrames(events, sampleRate)
	out := make([]float32, frames*2)
	seq.Process(out)
	return out
}

func renderFrames(events []intplay.ToneEvent, sampleRate int) int {
	totalMS := 0
	for _, ev := range events {
		totalMS += ev.GapMS
	}
	return totalMS*sampleRate/1000 + int(releaseTailSec*float64(sampleRate))
}

// EncodeWAVFloat32LE wraps samples in a RIFF/WAVE container using the
// IEEE-float format (3), 32 bits per sample, little endian.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	const headerSize = 44
	dataSize := len(samples) * 4
	out := make([]byte, headerSize+dataSize)

	le := binary.LittleEndian
	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 3) // IEEE float
	le.PutUint16(out[22:], uint16(channels))
	le.PutUint32(out[24:], uint32(sampleRate))
	le.PutUint32(out[28:], uint32(sampleRate*channels*4))
	le.PutUint16(out[32:], uint16(channels*4))
	le.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	le.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		le.PutUint32(out[headerSize+i*4:], math.Float32bits(s))
	}
	return out
}
