package playtone

import (
	"encoding/binary"
	"testing"
)

func TestRenderSamplesSizedFromEventGaps(t *testing.T) {
	events, err := Compile("CDE")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	samples := RenderSamples(events, 48000)
	// 3 x 1000ms of tone plus the 0.25s release tail, stereo.
	wantFrames := 3*48000 + 12000
	if len(samples) != wantFrames*2 {
		t.Fatalf("expected %d samples, got %d", wantFrames*2, len(samples))
	}
	var energy float64
	for _, s := range samples {
		energy += float64(s * s)
	}
	if energy == 0 {
		t.Fatalf("expected audible signal in render")
	}
}

func TestRenderSamplesRestIsSilent(t *testing.T) {
	events, err := Compile("R")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for _, s := range RenderSamples(events, 48000) {
		if s != 0 {
			t.Fatalf("expected silence for a rest, got %v", s)
		}
	}
}

func TestRenderSamplesWaveformsDiffer(t *testing.T) {
	events, err := Compile("A2")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	square := RenderSamplesWaveform(events, 48000, WaveformSquare)
	sine := RenderSamplesWaveform(events, 48000, WaveformSine)
	if len(square) != len(sine) {
		t.Fatalf("waveform should not change render length")
	}
	same := true
	for i := range square {
		if square[i] != sine[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected square and sine renders to differ")
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := make([]float32, 256)
	wav := EncodeWAVFloat32LE(samples, 48000, 2)
	if len(wav) != 44+len(samples)*4 {
		t.Fatalf("unexpected WAV size %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("malformed RIFF header")
	}
	le := binary.LittleEndian
	if le.Uint16(wav[20:]) != 3 {
		t.Fatalf("expected IEEE-float format tag 3, got %d", le.Uint16(wav[20:]))
	}
	if le.Uint16(wav[22:]) != 2 {
		t.Fatalf("expected 2 channels, got %d", le.Uint16(wav[22:]))
	}
	if le.Uint32(wav[24:]) != 48000 {
		t.Fatalf("expected 48000 Hz, got %d", le.Uint32(wav[24:]))
	}
	if le.Uint32(wav[40:]) != uint32(len(samples)*4) {
		t.Fatalf("wrong data chunk size %d", le.Uint32(wav[40:]))
	}
}
