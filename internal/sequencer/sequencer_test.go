package sequencer

import (
	"testing"

	"github.com/cbegin/playtone-go/internal/play"
)

// fakeEngine records tone transitions with the frame at which they happened.
type fakeEngine struct {
	frame    int
	gate     bool
	toneOns  []int // frequencies, in order
	onFrames []int // frame index of each ToneOn
}

func (f *fakeEngine) ToneOn(freqHz int) {
	f.toneOns = append(f.toneOns, freqHz)
	f.onFrames = append(f.onFrames, f.frame)
	f.gate = freqHz > 0
}

func (f *fakeEngine) ToneOff()              { f.gate = false }
func (f *fakeEngine) SetMasterGain(float64) {}
func (f *fakeEngine) Active() bool          { return f.gate }

func (f *fakeEngine) RenderFrame() (float32, float32) {
	f.frame++
	if f.gate {
		return 0.5, 0.5
	}
	return 0, 0
}

func process(s *Sequencer, frames int) {
	buf := make([]float32, frames*2)
	s.Process(buf)
}

func TestSequencerHoldsEachEventForItsGap(t *testing.T) {
	events := []play.ToneEvent{
		{FrequencyHz: 440, GapMS: 100},
		{FrequencyHz: 0, GapMS: 50},
		{FrequencyHz: 262, GapMS: 100},
	}
	engine := &fakeEngine{}
	seq := New(events, engine, 1000) // 1 kHz: one frame per millisecond
	process(seq, 300)

	wantFreqs := []int{440, 0, 262}
	wantFrames := []int{0, 100, 150}
	if len(engine.toneOns) != len(wantFreqs) {
		t.Fatalf("expected %d tone transitions, got %v", len(wantFreqs), engine.toneOns)
	}
	for i := range wantFreqs {
		if engine.toneOns[i] != wantFreqs[i] {
			t.Fatalf("transition %d: expected %d Hz, got %d", i, wantFreqs[i], engine.toneOns[i])
		}
		if engine.onFrames[i] != wantFrames[i] {
			t.Fatalf("transition %d: expected frame %d, got %d", i, wantFrames[i], engine.onFrames[i])
		}
	}
}

func TestSequencerFiresPlaybackEnded(t *testing.T) {
	events := []play.ToneEvent{{FrequencyHz: 440, GapMS: 10}}
	engine := &fakeEngine{}
	var kinds []EventKind
	seq := NewWithOptions(events, engine, 1000, Options{
		OnEvent: func(kind EventKind) { kinds = append(kinds, kind) },
	})
	process(seq, 64)

	if !seq.Finished() {
		t.Fatalf("expected sequencer to finish")
	}
	if len(kinds) != 1 || kinds[0] != EventPlaybackEnded {
		t.Fatalf("expected single EventPlaybackEnded, got %v", kinds)
	}
	if engine.gate {
		t.Fatalf("expected tone gated off at end of playback")
	}
}

func TestSequencerEndedFiresOnlyOnce(t *testing.T) {
	events := []play.ToneEvent{{FrequencyHz: 440, GapMS: 5}}
	engine := &fakeEngine{}
	fired := 0
	seq := NewWithOptions(events, engine, 1000, Options{
		OnEvent: func(EventKind) { fired++ },
	})
	process(seq, 32)
	process(seq, 32)
	if fired != 1 {
		t.Fatalf("expected one lifecycle event, got %d", fired)
	}
}

func TestSequencerLoopRestartsAndSignals(t *testing.T) {
	events := []play.ToneEvent{
		{FrequencyHz: 440, GapMS: 10},
		{FrequencyHz: 262, GapMS: 10},
	}
	engine := &fakeEngine{}
	loops := 0
	seq := NewWithOptions(events, engine, 1000, Options{
		Loop: true,
		OnEvent: func(kind EventKind) {
			if kind == EventLoopCompleted {
				loops++
			}
		},
	})
	process(seq, 50)

	if seq.Finished() {
		t.Fatalf("looping playback must not finish")
	}
	if loops < 2 {
		t.Fatalf("expected at least 2 completed loops over 50ms, got %d", loops)
	}
	if len(engine.toneOns) < 5 {
		t.Fatalf("expected events to replay on loop, got %v", engine.toneOns)
	}
	if engine.toneOns[2] != 440 {
		t.Fatalf("expected loop to restart from the first event, got %v", engine.toneOns)
	}
}

func TestSequencerEmptyScoreFinishesImmediately(t *testing.T) {
	engine := &fakeEngine{}
	seq := New(nil, engine, 48000)
	process(seq, 8)
	if !seq.Finished() {
		t.Fatalf("expected empty score to finish")
	}
}
