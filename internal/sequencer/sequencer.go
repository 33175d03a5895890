package sequencer

import "github.com/cbegin/playtone-go/internal/play"

// ToneEngine is the voice the sequencer drives. One tone sounds at a time;
// ToneOn retunes the voice, ToneOff lets it release.
type ToneEngine interface {
	ToneOn(freqHz int)
	ToneOff()
	RenderFrame() (float32, float32)
	SetMasterGain(gain float64)
	Active() bool
}

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

type Options struct {
	Loop    bool
	OnEvent func(EventKind)
}

// Sequencer holds each tone event for its gap's worth of frames, in order.
// Rests (0 Hz) hold silence for their gap.
type Sequencer struct {
	events     []play.ToneEvent
	engine     ToneEngine
	sampleRate int
	opts       Options

	index      int
	framesLeft int
	draining   bool // events exhausted, waiting out the engine's release tail
	finished   bool
}

func New(events []play.ToneEvent, engine ToneEngine, sampleRate int) *Sequencer {
	return NewWithOptions(events, engine, sampleRate, Options{})
}

func NewWithOptions(events []play.ToneEvent, engine ToneEngine, sampleRate int, opts Options) *Sequencer {
	return &Sequencer{
		events:     events,
		engine:     engine,
		sampleRate: sampleRate,
		opts:       opts,
	}
}

// Finished reports whether non-looping playback has fully ended, including
// the engine's release tail.
func (s *Sequencer) Finished() bool { return s.finished }

// Process fills dst with interleaved stereo frames, advancing the event
// cursor as gaps elapse.
func (s *Sequencer) Process(dst []float32) {
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		if s.finished {
			dst[f*2], dst[f*2+1] = 0, 0
			continue
		}
		s.advance()
		l, r := s.engine.RenderFrame()
		dst[f*2], dst[f*2+1] = l, r
		s.framesLeft--
	}
}

func (s *Sequencer) advance() {
	if s.framesLeft > 0 {
		return
	}
	if s.index < len(s.events) {
		ev := s.events[s.index]
		s.index++
		s.engine.ToneOn(ev.FrequencyHz)
		s.framesLeft = s.framesFor(ev.GapMS)
		return
	}
	if !s.draining {
		s.draining = true
		s.engine.ToneOff()
	}
	if s.engine.Active() {
		// Hold one frame at a time until the release tail fades.
		s.framesLeft = 1
		return
	}
	if s.opts.Loop && len(s.events) > 0 {
		s.index = 0
		s.draining = false
		s.fire(EventLoopCompleted)
		s.advance()
		return
	}
	s.finished = true
	s.fire(EventPlaybackEnded)
}

func (s *Sequencer) framesFor(gapMS int) int {
	frames := gapMS * s.sampleRate / 1000
	if frames < 1 {
		frames = 1
	}
	return frames
}

func (s *Sequencer) fire(kind EventKind) {
	if s.opts.OnEvent != nil {
		s.opts.OnEvent(kind)
	}
}
