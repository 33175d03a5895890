package playtone

import (
	"errors"
	"fmt"
	"sync"

	intaudio "github.com/cbegin/playtone-go/internal/audio"
	intplay "github.com/cbegin/playtone-go/internal/play"
	intseq "github.com/cbegin/playtone-go/internal/sequencer"
	inttone "github.com/cbegin/playtone-go/internal/tonegen"
)

// ParseError reports the first character of a play string that could not be
// interpreted.
type ParseError struct {
	Input  string
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("play: unrecognized character %q at offset %d", e.Input[e.Offset], e.Offset)
}

// PlaybackEvent carries playback lifecycle events from Watch().
type PlaybackEvent struct {
	Kind int // EventLoopCompleted or EventPlaybackEnded
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
)

type Waveform string

const (
	WaveformSquare   Waveform = "square"
	WaveformPulse    Waveform = "pulse"
	WaveformTriangle Waveform = "triangle"
	WaveformSine     Waveform = "sine"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	waveform     Waveform
	loopPlayback bool
	sampleTap    func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{waveform: WaveformSquare}
}

func WithWaveform(waveform Waveform) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.waveform = waveform
	}
}

func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player parses play strings and streams the resulting tones to the audio
// device.
type Player struct {
	mu           sync.Mutex
	parser       *intplay.Parser
	sampleRate   int
	waveform     Waveform
	engine       *inttone.Engine
	audio        *intaudio.Player
	baseGain     float64
	volume       float64
	loopPlayback bool
	sampleTap    func([]float32)
	done         chan struct{}
	eventCh      chan PlaybackEvent
	eventChMu    sync.Mutex
}

// tapWrapper forwards generated buffers to an optional tap while preserving
// the sequencer's end-of-stream signal.
type tapWrapper struct {
	seq *intseq.Sequencer
	tap func([]float32)
}

func (w *tapWrapper) Process(dst []float32) {
	w.seq.Process(dst)
	if w.tap != nil {
		w.tap(dst)
	}
}

func (w *tapWrapper) Finished() bool { return w.seq.Finished() }

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	params, err := paramsForWaveform(cfg.waveform)
	if err != nil {
		return nil, err
	}
	return &Player{
		parser:       intplay.NewParser(intplay.DefaultParserConfig()),
		sampleRate:   sampleRate,
		waveform:     cfg.waveform,
		engine:       inttone.New(sampleRate, params),
		baseGain:     params.MasterGain,
		volume:       1,
		loopPlayback: cfg.loopPlayback,
		sampleTap:    cfg.sampleTap,
	}, nil
}

// Compile parses a play string into tone events without playing them.
func Compile(text string) ([]intplay.ToneEvent, error) {
	events, pos := intplay.NewParser(intplay.DefaultParserConfig()).Collect(text)
	if pos >= 0 {
		return nil, &ParseError{Input: text, Offset: pos}
	}
	return events, nil
}

// PlayString parses text and starts playback. A *ParseError is returned when
// the input is rejected; nothing is played in that case.
func (p *Player) PlayString(text string) error {
	events, pos := p.parser.Collect(text)
	if pos >= 0 {
		return &ParseError{Input: text, Offset: pos}
	}
	return p.Play(events)
}

// Play starts playback of pre-compiled tone events, replacing any playback
// already in progress.
func (p *Player) Play(events []intplay.ToneEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Signal any existing Wait() that the previous playback was replaced.
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})

	// Recreate the engine on every Play so envelope state never leaks
	// between runs.
	params, err := paramsForWaveform(p.waveform)
	if err != nil {
		return err
	}
	engine := inttone.New(p.sampleRate, params)
	engine.SetMasterGain(p.baseGain * p.volume)
	p.engine = engine

	seq := intseq.NewWithOptions(events, engine, p.sampleRate, intseq.Options{
		Loop: p.loopPlayback,
		OnEvent: func(kind intseq.EventKind) {
			p.sendEvent(PlaybackEvent{Kind: int(kind)})
			if kind == intseq.EventPlaybackEnded {
				p.signalDone()
			}
		},
	})

	backend, err := intaudio.NewPlayer(p.sampleRate, &tapWrapper{seq: seq, tap: p.sampleTap})
	if err != nil {
		return err
	}
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.audio = backend
	p.audio.Play()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event.
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current playback ends. With loop playback enabled it
// blocks until Stop; it returns immediately when nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events:
//   - EventLoopCompleted: a loop iteration finished (when looping)
//   - EventPlaybackEnded: playback finished or was stopped
//
// The channel is buffered (cap 8); only the most recent Watch() channel
// receives events. Call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetMasterVolume sets the runtime volume scalar. 1.0 is default; negative
// values clamp to 0.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	p.engine.SetMasterGain(p.baseGain * p.volume)
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func paramsForWaveform(waveform Waveform) (inttone.Params, error) {
	params := inttone.DefaultParams()
	switch waveform {
	case WaveformSquare, "":
		params.Wave = inttone.WaveSquare
	case WaveformPulse:
		params.Wave = inttone.WavePulse
	case WaveformTriangle:
		params.Wave = inttone.WaveTriangle
	case WaveformSine:
		params.Wave = inttone.WaveSine
	default:
		return inttone.Params{}, fmt.Errorf("unknown waveform %q", waveform)
	}
	return params, nil
}
