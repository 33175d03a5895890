package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source produces interleaved stereo float32 frames.
type Source interface {
	Process(dst []float32)
}

// EndReporter is a Source that can signal when it has nothing further to
// produce. Once Finished returns true the stream ends with io.EOF.
type EndReporter interface {
	Source
	Finished() bool
}

// streamReader bridges a Source to the little-endian float32 byte stream the
// ebiten audio player consumes.
type streamReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
}

func newStreamReader(source Source) *streamReader {
	return &streamReader{source: source}
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8 // 2 channels x 4 bytes
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	if er, ok := r.source.(EndReporter); ok && er.Finished() {
		return frames * 8, io.EOF
	}
	return frames * 8, nil
}

func (r *streamReader) Close() error { return nil }

// The ebiten audio context is process-wide and can only be created once at a
// single sample rate.
var (
	contextOnce sync.Once
	context     *ebitaudio.Context
	contextRate int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		context = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// Player streams a Source to the audio device.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

func NewPlayer(sampleRate int, source Source) (*Player, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := newStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()           { p.player.Play() }
func (p *Player) Pause()          { p.player.Pause() }
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Position returns the playback position the listener actually hears.
func (p *Player) Position() time.Duration { return p.player.Position() }

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
