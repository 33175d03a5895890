package midiout

import (
	"math"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/playtone-go/internal/play"
)

type Config struct {
	Channel  uint8
	Velocity uint8
}

func DefaultConfig() Config {
	return Config{Channel: 0, Velocity: 100}
}

// Sink replays tone events as note-on/note-off pairs against an injected
// MIDI sender (anything accepting gomidi messages: a hardware out port, a
// file writer, a test recorder).
type Sink struct {
	send  func(gomidi.Message) error
	cfg   Config
	sleep func(time.Duration) // swapped out in tests
}

func New(send func(gomidi.Message) error, cfg Config) *Sink {
	return &Sink{send: send, cfg: cfg, sleep: time.Sleep}
}

// Play sends each event in order, holding the note for its gap. Rests are
// silent gaps with no messages. Play blocks for the total duration of the
// events; it stops at the first send error.
func (s *Sink) Play(events []play.ToneEvent) error {
	for _, ev := range events {
		if ev.FrequencyHz <= 0 {
			s.sleep(time.Duration(ev.GapMS) * time.Millisecond)
			continue
		}
		key := Key(ev.FrequencyHz)
		if err := s.send(gomidi.NoteOn(s.cfg.Channel, key, s.cfg.Velocity)); err != nil {
			return err
		}
		s.sleep(time.Duration(ev.GapMS) * time.Millisecond)
		if err := s.send(gomidi.NoteOff(s.cfg.Channel, key)); err != nil {
			return err
		}
	}
	return nil
}

// Key maps a frequency to the nearest MIDI key (A440 = 69), clamped to the
// 0-127 key range.
func Key(freqHz int) uint8 {
	if freqHz <= 0 {
		return 0
	}
	key := math.Round(69 + 12*math.Log2(float64(freqHz)/440.0))
	if key < 0 {
		key = 0
	}
	if key > 127 {
		key = 127
	}
	return uint8(key)
}
