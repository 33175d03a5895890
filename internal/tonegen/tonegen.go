package tonegen

import (
	"math"
	"sync/atomic"
)

const twoPi = math.Pi * 2

type Wave int

const (
	WaveSquare Wave = iota
	WavePulse
	WaveTriangle
	WaveSine
)

type Params struct {
	Wave       Wave
	MasterGain float64
	AttackSec  float64 // linear ramp-in, avoids clicks at tone boundaries
	ReleaseSec float64
	PulseDuty  float64
}

func DefaultParams() Params {
	return Params{
		Wave:       WaveSquare,
		MasterGain: 0.25,
		AttackSec:  0.004,
		ReleaseSec: 0.012,
		PulseDuty:  0.25,
	}
}

// Engine renders one tone at a time. ToneOn retunes the single voice; the
// envelope re-attacks so consecutive tones stay audibly separated.
type Engine struct {
	sampleRate  float64
	params      Params
	masterGain  uint64 // float64 bits, atomic
	freq        float64
	phase       float64
	env         float64
	gate        bool
	attackStep  float64
	releaseStep float64
}

func New(sampleRate int, params Params) *Engine {
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		masterGain: math.Float64bits(params.MasterGain),
	}
	e.attackStep = envStep(params.AttackSec, e.sampleRate)
	e.releaseStep = envStep(params.ReleaseSec, e.sampleRate)
	return e
}

func envStep(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 / (seconds * sampleRate)
}

// ToneOn starts (or retunes) the voice at the given frequency. A frequency
// of 0 or below gates the voice off instead.
func (e *Engine) ToneOn(freqHz int) {
	if freqHz <= 0 {
		e.ToneOff()
		return
	}
	e.freq = float64(freqHz)
	e.phase = 0
	e.env = 0
	e.gate = true
}

func (e *Engine) ToneOff() {
	e.gate = false
}

// Active reports whether the voice is still audible, including the release
// tail after ToneOff.
func (e *Engine) Active() bool {
	return e.gate || e.env > 1e-4
}

func (e *Engine) SetMasterGain(gain float64) {
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) MasterGain() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

// RenderFrame produces one stereo frame.
func (e *Engine) RenderFrame() (float32, float32) {
	if !e.Active() {
		return 0, 0
	}
	if e.gate {
		e.env += e.attackStep
		if e.env > 1 {
			e.env = 1
		}
	} else {
		e.env -= e.releaseStep
		if e.env < 0 {
			e.env = 0
			return 0, 0
		}
	}
	sample := e.waveSample() * e.env * e.MasterGain()
	e.phase += e.freq / e.sampleRate
	if e.phase >= 1 {
		e.phase -= math.Floor(e.phase)
	}
	s := float32(sample)
	return s, s
}

func (e *Engine) waveSample() float64 {
	switch e.params.Wave {
	case WavePulse:
		if e.phase < e.params.PulseDuty {
			return 1
		}
		return -1
	case WaveTriangle:
		if e.phase < 0.5 {
			return 4*e.phase - 1
		}
		return 3 - 4*e.phase
	case WaveSine:
		return math.Sin(e.phase * twoPi)
	default: // square
		if e.phase < 0.5 {
			return 1
		}
		return -1
	}
}
