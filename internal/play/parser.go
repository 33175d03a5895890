package play

import "math"

// halfSteps maps each natural note letter to its half-step offset from the
// reference pitch (A at octave 1).
var halfSteps = map[byte]int{
	'C': -21, 'D': -19, 'E': -17, 'F': -16, 'G': -14, 'A': -12, 'B': -10,
}

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser { return &Parser{cfg: cfg} }

// pending holds the note being assembled between the character that opens it
// and the character (or end of input) that closes it. At most one exists per
// parse, and it lives entirely on the Parse stack.
type pending struct {
	open            bool
	letter          byte // upper-cased A-G or R
	accidental      Accidental
	duration        int
	lengthSpecified bool
}

// Parse scans input one character at a time, invoking onTone for each
// completed note. It returns -1 when the whole input was consumed, otherwise
// the 0-based offset of the first character it could not interpret. Events
// emitted before a rejection are not undone.
func (p *Parser) Parse(input string, onTone ToneFunc) int {
	state := StateCommand
	octave := p.cfg.DefaultOctave
	var note pending

	for pos := 0; pos < len(input); pos++ {
		ch := input[pos]
		switch state {
		case StateCommand:
			switch {
			case isNoteLetter(ch):
				if note.open {
					p.emit(note, octave, onTone)
				}
				note = pending{
					open:     true,
					letter:   upper(ch),
					duration: p.cfg.DefaultDuration,
				}
			case ch == 'o' || ch == 'O':
				if note.open {
					p.emit(note, octave, onTone)
					note = pending{}
				}
				state = StateOctaveNumber
			case note.open && !note.lengthSpecified:
				switch {
				case ch == '#' || ch == '+':
					if note.letter != 'R' {
						note.accidental = AccidentalSharp
					}
				case ch == '-':
					if note.letter != 'R' {
						note.accidental = AccidentalFlat
					}
				case isDigit(ch):
					note.duration = int(ch - '0')
					note.lengthSpecified = true
				default:
					return pos
				}
			case note.open:
				// A second duration digit always closes the note, which caps
				// durations at two digits by construction.
				if !isDigit(ch) {
					return pos
				}
				note.duration = note.duration*10 + int(ch-'0')
				p.emit(note, octave, onTone)
				note = pending{}
			default:
				// Modifier with nothing to attach it to.
				return pos
			}
		case StateOctaveNumber:
			if !isDigit(ch) {
				return pos
			}
			octave = int(ch - '0')
			state = StateCommand
		}
	}
	if note.open {
		p.emit(note, octave, onTone)
	}
	return -1
}

// Collect runs Parse and gathers the emitted events into a slice. The second
// return value follows the Parse contract (-1 or rejection offset).
func (p *Parser) Collect(input string) ([]ToneEvent, int) {
	events := make([]ToneEvent, 0, len(input))
	pos := p.Parse(input, func(freqHz, gapMS int) {
		events = append(events, ToneEvent{FrequencyHz: freqHz, GapMS: gapMS})
	})
	return events, pos
}

// emit resolves the pending note against the current octave and hands it to
// the callback. A duration below 1 suppresses the event entirely; this also
// guards the 1000/duration division.
func (p *Parser) emit(note pending, octave int, onTone ToneFunc) {
	if note.duration < 1 {
		return
	}
	freq := 0
	if note.letter != 'R' {
		freq = p.noteToFreq(note.letter, note.accidental, octave)
	}
	onTone(freq, 1000/note.duration)
}

// noteToFreq converts a validated note letter plus accidental and octave to
// an integer frequency in Hz. The octave scaling below compounds with the
// half-step table's own anchoring at octave 1; that doubling is the
// long-standing external contract and is kept as-is.
func (p *Parser) noteToFreq(letter byte, accidental Accidental, octave int) int {
	steps := halfSteps[letter]
	switch accidental {
	case AccidentalSharp:
		steps++
	case AccidentalFlat:
		steps--
	}
	freq := math.Pow(2, float64(steps)/12.0) * p.cfg.ReferenceHz
	if octave > 1 {
		freq *= math.Pow(2, float64(octave))
	} else if octave < 1 {
		freq /= math.Pow(2, float64(-octave))
	}
	return int(math.Round(freq))
}

func isNoteLetter(ch byte) bool {
	c := upper(ch)
	return (c >= 'A' && c <= 'G') || c == 'R'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func upper(ch byte) byte {
	if ch >= 'a' && ch <= 'z' {
		return ch - ('a' - 'A')
	}
	return ch
}
