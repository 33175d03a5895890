package play

// ParseState selects how the scanner interprets the current character.
type ParseState int

const (
	// StateCommand is the default state: note letters, rests, the octave
	// marker, and modifiers attached to a pending note.
	StateCommand ParseState = iota
	// StateOctaveNumber expects exactly one decimal digit following O.
	StateOctaveNumber
)

// Accidental is a half-step pitch modifier on a note letter.
type Accidental int

const (
	AccidentalNone Accidental = iota
	AccidentalSharp
	AccidentalFlat
)

// ToneEvent is the output unit of a parse: a frequency in Hz and the gap the
// tone occupies in milliseconds. FrequencyHz is 0 for a rest.
type ToneEvent struct {
	FrequencyHz int
	GapMS       int
}

// ToneFunc receives one completed tone. It is invoked synchronously on the
// parsing goroutine, strictly in left-to-right order of completed notes.
type ToneFunc func(frequencyHz, gapMS int)

type ParserConfig struct {
	DefaultOctave   int
	DefaultDuration int
	ReferenceHz     float64 // A at octave 1
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		DefaultOctave:   4,
		DefaultDuration: 1,
		ReferenceHz:     55.0,
	}
}
