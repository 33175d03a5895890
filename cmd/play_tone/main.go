package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
	"go.uber.org/zap"

	playtone "github.com/cbegin/playtone-go"
	"github.com/cbegin/playtone-go/internal/midiout"
)

const defaultText = "O4CDEFGAB" // one octave up the C major scale

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		waveName   = flag.String("wave", "square", "waveform: square|pulse|triangle|sine")
		loop       = flag.Bool("loop", false, "loop playback until interrupted")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		textInline = flag.String("text", "", "inline play string (e.g. \"O5CDEC2\")")
		textPath   = flag.String("file", "", "path to a file holding a play string")
		wavPath    = flag.String("wav", "", "render to a WAV file instead of playing")
		midiPort   = flag.String("midi-port", "", "send notes to the named MIDI out port instead of playing")
		listMIDI   = flag.Bool("list-midi", false, "list MIDI out ports and exit")
	)
	flag.Parse()

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	if *listMIDI {
		defer gomidi.CloseDriver()
		for _, port := range gomidi.GetOutPorts() {
			fmt.Println(port.String())
		}
		return
	}

	text, err := resolveInput(*textPath, *textInline)
	if err != nil {
		logger.Fatal("resolve input", zap.Error(err))
	}

	events, err := playtone.Compile(text)
	if err != nil {
		var perr *playtone.ParseError
		if errors.As(err, &perr) {
			logger.Fatal("rejected play string",
				zap.String("text", text),
				zap.Int("offset", perr.Offset),
				zap.String("char", string(text[perr.Offset])))
		}
		logger.Fatal("compile", zap.Error(err))
	}
	logger.Info("compiled play string",
		zap.String("text", text),
		zap.Int("events", len(events)))

	switch {
	case *wavPath != "":
		samples := playtone.RenderSamplesWaveform(events, *sampleRate, playtone.Waveform(*waveName))
		wav := playtone.EncodeWAVFloat32LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*wavPath, wav, 0o644); err != nil {
			logger.Fatal("write wav", zap.String("path", *wavPath), zap.Error(err))
		}
		logger.Info("rendered wav",
			zap.String("path", *wavPath),
			zap.Int("bytes", len(wav)))
	case *midiPort != "":
		defer gomidi.CloseDriver()
		send, err := openOutPort(*midiPort)
		if err != nil {
			logger.Fatal("open midi port", zap.String("port", *midiPort), zap.Error(err))
		}
		sink := midiout.New(send, midiout.DefaultConfig())
		if err := sink.Play(events); err != nil {
			logger.Fatal("midi send", zap.Error(err))
		}
		logger.Info("midi playback completed", zap.String("port", *midiPort))
	default:
		pl, err := playtone.NewPlayer(*sampleRate,
			playtone.WithWaveform(playtone.Waveform(*waveName)),
			playtone.WithLoopPlayback(*loop))
		if err != nil {
			logger.Fatal("new player", zap.Error(err))
		}
		pl.SetMasterVolume(*volume)
		ch := pl.Watch()
		if err := pl.Play(events); err != nil {
			logger.Fatal("play", zap.Error(err))
		}
		for event := range ch {
			switch event.Kind {
			case playtone.EventPlaybackEnded:
				logger.Info("playback completed")
				pl.Wait()
				return
			case playtone.EventLoopCompleted:
				logger.Info("loop completed")
			}
		}
	}
}

func resolveInput(path, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return strings.TrimSpace(inline), nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	return defaultText, nil
}

func openOutPort(name string) (func(gomidi.Message) error, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == name || strings.Contains(port.String(), name) {
			return gomidi.SendTo(port)
		}
	}
	return nil, fmt.Errorf("no MIDI out port matching %q", name)
}
