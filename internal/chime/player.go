// Package chime plays the period bell. Playback is fire-and-forget: the
// tick loop never waits for it and never sees its errors.
package chime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// Player plays the bell once, returning when playback ends or ctx is done.
type Player interface {
	Play(ctx context.Context) error
}

// FilePlayer decodes an mp3 or wav file on every Play and sends it to the
// default output device. The device is opened lazily on first use.
type FilePlayer struct {
	path string

	initOnce sync.Once
	initErr  error
	rate     beep.SampleRate
}

// speakerRate is the output rate the device is opened with. Files at other
// rates are resampled.
const speakerRate = beep.SampleRate(44100)

// NewFilePlayer returns a Player for the audio file at path.
func NewFilePlayer(path string) *FilePlayer {
	return &FilePlayer{path: path, rate: speakerRate}
}

func (p *FilePlayer) Play(ctx context.Context) error {
	streamer, format, err := p.decode()
	if err != nil {
		return err
	}
	defer streamer.Close()

	p.initOnce.Do(func() {
		p.initErr = speaker.Init(p.rate, p.rate.N(100*time.Millisecond))
	})
	if p.initErr != nil {
		return fmt.Errorf("chime: open output device: %w", p.initErr)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != p.rate {
		s = beep.Resample(4, format.SampleRate, p.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func (p *FilePlayer) decode() (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("chime: %w", err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format %q", filepath.Ext(p.path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("chime: decode %s: %w", p.path, err)
	}
	return s, format, nil
}
