//go:build !amd64

// Package display shows playback state on the ssd1306 oled screen.
package display

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/devices/ssd1306"
	"periph.io/x/periph/devices/ssd1306/image1bit"
	"periph.io/x/periph/host"
)

var textFont = inconsolata.Bold8x16

// The ScreenTimeout after which the display is blanked to prevent burn-in.
var ScreenTimeout = 10 * time.Minute

// lineCount defines how many lines of text fit on the screen
const lineCount = 4

type Screen struct {
	ctx context.Context
	dev *ssd1306.Dev

	mu         sync.Mutex
	lines      []string
	lastActive time.Time
}

func NewScreen(ctx context.Context) (*Screen, error) {
	if _, err := host.Init(); err != nil {
		fmt.Printf("no display detected, skipping: %v\n", err)
		return nil, err
	}

	b, err := i2creg.Open("")
	if err != nil {
		fmt.Printf("could not open i2c bus, display disabled: %v\n", err)
		return nil, err
	}

	opts := ssd1306.DefaultOpts
	opts.Rotated = false
	dev, err := ssd1306.NewI2C(b, &opts)
	if err != nil {
		fmt.Printf("could not find ssd1306 screen, display disabled: %v\n", err)
		return nil, err
	}

	return &Screen{
		ctx:        ctx,
		dev:        dev,
		lines:      make([]string, lineCount),
		lastActive: time.Now(),
	}, nil
}

// WriteTitle draws the text into the first line (line #0)
func (s *Screen) WriteTitle(text string) {
	s.WriteLine(0, text)
}

// WriteLine writes the text into the indicated line (usually #1 or #2).
// Unchanged text is skipped so periodic refreshes don't hold off the
// screensaver.
func (s *Screen) WriteLine(line int, text string) {
	s.mu.Lock()
	if s.lines[line] == text {
		s.mu.Unlock()
		return
	}
	s.lines[line] = text
	s.lastActive = time.Now()
	s.mu.Unlock()

	_ = s.draw()
}

// WriteHelp writes help text into the last line (line #3)
func (s *Screen) WriteHelp(text string) {
	s.WriteLine(lineCount-1, text)
}

func (s *Screen) Clear() {
	s.mu.Lock()
	for i := range s.lines {
		s.lines[i] = ""
	}
	s.lastActive = time.Now()
	s.mu.Unlock()

	_ = s.draw()
}

func (s *Screen) draw() error {
	img := image1bit.NewVerticalLSB(s.dev.Bounds())

	s.mu.Lock()
	lines := append([]string(nil), s.lines...)
	s.mu.Unlock()

	for i, text := range lines {
		if text == "" {
			continue
		}
		drawer := font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{image1bit.On},
			Face: textFont,
			Dot:  fixed.P(0, (i+1)*textFont.Height-textFont.Descent),
		}
		drawer.DrawString(text)
	}

	return s.dev.Draw(s.dev.Bounds(), img, image.Point{})
}

// Blank blanks the screen without clearing the line contents.
func (s *Screen) Blank() error {
	img := image1bit.NewVerticalLSB(s.dev.Bounds())
	return s.dev.Draw(s.dev.Bounds(), img, image.Point{})
}

func (s *Screen) shouldBlank() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	blankAfter := s.lastActive.Add(ScreenTimeout)
	return time.Now().After(blankAfter)
}

// HandleScreenSaver blanks the screen when nothing was written for
// ScreenTimeout; a write brings it back.
func (s *Screen) HandleScreenSaver() {
	t := time.NewTicker(1 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			_ = s.Blank()
			return
		case <-t.C:
			if s.shouldBlank() {
				_ = s.Blank()
			} else {
				_ = s.draw()
			}
		}
	}
}
