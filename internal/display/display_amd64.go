//go:build amd64

// Package display shows playback state on the ssd1306 oled screen.
// On amd64 there is no screen; lines are only kept in memory so the daemon
// can be developed on a workstation.
package display

import (
	"context"
	"sync"
	"time"
)

// The ScreenTimeout after which the display is blanked to prevent burn-in.
var ScreenTimeout = 10 * time.Minute

// lineCount defines how many lines of text fit on the screen
const lineCount = 4

type Screen struct {
	ctx context.Context

	mu         sync.Mutex
	lines      []string
	lastActive time.Time
}

func NewScreen(ctx context.Context) (*Screen, error) {
	return &Screen{
		ctx:        ctx,
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
	defer s.mu.Unlock()
	if s.lines[line] == text {
		return
	}
	s.lines[line] = text
	s.lastActive = time.Now()
}

// WriteHelp writes help text into the last line (line #3)
func (s *Screen) WriteHelp(text string) {
	s.WriteLine(lineCount-1, text)
}

func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		s.lines[i] = ""
	}
	s.lastActive = time.Now()
}

func (s *Screen) Blank() error { return nil }

func (s *Screen) HandleScreenSaver() {
	<-s.ctx.Done()
}
