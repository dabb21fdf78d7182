//go:build !amd64

// status implements monitoring of system status:
// reports the tone driver's counters so a silent piezo can be told apart
// from a dead daemon, and checks for new dmesg output.
// dmesg output is sent via telegram as an attachment.
package status

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
	"code.sztanpet.net/zvpsz/piezo-player/internal/telegram"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("main.status")

type Status struct {
	ctx    context.Context
	bot    *telegram.Bot
	driver *piezo.Driver

	last piezo.Stats
}

func New(ctx context.Context, bot *telegram.Bot, driver *piezo.Driver) *Status {
	return &Status{
		ctx:    ctx,
		bot:    bot,
		driver: driver,
	}
}

func (s *Status) Check() {
	if s.bot == nil {
		return
	}
	s.driverStats()
	s.dmesg()
}

// driverStats sends the counters accumulated since the previous check.
// A tick delta far off the expected 1kHz means the sequencer loop is being
// starved.
func (s *Status) driverStats() {
	cur := s.driver.Stats()
	msg := fmt.Sprintf(
		"piezo: %v ticks, %v samples played, %v/%v admissions accepted (since last check: %v ticks)",
		cur.Ticks, cur.Played,
		cur.Accepted, cur.Accepted+cur.Rejected,
		cur.Ticks-s.last.Ticks,
	)
	s.last = cur

	if err := s.bot.Send(msg, true); err != nil {
		logger.Warningf("sending driver stats failed: %v", err)
	}
}

func (s *Status) dmesg() {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	// -c clears the ring buffer so only new output shows up next time
	cmd := exec.CommandContext(ctx, "dmesg", "-e", "-c")
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Warningf("dmesg -e -c failed: %v", err)
		return
	}

	if len(out) == 0 {
		return
	}

	msg := time.Now().Format("2006-01-02 15:04:05") + " - dmesg output"
	err = s.bot.SendFile(bytes.NewBuffer(out), msg, true)
	if err != nil {
		logger.Warningf("sending file failed: %v", err)
	}
}
