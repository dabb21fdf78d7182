package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
	"code.sztanpet.net/zvpsz/piezo-player/internal/storage"
	"code.sztanpet.net/zvpsz/piezo-player/internal/tty"
	"code.sztanpet.net/zvpsz/piezo-player/internal/tune"
)

// handleBotCommands feeds channel messages into the command handler.
// The bot replies with the rejection reason when an admission fails; the
// driver never retries on its own.
func (a *app) handleBotCommands() {
	if a.bot == nil {
		return
	}

	err := a.bot.HandleUpdates(func(msg string) {
		if reply := a.handleCommand(msg); reply != "" {
			if err := a.bot.Send(reply, true); err != nil {
				logger.Warningf("sending reply failed: %v", err)
			}
		}
	}, true)
	if err != nil {
		logger.Errorf("bot updates failed: %v", err)
	}
}

func (a *app) handleCommand(msg string) string {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return ""
	}

	switch strings.ToLower(fields[0]) {
	case "play":
		return a.cmdPlay(strings.Join(fields[1:], " "))
	case "tone":
		return a.cmdTone(fields[1:])
	case "version":
		if err := a.driver.Enqueue(piezo.VersionTune(a.cfg.FirmwareVersion)); err != nil {
			return fmt.Sprintf("rejected: %v", err)
		}
		return fmt.Sprintf("beeping out revision %d", a.cfg.FirmwareVersion)
	default:
		return ""
	}
}

func (a *app) cmdPlay(notes string) string {
	data, err := tune.Payload(notes, a.cfg.NoteDuration)
	if err != nil {
		return err.Error()
	}

	if err := a.driver.Enqueue(data); err != nil {
		return fmt.Sprintf("rejected: %v (%d slots free)", err, a.driver.Free())
	}

	a.recordTune("telegram", notes, len(data)/piezo.SampleSize)
	return ""
}

// cmdTone queues one raw (frequency, duration) sample, no note names
// involved. Frequencies above the driver's clamp are admitted and clamped
// silently, same as any other producer.
func (a *app) cmdTone(args []string) string {
	if len(args) != 2 {
		return "usage: tone <freq-hz> <duration-ms>"
	}

	freq, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return "bad frequency: " + args[0]
	}
	durr, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return "bad duration: " + args[1]
	}

	data := piezo.AppendSample(nil, piezo.Sample{Freq: uint16(freq), Duration: uint16(durr)})
	if err := a.driver.Enqueue(data); err != nil {
		return fmt.Sprintf("rejected: %v", err)
	}

	a.recordTune("telegram", strings.Join(args, " "), 1)
	return ""
}

// inputLoop is the local keyboard jukebox: keys a-g play one note at the
// configured octave, space queues a rest, ctrl+c and ctrl+d exit the
// daemon.
func (a *app) inputLoop() {
	in, err := tty.Open(a.ctx)
	if err != nil {
		logger.Debugf("tty open error, no local input: %v", err)
		return
	}
	defer in.RestoreTermMode()

	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		r, _, err := in.ReadRune()
		if err != nil {
			logger.Debugf("read rune error: %v", err)
			continue
		}

		// provide a way to exit the app directly from the keyboard;
		// raw mode turns ISIG off, so ctrl+c arrives here as a rune
		if r == tty.KeyEndTransmission || r == tty.KeyInterrupt {
			logger.Debugf("%q pressed, exiting", r)
			a.exit()
			return
		}

		a.handleKey(r)
	}
}

func (a *app) handleKey(r rune) {
	notes, ok := tune.Note(r, a.cfg.Octave)
	if !ok {
		return
	}

	data, err := tune.Payload(notes, a.cfg.NoteDuration)
	if err != nil {
		logger.Debugf("key %q does not parse: %v", r, err)
		return
	}

	if err := a.driver.Enqueue(data); err != nil {
		// backpressure is the player's problem, the queue stays as is
		logger.Debugf("key %q rejected: %v", r, err)
		return
	}

	a.recordTune("tty", notes, len(data)/piezo.SampleSize)
}

func (a *app) recordTune(source, notes string, samples int) {
	t := storage.Tune{
		Source:    source,
		Notes:     notes,
		Samples:   samples,
		CreatedAt: time.Now(),
	}
	logger.Tracef("recording tune: %#v", t)
	a.storage.Insert(t)
}
