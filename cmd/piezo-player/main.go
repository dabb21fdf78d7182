package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/config"
	"code.sztanpet.net/zvpsz/piezo-player/internal/display"
	"code.sztanpet.net/zvpsz/piezo-player/internal/gpio"
	"code.sztanpet.net/zvpsz/piezo-player/internal/logwriter"
	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
	"code.sztanpet.net/zvpsz/piezo-player/internal/status"
	"code.sztanpet.net/zvpsz/piezo-player/internal/storage"
	"code.sztanpet.net/zvpsz/piezo-player/internal/telegram"
	"github.com/juju/loggo"
	"golang.org/x/sync/errgroup"
)

type app struct {
	ctx     context.Context
	exit    context.CancelFunc
	cfg     *config.Config
	screen  *display.Screen
	status  *status.Status
	storage *storage.Storage
	bot     *telegram.Bot

	toggler *gpio.Toggler
	driver  *piezo.Driver
}

var logger = loggo.GetLogger("piezo-player")
var statusDurr = 5 * time.Minute

func main() {
	cfg := config.Get()
	ctx, exit := context.WithCancel(context.Background())
	a := &app{
		ctx:  ctx,
		exit: exit,
		cfg:  cfg,
	}
	// logging sends messages to telegram, so it depends on it
	a.setupTelegram()
	a.setupLogging()

	a.handleSignals()

	// depends on statePath
	a.setupStorage()

	// no deps
	a.setupScreen()
	a.setupPiezo()

	a.status = status.New(a.ctx, a.bot, a.driver)

	// we got here successfully, beep out the firmware revision
	if err := a.driver.Enqueue(piezo.VersionTune(cfg.FirmwareVersion)); err != nil {
		logger.Warningf("version tune rejected: %v", err)
	}

	g, gctx := errgroup.WithContext(a.ctx)
	g.Go(func() error { return a.tickLoop(gctx) })
	g.Go(func() error { return a.screenLoop(gctx) })
	g.Go(func() error { return a.statusLoop(gctx) })
	go a.screen.HandleScreenSaver()
	go a.inputLoop()
	go a.handleBotCommands()

	// canceling the context is the normal way to exit
	if err := g.Wait(); err != nil {
		logger.Errorf("exiting: %v", err)
	}
	a.toggler.Disarm()
	time.Sleep(250 * time.Millisecond)
	os.Exit(0)
}

func (a *app) handleSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c)
	go func(c chan os.Signal) {
		s := <-c
		// exit unconditionally on any signal
		logger.Warningf("Got signal: %s, exiting cleanly", s)
		a.exit()
	}(c)
}

func (a *app) setupLogging() {
	err := logwriter.Setup(a.bot, a.cfg)
	if err != nil {
		panic("logwriter setup failed, impossible")
	}
}

func (a *app) setupTelegram() {
	bot, err := telegram.New(a.ctx, a.cfg)
	if err != nil {
		return
	}

	a.bot = bot
}

func (a *app) setupStorage() {
	storage, err := storage.New(a.ctx, a.cfg)
	if err != nil {
		logger.Criticalf("failed to initialize storage: %v", err)
		os.Exit(1)
	}

	a.storage = storage
}

func (a *app) setupScreen() {
	screen, err := display.NewScreen(a.ctx)
	if err != nil {
		// screen handles its own logging, just exit
		os.Exit(1)
	}
	a.screen = screen

	a.screen.WriteTitle("PIEZO")
	a.screen.WriteHelp("a-g notes, ctrl+d quit")
}

func (a *app) setupPiezo() {
	toggler, err := gpio.NewToggler(a.cfg.PiezoPin)
	if err != nil {
		logger.Criticalf("failed to configure piezo pin: %v", err)
		os.Exit(1)
	}

	a.toggler = toggler
	a.driver = piezo.New(toggler, piezo.DefaultQueueLen)
}

// tickLoop drives the sequencer at its 1kHz cadence. The driver does not
// compensate jitter; a steady ticker is as good as it gets off-interrupt.
func (a *app) tickLoop(ctx context.Context) error {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			a.driver.Tick()
		}
	}
}

func (a *app) screenLoop(ctx context.Context) error {
	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			freq, sounding := a.driver.Current()
			switch {
			case !sounding:
				a.screen.WriteLine(1, "idle")
			case freq == 0:
				a.screen.WriteLine(1, "rest")
			default:
				a.screen.WriteLine(1, fmt.Sprintf("%d Hz", freq))
			}
			a.screen.WriteLine(2, fmt.Sprintf("queued: %d", a.driver.Len()))
		}
	}
}

func (a *app) statusLoop(ctx context.Context) error {
	t := time.NewTicker(statusDurr)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			a.status.Check()
		}
	}
}
