package config

import (
	"bytes"
	"os"
	"strconv"

	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("main.config")

type Config struct {
	StatePath         string
	DatabaseDSN       string
	TelegramToken     string
	TelegramChannelID int64
	MachineID         string

	// PiezoPin is the sysfs number of the output line the piezo sits on.
	PiezoPin string
	// FirmwareVersion is beeped out at boot, see piezo.VersionTune.
	FirmwareVersion uint8
	// NoteDuration is the per-note length for played tunes, milliseconds.
	NoteDuration uint16
	// Octave is the octave the keyboard jukebox plays at.
	Octave uint8
}

func Get() *Config {
	StatePath := os.Getenv("STATE_PATH")
	if StatePath == "" {
		logger.Criticalf("Empty STATE_PATH env var!")
		os.Exit(1)
	}

	DatabaseDSN := os.Getenv("DATABASE_DSN")
	if DatabaseDSN == "" {
		logger.Criticalf("Empty DATABASE_DSN env var!")
		os.Exit(1)
	}

	TelegramToken := os.Getenv("TELEGRAM_TOKEN")
	if TelegramToken == "" {
		logger.Criticalf("Empty TELEGRAM_TOKEN env var!")
		os.Exit(1)
	}

	cid := os.Getenv("TELEGRAM_CHANNELID")
	if cid == "" {
		logger.Criticalf("Empty TELEGRAM_CHANNELID env var!")
		os.Exit(1)
	}

	TelegramChannelID, err := strconv.ParseInt(cid, 10, 64)
	if err != nil {
		logger.Criticalf("Failed parsing TELEGRAM_CHANNELID env var!")
		os.Exit(1)
	}

	pin := os.Getenv("PIEZO_PIN")
	if pin == "" {
		pin = "20"
	}
	if _, err := strconv.ParseUint(pin, 10, 16); err != nil {
		logger.Criticalf("Failed parsing PIEZO_PIN env var!")
		os.Exit(1)
	}

	fwv := os.Getenv("FIRMWARE_VERSION")
	if fwv == "" {
		fwv = "1"
	}

	FirmwareVersion, err := strconv.ParseUint(fwv, 10, 8)
	if err != nil {
		logger.Criticalf("Failed parsing FIRMWARE_VERSION env var!")
		os.Exit(1)
	}

	nd := os.Getenv("NOTE_DURATION")
	if nd == "" {
		nd = "200"
	}

	NoteDuration, err := strconv.ParseUint(nd, 10, 16)
	if err != nil {
		logger.Criticalf("Failed parsing NOTE_DURATION env var!")
		os.Exit(1)
	}

	oct := os.Getenv("OCTAVE")
	if oct == "" {
		oct = "4"
	}

	Octave, err := strconv.ParseUint(oct, 10, 8)
	if err != nil || Octave > 9 {
		logger.Criticalf("Failed parsing OCTAVE env var!")
		os.Exit(1)
	}

	return &Config{
		StatePath:         StatePath,
		DatabaseDSN:       DatabaseDSN,
		TelegramToken:     TelegramToken,
		TelegramChannelID: TelegramChannelID,
		MachineID:         machineID(),
		PiezoPin:          pin,
		FirmwareVersion:   uint8(FirmwareVersion),
		NoteDuration:      uint16(NoteDuration),
		Octave:            uint8(Octave),
	}
}

func machineID() string {
	mid, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		panic("failed reading /etc/machine-id: " + err.Error())
	}

	mid = bytes.TrimSpace(mid)
	if len(mid) != 32 {
		panic("invalid contents of /etc/machine-id: " + string(mid))
	}

	return string(mid)
}
