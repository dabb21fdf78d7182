package main

import (
	"fmt"
	"os"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/gpio"
	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
	"code.sztanpet.net/zvpsz/piezo-player/internal/tune"
)

// Plays a C major scale in a loop, for checking the piezo wiring without
// the full daemon.
func main() {
	pin := os.Getenv("PIEZO_PIN")
	if pin == "" {
		pin = "20"
	}

	toggler, err := gpio.NewToggler(pin)
	if err != nil {
		fmt.Printf("err: %v\n", err)
		os.Exit(1)
	}
	defer toggler.Disarm()

	d := piezo.New(toggler, piezo.DefaultQueueLen)

	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for range t.C {
		d.Tick()

		if _, sounding := d.Current(); sounding || d.Len() > 0 {
			continue
		}
		time.Sleep(500 * time.Millisecond)
		if err := d.Enqueue(tune.Scale()); err != nil {
			fmt.Printf("enqueue err: %v\n", err)
		}
	}
}
