package main

import (
	"context"
	"fmt"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/display"
)

func main() {
	s, err := display.NewScreen(context.Background())
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	defer s.Blank()

	s.WriteTitle("PIEZO")
	s.WriteLine(1, "440 Hz")
	s.WriteLine(2, "queued: 12")
	s.WriteHelp("a-g notes, ctrl+d quit")

	time.Sleep(5 * time.Second)
}
