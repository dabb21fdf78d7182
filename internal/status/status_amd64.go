//go:build amd64

package status

import (
	"context"
	"fmt"

	"code.sztanpet.net/zvpsz/piezo-player/internal/piezo"
	"code.sztanpet.net/zvpsz/piezo-player/internal/telegram"
)

type Status struct {
	bot    *telegram.Bot
	driver *piezo.Driver
}

func New(ctx context.Context, bot *telegram.Bot, driver *piezo.Driver) *Status {
	return &Status{
		bot:    bot,
		driver: driver,
	}
}

func (s *Status) Check() {
	if s.bot == nil {
		return
	}
	st := s.driver.Stats()
	_ = s.bot.Send(fmt.Sprintf("status.Check: %+v", st), true)
}
