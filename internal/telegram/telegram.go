// Package telegram wraps the bot API used for alerting and for receiving
// tune commands from the channel.
package telegram

import (
	"context"
	"io"
	"strings"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"golang.org/x/time/rate"
)

// MaxSendDurr configures the limiter to send at most 1 message per MaxSendDurr
var MaxSendDurr = 500 * time.Millisecond

type Bot struct {
	ctx       context.Context
	channelID int64
	api       *tgbotapi.BotAPI
	limiter   *rate.Limiter
}

func New(ctx context.Context, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	t := &Bot{
		ctx:       ctx,
		channelID: cfg.TelegramChannelID,
		api:       api,
		// limit message spam to once every MaxSendDurr
		limiter: rate.NewLimiter(rate.Every(MaxSendDurr), 1),
	}
	return t, nil
}

// Send sends a message to the channel, optionally sending notifications
// depending on disableNotification, internally ratelimited to once every
// 500ms. Long messages are split into numbered chunks.
func (t *Bot) Send(txt string, disableNotification bool) (err error) {
	const postfixLength = 4
	const maxMessageSize = 4096 // https://github.com/yagop/node-telegram-bot-api/issues/165
	if len(txt) > 9*maxMessageSize {
		panic("message too long")
	}
	s := []byte(txt)
	i := 1
	// send until there is something to send
	for len(s) > 0 {
		err = t.limiter.Wait(t.ctx)
		if err != nil {
			return err
		}

		end := maxMessageSize - postfixLength
		if len(s) < end {
			end = len(s)
		}
		tt := s
		// do we need to cut the message?
		if len(s) >= maxMessageSize {
			tt = append(s[:0:0], s[:end]...) // copy s
			tt = append(                     // append " (" + i + ")"
				tt,
				' ',
				'(',
				[]byte(string(rune(48 + i)))[0], // ascii 0 + i = "i"
				')',
			)
			i++
		}

		// adjust s
		if len(s) >= end {
			s = s[end:]
		}

		msg := tgbotapi.NewMessage(t.channelID, string(tt))
		msg.DisableNotification = disableNotification
		_, err = t.api.Send(msg)
	}

	return err
}

// SendFile uploads r as a document with the given caption, used by status
// reporting to attach things too big for a message.
func (t *Bot) SendFile(r io.Reader, caption string, disableNotification bool) error {
	if err := t.limiter.Wait(t.ctx); err != nil {
		return err
	}

	doc := tgbotapi.NewDocumentUpload(t.channelID, tgbotapi.FileReader{
		Name:   "attachment.txt",
		Reader: r,
		Size:   -1,
	})
	doc.Caption = caption
	doc.DisableNotification = disableNotification
	_, err := t.api.Send(doc)
	return err
}

// HandleUpdates receives bot events, and calls callback with received
// messages; old bot events are replayed on calling the method, except when
// onlyNewUpdates is true.
func (t *Bot) HandleUpdates(callback func(msg string), onlyNewUpdates bool) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := t.api.GetUpdatesChan(u)
	if err != nil {
		return err
	}
	if onlyNewUpdates {
		updates.Clear()
	}

	for {
		select {
		case <-t.ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}

			if u.Message != nil {
				callback(u.Message.Text)
			}
			if u.EditedMessage != nil {
				callback(u.EditedMessage.Text)
			}
			if u.ChannelPost != nil {
				callback(u.ChannelPost.Text)
			}
			if u.EditedChannelPost != nil {
				callback(u.EditedChannelPost.Text)
			}
		}
	}
}

// SelfMessage differentiates between messages sent to the bot
func (t *Bot) SelfMessage(txt string) bool {
	return strings.Contains(txt, "@"+t.api.Self.UserName)
}
