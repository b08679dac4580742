// Package telegram delivers record notifications to a Telegram chat.
package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hadi_poller/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender sends formatted record messages to a single configured chat.
type Sender struct {
	api    telegramAPI
	chatID int64
	loc    *time.Location
}

// New creates a Sender with the given bot token and destination chat.
func New(token string, chatID int64, loc *time.Location) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return NewWithAPI(api, chatID, loc), nil
}

// NewWithAPI creates a Sender with a custom API handle (useful for testing).
func NewWithAPI(api telegramAPI, chatID int64, loc *time.Location) *Sender {
	return &Sender{api: api, chatID: chatID, loc: loc}
}

// SendRecord formats and sends one record. The error is returned rather than
// logged so the caller can decide whether the record counts as forwarded.
func (s *Sender) SendRecord(rec model.Record) error {
	msg := tgbotapi.NewMessage(s.chatID, FormatRecord(rec, s.loc))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
