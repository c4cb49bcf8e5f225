// internal/infra/telegram/client.go
package telegram

import (
	"bytes"

	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/domain/report"
)

// sender is the part of *telebot.Bot the adapter uses.
type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter implements the domain Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot sender
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText posts a plain message to a chat (user or group).
func (tba *TelebotAdapter) SendText(chatID int64, text string) error {
	_, err := tba.bot.Send(telebot.ChatID(chatID), text)
	return err
}

// SendDocument uploads the artifact as a file with caption.
func (tba *TelebotAdapter) SendDocument(chatID int64, artifact *report.Artifact, caption string) error {
	doc := &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader(artifact.Content)),
		FileName: artifact.FileName,
		Caption:  caption,
	}
	_, err := tba.bot.Send(telebot.ChatID(chatID), doc)
	return err
}
