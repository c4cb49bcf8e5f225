package telegram

import (
	"strings"

	"gopkg.in/telebot.v3"

	"school_inspection_bot/internal/domain/collection"
)

// replyMarkup converts a conversation reply into a keyboard. Nil means the
// message goes out without markup.
func replyMarkup(r collection.Reply) *telebot.ReplyMarkup {
	if len(r.Choices) == 0 {
		if r.RemoveKeyboard {
			return &telebot.ReplyMarkup{RemoveKeyboard: true}
		}
		return nil
	}

	if r.Inline {
		m := &telebot.ReplyMarkup{}
		rows := make([]telebot.Row, 0, len(r.Choices))
		for _, choices := range r.Choices {
			btns := make([]telebot.Btn, 0, len(choices))
			for _, ch := range choices {
				btns = append(btns, m.Data(ch.Label, ch.Data))
			}
			rows = append(rows, m.Row(btns...))
		}
		m.Inline(rows...)
		return m
	}

	m := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := make([]telebot.Row, 0, len(r.Choices))
	for _, choices := range r.Choices {
		btns := make([]telebot.Btn, 0, len(choices))
		for _, ch := range choices {
			btns = append(btns, m.Text(ch.Label))
		}
		rows = append(rows, m.Row(btns...))
	}
	m.Reply(rows...)
	return m
}

// sendReply sends r as a new message.
func sendReply(c telebot.Context, r collection.Reply) error {
	if m := replyMarkup(r); m != nil {
		return c.Send(r.Text, m)
	}
	return c.Send(r.Text)
}

// parseCallback splits telebot callback data ("\funique|payload").
func parseCallback(data string) (unique, payload string) {
	data = strings.TrimPrefix(data, "\f")
	unique, payload, _ = strings.Cut(data, "|")
	return unique, payload
}
