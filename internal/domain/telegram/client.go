package telegram

import "school_inspection_bot/internal/domain/report"

// Client defines what the application needs from the messaging transport.
// This keeps the services independent of the specific bot library.
type Client interface {
	SendText(chatID int64, text string) error
	SendDocument(chatID int64, artifact *report.Artifact, caption string) error
}
