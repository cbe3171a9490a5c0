package notify

import (
	"context"
	"strings"

	"guardrail/internal/config"
)

// Message is one operator notification.
type Message struct {
	Event string
	Text  string
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// FromConfig builds the notifiers that have enough configuration to send.
func FromConfig(cfg config.NotifyConfig, project string) []Notifier {
	var out []Notifier
	if strings.TrimSpace(cfg.Telegram.BotToken) != "" && strings.TrimSpace(cfg.Telegram.ChatID) != "" {
		out = append(out, &Telegram{
			BotToken: strings.TrimSpace(cfg.Telegram.BotToken),
			ChatID:   strings.TrimSpace(cfg.Telegram.ChatID),
		})
	}
	if strings.TrimSpace(cfg.Webhook.URL) != "" {
		out = append(out, &Webhook{
			URL:     strings.TrimSpace(cfg.Webhook.URL),
			Project: project,
		})
	}
	return out
}
