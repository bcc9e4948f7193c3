package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/marketplace-service/internal/config"
)

// BotCardType styles the chat card header.
type BotCardType string

const (
	BotCardCreated   BotCardType = "created"
	BotCardCompleted BotCardType = "completed"
)

// BotSender posts a formatted job card into the operations chat.
type BotSender interface {
	SendJobCard(ctx context.Context, cardType BotCardType, title, description, location, cost string) error
}

type telegramSender struct {
	cfg    config.BotConfig
	client *http.Client
}

// NewBotSender builds the Telegram sender. Missing credentials return nil and
// the channel stays dark.
func NewBotSender(cfg config.BotConfig) BotSender {
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil
	}
	return &telegramSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *telegramSender) SendJobCard(ctx context.Context, cardType BotCardType, title, description, location, cost string) error {
	header := fmt.Sprintf("<b>\U0001F535 %s</b>", title)
	icon := "\U0001F195"
	if cardType == BotCardCompleted {
		header = fmt.Sprintf("<b>\U0001F7E2 %s</b>", title)
		icon = "✅"
	}

	text := fmt.Sprintf(`
%s

%s <b>Задача:</b>
%s

📍 <b>Местоположение:</b>
%s

💰 <b>Оплата:</b>
<code>%s ₽</code>

📅 <b>Дата:</b> %s
`, header, icon, description, location, cost, time.Now().Format("02.01.2006"))

	body, err := json.Marshal(map[string]any{
		"chat_id":                  s.cfg.ChatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("telegram api: %s", result.Description)
	}
	return nil
}
