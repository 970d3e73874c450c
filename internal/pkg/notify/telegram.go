// Package notify sends pass summaries to operators.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/orchestrator"
)

// Min interval between two messages to the same chat (Telegram allows ~30/min).
const telegramSendInterval = 2 * time.Second

var _ orchestrator.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts a summary of every pass that had failures.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier connects to the Bot API and checks the token.
func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithClient(cfg, tgbotapi.APIEndpoint, &http.Client{Timeout: 15 * time.Second})
}

// NewTelegramNotifierWithClient targets a custom endpoint, e.g. a local Bot API server.
func NewTelegramNotifierWithClient(cfg config.TelegramConfig, endpoint string, client tgbotapi.HTTPClient) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	slog.Info("Telegram notifier initialized", "chat_id", cfg.ChatID, "bot", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: cfg.ChatID}, nil
}

// NotifyPass sends nothing for clean passes.
func (n *TelegramNotifier) NotifyPass(ctx context.Context, stats orchestrator.Stats) error {
	if stats.Failed == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, formatPassSummary(stats))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); elapsed < telegramSendInterval {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(telegramSendInterval - elapsed):
		}
	}

	n.lastSend = time.Now()
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send pass summary: %w", err)
	}
	slog.Info("Telegram send: success", "pass_id", stats.PassID.String(), "failed", stats.Failed)
	return nil
}

func formatPassSummary(stats orchestrator.Stats) string {
	var b strings.Builder
	b.WriteString("*Ingestion pass finished with failures*\n")
	fmt.Fprintf(&b, "Pass: `%s`\n", stats.PassID.String())
	fmt.Fprintf(&b, "Success: %d/%d, failed: %d, classes: %d\n",
		stats.Success, stats.Total, stats.Failed, stats.TotalClasses)
	fmt.Fprintf(&b, "Duration: %s\n", escapeMarkdown(stats.Duration.Round(time.Second).String()))

	b.WriteString("\n*Failed brands*\n")
	for _, o := range stats.Outcomes {
		if o.Persisted {
			continue
		}
		fmt.Fprintf(&b, "• %s: %s\n", escapeMarkdown(o.Brand), escapeMarkdown(truncateString(o.Error, 200)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}
