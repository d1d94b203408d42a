package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"skyflipper/internal/state"
	"skyflipper/internal/storage"
	"skyflipper/internal/utils"
)

type Bot struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	player  string
	logger  *slog.Logger
	session *state.Session
	store   *storage.Store
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.Chat != nil && update.Message.Chat.ID == b.chatID {
				b.handleCommand(strings.ToLower(strings.TrimSpace(update.Message.Text)))
			}
		}
	}
}

func (b *Bot) handleCommand(text string) {
	switch text {
	case "stats", "/stats":
		sum, err := b.store.Summarize(context.Background(), time.Now().Add(-24*time.Hour))
		if err != nil {
			b.send("Failed reading stats: " + err.Error())
			return
		}
		b.send(fmt.Sprintf(
			"Last 24h\nPurchases: %d (%d failed)\nSales: %d for %s coins\nBazaar orders: %d placed, %d failed",
			sum.Purchases, sum.FailedBuys,
			sum.Sales, utils.FormatThousands(int64(sum.SalesTotal)),
			sum.BazaarPlaced, sum.BazaarFailed,
		))
	case "status", "/status":
		b.send(fmt.Sprintf("%s is %s", b.player, b.session.Mode()))
	}
}

func (b *Bot) send(text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Error sending Telegram message", slog.Any("error", err))
	}
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}
