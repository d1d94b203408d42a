package discord

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"skyflipper/internal/config"
	"skyflipper/internal/queue"
	"skyflipper/internal/state"
	"skyflipper/internal/storage"
	"skyflipper/internal/utils"
)

// Bot publishes trading events to Discord and answers operator commands.
// It runs either against a bot token or webhook-only, where events go out
// but commands are unavailable.
type Bot struct {
	discordSession *discordgo.Session
	channelID      string
	player         string
	useWebhook     bool
	webhookClient  *webhookClient

	session *state.Session
	store   *storage.Store
	cmdQ    *queue.Queue
}

func NewBot(cfg config.DiscordCfg, player string, session *state.Session, store *storage.Store, cmdQ *queue.Queue) (*Bot, error) {
	b := &Bot{
		channelID:  cfg.ChannelID,
		player:     player,
		useWebhook: cfg.UseWebhook,
		session:    session,
		store:      store,
		cmdQ:       cmdQ,
	}

	if cfg.UseWebhook {
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		b.webhookClient = newWebhookClient(cfg.WebhookURL)
		return b, nil
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	b.discordSession = dg
	return b, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.AddHandler(b.onMessageCreated)
	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	if err := b.discordSession.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()
	return b.discordSession.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if !slices.Contains(config.Flipper.Discord.BotAdmins, m.Author.ID) {
		return
	}
	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	prefix := strings.Split(m.Content, " ")[0]
	switch prefix {
	case "!stats":
		b.handleStatsRequest(s, m)
	case "!status":
		b.handleStatusRequest(s, m)
	case "!help":
		b.handleHelpRequest(s, m)
	default:
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Unknown command: `%s`. Type `!help` for available commands.", prefix))
	}
}

func (b *Bot) handleStatsRequest(s *discordgo.Session, m *discordgo.MessageCreate) {
	sum, err := b.store.Summarize(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Failed reading stats: "+err.Error())
		return
	}
	msg := fmt.Sprintf(
		"**Last 24h**\nPurchases: %d (%d failed)\nSales: %d for %s coins\nBazaar orders: %d placed, %d failed",
		sum.Purchases, sum.FailedBuys,
		sum.Sales, utils.FormatThousands(int64(sum.SalesTotal)),
		sum.BazaarPlaced, sum.BazaarFailed,
	)
	s.ChannelMessageSend(m.ChannelID, msg)
}

func (b *Bot) handleStatusRequest(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg := fmt.Sprintf("**%s** is %s, %d command(s) queued", b.player, b.session.Mode(), b.cmdQ.Len())
	s.ChannelMessageSend(m.ChannelID, msg)
}

func (b *Bot) handleHelpRequest(s *discordgo.Session, m *discordgo.MessageCreate) {
	s.ChannelMessageSend(m.ChannelID, strings.Join([]string{
		"`!stats` - trading totals for the last 24 hours",
		"`!status` - current bot mode and queue depth",
		"`!help` - this message",
	}, "\n"))
}
