package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"skyflipper/internal/config"
	"skyflipper/internal/event"
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	cfg := config.Flipper.Discord

	switch evt := e.(type) {
	case event.StartupCompleteEvent:
		return b.sendEmbed(ctx, b.startupEmbed(evt))
	case event.FlipPurchasedEvent:
		if !cfg.EnablePurchaseMessages {
			return nil
		}
		return b.sendEmbed(ctx, b.purchaseEmbed(evt))
	case event.FlipFailedEvent:
		if !cfg.EnableFailureMessages {
			return nil
		}
		return b.sendEmbed(ctx, b.flipFailedEmbed(evt))
	case event.ItemSoldEvent:
		if !cfg.EnableSoldMessages {
			return nil
		}
		return b.sendEmbed(ctx, b.soldEmbed(evt))
	case event.BazaarOrderPlacedEvent:
		if !cfg.EnableBazaarMessages {
			return nil
		}
		return b.sendEmbed(ctx, b.bazaarEmbed(evt))
	case event.BazaarOrderFailedEvent:
		if !cfg.EnableFailureMessages {
			return nil
		}
		return b.sendEmbed(ctx, b.bazaarFailedEmbed(evt))
	case event.BotDisconnectedEvent:
		return b.sendEmbed(ctx, b.disconnectEmbed(evt))
	}

	return nil
}

func (b *Bot) sendEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	if b.useWebhook {
		return b.webhookClient.SendEmbed(ctx, embed)
	}
	_, err := b.discordSession.ChannelMessageSendEmbed(b.channelID, embed)
	return err
}
