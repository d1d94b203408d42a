package discord

import (
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/discordgo"

	"skyflipper/internal/event"
	"skyflipper/internal/model"
)

const (
	colorStartup    = 0x2ecc71
	colorPurchase   = 0x00ff00
	colorFailure    = 0xff3333
	colorSold       = 0x0099ff
	colorBuyOrder   = 0x00cccc
	colorSellOffer  = 0xff9900
	colorDisconnect = 0x992d22
)

var itemIconSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func itemThumbnail(itemName string) *discordgo.MessageEmbedThumbnail {
	safe := itemIconSanitizer.ReplaceAllString(itemName, "_")
	return &discordgo.MessageEmbedThumbnail{
		URL: "https://sky.coflnet.com/static/icon/" + safe,
	}
}

func (b *Bot) footer() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text:    "skyflipper • " + b.player,
		IconURL: fmt.Sprintf("https://mc-heads.net/avatar/%s/32.png", b.player),
	}
}

func relativeStamp() string {
	return fmt.Sprintf("<t:%d:R>", time.Now().Unix())
}

func coinField(name string, value float64, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name:   name,
		Value:  fmt.Sprintf("```fix\n%s coins\n```", formatCoins(value)),
		Inline: inline,
	}
}

// formatCoins renders amounts with M/K suffixes the way the in-game chat
// abbreviates them.
func formatCoins(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.2fK", n/1_000)
	}
	return fmt.Sprintf("%.0f", n)
}

func (b *Bot) startupEmbed(evt event.StartupCompleteEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🚀 Startup Complete",
		Description: fmt.Sprintf("Ready to accept flips after %s\n%s", evt.Elapsed.Round(time.Second), relativeStamp()),
		Color:       colorStartup,
		Footer:      b.footer(),
	}
}

func (b *Bot) purchaseEmbed(evt event.FlipPurchasedEvent) *discordgo.MessageEmbed {
	profit := evt.Flip.Profit()
	sign := "+"
	if profit < 0 {
		sign = ""
	}
	return &discordgo.MessageEmbed{
		Title:       "🛒 Item Purchased Successfully",
		Description: fmt.Sprintf("**%s** • %s", evt.Flip.ItemName, relativeStamp()),
		Color:       colorPurchase,
		Fields: []*discordgo.MessageEmbedField{
			coinField("💰 Purchase Price", float64(evt.Flip.StartingBid), true),
			coinField("🎯 Target Price", float64(evt.Flip.Target), true),
			{
				Name:   "📈 Expected Profit",
				Value:  fmt.Sprintf("```diff\n%s%s coins\n```", sign, formatCoins(float64(profit))),
				Inline: true,
			},
		},
		Thumbnail: itemThumbnail(evt.Flip.ItemName),
		Footer:    b.footer(),
	}
}

func (b *Bot) flipFailedEmbed(evt event.FlipFailedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Purchase Failed",
		Description: fmt.Sprintf("**%s** • %s", evt.Flip.ItemName, relativeStamp()),
		Color:       colorFailure,
		Fields: []*discordgo.MessageEmbedField{
			coinField("💰 Asking Price", float64(evt.Flip.StartingBid), true),
			{Name: "⚠️ Reason", Value: fmt.Sprintf("```\n%s\n```", evt.Reason), Inline: false},
		},
		Thumbnail: itemThumbnail(evt.Flip.ItemName),
		Footer:    b.footer(),
	}
}

func (b *Bot) soldEmbed(evt event.ItemSoldEvent) *discordgo.MessageEmbed {
	buyer := evt.Buyer
	if buyer == "" {
		buyer = "unknown"
	}
	return &discordgo.MessageEmbed{
		Title:       "✅ Item Sold",
		Description: fmt.Sprintf("**%s** • %s", evt.ItemName, relativeStamp()),
		Color:       colorSold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 Buyer", Value: fmt.Sprintf("```\n%s\n```", buyer), Inline: true},
			coinField("💵 Sale Price", evt.Price, true),
		},
		Thumbnail: itemThumbnail(evt.ItemName),
		Footer:    b.footer(),
	}
}

func (b *Bot) bazaarEmbed(evt event.BazaarOrderPlacedEvent) *discordgo.MessageEmbed {
	orderType := "Buy Order"
	emoji := "🛒"
	color := colorBuyOrder
	if evt.Order.Side == model.SideSell {
		orderType = "Sell Offer"
		emoji = "🏷️"
		color = colorSellOffer
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Bazaar %s Placed", emoji, orderType),
		Description: fmt.Sprintf("**%s** • %s", evt.Order.ItemName, relativeStamp()),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📦 Amount", Value: fmt.Sprintf("```fix\n%dx\n```", evt.Order.Amount), Inline: true},
			coinField("💵 Price/Unit", evt.Order.PricePerUnit, true),
			coinField("💰 Total Price", evt.Order.TotalPrice, true),
			{Name: "📊 Order Type", Value: fmt.Sprintf("```\n%s\n```", orderType), Inline: false},
		},
		Thumbnail: itemThumbnail(evt.Order.ItemName),
		Footer:    b.footer(),
	}
}

func (b *Bot) bazaarFailedEmbed(evt event.BazaarOrderFailedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Bazaar Order Failed",
		Description: fmt.Sprintf("**%s** • %s", evt.Order.ItemName, relativeStamp()),
		Color:       colorFailure,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⚠️ Reason", Value: fmt.Sprintf("```\n%s\n```", evt.Reason), Inline: false},
		},
		Thumbnail: itemThumbnail(evt.Order.ItemName),
		Footer:    b.footer(),
	}
}

func (b *Bot) disconnectEmbed(evt event.BotDisconnectedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔌 Bot Disconnected",
		Description: fmt.Sprintf("```\n%s\n```\n%s", evt.Reason, relativeStamp()),
		Color:       colorDisconnect,
		Footer:      b.footer(),
	}
}
