package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skyflipper/internal/model"
)

func testFlip() model.AuctionFlip {
	return model.AuctionFlip{
		ItemName:    "Hyperion",
		StartingBid: 800_000_000,
		Target:      900_000_000,
		Finder:      "FLIPPER",
		ProfitPct:   12.5,
		AuctionID:   "416f",
	}
}

func TestShouldSkip(t *testing.T) {
	// testFlip has starting bid 800M, target 900M, so profit 100M at 12.5%.

	t.Run("no rules means no pre-click", func(t *testing.T) {
		skip, _ := SkipCfg{}.ShouldSkip(testFlip())
		assert.False(t, skip)
	})

	t.Run("always", func(t *testing.T) {
		skip, reason := SkipCfg{Always: true}.ShouldSkip(testFlip())
		assert.True(t, skip)
		assert.Equal(t, "always", reason)
	})

	t.Run("min profit", func(t *testing.T) {
		skip, reason := SkipCfg{MinProfit: 50_000_000}.ShouldSkip(testFlip())
		assert.True(t, skip)
		assert.Contains(t, reason, "profit")

		skip, _ = SkipCfg{MinProfit: 200_000_000}.ShouldSkip(testFlip())
		assert.False(t, skip, "a flip below the profit bar is bought without the pre-click")
	})

	t.Run("user finder", func(t *testing.T) {
		flip := testFlip()
		flip.Finder = "USER"
		skip, _ := SkipCfg{UserFinder: true}.ShouldSkip(flip)
		assert.True(t, skip)

		skip, _ = SkipCfg{UserFinder: true}.ShouldSkip(testFlip())
		assert.False(t, skip)
	})

	t.Run("skins", func(t *testing.T) {
		flip := testFlip()
		flip.ItemName = "Superior Dragon Skin"
		skip, _ := SkipCfg{Skins: true}.ShouldSkip(flip)
		assert.True(t, skip)

		skip, _ = SkipCfg{Skins: true}.ShouldSkip(testFlip())
		assert.False(t, skip)
	})

	t.Run("profit percentage", func(t *testing.T) {
		skip, _ := SkipCfg{ProfitPercentage: 10}.ShouldSkip(testFlip())
		assert.True(t, skip)

		skip, _ = SkipCfg{ProfitPercentage: 20}.ShouldSkip(testFlip())
		assert.False(t, skip)
	})

	t.Run("min price", func(t *testing.T) {
		skip, _ := SkipCfg{MinPrice: 500_000_000}.ShouldSkip(testFlip())
		assert.True(t, skip)

		skip, _ = SkipCfg{MinPrice: 1_000_000_000}.ShouldSkip(testFlip())
		assert.False(t, skip)
	})

	t.Run("any matching rule is enough", func(t *testing.T) {
		cfg := SkipCfg{MinProfit: 200_000_000, ProfitPercentage: 10}
		skip, _ := cfg.ShouldSkip(testFlip())
		assert.True(t, skip)
	})
}

func TestSanitizeDiscordConfig(t *testing.T) {
	cfg := &FlipperCfg{}
	cfg.Discord.Enabled = true
	cfg.Discord.UseWebhook = true
	sanitizeDiscordConfig(cfg)
	assert.False(t, cfg.Discord.Enabled, "webhook mode without URL must disable discord")

	cfg = &FlipperCfg{}
	cfg.Discord.Enabled = true
	cfg.Discord.Token = "token"
	cfg.Discord.ChannelID = "123"
	sanitizeDiscordConfig(cfg)
	assert.True(t, cfg.Discord.Enabled)
}
