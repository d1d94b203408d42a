package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"

	"skyflipper/internal/model"
)

var (
	cfgMux  sync.RWMutex
	Flipper *FlipperCfg
	Version = "dev"
)

type FlipperCfg struct {
	Debug struct {
		Log bool `yaml:"log"`
	} `yaml:"debug"`
	FirstRun         bool   `yaml:"firstRun"`
	LogSaveDirectory string `yaml:"logSaveDirectory"`

	Player struct {
		Name    string `yaml:"name"`
		Profile string `yaml:"profile"`
	} `yaml:"player"`

	Feed struct {
		URL       string `yaml:"url"`
		Version   string `yaml:"version"`
		SessionID string `yaml:"sessionId"`
	} `yaml:"feed"`

	Bridge struct {
		Addr string `yaml:"addr"`
	} `yaml:"bridge"`

	Flips FlipsCfg `yaml:"flips"`

	Delays struct {
		WindowTimeoutMs  int `yaml:"windowTimeoutMs"`
		ConfirmDelayMs   int `yaml:"confirmDelayMs"`
		SafetyIntervalMs int `yaml:"safetyIntervalMs"`
		SafetyClicks     int `yaml:"safetyClicks"`
	} `yaml:"delays"`

	Claim struct {
		PurchasedSpec string `yaml:"purchasedSpec"`
		SoldSpec      string `yaml:"soldSpec"`
	} `yaml:"claim"`

	Chat struct {
		MessagesPerMinute int `yaml:"messagesPerMinute"`
	} `yaml:"chat"`

	Startup struct {
		GracePeriodSeconds int `yaml:"gracePeriodSeconds"`
		WatchdogSeconds    int `yaml:"watchdogSeconds"`
	} `yaml:"startup"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Discord  DiscordCfg  `yaml:"discord"`
	Telegram TelegramCfg `yaml:"telegram"`
}

type DiscordCfg struct {
	Enabled                bool     `yaml:"enabled"`
	EnablePurchaseMessages bool     `yaml:"enablePurchaseMessages"`
	EnableSoldMessages     bool     `yaml:"enableSoldMessages"`
	EnableBazaarMessages   bool     `yaml:"enableBazaarMessages"`
	EnableFailureMessages  bool     `yaml:"enableFailureMessages"`
	BotAdmins              []string `yaml:"botAdmins"`
	ChannelID              string   `yaml:"channelId"`
	Token                  string   `yaml:"token"`
	UseWebhook             bool     `yaml:"useWebhook"`
	WebhookURL             string   `yaml:"webhookUrl"`
}

type TelegramCfg struct {
	Enabled bool   `yaml:"enabled"`
	ChatID  int64  `yaml:"chatId"`
	Token   string `yaml:"token"`
}

type FlipsCfg struct {
	AuctionsEnabled bool    `yaml:"auctionsEnabled"`
	BazaarEnabled   bool    `yaml:"bazaarEnabled"`
	Skip            SkipCfg `yaml:"skip"`
}

// SkipCfg decides which flips use the skip optimization: pre-clicking the
// confirm button of the next window before the confirm menu has opened. The
// pre-click saves a round trip but lands on the wrong menu if the window id
// prediction misses, so it is reserved for flips worth the risk.
type SkipCfg struct {
	Always           bool    `yaml:"always"`
	MinProfit        int64   `yaml:"minProfit"`
	UserFinder       bool    `yaml:"userFinder"`
	Skins            bool    `yaml:"skins"`
	ProfitPercentage float64 `yaml:"profitPercentage"`
	MinPrice         int64   `yaml:"minPrice"`
}

// ShouldSkip reports whether a flip qualifies for the confirm pre-click, with
// the first rule that matched. Any single rule firing is enough; a flip that
// matches none is still purchased, just through the normal confirm menu.
func (s SkipCfg) ShouldSkip(flip model.AuctionFlip) (bool, string) {
	if s.Always {
		return true, "always"
	}
	if s.MinProfit > 0 && flip.Profit() >= s.MinProfit {
		return true, fmt.Sprintf("profit %d above %d", flip.Profit(), s.MinProfit)
	}
	if s.UserFinder && strings.EqualFold(flip.Finder, "USER") {
		return true, "user finder"
	}
	if s.Skins && flip.IsSkin() {
		return true, "skin"
	}
	if s.ProfitPercentage > 0 && flip.ProfitPct >= s.ProfitPercentage {
		return true, fmt.Sprintf("profit percentage %.1f above %.1f", flip.ProfitPct, s.ProfitPercentage)
	}
	if s.MinPrice > 0 && flip.StartingBid >= s.MinPrice {
		return true, fmt.Sprintf("price %d above %d", flip.StartingBid, s.MinPrice)
	}
	return false, ""
}

func Load() error {
	cfgMux.Lock()
	defer cfgMux.Unlock()

	// Secrets can live in a local .env instead of the yaml file.
	_ = godotenv.Load()

	cfgPath := getAbsPath("config/skyflipper.yaml")
	r, err := os.Open(cfgPath)
	if err != nil {
		return fmt.Errorf("error loading skyflipper.yaml: %w", err)
	}
	defer r.Close()

	d := yaml.NewDecoder(r)
	if err = d.Decode(&Flipper); err != nil {
		return fmt.Errorf("error reading config %s: %w", cfgPath, err)
	}
	if Flipper == nil {
		return errors.New("empty config file")
	}

	applyEnvOverrides(Flipper)
	applyDefaults(Flipper)
	sanitizeDiscordConfig(Flipper)
	return nil
}

func applyEnvOverrides(cfg *FlipperCfg) {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("FEED_SESSION_ID"); v != "" {
		cfg.Feed.SessionID = v
	}
}

func applyDefaults(cfg *FlipperCfg) {
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = "wss://sky.coflnet.com/modsocket"
	}
	if cfg.Feed.Version == "" {
		cfg.Feed.Version = Version
	}
	if cfg.Bridge.Addr == "" {
		cfg.Bridge.Addr = "ws://127.0.0.1:8788/bridge"
	}
	if cfg.Chat.MessagesPerMinute == 0 {
		cfg.Chat.MessagesPerMinute = 20
	}
	if cfg.Startup.GracePeriodSeconds == 0 {
		cfg.Startup.GracePeriodSeconds = 5
	}
	if cfg.Startup.WatchdogSeconds == 0 {
		cfg.Startup.WatchdogSeconds = 60
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "skyflipper.db"
	}
}

func sanitizeDiscordConfig(cfg *FlipperCfg) {
	if !cfg.Discord.Enabled {
		return
	}
	useWebhook := cfg.Discord.UseWebhook
	webhookURL := strings.TrimSpace(cfg.Discord.WebhookURL)
	token := strings.TrimSpace(cfg.Discord.Token)
	channelID := strings.TrimSpace(cfg.Discord.ChannelID)

	if (useWebhook && webhookURL == "") || (!useWebhook && (token == "" || channelID == "")) {
		cfg.Discord.Enabled = false
	}
}

// CreateFromTemplate seeds a fresh config directory on first run.
func CreateFromTemplate() error {
	if _, err := os.Stat("config/skyflipper.yaml"); !os.IsNotExist(err) {
		return errors.New("configuration already exists")
	}

	if err := cp.Copy("config/template", "config"); err != nil {
		return fmt.Errorf("error copying template: %w", err)
	}

	return Load()
}

func ValidateAndSaveConfig(cfg FlipperCfg) error {
	if strings.TrimSpace(cfg.Player.Name) == "" {
		return errors.New("player name cannot be empty")
	}
	sanitizeDiscordConfig(&cfg)

	text, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error parsing skyflipper config: %w", err)
	}

	if err = os.WriteFile("config/skyflipper.yaml", text, 0644); err != nil {
		return fmt.Errorf("error writing skyflipper config: %w", err)
	}

	return Load()
}

func getAbsPath(relPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return relPath
	}
	return filepath.Join(cwd, relPath)
}
