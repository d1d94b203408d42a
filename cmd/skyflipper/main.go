package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"golang.org/x/sync/errgroup"

	sloggger "skyflipper/cmd/skyflipper/log"
	"skyflipper/internal/config"
	"skyflipper/internal/event"
	"skyflipper/internal/feed"
	"skyflipper/internal/flow"
	"skyflipper/internal/game"
	"skyflipper/internal/inventory"
	"skyflipper/internal/orchestrator"
	"skyflipper/internal/queue"
	"skyflipper/internal/remote/discord"
	"skyflipper/internal/remote/telegram"
	"skyflipper/internal/scheduler"
	"skyflipper/internal/state"
	"skyflipper/internal/storage"
)

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace)
				logger.Error(errMsg)
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

func main() {
	if err := config.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = config.CreateFromTemplate()
		}
		if err != nil {
			stdlog.Fatalf("Error loading configuration: %s", err.Error())
		}
	}

	logger, err := sloggger.NewLogger(config.Flipper.Debug.Log, config.Flipper.LogSaveDirectory)
	if err != nil {
		stdlog.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	eventListener := event.NewListener(logger)

	store, err := storage.Open(config.Flipper.Storage.Path)
	if err != nil {
		stdlog.Fatalf("Error opening storage: %s", err.Error())
	}
	defer store.Close()
	eventListener.Register(store.Handle)

	session := state.NewSession()
	defer session.Close()
	cmdQ := queue.New()

	bridge := game.NewBridge(config.Flipper.Bridge.Addr, logger)
	controller := flow.NewController(bridge, session, logger, flow.DefaultDelays())
	inv := inventory.NewManager()

	feedClient := feed.NewClient(feed.Config{
		URL:       config.Flipper.Feed.URL,
		Player:    config.Flipper.Player.Name,
		Version:   config.Flipper.Feed.Version,
		SessionID: config.Flipper.Feed.SessionID,
	}, logger)

	if config.Flipper.Discord.Enabled {
		discordBot, err := discord.NewBot(config.Flipper.Discord, config.Flipper.Player.Name, session, store, cmdQ)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
			return
		}

		eventListener.Register(discordBot.Handle)
		if !config.Flipper.Discord.UseWebhook {
			g.Go(wrapWithRecover(logger, func() error {
				return discordBot.Start(ctx)
			}))
		}
	}

	if config.Flipper.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(
			config.Flipper.Telegram.Token,
			config.Flipper.Telegram.ChatID,
			config.Flipper.Player.Name,
			session,
			store,
			logger,
		)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
			return
		}
		defer telegramBot.Close()

		eventListener.Register(telegramBot.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return telegramBot.Start(ctx)
		}))
	}

	claims := scheduler.New(cmdQ, logger)
	if err := claims.AddClaimJobs(config.Flipper.Claim.PurchasedSpec, config.Flipper.Claim.SoldSpec); err != nil {
		stdlog.Fatalf("Error registering claim jobs: %s", err.Error())
	}

	orch := orchestrator.New(bridge, controller, session, cmdQ, feedClient, inv, logger)

	g.Go(wrapWithRecover(logger, func() error {
		return eventListener.Listen(ctx)
	}))
	g.Go(wrapWithRecover(logger, func() error {
		return bridge.Run(ctx)
	}))
	g.Go(wrapWithRecover(logger, func() error {
		return feedClient.Run(ctx)
	}))
	g.Go(wrapWithRecover(logger, func() error {
		return claims.Run(ctx)
	}))
	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return orch.Run(ctx)
	}))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Shutting down after error", slog.Any("error", err))
	}
	logger.Info("skyflipper stopped")
}
