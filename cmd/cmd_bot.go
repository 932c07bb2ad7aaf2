package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	telegram "road-survey/internal/api"
	"road-survey/internal/container"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot that checks single road photos",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	c, err := container.FromConfig(cfg, logger, nil, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bot := telegram.NewBot(api, c.UserService, c.InspectionService, logger.Named("bot"))
	logger.Info("bot is running")
	return bot.Run(ctx)
}
