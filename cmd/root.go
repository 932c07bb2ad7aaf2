package main

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"road-survey/config"
	"road-survey/internal/domain/port"
	"road-survey/internal/infrastructure/telegram"
	"road-survey/internal/logging"
)

// version задаётся при сборке через -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "road-survey",
	Short: "Road damage detection for drone and dashcam surveys",
	Long: "road-survey runs a damage detector over folders of road images, sorts them into\n" +
		"damaged and clean sets and writes JSON and interactive HTML reports.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.Version = version
}

// setup загружает конфигурацию и создаёт логгер.
func setup() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newNotifier возвращает уведомитель Telegram, если задан токен и чат.
func newNotifier(cfg *config.Config, logger *zap.SugaredLogger) port.SurveyNotifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Warnw("telegram notifier disabled", "error", err)
		return nil
	}
	return telegram.NewNotifier(api, cfg.Telegram.ChatID)
}
