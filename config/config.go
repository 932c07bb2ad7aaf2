package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"road-survey/internal/domain/entity"
)

const (
	configPathEnv    = "ROAD_SURVEY_CONFIG"
	telegramTokenEnv = "TELEGRAM_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	outputDirEnv     = "SURVEY_OUTPUT_DIR"
	confidenceEnv    = "CONFIDENCE_THRESHOLD"
	workersEnv       = "SURVEY_WORKERS"
	httpAddrEnv      = "HTTP_ADDR"
	logLevelEnv      = "LOG_LEVEL"
	logFormatEnv     = "LOG_FORMAT"
	modelBackendEnv  = "MODEL_BACKEND"
	modelPathEnv     = "MODEL_PATH"
)

// Детекторы, которые умеет собирать приложение.
const (
	BackendDemo = "demo"
	BackendGoCV = "gocv"
)

type Config struct {
	Survey   SurveyConfig   `yaml:"survey"`
	Model    ModelConfig    `yaml:"model"`
	Telegram TelegramConfig `yaml:"telegram"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

// SurveyConfig параметры пакетной обработки по умолчанию
type SurveyConfig struct {
	OutputDir     string        `yaml:"outputDir"`
	Confidence    float64       `yaml:"confidence"`
	Format        string        `yaml:"format"`
	Thumbnails    bool          `yaml:"thumbnails"`
	IncludeClean  bool          `yaml:"includeClean"`
	Workers       int           `yaml:"workers"`
	ImageTimeout  time.Duration `yaml:"imageTimeout"`
	ThumbnailSize int           `yaml:"thumbnailSize"`
	MapCenter     [2]float64    `yaml:"mapCenter"`
}

// ModelConfig выбор детектора
type ModelConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chatId"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default настройки без файла и переменных окружения.
func Default() *Config {
	return &Config{
		Survey: SurveyConfig{
			OutputDir:     "output",
			Confidence:    entity.DefaultUserThreshold,
			Format:        string(entity.FormatBoth),
			Thumbnails:    true,
			IncludeClean:  true,
			ImageTimeout:  30 * time.Second,
			ThumbnailSize: 150,
			MapCenter:     [2]float64{40.7128, -74.0060},
		},
		Model: ModelConfig{Backend: BackendDemo},
		HTTP:  HTTPConfig{Addr: ":8080"},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString := func(env string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}

	setString(telegramTokenEnv, &c.Telegram.Token)
	setString(outputDirEnv, &c.Survey.OutputDir)
	setString(httpAddrEnv, &c.HTTP.Addr)
	setString(logLevelEnv, &c.Log.Level)
	setString(logFormatEnv, &c.Log.Format)
	setString(modelBackendEnv, &c.Model.Backend)
	setString(modelPathEnv, &c.Model.Path)

	if v := strings.TrimSpace(os.Getenv(telegramChatEnv)); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", telegramChatEnv, err)
		}
		c.Telegram.ChatID = id
	}
	if v := strings.TrimSpace(os.Getenv(confidenceEnv)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", confidenceEnv, err)
		}
		c.Survey.Confidence = f
	}
	if v := strings.TrimSpace(os.Getenv(workersEnv)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", workersEnv, err)
		}
		c.Survey.Workers = n
	}
	return nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.Survey.Confidence < 0 || c.Survey.Confidence > 1 {
		return fmt.Errorf("confidence threshold %v must be within [0, 1]", c.Survey.Confidence)
	}
	if _, err := entity.ParseOutputFormat(c.Survey.Format); err != nil {
		return err
	}
	if c.Survey.Workers < 0 {
		return fmt.Errorf("survey workers must not be negative, got %d", c.Survey.Workers)
	}
	if c.Survey.ImageTimeout < 0 {
		return fmt.Errorf("image timeout must not be negative, got %s", c.Survey.ImageTimeout)
	}
	switch c.Model.Backend {
	case BackendDemo:
	case BackendGoCV:
		if c.Model.Path == "" {
			return fmt.Errorf("model path is required for the %s backend", BackendGoCV)
		}
	default:
		return fmt.Errorf("unknown model backend %q (use %s or %s)", c.Model.Backend, BackendDemo, BackendGoCV)
	}
	return nil
}

// OutputFormat формат отчётов по умолчанию.
func (c *Config) OutputFormat() entity.OutputFormat {
	f, _ := entity.ParseOutputFormat(c.Survey.Format)
	return f
}
