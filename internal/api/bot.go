package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "road-survey/internal/application"
	"road-survey/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для поиска повреждений дорожного покрытия.

📸 Отправьте мне фото дороги, и я найду трещины, выбоины и следы ремонта.

📋 Команды:
/check — начать проверку снимка
/threshold 0.4 — изменить порог уверенности
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото дорожного покрытия
2️⃣ Бот проанализирует изображение
3️⃣ Вы получите результат: текст + фото с подсветкой повреждений

💡 Рекомендации:
• Снимайте сверху, покрытие должно занимать весь кадр
• Избегайте резких теней
• Фото должно быть чётким

📋 Команды:
/check — начать проверку
/threshold <0..1> — порог уверенности (сейчас %.2f)
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото дороги для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото дороги для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgNoDamage        = "✅ Повреждения не обнаружены."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgThresholdUsage  = "Укажите порог от 0 до 1, например: /threshold 0.4"
	msgThresholdSet    = "🎚 Порог уверенности: %.2f"
)

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	inspection *app.InspectionService
	logger     *zap.SugaredLogger
}

// NewBot создаёт нового бота
func NewBot(api *tgbotapi.BotAPI, users *app.UserService, inspection *app.InspectionService, logger *zap.SugaredLogger) *Bot {
	logger.Infow("authorized on account", "username", api.Self.UserName)

	return &Bot{
		api:        api,
		users:      users,
		inspection: inspection,
		logger:     logger,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Errorw("get user", "user", msg.From.ID, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	var err error

	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgHelp, user.Threshold))

	case "check":
		_, err = b.users.BeginCheck(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		_, err = b.users.Cancel(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	case "threshold":
		value, parseErr := strconv.ParseFloat(strings.TrimSpace(msg.CommandArguments()), 64)
		if parseErr != nil {
			b.sendMessage(msg.Chat.ID, msgThresholdUsage)
			return
		}
		updated, setErr := b.users.SetThreshold(ctx, user.ID, user.ChatID, value)
		if setErr != nil {
			b.sendMessage(msg.Chat.ID, msgThresholdUsage)
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgThresholdSet, updated.Threshold))

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}

	if err != nil {
		b.logger.Errorw("update user", "user", user.ID, "error", err)
	}
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Warnw("download photo", "file", photo.FileID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	out, err := b.inspection.CheckPhoto(ctx, msg.From.ID, msg.Chat.ID, imageData)
	if err != nil {
		b.logger.Warnw("inspect photo", "user", msg.From.ID, "bytes", len(imageData), "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if !out.Damaged() {
		b.sendMessage(msg.Chat.ID, msgNoDamage)
		return
	}

	if len(out.Highlighted) > 0 {
		upload := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "damage.jpg", Bytes: out.Highlighted})
		upload.Caption = out.Description
		_, err := b.api.Send(upload)
		if err == nil {
			return
		}
		b.logger.Warnw("send highlighted photo", "error", err)
	}
	b.sendMessage(msg.Chat.ID, out.Description)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warnw("send message", "chat", chatID, "error", err)
	}
}
