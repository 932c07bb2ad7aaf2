package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

// Sender часть tgbotapi.BotAPI, нужная уведомителю.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет итоги обследования в чат Telegram.
type Notifier struct {
	sender Sender
	chatID int64
}

var _ port.SurveyNotifier = (*Notifier)(nil)

// NewNotifier создаёт уведомитель для указанного чата.
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// NotifySurvey публикует Markdown-сводку.
func (n *Notifier) NotifySurvey(ctx context.Context, result *entity.SurveyResult) error {
	if n.sender == nil || n.chatID == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatSurveySummary(result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("send survey summary: %w", err)
	}
	return nil
}

// FormatSurveySummary текст сводки: итоги, доля повреждений, ошибки и частые классы.
func FormatSurveySummary(result *entity.SurveyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Обследование %s*\n", escapeMarkdown(result.SurveyName))
	fmt.Fprintf(&b, "Снимков: %d\n", result.Total)
	fmt.Fprintf(&b, "С повреждениями: %d (%.1f%%)\n", result.DamagedCount(), result.DamageRate()*100)
	fmt.Fprintf(&b, "Без повреждений: %d\n", result.CleanCount)
	fmt.Fprintf(&b, "Ошибок обработки: %d\n", result.FailedCount())
	fmt.Fprintf(&b, "Состояние: %s", result.Condition())

	type classCount struct {
		class entity.DamageClass
		count int
	}
	var top []classCount
	for _, class := range entity.DamageClasses() {
		if n := result.ClassCounts[class]; n > 0 {
			top = append(top, classCount{class, n})
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].count > top[j].count })
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) > 0 {
		b.WriteString("\n\nЧастые повреждения:")
		for _, c := range top {
			fmt.Fprintf(&b, "\n• %s (%s): %d", c.class.Name(), c.class, c.count)
		}
	}
	return b.String()
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}
