package entity

import "fmt"

// DefaultUserThreshold порог уверенности для новых пользователей бота
const DefaultUserThreshold = 0.3

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото дороги
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID        int64     // Telegram User ID
	ChatID    int64     // Telegram Chat ID
	State     UserState // Текущее состояние пользователя
	Threshold float64   // Личный порог уверенности детекций
	Checked   int       // Сколько снимков проверено
	Damaged   int       // На скольких найдены повреждения
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:        userID,
		ChatID:    chatID,
		State:     StateMainMenu,
		Threshold: DefaultUserThreshold,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetThreshold меняет порог, отклоняя значения вне [0, 1].
func (u *User) SetThreshold(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("threshold %v must be within [0, 1]", value)
	}
	u.Threshold = value
	return nil
}

// RecordCheck учитывает результат очередной проверки.
func (u *User) RecordCheck(damaged bool) {
	u.Checked++
	if damaged {
		u.Damaged++
	}
}
