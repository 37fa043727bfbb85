package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото очага
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID           int64     // Telegram User ID
	ChatID       int64     // Telegram Chat ID
	State        UserState // Текущее состояние пользователя
	LesionID     string    // Отслеживаемый очаг, пусто — новый
	BodyLocation string    // Локализация для нового очага
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// TrackLesion привязывает следующие снимки к очагу.
func (u *User) TrackLesion(lesionID, bodyLocation string) {
	u.LesionID = lesionID
	if bodyLocation != "" {
		u.BodyLocation = bodyLocation
	}
}
