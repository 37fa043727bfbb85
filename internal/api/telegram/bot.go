package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "dermacheck/internal/application"
	"dermacheck/internal/domain/entity"
	"dermacheck/internal/infrastructure/storage"
)

const (
	msgStart = `👋 Привет! Я помогаю следить за родинками по критериям ABCDE.

📸 Отправьте фото родинки крупным планом, и я оценю асимметрию, границы, цвет, диаметр и изменения.

📋 Команды:
/check [место] — проверить новый очаг, например /check левое плечо
/lesion <id> — сравнить следующий снимок с сохранённым очагом
/history — история отслеживаемого очага
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check и укажите место на теле
2️⃣ Пришлите фото родинки
3️⃣ Получите оценку ABCDE и фото с выделенным контуром

Повторные снимки того же очага сравниваются с предыдущими: /lesion <id>.

💡 Рекомендации:
• Снимайте при дневном освещении без вспышки
• Родинка должна быть в центре кадра
• Держите камеру параллельно коже

📋 Команды:
/check [место] — новая проверка
/lesion <id> — выбрать очаг
/history [id] — история очага
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото родинки для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото родинки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую снимок..."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgLesionUsage     = "Укажите идентификатор очага: /lesion left_shoulder_001"
	msgNoLesion        = "Нет отслеживаемого очага. Укажите его: /history left_shoulder_001"
	msgHistoryNotFound = "История очага %s не найдена."
	msgInternalError   = "⚠️ Внутренняя ошибка, попробуйте позже."
)

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	users       *app.UserService
	assessments *app.AssessmentService
	intake      *app.ImageIntake
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, assessments *app.AssessmentService, intake *app.ImageIntake, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	return &Bot{
		api:         api,
		users:       users,
		assessments: assessments,
		intake:      intake,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}, nil
}

// Run обрабатывает сообщения до отмены контекста
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
	if msg.From == nil {
		return
	}
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("failed to get user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		_, err = b.users.BeginCheck(ctx, user.ID, chatID, args)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "lesion":
		if args == "" {
			b.sendMessage(chatID, msgLesionUsage)
			return
		}
		_, err = b.users.TrackLesion(ctx, user.ID, chatID, args, "")
		b.sendMessage(chatID, fmt.Sprintf("📌 Следующий снимок будет сравнён с очагом %s. %s", args, msgAwaitingPhoto))

	case "history":
		b.handleHistory(ctx, chatID, args, user)

	case "cancel":
		_, err = b.users.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}

	if err != nil {
		b.logger.Error("failed to update user", zap.Int64("user_id", user.ID), zap.String("command", msg.Command()), zap.Error(err))
	}
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64, lesionID string, user *entity.User) {
	if lesionID == "" {
		lesionID = user.LesionID
	}
	if lesionID == "" {
		b.sendMessage(chatID, msgNoLesion)
		return
	}

	entries, err := b.assessments.History(ctx, lesionID)
	if errors.Is(err, storage.ErrLesionNotFound) {
		b.sendMessage(chatID, fmt.Sprintf(msgHistoryNotFound, lesionID))
		return
	}
	if err != nil {
		b.logger.Error("failed to load history", zap.String("lesion_id", lesionID), zap.Error(err))
		b.sendMessage(chatID, msgInternalError)
		return
	}
	b.sendMessage(chatID, FormatHistory(lesionID, entries))
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	if _, err := b.users.SetState(ctx, user.ID, chatID, entity.StateProcessing); err != nil {
		b.logger.Error("failed to update user", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	b.sendMessage(chatID, msgProcessing)

	// файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	lesionID := ""
	defer func() {
		if _, err := b.users.CompleteCheck(ctx, user.ID, chatID, lesionID); err != nil {
			b.logger.Error("failed to update user", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}()

	if err := b.intake.CheckSize(int64(photo.FileSize)); err != nil {
		b.sendMessage(chatID, FormatIntakeError(err, b.intake.MinSide()))
		return
	}

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Error("failed to download photo", zap.String("file_id", photo.FileID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	if _, _, err := b.intake.Check(imageData); err != nil {
		b.logger.Info("photo rejected at intake", zap.Int64("user_id", user.ID), zap.Error(err))
		b.sendMessage(chatID, FormatIntakeError(err, b.intake.MinSide()))
		return
	}

	out, err := b.assessments.Assess(ctx, app.AssessmentRequest{
		ImageData:    imageData,
		LesionID:     user.LesionID,
		BodyLocation: user.BodyLocation,
	})
	if err != nil {
		b.logger.Error("assessment failed", zap.Int64("user_id", user.ID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	lesionID = out.Assessment.LesionID

	report := FormatReport(out)
	if len(out.Highlighted) == 0 {
		b.sendMessage(chatID, report)
		return
	}

	// подпись к фото ограничена, полный отчёт отдельным сообщением
	b.sendPhoto(chatID, out.Highlighted, fmt.Sprintf("Риск: %s (%d/%d)", riskLabels[out.Assessment.RiskLevel], out.Assessment.Total, entity.MaxTotal))
	b.sendMessage(chatID, report)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
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
		b.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendPhoto отправляет JPEG с подписью
func (b *Bot) sendPhoto(chatID int64, data []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "lesion.jpg", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
