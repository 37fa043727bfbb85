package app

import (
	"context"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginCheck начинает проверку нового очага: отслеживаемый очаг сбрасывается.
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64, bodyLocation string) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.LesionID = ""
	user.BodyLocation = bodyLocation
	user.SetState(entity.StateAwaitingPhoto)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// TrackLesion привязывает следующие снимки пользователя к очагу и ждёт снимок.
func (s *UserService) TrackLesion(ctx context.Context, userID, chatID int64, lesionID, bodyLocation string) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.TrackLesion(lesionID, bodyLocation)
	user.SetState(entity.StateAwaitingPhoto)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// CompleteCheck возвращает пользователя в главное меню. Непустой lesionID
// становится отслеживаемым очагом для следующих снимков.
func (s *UserService) CompleteCheck(ctx context.Context, userID, chatID int64, lesionID string) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if lesionID != "" {
		user.TrackLesion(lesionID, "")
	}
	user.SetState(entity.StateMainMenu)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
