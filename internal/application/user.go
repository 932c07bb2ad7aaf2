package app

import (
	"context"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
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
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(state)
		return nil
	})
}

func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetThreshold меняет личный порог уверенности пользователя.
func (s *UserService) SetThreshold(ctx context.Context, userID, chatID int64, threshold float64) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		return u.SetThreshold(threshold)
	})
}

// FinishCheck учитывает результат проверки и возвращает пользователя в главное меню.
func (s *UserService) FinishCheck(ctx context.Context, userID, chatID int64, damaged bool) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.RecordCheck(damaged)
		u.SetState(entity.StateMainMenu)
		return nil
	})
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, apply func(*entity.User) error) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := apply(user); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
