package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"go.uber.org/multierr"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
	"road-survey/internal/survey"
)

type InspectionService struct {
	users       *UserService
	adapter     *survey.Adapter
	highlighter port.DamageHighlighter
	describer   port.DamageDescriber
}

// InspectionOutput содержит найденные повреждения, их описание и картинку с подсветкой.
type InspectionOutput struct {
	Detections  []entity.DetectionRecord
	Description string
	Highlighted []byte // JPEG; пусто, если повреждений нет
}

// Damaged сообщает, найдено ли хотя бы одно повреждение.
func (o *InspectionOutput) Damaged() bool {
	return len(o.Detections) > 0
}

// NewInspectionService создаёт сервис проверки одиночных снимков.
func NewInspectionService(users *UserService, adapter *survey.Adapter, highlighter port.DamageHighlighter, describer port.DamageDescriber) *InspectionService {
	return &InspectionService{
		users:       users,
		adapter:     adapter,
		highlighter: highlighter,
		describer:   describer,
	}
}

// Inspect декодирует снимок, запускает детектор и готовит ответ.
func (s *InspectionService) Inspect(ctx context.Context, photo []byte, threshold float64) (*InspectionOutput, error) {
	if s.adapter == nil {
		return nil, errors.New("detector is not configured")
	}

	img, err := s.adapter.DecodeBytes("upload", photo)
	if err != nil {
		return nil, err
	}

	detections, err := s.adapter.Detect(ctx, "upload", img, threshold)
	if err != nil {
		return nil, err
	}

	out := &InspectionOutput{Detections: detections}

	if s.describer != nil {
		out.Description, err = s.describer.Describe(ctx, detections)
		if err != nil {
			return nil, fmt.Errorf("describe damage: %w", err)
		}
	}

	if out.Damaged() && s.highlighter != nil {
		highlighted, err := s.highlighter.Highlight(img, detections)
		if err != nil {
			return nil, fmt.Errorf("highlight damage: %w", err)
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, highlighted, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
			return nil, fmt.Errorf("encode highlighted image: %w", err)
		}
		out.Highlighted = buf.Bytes()
	}

	return out, nil
}

// CheckPhoto проверяет снимок с личным порогом пользователя и обновляет его статистику.
func (s *InspectionService) CheckPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*InspectionOutput, error) {
	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}

	out, inspectErr := s.Inspect(ctx, photo, user.Threshold)
	if inspectErr != nil {
		if _, err := s.users.Cancel(ctx, userID, chatID); err != nil {
			return nil, multierr.Append(inspectErr, err)
		}
		return nil, inspectErr
	}

	if _, err := s.users.FinishCheck(ctx, userID, chatID, out.Damaged()); err != nil {
		return nil, err
	}
	return out, nil
}
