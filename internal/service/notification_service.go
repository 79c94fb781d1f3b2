package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/realtime"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

// События, которые получают клиенты по websocket.
const (
	EventMatchCreated   = "match.created"
	EventMatchUpdated   = "match.updated"
	EventListingDecided = "listing.moderated"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Notifier сохраняет событие и пушит его пользователю.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, data any)
}

// NotificationService хранит уведомления и рассылает их в реальном времени.
type NotificationService struct {
	repo      NotificationRepository
	publisher realtime.Publisher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository, publisher realtime.Publisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Notify сохраняет уведомление и публикует событие. Ошибки только логируются:
// уведомление никогда не отменяет основное действие.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, event string, data any) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"event":   event,
	})

	payload, err := json.Marshal(map[string]any{
		"event": event,
		"data":  data,
	})
	if err != nil {
		log.WithError(err).Error("notification service: marshal payload")
		return
	}

	if err := s.repo.Create(ctx, &models.Notification{UserID: userID, Payload: payload}); err != nil {
		log.WithError(err).Warn("notification service: не удалось сохранить уведомление")
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, userID, event, data); err != nil {
		log.WithError(err).Warn("notification service: не удалось отправить событие")
	}
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.List(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

// MarkAsRead отмечает уведомление прочитанным, чужие уведомления не видны.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(fmt.Errorf("notification service: count unread: %w", err))
	}
	return n, nil
}
