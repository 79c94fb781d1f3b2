package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// ModerationRepository условная смена статуса модерации.
type ModerationRepository interface {
	GetState(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID) (*models.ListingState, error)
	Moderate(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID, decision valueobject.VerificationStatus, reason *string) (*models.ListingState, error)
}

// ModerationService одобрение и отклонение объявлений администратором.
type ModerationService struct {
	listings      ModerationRepository
	opportunities OpportunityRepository
	posts         PostRepository
	notifier      Notifier
}

func NewModerationService(listings ModerationRepository, opportunities OpportunityRepository, posts PostRepository, notifier Notifier) *ModerationService {
	return &ModerationService{
		listings:      listings,
		opportunities: opportunities,
		posts:         posts,
		notifier:      notifier,
	}
}

// Approve одобряет pending объявление.
func (s *ModerationService) Approve(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID) (*models.ListingState, error) {
	return s.moderate(ctx, kind, id, valueobject.VerificationApproved, nil)
}

// Reject отклоняет pending объявление. Пустая причина отсекается до обращения к базе.
func (s *ModerationService) Reject(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID, reason string) (*models.ListingState, error) {
	if err := validation.ValidateRejectionReason(reason); err != nil {
		return nil, apperror.Validation(err)
	}
	trimmed := strings.TrimSpace(reason)
	return s.moderate(ctx, kind, id, valueobject.VerificationRejected, &trimmed)
}

func (s *ModerationService) moderate(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID, decision valueobject.VerificationStatus, reason *string) (*models.ListingState, error) {
	if !kind.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный вид объявления")
	}

	state, err := s.listings.Moderate(ctx, kind, id, decision, reason)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotPending) {
			current, getErr := s.listings.GetState(ctx, kind, id)
			if errors.Is(getErr, repository.ErrListingNotFound) {
				return nil, listingNotFound(kind)
			}
			if getErr != nil {
				return nil, apperror.Internal(getErr)
			}
			return nil, apperror.ListingNotPending(string(current.VerificationStatus))
		}
		return nil, apperror.Internal(err)
	}

	if err := verifyModeration(state, decision, reason); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"listing_id": id,
			"kind":       kind,
			"error":      err.Error(),
		}).Error("moderation service: строка после обновления не совпадает с решением")
		return nil, apperror.Internal(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"listing_id": id,
		"kind":       kind,
		"decision":   decision,
	}).Info("moderation service: объявление обработано")

	s.notifier.Notify(ctx, state.OwnerID, EventListingDecided, state)
	return state, nil
}

// verifyModeration проверяет строку, которую вернул UPDATE.
func verifyModeration(state *models.ListingState, decision valueobject.VerificationStatus, reason *string) error {
	if state.VerificationStatus != decision {
		return fmt.Errorf("moderation: ожидался статус %s, получен %s", decision, state.VerificationStatus)
	}
	switch decision {
	case valueobject.VerificationApproved:
		if !state.IsVerified || state.RejectionReason != nil {
			return fmt.Errorf("moderation: одобренное объявление должно быть is_verified без причины отклонения")
		}
	case valueobject.VerificationRejected:
		if state.IsVerified {
			return fmt.Errorf("moderation: отклонённое объявление не может быть is_verified")
		}
		if state.RejectionReason == nil || reason == nil || *state.RejectionReason != *reason {
			return fmt.Errorf("moderation: причина отклонения не сохранена")
		}
	}
	return nil
}

// Opportunities очередь модерации; пустой статус означает все.
func (s *ModerationService) Opportunities(ctx context.Context, status string) ([]models.Opportunity, error) {
	q, err := moderationQuery(status)
	if err != nil {
		return nil, err
	}
	items, err := s.opportunities.List(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *ModerationService) Posts(ctx context.Context, status string) ([]models.Post, error) {
	q, err := moderationQuery(status)
	if err != nil {
		return nil, err
	}
	items, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func moderationQuery(status string) (repository.ListingQuery, error) {
	if status == "" {
		return repository.ListingQuery{}, nil
	}
	st, err := valueobject.NewVerificationStatus(status)
	if err != nil {
		return repository.ListingQuery{}, err
	}
	return repository.ListingQuery{VerificationStatus: st}, nil
}
