package valueobject

import "github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusRejected MatchStatus = "rejected"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusRejected:
		return true
	}
	return false
}

// IsActive: заявка ещё занимает пару бренд/объявление.
func (s MatchStatus) IsActive() bool {
	return s == MatchStatusPending || s == MatchStatusAccepted
}

// CanTransitionTo разрешает только одно решение из pending.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	return s == MatchStatusPending && (next == MatchStatusAccepted || next == MatchStatusRejected)
}

// NewMatchDecision принимает только итоговые статусы accepted/rejected.
func NewMatchDecision(status string) (MatchStatus, error) {
	s := MatchStatus(status)
	if s != MatchStatusAccepted && s != MatchStatusRejected {
		return "", apperror.New(apperror.ErrCodeValidation, "статус должен быть accepted или rejected")
	}
	return s, nil
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	return s == VerificationPending && (next == VerificationApproved || next == VerificationRejected)
}

func NewVerificationStatus(status string) (VerificationStatus, error) {
	s := VerificationStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус модерации")
	}
	return s, nil
}

type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingPaused ListingStatus = "paused"
)

func (s ListingStatus) IsValid() bool {
	return s == ListingActive || s == ListingPaused
}

func NewListingStatus(status string) (ListingStatus, error) {
	s := ListingStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "статус должен быть active или paused")
	}
	return s, nil
}

// ListingKind различает возможности организаторов и публикации инфлюенсеров.
type ListingKind string

const (
	ListingOpportunity ListingKind = "opportunity"
	ListingPost        ListingKind = "post"
)

func (k ListingKind) IsValid() bool {
	return k == ListingOpportunity || k == ListingPost
}

// Table возвращает имя таблицы для вида объявления.
func (k ListingKind) Table() string {
	if k == ListingPost {
		return "posts"
	}
	return "opportunities"
}

// MatchColumn возвращает колонку matches, ссылающуюся на объявление.
func (k ListingKind) MatchColumn() string {
	if k == ListingPost {
		return "post_id"
	}
	return "opportunity_id"
}
