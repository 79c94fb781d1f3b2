package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
)

var (
	// ErrListingNotFound возвращается, если объявления нет ни в одной из таблиц.
	ErrListingNotFound = errors.New("listing not found")
	// ErrListingNotPending возвращается, если условное обновление модерации не нашло pending строку.
	ErrListingNotPending = errors.New("listing is not pending")
)

// ListingRepository даёт общий доступ к состоянию обоих видов объявлений.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository создаёт экземпляр репозитория.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func stateColumns(kind valueobject.ListingKind) string {
	return fmt.Sprintf(`id, '%s' AS kind, owner_id, title, status, verification_status, is_verified, rejection_reason`, kind)
}

// GetState возвращает статусные поля объявления.
func (r *ListingRepository) GetState(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID) (*models.ListingState, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("listing repository: unknown kind %q", kind)
	}

	var state models.ListingState
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, stateColumns(kind), kind.Table())
	if err := r.db.GetContext(ctx, &state, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("listing repository: get state %w", err)
	}
	return &state, nil
}

// Moderate переводит pending объявление в approved или rejected одним условным UPDATE.
// Если строка уже не pending, ничего не меняется и возвращается ErrListingNotPending.
func (r *ListingRepository) Moderate(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID, decision valueobject.VerificationStatus, reason *string) (*models.ListingState, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("listing repository: unknown kind %q", kind)
	}
	if !valueobject.VerificationPending.CanTransitionTo(decision) {
		return nil, fmt.Errorf("listing repository: invalid decision %q", decision)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET verification_status = $2,
			is_verified = ($2::text = 'approved'),
			rejection_reason = $3,
			updated_at = NOW()
		WHERE id = $1 AND verification_status = 'pending'
		RETURNING %s
	`, kind.Table(), stateColumns(kind))

	if decision == valueobject.VerificationApproved {
		reason = nil
	}

	var state models.ListingState
	if err := r.db.QueryRowxContext(ctx, query, id, string(decision), reason).StructScan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotPending
		}
		return nil, fmt.Errorf("listing repository: moderate %w", err)
	}
	return &state, nil
}
