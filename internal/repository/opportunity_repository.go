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
	"github.com/ignatzorin/sponsorship-backend/internal/repository/common"
)

// ErrOpportunityNotFound возвращается, если возможность не найдена или принадлежит другому владельцу.
var ErrOpportunityNotFound = errors.New("opportunity not found")

// OpportunityRepository работает с таблицей opportunities.
type OpportunityRepository struct {
	db *sqlx.DB
}

// NewOpportunityRepository создаёт экземпляр репозитория.
func NewOpportunityRepository(db *sqlx.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

// Create сохраняет новую возможность в статусе pending.
func (r *OpportunityRepository) Create(ctx context.Context, o *models.Opportunity) error {
	query := `
		INSERT INTO opportunities (owner_id, category_id, title, description, location, ad_type, start_date, end_date,
			price_min, price_max, expected_attendance, media_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *
	`
	if o.MediaURLs == nil {
		o.MediaURLs = []string{}
	}
	if err := r.db.QueryRowxContext(ctx, query,
		o.OwnerID, o.CategoryID, o.Title, o.Description, o.Location, o.AdType, o.StartDate, o.EndDate,
		o.PriceMin, o.PriceMax, o.ExpectedAttendance, o.MediaURLs,
	).StructScan(o); err != nil {
		return fmt.Errorf("opportunity repository: create %w", err)
	}
	return nil
}

// GetByID возвращает возможность.
func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	o, err := common.GetByID[models.Opportunity](ctx, r.db, "opportunities", id, ErrOpportunityNotFound)
	if err != nil && !errors.Is(err, ErrOpportunityNotFound) {
		return nil, fmt.Errorf("opportunity repository: %w", err)
	}
	return o, err
}

// Update меняет содержимое и отправляет объявление на повторную модерацию.
func (r *OpportunityRepository) Update(ctx context.Context, o *models.Opportunity) error {
	query := `
		UPDATE opportunities
		SET category_id = $3,
			title = $4,
			description = $5,
			location = $6,
			ad_type = $7,
			start_date = $8,
			end_date = $9,
			price_min = $10,
			price_max = $11,
			expected_attendance = $12,
			media_urls = $13,
			verification_status = 'pending',
			is_verified = FALSE,
			rejection_reason = NULL,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING *
	`
	if o.MediaURLs == nil {
		o.MediaURLs = []string{}
	}
	err := r.db.QueryRowxContext(ctx, query,
		o.ID, o.OwnerID, o.CategoryID, o.Title, o.Description, o.Location, o.AdType, o.StartDate, o.EndDate,
		o.PriceMin, o.PriceMax, o.ExpectedAttendance, o.MediaURLs,
	).StructScan(o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOpportunityNotFound
		}
		return fmt.Errorf("opportunity repository: update %w", err)
	}
	return nil
}

// SetStatus ставит объявление на паузу или возобновляет его.
func (r *OpportunityRepository) SetStatus(ctx context.Context, id, ownerID uuid.UUID, status valueobject.ListingStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE opportunities SET status = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`,
		id, ownerID, status)
	if err != nil {
		return fmt.Errorf("opportunity repository: set status %w", err)
	}
	return common.RequireAffected(result, ErrOpportunityNotFound)
}

// Delete удаляет объявление владельца.
func (r *OpportunityRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("opportunity repository: delete %w", err)
	}
	return common.RequireAffected(result, ErrOpportunityNotFound)
}

// List возвращает объявления по параметрам выборки.
func (r *OpportunityRepository) List(ctx context.Context, q ListingQuery) ([]models.Opportunity, error) {
	query, args, err := buildListingSelect("opportunities", q, false).ToSql()
	if err != nil {
		return nil, fmt.Errorf("opportunity repository: build list query %w", err)
	}

	items := []models.Opportunity{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("opportunity repository: list %w", err)
	}
	return items, nil
}
