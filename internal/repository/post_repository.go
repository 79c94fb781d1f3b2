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

// ErrPostNotFound возвращается, если публикация не найдена или принадлежит другому владельцу.
var ErrPostNotFound = errors.New("post not found")

// PostRepository работает с таблицей posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository создаёт экземпляр репозитория.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	query := `
		INSERT INTO posts (owner_id, category_id, title, description, location, ad_type, video_url, hashtags,
			estimated_reach, price_min, price_max, media_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *
	`
	normalizePostArrays(p)
	if err := r.db.QueryRowxContext(ctx, query,
		p.OwnerID, p.CategoryID, p.Title, p.Description, p.Location, p.AdType, p.VideoURL, p.Hashtags,
		p.EstimatedReach, p.PriceMin, p.PriceMax, p.MediaURLs,
	).StructScan(p); err != nil {
		return fmt.Errorf("post repository: create %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := common.GetByID[models.Post](ctx, r.db, "posts", id, ErrPostNotFound)
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		return nil, fmt.Errorf("post repository: %w", err)
	}
	return p, err
}

// Update меняет содержимое и сбрасывает модерацию в pending.
func (r *PostRepository) Update(ctx context.Context, p *models.Post) error {
	query := `
		UPDATE posts
		SET category_id = $3,
			title = $4,
			description = $5,
			location = $6,
			ad_type = $7,
			video_url = $8,
			hashtags = $9,
			estimated_reach = $10,
			price_min = $11,
			price_max = $12,
			media_urls = $13,
			verification_status = 'pending',
			is_verified = FALSE,
			rejection_reason = NULL,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING *
	`
	normalizePostArrays(p)
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.OwnerID, p.CategoryID, p.Title, p.Description, p.Location, p.AdType, p.VideoURL, p.Hashtags,
		p.EstimatedReach, p.PriceMin, p.PriceMax, p.MediaURLs,
	).StructScan(p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return fmt.Errorf("post repository: update %w", err)
	}
	return nil
}

func (r *PostRepository) SetStatus(ctx context.Context, id, ownerID uuid.UUID, status valueobject.ListingStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`,
		id, ownerID, status)
	if err != nil {
		return fmt.Errorf("post repository: set status %w", err)
	}
	return common.RequireAffected(result, ErrPostNotFound)
}

func (r *PostRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("post repository: delete %w", err)
	}
	return common.RequireAffected(result, ErrPostNotFound)
}

// List ищет также по хэштегам.
func (r *PostRepository) List(ctx context.Context, q ListingQuery) ([]models.Post, error) {
	query, args, err := buildListingSelect("posts", q, true).ToSql()
	if err != nil {
		return nil, fmt.Errorf("post repository: build list query %w", err)
	}

	items := []models.Post{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("post repository: list %w", err)
	}
	return items, nil
}

func normalizePostArrays(p *models.Post) {
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
}
