package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/repository/common"
)

// ErrStoryNotFound возвращается, если история успеха не найдена.
var ErrStoryNotFound = errors.New("success story not found")

// CatalogRepository отдаёт справочники и маркетинговый контент.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCategories возвращает все категории.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT id, slug, name, description, icon, sort_order, created_at
		FROM categories ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list categories %w", err)
	}
	return categories, nil
}

// ListClientLogos возвращает логотипы клиентов для лендинга.
func (r *CatalogRepository) ListClientLogos(ctx context.Context) ([]models.ClientLogo, error) {
	logos := []models.ClientLogo{}
	err := r.db.SelectContext(ctx, &logos, `
		SELECT id, name, logo_url, website, sort_order, created_at
		FROM client_logos ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list client logos %w", err)
	}
	return logos, nil
}

// ListSuccessStories возвращает опубликованные истории, свежие первыми.
func (r *CatalogRepository) ListSuccessStories(ctx context.Context) ([]models.SuccessStory, error) {
	stories := []models.SuccessStory{}
	err := r.db.SelectContext(ctx, &stories, `
		SELECT * FROM success_stories
		WHERE published_at <= NOW()
		ORDER BY published_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list success stories %w", err)
	}
	return stories, nil
}

// GetSuccessStory ищет историю по id.
func (r *CatalogRepository) GetSuccessStory(ctx context.Context, id uuid.UUID) (*models.SuccessStory, error) {
	story, err := common.GetByID[models.SuccessStory](ctx, r.db, "success_stories", id, ErrStoryNotFound)
	if err != nil && !errors.Is(err, ErrStoryNotFound) {
		return nil, fmt.Errorf("catalog repository: %w", err)
	}
	return story, err
}

// GetSuccessStoryBySlug ищет историю по slug.
func (r *CatalogRepository) GetSuccessStoryBySlug(ctx context.Context, slug string) (*models.SuccessStory, error) {
	story, err := common.GetByField[models.SuccessStory](ctx, r.db, "success_stories", "slug", slug, ErrStoryNotFound)
	if err != nil && !errors.Is(err, ErrStoryNotFound) {
		return nil, fmt.Errorf("catalog repository: %w", err)
	}
	return story, err
}

// SeedContent добавляет отсутствующие записи, существующие не трогает.
func (r *CatalogRepository) SeedContent(ctx context.Context, categories []models.Category, logos []models.ClientLogo, stories []models.SuccessStory) (int64, error) {
	var inserted int64
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, c := range categories {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO categories (slug, name, description, icon, sort_order)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (slug) DO NOTHING
			`, c.Slug, c.Name, c.Description, c.Icon, c.SortOrder)
			if err != nil {
				return fmt.Errorf("seed category %s: %w", c.Slug, err)
			}
			inserted += affected(res)
		}

		for _, l := range logos {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO client_logos (name, logo_url, website, sort_order)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (name) DO NOTHING
			`, l.Name, l.LogoURL, l.Website, l.SortOrder)
			if err != nil {
				return fmt.Errorf("seed client logo %s: %w", l.Name, err)
			}
			inserted += affected(res)
		}

		for _, s := range stories {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO success_stories (slug, title, brand_name, partner_name, summary, body, image_url, metrics, published_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
				ON CONFLICT (slug) DO NOTHING
			`, s.Slug, s.Title, s.BrandName, s.PartnerName, s.Summary, s.Body, s.ImageURL, jsonOrEmpty(s.Metrics), nullTime(s.PublishedAt))
			if err != nil {
				return fmt.Errorf("seed success story %s: %w", s.Slug, err)
			}
			inserted += affected(res)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("catalog repository: seed %w", err)
	}
	return inserted, nil
}

func affected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
