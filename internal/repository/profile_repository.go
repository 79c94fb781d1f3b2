package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/repository/common"
)

// ErrProfileNotFound возвращается, если профиль отсутствует.
var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `user_id, user_type, email, contact_name, company_name, phone, phone_verified, website, bio,
	logo_url, location, is_verified, target_audience, social_media, details, created_at, updated_at`

// ProfileRepository работает с таблицей profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository создаёт экземпляр репозитория.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func jsonOrEmpty(v types.JSONText) types.JSONText {
	if len(v) == 0 {
		return types.JSONText("{}")
	}
	return v
}

func insertProfile(ctx context.Context, q sqlx.QueryerContext, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, user_type, email, contact_name, company_name, phone, website, bio, logo_url, location,
			target_audience, social_media, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING phone_verified, is_verified, created_at, updated_at
	`
	p.TargetAudience = jsonOrEmpty(p.TargetAudience)
	p.SocialMedia = jsonOrEmpty(p.SocialMedia)
	p.Details = jsonOrEmpty(p.Details)

	return q.QueryRowxContext(ctx, query,
		p.UserID, p.UserType, p.Email, p.ContactName, p.CompanyName, p.Phone, p.Website, p.Bio, p.LogoURL, p.Location,
		p.TargetAudience, p.SocialMedia, p.Details,
	).Scan(&p.PhoneVerified, &p.IsVerified, &p.CreatedAt, &p.UpdatedAt)
}

// Get возвращает профиль пользователя.
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repository: get %w", err)
	}
	return &profile, nil
}

// Update сохраняет редактируемые поля профиля. Телефон и флаги верификации здесь не меняются.
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET contact_name = $2,
			company_name = $3,
			website = $4,
			bio = $5,
			logo_url = $6,
			location = $7,
			target_audience = $8,
			social_media = $9,
			details = $10,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.UserID, p.ContactName, p.CompanyName, p.Website, p.Bio, p.LogoURL, p.Location,
		jsonOrEmpty(p.TargetAudience), jsonOrEmpty(p.SocialMedia), jsonOrEmpty(p.Details),
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("profile repository: update %w", err)
	}
	return nil
}

// SetPhoneVerified сохраняет подтверждённый номер телефона.
func (r *ProfileRepository) SetPhoneVerified(ctx context.Context, userID uuid.UUID, phone string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET phone = $2, phone_verified = TRUE, updated_at = NOW() WHERE user_id = $1`,
		userID, phone)
	if err != nil {
		return fmt.Errorf("profile repository: set phone verified %w", err)
	}
	return common.RequireAffected(result, ErrProfileNotFound)
}

// MergeSocialMedia добавляет ключ platform в JSON social_media.
func (r *ProfileRepository) MergeSocialMedia(ctx context.Context, userID uuid.UUID, platform string, data types.JSONText) (types.JSONText, error) {
	var merged types.JSONText
	query := `
		UPDATE profiles
		SET social_media = social_media || jsonb_build_object($2::text, $3::jsonb),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING social_media
	`
	if err := r.db.QueryRowxContext(ctx, query, userID, platform, data).Scan(&merged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repository: merge social media %w", err)
	}
	return merged, nil
}
