package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/enrichment"
	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// ProfileRepository операции с профилями.
type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	SetPhoneVerified(ctx context.Context, userID uuid.UUID, phone string) error
	MergeSocialMedia(ctx context.Context, userID uuid.UUID, platform string, data types.JSONText) (types.JSONText, error)
}

// SocialLookup получает публичные метаданные аккаунта.
type SocialLookup interface {
	Lookup(ctx context.Context, platform, handle string) (*enrichment.SocialProfile, error)
}

// ProfileService управляет профилями всех типов.
type ProfileService struct {
	repo     ProfileRepository
	enricher SocialLookup
}

func NewProfileService(repo ProfileRepository, enricher SocialLookup) *ProfileService {
	return &ProfileService{repo: repo, enricher: enricher}
}

// UpdateProfileInput частичное обновление; nil означает «не менять».
type UpdateProfileInput struct {
	ContactName    *string         `json:"contact_name"`
	CompanyName    *string         `json:"company_name"`
	Website        *string         `json:"website"`
	Bio            *string         `json:"bio"`
	LogoURL        *string         `json:"logo_url"`
	Location       *string         `json:"location"`
	TargetAudience json.RawMessage `json:"target_audience"`
	SocialMedia    json.RawMessage `json:"social_media"`
	Details        json.RawMessage `json:"details"`
}

// ProfileView профиль с разобранным вариантом.
type ProfileView struct {
	*models.Profile
	Variant models.ProfileVariant `json:"variant,omitempty"`
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfileView(profile), nil
}

// GetPublic возвращает профиль без контактов.
func (s *ProfileService) GetPublic(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfileView(profile.Public()), nil
}

// Update проверяет поля и детали варианта и сохраняет профиль.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*ProfileView, error) {
	if err := validateProfileInput(in); err != nil {
		return nil, err
	}

	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.ContactName != nil {
		profile.ContactName = strings.TrimSpace(*in.ContactName)
	}
	if in.CompanyName != nil {
		profile.CompanyName = trimmedOrNil(in.CompanyName)
	}
	if in.Website != nil {
		profile.Website = trimmedOrNil(in.Website)
	}
	if in.Bio != nil {
		profile.Bio = trimmedOrNil(in.Bio)
	}
	if in.LogoURL != nil {
		profile.LogoURL = trimmedOrNil(in.LogoURL)
	}
	if in.Location != nil {
		profile.Location = trimmedOrNil(in.Location)
	}
	if len(in.TargetAudience) > 0 {
		profile.TargetAudience = types.JSONText(in.TargetAudience)
	}
	if len(in.SocialMedia) > 0 {
		profile.SocialMedia = types.JSONText(in.SocialMedia)
	}
	if len(in.Details) > 0 {
		variant, err := models.DecodeVariant(profile.UserType, in.Details)
		if err != nil {
			return nil, apperror.Validation(err)
		}
		if err := variant.Validate(); err != nil {
			return nil, apperror.Validation(err)
		}
		// сохраняем нормализованный вариант, лишние ключи отбрасываются
		raw, err := json.Marshal(variant)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		profile.Details = types.JSONText(raw)
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, apperror.Internal(err)
	}
	return newProfileView(profile), nil
}

// Enrich подтягивает публичные данные соцсети и добавляет их в social_media.
func (s *ProfileService) Enrich(ctx context.Context, userID uuid.UUID, platform, handle string) (types.JSONText, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if !enrichment.SupportedPlatforms[platform] {
		return nil, apperror.New(apperror.ErrCodeValidation, "неподдерживаемая платформа")
	}
	if enrichment.NormalizeHandle(handle) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "handle обязателен")
	}

	social, err := s.enricher.Lookup(ctx, platform, handle)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id":  userID,
			"platform": platform,
			"error":    err.Error(),
		}).Warn("profile service: обогащение профиля не удалось")
		if errors.Is(err, enrichment.ErrNotConfigured) {
			return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "сервис метаданных не настроен")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось получить данные соцсети")
	}

	raw, err := json.Marshal(social)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	merged, err := s.repo.MergeSocialMedia(ctx, userID, platform, types.JSONText(raw))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, apperror.Internal(err)
	}
	return merged, nil
}

// MarkPhoneVerified сохраняет подтверждённый телефон.
func (s *ProfileService) MarkPhoneVerified(ctx context.Context, userID uuid.UUID, phone string) error {
	if err := s.repo.SetPhoneVerified(ctx, userID, phone); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return apperror.ErrProfileNotFound
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *ProfileService) load(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

func newProfileView(p *models.Profile) *ProfileView {
	view := &ProfileView{Profile: p}
	// битые детали не мешают отдать профиль
	if variant, err := p.Variant(); err == nil {
		view.Variant = variant
	}
	return view
}

func validateProfileInput(in UpdateProfileInput) error {
	if in.ContactName != nil {
		if err := validation.ValidateContactName(*in.ContactName); err != nil {
			return apperror.Validation(err)
		}
	}
	checks := []error{
		validation.ValidateOptionalText("company_name", in.CompanyName, validation.MaxCompanyNameLength),
		validation.ValidateOptionalText("bio", in.Bio, validation.MaxBioLength),
		validation.ValidateOptionalText("location", in.Location, validation.MaxLocationLength),
		validation.ValidateOptionalURL("website", in.Website),
		validation.ValidateOptionalURL("logo_url", in.LogoURL),
	}
	for _, err := range checks {
		if err != nil {
			return apperror.Validation(err)
		}
	}
	for name, raw := range map[string]json.RawMessage{
		"target_audience": in.TargetAudience,
		"social_media":    in.SocialMedia,
	} {
		if len(raw) > 0 && !isJSONObject(raw) {
			return apperror.New(apperror.ErrCodeValidation, name+" должен быть JSON объектом")
		}
	}
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]any
	return json.Unmarshal(raw, &obj) == nil && obj != nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
