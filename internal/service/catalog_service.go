package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

// CatalogRepository справочники и контент лендинга.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListClientLogos(ctx context.Context) ([]models.ClientLogo, error)
	ListSuccessStories(ctx context.Context) ([]models.SuccessStory, error)
	GetSuccessStory(ctx context.Context, id uuid.UUID) (*models.SuccessStory, error)
	GetSuccessStoryBySlug(ctx context.Context, slug string) (*models.SuccessStory, error)
}

// CatalogService отдаёт справочники через кэш.
type CatalogService struct {
	repo  CatalogRepository
	cache *CacheService
}

func NewCatalogService(repo CatalogRepository, cache *CacheService) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	v, err := s.cache.GetOrSet(ctx, cacheKeyCategories, catalogCacheTTL, func() (interface{}, error) {
		return s.repo.ListCategories(ctx)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return v.([]models.Category), nil
}

func (s *CatalogService) ClientLogos(ctx context.Context) ([]models.ClientLogo, error) {
	v, err := s.cache.GetOrSet(ctx, cacheKeyClientLogos, catalogCacheTTL, func() (interface{}, error) {
		return s.repo.ListClientLogos(ctx)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return v.([]models.ClientLogo), nil
}

func (s *CatalogService) SuccessStories(ctx context.Context) ([]models.SuccessStory, error) {
	v, err := s.cache.GetOrSet(ctx, cacheKeyStories, catalogCacheTTL, func() (interface{}, error) {
		return s.repo.ListSuccessStories(ctx)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return v.([]models.SuccessStory), nil
}

// SuccessStory ищет историю по id или slug.
func (s *CatalogService) SuccessStory(ctx context.Context, idOrSlug string) (*models.SuccessStory, error) {
	v, err := s.cache.GetOrSet(ctx, SuccessStoryCacheKey(idOrSlug), catalogCacheTTL, func() (interface{}, error) {
		if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
			return s.repo.GetSuccessStory(ctx, id)
		}
		return s.repo.GetSuccessStoryBySlug(ctx, idOrSlug)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return nil, apperror.ErrStoryNotFound
		}
		return nil, apperror.Internal(err)
	}
	return v.(*models.SuccessStory), nil
}
