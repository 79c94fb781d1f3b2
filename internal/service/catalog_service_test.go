package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

type countingCatalogRepo struct {
	categoryCalls int
	stories       map[string]*models.SuccessStory
}

func (r *countingCatalogRepo) ListCategories(context.Context) ([]models.Category, error) {
	r.categoryCalls++
	return []models.Category{{Slug: "music", Name: "Music"}}, nil
}

func (r *countingCatalogRepo) ListClientLogos(context.Context) ([]models.ClientLogo, error) {
	return nil, nil
}

func (r *countingCatalogRepo) ListSuccessStories(context.Context) ([]models.SuccessStory, error) {
	return nil, nil
}

func (r *countingCatalogRepo) GetSuccessStory(_ context.Context, id uuid.UUID) (*models.SuccessStory, error) {
	for _, s := range r.stories {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrStoryNotFound
}

func (r *countingCatalogRepo) GetSuccessStoryBySlug(_ context.Context, slug string) (*models.SuccessStory, error) {
	if s, ok := r.stories[slug]; ok {
		return s, nil
	}
	return nil, repository.ErrStoryNotFound
}

func TestCatalogService_CachesCategories(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &countingCatalogRepo{}
	cache := NewCacheService(ctx)
	svc := NewCatalogService(repo, cache)

	for i := 0; i < 3; i++ {
		items, err := svc.Categories(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	}
	assert.Equal(t, 1, repo.categoryCalls)

	cache.InvalidateCatalog()
	_, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.categoryCalls)
}

func TestCatalogService_SuccessStory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	story := &models.SuccessStory{ID: uuid.New(), Slug: "acme-fest", Title: "Acme"}
	svc := NewCatalogService(&countingCatalogRepo{stories: map[string]*models.SuccessStory{story.Slug: story}}, NewCacheService(ctx))

	got, err := svc.SuccessStory(ctx, "acme-fest")
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.ID)

	got, err = svc.SuccessStory(ctx, story.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "acme-fest", got.Slug)

	_, err = svc.SuccessStory(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrStoryNotFound)
}
