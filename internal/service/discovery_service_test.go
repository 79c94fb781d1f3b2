package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

func TestDiscoveryService_ExcludesMatchedAndSwiped(t *testing.T) {
	opportunities := new(mockOpportunityRepo)
	matches := new(mockMatchRepo)
	svc := NewDiscoveryService(opportunities, new(mockPostRepo), matches)

	brand := Actor{ID: uuid.New(), UserType: models.UserTypeAgency}
	matched, swiped, fresh := uuid.New(), uuid.New(), uuid.New()
	filter := models.FeedFilter{Location: "Berlin"}

	opportunities.On("List", mock.Anything, repository.FeedQuery(filter)).Return([]models.Opportunity{
		{ID: matched}, {ID: swiped}, {ID: fresh},
	}, nil)
	matches.On("ActiveListingIDs", mock.Anything, brand.ID, valueobject.ListingOpportunity).Return([]uuid.UUID{matched}, nil)

	items, err := svc.Opportunities(context.Background(), brand, filter, []uuid.UUID{swiped})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, fresh, items[0].ID)
}

func TestDiscoveryService_Posts(t *testing.T) {
	posts := new(mockPostRepo)
	matches := new(mockMatchRepo)
	svc := NewDiscoveryService(new(mockOpportunityRepo), posts, matches)

	brand := Actor{ID: uuid.New(), UserType: models.UserTypeBrand}
	matched, fresh := uuid.New(), uuid.New()

	posts.On("List", mock.Anything, repository.FeedQuery(models.FeedFilter{})).Return([]models.Post{{ID: matched}, {ID: fresh}}, nil)
	matches.On("ActiveListingIDs", mock.Anything, brand.ID, valueobject.ListingPost).Return([]uuid.UUID{matched}, nil)

	items, err := svc.Posts(context.Background(), brand, models.FeedFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, fresh, items[0].ID)
}

func TestDiscoveryService_Guards(t *testing.T) {
	svc := NewDiscoveryService(new(mockOpportunityRepo), new(mockPostRepo), new(mockMatchRepo))

	creator := Actor{ID: uuid.New(), UserType: models.UserTypeCreator}
	_, err := svc.Opportunities(context.Background(), creator, models.FeedFilter{}, nil)
	assert.ErrorIs(t, err, apperror.ErrSponsorOnly)

	lo, hi := 500.0, 100.0
	brand := Actor{ID: uuid.New(), UserType: models.UserTypeBrand}
	_, err = svc.Opportunities(context.Background(), brand, models.FeedFilter{PriceMin: &lo, PriceMax: &hi}, nil)
	assert.True(t, apperror.IsValidation(err))
}
