package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// MatchedListings возвращает объявления, на которые у бренда есть активная заявка.
type MatchedListings interface {
	ActiveListingIDs(ctx context.Context, brandID uuid.UUID, kind valueobject.ListingKind) ([]uuid.UUID, error)
}

// DiscoveryService строит ленту для брендов.
type DiscoveryService struct {
	opportunities OpportunityRepository
	posts         PostRepository
	matches       MatchedListings
}

func NewDiscoveryService(opportunities OpportunityRepository, posts PostRepository, matches MatchedListings) *DiscoveryService {
	return &DiscoveryService{opportunities: opportunities, posts: posts, matches: matches}
}

// Opportunities одобренные активные возможности без уже лайкнутых и пропущенных.
func (s *DiscoveryService) Opportunities(ctx context.Context, actor Actor, filter models.FeedFilter, swiped []uuid.UUID) ([]models.Opportunity, error) {
	skip, err := s.prepare(ctx, actor, filter, valueobject.ListingOpportunity, swiped)
	if err != nil {
		return nil, err
	}

	items, err := s.opportunities.List(ctx, repository.FeedQuery(filter))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := make([]models.Opportunity, 0, len(items))
	for _, o := range items {
		if !skip[o.ID] {
			out = append(out, o)
		}
	}
	return out, nil
}

// Posts то же для публикаций инфлюенсеров.
func (s *DiscoveryService) Posts(ctx context.Context, actor Actor, filter models.FeedFilter, swiped []uuid.UUID) ([]models.Post, error) {
	skip, err := s.prepare(ctx, actor, filter, valueobject.ListingPost, swiped)
	if err != nil {
		return nil, err
	}

	items, err := s.posts.List(ctx, repository.FeedQuery(filter))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := make([]models.Post, 0, len(items))
	for _, p := range items {
		if !skip[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// prepare проверяет права и фильтр и собирает множество исключаемых id.
func (s *DiscoveryService) prepare(ctx context.Context, actor Actor, filter models.FeedFilter, kind valueobject.ListingKind, swiped []uuid.UUID) (map[uuid.UUID]bool, error) {
	if !actor.UserType.IsSponsor() {
		return nil, apperror.ErrSponsorOnly
	}
	if err := validation.ValidatePriceRange(filter.PriceMin, filter.PriceMax); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidateLength("search", filter.Search, 0, validation.MaxSearchLength); err != nil {
		return nil, apperror.Validation(err)
	}

	matched, err := s.matches.ActiveListingIDs(ctx, actor.ID, kind)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	skip := make(map[uuid.UUID]bool, len(matched)+len(swiped))
	for _, id := range matched {
		skip[id] = true
	}
	for _, id := range swiped {
		skip[id] = true
	}
	return skip, nil
}
