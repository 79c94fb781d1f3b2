package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// OpportunityRepository хранилище возможностей.
type OpportunityRepository interface {
	Create(ctx context.Context, o *models.Opportunity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	Update(ctx context.Context, o *models.Opportunity) error
	SetStatus(ctx context.Context, id, ownerID uuid.UUID, status valueobject.ListingStatus) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, q repository.ListingQuery) ([]models.Opportunity, error)
}

// PostRepository хранилище публикаций.
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	SetStatus(ctx context.Context, id, ownerID uuid.UUID, status valueobject.ListingStatus) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, q repository.ListingQuery) ([]models.Post, error)
}

// Actor текущий пользователь из токена.
type Actor struct {
	ID       uuid.UUID
	UserType models.UserType
}

// OpportunityInput поля возможности от создателя или организатора.
type OpportunityInput struct {
	CategoryID         *uuid.UUID `json:"category_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Location           *string    `json:"location"`
	AdType             *string    `json:"ad_type"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	PriceMin           *float64   `json:"price_min"`
	PriceMax           *float64   `json:"price_max"`
	ExpectedAttendance *int       `json:"expected_attendance"`
	MediaURLs          []string   `json:"media_urls"`
}

// PostInput поля публикации инфлюенсера.
type PostInput struct {
	CategoryID     *uuid.UUID `json:"category_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       *string    `json:"location"`
	AdType         *string    `json:"ad_type"`
	VideoURL       *string    `json:"video_url"`
	Hashtags       []string   `json:"hashtags"`
	EstimatedReach *int       `json:"estimated_reach"`
	PriceMin       *float64   `json:"price_min"`
	PriceMax       *float64   `json:"price_max"`
	MediaURLs      []string   `json:"media_urls"`
}

// ListingService управляет объявлениями владельцев.
type ListingService struct {
	opportunities OpportunityRepository
	posts         PostRepository
}

func NewListingService(opportunities OpportunityRepository, posts PostRepository) *ListingService {
	return &ListingService{opportunities: opportunities, posts: posts}
}

// CreateOpportunity создаёт возможность в статусе active/pending.
func (s *ListingService) CreateOpportunity(ctx context.Context, actor Actor, in OpportunityInput) (*models.Opportunity, error) {
	if !actor.UserType.OwnsOpportunities() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "возможности публикуют только создатели и организаторы")
	}
	if err := validateOpportunityInput(in); err != nil {
		return nil, err
	}

	o := &models.Opportunity{OwnerID: actor.ID}
	applyOpportunityInput(o, in)
	if err := s.opportunities.Create(ctx, o); err != nil {
		return nil, apperror.Internal(err)
	}
	return o, nil
}

// UpdateOpportunity меняет содержимое и возвращает объявление на модерацию.
func (s *ListingService) UpdateOpportunity(ctx context.Context, actor Actor, id uuid.UUID, in OpportunityInput) (*models.Opportunity, error) {
	if err := validateOpportunityInput(in); err != nil {
		return nil, err
	}

	o := &models.Opportunity{ID: id, OwnerID: actor.ID}
	applyOpportunityInput(o, in)
	if err := s.opportunities.Update(ctx, o); err != nil {
		return nil, mapOpportunityErr(err)
	}
	return o, nil
}

// GetOpportunity: владелец и админ видят объявление всегда, остальные только видимое.
func (s *ListingService) GetOpportunity(ctx context.Context, actor Actor, id uuid.UUID) (*models.Opportunity, error) {
	o, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return nil, mapOpportunityErr(err)
	}
	if o.OwnerID == actor.ID || actor.UserType == models.UserTypeAdmin {
		return o, nil
	}
	if o.VerificationStatus != valueobject.VerificationApproved || o.Status != valueobject.ListingActive {
		return nil, apperror.ErrOpportunityNotFound
	}
	return o, nil
}

func (s *ListingService) SetOpportunityStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) error {
	st, err := valueobject.NewListingStatus(status)
	if err != nil {
		return err
	}
	if err := s.opportunities.SetStatus(ctx, id, actor.ID, st); err != nil {
		return mapOpportunityErr(err)
	}
	return nil
}

func (s *ListingService) DeleteOpportunity(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.opportunities.Delete(ctx, id, actor.ID); err != nil {
		return mapOpportunityErr(err)
	}
	return nil
}

// MyOpportunities объявления владельца вместе с причинами отклонения.
func (s *ListingService) MyOpportunities(ctx context.Context, actor Actor) ([]models.Opportunity, error) {
	items, err := s.opportunities.List(ctx, repository.ListingQuery{OwnerID: &actor.ID})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *ListingService) CreatePost(ctx context.Context, actor Actor, in PostInput) (*models.Post, error) {
	if !actor.UserType.OwnsPosts() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "публикации создают только инфлюенсеры")
	}
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	p := &models.Post{OwnerID: actor.ID}
	applyPostInput(p, in)
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err)
	}
	return p, nil
}

func (s *ListingService) UpdatePost(ctx context.Context, actor Actor, id uuid.UUID, in PostInput) (*models.Post, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	p := &models.Post{ID: id, OwnerID: actor.ID}
	applyPostInput(p, in)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, mapPostErr(err)
	}
	return p, nil
}

func (s *ListingService) GetPost(ctx context.Context, actor Actor, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}
	if p.OwnerID == actor.ID || actor.UserType == models.UserTypeAdmin {
		return p, nil
	}
	if p.VerificationStatus != valueobject.VerificationApproved || p.Status != valueobject.ListingActive {
		return nil, apperror.ErrPostNotFound
	}
	return p, nil
}

func (s *ListingService) SetPostStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) error {
	st, err := valueobject.NewListingStatus(status)
	if err != nil {
		return err
	}
	if err := s.posts.SetStatus(ctx, id, actor.ID, st); err != nil {
		return mapPostErr(err)
	}
	return nil
}

func (s *ListingService) DeletePost(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.posts.Delete(ctx, id, actor.ID); err != nil {
		return mapPostErr(err)
	}
	return nil
}

func (s *ListingService) MyPosts(ctx context.Context, actor Actor) ([]models.Post, error) {
	items, err := s.posts.List(ctx, repository.ListingQuery{OwnerID: &actor.ID})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func validateCommonListing(title, description string, location *string, priceMin, priceMax *float64, mediaURLs []string) error {
	checks := []error{
		validation.ValidateListingTitle(title),
		validation.ValidateListingDescription(description),
		validation.ValidateOptionalText("location", location, validation.MaxLocationLength),
		validation.ValidatePriceRange(priceMin, priceMax),
		validation.ValidateMediaURLs(mediaURLs),
	}
	for _, err := range checks {
		if err != nil {
			return apperror.Validation(err)
		}
	}
	return nil
}

func validateOpportunityInput(in OpportunityInput) error {
	if err := validateCommonListing(in.Title, in.Description, in.Location, in.PriceMin, in.PriceMax, in.MediaURLs); err != nil {
		return err
	}
	if err := validation.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return apperror.Validation(err)
	}
	if in.ExpectedAttendance != nil && *in.ExpectedAttendance < 0 {
		return apperror.New(apperror.ErrCodeValidation, "expected_attendance не может быть отрицательным")
	}
	return nil
}

func validatePostInput(in PostInput) error {
	if err := validateCommonListing(in.Title, in.Description, in.Location, in.PriceMin, in.PriceMax, in.MediaURLs); err != nil {
		return err
	}
	if err := validation.ValidateOptionalURL("video_url", in.VideoURL); err != nil {
		return apperror.Validation(err)
	}
	if err := validation.ValidateHashtags(in.Hashtags); err != nil {
		return apperror.Validation(err)
	}
	if in.EstimatedReach != nil && *in.EstimatedReach < 0 {
		return apperror.New(apperror.ErrCodeValidation, "estimated_reach не может быть отрицательным")
	}
	return nil
}

func applyOpportunityInput(o *models.Opportunity, in OpportunityInput) {
	o.CategoryID = in.CategoryID
	o.Title = strings.TrimSpace(in.Title)
	o.Description = strings.TrimSpace(in.Description)
	o.Location = trimmedOrNil(in.Location)
	o.AdType = trimmedOrNil(in.AdType)
	o.StartDate = in.StartDate
	o.EndDate = in.EndDate
	o.PriceMin = in.PriceMin
	o.PriceMax = in.PriceMax
	o.ExpectedAttendance = in.ExpectedAttendance
	o.MediaURLs = pq.StringArray(trimAll(in.MediaURLs))
}

func applyPostInput(p *models.Post, in PostInput) {
	p.CategoryID = in.CategoryID
	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Location = trimmedOrNil(in.Location)
	p.AdType = trimmedOrNil(in.AdType)
	p.VideoURL = trimmedOrNil(in.VideoURL)
	p.Hashtags = pq.StringArray(validation.NormalizeHashtags(in.Hashtags))
	p.EstimatedReach = in.EstimatedReach
	p.PriceMin = in.PriceMin
	p.PriceMax = in.PriceMax
	p.MediaURLs = pq.StringArray(trimAll(in.MediaURLs))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func mapOpportunityErr(err error) error {
	if errors.Is(err, repository.ErrOpportunityNotFound) {
		return apperror.ErrOpportunityNotFound
	}
	return apperror.Internal(err)
}

func mapPostErr(err error) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return apperror.ErrPostNotFound
	}
	return apperror.Internal(err)
}
