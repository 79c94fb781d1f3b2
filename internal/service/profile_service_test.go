package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/enrichment"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

type memoryProfileRepo struct {
	profiles map[uuid.UUID]*models.Profile
	updates  int
}

func (r *memoryProfileRepo) Get(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProfileRepo) Update(_ context.Context, p *models.Profile) error {
	if _, ok := r.profiles[p.UserID]; !ok {
		return repository.ErrProfileNotFound
	}
	r.updates++
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *memoryProfileRepo) SetPhoneVerified(_ context.Context, userID uuid.UUID, phone string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Phone = &phone
	p.PhoneVerified = true
	return nil
}

func (r *memoryProfileRepo) MergeSocialMedia(_ context.Context, userID uuid.UUID, platform string, data types.JSONText) (types.JSONText, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	social := map[string]json.RawMessage{}
	if len(p.SocialMedia) > 0 {
		if err := json.Unmarshal(p.SocialMedia, &social); err != nil {
			return nil, err
		}
	}
	social[platform] = json.RawMessage(data)
	raw, err := json.Marshal(social)
	if err != nil {
		return nil, err
	}
	p.SocialMedia = types.JSONText(raw)
	return p.SocialMedia, nil
}

type stubLookup struct {
	profile *enrichment.SocialProfile
	err     error
	calls   int
}

func (s *stubLookup) Lookup(_ context.Context, platform, handle string) (*enrichment.SocialProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func newBrandProfile() (*memoryProfileRepo, uuid.UUID) {
	id := uuid.New()
	phone := "+15551234567"
	repo := &memoryProfileRepo{profiles: map[uuid.UUID]*models.Profile{
		id: {
			UserID:      id,
			UserType:    models.UserTypeBrand,
			Email:       "brand@example.com",
			ContactName: "Анна",
			Phone:       &phone,
			Details:     types.JSONText(`{"industry":"beverages"}`),
		},
	}}
	return repo, id
}

func TestProfileService_GetPublicHidesContacts(t *testing.T) {
	repo, id := newBrandProfile()
	svc := NewProfileService(repo, &stubLookup{})

	view, err := svc.GetPublic(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, view.Email)
	assert.Nil(t, view.Phone)
	assert.Equal(t, models.BrandProfile{Industry: "beverages"}, view.Variant)

	own, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "brand@example.com", own.Email)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrProfileNotFound)
}

func TestProfileService_UpdateVariant(t *testing.T) {
	repo, id := newBrandProfile()
	svc := NewProfileService(repo, &stubLookup{})

	website := " https://brand.example.com "
	view, err := svc.Update(context.Background(), id, UpdateProfileInput{
		Website: &website,
		Details: json.RawMessage(`{"industry":"snacks","annual_budget":5000,"unknown":"x"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://brand.example.com", *view.Website)
	assert.JSONEq(t, `{"industry":"snacks","annual_budget":5000}`, string(view.Details))
	assert.Equal(t, 1, repo.updates)
}

func TestProfileService_UpdateValidation(t *testing.T) {
	repo, id := newBrandProfile()
	svc := NewProfileService(repo, &stubLookup{})

	cases := []UpdateProfileInput{
		{Details: json.RawMessage(`{"industry":""}`)},
		{Details: json.RawMessage(`{"industry":"x","annual_budget":-1}`)},
		{SocialMedia: json.RawMessage(`[1,2]`)},
	}
	for _, in := range cases {
		_, err := svc.Update(context.Background(), id, in)
		assert.True(t, apperror.IsValidation(err))
	}

	bad := "ftp://brand.example.com"
	_, err := svc.Update(context.Background(), id, UpdateProfileInput{Website: &bad})
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, repo.updates)
}

func TestProfileService_Enrich(t *testing.T) {
	repo, id := newBrandProfile()
	lookup := &stubLookup{profile: &enrichment.SocialProfile{Platform: "instagram", Handle: "brand", Followers: 1200}}
	svc := NewProfileService(repo, lookup)

	merged, err := svc.Enrich(context.Background(), id, "Instagram", "@brand")
	require.NoError(t, err)

	var social map[string]map[string]any
	require.NoError(t, json.Unmarshal(merged, &social))
	assert.Equal(t, float64(1200), social["instagram"]["followers"])
}

func TestProfileService_EnrichErrors(t *testing.T) {
	repo, id := newBrandProfile()
	lookup := &stubLookup{err: errors.New("boom")}
	svc := NewProfileService(repo, lookup)

	_, err := svc.Enrich(context.Background(), id, "myspace", "brand")
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, lookup.calls)

	_, err = svc.Enrich(context.Background(), id, "tiktok", "brand")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 502, appErr.HTTPStatus)
}

func TestProfileService_MarkPhoneVerified(t *testing.T) {
	repo, id := newBrandProfile()
	svc := NewProfileService(repo, &stubLookup{})

	require.NoError(t, svc.MarkPhoneVerified(context.Background(), id, "+15550000000"))
	assert.True(t, repo.profiles[id].PhoneVerified)
	assert.ErrorIs(t, svc.MarkPhoneVerified(context.Background(), uuid.New(), "+15550000000"), apperror.ErrProfileNotFound)
}
