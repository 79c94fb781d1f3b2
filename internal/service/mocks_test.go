package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/email"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/twilio"
)

type mockMatchRepo struct {
	mock.Mock
}

func (m *mockMatchRepo) Create(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchRepo) GetView(ctx context.Context, id uuid.UUID) (*models.MatchView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchView), args.Error(1)
}

func (m *mockMatchRepo) DecideIfPending(ctx context.Context, id uuid.UUID, status valueobject.MatchStatus) (*models.Match, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchRepo) SetMeeting(ctx context.Context, id uuid.UUID, link *string, at time.Time, notes *string) (*models.Match, error) {
	args := m.Called(ctx, id, link, at, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchRepo) ListViews(ctx context.Context, q repository.MatchListQuery) ([]models.MatchView, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]models.MatchView), args.Error(1)
}

func (m *mockMatchRepo) ActiveListingIDs(ctx context.Context, brandID uuid.UUID, kind valueobject.ListingKind) ([]uuid.UUID, error) {
	args := m.Called(ctx, brandID, kind)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) GetState(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID) (*models.ListingState, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingState), args.Error(1)
}

func (m *mockListingRepo) Moderate(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID, decision valueobject.VerificationStatus, reason *string) (*models.ListingState, error) {
	args := m.Called(ctx, kind, id, decision, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingState), args.Error(1)
}

type mockOpportunityRepo struct {
	mock.Mock
}

func (m *mockOpportunityRepo) Create(ctx context.Context, o *models.Opportunity) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOpportunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Opportunity), args.Error(1)
}

func (m *mockOpportunityRepo) Update(ctx context.Context, o *models.Opportunity) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOpportunityRepo) SetStatus(ctx context.Context, id, ownerID uuid.UUID, status valueobject.ListingStatus) error {
	return m.Called(ctx, id, ownerID, status).Error(0)
}

func (m *mockOpportunityRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockOpportunityRepo) List(ctx context.Context, q repository.ListingQuery) ([]models.Opportunity, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]models.Opportunity), args.Error(1)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, p *models.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *mockPostRepo) Update(ctx context.Context, p *models.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPostRepo) SetStatus(ctx context.Context, id, ownerID uuid.UUID, status valueobject.ListingStatus) error {
	return m.Called(ctx, id, ownerID, status).Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockPostRepo) List(ctx context.Context, q repository.ListingQuery) ([]models.Post, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]models.Post), args.Error(1)
}

// fakeMailer запоминает отправленные письма.
type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

type notification struct {
	userID uuid.UUID
	event  string
}

// recordingNotifier запоминает уведомления вместо записи в базу.
type recordingNotifier struct {
	mu    sync.Mutex
	items []notification
}

func (r *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, event string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification{userID: userID, event: event})
}

func (r *recordingNotifier) usersFor(event string) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for _, n := range r.items {
		if n.event == event {
			out = append(out, n.userID)
		}
	}
	return out
}

type mockVerifyClient struct {
	mock.Mock
}

func (m *mockVerifyClient) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockVerifyClient) StartVerification(ctx context.Context, phone string) (*twilio.Verification, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twilio.Verification), args.Error(1)
}

func (m *mockVerifyClient) CheckVerification(ctx context.Context, phone, code string) (*twilio.Verification, error) {
	args := m.Called(ctx, phone, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twilio.Verification), args.Error(1)
}

type mockPhoneVerifier struct {
	mock.Mock
}

func (m *mockPhoneVerifier) MarkPhoneVerified(ctx context.Context, userID uuid.UUID, phone string) error {
	return m.Called(ctx, userID, phone).Error(0)
}
