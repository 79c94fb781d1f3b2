package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

type matchFixture struct {
	svc      *MatchService
	matches  *mockMatchRepo
	listings *mockListingRepo
	mailer   *fakeMailer
	notifier *recordingNotifier
	brand    Actor
	owner    Actor
}

func newMatchFixture() *matchFixture {
	f := &matchFixture{
		matches:  new(mockMatchRepo),
		listings: new(mockListingRepo),
		mailer:   &fakeMailer{},
		notifier: &recordingNotifier{},
		brand:    Actor{ID: uuid.New(), UserType: models.UserTypeBrand},
		owner:    Actor{ID: uuid.New(), UserType: models.UserTypeEventOrganizer},
	}
	f.svc = NewMatchService(f.matches, f.listings, f.mailer, f.notifier, MatchConfig{
		AppBaseURL:        "https://app.example.com",
		NotifyBrandOnLike: true,
	})
	// фоновые задачи выполняем синхронно
	f.svc.runAsync = func(_ string, fn func()) { fn() }
	return f
}

func (f *matchFixture) view(id uuid.UUID, status valueobject.MatchStatus) *models.MatchView {
	opportunityID := uuid.New()
	return &models.MatchView{
		Match: models.Match{
			ID:            id,
			BrandID:       f.brand.ID,
			OpportunityID: &opportunityID,
			Status:        status,
		},
		ListingTitle: "Riverside Summer Fest",
		OwnerID:      f.owner.ID,
		OwnerName:    "Riverside Events",
		OwnerEmail:   "owner@example.com",
		BrandName:    "Northwind",
		BrandEmail:   "brand@example.com",
	}
}

func visibleState(id, ownerID uuid.UUID) *models.ListingState {
	return &models.ListingState{
		ID:                 id,
		Kind:               valueobject.ListingOpportunity,
		OwnerID:            ownerID,
		Status:             valueobject.ListingActive,
		VerificationStatus: valueobject.VerificationApproved,
		IsVerified:         true,
	}
}

func TestMatchService_Like_CreatesPendingAndNotifies(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()
	listingID := uuid.New()
	matchID := uuid.New()

	f.listings.On("GetState", mock.Anything, valueobject.ListingOpportunity, listingID).
		Return(visibleState(listingID, f.owner.ID), nil)
	f.matches.On("Create", mock.Anything, mock.MatchedBy(func(m *models.Match) bool {
		return m.BrandID == f.brand.ID && m.OpportunityID != nil && *m.OpportunityID == listingID && m.PostID == nil
	})).Run(func(args mock.Arguments) {
		m := args.Get(1).(*models.Match)
		m.ID = matchID
		m.Status = valueobject.MatchStatusPending
	}).Return(nil)
	f.matches.On("GetView", mock.Anything, matchID).Return(f.view(matchID, valueobject.MatchStatusPending), nil)

	m, err := f.svc.Like(ctx, f.brand, valueobject.ListingOpportunity, listingID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.MatchStatusPending, m.Status)
	assert.Equal(t, f.brand.ID, m.BrandID)

	assert.ElementsMatch(t, []string{"owner@example.com", "brand@example.com"}, f.mailer.recipients())
	assert.ElementsMatch(t, []uuid.UUID{f.owner.ID, f.brand.ID}, f.notifier.usersFor(EventMatchCreated))
	f.matches.AssertExpectations(t)
	f.listings.AssertExpectations(t)
}

func TestMatchService_Like_EmailFailureIsSwallowed(t *testing.T) {
	f := newMatchFixture()
	f.mailer.err = errors.New("smtp down")
	listingID := uuid.New()
	matchID := uuid.New()

	f.listings.On("GetState", mock.Anything, valueobject.ListingOpportunity, listingID).
		Return(visibleState(listingID, f.owner.ID), nil)
	f.matches.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Match).ID = matchID
	}).Return(nil)
	f.matches.On("GetView", mock.Anything, matchID).Return(f.view(matchID, valueobject.MatchStatusPending), nil)

	m, err := f.svc.Like(context.Background(), f.brand, valueobject.ListingOpportunity, listingID)
	require.NoError(t, err)
	assert.Equal(t, matchID, m.ID)
	assert.Empty(t, f.mailer.recipients())
}

func TestMatchService_Like_OnlySponsors(t *testing.T) {
	f := newMatchFixture()

	_, err := f.svc.Like(context.Background(), f.owner, valueobject.ListingOpportunity, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrSponsorOnly)
	f.listings.AssertNotCalled(t, "GetState", mock.Anything, mock.Anything, mock.Anything)
	f.matches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMatchService_Like_HiddenListing(t *testing.T) {
	f := newMatchFixture()
	listingID := uuid.New()
	state := visibleState(listingID, f.owner.ID)
	state.VerificationStatus = valueobject.VerificationPending
	state.IsVerified = false

	f.listings.On("GetState", mock.Anything, valueobject.ListingOpportunity, listingID).Return(state, nil)

	_, err := f.svc.Like(context.Background(), f.brand, valueobject.ListingOpportunity, listingID)
	assert.ErrorIs(t, err, apperror.ErrListingUnavailable)
	f.matches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMatchService_Like_DuplicateActiveMatch(t *testing.T) {
	f := newMatchFixture()
	listingID := uuid.New()

	f.listings.On("GetState", mock.Anything, valueobject.ListingPost, listingID).
		Return(visibleState(listingID, f.owner.ID), nil)
	f.matches.On("Create", mock.Anything, mock.Anything).Return(repository.ErrActiveMatchExists)

	_, err := f.svc.Like(context.Background(), f.brand, valueobject.ListingPost, listingID)
	assert.ErrorIs(t, err, apperror.ErrActiveMatchExists)
	assert.True(t, apperror.IsConflict(err))
}

func TestMatchService_Like_UnknownListing(t *testing.T) {
	f := newMatchFixture()
	listingID := uuid.New()

	f.listings.On("GetState", mock.Anything, valueobject.ListingPost, listingID).Return(nil, repository.ErrListingNotFound)

	_, err := f.svc.Like(context.Background(), f.brand, valueobject.ListingPost, listingID)
	assert.ErrorIs(t, err, apperror.ErrPostNotFound)
}

func TestMatchService_Decide_AcceptSendsEmail(t *testing.T) {
	f := newMatchFixture()
	matchID := uuid.New()
	view := f.view(matchID, valueobject.MatchStatusPending)
	accepted := view.Match
	accepted.Status = valueobject.MatchStatusAccepted

	f.matches.On("GetView", mock.Anything, matchID).Return(view, nil)
	f.matches.On("DecideIfPending", mock.Anything, matchID, valueobject.MatchStatusAccepted).Return(&accepted, nil)

	res, err := f.svc.Decide(context.Background(), f.owner, matchID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, valueobject.MatchStatusAccepted, res.Match.Status)
	assert.True(t, res.EmailSent)
	assert.Empty(t, res.EmailError)
	assert.Equal(t, []string{"brand@example.com"}, f.mailer.recipients())
	assert.ElementsMatch(t, []uuid.UUID{f.brand.ID, f.owner.ID}, f.notifier.usersFor(EventMatchUpdated))
}

func TestMatchService_Decide_AcceptEmailFailureKeepsStatus(t *testing.T) {
	f := newMatchFixture()
	f.mailer.err = errors.New("smtp down")
	matchID := uuid.New()
	view := f.view(matchID, valueobject.MatchStatusPending)
	accepted := view.Match
	accepted.Status = valueobject.MatchStatusAccepted

	f.matches.On("GetView", mock.Anything, matchID).Return(view, nil)
	f.matches.On("DecideIfPending", mock.Anything, matchID, valueobject.MatchStatusAccepted).Return(&accepted, nil)

	res, err := f.svc.Decide(context.Background(), f.owner, matchID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, valueobject.MatchStatusAccepted, res.Match.Status)
	assert.False(t, res.EmailSent)
	assert.Contains(t, res.EmailError, "smtp down")
}

func TestMatchService_Decide_RejectSendsNoEmail(t *testing.T) {
	f := newMatchFixture()
	matchID := uuid.New()
	view := f.view(matchID, valueobject.MatchStatusPending)
	rejected := view.Match
	rejected.Status = valueobject.MatchStatusRejected

	f.matches.On("GetView", mock.Anything, matchID).Return(view, nil)
	f.matches.On("DecideIfPending", mock.Anything, matchID, valueobject.MatchStatusRejected).Return(&rejected, nil)

	res, err := f.svc.Decide(context.Background(), f.owner, matchID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, valueobject.MatchStatusRejected, res.Match.Status)
	assert.False(t, res.EmailSent)
	assert.Empty(t, f.mailer.recipients())
}

func TestMatchService_Decide_AlreadyDecided(t *testing.T) {
	f := newMatchFixture()
	matchID := uuid.New()

	f.matches.On("GetView", mock.Anything, matchID).Return(f.view(matchID, valueobject.MatchStatusAccepted), nil)

	_, err := f.svc.Decide(context.Background(), f.owner, matchID, "rejected")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)
	assert.Equal(t, "match already accepted", appErr.Message)
	f.matches.AssertNotCalled(t, "DecideIfPending", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.mailer.recipients())
}

func TestMatchService_Decide_LostRace(t *testing.T) {
	f := newMatchFixture()
	matchID := uuid.New()
	view := f.view(matchID, valueobject.MatchStatusPending)
	current := view.Match
	current.Status = valueobject.MatchStatusRejected

	f.matches.On("GetView", mock.Anything, matchID).Return(view, nil)
	f.matches.On("DecideIfPending", mock.Anything, matchID, valueobject.MatchStatusAccepted).Return(nil, repository.ErrMatchNotPending)
	f.matches.On("GetByID", mock.Anything, matchID).Return(&current, nil)

	_, err := f.svc.Decide(context.Background(), f.owner, matchID, "accepted")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "match already rejected", appErr.Message)
	assert.Empty(t, f.mailer.recipients())
}

func TestMatchService_Decide_Guards(t *testing.T) {
	f := newMatchFixture()
	matchID := uuid.New()
	f.matches.On("GetView", mock.Anything, matchID).Return(f.view(matchID, valueobject.MatchStatusPending), nil)

	_, err := f.svc.Decide(context.Background(), f.owner, matchID, "pending")
	assert.True(t, apperror.IsValidation(err))

	stranger := Actor{ID: uuid.New(), UserType: models.UserTypeCreator}
	_, err = f.svc.Decide(context.Background(), stranger, matchID, "accepted")
	assert.True(t, apperror.IsForbidden(err))

	f.matches.AssertNotCalled(t, "DecideIfPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_ScheduleMeeting(t *testing.T) {
	f := newMatchFixture()
	admin := Actor{ID: uuid.New(), UserType: models.UserTypeAdmin}
	matchID := uuid.New()
	at := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	link := "https://meet.example.com/abc"

	view := f.view(matchID, valueobject.MatchStatusAccepted)
	view.MeetingLink = &link
	view.MeetingScheduledAt = &at

	f.matches.On("SetMeeting", mock.Anything, matchID, &link, at, (*string)(nil)).Return(&view.Match, nil)
	f.matches.On("GetView", mock.Anything, matchID).Return(view, nil)

	got, err := f.svc.ScheduleMeeting(context.Background(), admin, matchID, MeetingInput{
		MeetingLink:        &link,
		MeetingScheduledAt: at,
	})
	require.NoError(t, err)
	assert.Equal(t, &at, got.MeetingScheduledAt)
	assert.ElementsMatch(t, []string{"brand@example.com", "owner@example.com"}, f.mailer.recipients())
	assert.Contains(t, f.mailer.sent[0].HTMLBody, "calendar.google.com")
}

func TestMatchService_ScheduleMeeting_RequiresAccepted(t *testing.T) {
	f := newMatchFixture()
	admin := Actor{ID: uuid.New(), UserType: models.UserTypeAdmin}
	matchID := uuid.New()
	at := time.Now().Add(24 * time.Hour).UTC()
	pending := f.view(matchID, valueobject.MatchStatusPending).Match

	f.matches.On("SetMeeting", mock.Anything, matchID, (*string)(nil), at, (*string)(nil)).Return(nil, repository.ErrMatchNotAccepted)
	f.matches.On("GetByID", mock.Anything, matchID).Return(&pending, nil)

	_, err := f.svc.ScheduleMeeting(context.Background(), admin, matchID, MeetingInput{MeetingScheduledAt: at})
	assert.True(t, apperror.IsConflict(err))

	_, err = f.svc.ScheduleMeeting(context.Background(), f.brand, matchID, MeetingInput{MeetingScheduledAt: at})
	assert.True(t, apperror.IsForbidden(err))
}

func TestMatchService_CalendarURL(t *testing.T) {
	f := newMatchFixture()
	matchID := uuid.New()
	at := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	view := f.view(matchID, valueobject.MatchStatusAccepted)
	view.MeetingScheduledAt = &at

	f.matches.On("GetView", mock.Anything, matchID).Return(view, nil)

	url, err := f.svc.CalendarURL(context.Background(), f.brand, matchID)
	require.NoError(t, err)
	assert.Contains(t, url, "https://calendar.google.com/calendar/render?")
	assert.Contains(t, url, "20250314T150000Z%2F20250314T153000Z")

	ics, name, err := f.svc.CalendarICS(context.Background(), f.owner, matchID)
	require.NoError(t, err)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Equal(t, "meeting-"+matchID.String()+".ics", name)

	stranger := Actor{ID: uuid.New(), UserType: models.UserTypeBrand}
	_, err = f.svc.CalendarURL(context.Background(), stranger, matchID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMatchService_ListMy_ScopesByRole(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()

	f.matches.On("ListViews", mock.Anything, repository.MatchListQuery{BrandID: &f.brand.ID}).Return([]models.MatchView{}, nil).Once()
	f.matches.On("ListViews", mock.Anything, repository.MatchListQuery{OwnerID: &f.owner.ID, Status: valueobject.MatchStatusPending}).Return([]models.MatchView{}, nil).Once()

	_, err := f.svc.ListMy(ctx, f.brand, "")
	require.NoError(t, err)
	_, err = f.svc.ListMy(ctx, f.owner, "pending")
	require.NoError(t, err)
	_, err = f.svc.ListMy(ctx, f.owner, "cancelled")
	assert.True(t, apperror.IsValidation(err))

	f.matches.AssertExpectations(t)
}
