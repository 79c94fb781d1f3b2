package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/calendar"
	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/email"
	"github.com/ignatzorin/sponsorship-backend/internal/goroutine"
	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// MatchRepository операции с заявками.
type MatchRepository interface {
	Create(ctx context.Context, m *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.MatchView, error)
	DecideIfPending(ctx context.Context, id uuid.UUID, status valueobject.MatchStatus) (*models.Match, error)
	SetMeeting(ctx context.Context, id uuid.UUID, link *string, at time.Time, notes *string) (*models.Match, error)
	ListViews(ctx context.Context, q repository.MatchListQuery) ([]models.MatchView, error)
}

// ListingStateReader читает общие поля объявления любого вида.
type ListingStateReader interface {
	GetState(ctx context.Context, kind valueobject.ListingKind, id uuid.UUID) (*models.ListingState, error)
}

// MatchConfig настройки уведомлений по заявкам.
type MatchConfig struct {
	AppBaseURL        string
	NotifyBrandOnLike bool
}

// backgroundTimeout ограничивает фоновые письма после ответа клиенту.
const backgroundTimeout = 30 * time.Second

// MatchService реализует жизненный цикл заявки: лайк, решение, встреча.
type MatchService struct {
	matches  MatchRepository
	listings ListingStateReader
	mailer   email.Sender
	notifier Notifier
	cfg      MatchConfig

	// runAsync запускает фоновую задачу; в тестах подменяется синхронным вызовом.
	runAsync func(name string, fn func())
}

func NewMatchService(matches MatchRepository, listings ListingStateReader, mailer email.Sender, notifier Notifier, cfg MatchConfig) *MatchService {
	return &MatchService{
		matches:  matches,
		listings: listings,
		mailer:   mailer,
		notifier: notifier,
		cfg:      cfg,
		runAsync: goroutine.SafeGo,
	}
}

// DecisionResult итог решения по заявке. Ошибка письма не откатывает статус.
type DecisionResult struct {
	Match      *models.Match `json:"match"`
	EmailSent  bool          `json:"email_sent"`
	EmailError string        `json:"email_error,omitempty"`
}

// MeetingInput данные встречи от администратора.
type MeetingInput struct {
	MeetingLink        *string   `json:"meeting_link"`
	MeetingScheduledAt time.Time `json:"meeting_scheduled_at"`
	Notes              *string   `json:"notes"`
}

// Like создаёт pending заявку бренда на объявление и уведомляет стороны в фоне.
func (s *MatchService) Like(ctx context.Context, actor Actor, kind valueobject.ListingKind, listingID uuid.UUID) (*models.Match, error) {
	if !actor.UserType.IsSponsor() {
		return nil, apperror.ErrSponsorOnly
	}
	if !kind.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно указать opportunity_id или post_id")
	}

	state, err := s.listings.GetState(ctx, kind, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, listingNotFound(kind)
		}
		return nil, apperror.Internal(err)
	}
	if !state.Visible() {
		return nil, apperror.ErrListingUnavailable
	}

	m := &models.Match{BrandID: actor.ID}
	if kind == valueobject.ListingPost {
		m.PostID = &listingID
	} else {
		m.OpportunityID = &listingID
	}

	if err := s.matches.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrActiveMatchExists) {
			return nil, apperror.ErrActiveMatchExists
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"match_id": m.ID,
		"brand_id": actor.ID,
		"kind":     kind,
	}).Info("match service: заявка создана")

	matchID := m.ID
	s.runAsync("match-like-notify", func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		s.afterLike(bgCtx, matchID)
	})

	return m, nil
}

// afterLike рассылает письма и события; любые ошибки только логируются.
func (s *MatchService) afterLike(ctx context.Context, matchID uuid.UUID) {
	view, err := s.matches.GetView(ctx, matchID)
	if err != nil {
		logMatchWarn(matchID, err, "не удалось загрузить заявку для уведомлений")
		return
	}

	s.notifier.Notify(ctx, view.OwnerID, EventMatchCreated, view)
	s.notifier.Notify(ctx, view.BrandID, EventMatchCreated, view)

	data := s.mailData(view)
	data.RecipientName = view.OwnerName
	if msg, err := email.MatchInterest(view.OwnerEmail, data); err != nil {
		logMatchWarn(matchID, err, "не удалось подготовить письмо владельцу")
	} else if err := s.mailer.Send(ctx, msg); err != nil {
		logMatchWarn(matchID, err, "не удалось отправить письмо владельцу")
	}

	if !s.cfg.NotifyBrandOnLike {
		return
	}
	data.RecipientName = view.BrandName
	if msg, err := email.MatchConfirmation(view.BrandEmail, data); err != nil {
		logMatchWarn(matchID, err, "не удалось подготовить подтверждение бренду")
	} else if err := s.mailer.Send(ctx, msg); err != nil {
		logMatchWarn(matchID, err, "не удалось отправить подтверждение бренду")
	}
}

// Decide принимает или отклоняет pending заявку. Решение принимается один раз.
func (s *MatchService) Decide(ctx context.Context, actor Actor, matchID uuid.UUID, status string) (*DecisionResult, error) {
	decision, err := valueobject.NewMatchDecision(status)
	if err != nil {
		return nil, err
	}

	view, err := s.loadView(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if view.OwnerID != actor.ID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "решение принимает только владелец объявления")
	}
	if view.Status != valueobject.MatchStatusPending {
		return nil, apperror.MatchAlreadyDecided(string(view.Status))
	}

	updated, err := s.matches.DecideIfPending(ctx, matchID, decision)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotPending) {
			// проиграли гонку: отдаём статус, который успел записать другой запрос
			current, getErr := s.matches.GetByID(ctx, matchID)
			if getErr != nil {
				return nil, apperror.Internal(getErr)
			}
			return nil, apperror.MatchAlreadyDecided(string(current.Status))
		}
		return nil, apperror.Internal(err)
	}

	view.Match = *updated
	result := &DecisionResult{Match: updated}

	if decision == valueobject.MatchStatusAccepted {
		data := s.mailData(view)
		data.RecipientName = view.BrandName
		if err := s.send(ctx, view.BrandEmail, data, email.MatchAccepted); err != nil {
			logMatchWarn(matchID, err, "письмо о принятии не отправлено")
			result.EmailError = err.Error()
		} else {
			result.EmailSent = true
		}
	}

	s.notifier.Notify(ctx, view.BrandID, EventMatchUpdated, view)
	s.notifier.Notify(ctx, view.OwnerID, EventMatchUpdated, view)

	return result, nil
}

// ScheduleMeeting сохраняет встречу по принятой заявке и пишет обеим сторонам.
func (s *MatchService) ScheduleMeeting(ctx context.Context, actor Actor, matchID uuid.UUID, in MeetingInput) (*models.MatchView, error) {
	if actor.UserType != models.UserTypeAdmin {
		return nil, apperror.ErrForbidden
	}
	if in.MeetingScheduledAt.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "meeting_scheduled_at обязателен")
	}
	if err := validation.ValidateOptionalURL("meeting_link", in.MeetingLink); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidateOptionalText("notes", in.Notes, validation.MaxMeetingNotesLength); err != nil {
		return nil, apperror.Validation(err)
	}

	if _, err := s.matches.SetMeeting(ctx, matchID, trimmedOrNil(in.MeetingLink), in.MeetingScheduledAt.UTC(), trimmedOrNil(in.Notes)); err != nil {
		if errors.Is(err, repository.ErrMatchNotAccepted) {
			current, getErr := s.matches.GetByID(ctx, matchID)
			if errors.Is(getErr, repository.ErrMatchNotFound) {
				return nil, apperror.ErrMatchNotFound
			}
			if getErr != nil {
				return nil, apperror.Internal(getErr)
			}
			return nil, apperror.New(apperror.ErrCodeConflict, "meeting requires an accepted match, current status is "+string(current.Status))
		}
		return nil, apperror.Internal(err)
	}

	view, err := s.loadView(ctx, matchID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, view.BrandID, EventMatchUpdated, view)
	s.notifier.Notify(ctx, view.OwnerID, EventMatchUpdated, view)

	snapshot := *view
	s.runAsync("match-meeting-notify", func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		s.sendMeetingEmails(bgCtx, &snapshot)
	})

	return view, nil
}

func (s *MatchService) sendMeetingEmails(ctx context.Context, view *models.MatchView) {
	data := s.mailData(view)
	recipients := []struct{ name, addr string }{
		{view.BrandName, view.BrandEmail},
		{view.OwnerName, view.OwnerEmail},
	}
	for _, r := range recipients {
		data.RecipientName = r.name
		if err := s.send(ctx, r.addr, data, email.MeetingScheduled); err != nil {
			logMatchWarn(view.ID, err, "письмо о встрече не отправлено")
		}
	}
}

// Get возвращает заявку участнику или администратору.
func (s *MatchService) Get(ctx context.Context, actor Actor, matchID uuid.UUID) (*models.MatchView, error) {
	view, err := s.loadView(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !canSeeMatch(actor, view) {
		return nil, apperror.ErrMatchNotFound
	}
	return view, nil
}

// ListMy: бренд видит свои заявки, владелец заявки на свои объявления, админ все.
func (s *MatchService) ListMy(ctx context.Context, actor Actor, status string) ([]models.MatchView, error) {
	q := repository.MatchListQuery{}
	if status != "" {
		st := valueobject.MatchStatus(status)
		if !st.IsValid() {
			return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
		}
		q.Status = st
	}

	switch {
	case actor.UserType.IsSponsor():
		q.BrandID = &actor.ID
	case actor.UserType == models.UserTypeAdmin:
	default:
		q.OwnerID = &actor.ID
	}

	views, err := s.matches.ListViews(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

// CalendarEvent собирает событие календаря по назначенной встрече.
func (s *MatchService) CalendarEvent(ctx context.Context, actor Actor, matchID uuid.UUID) (calendar.Event, error) {
	view, err := s.Get(ctx, actor, matchID)
	if err != nil {
		return calendar.Event{}, err
	}
	if view.MeetingScheduledAt == nil {
		return calendar.Event{}, apperror.New(apperror.ErrCodeConflict, "встреча по заявке не назначена")
	}
	return meetingEvent(view), nil
}

// CalendarURL ссылка для Google Календаря.
func (s *MatchService) CalendarURL(ctx context.Context, actor Actor, matchID uuid.UUID) (string, error) {
	ev, err := s.CalendarEvent(ctx, actor, matchID)
	if err != nil {
		return "", err
	}
	return calendar.GoogleCalendarURL(ev), nil
}

// CalendarICS приглашение .ics и имя файла.
func (s *MatchService) CalendarICS(ctx context.Context, actor Actor, matchID uuid.UUID) (string, string, error) {
	ev, err := s.CalendarEvent(ctx, actor, matchID)
	if err != nil {
		return "", "", err
	}
	return calendar.ICS(ev, time.Now()), calendar.Filename(ev.UID), nil
}

func (s *MatchService) loadView(ctx context.Context, matchID uuid.UUID) (*models.MatchView, error) {
	view, err := s.matches.GetView(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return nil, apperror.ErrMatchNotFound
		}
		return nil, apperror.Internal(err)
	}
	return view, nil
}

func (s *MatchService) mailData(view *models.MatchView) email.MatchData {
	data := email.MatchData{
		BrandName:    view.BrandName,
		OwnerName:    view.OwnerName,
		ListingTitle: view.ListingTitle,
		DashboardURL: s.cfg.AppBaseURL + "/dashboard",
	}
	if view.MeetingScheduledAt != nil {
		data.MeetingTime = email.FormatMeetingTime(*view.MeetingScheduledAt)
		data.CalendarURL = calendar.GoogleCalendarURL(meetingEvent(view))
	}
	if view.MeetingLink != nil {
		data.MeetingLink = *view.MeetingLink
	}
	return data
}

func (s *MatchService) send(ctx context.Context, to string, data email.MatchData, build func(string, email.MatchData) (email.Message, error)) error {
	msg, err := build(to, data)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

func meetingEvent(view *models.MatchView) calendar.Event {
	var desc strings.Builder
	fmt.Fprintf(&desc, "Sponsorship meeting between %s and %s about %s.", view.BrandName, view.OwnerName, view.ListingTitle)
	ev := calendar.Event{
		UID:   view.ID.String(),
		Title: "Sponsorship meeting: " + view.ListingTitle,
	}
	if view.MeetingLink != nil {
		ev.Location = *view.MeetingLink
		desc.WriteString("\nJoin: " + *view.MeetingLink)
	}
	if view.Notes != nil && *view.Notes != "" {
		desc.WriteString("\n" + *view.Notes)
	}
	ev.Description = desc.String()
	if view.MeetingScheduledAt != nil {
		ev.Start = *view.MeetingScheduledAt
	}
	return ev
}

func canSeeMatch(actor Actor, view *models.MatchView) bool {
	return actor.UserType == models.UserTypeAdmin || view.BrandID == actor.ID || view.OwnerID == actor.ID
}

func listingNotFound(kind valueobject.ListingKind) error {
	if kind == valueobject.ListingPost {
		return apperror.ErrPostNotFound
	}
	return apperror.ErrOpportunityNotFound
}

func logMatchWarn(matchID uuid.UUID, err error, msg string) {
	logger.Log.WithFields(logrus.Fields{
		"match_id": matchID,
		"error":    err.Error(),
	}).Warn("match service: " + msg)
}
