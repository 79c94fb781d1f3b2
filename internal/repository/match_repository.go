package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/repository/common"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrActiveMatchExists сработал частичный уникальный индекс на активную пару бренд/объявление.
	ErrActiveMatchExists = errors.New("active match already exists")
	// ErrMatchNotPending условное обновление не нашло pending заявку.
	ErrMatchNotPending = errors.New("match is not pending")
	// ErrMatchNotAccepted встречу можно назначить только по принятой заявке.
	ErrMatchNotAccepted = errors.New("match is not accepted")
)

const matchViewSelect = `
	m.*,
	COALESCE(o.title, p.title) AS listing_title,
	COALESCE(o.owner_id, p.owner_id) AS owner_id,
	COALESCE(NULLIF(op.company_name, ''), op.contact_name) AS owner_name,
	op.email AS owner_email,
	COALESCE(NULLIF(bp.company_name, ''), bp.contact_name) AS brand_name,
	bp.email AS brand_email`

const matchViewFrom = `matches m
	LEFT JOIN opportunities o ON o.id = m.opportunity_id
	LEFT JOIN posts p ON p.id = m.post_id
	JOIN profiles op ON op.user_id = COALESCE(o.owner_id, p.owner_id)
	JOIN profiles bp ON bp.user_id = m.brand_id`

// MatchListQuery фильтр списка заявок.
type MatchListQuery struct {
	BrandID *uuid.UUID
	OwnerID *uuid.UUID
	Status  valueobject.MatchStatus
	Limit   uint64
	Offset  uint64
}

// MatchRepository работает с таблицей matches.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository создаёт экземпляр репозитория.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create вставляет pending заявку. Повторная активная заявка отсекается индексом.
func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (brand_id, opportunity_id, post_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING *
	`
	if err := r.db.QueryRowxContext(ctx, query, m.BrandID, m.OpportunityID, m.PostID).StructScan(m); err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrActiveMatchExists
		}
		return fmt.Errorf("match repository: create %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, err := common.GetByID[models.Match](ctx, r.db, "matches", id, ErrMatchNotFound)
	if err != nil && !errors.Is(err, ErrMatchNotFound) {
		return nil, fmt.Errorf("match repository: %w", err)
	}
	return m, err
}

// GetView возвращает заявку вместе с названием объявления и контактами сторон.
func (r *MatchRepository) GetView(ctx context.Context, id uuid.UUID) (*models.MatchView, error) {
	var view models.MatchView
	query := `SELECT ` + matchViewSelect + ` FROM ` + matchViewFrom + ` WHERE m.id = $1`
	if err := r.db.GetContext(ctx, &view, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("match repository: get view %w", err)
	}
	return &view, nil
}

// DecideIfPending меняет статус только у pending заявки.
func (r *MatchRepository) DecideIfPending(ctx context.Context, id uuid.UUID, status valueobject.MatchStatus) (*models.Match, error) {
	query := `
		UPDATE matches
		SET status = $2, decided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`
	var m models.Match
	if err := r.db.QueryRowxContext(ctx, query, id, string(status)).StructScan(&m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotPending
		}
		return nil, fmt.Errorf("match repository: decide %w", err)
	}
	return &m, nil
}

// SetMeeting сохраняет данные встречи для принятой заявки.
func (r *MatchRepository) SetMeeting(ctx context.Context, id uuid.UUID, link *string, at time.Time, notes *string) (*models.Match, error) {
	query := `
		UPDATE matches
		SET meeting_link = $2, meeting_scheduled_at = $3, notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'accepted'
		RETURNING *
	`
	var m models.Match
	if err := r.db.QueryRowxContext(ctx, query, id, link, at, notes).StructScan(&m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotAccepted
		}
		return nil, fmt.Errorf("match repository: set meeting %w", err)
	}
	return &m, nil
}

// ListViews возвращает заявки по фильтру, новые первыми.
func (r *MatchRepository) ListViews(ctx context.Context, q MatchListQuery) ([]models.MatchView, error) {
	sb := psql.Select(matchViewSelect).From(matchViewFrom).OrderBy("m.created_at DESC")
	if q.BrandID != nil {
		sb = sb.Where(squirrel.Expr("m.brand_id = ?", *q.BrandID))
	}
	if q.OwnerID != nil {
		sb = sb.Where(squirrel.Expr("COALESCE(o.owner_id, p.owner_id) = ?", *q.OwnerID))
	}
	if q.Status != "" {
		sb = sb.Where(squirrel.Eq{"m.status": string(q.Status)})
	}
	if q.Limit > 0 {
		sb = sb.Limit(q.Limit)
	}
	if q.Offset > 0 {
		sb = sb.Offset(q.Offset)
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("match repository: build list query %w", err)
	}

	views := []models.MatchView{}
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("match repository: list %w", err)
	}
	return views, nil
}

// ActiveListingIDs возвращает объявления вида kind, на которые у бренда есть pending/accepted заявка.
func (r *MatchRepository) ActiveListingIDs(ctx context.Context, brandID uuid.UUID, kind valueobject.ListingKind) ([]uuid.UUID, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("match repository: unknown kind %q", kind)
	}

	col := kind.MatchColumn()
	query := fmt.Sprintf(`
		SELECT %[1]s FROM matches
		WHERE brand_id = $1 AND %[1]s IS NOT NULL AND status IN ('pending', 'accepted')
	`, col)

	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, query, brandID); err != nil {
		return nil, fmt.Errorf("match repository: active listing ids %w", err)
	}
	return ids, nil
}
