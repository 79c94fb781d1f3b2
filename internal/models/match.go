package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
)

// Match связывает бренд ровно с одной возможностью или публикацией.
type Match struct {
	ID                 uuid.UUID               `db:"id" json:"id"`
	BrandID            uuid.UUID               `db:"brand_id" json:"brand_id"`
	OpportunityID      *uuid.UUID              `db:"opportunity_id" json:"opportunity_id,omitempty"`
	PostID             *uuid.UUID              `db:"post_id" json:"post_id,omitempty"`
	Status             valueobject.MatchStatus `db:"status" json:"status"`
	MeetingLink        *string                 `db:"meeting_link" json:"meeting_link,omitempty"`
	MeetingScheduledAt *time.Time              `db:"meeting_scheduled_at" json:"meeting_scheduled_at,omitempty"`
	Notes              *string                 `db:"notes" json:"notes,omitempty"`
	DecidedAt          *time.Time              `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt          time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time               `db:"updated_at" json:"updated_at"`
}

// Target возвращает вид и идентификатор объявления заявки.
func (m *Match) Target() (valueobject.ListingKind, uuid.UUID) {
	if m.PostID != nil {
		return valueobject.ListingPost, *m.PostID
	}
	if m.OpportunityID != nil {
		return valueobject.ListingOpportunity, *m.OpportunityID
	}
	return "", uuid.Nil
}

// MatchView заявка с данными сторон для списков и писем.
type MatchView struct {
	Match
	ListingTitle string    `db:"listing_title" json:"listing_title"`
	OwnerID      uuid.UUID `db:"owner_id" json:"owner_id"`
	OwnerName    string    `db:"owner_name" json:"owner_name"`
	OwnerEmail   string    `db:"owner_email" json:"-"`
	BrandName    string    `db:"brand_name" json:"brand_name"`
	BrandEmail   string    `db:"brand_email" json:"-"`
}
