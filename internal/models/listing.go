package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
)

// Opportunity публикуется создателем или организатором мероприятия.
type Opportunity struct {
	ID                 uuid.UUID                      `db:"id" json:"id"`
	OwnerID            uuid.UUID                      `db:"owner_id" json:"owner_id"`
	CategoryID         *uuid.UUID                     `db:"category_id" json:"category_id,omitempty"`
	Title              string                         `db:"title" json:"title"`
	Description        string                         `db:"description" json:"description"`
	Location           *string                        `db:"location" json:"location,omitempty"`
	AdType             *string                        `db:"ad_type" json:"ad_type,omitempty"`
	StartDate          *time.Time                     `db:"start_date" json:"start_date,omitempty"`
	EndDate            *time.Time                     `db:"end_date" json:"end_date,omitempty"`
	PriceMin           *float64                       `db:"price_min" json:"price_min,omitempty"`
	PriceMax           *float64                       `db:"price_max" json:"price_max,omitempty"`
	ExpectedAttendance *int                           `db:"expected_attendance" json:"expected_attendance,omitempty"`
	MediaURLs          pq.StringArray                 `db:"media_urls" json:"media_urls"`
	Status             valueobject.ListingStatus      `db:"status" json:"status"`
	VerificationStatus valueobject.VerificationStatus `db:"verification_status" json:"verification_status"`
	IsVerified         bool                           `db:"is_verified" json:"is_verified"`
	RejectionReason    *string                        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt          time.Time                      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                      `db:"updated_at" json:"updated_at"`
}

// Post видео-публикация инфлюенсера.
type Post struct {
	ID                 uuid.UUID                      `db:"id" json:"id"`
	OwnerID            uuid.UUID                      `db:"owner_id" json:"owner_id"`
	CategoryID         *uuid.UUID                     `db:"category_id" json:"category_id,omitempty"`
	Title              string                         `db:"title" json:"title"`
	Description        string                         `db:"description" json:"description"`
	Location           *string                        `db:"location" json:"location,omitempty"`
	AdType             *string                        `db:"ad_type" json:"ad_type,omitempty"`
	VideoURL           *string                        `db:"video_url" json:"video_url,omitempty"`
	Hashtags           pq.StringArray                 `db:"hashtags" json:"hashtags"`
	EstimatedReach     *int                           `db:"estimated_reach" json:"estimated_reach,omitempty"`
	PriceMin           *float64                       `db:"price_min" json:"price_min,omitempty"`
	PriceMax           *float64                       `db:"price_max" json:"price_max,omitempty"`
	MediaURLs          pq.StringArray                 `db:"media_urls" json:"media_urls"`
	Status             valueobject.ListingStatus      `db:"status" json:"status"`
	VerificationStatus valueobject.VerificationStatus `db:"verification_status" json:"verification_status"`
	IsVerified         bool                           `db:"is_verified" json:"is_verified"`
	RejectionReason    *string                        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt          time.Time                      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                      `db:"updated_at" json:"updated_at"`
}

// ListingState общие для обоих видов поля, нужные заявкам и модерации.
type ListingState struct {
	ID                 uuid.UUID                      `db:"id" json:"id"`
	Kind               valueobject.ListingKind        `db:"kind" json:"kind"`
	OwnerID            uuid.UUID                      `db:"owner_id" json:"owner_id"`
	Title              string                         `db:"title" json:"title"`
	Status             valueobject.ListingStatus      `db:"status" json:"status"`
	VerificationStatus valueobject.VerificationStatus `db:"verification_status" json:"verification_status"`
	IsVerified         bool                           `db:"is_verified" json:"is_verified"`
	RejectionReason    *string                        `db:"rejection_reason" json:"rejection_reason,omitempty"`
}

// Visible: объявление одобрено и активно, его видят бренды.
func (l *ListingState) Visible() bool {
	return l.VerificationStatus == valueobject.VerificationApproved && l.Status == valueobject.ListingActive
}

// FeedFilter параметры ленты поиска.
type FeedFilter struct {
	CategoryID *uuid.UUID
	PriceMin   *float64
	PriceMax   *float64
	Location   string
	Search     string
	AdType     string
}
