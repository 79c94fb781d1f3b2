package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// UserType определяет вариант профиля.
type UserType string

const (
	UserTypeBrand          UserType = "brand"
	UserTypeAgency         UserType = "agency"
	UserTypeCreator        UserType = "creator"
	UserTypeEventOrganizer UserType = "event_organizer"
	UserTypeInfluencer     UserType = "influencer"
	UserTypeAdmin          UserType = "admin"
)

// AllUserTypes в порядке отображения.
var AllUserTypes = []UserType{
	UserTypeBrand,
	UserTypeAgency,
	UserTypeCreator,
	UserTypeEventOrganizer,
	UserTypeInfluencer,
	UserTypeAdmin,
}

func (t UserType) IsValid() bool {
	for _, known := range AllUserTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsSponsor: бренды и агентства ищут объявления и ставят лайки.
func (t UserType) IsSponsor() bool {
	return t == UserTypeBrand || t == UserTypeAgency
}

// OwnsOpportunities: создатели и организаторы публикуют возможности.
func (t UserType) OwnsOpportunities() bool {
	return t == UserTypeCreator || t == UserTypeEventOrganizer
}

// OwnsPosts: инфлюенсеры публикуют посты.
func (t UserType) OwnsPosts() bool {
	return t == UserTypeInfluencer
}

// Profile хранит общие поля профиля; поля варианта лежат в Details.
type Profile struct {
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	UserType       UserType       `db:"user_type" json:"user_type"`
	Email          string         `db:"email" json:"email,omitempty"`
	ContactName    string         `db:"contact_name" json:"contact_name"`
	CompanyName    *string        `db:"company_name" json:"company_name,omitempty"`
	Phone          *string        `db:"phone" json:"phone,omitempty"`
	PhoneVerified  bool           `db:"phone_verified" json:"phone_verified"`
	Website        *string        `db:"website" json:"website,omitempty"`
	Bio            *string        `db:"bio" json:"bio,omitempty"`
	LogoURL        *string        `db:"logo_url" json:"logo_url,omitempty"`
	Location       *string        `db:"location" json:"location,omitempty"`
	IsVerified     bool           `db:"is_verified" json:"is_verified"`
	TargetAudience types.JSONText `db:"target_audience" json:"target_audience"`
	SocialMedia    types.JSONText `db:"social_media" json:"social_media"`
	Details        types.JSONText `db:"details" json:"details"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// DisplayName возвращает название компании, если оно есть, иначе контактное имя.
func (p *Profile) DisplayName() string {
	if p.CompanyName != nil && *p.CompanyName != "" {
		return *p.CompanyName
	}
	return p.ContactName
}

// Variant разбирает Details в типизированный вариант профиля.
func (p *Profile) Variant() (ProfileVariant, error) {
	return DecodeVariant(p.UserType, []byte(p.Details))
}

// Public возвращает копию без контактных данных для чужих глаз.
func (p *Profile) Public() *Profile {
	cp := *p
	cp.Email = ""
	cp.Phone = nil
	return &cp
}
