package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Category плоский справочник категорий объявлений.
type Category struct {
	ID          uuid.UUID `db:"id" json:"id" yaml:"-"`
	Slug        string    `db:"slug" json:"slug" yaml:"slug"`
	Name        string    `db:"name" json:"name" yaml:"name"`
	Description *string   `db:"description" json:"description,omitempty" yaml:"description"`
	Icon        *string   `db:"icon" json:"icon,omitempty" yaml:"icon"`
	SortOrder   int       `db:"sort_order" json:"sort_order" yaml:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// ClientLogo логотип клиента для лендинга.
type ClientLogo struct {
	ID        uuid.UUID `db:"id" json:"id" yaml:"-"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	LogoURL   string    `db:"logo_url" json:"logo_url" yaml:"logo_url"`
	Website   *string   `db:"website" json:"website,omitempty" yaml:"website"`
	SortOrder int       `db:"sort_order" json:"sort_order" yaml:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// SuccessStory кейс успешного сотрудничества.
type SuccessStory struct {
	ID          uuid.UUID      `db:"id" json:"id" yaml:"-"`
	Slug        string         `db:"slug" json:"slug" yaml:"slug"`
	Title       string         `db:"title" json:"title" yaml:"title"`
	BrandName   string         `db:"brand_name" json:"brand_name" yaml:"brand_name"`
	PartnerName string         `db:"partner_name" json:"partner_name" yaml:"partner_name"`
	Summary     string         `db:"summary" json:"summary" yaml:"summary"`
	Body        string         `db:"body" json:"body" yaml:"body"`
	ImageURL    *string        `db:"image_url" json:"image_url,omitempty" yaml:"image_url"`
	Metrics     types.JSONText `db:"metrics" json:"metrics" yaml:"-"`
	PublishedAt time.Time      `db:"published_at" json:"published_at" yaml:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at" yaml:"-"`
}
