package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProfileVariant реализуется каждым вариантом профиля.
type ProfileVariant interface {
	Kind() UserType
	Validate() error
}

type BrandProfile struct {
	Industry            string   `json:"industry"`
	AnnualBudget        *float64 `json:"annual_budget,omitempty"`
	PreferredCategories []string `json:"preferred_categories,omitempty"`
}

func (BrandProfile) Kind() UserType { return UserTypeBrand }

func (b BrandProfile) Validate() error {
	if strings.TrimSpace(b.Industry) == "" {
		return fmt.Errorf("industry обязателен для бренда")
	}
	if b.AnnualBudget != nil && *b.AnnualBudget < 0 {
		return fmt.Errorf("annual_budget не может быть отрицательным")
	}
	return nil
}

type AgencyProfile struct {
	AgencyName        string   `json:"agency_name"`
	RepresentedBrands []string `json:"represented_brands,omitempty"`
}

func (AgencyProfile) Kind() UserType { return UserTypeAgency }

func (a AgencyProfile) Validate() error {
	if strings.TrimSpace(a.AgencyName) == "" {
		return fmt.Errorf("agency_name обязателен для агентства")
	}
	return nil
}

type CreatorProfile struct {
	ContentNiche string  `json:"content_niche"`
	PortfolioURL *string `json:"portfolio_url,omitempty"`
}

func (CreatorProfile) Kind() UserType { return UserTypeCreator }

func (c CreatorProfile) Validate() error {
	if strings.TrimSpace(c.ContentNiche) == "" {
		return fmt.Errorf("content_niche обязателен для создателя")
	}
	return nil
}

type EventOrganizerProfile struct {
	OrganizationName  string   `json:"organization_name"`
	EventTypes        []string `json:"event_types,omitempty"`
	AverageAttendance *int     `json:"average_attendance,omitempty"`
}

func (EventOrganizerProfile) Kind() UserType { return UserTypeEventOrganizer }

func (e EventOrganizerProfile) Validate() error {
	if strings.TrimSpace(e.OrganizationName) == "" {
		return fmt.Errorf("organization_name обязателен для организатора")
	}
	if e.AverageAttendance != nil && *e.AverageAttendance < 0 {
		return fmt.Errorf("average_attendance не может быть отрицательным")
	}
	return nil
}

type InfluencerProfile struct {
	PrimaryPlatform string `json:"primary_platform"`
	Niche           string `json:"niche,omitempty"`
	FollowerCount   *int64 `json:"follower_count,omitempty"`
}

func (InfluencerProfile) Kind() UserType { return UserTypeInfluencer }

func (i InfluencerProfile) Validate() error {
	if strings.TrimSpace(i.PrimaryPlatform) == "" {
		return fmt.Errorf("primary_platform обязателен для инфлюенсера")
	}
	return nil
}

type AdminProfile struct{}

func (AdminProfile) Kind() UserType { return UserTypeAdmin }

func (AdminProfile) Validate() error { return nil }

// DecodeVariant разбирает JSON деталей согласно user_type.
func DecodeVariant(userType UserType, raw []byte) (ProfileVariant, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var (
		variant ProfileVariant
		err     error
	)
	switch userType {
	case UserTypeBrand:
		var v BrandProfile
		err = json.Unmarshal(raw, &v)
		variant = v
	case UserTypeAgency:
		var v AgencyProfile
		err = json.Unmarshal(raw, &v)
		variant = v
	case UserTypeCreator:
		var v CreatorProfile
		err = json.Unmarshal(raw, &v)
		variant = v
	case UserTypeEventOrganizer:
		var v EventOrganizerProfile
		err = json.Unmarshal(raw, &v)
		variant = v
	case UserTypeInfluencer:
		var v InfluencerProfile
		err = json.Unmarshal(raw, &v)
		variant = v
	case UserTypeAdmin:
		variant = AdminProfile{}
	default:
		return nil, fmt.Errorf("неизвестный тип профиля %q", userType)
	}
	if err != nil {
		return nil, fmt.Errorf("некорректные детали профиля %s: %w", userType, err)
	}
	return variant, nil
}
