package repository

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ListingQuery параметры выборки объявлений для ленты, владельца и модерации.
type ListingQuery struct {
	OwnerID            *uuid.UUID
	Status             valueobject.ListingStatus
	VerificationStatus valueobject.VerificationStatus
	Filter             models.FeedFilter
	Limit              uint64
	Offset             uint64
}

// FeedQuery только одобренные и активные объявления.
func FeedQuery(filter models.FeedFilter) ListingQuery {
	return ListingQuery{
		Status:             valueobject.ListingActive,
		VerificationStatus: valueobject.VerificationApproved,
		Filter:             filter,
	}
}

// buildListingSelect собирает SELECT по таблице opportunities или posts.
func buildListingSelect(table string, q ListingQuery, searchHashtags bool) squirrel.SelectBuilder {
	where := squirrel.And{}
	if q.OwnerID != nil {
		where = append(where, squirrel.Expr("owner_id = ?", *q.OwnerID))
	}
	if q.Status != "" {
		where = append(where, squirrel.Eq{"status": string(q.Status)})
	}
	if q.VerificationStatus != "" {
		where = append(where, squirrel.Eq{"verification_status": string(q.VerificationStatus)})
	}

	f := q.Filter
	if f.CategoryID != nil {
		where = append(where, squirrel.Expr("category_id = ?", *f.CategoryID))
	}
	// диапазоны цен пересекаются
	if f.PriceMin != nil {
		where = append(where, squirrel.Expr("COALESCE(price_max, price_min) >= ?", *f.PriceMin))
	}
	if f.PriceMax != nil {
		where = append(where, squirrel.Expr("COALESCE(price_min, price_max) <= ?", *f.PriceMax))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, squirrel.ILike{"location": "%" + loc + "%"})
	}
	if adType := strings.TrimSpace(f.AdType); adType != "" {
		where = append(where, squirrel.Eq{"ad_type": adType})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + search + "%"
		or := squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		}
		if searchHashtags {
			or = append(or, squirrel.Expr("array_to_string(hashtags, ' ') ILIKE ?", pattern))
		}
		where = append(where, or)
	}

	sb := psql.Select("*").From(table).OrderBy("created_at DESC")
	if len(where) > 0 {
		sb = sb.Where(where)
	}
	if q.Limit > 0 {
		sb = sb.Limit(q.Limit)
	}
	if q.Offset > 0 {
		sb = sb.Offset(q.Offset)
	}
	return sb
}
