package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/sheets"
)

// SheetReader читает итог сборов из таблицы.
type SheetReader interface {
	FetchTotal(ctx context.Context) (*sheets.Total, error)
}

// FundraisingService отдаёт сумму сборов с кэшированием.
type FundraisingService struct {
	reader SheetReader
	cache  *CacheService
	ttl    time.Duration
}

func NewFundraisingService(reader SheetReader, cache *CacheService, ttl time.Duration) *FundraisingService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FundraisingService{reader: reader, cache: cache, ttl: ttl}
}

// Total возвращает сумму; ошибка таблицы отдаётся как 502.
func (s *FundraisingService) Total(ctx context.Context) (*sheets.Total, error) {
	v, err := s.cache.GetOrSet(ctx, cacheKeyFundraising, s.ttl, func() (interface{}, error) {
		return s.reader.FetchTotal(ctx)
	})
	if err != nil {
		if errors.Is(err, sheets.ErrNotConfigured) {
			return nil, apperror.New(apperror.ErrCodeInternal, "fundraising sheet is not configured")
		}
		logger.Log.WithFields(logrus.Fields{"error": err.Error()}).Warn("fundraising service: таблица недоступна")
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось получить данные о сборах")
	}
	return v.(*sheets.Total), nil
}
