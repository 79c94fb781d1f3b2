package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
)

// SeedRepository добавляет отсутствующий контент.
type SeedRepository interface {
	SeedContent(ctx context.Context, categories []models.Category, logos []models.ClientLogo, stories []models.SuccessStory) (int64, error)
}

// SeedContent содержимое seed/content.yaml.
type SeedContent struct {
	Categories     []models.Category   `yaml:"categories"`
	ClientLogos    []models.ClientLogo `yaml:"client_logos"`
	SuccessStories []seedStory         `yaml:"success_stories"`
}

type seedStory struct {
	models.SuccessStory `yaml:",inline"`
	Metrics             map[string]any `yaml:"metrics"`
	PublishedAt         string         `yaml:"published_at"`
}

// SeedService заполняет справочники при старте.
type SeedService struct {
	repo  SeedRepository
	cache *CacheService
}

// NewSeedService создаёт сервис сида.
func NewSeedService(repo SeedRepository, cache *CacheService) *SeedService {
	return &SeedService{repo: repo, cache: cache}
}

// ParseSeed разбирает YAML сида.
func ParseSeed(r io.Reader) (*SeedContent, error) {
	var content SeedContent
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&content); err != nil {
		if errors.Is(err, io.EOF) {
			return &content, nil
		}
		return nil, fmt.Errorf("seed: decode yaml: %w", err)
	}

	for i, c := range content.Categories {
		if c.Slug == "" || c.Name == "" {
			return nil, fmt.Errorf("seed: category #%d: slug и name обязательны", i+1)
		}
	}
	for i, l := range content.ClientLogos {
		if l.Name == "" || l.LogoURL == "" {
			return nil, fmt.Errorf("seed: client logo #%d: name и logo_url обязательны", i+1)
		}
	}
	for i, s := range content.SuccessStories {
		if s.Slug == "" || s.Title == "" {
			return nil, fmt.Errorf("seed: success story #%d: slug и title обязательны", i+1)
		}
	}
	return &content, nil
}

// Stories переводит истории из YAML в модели.
func (c *SeedContent) Stories() ([]models.SuccessStory, error) {
	out := make([]models.SuccessStory, 0, len(c.SuccessStories))
	for _, s := range c.SuccessStories {
		story := s.SuccessStory
		if len(s.Metrics) > 0 {
			raw, err := json.Marshal(s.Metrics)
			if err != nil {
				return nil, fmt.Errorf("seed: metrics %s: %w", s.Slug, err)
			}
			story.Metrics = types.JSONText(raw)
		}
		if s.PublishedAt != "" {
			t, err := time.Parse("2006-01-02", s.PublishedAt)
			if err != nil {
				return nil, fmt.Errorf("seed: published_at %s: %w", s.Slug, err)
			}
			story.PublishedAt = t
		}
		out = append(out, story)
	}
	return out, nil
}

// SeedFromFile загружает файл и добавляет отсутствующие записи.
// Отсутствие файла не ошибка: сид необязателен.
func (s *SeedService) SeedFromFile(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Log.WithField("path", path).Info("seed: файл не найден, пропускаем")
			return 0, nil
		}
		return 0, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer f.Close()

	content, err := ParseSeed(f)
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, content)
}

// Seed записывает контент, существующие записи не перезаписываются.
func (s *SeedService) Seed(ctx context.Context, content *SeedContent) (int64, error) {
	stories, err := content.Stories()
	if err != nil {
		return 0, err
	}

	inserted, err := s.repo.SeedContent(ctx, content.Categories, content.ClientLogos, stories)
	if err != nil {
		return 0, fmt.Errorf("seed service: %w", err)
	}

	if inserted > 0 && s.cache != nil {
		s.cache.InvalidateCatalog()
	}

	logger.Log.WithFields(logrus.Fields{
		"categories": len(content.Categories),
		"logos":      len(content.ClientLogos),
		"stories":    len(stories),
		"inserted":   inserted,
	}).Info("seed: контент загружен")
	return inserted, nil
}
