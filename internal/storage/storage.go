package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
)

// ErrTooLarge возвращается, если файл превышает лимит загрузки.
var ErrTooLarge = errors.New("storage: file exceeds upload limit")

// Object сохранённый файл.
type Object struct {
	Key  string
	URL  string
	Size int64
}

// Storage хранит медиафайлы и выдаёт публичные ссылки на них.
type Storage interface {
	Save(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New выбирает реализацию по STORAGE_TYPE.
func New(cfg config.StorageConfig, maxUploadMB int64) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath, cfg.PublicURL, maxUploadMB)
	case "s3":
		return NewS3Storage(cfg, maxUploadMB)
	default:
		return nil, fmt.Errorf("storage: неизвестный тип хранилища %q", cfg.Type)
	}
}

// objectKey строит ключ вида <user>/<user>_<nanos><ext>.
func objectKey(userID uuid.UUID, originalName string) string {
	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%s_%d%s", userID.String(), time.Now().UnixNano(), strings.ToLower(filepath.Ext(safeName)))
	return userID.String() + "/" + fileName
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "media"
	}
	return name
}

// limitedReader считает байты и падает с ErrTooLarge после лимита.
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return n, ErrTooLarge
	}
	return n, err
}
