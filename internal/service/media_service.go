package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/storage"
)

// Разрешённые типы медиа: изображения для профилей и объявлений, видео для публикаций.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

// filetype читает не больше 262 байт заголовка
const sniffLen = 262

// MediaRepository записи о загруженных файлах.
type MediaRepository interface {
	Create(ctx context.Context, media *models.MediaFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	Delete(ctx context.Context, mediaID uuid.UUID) error
}

// MediaService загружает файлы в хранилище и выдаёт публичные ссылки.
type MediaService struct {
	repo  MediaRepository
	store storage.Storage
}

func NewMediaService(repo MediaRepository, store storage.Storage) *MediaService {
	return &MediaService{repo: repo, store: store}
}

// Upload проверяет реальный тип файла по магическим байтам и сохраняет его.
func (s *MediaService) Upload(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*models.MediaFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "не удалось прочитать файл")
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "файл не может быть пустым")
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла")
	}
	contentType := kind.MIME.Value
	if !allowedMediaTypes[contentType] {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("неподдерживаемый тип файла (%s). Разрешены: %s", contentType, strings.Join(allowedMediaList(), ", ")))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	expected := "." + kind.Extension
	switch {
	case ext == "":
		filename = "media" + expected
	case !sameExtension(ext, expected):
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expected))
	}

	obj, err := s.store.Save(ctx, userID, filename, contentType, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperror.New(apperror.ErrCodeValidation, "файл превышает допустимый размер")
		}
		return nil, apperror.Internal(err)
	}

	media := &models.MediaFile{
		UserID:    &userID,
		ObjectKey: obj.Key,
		URL:       obj.URL,
		FileType:  contentType,
		FileSize:  obj.Size,
	}
	if err := s.repo.Create(ctx, media); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			logger.Log.WithFields(logrus.Fields{"key": obj.Key, "error": delErr.Error()}).Warn("media service: не удалось удалить файл без записи")
		}
		return nil, apperror.Internal(err)
	}
	return media, nil
}

// Delete удаляет файл владельца.
func (s *MediaService) Delete(ctx context.Context, userID, mediaID uuid.UUID) error {
	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "файл не найден")
		}
		return apperror.Internal(err)
	}
	if media.UserID == nil || *media.UserID != userID {
		return apperror.New(apperror.ErrCodeForbidden, "у вас нет прав на удаление этого файла")
	}

	if err := s.repo.Delete(ctx, mediaID); err != nil {
		return apperror.Internal(err)
	}
	// запись уже удалена, осиротевший объект не повод для ошибки клиенту
	if err := s.store.Delete(ctx, media.ObjectKey); err != nil {
		logger.Log.WithFields(logrus.Fields{"key": media.ObjectKey, "error": err.Error()}).Warn("media service: не удалось удалить объект")
	}
	return nil
}

func sameExtension(ext, expected string) bool {
	if ext == expected {
		return true
	}
	jpeg := map[string]bool{".jpg": true, ".jpeg": true}
	return jpeg[ext] && jpeg[expected]
}

func allowedMediaList() []string {
	out := make([]string, 0, len(allowedMediaTypes))
	for t := range allowedMediaTypes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
