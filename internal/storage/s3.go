package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
)

// S3Storage хранит файлы в S3-совместимом бакете (AWS, R2, MinIO).
type S3Storage struct {
	client         *s3.S3
	uploader       *s3manager.Uploader
	bucket         string
	publicURL      string
	maxUploadBytes int64
}

// NewS3Storage создаёт клиента бакета.
func NewS3Storage(cfg config.StorageConfig, maxUploadMB int64) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required for s3 storage")
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create s3 session: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{
		client:         s3.New(sess),
		uploader:       s3manager.NewUploader(sess),
		bucket:         cfg.Bucket,
		publicURL:      publicURL,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save загружает файл в бакет.
func (s *S3Storage) Save(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (*Object, error) {
	key := objectKey(userID, originalName)
	body := &limitedReader{r: r, limit: s.maxUploadBytes}

	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		if errors.Is(err, ErrTooLarge) || body.read > s.maxUploadBytes {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("storage: failed to upload to s3: %w", err)
	}

	return &Object{Key: key, URL: s.URL(key), Size: body.read}, nil
}

// Delete удаляет объект из бакета.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: failed to delete from s3: %w", err)
	}
	return nil
}

func (s *S3Storage) URL(key string) string {
	return s.publicURL + "/" + key
}
