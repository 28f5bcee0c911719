package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds object storage connection configuration
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	UploadBucket  string
	PresignExpiry time.Duration
}

// Store reads images from S3-compatible object storage and issues presigned
// upload URLs.
type Store struct {
	client       *minio.Client
	uploadBucket string
	expiry       time.Duration
	logger       *slog.Logger
}

// NewStore creates a new object storage client
func NewStore(cfg *Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &Store{
		client:       client,
		uploadBucket: cfg.UploadBucket,
		expiry:       expiry,
		logger:       logger,
	}, nil
}

// Fetch downloads the object behind locator and returns its raw bytes.
func (s *Store) Fetch(ctx context.Context, locator string) ([]byte, error) {
	bucket, key, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Fetching image",
		slog.String("bucket", bucket),
		slog.String("key", key),
	)

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}

	return data, nil
}

// PresignedUpload describes a time-limited upload slot.
type PresignedUpload struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
}

// PresignUpload issues a presigned PUT URL for a new object under a dated
// uploads prefix, keyed so concurrent uploads of the same filename never
// collide.
func (s *Store) PresignUpload(ctx context.Context, filename string) (*PresignedUpload, error) {
	if filename == "" {
		filename = uuid.New().String() + ".jpg"
	}

	key := fmt.Sprintf("uploads/%s/%s-%s",
		time.Now().UTC().Format("2006/01/02"),
		uuid.New().String(),
		filename,
	)

	presigned, err := s.client.PresignedPutObject(ctx, s.uploadBucket, key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		URL:    presigned.String(),
		Key:    key,
		Bucket: s.uploadBucket,
	}, nil
}
