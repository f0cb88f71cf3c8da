package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"i-hire-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// ObjectStorage is the object storage interface for uploaded CVs.
type ObjectStorage interface {
	// UploadCVFromBytes uploads a CV original; returns the object key.
	UploadCVFromBytes(ctx context.Context, userID, fileExt string, data []byte) (string, error)

	// UploadCVText stores the extracted CV text; returns the object key.
	UploadCVText(ctx context.Context, userID string, text string) (string, error)

	// GetCV downloads a CV original by object key.
	GetCV(ctx context.Context, objectKey string) ([]byte, error)

	// GetCVText downloads extracted CV text by object key.
	GetCVText(ctx context.Context, objectKey string) (string, error)

	// GetPresignedURL generates a temporary download URL for a CV original.
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteCV removes a CV original.
	DeleteCV(ctx context.Context, objectKey string) error

	// Close releases resources.
	Close() error
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO provides object storage for CV originals and extracted text.
type MinIO struct {
	client       *minio.Client
	cfg          *config.MinIOConfig
	cvBucket     string
	cvTextBucket string
	logger       *log.Logger
}

// NewMinIO creates a MinIO client and ensures the CV buckets exist.
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("minio config is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	cvBucket := cfg.CVBucket
	if cvBucket == "" {
		cvBucket = "cv-originals"
	}
	cvTextBucket := cfg.CVTextBucket
	if cvTextBucket == "" {
		cvTextBucket = "cv-parsed-text"
	}

	m := &MinIO{
		client:       client,
		cfg:          cfg,
		cvBucket:     cvBucket,
		cvTextBucket: cvTextBucket,
		logger:       logger,
	}

	if err := m.ensureBucketExists(cvBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("ensuring CV bucket %s: %w", cvBucket, err)
	}
	if err := m.ensureBucketExists(cvTextBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("ensuring CV text bucket %s: %w", cvTextBucket, err)
	}

	if cfg.CVExpireDays > 0 || cfg.TextExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			logger.Printf("[MinIO] warning: failed to set lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] client initialized for endpoint: %s", cfg.Endpoint)
	return m, nil
}

func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", bucketName, err)
	}
	if !exists {
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] bucket %s created", bucketName)
	}
	return nil
}

func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.CVExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.cvBucket, "expire-cv-originals", m.cfg.CVExpireDays); err != nil {
			return fmt.Errorf("setting lifecycle on %s: %w", m.cvBucket, err)
		}
	}
	if m.cfg.TextExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.cvTextBucket, "expire-cv-text", m.cfg.TextExpireDays); err != nil {
			return fmt.Errorf("setting lifecycle on %s: %w", m.cvTextBucket, err)
		}
	}
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lcConfig := lifecycle.NewConfiguration()
	lcConfig.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}

	if err := m.client.SetBucketLifecycle(ctx, bucketName, lcConfig); err != nil {
		return err
	}
	return nil
}

// UploadCV uploads a CV original under cv/{userID}/original{ext}.
func (m *MinIO) UploadCV(ctx context.Context, userID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectName := fmt.Sprintf("cv/%s/original%s", userID, fileExt)
	contentType := getContentType(fileExt)

	_, err := m.client.PutObject(ctx, m.cvBucket, objectName, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("uploading CV %s: %w", objectName, err)
	}
	return objectName, nil
}

// UploadCVText stores extracted text under cv/{userID}/parsed_text.txt.
func (m *MinIO) UploadCVText(ctx context.Context, userID string, text string) (string, error) {
	objectName := fmt.Sprintf("cv/%s/parsed_text.txt", userID)

	_, err := m.client.PutObject(ctx, m.cvTextBucket, objectName,
		strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", fmt.Errorf("uploading CV text %s: %w", objectName, err)
	}
	return objectName, nil
}

func (m *MinIO) download(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting object %s/%s: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("stat object %s/%s: %w", bucketName, objectKey, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading object %s/%s: %w", bucketName, objectKey, err)
	}
	return data, nil
}

// GetCV downloads a CV original.
func (m *MinIO) GetCV(ctx context.Context, objectKey string) ([]byte, error) {
	return m.download(ctx, m.cvBucket, objectKey)
}

// GetCVText downloads extracted CV text.
func (m *MinIO) GetCVText(ctx context.Context, objectKey string) (string, error) {
	data, err := m.download(ctx, m.cvTextBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetPresignedURL generates a temporary download URL for a CV original.
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.cvBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("generating presigned URL: %w", err)
	}
	return presignedURL.String(), nil
}

// DeleteCV removes a CV original.
func (m *MinIO) DeleteCV(ctx context.Context, objectKey string) error {
	if err := m.client.RemoveObject(ctx, m.cvBucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("deleting object %s: %w", objectKey, err)
	}
	return nil
}

// Close releases resources. The MinIO client needs no explicit shutdown.
func (m *MinIO) Close() error {
	return nil
}

// UploadCVFromBytes is a convenience wrapper over UploadCV.
func (m *MinIO) UploadCVFromBytes(ctx context.Context, userID, fileExt string, data []byte) (string, error) {
	return m.UploadCV(ctx, userID, fileExt, bytes.NewReader(data), int64(len(data)))
}

func getContentType(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
