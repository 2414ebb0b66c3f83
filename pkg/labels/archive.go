package labels

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	URLExpiry       time.Duration
}

// Archiver stores printed labels so a print station can fetch them later.
type Archiver interface {
	Archive(ctx context.Context, materialID int64, png []byte) (string, error)
}

type MinioArchive struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger *logrus.Logger
}

// NewMinioArchive connects and makes sure the label bucket exists.
func NewMinioArchive(ctx context.Context, cfg Config, logger *logrus.Logger) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &MinioArchive{client: client, bucket: cfg.BucketName, expiry: expiry, logger: logger}, nil
}

// ObjectName is where the label of a material lives in the bucket. A
// material keeps one label; reprinting overwrites it.
func ObjectName(materialID int64) string {
	return fmt.Sprintf("labels/material-%d.png", materialID)
}

// Archive uploads the PNG and returns a presigned download URL.
func (a *MinioArchive) Archive(ctx context.Context, materialID int64, png []byte) (string, error) {
	name := ObjectName(materialID)
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(png), int64(len(png)), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload label: %w", err)
	}

	u, err := a.client.PresignedGetObject(ctx, a.bucket, name, a.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign label url: %w", err)
	}
	a.logger.WithFields(logrus.Fields{"material_id": materialID, "object": name}).Info("label archived")
	return u.String(), nil
}
