package imagehost

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lusail/account-service/internal/pkg/config"
)

const (
	DriverS3    = "s3"
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
)

var (
	ErrUnknownDriver = errors.New("imagehost: unknown driver")
	ErrMissingBucket = errors.New("imagehost: bucket is required")
)

// New builds the Host for cfg.Driver. When no public URL is configured the
// provider's default object URL is used.
func New(ctx context.Context, cfg config.ImageHostConfig) (*Host, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}

	var (
		store objectStore
		err   error
	)
	switch strings.ToLower(cfg.Driver) {
	case DriverS3:
		store, err = newS3Store(ctx, S3Options{
			Bucket:       cfg.Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3Endpoint != "",
		})
	case DriverGCS:
		store, err = newGCSStore(ctx, GCSOptions{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.GCSCredentialsFile,
		})
	case DriverMinIO:
		store, err = newMinIOStore(MinIOOptions{
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("imagehost %s: %w", cfg.Driver, err)
	}

	return newHost(store, cfg.Folder, publicURL(cfg)), nil
}

func publicURL(cfg config.ImageHostConfig) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	switch strings.ToLower(cfg.Driver) {
	case DriverGCS:
		return "https://storage.googleapis.com/" + cfg.Bucket
	case DriverMinIO:
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.Bucket)
	default:
		if cfg.S3Endpoint != "" {
			return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.Bucket
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.S3Region)
	}
}
