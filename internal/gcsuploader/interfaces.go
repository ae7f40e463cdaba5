package gcsuploader

import (
	"context"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/gcs"
	"google.golang.org/api/option"
)

// Re-export interface from shared package
type StorageService = gcs.StorageService

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage.
type GCSStorageService struct {
	opts []option.ClientOption
}

// NewGCSStorageService creates a new instance of GCSStorageService. Every
// call opens its client with opts.
func NewGCSStorageService(opts ...option.ClientOption) *GCSStorageService {
	return &GCSStorageService{opts: opts}
}

// NewFromConfig builds a GCSStorageService from the gcs section of the
// import config. With nothing set, Application Default Credentials apply.
func NewFromConfig(cfg config.GCSConfig) *GCSStorageService {
	return NewGCSStorageService(ClientOptions(cfg)...)
}

// ClientOptions translates the gcs config section into client options.
func ClientOptions(cfg config.GCSConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	switch {
	case cfg.Anonymous:
		opts = append(opts, option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return opts
}

func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return UploadFile(ctx, bucketName, objectName, filePath, s.opts...)
}

func (s *GCSStorageService) UploadBytes(ctx context.Context, gcsURI string, data []byte, contentType string) error {
	return UploadBytes(ctx, gcsURI, data, contentType, s.opts...)
}

func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchFromGCS(ctx, gcsURI, s.opts...)
}

func (s *GCSStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return gcs.Filename(uri)
}
