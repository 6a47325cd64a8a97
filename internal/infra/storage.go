package infra

// storage.go: image hosting for firma / fotoDPI uploads.
// Two drivers share the ImageStore contract: "local" writes under UPLOAD_DIR and
// serves files at /uploads/..., "s3" stores objects in a bucket and returns
// their public URL. Fetch resolves a stored reference back into bytes so that
// reports can embed the images whatever driver produced them.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	appcfg "github.com/andres1jh8/Registro-Back/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// LocalURLPrefix is the route under which the local driver's files are served.
const LocalURLPrefix = "/uploads/"

// ErrUnknownReference is returned by Fetch for references the store did not issue.
var ErrUnknownReference = errors.New("storage: reference not managed by this store")

// ImageStore uploads images and resolves their references.
type ImageStore interface {
	// Upload stores data under folder and returns the public reference (URL).
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
	// Fetch returns the bytes behind a reference previously returned by Upload.
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// NewImageStore builds the driver selected by STORAGE_DRIVER.
func NewImageStore(ctx context.Context, cfg *appcfg.Config) (ImageStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}

// objectName builds "<folder>/<uuid><ext>" keeping the original extension.
func objectName(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}

// ── Local driver ─────────────────────────────────────────────────────────────

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir is the root directory served under LocalURLPrefix.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Upload(_ context.Context, folder, filename, _ string, data []byte) (string, error) {
	name := objectName(folder, filename)
	full := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: create folder: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	return LocalURLPrefix + name, nil
}

func (s *LocalStore) Fetch(_ context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, LocalURLPrefix) {
		return nil, ErrUnknownReference
	}
	rel := path.Clean("/" + strings.TrimPrefix(ref, LocalURLPrefix))
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// ── S3 driver ────────────────────────────────────────────────────────────────

type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	cb      *CircuitBreaker
}

func NewS3Store(ctx context.Context, cfg *appcfg.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage: S3_BUCKET is required for the s3 driver")
	}
	awsConf, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(cfg.S3PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: baseURL,
		cb:      NewCircuitBreaker("s3", DefaultCBConfig()),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	key := objectName(folder, filename)
	err := s.cb.Execute(func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s in bucket %s: %w", key, s.bucket, err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3Store) Fetch(ctx context.Context, ref string) ([]byte, error) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil, ErrUnknownReference
	}
	key := strings.TrimPrefix(ref, prefix)

	var data []byte
	err := s.cb.Execute(func() error {
		resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", key, s.bucket, err)
	}
	return data, nil
}
