package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket string
	Region string
	Prefix string
	// PublicURL is the base the object key is appended to, e.g. a CDN domain.
	// Empty means the bucket's virtual-hosted URL.
	PublicURL       string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type S3Uploader struct {
	client ObjectPutter
	cfg    S3Config
	logger *slog.Logger
	newKey func() string
}

// NewS3Client loads the default AWS config, using static keys when both are set.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Uploader(client ObjectPutter, cfg S3Config, logger *slog.Logger) *S3Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Uploader{client: client, cfg: cfg, logger: logger, newKey: uuid.NewString}
}

func (u *S3Uploader) objectKey(ext string) string {
	return path.Join(strings.Trim(u.cfg.Prefix, "/"), u.newKey()+ext)
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicURL != "" {
		return strings.TrimRight(u.cfg.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func (u *S3Uploader) UploadImage(ctx context.Context, up Upload) (string, error) {
	key := u.objectKey(up.Extension)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        up.Body,
		ContentType: aws.String(up.ContentType),
	}
	if up.Size > 0 {
		input.ContentLength = aws.Int64(up.Size)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		u.logger.Error("s3 upload failed", "bucket", u.cfg.Bucket, "key", key, "error", err)
		return "", &UploadError{Message: "Image upload failed"}
	}

	url := u.publicURL(key)
	u.logger.Info("image uploaded", "backend", "s3", "key", key)
	return url, nil
}
