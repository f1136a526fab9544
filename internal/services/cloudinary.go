package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryFailed = "Cloudinary upload failed"

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	// BaseURL overrides the upload API root, mainly for tests.
	BaseURL string
	Timeout time.Duration
}

// CloudinaryUploader sends unsigned uploads using an upload preset.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	cfg    CloudinaryConfig
	logger *slog.Logger
}

func NewCloudinaryUploader(cfg CloudinaryConfig, logger *slog.Logger) (*CloudinaryUploader, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	// Unsigned uploads need no API key or secret.
	cld, err := cloudinary.NewFromParams(cfg.CloudName, "", "")
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	if cfg.BaseURL != "" {
		cld.Config.API.UploadPrefix = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &CloudinaryUploader{cld: cld, cfg: cfg, logger: logger}, nil
}

func (u *CloudinaryUploader) UploadImage(ctx context.Context, up Upload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	resp, err := u.cld.Upload.UnsignedUpload(ctx, up.Body, u.cfg.UploadPreset, uploader.UploadParams{
		ResourceType: "image",
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "cloudinary request failed", "error", err)
		return "", &UploadError{Message: cloudinaryFailed}
	}
	if resp == nil || resp.SecureURL == "" {
		msg := cloudinaryFailed
		if resp != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		u.logger.WarnContext(ctx, "cloudinary rejected upload", "reason", msg)
		return "", &UploadError{Message: msg}
	}

	u.logger.InfoContext(ctx, "image uploaded", "backend", "cloudinary", "url", resp.SecureURL)
	return resp.SecureURL, nil
}
