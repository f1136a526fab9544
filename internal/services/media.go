package services

import (
	"context"
	"io"
)

// Upload is an image received from an admin, already size-checked and sniffed.
type Upload struct {
	Filename    string
	ContentType string
	Extension   string
	Size        int64
	Body        io.Reader
}

// Uploader stores an image on a media host and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, up Upload) (string, error)
}
