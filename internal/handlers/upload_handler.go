package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/services"
)

// multipartOverhead leaves room for the form boundaries around the file.
const multipartOverhead = 1 << 20

// UploadImage stores the "file" form field on the media host and returns its URL.
// Only images are accepted, detected from the content rather than the file name.
func (h *Handler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.imageTooLarge(c)
			return
		}
		respondError(c, http.StatusBadRequest, "Please select an image first.")
		return
	}
	if header.Size > h.maxUploadBytes {
		h.imageTooLarge(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.serverError(c, "Image upload failed!", err)
		return
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		h.serverError(c, "Image upload failed!", err)
		return
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		respondError(c, http.StatusUnsupportedMediaType, "Only image files are allowed")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.serverError(c, "Image upload failed!", err)
		return
	}

	url, err := h.media.UploadImage(c.Request.Context(), services.Upload{
		Filename:    header.Filename,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		var uploadErr *services.UploadError
		if errors.As(err, &uploadErr) {
			_ = c.Error(err)
			respondError(c, http.StatusBadGateway, uploadErr.Message)
			return
		}
		h.serverError(c, "Image upload failed!", err)
		return
	}

	respondOK(c, http.StatusCreated, "Image uploaded successfully!", gin.H{"url": url})
}

func (h *Handler) imageTooLarge(c *gin.Context) {
	respondError(c, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Image must be %d MB or smaller", h.maxUploadBytes>>20))
}
