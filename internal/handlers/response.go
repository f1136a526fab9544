package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/middleware"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/validator"
)

func respondOK(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// badRequest answers 400 with message, listing the failed fields when err
// comes from the validator.
func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"success": false, "message": message}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body["errors"] = verrs
	}
	c.JSON(http.StatusBadRequest, body)
}

// serverError logs err with the request id and answers 500 with message.
func (h *Handler) serverError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	h.logger.ErrorContext(c.Request.Context(), message,
		"request_id", c.GetString(middleware.RequestIDKey),
		"error", err,
	)
	respondError(c, http.StatusInternalServerError, message)
}

// IDParam is the :id path parameter of the resource routes.
type IDParam struct {
	ID string `uri:"id" json:"id" validate:"objectid"`
}

// bindID reads :id and answers 400 when it is not a document id.
func (h *Handler) bindID(c *gin.Context) (string, bool) {
	var p IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		badRequest(c, "Invalid id", nil)
		return "", false
	}
	if err := h.validate.Validate(p); err != nil {
		badRequest(c, "Invalid id", err)
		return "", false
	}
	return p.ID, true
}

func sessionID(c *gin.Context) string {
	return c.GetString(middleware.SessionIDKey)
}

func listingKey(c *gin.Context, listing string) string {
	return sessionID(c) + ":" + listing
}

// pageQuery reads ?page= (default 1) and ?reset=.
func pageQuery(c *gin.Context) (int, bool, error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, false, paging.ErrInvalidPage
		}
		page = n
	}
	reset, _ := strconv.ParseBool(c.DefaultQuery("reset", "false"))
	return page, reset, nil
}

// pagingError answers the errors paging.Fetch reports for bad page requests.
// It returns false when err is not one of them.
func pagingError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, paging.ErrInvalidPage):
		respondError(c, http.StatusBadRequest, "Page must be 1 or greater")
	case errors.Is(err, paging.ErrCursorMissing):
		respondError(c, http.StatusBadRequest, "Load the previous page first")
	default:
		return false
	}
	return true
}
