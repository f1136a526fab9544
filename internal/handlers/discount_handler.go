package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/store"
)

const invalidDiscount = "Please enter a valid discount between 0 and 100"

type DiscountRequest struct {
	Value *float64 `json:"discount" validate:"required,gte=0,lte=100"`
}

type DiscountStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// GetDiscount returns the discount, or null when none is set.
func (h *Handler) GetDiscount(c *gin.Context) {
	discount, err := h.discount.Get(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fetch discount", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"discount": discount})
}

// SaveDiscount replaces the discount and activates it. The value is checked
// before anything is written.
func (h *Handler) SaveDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, invalidDiscount)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, invalidDiscount, err)
		return
	}

	discount, err := h.discount.Save(c.Request.Context(), *req.Value)
	if err != nil {
		h.serverError(c, "Failed to save discount", err)
		return
	}
	respondOK(c, http.StatusOK, "Discount saved successfully", gin.H{"discount": discount})
}

func (h *Handler) SetDiscountStatus(c *gin.Context) {
	var req DiscountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "isActive is required", err)
		return
	}

	if err := h.discount.SetActive(c.Request.Context(), *req.IsActive); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Discount not found")
			return
		}
		h.serverError(c, "Failed to update discount status", err)
		return
	}

	message := "Discount deactivated"
	if *req.IsActive {
		message = "Discount activated"
	}
	respondOK(c, http.StatusOK, message, nil)
}

func (h *Handler) DeleteDiscount(c *gin.Context) {
	if err := h.discount.Delete(c.Request.Context()); err != nil {
		h.serverError(c, "Failed to delete discount", err)
		return
	}
	respondOK(c, http.StatusOK, "Discount deleted successfully", nil)
}
