package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/store"
)

type PricingPlanRequest struct {
	Duration       string   `json:"duration" validate:"notblank"`
	Price          *float64 `json:"price" validate:"required,gte=0"`
	CustomProducts *float64 `json:"customProducts" validate:"required,gte=0"`
}

// GetPricingPlans always returns one entry per slot, null for empty slots.
func (h *Handler) GetPricingPlans(c *gin.Context) {
	plans, err := h.pricing.Slots(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fetch pricing plans", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"plans": plans})
}

func planSlot(c *gin.Context) (int, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil || slot < 0 || slot >= models.PricingPlanSlots {
		respondError(c, http.StatusBadRequest, "Plan slot must be between 0 and 3")
		return 0, false
	}
	return slot, true
}

func (h *Handler) SavePricingPlan(c *gin.Context) {
	slot, ok := planSlot(c)
	if !ok {
		return
	}
	var req PricingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please fill all fields", err)
		return
	}

	plan, err := h.pricing.SaveSlot(c.Request.Context(), models.PricingPlan{
		Duration:       strings.TrimSpace(req.Duration),
		Price:          *req.Price,
		CustomProducts: *req.CustomProducts,
		PlanNumber:     slot,
	})
	if err != nil {
		h.serverError(c, "Failed to save pricing plan", err)
		return
	}
	respondOK(c, http.StatusOK, "Plan saved", gin.H{"plan": plan})
}

func (h *Handler) DeletePricingPlan(c *gin.Context) {
	slot, ok := planSlot(c)
	if !ok {
		return
	}
	if err := h.pricing.DeleteSlot(c.Request.Context(), slot); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Plan not found")
			return
		}
		h.serverError(c, "Failed to delete pricing plan", err)
		return
	}
	respondOK(c, http.StatusOK, "Plan deleted", nil)
}
