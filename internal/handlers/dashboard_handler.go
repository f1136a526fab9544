package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the user counters and the newest users.
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.users.Stats(ctx)
	if err != nil {
		h.serverError(c, "Failed to load dashboard", err)
		return
	}

	// Read straight from the store so the cached users listing is untouched.
	batch, err := h.users.Page(ctx, nil, UsersPageSize)
	if err != nil {
		h.serverError(c, "Failed to load dashboard", err)
		return
	}
	recent := batch.Items
	if len(recent) > RecentUsersCount {
		recent = recent[:RecentUsersCount]
	}

	respondOK(c, http.StatusOK, "", gin.H{"stats": stats, "recentUsers": recent})
}
