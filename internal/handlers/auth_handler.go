package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/middleware"
	"github.com/powervate/admin-api/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName        string `json:"fullName" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// authError maps the auth service errors to a status and the message shown to the admin.
func authError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", true
	case errors.Is(err, services.ErrNoProfile):
		return http.StatusForbidden, "No user profile found", true
	case errors.Is(err, services.ErrNotAdmin):
		return http.StatusForbidden, "You are not authorized as admin", true
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusUnauthorized, "Session expired, please sign in again", true
	case errors.Is(err, services.ErrRequiresRecentLogin):
		return http.StatusForbidden, "Please enter current password and click Save again to change email.", true
	case errors.Is(err, services.ErrWrongPassword):
		return http.StatusBadRequest, "Current password is incorrect", true
	case errors.Is(err, services.ErrCurrentPasswordRequired):
		return http.StatusBadRequest, "Please enter your current password to confirm", true
	case errors.Is(err, services.ErrPasswordTooShort):
		return http.StatusBadRequest, "New password must be at least 6 characters", true
	case errors.Is(err, services.ErrPasswordMismatch):
		return http.StatusBadRequest, "New password and confirm password do not match", true
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "An account with this email already exists", true
	}
	return 0, "", false
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please enter email and password", err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if status, msg, ok := authError(err); ok {
			respondError(c, status, msg)
			return
		}
		h.serverError(c, "Login failed", err)
		return
	}

	respondOK(c, http.StatusOK, "Login successful", gin.H{"token": result.Token, "admin": result.Admin})
}

// Logout ends the session and drops its cached listings. It always succeeds.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)
	if err := h.auth.Logout(ctx, sid); err != nil {
		h.logger.WarnContext(ctx, "logout failed", "session", sid, "error", err)
	}
	if err := h.userPages.Reset(ctx, listingKey(c, usersListing)); err != nil {
		h.logger.WarnContext(ctx, "dropping cached user pages failed", "session", sid, "error", err)
	}
	if err := h.productPages.Reset(ctx, listingKey(c, productsListing)); err != nil {
		h.logger.WarnContext(ctx, "dropping cached product pages failed", "session", sid, "error", err)
	}
	respondOK(c, http.StatusOK, "Logged out", nil)
}

// GetMe returns the admin profile cached in the session.
func (h *Handler) GetMe(c *gin.Context) {
	sess, ok := c.Get(middleware.SessionKey)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Admin profile not found")
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"admin": sess.(*services.Session).Admin})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please enter a name and a valid email", err)
		return
	}

	result, err := h.auth.UpdateProfile(c.Request.Context(), sessionID(c), services.ProfileUpdate{
		FullName:        req.FullName,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		if status, msg, ok := authError(err); ok {
			respondError(c, status, msg)
			return
		}
		h.serverError(c, "Failed to update profile", err)
		return
	}

	respondOK(c, http.StatusOK, "Profile updated", gin.H{"token": result.Token, "admin": result.Admin})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), sessionID(c), services.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
		Confirm: req.ConfirmPassword,
	})
	if err != nil {
		if status, msg, ok := authError(err); ok {
			respondError(c, status, msg)
			return
		}
		h.serverError(c, "Failed to update password", err)
		return
	}

	respondOK(c, http.StatusOK, "Password updated. Please use the new password next time.", nil)
}
