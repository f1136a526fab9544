package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/store"
	"github.com/powervate/admin-api/internal/utils"
)

const usersListing = "users"

type CreateUserRequest struct {
	FullName string `json:"fullName" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type DateRangeQuery struct {
	From string `form:"from" json:"from" validate:"dateformat"`
	To   string `form:"to" json:"to" validate:"dateformat"`
}

// GetUsers returns one page of app users, newest first.
// e.g. /api/users?page=2 or /api/users?page=1&reset=true
func (h *Handler) GetUsers(c *gin.Context) {
	page, reset, err := pageQuery(c)
	if err != nil {
		pagingError(c, err)
		return
	}
	h.usersPage(c, page, reset)
}

func (h *Handler) usersPage(c *gin.Context, page int, reset bool) {
	result, err := paging.Fetch(c.Request.Context(), h.userPages, listingKey(c, usersListing), page, reset, h.users.Page)
	if err != nil {
		if pagingError(c, err) {
			return
		}
		h.serverError(c, "Failed to fetch users", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"users": result.Items, "page": result.Page, "hasMore": result.HasMore})
}

// SearchUsers matches the start of the full name. An empty name goes back to
// the first page of the regular listing.
func (h *Handler) SearchUsers(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		h.usersPage(c, 1, true)
		return
	}

	users, err := h.users.SearchByName(c.Request.Context(), name)
	if err != nil {
		h.serverError(c, "Failed to fetch users by name", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"users": users, "page": 1, "hasMore": false})
}

// GetUsersByDate filters on creation date, both ends inclusive.
// e.g. /api/users/by-date?from=2024-07-01&to=2024-07-31
func (h *Handler) GetUsersByDate(c *gin.Context) {
	q := DateRangeQuery{From: c.Query("from"), To: c.Query("to")}
	if q.From == "" || q.To == "" {
		respondError(c, http.StatusBadRequest, "Please select both From and To dates")
		return
	}
	if err := h.validate.Validate(q); err != nil {
		badRequest(c, "Dates must use the YYYY-MM-DD format", err)
		return
	}

	from, _ := time.ParseInLocation("2006-01-02", q.From, time.UTC)
	to, _ := time.ParseInLocation("2006-01-02", q.To, time.UTC)
	// Extend to the last millisecond of the end day
	to = to.Add(24*time.Hour - time.Millisecond)
	if from.After(to) {
		respondError(c, http.StatusBadRequest, "From date must be before To date")
		return
	}

	users, err := h.users.ByDateRange(c.Request.Context(), from, to)
	if err != nil {
		h.serverError(c, "Failed to fetch users", err)
		return
	}
	message := ""
	if len(users) == 0 {
		message = "No users found in this date range"
	}
	respondOK(c, http.StatusOK, message, gin.H{"users": users, "page": 1, "hasMore": false})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please fill in all fields", err)
		return
	}

	hash, err := utils.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.serverError(c, "Failed to create user", err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), strings.TrimSpace(req.FullName), strings.TrimSpace(req.Email), hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		h.serverError(c, "Failed to create user", err)
		return
	}

	respondOK(c, http.StatusCreated, "User Created Successfully", gin.H{"id": user.ID.Hex(), "user": user})
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "Failed to fetch user details", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"user": user})
}

// UpdateUserRequest holds the profile keys an admin may edit. Absent keys are
// left unchanged and unknown keys are ignored.
type UpdateUserRequest struct {
	FullName      *string  `json:"fullName" validate:"omitempty,notblank"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Phone         *string  `json:"phone"`
	Nickname      *string  `json:"nickname"`
	Gender        *string  `json:"gender"`
	WorkoutGoal   *string  `json:"workoutGoal"`
	ActivityLevel *string  `json:"activityLevel"`
	Age           *float64 `json:"age"`
	Weight        *float64 `json:"weight"`
	Height        *float64 `json:"height"`
}

// profileSet maps the provided fields to dotted profile keys.
func (r UpdateUserRequest) profileSet() bson.M {
	set := bson.M{}
	text := map[string]*string{
		"fullName":      r.FullName,
		"email":         r.Email,
		"phone":         r.Phone,
		"nickname":      r.Nickname,
		"gender":        r.Gender,
		"workoutGoal":   r.WorkoutGoal,
		"activityLevel": r.ActivityLevel,
	}
	for key, value := range text {
		if value != nil {
			set["profile."+key] = strings.TrimSpace(*value)
		}
	}
	numbers := map[string]*float64{
		"age":    r.Age,
		"weight": r.Weight,
		"height": r.Height,
	}
	for key, value := range numbers {
		if value != nil {
			set["profile."+key] = *value
		}
	}
	return set
}

// UpdateUser merges the editable profile keys of the body into the profile.
// An admin's email is tied to their sign-in and only changes from their own settings.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Invalid user fields", err)
		return
	}

	ctx := c.Request.Context()
	current, err := h.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "Failed to update user", err)
		return
	}

	if current.IsAdmin && req.Email != nil && !strings.EqualFold(strings.TrimSpace(*req.Email), current.Profile.Email) {
		respondError(c, http.StatusForbidden, "Admin emails can only be changed from the admin's own settings")
		return
	}

	set := req.profileSet()
	if len(set) == 0 {
		respondOK(c, http.StatusOK, "User updated successfully", gin.H{"user": current})
		return
	}

	set["profile.fullName_lower"] = fullNameLower(req.FullName, current.Profile)
	if err := h.users.SetFields(ctx, id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "Failed to update user", err)
		return
	}

	updated, err := h.users.Get(ctx, id)
	if err != nil {
		h.serverError(c, "Failed to update user", err)
		return
	}
	respondOK(c, http.StatusOK, "User updated successfully", gin.H{"user": updated})
}

// fullNameLower picks the new lower-cased name, or keeps the stored one.
func fullNameLower(name *string, profile models.UserProfile) string {
	if name != nil && strings.TrimSpace(*name) != "" {
		return strings.ToLower(strings.TrimSpace(*name))
	}
	if profile.FullNameLower != "" {
		return profile.FullNameLower
	}
	return strings.ToLower(profile.FullName)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	err := h.users.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "Failed to delete user", err)
		return
	}
	respondOK(c, http.StatusOK, "User deleted successfully", nil)
}
