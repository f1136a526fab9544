package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/store"
	"github.com/powervate/admin-api/internal/utils"
)

type CreateDoctorRequest struct {
	FullName       string `json:"fullname" validate:"notblank"`
	Email          string `json:"email" validate:"required,email"`
	Specialty      string `json:"specialty" validate:"notblank"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	Experience     string `json:"experience"`
	Qualifications string `json:"qualifications"`
}

type UpdateDoctorRequest struct {
	FullName       *string `json:"fullname" validate:"omitempty,notblank"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Specialty      *string `json:"specialty" validate:"omitempty,notblank"`
	Password       *string `json:"password"`
	Phone          *string `json:"phone"`
	Experience     *string `json:"experience"`
	Qualifications *string `json:"qualifications"`
}

func (h *Handler) GetDoctors(c *gin.Context) {
	doctors, err := h.doctors.All(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to Get Doctor's Data", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"doctors": doctors})
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	doctor, err := h.doctors.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Doctor not found")
			return
		}
		h.serverError(c, "Failed to Get Doctor's Data", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"doctor": doctor})
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please fill in all required fields", err)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		respondError(c, http.StatusBadRequest, "Password is required for new doctors")
		return
	}

	hash, err := utils.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.serverError(c, "Failed to add Doctor", err)
		return
	}

	doctor := &models.Doctor{
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.TrimSpace(req.Email),
		Password:       hash,
		Specialty:      strings.TrimSpace(req.Specialty),
		Phone:          req.Phone,
		Experience:     req.Experience,
		Qualifications: req.Qualifications,
	}
	if err := h.doctors.Create(c.Request.Context(), doctor); err != nil {
		h.serverError(c, "Failed to add Doctor", err)
		return
	}
	respondOK(c, http.StatusCreated, "Doctor added successfully!", gin.H{"doctor": doctor})
}

// UpdateDoctor sets only the fields present in the body. A blank password
// keeps the current one.
func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please fill in all required fields", err)
		return
	}

	set := bson.M{}
	optional := map[string]*string{
		"fullname":       req.FullName,
		"email":          req.Email,
		"specialty":      req.Specialty,
		"phone":          req.Phone,
		"experience":     req.Experience,
		"qualifications": req.Qualifications,
	}
	for field, value := range optional {
		if value != nil {
			set[field] = strings.TrimSpace(*value)
		}
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := utils.HashPassword(*req.Password, h.bcryptCost)
		if err != nil {
			h.serverError(c, "Failed to update Doctor", err)
			return
		}
		set["password"] = hash
	}
	if len(set) == 0 {
		respondError(c, http.StatusBadRequest, "No update fields provided")
		return
	}

	if err := h.doctors.Update(c.Request.Context(), id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Doctor not found")
			return
		}
		h.serverError(c, "Failed to update Doctor", err)
		return
	}
	respondOK(c, http.StatusOK, "Doctor updated successfully!", nil)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.doctors.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Doctor not found")
			return
		}
		h.serverError(c, "Failed to delete Doctor", err)
		return
	}
	respondOK(c, http.StatusOK, "Doctor deleted successfully!", nil)
}
