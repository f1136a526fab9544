package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/store"
)

const productsListing = "products"

type ProductRequest struct {
	Name     string `json:"name" validate:"notblank"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

type UpdateProductRequest struct {
	Name     *string `json:"name" validate:"omitempty,notblank"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

// GetProducts returns one page of products ordered by name.
func (h *Handler) GetProducts(c *gin.Context) {
	page, reset, err := pageQuery(c)
	if err != nil {
		pagingError(c, err)
		return
	}
	h.productsPage(c, page, reset)
}

func (h *Handler) productsPage(c *gin.Context, page int, reset bool) {
	result, err := paging.Fetch(c.Request.Context(), h.productPages, listingKey(c, productsListing), page, reset, h.products.Page)
	if err != nil {
		if pagingError(c, err) {
			return
		}
		h.serverError(c, "Failed to fetch products", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"products": result.Items, "page": result.Page, "hasMore": result.HasMore})
}

func (h *Handler) GetAllProducts(c *gin.Context) {
	products, err := h.products.All(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fetch products", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"products": products})
}

// SearchProducts matches the start of the name, ignoring case.
func (h *Handler) SearchProducts(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		h.productsPage(c, 1, true)
		return
	}
	products, err := h.products.SearchByName(c.Request.Context(), name)
	if err != nil {
		h.serverError(c, "Search failed", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"products": products, "page": 1, "hasMore": false})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Please fill all required fields.", err)
		return
	}

	product := &models.Product{Name: strings.TrimSpace(req.Name), ImageURL: req.ImageURL}
	if err := h.products.Create(c.Request.Context(), product); err != nil {
		h.serverError(c, "Failed to add product", err)
		return
	}
	h.resetProductPages(c)
	respondOK(c, http.StatusCreated, "Product added successfully!", gin.H{"product": product})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", nil)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		badRequest(c, "Invalid product fields", err)
		return
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ImageURL != nil {
		set["imageUrl"] = *req.ImageURL
	}
	if len(set) == 0 {
		respondError(c, http.StatusBadRequest, "No update fields provided")
		return
	}

	if err := h.products.Update(c.Request.Context(), id, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.serverError(c, "Failed to update product", err)
		return
	}
	h.resetProductPages(c)
	respondOK(c, http.StatusOK, "Product updated successfully!", nil)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.serverError(c, "Failed to delete product", err)
		return
	}
	h.resetProductPages(c)
	respondOK(c, http.StatusOK, "Product deleted successfully!", nil)
}

// resetProductPages drops the caller's cached product cursors, which may point
// at documents that moved or no longer exist.
func (h *Handler) resetProductPages(c *gin.Context) {
	if err := h.productPages.Reset(c.Request.Context(), listingKey(c, productsListing)); err != nil {
		h.logger.WarnContext(c.Request.Context(), "dropping cached product pages failed", "error", err)
	}
}
