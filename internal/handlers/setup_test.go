package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/powervate/admin-api/internal/middleware"
	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/services"
)

const testSessionID = "sess-1"

// Document ids used in the resource routes.
const (
	idOne     = "65f0000000000000000000a1"
	idTwo     = "65f0000000000000000000a2"
	idMissing = "65f0000000000000000000ff"
)

type testEnv struct {
	users    *MockUserRepository
	products *MockProductRepository
	doctors  *MockDoctorRepository
	pricing  *MockPricingRepository
	discount *MockDiscountRepository
	auth     *MockAuthenticator
	media    *MockUploader
	pages    *paging.MemoryStateStore
	router   *gin.Engine
}

// fakeSession stands in for AuthMiddleware with an already signed-in admin.
func fakeSession(c *gin.Context) {
	c.Set(middleware.AdminIDKey, "admin-1")
	c.Set(middleware.SessionIDKey, testSessionID)
	c.Set(middleware.SessionKey, &services.Session{
		ID: testSessionID,
		Admin: models.Admin{
			UID:     "admin-1",
			IsAdmin: true,
			Profile: models.UserProfile{FullName: "Ada Admin", Email: "ada@example.com"},
		},
	})
	c.Next()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:    new(MockUserRepository),
		products: new(MockProductRepository),
		doctors:  new(MockDoctorRepository),
		pricing:  new(MockPricingRepository),
		discount: new(MockDiscountRepository),
		auth:     new(MockAuthenticator),
		media:    new(MockUploader),
		pages:    paging.NewMemoryStateStore(time.Hour),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(Deps{
		Users:          env.users,
		Products:       env.products,
		Doctors:        env.doctors,
		Pricing:        env.pricing,
		Discount:       env.discount,
		Auth:           env.auth,
		Media:          env.media,
		Pages:          env.pages,
		Logger:         logger,
		BcryptCost:     bcrypt.MinCost,
		MaxUploadBytes: 1 << 20,
	})
	env.router = NewRouter(h, RouterConfig{
		AllowOrigins: []string{"http://localhost:5173"},
		Auth:         fakeSession,
		Logger:       logger,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) assertExpectations(t *testing.T) {
	e.users.AssertExpectations(t)
	e.products.AssertExpectations(t)
	e.doctors.AssertExpectations(t)
	e.pricing.AssertExpectations(t)
	e.discount.AssertExpectations(t)
	e.auth.AssertExpectations(t)
	e.media.AssertExpectations(t)
}
