package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/services"
	"github.com/powervate/admin-api/internal/store"
)

// The interfaces below are what the handlers need from the stores in
// internal/store and from services.AuthService.

type UserRepository interface {
	Page(ctx context.Context, after *paging.Cursor, limit int64) (paging.Batch[models.User], error)
	SearchByName(ctx context.Context, name string) ([]models.User, error)
	ByDateRange(ctx context.Context, from, to time.Time) ([]models.User, error)
	Create(ctx context.Context, fullName, email, passwordHash string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	SetFields(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (store.DashboardStats, error)
}

type ProductRepository interface {
	Page(ctx context.Context, after *paging.Cursor, limit int64) (paging.Batch[models.Product], error)
	All(ctx context.Context) ([]models.Product, error)
	SearchByName(ctx context.Context, prefix string) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
}

type DoctorRepository interface {
	All(ctx context.Context) ([]models.Doctor, error)
	Get(ctx context.Context, id string) (*models.Doctor, error)
	Create(ctx context.Context, d *models.Doctor) error
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
}

type PricingRepository interface {
	Slots(ctx context.Context) ([]*models.PricingPlan, error)
	SaveSlot(ctx context.Context, plan models.PricingPlan) (*models.PricingPlan, error)
	DeleteSlot(ctx context.Context, slot int) error
}

type DiscountRepository interface {
	Get(ctx context.Context) (*models.Discount, error)
	Save(ctx context.Context, value float64) (*models.Discount, error)
	SetActive(ctx context.Context, active bool) error
	Delete(ctx context.Context) error
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (*services.Session, error)
	UpdateProfile(ctx context.Context, sessionID string, upd services.ProfileUpdate) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, sessionID string, chg services.PasswordChange) error
}

var (
	_ UserRepository     = (*store.UserStore)(nil)
	_ ProductRepository  = (*store.ProductStore)(nil)
	_ DoctorRepository   = (*store.DoctorStore)(nil)
	_ PricingRepository  = (*store.PricingStore)(nil)
	_ DiscountRepository = (*store.DiscountStore)(nil)
	_ Authenticator      = (*services.AuthService)(nil)
)
