package handlers

import (
	"log/slog"

	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/services"
	"github.com/powervate/admin-api/internal/validator"
)

const (
	UsersPageSize      = 10
	ProductsPageSize   = 8
	RecentUsersCount   = 5
	DefaultUploadLimit = 10 << 20
)

// Deps is everything the handlers are built from.
type Deps struct {
	Users    UserRepository
	Products ProductRepository
	Doctors  DoctorRepository
	Pricing  PricingRepository
	Discount DiscountRepository
	Auth     Authenticator
	Media    services.Uploader
	// Pages keeps the cursor cache of the paginated listings.
	Pages          paging.StateStore
	Logger         *slog.Logger
	BcryptCost     int
	MaxUploadBytes int64
}

// Handler carries the stores and services every route handler uses. Handler
// methods live in one file per resource.
type Handler struct {
	users    UserRepository
	products ProductRepository
	doctors  DoctorRepository
	pricing  PricingRepository
	discount DiscountRepository
	auth     Authenticator
	media    services.Uploader

	userPages    *paging.Pager
	productPages *paging.Pager

	validate       *validator.Validator
	logger         *slog.Logger
	bcryptCost     int
	maxUploadBytes int64
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultUploadLimit
	}
	return &Handler{
		users:          d.Users,
		products:       d.Products,
		doctors:        d.Doctors,
		pricing:        d.Pricing,
		discount:       d.Discount,
		auth:           d.Auth,
		media:          d.Media,
		userPages:      paging.NewPager(d.Pages, UsersPageSize),
		productPages:   paging.NewPager(d.Pages, ProductsPageSize),
		validate:       validator.New(),
		logger:         d.Logger,
		bcryptCost:     d.BcryptCost,
		maxUploadBytes: d.MaxUploadBytes,
	}
}
