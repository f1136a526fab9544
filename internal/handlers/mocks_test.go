package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powervate/admin-api/internal/models"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/services"
	"github.com/powervate/admin-api/internal/store"
)

// ==================== MOCKS ====================

type MockUserRepository struct {
	mock.Mock
}

var _ UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Page(ctx context.Context, after *paging.Cursor, limit int64) (paging.Batch[models.User], error) {
	args := m.Called(ctx, after, limit)
	return args.Get(0).(paging.Batch[models.User]), args.Error(1)
}

func (m *MockUserRepository) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) ByDateRange(ctx context.Context, from, to time.Time) ([]models.User, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, fullName, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, fullName, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetFields(ctx context.Context, id string, set bson.M) error {
	return m.Called(ctx, id, set).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) Stats(ctx context.Context) (store.DashboardStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.DashboardStats), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

var _ ProductRepository = (*MockProductRepository)(nil)

func (m *MockProductRepository) Page(ctx context.Context, after *paging.Cursor, limit int64) (paging.Batch[models.Product], error) {
	args := m.Called(ctx, after, limit)
	return args.Get(0).(paging.Batch[models.Product]), args.Error(1)
}

func (m *MockProductRepository) All(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, prefix string) ([]models.Product, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, set bson.M) error {
	return m.Called(ctx, id, set).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockDoctorRepository struct {
	mock.Mock
}

var _ DoctorRepository = (*MockDoctorRepository)(nil)

func (m *MockDoctorRepository) All(ctx context.Context) ([]models.Doctor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) Get(ctx context.Context, id string) (*models.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) Create(ctx context.Context, d *models.Doctor) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDoctorRepository) Update(ctx context.Context, id string, set bson.M) error {
	return m.Called(ctx, id, set).Error(0)
}

func (m *MockDoctorRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPricingRepository struct {
	mock.Mock
}

var _ PricingRepository = (*MockPricingRepository)(nil)

func (m *MockPricingRepository) Slots(ctx context.Context) ([]*models.PricingPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PricingPlan), args.Error(1)
}

func (m *MockPricingRepository) SaveSlot(ctx context.Context, plan models.PricingPlan) (*models.PricingPlan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingPlan), args.Error(1)
}

func (m *MockPricingRepository) DeleteSlot(ctx context.Context, slot int) error {
	return m.Called(ctx, slot).Error(0)
}

type MockDiscountRepository struct {
	mock.Mock
}

var _ DiscountRepository = (*MockDiscountRepository)(nil)

func (m *MockDiscountRepository) Get(ctx context.Context) (*models.Discount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Discount), args.Error(1)
}

func (m *MockDiscountRepository) Save(ctx context.Context, value float64) (*models.Discount, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Discount), args.Error(1)
}

func (m *MockDiscountRepository) SetActive(ctx context.Context, active bool) error {
	return m.Called(ctx, active).Error(0)
}

func (m *MockDiscountRepository) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

var _ Authenticator = (*MockAuthenticator)(nil)

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockAuthenticator) Session(ctx context.Context, sessionID string) (*services.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthenticator) UpdateProfile(ctx context.Context, sessionID string, upd services.ProfileUpdate) (*services.LoginResult, error) {
	args := m.Called(ctx, sessionID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) ChangePassword(ctx context.Context, sessionID string, chg services.PasswordChange) error {
	return m.Called(ctx, sessionID, chg).Error(0)
}

type MockUploader struct {
	mock.Mock
}

var _ services.Uploader = (*MockUploader)(nil)

func (m *MockUploader) UploadImage(ctx context.Context, up services.Upload) (string, error) {
	args := m.Called(ctx, up)
	return args.String(0), args.Error(1)
}
