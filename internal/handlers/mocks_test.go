package handlers

import (
	"context"

	"gearreport/internal/models"
	"gearreport/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockSubmissionService for testing
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) CreateSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) GetSubmissionsPaginated(ctx context.Context, page, pageSize int, status string) ([]models.Submission, int, error) {
	args := m.Called(ctx, page, pageSize, status)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionService) GetApprovedSubmissions(ctx context.Context) ([]models.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockSubmissionService) UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) AdjustEquipmentCount(ctx context.Context, id string, entryIndex int, count *float64) (*models.Submission, error) {
	args := m.Called(ctx, id, entryIndex, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) DeleteSubmission(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubmissionService) CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.SubmissionStatus]int), args.Error(1)
}

// MockAdminUserService for testing
type MockAdminUserService struct {
	mock.Mock
}

func (m *MockAdminUserService) AuthenticateUser(ctx context.Context, username, password string) (*models.AdminUser, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserService) GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserService) CreateUser(ctx context.Context, username, password, email string) (*models.AdminUser, error) {
	args := m.Called(ctx, username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserService) ResetPassword(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockAdminUserService) EnsureAdminUser(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockAdminUserService) UpdateLastActive(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockImageService for testing
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) UploadImages(ctx context.Context, uploads []services.ImageUpload) ([]string, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
