package userservice

import (
	"context"
	"errors"
	"testing"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockCreator) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	creator := NewMockCreator(ctrl)
	service := New(repo, creator)
	defer ctrl.Finish()
	return service, repo, creator
}

func ptr[T any](v T) *T {
	return &v
}

func TestUpdate(t *testing.T) {
	admin := func() *domain.User {
		return &domain.User{ID: 1, Email: "admin@example.com", FullName: "Admin", Role: domain.RoleAdmin, Status: domain.UserActive}
	}
	member := func() *domain.User {
		return &domain.User{ID: 2, Email: "ram@example.com", FullName: "Ram", Role: domain.RoleUser, Status: domain.UserActive}
	}

	tests := []struct {
		name          string
		targetID      int
		patch         Patch
		prepareMock   func(repo *MockRepo)
		expected      *domain.User
		expectedError error
	}{
		{
			name:     "Promote another user",
			targetID: 2,
			patch:    Patch{Role: ptr(domain.RoleAdmin), FullName: ptr(" Ram Thapa ")},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 2).Return(member(), nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			expected: &domain.User{ID: 2, Email: "ram@example.com", FullName: "Ram Thapa", Role: domain.RoleAdmin, Status: domain.UserActive},
		},
		{
			name:     "Admin cannot demote themself",
			targetID: 1,
			patch:    Patch{Role: ptr(domain.RoleUser)},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(admin(), nil)
			},
			expectedError: ErrSelfAction,
		},
		{
			name:     "Admin cannot suspend themself",
			targetID: 1,
			patch:    Patch{Status: ptr(domain.UserSuspended)},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(admin(), nil)
			},
			expectedError: ErrSelfAction,
		},
		{
			name:     "Admin may rename themself",
			targetID: 1,
			patch:    Patch{FullName: ptr("Root"), Role: ptr(domain.RoleAdmin)},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(admin(), nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
			expected: &domain.User{ID: 1, Email: "admin@example.com", FullName: "Root", Role: domain.RoleAdmin, Status: domain.UserActive},
		},
		{
			name:     "Invalid status",
			targetID: 2,
			patch:    Patch{Status: ptr(domain.UserStatus("banned"))},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 2).Return(member(), nil)
			},
			expectedError: ErrInvalidStatus,
		},
		{
			name:     "Email taken",
			targetID: 2,
			patch:    Patch{Email: ptr("Admin@example.com")},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 2).Return(member(), nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(pg.ErrDuplicate)
			},
			expectedError: ErrEmailTaken,
		},
		{
			name:     "Not found",
			targetID: 3,
			patch:    Patch{FullName: ptr("x")},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 3).Return(nil, nil)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			tt.prepareMock(repo)

			user, err := service.Update(context.Background(), 1, tt.targetID, tt.patch)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, user)
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name          string
		targetID      int
		prepareMock   func(repo *MockRepo)
		expectedError error
	}{
		{
			name:     "Deletes another user",
			targetID: 2,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Delete(gomock.Any(), 2).Return(true, nil)
			},
		},
		{
			name:          "Cannot delete self",
			targetID:      1,
			prepareMock:   func(repo *MockRepo) {},
			expectedError: ErrSelfAction,
		},
		{
			name:     "Missing user",
			targetID: 2,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Delete(gomock.Any(), 2).Return(false, nil)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			tt.prepareMock(repo)

			err := service.Delete(context.Background(), 1, tt.targetID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreate(t *testing.T) {
	service, _, creator := NewMock(t)
	nu := authservice.NewUser{Email: "a@b.co", Password: "secret123", FullName: "A", Role: domain.RoleAdmin}

	creator.EXPECT().CreateUser(gomock.Any(), nu).Return(nil, authservice.ErrEmailTaken)
	_, err := service.Create(context.Background(), nu)
	assert.ErrorIs(t, err, ErrEmailTaken)

	creator.EXPECT().CreateUser(gomock.Any(), nu).Return(&domain.User{ID: 3, Role: domain.RoleAdmin}, nil)
	user, err := service.Create(context.Background(), nu)
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
}

func TestAccount(t *testing.T) {
	tests := []struct {
		name          string
		prepareMock   func(repo *MockRepo)
		expected      *auth.Account
		expectedError error
	}{
		{
			name: "Active admin",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 5).Return(&domain.User{ID: 5, Role: domain.RoleAdmin, Status: domain.UserActive}, nil)
			},
			expected: &auth.Account{Role: "admin", Active: true},
		},
		{
			name: "Suspended user",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 5).Return(&domain.User{ID: 5, Role: domain.RoleUser, Status: domain.UserSuspended}, nil)
			},
			expected: &auth.Account{Role: "user", Active: false},
		},
		{
			name: "Deleted user",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 5).Return(nil, nil)
			},
		},
		{
			name: "Repository error",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByID(gomock.Any(), 5).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			tt.prepareMock(repo)

			account, err := service.Account(context.Background(), 5)
			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, account)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, account)
		})
	}
}
