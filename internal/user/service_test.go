package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) FindByIdentityID(ctx context.Context, identityID string) (*User, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, username, role string) (*User, error) {
	args := m.Called(ctx, username, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) ProvisionAccount(ctx context.Context, acct identity.NewAccount) (string, error) {
	args := m.Called(ctx, acct)
	return args.String(0), args.Error(1)
}

var validRequest = RegisterRequest{Username: "ada", Email: "Ada@Example.com", Password: "s3cret-pass"}

func TestRegisterUser_Success(t *testing.T) {
	repo := new(MockUserRepository)
	prov := new(MockProvisioner)
	svc := NewService(repo, prov, zap.NewNop())

	repo.On("FindByUsernameOrEmail", mock.Anything, "ada", "ada@example.com").Return(nil, common.ErrNotFound).Once()
	prov.On("ProvisionAccount", mock.Anything, identity.NewAccount{Username: "ada", Email: "ada@example.com", Password: "s3cret-pass"}).
		Return("kc-42", nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.IdentityID == "kc-42" && u.Role == common.RoleUser && u.Email == "ada@example.com"
	})).Return(nil).Once()

	u, err := svc.RegisterUser(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Equal(t, "kc-42", u.IdentityID)
	assert.Equal(t, "ada", u.Username)

	repo.AssertNumberOfCalls(t, "Create", 1)
	repo.AssertExpectations(t)
	prov.AssertExpectations(t)
}

func TestRegisterUser_DuplicateSkipsProvisioning(t *testing.T) {
	repo := new(MockUserRepository)
	prov := new(MockProvisioner)
	svc := NewService(repo, prov, zap.NewNop())

	repo.On("FindByUsernameOrEmail", mock.Anything, "ada", "ada@example.com").Return(&User{Username: "ada"}, nil).Once()

	_, err := svc.RegisterUser(context.Background(), validRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	prov.AssertNotCalled(t, "ProvisionAccount", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUser_ProvisioningFailureCreatesNoRecord(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
		want        *common.APIError
	}{
		{"auth failure", fmt.Errorf("%w: token rejected", common.ErrProvisioningAuthFailed), common.ErrProvisioningAuthFailed},
		{"provider error", fmt.Errorf("%w: 500", common.ErrProvisioningFailed), common.ErrProvisioningFailed},
		{"provider conflict", fmt.Errorf("%w: 409", common.ErrAlreadyExists), common.ErrAlreadyExists},
		{"timeout", context.DeadlineExceeded, common.ErrProvisioningFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			prov := new(MockProvisioner)
			svc := NewService(repo, prov, zap.NewNop())

			repo.On("FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, common.ErrNotFound).Once()
			prov.On("ProvisionAccount", mock.Anything, mock.Anything).Return("", tt.providerErr).Once()

			_, err := svc.RegisterUser(context.Background(), validRequest)
			require.Error(t, err)
			apiErr, ok := common.IsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want.Code, apiErr.Code)
			assert.NotContains(t, fmt.Sprint(apiErr.Details), "token rejected", "provider detail is not exposed")

			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterUser_PersistFailureAfterProvisioning(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		want    *common.APIError
	}{
		{"invalid data", common.ErrInvalidUserData.WithDetails("bad email"), common.ErrInvalidUserData},
		{"database down", errors.New("connection reset"), common.ErrRegistrationFailed},
		{"lost race on unique index", common.ErrAlreadyExists, common.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			prov := new(MockProvisioner)
			svc := NewService(repo, prov, zap.NewNop())

			repo.On("FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, common.ErrNotFound).Once()
			prov.On("ProvisionAccount", mock.Anything, mock.Anything).Return("kc-orphan", nil).Once()
			repo.On("Create", mock.Anything, mock.Anything).Return(tt.repoErr).Once()

			_, err := svc.RegisterUser(context.Background(), validRequest)
			assert.ErrorIs(t, err, tt.want)
			prov.AssertNumberOfCalls(t, "ProvisionAccount", 1)
		})
	}
}

func TestRegisterUser_UniquenessLookupError(t *testing.T) {
	repo := new(MockUserRepository)
	prov := new(MockProvisioner)
	svc := NewService(repo, prov, zap.NewNop())

	repo.On("FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	_, err := svc.RegisterUser(context.Background(), validRequest)
	assert.ErrorIs(t, err, common.ErrRegistrationFailed)
	prov.AssertNotCalled(t, "ProvisionAccount", mock.Anything, mock.Anything)
}

func TestAdoptIdentity_FallsBackToEmailLocalPart(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, new(MockProvisioner), zap.NewNop())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Username == "grace" && u.IdentityID == "fb-1" && u.Role == common.RoleUser
	})).Return(nil).Once()

	u, err := svc.AdoptIdentity(context.Background(), identity.Account{ID: "fb-1", Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "grace", u.Username)
	repo.AssertExpectations(t)
}

func TestPromoteToAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, new(MockProvisioner), zap.NewNop())

	repo.On("UpdateRole", mock.Anything, "ada", common.RoleAdmin).Return(&User{Username: "ada", Role: common.RoleAdmin}, nil).Once()
	repo.On("UpdateRole", mock.Anything, "ghost", common.RoleAdmin).Return(nil, common.ErrNotFound).Once()

	u, err := svc.PromoteToAdmin(context.Background(), " ada ")
	require.NoError(t, err)
	assert.Equal(t, common.RoleAdmin, u.Role)

	_, err = svc.PromoteToAdmin(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
