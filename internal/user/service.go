// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/identity"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service defines the user operations.
type Service interface {
	RegisterUser(ctx context.Context, req RegisterRequest) (*User, error)
	GetByIdentityID(ctx context.Context, identityID string) (*User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	PromoteToAdmin(ctx context.Context, username string) (*User, error)
	AdoptIdentity(ctx context.Context, acct identity.Account) (*User, error)
}

type service struct {
	repo        Repository
	provisioner identity.Provisioner
	logger      *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, provisioner identity.Provisioner, logger *zap.Logger) Service {
	return &service{repo: repo, provisioner: provisioner, logger: logger.Named("UserService")}
}

// RegisterUser runs the two-phase registration: local uniqueness check, identity provider
// account, local record. A failure after the provider account exists leaves that account
// in place and is logged as an orphan.
func (s *service) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, common.NewValidationAPIError("Username, email and password are required.")
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, common.ErrAlreadyExists.WithDetails("User with this username or email already exists.")
	case err != nil && !errors.Is(err, common.ErrNotFound):
		s.logger.Error("Uniqueness check failed during registration", zap.String("username", username), zap.Error(err))
		return nil, common.ErrRegistrationFailed
	}

	identityID, err := s.provisioner.ProvisionAccount(ctx, identity.NewAccount{
		Username: username,
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		s.logger.Error("Identity provisioning failed", zap.String("username", username), zap.Error(err))
		return nil, provisioningError(err)
	}

	u := &User{IdentityID: identityID, Username: username, Email: email, Role: common.RoleUser}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("Local user record not created, orphaned identity account",
			zap.String("identityId", identityID),
			zap.String("username", username),
			zap.Error(err),
		)
		if errors.Is(err, common.ErrInvalidUserData) || errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, common.ErrRegistrationFailed
	}

	s.logger.Info("User registered successfully", zap.String("id", u.ID.Hex()), zap.String("identityId", identityID))
	return u, nil
}

// provisioningError keeps the provider error kind and drops its detail.
func provisioningError(err error) error {
	for _, kind := range []*common.APIError{common.ErrAlreadyExists, common.ErrProvisioningAuthFailed, common.ErrProvisioningFailed} {
		if errors.Is(err, kind) {
			if kind == common.ErrAlreadyExists {
				return kind.WithDetails("User with this username or email already exists.")
			}
			return kind
		}
	}
	return common.ErrProvisioningFailed
}

func (s *service) GetByIdentityID(ctx context.Context, identityID string) (*User, error) {
	return s.repo.FindByIdentityID(ctx, identityID)
}

func (s *service) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) PromoteToAdmin(ctx context.Context, username string) (*User, error) {
	u, err := s.repo.UpdateRole(ctx, strings.TrimSpace(username), common.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User promoted to admin", zap.String("username", u.Username))
	return u, nil
}

// AdoptIdentity creates the missing local record for a provider account.
func (s *service) AdoptIdentity(ctx context.Context, acct identity.Account) (*User, error) {
	username := acct.Username
	if username == "" {
		username = strings.SplitN(acct.Email, "@", 2)[0]
	}
	u := &User{IdentityID: acct.ID, Username: username, Email: acct.Email, Role: common.RoleUser}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("adopting identity %s: %w", acct.ID, err)
	}
	s.logger.Warn("Orphaned identity account adopted", zap.String("identityId", acct.ID), zap.String("username", username))
	return u, nil
}
