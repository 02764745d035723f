// File: internal/identity/firebase.go
package identity

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// FirebaseProvider implements Provider on Firebase Authentication.
type FirebaseProvider struct {
	authClient *auth.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// NewFirebaseProvider initializes the Firebase Admin SDK from the service account key.
func NewFirebaseProvider(cfg *config.Config, logger *zap.Logger) (*FirebaseProvider, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		return nil, fmt.Errorf("firebase service account key path is required")
	}
	opt := option.WithCredentialsFile(filepath.Clean(cfg.FirebaseServiceAccountKeyPath))

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	authClient, err := app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	timeout := cfg.ExternalCallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FirebaseProvider{authClient: authClient, timeout: timeout, logger: logger.Named("FirebaseProvider")}, nil
}

// ProvisionAccount creates a Firebase user and tags it with the "user" role claim.
func (p *FirebaseProvider) ProvisionAccount(ctx context.Context, acct NewAccount) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := (&auth.UserToCreate{}).
		Email(acct.Email).
		Password(acct.Password).
		DisplayName(acct.Username).
		EmailVerified(true).
		Disabled(false)

	record, err := p.authClient.CreateUser(ctx, params)
	if err != nil {
		switch {
		case auth.IsEmailAlreadyExists(err), errorutils.IsAlreadyExists(err):
			return "", fmt.Errorf("%w: %v", common.ErrAlreadyExists, err)
		case errorutils.IsUnauthenticated(err), errorutils.IsPermissionDenied(err):
			return "", fmt.Errorf("%w: %v", common.ErrProvisioningAuthFailed, err)
		default:
			return "", fmt.Errorf("%w: %v", common.ErrProvisioningFailed, err)
		}
	}

	if err := p.authClient.SetCustomUserClaims(ctx, record.UID, map[string]interface{}{"role": common.RoleUser}); err != nil {
		p.logger.Warn("Could not set default role claim", zap.String("identityId", record.UID), zap.Error(err))
	}
	return record.UID, nil
}

// ListAccounts walks the Firebase user iterator. The whole walk shares one timeout.
func (p *FirebaseProvider) ListAccounts(ctx context.Context) ([]Account, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var accounts []Account
	it := p.authClient.Users(ctx, "")
	for {
		u, err := it.Next()
		if err == iterator.Done {
			return accounts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing firebase users: %w", err)
		}
		accounts = append(accounts, Account{ID: u.UID, Username: u.DisplayName, Email: u.Email})
	}
}

// VerifyToken verifies a Firebase ID token.
func (p *FirebaseProvider) VerifyToken(ctx context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, common.ErrUnauthorized.WithDetails("Token must not be empty.")
	}
	token, err := p.authClient.VerifyIDToken(ctx, rawToken)
	if err != nil {
		p.logger.Debug("Firebase ID token verification failed", zap.Error(err))
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired token.")
	}
	principal := &Principal{Subject: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		principal.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		principal.Username = name
	}
	return principal, nil
}
