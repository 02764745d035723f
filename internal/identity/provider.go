// File: internal/identity/provider.go
package identity

import (
	"context"
	"fmt"
	"strings"

	"pcstore_backend/internal/config"

	"go.uber.org/zap"
)

// NewAccount is the data needed to create an account at the identity provider.
type NewAccount struct {
	Username string
	Email    string
	Password string
}

// Account is an account as reported by the identity provider.
type Account struct {
	ID       string
	Username string
	Email    string
}

// Principal is the verified subject of a bearer token.
type Principal struct {
	Subject  string
	Username string
	Email    string
}

// Provisioner creates accounts at the identity provider and returns the provider's account id.
// Errors wrap common.ErrAlreadyExists, common.ErrProvisioningAuthFailed or common.ErrProvisioningFailed.
type Provisioner interface {
	ProvisionAccount(ctx context.Context, acct NewAccount) (string, error)
}

// Directory lists every account known to the identity provider.
type Directory interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}

// TokenVerifier validates bearer tokens issued by the identity provider.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, rawToken string) (*Principal, error)
}

// Provider is the full identity provider client.
type Provider interface {
	Provisioner
	Directory
	TokenVerifier
}

// NewProvider builds the provider selected by IDENTITY_PROVIDER.
func NewProvider(cfg *config.Config, logger *zap.Logger) (Provider, func(), error) {
	switch strings.ToLower(cfg.IdentityProvider) {
	case config.IdentityProviderKeycloak:
		p := NewKeycloakProvider(cfg, nil, logger)
		return p, p.Close, nil
	case config.IdentityProviderFirebase:
		p, err := NewFirebaseProvider(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported identity provider %q", cfg.IdentityProvider)
	}
}
