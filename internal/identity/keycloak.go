// File: internal/identity/keycloak.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const keycloakPageSize = 100

// KeycloakProvider talks to the Keycloak admin REST API and validates realm tokens.
type KeycloakProvider struct {
	cfg        *config.Config
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger

	jwksMu sync.Mutex
	jwks   *keyfunc.JWKS
}

// NewKeycloakProvider creates the provider. A nil httpClient means a client with the
// configured external call timeout.
func NewKeycloakProvider(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *KeycloakProvider {
	timeout := cfg.ExternalCallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &KeycloakProvider{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.KeycloakBaseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger.Named("KeycloakProvider"),
	}
}

// Close stops the JWKS background refresh, if it was started.
func (p *KeycloakProvider) Close() {
	p.jwksMu.Lock()
	defer p.jwksMu.Unlock()
	if p.jwks != nil {
		p.jwks.EndBackground()
		p.jwks = nil
	}
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type userRepresentation struct {
	ID            string                     `json:"id,omitempty"`
	Username      string                     `json:"username"`
	Email         string                     `json:"email"`
	Enabled       bool                       `json:"enabled"`
	EmailVerified bool                       `json:"emailVerified"`
	Credentials   []credentialRepresentation `json:"credentials,omitempty"`
}

type roleRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p *KeycloakProvider) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", p.baseURL, url.PathEscape(p.cfg.KeycloakAdminRealm))
}

func (p *KeycloakProvider) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/realms/%s%s", p.baseURL, url.PathEscape(p.cfg.KeycloakRealm), path)
}

// adminClient obtains an administrative access token and returns an HTTP client that sends it.
// Password grant is used when an admin username is configured, client credentials otherwise.
func (p *KeycloakProvider) adminClient(ctx context.Context) (*http.Client, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	var (
		tok *oauth2.Token
		err error
	)
	if p.cfg.KeycloakAdminUsername != "" {
		conf := &oauth2.Config{
			ClientID:     p.cfg.KeycloakAdminClientID,
			ClientSecret: p.cfg.KeycloakAdminClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: p.tokenURL(), AuthStyle: oauth2.AuthStyleInParams},
		}
		tok, err = conf.PasswordCredentialsToken(ctx, p.cfg.KeycloakAdminUsername, p.cfg.KeycloakAdminPassword)
	} else {
		conf := &clientcredentials.Config{
			ClientID:     p.cfg.KeycloakAdminClientID,
			ClientSecret: p.cfg.KeycloakAdminClientSecret,
			TokenURL:     p.tokenURL(),
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		tok, err = conf.Token(ctx)
	}
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			switch rErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("%w: admin token rejected (%d): %v", common.ErrProvisioningAuthFailed, rErr.Response.StatusCode, err)
			}
		}
		return nil, fmt.Errorf("%w: admin token: %v", common.ErrProvisioningFailed, err)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}

// ProvisionAccount creates an enabled, email-verified account with a permanent password
// and then tries to grant it the default realm role.
func (p *KeycloakProvider) ProvisionAccount(ctx context.Context, acct NewAccount) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client, err := p.adminClient(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(userRepresentation{
		Username:      acct.Username,
		Email:         acct.Email,
		Enabled:       true,
		EmailVerified: true,
		Credentials:   []credentialRepresentation{{Type: "password", Value: acct.Password, Temporary: false}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode user: %v", common.ErrProvisioningFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.adminURL("/users"), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", common.ErrProvisioningFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: create user: %v", common.ErrProvisioningFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return "", fmt.Errorf("%w: identity provider reports the account exists", common.ErrAlreadyExists)
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("%w: create user returned %d", common.ErrProvisioningAuthFailed, resp.StatusCode)
	default:
		return "", fmt.Errorf("%w: create user returned %d: %s", common.ErrProvisioningFailed, resp.StatusCode, readSnippet(resp.Body))
	}

	id := lastPathSegment(resp.Header.Get("Location"))
	if id == "" {
		return "", fmt.Errorf("%w: create user response has no Location header", common.ErrProvisioningFailed)
	}

	if err := p.assignRealmRole(ctx, client, id, p.cfg.KeycloakDefaultRole); err != nil {
		p.logger.Warn("Could not assign default realm role",
			zap.String("identityId", id),
			zap.String("role", p.cfg.KeycloakDefaultRole),
			zap.Error(err),
		)
	}

	p.logger.Info("Identity account provisioned", zap.String("identityId", id), zap.String("username", acct.Username))
	return id, nil
}

func (p *KeycloakProvider) assignRealmRole(ctx context.Context, client *http.Client, userID, roleName string) error {
	if roleName == "" {
		return nil
	}

	var role roleRepresentation
	if err := p.getJSON(ctx, client, p.adminURL("/roles/"+url.PathEscape(roleName)), &role); err != nil {
		return fmt.Errorf("lookup role %s: %w", roleName, err)
	}

	payload, err := json.Marshal([]roleRepresentation{role})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.adminURL("/users/"+url.PathEscape(userID)+"/role-mappings/realm"), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("role mapping returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	return nil
}

// ListAccounts pages through every user of the realm.
func (p *KeycloakProvider) ListAccounts(ctx context.Context) ([]Account, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client, err := p.adminClient(ctx)
	if err != nil {
		return nil, err
	}

	var accounts []Account
	for first := 0; ; first += keycloakPageSize {
		q := url.Values{}
		q.Set("first", strconv.Itoa(first))
		q.Set("max", strconv.Itoa(keycloakPageSize))
		q.Set("briefRepresentation", "true")

		var page []userRepresentation
		if err := p.getJSON(ctx, client, p.adminURL("/users?"+q.Encode()), &page); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, u := range page {
			accounts = append(accounts, Account{ID: u.ID, Username: u.Username, Email: u.Email})
		}
		if len(page) < keycloakPageSize {
			return accounts, nil
		}
	}
}

func (p *KeycloakProvider) getJSON(ctx context.Context, client *http.Client, target string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned %d: %s", req.URL.Path, resp.StatusCode, readSnippet(resp.Body))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

type keycloakClaims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	jwt.RegisteredClaims
}

func (p *KeycloakProvider) issuer() string {
	return fmt.Sprintf("%s/realms/%s", p.baseURL, p.cfg.KeycloakRealm)
}

func (p *KeycloakProvider) keySet() (*keyfunc.JWKS, error) {
	p.jwksMu.Lock()
	defer p.jwksMu.Unlock()
	if p.jwks != nil {
		return p.jwks, nil
	}
	jwks, err := keyfunc.Get(p.issuer()+"/protocol/openid-connect/certs", keyfunc.Options{
		Client:            p.httpClient,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    p.timeout,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			p.logger.Warn("JWKS refresh failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}
	p.jwks = jwks
	return jwks, nil
}

// VerifyToken checks the signature against the realm JWKS, the expiry and the issuer.
func (p *KeycloakProvider) VerifyToken(_ context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, common.ErrUnauthorized.WithDetails("Token must not be empty.")
	}
	jwks, err := p.keySet()
	if err != nil {
		p.logger.Error("Could not load realm signing keys", zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Token verification is unavailable.")
	}

	claims := &keycloakClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, jwks.Keyfunc)
	if err != nil || !token.Valid {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired token.")
	}
	if !claims.VerifyIssuer(p.issuer(), true) {
		return nil, common.ErrUnauthorized.WithDetails("Token issued by an unexpected realm.")
	}
	return &Principal{Subject: claims.Subject, Username: claims.PreferredUsername, Email: claims.Email}, nil
}

func lastPathSegment(location string) string {
	location = strings.TrimRight(strings.TrimSpace(location), "/")
	if i := strings.LastIndex(location, "/"); i >= 0 {
		return location[i+1:]
	}
	return ""
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
