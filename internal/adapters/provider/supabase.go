package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outsized-identity/internal/config"
	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
)

// SupabaseClient implements services.IdentityProvider against the
// Supabase GoTrue REST API. Created once at startup and shared; the
// embedded http.Client handles pooling.
type SupabaseClient struct {
	baseURL    string
	apiKey     string
	serviceKey string
	httpClient *http.Client
}

// NewSupabaseClient creates a new identity provider client
func NewSupabaseClient(cfg *config.Config) *SupabaseClient {
	return &SupabaseClient{
		baseURL:    strings.TrimRight(cfg.Supabase.URL, "/"),
		apiKey:     cfg.Supabase.Key,
		serviceKey: cfg.Supabase.ServiceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         gotrueUser `json:"user"`
}

type gotrueError struct {
	Message   string `json:"msg"`
	ErrorDesc string `json:"error_description"`
}

// SignUp creates a credential. GoTrue sends the verification email itself.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string) (*services.ProviderUser, error) {
	body := map[string]string{"email": email, "password": password}

	var result struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	// Depending on confirmation settings GoTrue returns either the bare
	// user or a session wrapping it.
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", c.apiKey, "", body, &result); err != nil {
		return nil, err
	}

	user := result.gotrueUser
	if result.User != nil {
		user = *result.User
	}
	if user.ID == "" {
		return nil, fmt.Errorf("supabase signup: empty user id in response")
	}

	return &services.ProviderUser{ID: user.ID, Email: user.Email}, nil
}

// SetSession validates an access/refresh token pair. The access token is
// checked first; if the provider no longer accepts it, the refresh token
// is exchanged for a new session.
func (c *SupabaseClient) SetSession(ctx context.Context, accessToken, refreshToken string) (*services.ProviderSession, error) {
	var user gotrueUser
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", c.apiKey, accessToken, nil, &user)
	if err == nil && user.ID != "" {
		return &services.ProviderSession{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			User:         services.ProviderUser{ID: user.ID, Email: user.Email},
		}, nil
	}

	if refreshToken == "" {
		return nil, fmt.Errorf("%w: access token rejected", domain.ErrInvalidSession)
	}

	var session gotrueSession
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", c.apiKey, "", body, &session); err != nil {
		return nil, fmt.Errorf("%w: session refresh rejected", domain.ErrInvalidSession)
	}
	if session.User.ID == "" {
		return nil, fmt.Errorf("%w: empty user in refreshed session", domain.ErrInvalidSession)
	}

	return &services.ProviderSession{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         services.ProviderUser{ID: session.User.ID, Email: session.User.Email},
	}, nil
}

// UpdatePassword changes the credential password for the session's user
func (c *SupabaseClient) UpdatePassword(ctx context.Context, session *services.ProviderSession, newPassword string) (*services.ProviderUser, error) {
	body := map[string]string{"password": newPassword}

	var user gotrueUser
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", c.apiKey, session.AccessToken, body, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("supabase update password: empty user in response")
	}

	return &services.ProviderUser{ID: user.ID, Email: user.Email}, nil
}

// DeleteUser removes the credential. Requires the service role key.
func (c *SupabaseClient) DeleteUser(ctx context.Context, uuid string) error {
	if c.serviceKey == "" {
		return fmt.Errorf("supabase delete user: service key not configured")
	}
	return c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+uuid, c.serviceKey, c.serviceKey, nil, nil)
}

// SendPasswordReset asks the provider to email a reset link
func (c *SupabaseClient) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/v1/recover", c.apiKey, "", body, nil)
}

// Ping verifies provider reachability
func (c *SupabaseClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/v1/health", c.apiKey, "", nil, nil)
}

// do performs one bounded request against GoTrue. Non-2xx responses are
// returned as errors carrying the provider's message, never its body
// verbatim to callers further up.
func (c *SupabaseClient) do(ctx context.Context, method, path, apiKey, bearer string, reqBody, respBody interface{}) error {
	var reader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("supabase response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gerr gotrueError
		_ = json.Unmarshal(data, &gerr)
		msg := gerr.Message
		if msg == "" {
			msg = gerr.ErrorDesc
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %s", domain.ErrInvalidSession, msg)
		}
		return fmt.Errorf("supabase error (%d): %s", resp.StatusCode, msg)
	}

	if respBody != nil && len(data) > 0 {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("supabase response decode failed: %w", err)
		}
	}

	return nil
}
