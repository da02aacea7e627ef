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
	"strings"
	"time"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/auth"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var supportedOAuthProviders = map[string]struct{}{
	"google": {},
	"github": {},
}

// SupabaseProvider talks to a GoTrue auth server. Every token check is a round trip.
type SupabaseProvider struct {
	baseURL        string
	serviceRoleKey string
	anonKey        string
	client         *http.Client
	logger         logger.Logger
}

func NewSupabaseProvider(cfg config.Config, client *http.Client, log logger.Logger) (*SupabaseProvider, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceRoleKey == "" {
		return nil, errors.New("supabase url and service role key are required")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	anon := cfg.Supabase.AnonKey
	if anon == "" {
		anon = cfg.Supabase.ServiceRoleKey
	}
	return &SupabaseProvider{
		baseURL:        strings.TrimRight(cfg.Supabase.URL, "/"),
		serviceRoleKey: cfg.Supabase.ServiceRoleKey,
		anonKey:        anon,
		client:         client,
		logger:         log,
	}, nil
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (g gotrueUser) toDomain() *user.User {
	name, _ := g.UserMetadata["name"].(string)
	return &user.User{ID: g.ID, Email: g.Email, Name: name, CreatedAt: g.CreatedAt}
}

type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *SupabaseProvider) SignUp(ctx context.Context, in service.SignUpInput) (*user.User, error) {
	body := map[string]any{
		"email":         in.Email,
		"password":      in.Password,
		"user_metadata": map[string]any{"name": in.Name},
		// No mail server is configured, so accounts are confirmed on creation.
		"email_confirm": true,
	}

	var out gotrueUser
	status, msg, err := p.do(ctx, http.MethodPost, "/auth/v1/admin/users", p.serviceRoleKey, body, &out)
	if err != nil {
		return nil, err
	}
	if status >= 400 && status < 500 {
		return nil, apperror.NewInvalidInput(msg, nil)
	}
	if status >= 300 {
		return nil, fmt.Errorf("supabase signup: unexpected status %d: %s", status, msg)
	}
	return out.toDomain(), nil
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	var out struct {
		AccessToken string     `json:"access_token"`
		TokenType   string     `json:"token_type"`
		ExpiresIn   int64      `json:"expires_in"`
		ExpiresAt   int64      `json:"expires_at"`
		User        gotrueUser `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}

	status, msg, err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", p.anonKey, body, &out)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return nil, service.ErrInvalidCredentials
	case status >= 300:
		return nil, fmt.Errorf("supabase signin: unexpected status %d: %s", status, msg)
	}

	expiresAt := time.Unix(out.ExpiresAt, 0).UTC()
	if out.ExpiresAt == 0 {
		expiresAt = time.Now().UTC().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return &service.Session{
		AccessToken: out.AccessToken,
		TokenType:   out.TokenType,
		ExpiresAt:   expiresAt,
		User:        *out.User.toDomain(),
	}, nil
}

func (p *SupabaseProvider) ValidateToken(ctx context.Context, token string) (*user.User, error) {
	var out gotrueUser
	status, msg, err := p.do(ctx, http.MethodGet, "/auth/v1/user", token, nil, &out)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", auth.ErrInvalidToken, msg)
	case status >= 300:
		return nil, fmt.Errorf("supabase user lookup: unexpected status %d: %s", status, msg)
	}
	if out.ID == "" {
		return nil, auth.ErrInvalidToken
	}
	return out.toDomain(), nil
}

func (p *SupabaseProvider) AuthorizeURL(provider, redirectTo string) (string, error) {
	if _, ok := supportedOAuthProviders[provider]; !ok {
		return "", fmt.Errorf("unsupported oauth provider %q", provider)
	}
	q := url.Values{"provider": {provider}}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return p.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

// do sends a JSON request and decodes a 2xx body into out. For other statuses it
// returns the status and the server's error text.
func (p *SupabaseProvider) do(ctx context.Context, method, path, bearer string, payload, out any) (int, string, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, "", err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("supabase %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read supabase response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var ge gotrueError
		_ = json.Unmarshal(body, &ge)
		msg := ge.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, msg, nil
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("decode supabase response: %w", err)
		}
	}
	return resp.StatusCode, "", nil
}
