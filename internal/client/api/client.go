package api

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
	"sync"
	"time"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/internal/domain/user"
)

// APIError is a non-2xx response from the document API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Code)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Session struct {
	AccessToken string     `json:"accessToken"`
	TokenType   string     `json:"tokenType"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        *user.User `json:"user"`
}

type ShareResult struct {
	Message  string `json:"message"`
	ShareURL string `json:"shareUrl"`
	ShareID  string `json:"shareId"`
}

type SharedCV struct {
	CV    cv.Document
	Views int64
}

type Analytics struct {
	Views      int64      `json:"views"`
	Downloads  int64      `json:"downloads"`
	LastViewed *time.Time `json:"lastViewed"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Client talks to the document API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (*user.User, error) {
	in := map[string]string{"email": email, "password": password, "name": name}
	var out struct {
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Session *Session `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", in, &out); err != nil {
		return nil, err
	}
	if out.Session == nil {
		return nil, fmt.Errorf("api: signin response without session")
	}
	return out.Session, nil
}

// CurrentUser validates the client token against the API.
func (c *Client) CurrentUser(ctx context.Context) (*user.User, error) {
	var out struct {
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// OAuthURL is the API endpoint that redirects the browser to the provider.
func (c *Client) OAuthURL(provider, redirectTo string) string {
	u := c.baseURL + "/auth/oauth/" + url.PathEscape(provider)
	if redirectTo != "" {
		u += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return u
}

func (c *Client) ListCVs(ctx context.Context) ([]cv.Document, error) {
	var out struct {
		CVs []cv.Document `json:"cvs"`
	}
	if err := c.do(ctx, http.MethodGet, "/cvs", nil, &out); err != nil {
		return nil, err
	}
	return out.CVs, nil
}

// CreateCV posts a document payload. Server-owned fields in the payload are ignored by the API.
func (c *Client) CreateCV(ctx context.Context, payload any) (*cv.Document, error) {
	var out struct {
		CV cv.Document `json:"cv"`
	}
	if err := c.do(ctx, http.MethodPost, "/cvs", payload, &out); err != nil {
		return nil, err
	}
	return &out.CV, nil
}

func (c *Client) UpdateCV(ctx context.Context, id string, payload any) (*cv.Document, error) {
	var out struct {
		CV cv.Document `json:"cv"`
	}
	if err := c.do(ctx, http.MethodPut, "/cvs/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	return &out.CV, nil
}

func (c *Client) DeleteCV(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cvs/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ShareCV(ctx context.Context, id string) (*ShareResult, error) {
	var out ShareResult
	if err := c.do(ctx, http.MethodPost, "/cvs/"+url.PathEscape(id)+"/share", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetShared(ctx context.Context, shareID string) (*SharedCV, error) {
	var out struct {
		CV json.RawMessage `json:"cv"`
	}
	if err := c.do(ctx, http.MethodGet, "/shared/"+url.PathEscape(shareID), nil, &out); err != nil {
		return nil, err
	}

	var shared SharedCV
	if err := json.Unmarshal(out.CV, &shared.CV); err != nil {
		return nil, fmt.Errorf("api: decode shared cv: %w", err)
	}
	var counter struct {
		Views int64 `json:"views"`
	}
	if err := json.Unmarshal(out.CV, &counter); err != nil {
		return nil, fmt.Errorf("api: decode shared cv views: %w", err)
	}
	shared.Views = counter.Views
	delete(shared.CV.Extra, "views")
	return &shared, nil
}

func (c *Client) GetPreferences(ctx context.Context) (map[string]any, error) {
	var out struct {
		Preferences map[string]any `json:"preferences"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/preferences", nil, &out); err != nil {
		return nil, err
	}
	return out.Preferences, nil
}

func (c *Client) SetPreferences(ctx context.Context, prefs map[string]any) (map[string]any, error) {
	var out struct {
		Preferences map[string]any `json:"preferences"`
	}
	if err := c.do(ctx, http.MethodPut, "/user/preferences", prefs, &out); err != nil {
		return nil, err
	}
	return out.Preferences, nil
}

func (c *Client) Analytics(ctx context.Context, cvID string) (*Analytics, error) {
	var out Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics/"+url.PathEscape(cvID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, ok := in.(json.RawMessage)
		if !ok {
			var err error
			if raw, err = json.Marshal(in); err != nil {
				return fmt.Errorf("api: encode request: %w", err)
			}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			if payload.Error != "" {
				apiErr.Code = payload.Error
			}
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
