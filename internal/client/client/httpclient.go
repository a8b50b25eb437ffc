package client

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

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/models"
)

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 15 * time.Second

var _ API = (*HTTPClient)(nil)

type HTTPClient struct {
	baseURL string
	hc      *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewHTTPClient talks to the API under baseURL. hc may be nil.
func NewHTTPClient(baseURL string, hc *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}, nil
}

func (c *HTTPClient) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) Login(ctx context.Context, usernameHash, passwordHash string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{UsernameHash: usernameHash, PasswordHash: passwordHash}
	if err := c.do(ctx, http.MethodPost, "/api/credentials/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) LookupCredential(ctx context.Context, usernameHash string) (*models.CredentialLookup, error) {
	var resp models.CredentialLookup
	q := url.Values{"usernameHash": {usernameHash}}
	if err := c.do(ctx, http.MethodGet, "/api/credentials/lookup", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateCredential(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error) {
	var resp models.Credential
	if err := c.do(ctx, http.MethodPost, "/api/credentials", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, credentialID string, req models.UpdatePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/api/credentials/"+url.PathEscape(credentialID)+"/password", nil, req, nil)
}

func (c *HTTPClient) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var resp []models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error) {
	var resp models.Profile
	if err := c.do(ctx, http.MethodPost, "/api/profiles", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	var resp models.Profile
	if err := c.do(ctx, http.MethodPut, "/api/profiles/"+url.PathEscape(id), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteProfile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/profiles/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) RequestAvatarUpload(ctx context.Context, profileID string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error) {
	var resp models.AvatarUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/profiles/"+url.PathEscape(profileID)+"/avatar", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListPoints(ctx context.Context, filter models.PointFilter) ([]models.Point, error) {
	var q url.Values
	if filter.Status != "" {
		q = url.Values{"status": {string(filter.Status)}}
	}
	var resp []models.Point
	if err := c.do(ctx, http.MethodGet, "/api/points", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) SearchPoints(ctx context.Context, prefix string) ([]models.Point, error) {
	var resp []models.Point
	q := url.Values{"prefix": {prefix}}
	if err := c.do(ctx, http.MethodGet, "/api/points/search", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) CreatePoint(ctx context.Context, in models.PointInput) (*models.Point, error) {
	var resp models.Point
	if err := c.do(ctx, http.MethodPost, "/api/points", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdatePoint(ctx context.Context, id string, in models.PointInput) (*models.Point, error) {
	var resp models.Point
	if err := c.do(ctx, http.MethodPut, "/api/points/"+url.PathEscape(id), nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeletePoint(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/points/"+url.PathEscape(id), nil, nil, nil)
}

// do sends one JSON request. body and out may be nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return mapStatus(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapStatus turns an error response into a client sentinel carrying the
// server's message.
func mapStatus(resp *http.Response) error {
	var er models.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		sentinel = ErrInvalid
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel = ErrUnavailable
	default:
		return fmt.Errorf("server error: %s", msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
