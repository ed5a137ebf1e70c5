// Package api implements the HTTP client for the cardbook server. It keeps
// the current session, attaches the bearer token to card requests, and
// transparently refreshes an expired access token once before giving up.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
)

const requestTimeout = 10 * time.Second

// Status mirrors the server's configuration probe. Both fields false means
// the server is serving sample data.
type Status struct {
	URLAvailable bool `json:"url_available"`
	KeyAvailable bool `json:"key_available"`
}

// Client talks to the cardbook server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	session models.Session
}

// NewClient constructs a Client for the given base URL (scheme and host,
// no trailing slash required).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Session returns a copy of the current session.
func (c *Client) Session() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s models.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// ClearSession drops the stored tokens.
func (c *Client) ClearSession() {
	c.setSession(models.Session{})
}

// Status asks the server whether a backend is configured.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.doJSON(ctx, http.MethodGet, "/status", nil, &status, false); err != nil {
		return nil, err
	}
	return &status, nil
}

// SignUp registers a new account and stores the returned session.
func (c *Client) SignUp(ctx context.Context, email, phone, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "phone": phone, "password": password}
	var session models.Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", body, &session, false); err != nil {
		return nil, err
	}
	c.setSession(session)
	return &session, nil
}

// SignIn authenticates and stores the returned session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session models.Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signin", body, &session, false); err != nil {
		return nil, err
	}
	c.setSession(session)
	return &session, nil
}

// SignOut revokes the refresh token server-side and clears the local
// session. Local state is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	refresh := c.Session().RefreshToken
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/signout", map[string]string{"refresh_token": refresh}, nil, false)
	c.ClearSession()
	return err
}

// Recover starts account recovery. Exactly one of email or phone should be
// set; the server decides the flow from the populated field.
func (c *Client) Recover(ctx context.Context, email, phone string) error {
	body := map[string]string{"email": email, "phone": phone}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/recover", body, nil, false)
}

// Verify exchanges a recovery code for a session and stores it.
func (c *Client) Verify(ctx context.Context, code string) (*models.Session, error) {
	var session models.Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify", map[string]string{"code": code}, &session, false); err != nil {
		return nil, err
	}
	c.setSession(session)
	return &session, nil
}

// UpdatePassword replaces the password of the signed-in account.
func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/password", map[string]string{"password": password}, nil, true)
}

// ListCards fetches the caller's cards with the query and filter applied
// server-side.
func (c *Client) ListCards(ctx context.Context, query string, filter listing.Filter) ([]models.Card, error) {
	path := "/api/cards/"
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if filter != "" {
		params.Set("filter", string(filter))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var cards []models.Card
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &cards, true); err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateCard stores a new card and returns it with server-assigned fields.
func (c *Client) CreateCard(ctx context.Context, draft models.CardDraft) (*models.Card, error) {
	var card models.Card
	if err := c.doJSON(ctx, http.MethodPost, "/api/cards/", draft, &card, true); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard applies a partial patch to the card.
func (c *Client) UpdateCard(ctx context.Context, cardID string, patch models.CardPatch) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/cards/"+cardID, patch, nil, true)
}

// DeleteCard removes the card.
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/cards/"+cardID, nil, nil, true)
}

// refresh exchanges the stored refresh token for a new session.
func (c *Client) refresh(ctx context.Context) error {
	token := c.Session().RefreshToken
	if token == "" {
		return common.ErrorUnauthorized
	}
	var session models.Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": token}, &session, false); err != nil {
		c.ClearSession()
		return err
	}
	c.setSession(session)
	return nil
}

// doJSON performs one request. Authenticated requests that come back 401 are
// retried once after a token refresh.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	status, err := c.roundTrip(ctx, method, path, body, out, authed)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && authed {
		if err := c.refresh(ctx); err != nil {
			return common.ErrorUnauthorized
		}
		status, err = c.roundTrip(ctx, method, path, body, out, authed)
		if err != nil {
			return err
		}
	}
	return statusToError(status)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any, authed bool) (int, error) {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return 0, err
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Session().AccessToken; token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return resp.StatusCode, decodeValidationError(resp.Body)
	}
	if resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func decodeValidationError(r io.Reader) error {
	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r).Decode(&resp); err != nil || resp.Error == "" {
		return fmt.Errorf("bad request")
	}
	if len(resp.Fields) > 0 {
		return &common.ValidationError{Fields: resp.Fields}
	}
	return fmt.Errorf("bad request: %s", resp.Error)
}

func statusToError(status int) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status == http.StatusBadGateway:
		return common.ErrorBackend
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}
