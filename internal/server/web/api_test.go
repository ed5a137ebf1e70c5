package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/logging"
	"github.com/cardbook/cardbook/internal/models"
	"github.com/cardbook/cardbook/internal/server/web"
)

type fakeSessions struct {
	configured bool

	signInOut *models.Session
	signInErr error

	refreshOut *models.Session
	refreshErr error

	verifyOut *models.Session
	verifyErr error

	recoveredPhone string
	recoveredEmail string

	tokenUserID string
	tokenErr    error

	passwordUpdatedFor string
}

func (f *fakeSessions) Configured() bool { return f.configured }
func (f *fakeSessions) SignUp(ctx context.Context, email, phone, password string) (*models.Session, error) {
	return &models.Session{UserID: "u-new", Email: email, Configured: true, AccessToken: "at", RefreshToken: "rt"}, nil
}
func (f *fakeSessions) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.signInOut, nil
}
func (f *fakeSessions) SignOut(ctx context.Context, refreshToken string) error { return nil }
func (f *fakeSessions) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshOut, nil
}
func (f *fakeSessions) RecoverByPhone(ctx context.Context, phone string) error {
	f.recoveredPhone = phone
	return nil
}
func (f *fakeSessions) RecoverByEmail(ctx context.Context, email string) error {
	f.recoveredEmail = email
	return nil
}
func (f *fakeSessions) VerifyRecovery(ctx context.Context, code string) (*models.Session, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyOut, nil
}
func (f *fakeSessions) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	f.passwordUpdatedFor = userID
	return nil
}
func (f *fakeSessions) UserIDFromToken(token string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.tokenUserID, nil
}

type fakeCards struct {
	listOut    []models.Card
	listErr    error
	listOwner  string
	listQuery  string
	listFilter listing.Filter

	createOut *models.Card
	createErr error

	updateErr error
	deleteErr error
}

func (f *fakeCards) List(ctx context.Context, ownerID, query string, filter listing.Filter) ([]models.Card, error) {
	f.listOwner, f.listQuery, f.listFilter = ownerID, query, filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeCards) Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeCards) Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error {
	return f.updateErr
}
func (f *fakeCards) Delete(ctx context.Context, ownerID, cardID string) error {
	return f.deleteErr
}

func newTestRouter(sessions *fakeSessions, cards *fakeCards) http.Handler {
	api := web.NewAPI(sessions, cards, logging.NewJSONLogger(io.Discard))
	return api.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		router := newTestRouter(&fakeSessions{configured: true}, &fakeCards{})
		w := doJSON(t, router, http.MethodGet, "/status", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			URLAvailable bool `json:"url_available"`
			KeyAvailable bool `json:"key_available"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.True(t, resp.URLAvailable)
		require.True(t, resp.KeyAvailable)
	})

	t.Run("sample mode", func(t *testing.T) {
		router := newTestRouter(&fakeSessions{}, &fakeCards{})
		w := doJSON(t, router, http.MethodGet, "/status", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			URLAvailable bool `json:"url_available"`
			KeyAvailable bool `json:"key_available"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.False(t, resp.URLAvailable)
		require.False(t, resp.KeyAvailable)
	})
}

func TestSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sessions := &fakeSessions{
			configured: true,
			signInOut:  &models.Session{AccessToken: "at", RefreshToken: "rt", UserID: "u1", Email: "alice@example.com", Configured: true},
		}
		router := newTestRouter(sessions, &fakeCards{})

		w := doJSON(t, router, http.MethodPost, "/api/auth/signin",
			map[string]string{"email": "alice@example.com", "password": "pw"}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "at", resp["access_token"])
		require.Equal(t, "alice@example.com", resp["email"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		sessions := &fakeSessions{configured: true, signInErr: common.ErrorUnauthorized}
		router := newTestRouter(sessions, &fakeCards{})

		w := doJSON(t, router, http.MethodPost, "/api/auth/signin",
			map[string]string{"email": "alice@example.com", "password": "wrong"}, nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&fakeSessions{configured: true}, &fakeCards{})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", bytes.NewBufferString("{nope"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRefresh_Expired(t *testing.T) {
	sessions := &fakeSessions{configured: true, refreshErr: common.ErrRefreshTokenExpired}
	router := newTestRouter(sessions, &fakeCards{})

	w := doJSON(t, router, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": "stale"}, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecover_RoutesByContactField(t *testing.T) {
	t.Run("phone", func(t *testing.T) {
		sessions := &fakeSessions{configured: true}
		router := newTestRouter(sessions, &fakeCards{})

		w := doJSON(t, router, http.MethodPost, "/api/auth/recover",
			map[string]string{"phone": "+5511999990000"}, nil)

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Equal(t, "+5511999990000", sessions.recoveredPhone)
		require.Empty(t, sessions.recoveredEmail)
	})

	t.Run("email", func(t *testing.T) {
		sessions := &fakeSessions{configured: true}
		router := newTestRouter(sessions, &fakeCards{})

		w := doJSON(t, router, http.MethodPost, "/api/auth/recover",
			map[string]string{"email": "alice@example.com"}, nil)

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Equal(t, "alice@example.com", sessions.recoveredEmail)
	})

	t.Run("neither", func(t *testing.T) {
		router := newTestRouter(&fakeSessions{configured: true}, &fakeCards{})

		w := doJSON(t, router, http.MethodPost, "/api/auth/recover", map[string]string{}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerify_InvalidCode(t *testing.T) {
	sessions := &fakeSessions{configured: true, verifyErr: common.ErrInvalidRecoveryLink}
	router := newTestRouter(sessions, &fakeCards{})

	w := doJSON(t, router, http.MethodPost, "/api/auth/verify",
		map[string]string{"code": "000000"}, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdatePassword_RequiresAuth(t *testing.T) {
	sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
	router := newTestRouter(sessions, &fakeCards{})

	t.Run("no token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/password",
			map[string]string{"password": "new"}, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("with token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/password",
			map[string]string{"password": "new"},
			map[string]string{"Authorization": "Bearer token"})
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "u1", sessions.passwordUpdatedFor)
	})
}

func TestListCards(t *testing.T) {
	t.Run("passes query and filter through", func(t *testing.T) {
		cards := &fakeCards{listOut: []models.Card{{ID: "1", Nome: "Nubank Platinum"}}}
		sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
		router := newTestRouter(sessions, cards)

		w := doJSON(t, router, http.MethodGet, "/api/cards/?q=nubank&filter=naoUsado", nil,
			map[string]string{"Authorization": "Bearer token"})

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "u1", cards.listOwner)
		require.Equal(t, "nubank", cards.listQuery)
		require.Equal(t, listing.FilterNotUsed, cards.listFilter)
	})

	t.Run("empty list is a JSON array", func(t *testing.T) {
		sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
		router := newTestRouter(sessions, &fakeCards{})

		w := doJSON(t, router, http.MethodGet, "/api/cards/", nil,
			map[string]string{"Authorization": "Bearer token"})

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("expired token", func(t *testing.T) {
		sessions := &fakeSessions{configured: true, tokenErr: common.ErrTokenExpired}
		router := newTestRouter(sessions, &fakeCards{})

		w := doJSON(t, router, http.MethodGet, "/api/cards/", nil,
			map[string]string{"Authorization": "Bearer stale"})

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("sample mode skips auth", func(t *testing.T) {
		cards := &fakeCards{listOut: []models.Card{{ID: "1"}}}
		router := newTestRouter(&fakeSessions{configured: false}, cards)

		w := doJSON(t, router, http.MethodGet, "/api/cards/", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "mock-user", cards.listOwner)
	})
}

func TestCreateCard(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		cards := &fakeCards{createOut: &models.Card{ID: "c1", Nome: "Novo"}}
		sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
		router := newTestRouter(sessions, cards)

		w := doJSON(t, router, http.MethodPost, "/api/cards/",
			models.CardDraft{Nome: "Novo", Numero: "4111222233334444", Validade: "12/25"},
			map[string]string{"Authorization": "Bearer token"})

		require.Equal(t, http.StatusCreated, w.Code)
		var got models.Card
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, "c1", got.ID)
	})

	t.Run("validation failure carries fields", func(t *testing.T) {
		cards := &fakeCards{createErr: common.NewValidationError("validade", "data de validade inválida (MM/AA)")}
		sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
		router := newTestRouter(sessions, cards)

		w := doJSON(t, router, http.MethodPost, "/api/cards/",
			models.CardDraft{Nome: "Novo", Numero: "4111222233334444", Validade: "13/25"},
			map[string]string{"Authorization": "Bearer token"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp.Fields, "validade")
	})
}

func TestUpdateCard_NotFound(t *testing.T) {
	cards := &fakeCards{updateErr: common.ErrorNotFound}
	sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
	router := newTestRouter(sessions, cards)

	w := doJSON(t, router, http.MethodPatch, "/api/cards/ghost",
		map[string]bool{"usado": true},
		map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCard(t *testing.T) {
	sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
	router := newTestRouter(sessions, &fakeCards{})

	w := doJSON(t, router, http.MethodDelete, "/api/cards/c1", nil,
		map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestBackendErrorMapsToBadGateway(t *testing.T) {
	cards := &fakeCards{listErr: fmt.Errorf("%w: connection refused", common.ErrorBackend)}
	sessions := &fakeSessions{configured: true, tokenUserID: "u1"}
	router := newTestRouter(sessions, cards)

	w := doJSON(t, router, http.MethodGet, "/api/cards/", nil,
		map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusBadGateway, w.Code)
}
