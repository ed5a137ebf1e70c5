package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
)

func TestSignIn_StoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/signin", r.URL.Path)
		json.NewEncoder(w).Encode(models.Session{
			AccessToken: "at", RefreshToken: "rt", UserID: "u1", Email: "alice@example.com", Configured: true,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	session, err := c.SignIn(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "at", c.Session().AccessToken)
}

func TestListCards_SendsQueryAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		assert.Equal(t, "nubank", r.URL.Query().Get("q"))
		assert.Equal(t, "naoUsado", r.URL.Query().Get("filter"))
		json.NewEncoder(w).Encode([]models.Card{{ID: "1", Nome: "Nubank Platinum"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.setSession(models.Session{AccessToken: "at", Configured: true})

	cards, err := c.ListCards(context.Background(), "nubank", listing.FilterNotUsed)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Nubank Platinum", cards[0].Nome)
}

func TestListCards_RefreshesOnceOn401(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cards/":
			if r.Header.Get("Authorization") == "Bearer fresh" {
				json.NewEncoder(w).Encode([]models.Card{{ID: "1"}})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		case "/api/auth/refresh":
			calls.Add(1)
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "rt", body["refresh_token"])
			json.NewEncoder(w).Encode(models.Session{AccessToken: "fresh", RefreshToken: "rt2", Configured: true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.setSession(models.Session{AccessToken: "stale", RefreshToken: "rt", Configured: true})

	cards, err := c.ListCards(context.Background(), "", listing.FilterAll)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "fresh", c.Session().AccessToken)
}

func TestListCards_UnauthorizedWhenRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.setSession(models.Session{AccessToken: "stale", RefreshToken: "rt", Configured: true})

	_, err := c.ListCards(context.Background(), "", listing.FilterAll)
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
	assert.Empty(t, c.Session().AccessToken, "failed refresh must clear the session")
}

func TestCreateCard_ValidationErrorCarriesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{"validade": "data de validade inválida (MM/AA)"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.setSession(models.Session{AccessToken: "at", Configured: true})

	_, err := c.CreateCard(context.Background(), models.CardDraft{Nome: "x"})
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "validade")
}

func TestDeleteCard_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			json.NewEncoder(w).Encode(models.Session{AccessToken: "at", RefreshToken: "rt"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.setSession(models.Session{AccessToken: "at", RefreshToken: "rt", Configured: true})

	err := c.DeleteCard(context.Background(), "ghost")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		json.NewEncoder(w).Encode(Status{URLAvailable: true, KeyAvailable: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.URLAvailable)
	assert.True(t, status.KeyAvailable)
}

func TestSignOut_ClearsSessionEvenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.setSession(models.Session{AccessToken: "at", RefreshToken: "rt", Configured: true})

	_ = c.SignOut(context.Background())
	assert.Empty(t, c.Session().AccessToken)
	assert.Empty(t, c.Session().RefreshToken)
}
