// Package web exposes the HTTP JSON API: authentication, card CRUD with
// server-side filtering, and the backend status probe.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/logging"
	"github.com/cardbook/cardbook/internal/models"
)

// SessionProvider is the slice of the session service the API needs.
type SessionProvider interface {
	Configured() bool
	SignUp(ctx context.Context, email, phone, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	RecoverByPhone(ctx context.Context, phone string) error
	RecoverByEmail(ctx context.Context, email string) error
	VerifyRecovery(ctx context.Context, code string) (*models.Session, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	UserIDFromToken(token string) (string, error)
}

// CardProvider is the slice of the card service the API needs.
type CardProvider interface {
	List(ctx context.Context, ownerID string, query string, filter listing.Filter) ([]models.Card, error)
	Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error)
	Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error
	Delete(ctx context.Context, ownerID, cardID string) error
}

// API is the HTTP API of the cardbook server.
type API struct {
	sessions SessionProvider
	cards    CardProvider
	logger   logging.Logger
}

// NewAPI constructs the API over the given services.
func NewAPI(sessions SessionProvider, cards CardProvider, logger logging.Logger) *API {
	return &API{sessions: sessions, cards: cards, logger: logger}
}

// Router builds the chi router with all routes and middleware attached.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(a.logger))

	r.Get("/status", a.status)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", a.signUp)
		r.Post("/signin", a.signIn)
		r.Post("/signout", a.signOut)
		r.Post("/refresh", a.refresh)
		r.Post("/recover", a.recover)
		r.Post("/verify", a.verify)
		r.With(a.authenticated).Post("/password", a.updatePassword)
	})

	r.Route("/api/cards", func(r chi.Router) {
		r.Use(a.authenticated)
		r.Get("/", a.listCards)
		r.Post("/", a.createCard)
		r.Patch("/{cardID}", a.updateCard)
		r.Delete("/{cardID}", a.deleteCard)
	})

	return r
}

// requestLogger emits one structured log line per request.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
			)
		})
	}
}
