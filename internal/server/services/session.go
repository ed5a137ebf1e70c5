// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, sign-in, sign-out, issuing and
// refreshing JWTs plus server-stored refresh tokens, and the account
// recovery flows (SMS codes and email links).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/dbx"
	"github.com/cardbook/cardbook/internal/logging"
	sharedmodels "github.com/cardbook/cardbook/internal/models"
	"github.com/cardbook/cardbook/internal/server/auth"
	"github.com/cardbook/cardbook/internal/server/config"
	"github.com/cardbook/cardbook/internal/server/models"
	"github.com/cardbook/cardbook/internal/server/repositories/repomanager"
)

// AuthEvent describes a change of authentication state, broadcast to
// subscribers so long-lived components can react to sign-ins and sign-outs.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// recoveryCodeDigits is the length of the one-time code sent by SMS.
const recoveryCodeDigits = 6

// SessionService provides authentication operations:
//   - SignUp: create accounts (and their profile rows)
//   - SignIn: verify credentials and mint sessions
//   - Refresh: rotate refresh tokens and mint new access tokens
//   - RecoverByPhone / RecoverByEmail / VerifyRecovery: account recovery
//
// When the backend is not configured the service degrades to sample mode:
// every operation succeeds with an empty session and nothing is persisted.
type SessionService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	recoveryCodeValidityDuration time.Duration
	configured                   bool

	mu          sync.Mutex
	subscribers map[chan AuthEvent]struct{}

	// delivery seams; replaced in tests and by real integrations
	sendSMS   func(phone string, code string) error
	sendEmail func(email string, link string) error
}

// NewSessionService constructs a SessionService. A nil db puts the service
// in sample mode regardless of cfg.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	s := &SessionService{
		db:                           db,
		repomanager:                  m,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.BackendAnonKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		recoveryCodeValidityDuration: cfg.RecoveryCodeValidityDuration,
		configured:                   db != nil && cfg.BackendConfigured(),
		subscribers:                  make(map[chan AuthEvent]struct{}),
	}
	s.sendSMS = func(phone string, code string) error {
		logger.Info(context.Background(), "recovery code issued", "phone", phone)
		return nil
	}
	s.sendEmail = func(email string, link string) error {
		logger.Info(context.Background(), "recovery link issued", "email", email)
		return nil
	}
	return s
}

// Configured reports whether a real backend is attached. When false, all
// operations run against sample data.
func (s *SessionService) Configured() bool {
	return s.configured
}

// Subscribe registers an auth event listener and returns the channel plus
// a cancel function that unregisters it.
func (s *SessionService) Subscribe() (<-chan AuthEvent, func()) {
	ch := make(chan AuthEvent, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}
}

func (s *SessionService) notify(event AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SignUp creates a new account with the given email, optional phone, and
// password, then mints a session. The companion profile row is written on a
// best-effort basis: a failure there is logged but does not fail the sign-up.
func (s *SessionService) SignUp(ctx context.Context, email, phone, password string) (*sharedmodels.Session, error) {
	if !s.configured {
		return &sharedmodels.Session{}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Email: email, Phone: phone, PasswordHash: hash}
	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.repomanager.Profiles(s.db).Insert(ctx, user.ID, user.Email); err != nil {
		s.logger.Warn(ctx, "profile insert failed", "user_id", user.ID, "error", err.Error())
	}

	session, err := s.generateSession(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	s.notify(EventSignedIn)
	return session, nil
}

// SignIn verifies the credentials and returns a fresh session. The profile
// row is upserted on every successful sign-in; failures there are swallowed
// so a broken profile table never locks an account out.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*sharedmodels.Session, error) {
	if !s.configured {
		return &sharedmodels.Session{}, nil
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	if err := s.repomanager.Profiles(s.db).Upsert(ctx, user.ID, user.Email); err != nil {
		s.logger.Warn(ctx, "profile upsert failed", "user_id", user.ID, "error", err.Error())
	}

	session, err := s.generateSession(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	s.notify(EventSignedIn)
	return session, nil
}

// SignOut revokes the given refresh token. Revocation errors are swallowed:
// sign-out must always succeed from the caller's point of view.
func (s *SessionService) SignOut(ctx context.Context, refreshToken string) error {
	if s.configured && refreshToken != "" {
		if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
			s.logger.Warn(ctx, "refresh token revocation failed", "error", err.Error())
		}
	}
	s.notify(EventSignedOut)
	return nil
}

// Refresh validates a refresh token, rotates it transactionally, and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*sharedmodels.Session, error) {
	if !s.configured {
		return &sharedmodels.Session{}, nil
	}

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var session *sharedmodels.Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		session, genErr = s.generateSession(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	s.notify(EventTokenRefreshed)
	return session, nil
}

// RecoverByPhone issues a one-time numeric code to the account registered
// under the given phone number. Unknown numbers return nil to avoid leaking
// which phones have accounts.
func (s *SessionService) RecoverByPhone(ctx context.Context, phone string) error {
	if !s.configured {
		return nil
	}

	user, err := s.repomanager.Users(s.db).GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	code, err := common.MakeRandDigits(recoveryCodeDigits)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.RecoveryCodes(s.db).Create(ctx, user.ID, code, s.recoveryCodeValidityDuration); err != nil {
		return common.ErrorInternal
	}
	return s.sendSMS(phone, code)
}

// RecoverByEmail issues a recovery link token to the account registered
// under the given email. Unknown addresses return nil.
func (s *SessionService) RecoverByEmail(ctx context.Context, email string) error {
	if !s.configured {
		return nil
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.RecoveryCodes(s.db).Create(ctx, user.ID, token, s.recoveryCodeValidityDuration); err != nil {
		return common.ErrorInternal
	}
	return s.sendEmail(email, token)
}

// VerifyRecovery exchanges a recovery code (SMS digits or email link token)
// for a session, consuming the code. Unknown or expired codes yield
// ErrInvalidRecoveryLink.
func (s *SessionService) VerifyRecovery(ctx context.Context, code string) (*sharedmodels.Session, error) {
	if !s.configured {
		return &sharedmodels.Session{}, nil
	}

	rc, err := s.repomanager.RecoveryCodes(s.db).Find(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRecoveryLink
		}
		return nil, common.ErrorInternal
	}
	if rc.Expires.Before(time.Now()) {
		return nil, common.ErrInvalidRecoveryLink
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, rc.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var session *sharedmodels.Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RecoveryCodes(tx).Delete(ctx, code); err != nil {
			return fmt.Errorf("error consuming recovery code: %w", err)
		}
		var genErr error
		session, genErr = s.generateSession(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	s.notify(EventSignedIn)
	return session, nil
}

// UpdatePassword replaces the password of the given account.
func (s *SessionService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if !s.configured {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// UserIDFromToken extracts and validates the user id carried by an access
// token.
func (s *SessionService) UserIDFromToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *SessionService) generateSession(ctx context.Context, user *models.User, tx dbx.DBTX) (*sharedmodels.Session, error) {
	access, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &sharedmodels.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		ExpiresAt:    time.Now().Add(s.accessTokenValidityDuration),
		Configured:   true,
	}, nil
}
