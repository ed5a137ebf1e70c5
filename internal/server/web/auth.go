package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/models"
)

type statusResponse struct {
	URLAvailable bool `json:"url_available"`
	KeyAvailable bool `json:"key_available"`
}

// status reports whether the backend is configured, mirroring the two
// settings the deployment provides. Clients use it to explain why they are
// showing sample data.
func (a *API) status(w http.ResponseWriter, r *http.Request) {
	configured := a.sessions.Configured()
	writeJSON(w, http.StatusOK, statusResponse{URLAvailable: configured, KeyAvailable: configured})
}

type signUpRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	Email        string     `json:"email,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Configured   bool       `json:"configured"`
}

func toSessionResponse(s *models.Session) sessionResponse {
	resp := sessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
		Email:        s.Email,
		Configured:   s.Configured,
	}
	if !s.ExpiresAt.IsZero() {
		t := s.ExpiresAt
		resp.ExpiresAt = &t
	}
	return resp
}

func (a *API) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := a.sessions.SignUp(r.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (a *API) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := a.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := a.sessions.SignOut(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := a.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// recover starts one of the two recovery flows depending on which contact
// field is present. Both respond 202 regardless of whether the account
// exists.
func (a *API) recover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var err error
	switch {
	case req.Phone != "":
		err = a.sessions.RecoverByPhone(r.Context(), req.Phone)
	case req.Email != "":
		err = a.sessions.RecoverByEmail(r.Context(), req.Email)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email or phone required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Code == "" {
		writeError(w, common.ErrInvalidRecoveryLink)
		return
	}

	session, err := a.sessions.VerifyRecovery(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "password required"})
		return
	}

	if err := a.sessions.UpdatePassword(r.Context(), userIDFromContext(r.Context()), req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
