package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
)

// listCards returns the caller's cards, filtered server-side by the q and
// filter query parameters. Unknown filter names fall back to "todos".
func (a *API) listCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	filter := listing.ParseFilter(r.URL.Query().Get("filter"))

	cards, err := a.cards.List(r.Context(), userIDFromContext(r.Context()), query, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (a *API) createCard(w http.ResponseWriter, r *http.Request) {
	var draft models.CardDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	card, err := a.cards.Create(r.Context(), userIDFromContext(r.Context()), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (a *API) updateCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	var patch models.CardPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := a.cards.Update(r.Context(), userIDFromContext(r.Context()), cardID, patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) deleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	if err := a.cards.Delete(r.Context(), userIDFromContext(r.Context()), cardID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
