package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cardbook/cardbook/internal/cardx"
	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
	"github.com/cardbook/cardbook/internal/server/repositories/cards"
)

var validate = validator.New()

// CardService implements the card bookkeeping operations on top of a
// cards.Repository. The repository decides whether data comes from
// PostgreSQL or the built-in sample set; the service logic is identical
// in both modes.
type CardService struct {
	repo cards.Repository
	now  func() time.Time
}

// NewCardService constructs a CardService over the given repository.
func NewCardService(repo cards.Repository) *CardService {
	return &CardService{repo: repo, now: time.Now}
}

// List returns the owner's cards with the text query and category filter
// applied, ordered by the standard listing pipeline.
func (s *CardService) List(ctx context.Context, ownerID string, query string, filter listing.Filter) ([]models.Card, error) {
	all, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return listing.Apply(all, query, filter, s.now()), nil
}

// draftRules mirrors the card form: every field is mandatory on creation.
type draftRules struct {
	Nome     string `validate:"required"`
	Numero   string `validate:"required"`
	Validade string `validate:"required"`
}

// Create validates and stores a new card for ownerID. The number is cleaned
// of spaces before validation and storage; the expiry must be a real MM/YY
// date denoting a month strictly after the current one.
func (s *CardService) Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error) {
	draft.Numero = cardx.CleanNumber(draft.Numero)
	draft.Nome = strings.TrimSpace(draft.Nome)

	if err := validate.Struct(draftRules{Nome: draft.Nome, Numero: draft.Numero, Validade: draft.Validade}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			return nil, common.NewValidationError(field, "obrigatório")
		}
		return nil, common.ErrorInternal
	}

	if !digitsOnly(draft.Numero) || len(draft.Numero) < 13 || len(draft.Numero) > 19 {
		return nil, common.NewValidationError("numero", "número de cartão inválido")
	}
	if !cardx.ValidExpiry(draft.Validade) {
		return nil, common.NewValidationError("validade", "data de validade inválida (MM/AA)")
	}
	if !cardx.ExpiresAfter(draft.Validade, s.now()) {
		return nil, common.NewValidationError("validade", "cartão vencido")
	}

	card, err := s.repo.Create(ctx, ownerID, draft)
	if err != nil {
		return nil, fmt.Errorf("error creating card: %w", err)
	}
	return card, nil
}

// Update applies a partial patch to an existing card. A patched number goes
// through the same cleaning and length checks as on creation; a patched
// expiry only needs to be well-formed, so marking an already expired card
// as used still works.
func (s *CardService) Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error {
	if patch.Numero != nil {
		clean := cardx.CleanNumber(*patch.Numero)
		if !digitsOnly(clean) || len(clean) < 13 || len(clean) > 19 {
			return common.NewValidationError("numero", "número de cartão inválido")
		}
		patch.Numero = &clean
	}
	if patch.Nome != nil {
		trimmed := strings.TrimSpace(*patch.Nome)
		if trimmed == "" {
			return common.NewValidationError("nome", "obrigatório")
		}
		patch.Nome = &trimmed
	}
	if patch.Validade != nil && !cardx.ValidExpiry(*patch.Validade) {
		return common.NewValidationError("validade", "data de validade inválida (MM/AA)")
	}

	return s.repo.Update(ctx, ownerID, cardID, patch)
}

// Delete removes the card. Unknown ids yield common.ErrorNotFound.
func (s *CardService) Delete(ctx context.Context, ownerID, cardID string) error {
	return s.repo.Delete(ctx, ownerID, cardID)
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
