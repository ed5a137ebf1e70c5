package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
)

type fakeCardsRepo struct {
	listOut []models.Card
	listErr error

	createOut *models.Card
	createErr error
	created   []models.CardDraft

	updateErr error
	updated   []models.CardPatch

	deleteErr error
	deleted   []string
}

func (f *fakeCardsRepo) List(ctx context.Context, ownerID string) ([]models.Card, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeCardsRepo) Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error) {
	f.created = append(f.created, draft)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &models.Card{ID: "generated", UserID: ownerID, Nome: draft.Nome, Numero: draft.Numero, Validade: draft.Validade}, nil
}
func (f *fakeCardsRepo) Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error {
	f.updated = append(f.updated, patch)
	return f.updateErr
}
func (f *fakeCardsRepo) Delete(ctx context.Context, ownerID, cardID string) error {
	f.deleted = append(f.deleted, cardID)
	return f.deleteErr
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	now, err := time.Parse("2006-01-02", "2024-06-15")
	if err != nil {
		t.Fatalf("time.Parse: %v", err)
	}
	return now
}

func newCardService(repo *fakeCardsRepo, now time.Time) *CardService {
	s := NewCardService(repo)
	s.now = func() time.Time { return now }
	return s
}

func TestCardList_AppliesQueryAndFilter(t *testing.T) {
	repo := &fakeCardsRepo{listOut: []models.Card{
		{ID: "1", Nome: "Nubank Platinum", Numero: "5555666677778888", Validade: "12/25"},
		{ID: "2", Nome: "Itaú Visa Gold", Numero: "4111222233334444", Validade: "05/24", Usado: true, CashbackTirado: true},
	}}
	s := newCardService(repo, fixedNow(t))

	got, err := s.List(context.Background(), "u1", "visa", listing.FilterUsed)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCardCreate_CleansNumber(t *testing.T) {
	repo := &fakeCardsRepo{}
	s := newCardService(repo, fixedNow(t))

	card, err := s.Create(context.Background(), "u1", models.CardDraft{
		Nome: " Novo Cartão ", Numero: "4111 2222 3333 4444", Validade: "12/25",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if card.Numero != "4111222233334444" {
		t.Fatalf("number not cleaned: %q", card.Numero)
	}
	if repo.created[0].Nome != "Novo Cartão" {
		t.Fatalf("name not trimmed: %q", repo.created[0].Nome)
	}
}

func TestCardCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft models.CardDraft
		field string
	}{
		{name: "missing name", draft: models.CardDraft{Numero: "4111222233334444", Validade: "12/25"}, field: "nome"},
		{name: "missing number", draft: models.CardDraft{Nome: "Card", Validade: "12/25"}, field: "numero"},
		{name: "number too short", draft: models.CardDraft{Nome: "Card", Numero: "4111", Validade: "12/25"}, field: "numero"},
		{name: "number too long", draft: models.CardDraft{Nome: "Card", Numero: "41112222333344445555", Validade: "12/25"}, field: "numero"},
		{name: "number with letters", draft: models.CardDraft{Nome: "Card", Numero: "4111abcd33334444", Validade: "12/25"}, field: "numero"},
		{name: "bad expiry format", draft: models.CardDraft{Nome: "Card", Numero: "4111222233334444", Validade: "13/25"}, field: "validade"},
		{name: "expired card", draft: models.CardDraft{Nome: "Card", Numero: "4111222233334444", Validade: "05/24"}, field: "validade"},
		{name: "current month expiry", draft: models.CardDraft{Nome: "Card", Numero: "4111222233334444", Validade: "06/24"}, field: "validade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCardsRepo{}
			s := newCardService(repo, fixedNow(t))

			_, err := s.Create(context.Background(), "u1", tt.draft)
			var verr *common.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Fatalf("want error on field %q, got %v", tt.field, verr.Fields)
			}
			if len(repo.created) != 0 {
				t.Fatal("invalid draft must not reach the repository")
			}
		})
	}
}

func TestCardCreate_RejectsCurrentMonth(t *testing.T) {
	// a new card must expire strictly after now; the current month is too late
	repo := &fakeCardsRepo{}
	s := newCardService(repo, fixedNow(t))

	_, err := s.Create(context.Background(), "u1", models.CardDraft{
		Nome: "Card", Numero: "4111222233334444", Validade: "06/24",
	})
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["validade"]; !ok {
		t.Fatalf("want error on validade, got %v", verr.Fields)
	}
	if len(repo.created) != 0 {
		t.Fatal("current-month draft must not reach the repository")
	}
}

func TestCardCreate_NextMonthIsValid(t *testing.T) {
	repo := &fakeCardsRepo{}
	s := newCardService(repo, fixedNow(t))

	if _, err := s.Create(context.Background(), "u1", models.CardDraft{
		Nome: "Card", Numero: "4111222233334444", Validade: "07/24",
	}); err != nil {
		t.Fatalf("card expiring next month is valid: %v", err)
	}
}

func TestCardUpdate_AllowsExpiredCard(t *testing.T) {
	// marking an expired card as used must not be blocked by expiry checks
	repo := &fakeCardsRepo{}
	s := newCardService(repo, fixedNow(t))

	usado := true
	validade := "05/24"
	err := s.Update(context.Background(), "u1", "c1", models.CardPatch{Usado: &usado, Validade: &validade})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(repo.updated) != 1 {
		t.Fatal("patch did not reach the repository")
	}
}

func TestCardUpdate_RejectsMalformedExpiry(t *testing.T) {
	repo := &fakeCardsRepo{}
	s := newCardService(repo, fixedNow(t))

	validade := "2025-12"
	err := s.Update(context.Background(), "u1", "c1", models.CardPatch{Validade: &validade})
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestCardUpdate_CleansPatchedNumber(t *testing.T) {
	repo := &fakeCardsRepo{}
	s := newCardService(repo, fixedNow(t))

	numero := "5555 6666 7777 8888"
	if err := s.Update(context.Background(), "u1", "c1", models.CardPatch{Numero: &numero}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got := *repo.updated[0].Numero; got != "5555666677778888" {
		t.Fatalf("number not cleaned: %q", got)
	}
}

func TestCardDelete_PropagatesNotFound(t *testing.T) {
	repo := &fakeCardsRepo{deleteErr: common.ErrorNotFound}
	s := newCardService(repo, fixedNow(t))

	if err := s.Delete(context.Background(), "u1", "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
