package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cardbook/cardbook/internal/cardx"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
)

// fetch replaces the local card list with the server's view of the current
// query and filter. The network call runs unlocked.
func (a *App) fetch(ctx context.Context) error {
	a.mu.Lock()
	query, filter := a.query, a.filter
	a.mu.Unlock()

	cards, err := a.api.ListCards(ctx, query, filter)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cards = cards
	a.mu.Unlock()
	return nil
}

// List fetches and prints the card list.
func (a *App) List(ctx context.Context) error {
	if err := a.fetch(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	a.print()
	return nil
}

// snapshot copies the local list so printing never races with mutations.
func (a *App) snapshot() []models.Card {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Card, len(a.cards))
	copy(out, a.cards)
	return out
}

func (a *App) print() {
	cards := a.snapshot()
	if len(cards) == 0 {
		printlnFn("No cards.")
		return
	}
	now := time.Now()
	for _, c := range cards {
		flags := ""
		if c.Usado {
			flags += " [usado]"
		}
		if c.CashbackTirado {
			flags += " [cashback]"
		}
		if cardx.ExpiringSoon(c.Validade, now) {
			flags += " [expirando!]"
		}
		printlnFn(fmt.Sprintf("%s  %-24s %s  %s%s",
			c.ID, c.Nome, cardx.MaskNumber(c.Numero), cardx.FormatExpiryDate(c.Validade), flags))
	}
}

// Search updates the text query. The refetch is debounced so rapid
// consecutive search commands cause a single request.
func (a *App) Search(ctx context.Context, query string) error {
	a.mu.Lock()
	a.query = query
	a.mu.Unlock()
	a.debouncer.Call(func() {
		if err := a.fetch(ctx); err != nil {
			log.Printf("Error: %s", err.Error())
			return
		}
		a.print()
	})
	return nil
}

// SetFilter switches the category filter. Unknown names fall back to
// "todos".
func (a *App) SetFilter(ctx context.Context, name string) error {
	a.mu.Lock()
	a.filter = listing.ParseFilter(name)
	a.mu.Unlock()
	return a.List(ctx)
}

// Add prompts for the card fields and creates the card. The created card is
// appended to the local list without refetching.
func (a *App) Add(ctx context.Context) error {
	nome, err := getSimpleText(a.reader, "Card name", os.Stdout)
	if err != nil {
		return err
	}
	numero, err := getSimpleText(a.reader, "Card number", os.Stdout)
	if err != nil {
		return err
	}
	validade, err := getSimpleText(a.reader, "Expiry (MM/YY)", os.Stdout)
	if err != nil {
		return err
	}

	card, err := a.api.CreateCard(ctx, models.CardDraft{Nome: nome, Numero: numero, Validade: validade})
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	a.mu.Lock()
	a.cards = append(a.cards, *card)
	a.mu.Unlock()
	printlnFn("Card added:", card.ID)
	return nil
}

// Use toggles the "usado" flag. The local list is updated first; the server
// call follows and a failure is only logged.
func (a *App) Use(ctx context.Context, cardID string) error {
	a.mu.Lock()
	card := a.findLocal(cardID)
	if card == nil {
		a.mu.Unlock()
		printlnFn("Unknown card id:", cardID)
		return nil
	}
	usado := !card.Usado
	card.Usado = usado
	a.mu.Unlock()

	if err := a.api.UpdateCard(ctx, cardID, models.CardPatch{Usado: &usado}); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	return nil
}

// Cashback toggles the "cashback tirado" flag, optimistically like Use.
func (a *App) Cashback(ctx context.Context, cardID string) error {
	a.mu.Lock()
	card := a.findLocal(cardID)
	if card == nil {
		a.mu.Unlock()
		printlnFn("Unknown card id:", cardID)
		return nil
	}
	tirado := !card.CashbackTirado
	card.CashbackTirado = tirado
	a.mu.Unlock()

	if err := a.api.UpdateCard(ctx, cardID, models.CardPatch{CashbackTirado: &tirado}); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	return nil
}

// Edit prompts for new values for a card; empty answers keep the current
// value. The patch is applied locally first.
func (a *App) Edit(ctx context.Context, cardID string) error {
	a.mu.Lock()
	found := a.findLocal(cardID)
	if found == nil {
		a.mu.Unlock()
		printlnFn("Unknown card id:", cardID)
		return nil
	}
	current := *found
	a.mu.Unlock()

	nome, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s] (empty keeps)", current.Nome), os.Stdout)
	if err != nil {
		return err
	}
	numero, err := getSimpleText(a.reader, fmt.Sprintf("Number [%s] (empty keeps)", cardx.FormatCardNumber(current.Numero)), os.Stdout)
	if err != nil {
		return err
	}
	validade, err := getSimpleText(a.reader, fmt.Sprintf("Expiry [%s] (empty keeps)", current.Validade), os.Stdout)
	if err != nil {
		return err
	}

	patch := models.CardPatch{}
	if nome != "" {
		patch.Nome = &nome
	}
	if numero != "" {
		clean := cardx.CleanNumber(numero)
		patch.Numero = &clean
	}
	if validade != "" {
		patch.Validade = &validade
	}
	if patch.Empty() {
		printlnFn("Nothing to change.")
		return nil
	}

	a.mu.Lock()
	if card := a.findLocal(cardID); card != nil {
		if patch.Nome != nil {
			card.Nome = *patch.Nome
		}
		if patch.Numero != nil {
			card.Numero = *patch.Numero
		}
		if patch.Validade != nil {
			card.Validade = *patch.Validade
		}
	}
	a.mu.Unlock()

	if err := a.api.UpdateCard(ctx, cardID, patch); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	return nil
}

// Delete asks for confirmation, removes the card locally, then on the
// server.
func (a *App) Delete(ctx context.Context, cardID string) error {
	a.mu.Lock()
	card := a.findLocal(cardID)
	if card == nil {
		a.mu.Unlock()
		printlnFn("Unknown card id:", cardID)
		return nil
	}
	nome := card.Nome
	a.mu.Unlock()

	ok, err := confirm(a.reader, fmt.Sprintf("Delete %q?", nome), os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled.")
		return nil
	}

	a.mu.Lock()
	for i := range a.cards {
		if a.cards[i].ID == cardID {
			a.cards = append(a.cards[:i], a.cards[i+1:]...)
			break
		}
	}
	a.mu.Unlock()

	if err := a.api.DeleteCard(ctx, cardID); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	return nil
}

// findLocal returns a pointer into a.cards; the caller must hold a.mu.
func (a *App) findLocal(cardID string) *models.Card {
	for i := range a.cards {
		if a.cards[i].ID == cardID {
			return &a.cards[i]
		}
	}
	return nil
}
