// Package models holds the wire types shared between the server and the
// CLI client. Column/JSON names follow the credit_cards table.
package models

import "time"

// Card is one credit-card record owned by an account.
type Card struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Nome           string     `json:"nome"`
	Numero         string     `json:"numero"` // cleaned digit string
	Validade       string     `json:"validade"`
	Usado          bool       `json:"usado"`
	CashbackTirado bool       `json:"cashback_tirado"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"` // nil until first update
}

// CardDraft carries the caller-supplied fields of a new card. The booleans
// default to false when omitted; identifier and timestamps are assigned by
// the store.
type CardDraft struct {
	Nome           string `json:"nome"`
	Numero         string `json:"numero"`
	Validade       string `json:"validade"`
	Usado          bool   `json:"usado"`
	CashbackTirado bool   `json:"cashback_tirado"`
}

// CardPatch is a partial update. Nil fields are left untouched. The record
// identifier, owner and timestamps are not patchable.
type CardPatch struct {
	Nome           *string `json:"nome,omitempty"`
	Numero         *string `json:"numero,omitempty"`
	Validade       *string `json:"validade,omitempty"`
	Usado          *bool   `json:"usado,omitempty"`
	CashbackTirado *bool   `json:"cashback_tirado,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p CardPatch) Empty() bool {
	return p.Nome == nil && p.Numero == nil && p.Validade == nil &&
		p.Usado == nil && p.CashbackTirado == nil
}
