// Package listing implements the list pipeline: the visible, ordered subset
// of a card list derived from a free-text query and a category filter.
package listing

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cardbook/cardbook/internal/cardx"
	"github.com/cardbook/cardbook/internal/models"
)

// Filter selects a card category. The values match the filter bar of the
// original UI and are accepted verbatim as the ?filter= query parameter.
type Filter string

const (
	FilterAll        Filter = "todos"
	FilterUsed       Filter = "usado"
	FilterNotUsed    Filter = "naoUsado"
	FilterCashback   Filter = "cashbackTirado"
	FilterNoCashback Filter = "cashbackNaoTirado"
	FilterExpiring   Filter = "expirando"
)

// ParseFilter maps the wire value to a Filter, defaulting to FilterAll for
// empty or unknown input.
func ParseFilter(s string) Filter {
	switch f := Filter(s); f {
	case FilterUsed, FilterNotUsed, FilterCashback, FilterNoCashback, FilterExpiring:
		return f
	default:
		return FilterAll
	}
}

// matchesQuery reports whether the card matches the free-text query: empty
// query matches everything, the name is compared case-insensitively, the
// number literally (the cleaned number is digits only).
func matchesQuery(c models.Card, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Nome), strings.ToLower(query)) {
		return true
	}
	return strings.Contains(c.Numero, query)
}

func matchesFilter(c models.Card, f Filter, now time.Time) bool {
	switch f {
	case FilterUsed:
		return c.Usado
	case FilterNotUsed:
		return !c.Usado
	case FilterCashback:
		return c.CashbackTirado
	case FilterNoCashback:
		return !c.CashbackTirado
	case FilterExpiring:
		return cardx.ExpiringSoon(c.Validade, now)
	default:
		return true
	}
}

// Apply runs the pipeline: text match, category filter, then locale-aware
// ascending sort by name. The input slice is never mutated; cards with a
// malformed expiry simply never satisfy FilterExpiring. Safe to re-run on
// every keystroke.
func Apply(cards []models.Card, query string, f Filter, now time.Time) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if matchesQuery(c, query) && matchesFilter(c, f, now) {
			out = append(out, c)
		}
	}

	col := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Nome, out[j].Nome) < 0
	})

	return out
}
