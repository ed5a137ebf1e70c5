// Package cli implements the interactive cardbook client: a REPL over the
// HTTP API with local optimistic state for card mutations.
package cli

import (
	"bufio"
	"context"
	"os"
	"sync"

	"github.com/cardbook/cardbook/internal/client/api"
	"github.com/cardbook/cardbook/internal/client/config"
	"github.com/cardbook/cardbook/internal/listing"
	"github.com/cardbook/cardbook/internal/models"
)

type App struct {
	config    *config.Config
	api       *api.Client
	reader    *bufio.Reader
	debouncer *listing.Debouncer

	// mu guards the local list view. Debounced refetches run on the timer
	// goroutine while the REPL goroutine mutates the same list optimistically.
	mu     sync.Mutex
	cards  []models.Card
	query  string
	filter listing.Filter

	email string // REPL goroutine only
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config:    c,
		api:       api.NewClient(c.ServerEndpointAddr),
		reader:    bufio.NewReader(os.Stdin),
		debouncer: listing.NewDebouncer(c.SearchDebounce),
		filter:    listing.FilterAll,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.Session().AccessToken != ""
}

func (a *App) Run(ctx context.Context) {
	defer a.debouncer.Stop()
	a.Root(ctx)
}
