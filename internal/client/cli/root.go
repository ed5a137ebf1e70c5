package cli

import (
	"bufio"
	"context"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if a.email != "" {
		return "(" + a.email + ")"
	}
	return ""
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to cardbook CLI (type 'help' for commands)")

	// surface sample mode immediately
	_ = a.Status(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
