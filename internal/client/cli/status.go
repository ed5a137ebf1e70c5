package cli

import (
	"context"
	"log"
)

// Status prints the server's backend configuration diagnostic, matching the
// two settings a deployment must provide.
func (a *App) Status(ctx context.Context) error {
	status, err := a.api.Status(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	printlnFn("Backend URL configured: ", status.URLAvailable)
	printlnFn("Backend key configured:", status.KeyAvailable)
	if !status.URLAvailable || !status.KeyAvailable {
		printlnFn("Server is running in sample mode; changes are not persisted.")
	}
	return nil
}
