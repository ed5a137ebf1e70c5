package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cardbook/cardbook/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var confirm = Confirm

// Register prompts for email, optional phone, and password, and creates a
// new account. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional, e.g. +5511999990000)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.api.SignUp(ctx, email, phone, string(password))
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	a.email = session.Email
	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and authenticates. When the server runs
// without a backend it answers with an empty session; the client reports
// sample mode instead of a login failure.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.api.SignIn(ctx, email, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	if !session.Configured {
		log.Printf("Server has no backend configured, browsing sample data")
		return nil
	}

	a.email = session.Email
	log.Printf("Login successful")
	return nil
}

// Logout revokes the session server-side and clears local state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.SignOut(ctx); err != nil {
		log.Printf("Sign-out warning: %s", err.Error())
	}
	a.email = ""
	a.mu.Lock()
	a.cards = nil
	a.mu.Unlock()
	return nil
}

// Recover starts account recovery by phone or email, then prompts for the
// received code and exchanges it for a session.
func (a *App) Recover(ctx context.Context) error {
	contact, err := getSimpleText(a.reader, "Enter phone (+55...) or email", os.Stdout)
	if err != nil {
		return err
	}
	if contact == "" {
		fmt.Println("Phone or email required")
		return nil
	}

	var email, phone string
	if contact[0] == '+' {
		phone = contact
	} else {
		email = contact
	}

	if err := a.api.Recover(ctx, email, phone); err != nil {
		log.Printf("Recovery request failed: %s", err.Error())
		return err
	}
	fmt.Println("If the account exists, a recovery code was sent.")

	code, err := getSimpleText(a.reader, "Enter recovery code", os.Stdout)
	if err != nil {
		return err
	}
	session, err := a.api.Verify(ctx, code)
	if err != nil {
		log.Printf("Recovery failed: %s", err.Error())
		return err
	}

	a.email = session.Email
	fmt.Println("Recovered! Use 'password' to set a new password.")
	return nil
}

// Password sets a new password for the signed-in account.
func (a *App) Password(ctx context.Context) error {
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.UpdatePassword(ctx, string(password)); err != nil {
		log.Printf("Password update failed: %s", err.Error())
		return err
	}
	fmt.Println("Password updated.")
	return nil
}
