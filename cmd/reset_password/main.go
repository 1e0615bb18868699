// Command reset_password replaces the password of an existing account.
// Tokens already issued to the user stay valid until they expire.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gorm.io/gorm/logger"

	"notesapp/config"
	"notesapp/pkg/auth"
	"notesapp/repository"
)

const minPasswordLen = 6

func main() {
	opts := config.BindFlags(pflag.CommandLine)
	email := pflag.String("email", "", "email of the account to reset")
	password := pflag.String("password", "", "new plaintext password (min 6 chars)")
	pflag.Parse()

	if err := checkArgs(*email, *password); err != nil {
		fmt.Fprintln(os.Stderr, "reset_password:", err)
		os.Exit(2)
	}
	if err := run(context.Background(), *opts, *email, *password); err != nil {
		fmt.Fprintln(os.Stderr, "reset_password:", err)
		os.Exit(1)
	}
	fmt.Printf("Password reset for %s\n", *email)
}

func checkArgs(email, password string) error {
	if email == "" || password == "" {
		return errors.New("--email and --password are required")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password too short (min %d)", minPasswordLen)
	}
	return nil
}

func run(ctx context.Context, opts config.Options, email, password string) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	db, err := repository.Open(ctx, repository.Config{DSN: cfg.DB.DSN, LogLevel: logger.Error})
	if err != nil {
		return err
	}
	defer func() { _ = repository.Close(db) }()

	users := repository.NewUserRepo(db)
	svc, err := auth.NewService(users, nil, nil, cfg.Auth.SaltRounds)
	if err != nil {
		return err
	}
	hash, err := svc.HashPassword(password)
	if err != nil {
		return err
	}
	if err := users.SetPasswordHash(ctx, email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}
	return nil
}
