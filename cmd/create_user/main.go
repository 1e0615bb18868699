// Command create_user registers an account directly in the database.
//
//	go run ./cmd/create_user --username alice --email alice@example.com --password s3cret
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gorm.io/gorm/logger"

	"notesapp/config"
	"notesapp/pkg/auth"
	"notesapp/repository"
)

type params struct {
	username string
	email    string
	password string
	cfg      *config.Options
}

func parseArgs(args []string) (*params, error) {
	flags := pflag.NewFlagSet("create_user", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	p := &params{cfg: config.BindFlags(flags)}
	flags.StringVar(&p.username, "username", "", "username of the new account")
	flags.StringVar(&p.email, "email", "", "email used to log in")
	flags.StringVar(&p.password, "password", "", "plaintext password")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.username) == "" || strings.TrimSpace(p.email) == "" || p.password == "" {
		return nil, errors.New("--username, --email and --password are required")
	}
	return p, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	p, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(*p.cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	db, err := repository.Open(ctx, repository.Config{DSN: cfg.DB.DSN, LogLevel: logger.Error})
	if err != nil {
		return err
	}
	defer func() { _ = repository.Close(db) }()

	svc, err := auth.NewService(repository.NewUserRepo(db), nil, nil, cfg.Auth.SaltRounds)
	if err != nil {
		return err
	}
	u, err := svc.Register(ctx, p.username, p.email, p.password)
	if errors.Is(err, auth.ErrConflict) {
		fmt.Fprintf(out, "user %s or email %s already exists\n", p.username, p.email)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %s id=%d\n", u.Username, u.ID)
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "create_user:", err)
		os.Exit(1)
	}
}
