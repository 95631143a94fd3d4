// Command devtoken creates (or finds) a user for a subject id and prints a
// session token for it, for exercising the API without a Google login.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/database"
	"github.com/platewise/backend/internal/identity"
	"github.com/platewise/backend/internal/logging"
	"github.com/platewise/backend/internal/service"
)

func main() {
	subject := flag.String("subject", "dev-user", "subject id of the user")
	email := flag.String("email", "dev@example.com", "email stored on first creation")
	name := flag.String("name", "Dev User", "name stored on first creation")
	flag.Parse()

	if err := run(*subject, *email, *name); err != nil {
		slog.Error("devtoken failed", "error", err)
		os.Exit(1)
	}
}

func run(subject, email, name string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Env.IsProduction() {
		return fmt.Errorf("devtoken refuses to run in production")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	auth := service.NewAuthService(db.Gorm, cfg.JWTSecret, cfg.TokenTTL, identity.TrustedVerifier{Email: email, Name: name}, logger)
	res, err := auth.LoginWithGoogle(ctx, subject)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "user %d (%s), profile filled: %t\n", res.User.ID, res.User.SubjectID(), res.User.ProfileFilled)
	fmt.Println(res.Token)
	return nil
}
