// Command promote changes a user's role. It reads the same configuration as the API.
//
//	promote -email admin@zehnify.app -role admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"zehnify/api/internal/config"
	"zehnify/api/internal/database"
	"zehnify/api/internal/log"
	"zehnify/api/internal/models"
	"zehnify/api/internal/repository"
)

func main() {
	email := flag.String("email", "", "email of the user to update")
	role := flag.String("role", string(models.UserRoleAdmin), "new role: user or admin")
	flag.Parse()

	if err := run(strings.ToLower(strings.TrimSpace(*email)), models.UserRole(*role)); err != nil {
		fmt.Fprintf(os.Stderr, "promote: %v\n", err)
		os.Exit(1)
	}
}

func run(email string, role models.UserRole) error {
	if email == "" {
		return errors.New("-email is required")
	}
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(cfg.Environment, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	if user.Role == role {
		logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("role unchanged")
		return nil
	}

	if err := users.UpdateRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	logger.Info().
		Str("user_id", user.ID).
		Str("from", string(user.Role)).
		Str("to", string(role)).
		Msg("role updated")
	return nil
}
