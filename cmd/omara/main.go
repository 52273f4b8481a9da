package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/di"
	"github.com/erazemk/omara/internal/di/providers"
	"github.com/erazemk/omara/internal/ident"
	"github.com/erazemk/omara/internal/logger"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			fmt.Fprint(os.Stdout, config.Usage)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, config.Usage)
		os.Exit(1)
	}

	// Errors go to stderr, everything else to stdout, plus an optional
	// rotating file.
	closeLog := logger.Setup(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		File:   cfg.Logger.File,
	})
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	injector := di.NewContainer(cfg)
	defer func() {
		report := injector.Shutdown()
		if !report.Succeed {
			slog.Error("shutdown finished with errors", "error", report.Error())
		}
	}()

	if err := di.Bootstrap(injector); err != nil {
		return err
	}

	database := do.MustInvoke[*providers.DatabaseHandle](injector)
	password, created, err := ensureAdmin(context.Background(), database.DB, cfg.Auth.AdminUser)
	if err != nil {
		return fmt.Errorf("initializing admin account: %w", err)
	}
	if created {
		printInitResult(cfg.Auth.AdminUser, password)
	}

	return waitForShutdown(do.MustInvoke[*providers.HTTPServerHandle](injector))
}

// ensureAdmin creates the admin account when the database has no users yet
// and returns its generated password.
func ensureAdmin(ctx context.Context, database *db.DB, username string) (string, bool, error) {
	count, err := store.CountUsers(ctx, database)
	if err != nil {
		return "", false, err
	}
	if count > 0 {
		return "", false, nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", false, fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", false, fmt.Errorf("hashing password: %w", err)
	}
	id, err := ident.UserID()
	if err != nil {
		return "", false, fmt.Errorf("generating user id: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, id, username, hash, model.RoleAdmin); err != nil {
		return "", false, fmt.Errorf("creating admin user: %w", err)
	}
	return password, true, nil
}

// printInitResult prints the first-run admin credentials to stdout.
func printInitResult(username, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// waitForShutdown blocks until a signal arrives or the server fails.
func waitForShutdown(server *providers.HTTPServerHandle) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := server.Start()
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
		return nil
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	}
}
