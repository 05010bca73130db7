package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/database"
	"github.com/campusflow/compass-backend/internal/logger"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	accountRepo := repository.NewServiceAccountRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Service Account ===")

	// Name
	fmt.Print("Enter Account Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Account name is required")
		return
	}

	// Secret
	fmt.Print("Enter Secret: ")
	byteSecret, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading secret")
		return
	}
	secret := string(byteSecret)
	fmt.Println() // Newline after secret input
	if len(secret) < 12 {
		fmt.Println("Error: Secret must be at least 12 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	existing, err := accountRepo.GetByName(ctx, name)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check for existing account")
	}
	if existing != nil {
		fmt.Printf("Error: Account '%s' already exists (ID: %d)\n", name, existing.ID)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash secret")
	}

	account := &model.ServiceAccount{
		Name:       name,
		SecretHash: string(hash),
	}

	if err := accountRepo.Create(ctx, account); err != nil {
		log.Fatal().Err(err).Msg("Failed to create service account")
	}

	fmt.Printf("\nSuccess! Service account '%s' created with ID: %d\n", account.Name, account.ID)
}
