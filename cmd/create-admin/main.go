// Command create-admin generates an administrator account with random
// credentials and prints them once.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"JobPortal-backend/internal/config"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/logging"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// uniqueEmail tries until an unused admin address is found
func uniqueEmail(db *gorm.DB, domain string) (string, error) {
	for {
		suffix, err := utilities.RandomHex(4)
		if err != nil {
			return "", err
		}
		email := fmt.Sprintf("admin_%s@%s", suffix, domain)
		var count int64
		if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return email, nil
		}
	}
}

func main() {
	email := flag.String("email", "", "admin email, generated when empty")
	domain := flag.String("domain", "jobportal.local", "domain of a generated email")
	flag.Parse()

	cfg := config.Load()
	log.Logger = logging.Console(cfg.LogLevel, os.Stderr, true)

	// bootstrap admin from env is not wanted here
	db, err := database.NewDBInstance(database.ConfigFromSettings(cfg.DB, "", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("database failed to initialize")
	}
	defer func() { _ = db.Close() }()

	address := strings.ToLower(strings.TrimSpace(*email))
	if address == "" {
		if address, err = uniqueEmail(db.DB, *domain); err != nil {
			log.Fatal().Err(err).Msg("failed to generate email")
		}
	} else {
		var existing model.User
		err := db.Where("email = ?", address).First(&existing).Error
		if err == nil {
			log.Fatal().Str("email", address).Msg("email already taken")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal().Err(err).Msg("failed to look up email")
		}
	}

	password, err := utilities.RandomHex(8)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate password")
	}

	admin, err := utilities.CreateAdmin(db.DB, address, password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin")
	}

	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Email:    %s\n", admin.Email)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("======================================")
}
