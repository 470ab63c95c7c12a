// Command-line tool to clean the database by dropping all tables in the public schema.
// Stored uploads are removed from the bucket too when GCS_BUCKET is set.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"JobPortal-backend/internal/config"
	"JobPortal-backend/internal/controller/file"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/logging"
)

func confirm() bool {
	fmt.Println("WARNING: This command will DROP ALL TABLES in the 'public' schema of your database.")
	fmt.Print("This action is irreversible. Do you want to continue? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input")
	}
	return strings.TrimSpace(strings.ToLower(input)) == "yes"
}

func main() {
	yes := flag.Bool("yes", false, "skip confirmation")
	flag.Parse()

	cfg := config.Load()
	log.Logger = logging.Console(cfg.LogLevel, os.Stderr, true)

	if !*yes && !confirm() {
		fmt.Println("Operation cancelled.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewDBInstance(database.ConfigFromSettings(cfg.DB, "", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("database failed to initialize")
	}
	defer func() { _ = db.Close() }()

	if err := db.DropAllTables(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to execute drop command")
	}
	fmt.Println("All tables dropped successfully.")

	if cfg.GCSBucket == "" {
		return
	}
	gcs, err := file.NewCloudStorageClient(ctx, cfg.GCSBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to cloud storage")
	}
	defer func() { _ = gcs.Close() }()

	for _, prefix := range []string{file.AvatarObjectPrefix, file.PortfolioObjectPrefix} {
		n, err := gcs.DeletePrefix(ctx, prefix+"/")
		if err != nil {
			log.Fatal().Err(err).Str("prefix", prefix).Msg("failed to delete stored files")
		}
		fmt.Printf("Deleted %d objects under %s/\n", n, prefix)
	}
}
