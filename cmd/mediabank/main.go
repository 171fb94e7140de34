package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"mediabank/internal/config"
	"mediabank/internal/constants"
	"mediabank/internal/database"
	"mediabank/internal/logger"
	"mediabank/internal/server"
	"mediabank/internal/storage"
	"mediabank/internal/version"
)

func main() {
	// 0. Version flag
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s %s\n", constants.AppDisplayName, version.Version)
		os.Exit(0)
	}

	// 1. Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	// 2. Initialize debug logger
	log := logger.NewLogger(constants.DefaultLogLevel)
	log.Info("%s version %s starting", constants.AppDisplayName, version.Version)

	// 3. Load or create config
	log.Info("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debug("Config directory: %s", config.GetConfigDir())
	log.SetLevel(cfg.LogLevel)

	// 4. Prepare the storage directory
	if err := os.MkdirAll(cfg.StorageDirectory, constants.DirPermissions); err != nil {
		log.Error("Failed to create storage directory: %v", err)
		os.Exit(1)
	}

	// 5. Enable file logging under the storage directory
	if err := log.SetLogDir(cfg.LogsPath()); err != nil {
		log.Warn("Failed to enable file logging: %v", err)
	} else {
		log.Info("File logging enabled in %s", cfg.LogsPath())
	}

	cfg.LogEffectiveValues(log)

	// 6. Open and initialize the ledger database
	db, err := database.InitDatabase(cfg.DatabasePath())
	if err != nil {
		log.Error("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database ready at %s", cfg.DatabasePath())

	// 7. Open the file store
	store, err := storage.NewFileStore(cfg.UploadsPath())
	if err != nil {
		log.Error("Failed to open file store: %v", err)
		os.Exit(1)
	}
	log.Info("File store ready at %s", cfg.UploadsPath())

	// 8. Start HTTP server
	app := server.NewApp(cfg, log, db, store)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.NewServer(app, addr)

	log.Info("Starting %s server on port %d", constants.AppDisplayName, cfg.Port)
	if err := srv.Start(); err != nil {
		log.Error("Server error: %v", err)
		os.Exit(1)
	}
}
