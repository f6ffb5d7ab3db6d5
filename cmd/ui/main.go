package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"excelops/adapters/excel"
	"excelops/adapters/postgres"
	presetstore "excelops/adapters/preset"
	"excelops/app"
	"excelops/internal/config"
	"excelops/ports"
	"excelops/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	presets, err := newPresetStore(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize preset store: ", err)
	}

	session := app.NewSession(excel.NewWriter())
	server := ui.NewApp(session, excel.NewReader(), presets)

	log.Printf("Starting ExcelOps UI on http://localhost:%s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, server))
}

func newPresetStore(cfg config.StorageConfig) (ports.PresetStore, error) {
	if cfg.DatabaseURL != "" {
		log.Println("Using Postgres preset store")
		return postgres.Connect(cfg.DatabaseURL)
	}
	log.Printf("Using file preset store at %s", cfg.PresetDir)
	return presetstore.NewFileStore(cfg.PresetDir)
}
