package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"papershelf/config"
	"papershelf/services"
	"papershelf/storage"
)

// Einmaliger Aufräumlauf für verwaiste PDFs, gedacht für externe Scheduler.
func main() {
	log.Println("Starte Orphan-Sweep...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	if _, err := cfg.ResolveDataDir(); err != nil {
		log.Fatalf("Fehler beim Auflösen des Datenverzeichnisses: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Fehler beim Initialisieren des Loggers: %v", err)
	}
	defer logger.Sync()

	store, err := storage.Open(cfg, logger)
	if err != nil {
		log.Fatalf("Fehler beim Öffnen der Datenbank: %v", err)
	}
	defer store.Close()

	sweeper := services.NewSweeper(cfg, store, logger)
	removed, err := sweeper.Run(context.Background())
	if err != nil {
		log.Fatalf("Sweep fehlgeschlagen: %v", err)
	}

	log.Printf("Sweep abgeschlossen, %d verwaiste Dateien entfernt.", removed)
}
