package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"papershelf/config"
	"papershelf/storage"
)

// Sweeper räumt verwaiste PDFs auf: Dateien in der Ablage, zu denen keine
// Datenbankzeile existiert (Kopie gelungen, Insert fehlgeschlagen).
type Sweeper struct {
	Config *config.Config
	Store  *storage.Store
	Logger *zap.Logger
}

// NewSweeper erstellt eine neue Instanz des Sweeper.
func NewSweeper(cfg *config.Config, store *storage.Store, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		Config: cfg,
		Store:  store,
		Logger: logger,
	}
}

// Run entfernt verwaiste Dateien aus dem Papers-Verzeichnis und gibt die
// Anzahl der gelöschten Dateien zurück. Dateien jünger als SweepMinAge
// bleiben stehen, damit eine laufende Ingestion (kopiert, noch nicht
// persistiert) nicht getroffen wird.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	papersDir := s.Config.PapersDir()
	entries, err := os.ReadDir(papersDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	papers, err := s.Store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(papers))
	for _, p := range papers {
		known[p.PDFPath] = struct{}{}
	}

	cutoff := time.Now().Add(-s.Config.SweepMinAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(papersDir, entry.Name())
		if _, ok := known[path]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.Logger.Warn("Failed to remove orphaned file", zap.String("path", path), zap.Error(err))
			continue
		}
		s.Logger.Info("Removed orphaned file", zap.String("path", path))
		removed++
	}
	return removed, nil
}
