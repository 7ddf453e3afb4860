package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"papershelf/config"
	"papershelf/storage"
)

var (
	// ErrUnsupportedSource: der Benutzer hat eine URL statt einer lokalen Datei gewählt.
	ErrUnsupportedSource = errors.New("URL selection not supported")
	// ErrInvalidFileName: der Quellpfad hat keine verwertbare Namenskomponente.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrCopy kennzeichnet einen I/O-Fehler beim Kopieren in die Ablage.
	ErrCopy = errors.New("copy failed")
)

// IngestResult beschreibt den Ausgang eines Ingest-Durchlaufs. Ein Abbruch
// durch den Benutzer ist ein erfolgreicher Durchlauf mit Stored=false.
type IngestResult struct {
	Stored  bool   `json:"stored"`
	ID      uint   `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// IngestService orchestriert den Import: Auswahl abwarten, kollisionsfreien
// Zielnamen belegen, Bytes kopieren, Titel ableiten, Metadaten persistieren.
type IngestService struct {
	Config *config.Config
	Store  *storage.Store
	Logger *zap.Logger
}

// NewIngestService erstellt eine neue Instanz des IngestService.
func NewIngestService(cfg *config.Config, store *storage.Store, logger *zap.Logger) *IngestService {
	return &IngestService{
		Config: cfg,
		Store:  store,
		Logger: logger,
	}
}

// Run führt einen vollständigen Ingest-Durchlauf aus. Jeder Fehler bricht
// die restlichen Schritte ab; bereits kopierte Dateien werden bei einem
// späteren Persist-Fehler nicht zurückgerollt (der Sweeper räumt Waisen auf).
func (s *IngestService) Run(ctx context.Context, picker Picker) (*IngestResult, error) {
	sel, err := picker.PickFile(ctx)
	if err != nil {
		return nil, fmt.Errorf("file dialog cancelled: %w", err)
	}
	if sel == nil {
		return &IngestResult{Stored: false, Message: "No file selected"}, nil
	}
	if sel.URL != "" {
		return nil, ErrUnsupportedSource
	}

	papersDir := s.Config.PapersDir()
	if err := os.MkdirAll(papersDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create papers dir: %w", err)
	}

	fileName := filepath.Base(sel.Path)
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return nil, ErrInvalidFileName
	}

	destPath, dest, err := allocateDestination(papersDir, fileName)
	if err != nil {
		return nil, err
	}

	if err := copyInto(dest, sel.Path); err != nil {
		// Teilkopien nicht liegen lassen.
		os.Remove(destPath)
		return nil, err
	}

	title := strings.TrimSuffix(filepath.Base(destPath), filepath.Ext(destPath))
	if title == "" {
		title = "Untitled"
	}

	id, err := s.Store.Insert(ctx, title, destPath)
	if err != nil {
		s.Logger.Error("Database insert failed, copied file left as orphan",
			zap.String("path", destPath), zap.Error(err))
		return nil, fmt.Errorf("database insert failed: %w", err)
	}

	s.Logger.Info("Paper ingested",
		zap.Uint("id", id),
		zap.String("title", title),
		zap.String("path", destPath))

	return &IngestResult{
		Stored:  true,
		ID:      id,
		Title:   title,
		Path:    destPath,
		Message: fmt.Sprintf("Paper added successfully: %s", title),
	}, nil
}

// allocateDestination belegt atomar (O_EXCL) einen freien Zielnamen. Bei
// Konflikt werden _1, _2, ... vor dem .pdf-Suffix angehängt; ein bereits
// vorhandenes .pdf im Basisnamen wird vorher abgeschnitten.
func allocateDestination(papersDir, fileName string) (string, *os.File, error) {
	stem := strings.TrimSuffix(fileName, ".pdf")
	candidate := filepath.Join(papersDir, fileName)

	for counter := 1; ; counter++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return candidate, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("%w: %v", ErrCopy, err)
		}
		candidate = filepath.Join(papersDir, fmt.Sprintf("%s_%d.pdf", stem, counter))
	}
}

// copyInto kopiert den vollständigen Quellinhalt in die bereits geöffnete
// Zieldatei und schließt sie.
func copyInto(dest *os.File, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		dest.Close()
		return fmt.Errorf("%w: %v", ErrCopy, err)
	}
	defer src.Close()

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		return fmt.Errorf("%w: %v", ErrCopy, err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCopy, err)
	}
	return nil
}
