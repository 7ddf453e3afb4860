package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"papershelf/config"
	"papershelf/models"
)

var (
	// ErrWrite kennzeichnet fehlgeschlagene Schreibzugriffe auf den Store.
	ErrWrite = errors.New("storage write failed")
	// ErrRead kennzeichnet fehlgeschlagene Lesezugriffe auf den Store.
	ErrRead = errors.New("storage read failed")
)

// Store kapselt die SQLite-Datenbank der Paper-Bibliothek und ist die
// einzige Quelle der Wahrheit für persistierte Einträge.
type Store struct {
	db     *gorm.DB
	Logger *zap.Logger
}

// Open öffnet (und erstellt bei Bedarf) die Datenbankdatei, begrenzt den
// Verbindungspool und legt das Schema idempotent an. Wird einmal pro
// Prozess aufgerufen; Fehler hier sind beim Start fatal.
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	dsn := DSN(cfg.DBPath())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool unavailable: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.AutoMigrate(&models.Paper{}); err != nil {
		return nil, fmt.Errorf("failed to create papers table: %w", err)
	}

	log.Info("Successfully connected to papers database.", zap.String("dsn", dsn))
	return &Store{db: db, Logger: log}, nil
}

// Close gibt den Verbindungspool frei.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert legt genau eine Zeile an; created_at/updated_at setzt der Store.
// Gibt die vergebene ID zurück.
func (s *Store) Insert(ctx context.Context, title, pdfPath string) (uint, error) {
	paper := models.Paper{Title: title, PDFPath: pdfPath}
	if err := s.db.WithContext(ctx).Create(&paper).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return paper.ID, nil
}

// ListAll liefert die Projektion {id, title, pdf_path, created_at} aller
// Einträge, neueste zuerst. Eine leere Tabelle ergibt eine leere Liste,
// keinen Fehler.
func (s *Store) ListAll(ctx context.Context) ([]models.Paper, error) {
	papers := make([]models.Paper, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Paper{}).
		Select("id", "title", "pdf_path", "created_at").
		Order("created_at desc, id desc").
		Find(&papers).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return papers, nil
}

// Count gibt die Gesamtzahl gespeicherter Paper zurück.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Paper{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return count, nil
}
