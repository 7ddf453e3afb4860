package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// DataDir ist das Wurzelverzeichnis für Datenbankdatei und PDF-Ablage.
	// Leer = plattformüblicher App-Data-Pfad des Benutzers.
	DataDir string `envconfig:"DATA_DIR"`
	DBFile  string `envconfig:"DB_FILE" default:"paper_master.db"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	// Maximale Anzahl gleichzeitig offener SQLite-Verbindungen.
	MaxOpenConns int `envconfig:"MAX_OPEN_CONNS" default:"5"`

	// Aufräum-Job für verwaiste PDF-Dateien (Kopie ohne Datenbankzeile).
	SweepSchedule string        `envconfig:"SWEEP_SCHEDULE" default:"@hourly"`
	SweepMinAge   time.Duration `envconfig:"SWEEP_MIN_AGE" default:"30m"`
}

// ResolveDataDir legt das Datenverzeichnis einmalig beim Start fest und
// erstellt es, falls es fehlt.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, "papershelf")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create data dir %s: %w", dir, err)
	}
	c.DataDir = dir
	return dir, nil
}

// DBPath gibt den vollständigen Pfad der SQLite-Datei zurück.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// PapersDir gibt das Ablageverzeichnis für importierte PDFs zurück.
func (c *Config) PapersDir() string {
	return filepath.Join(c.DataDir, "papers")
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
