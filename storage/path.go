package storage

import (
	"strings"
)

// verbosePrefix ist der Windows-Marker für erweiterte absolute Pfade.
const verbosePrefix = `\\?\`

// NormalizePath bereitet einen Dateisystempfad für den SQLite-Locator auf:
// der Windows-Verbose-Präfix wird entfernt, Backslashes werden durch
// Forward-Slashes ersetzt. Pfade ohne Präfix bleiben bis auf die
// Separator-Konvertierung unverändert.
func NormalizePath(path string) string {
	path = strings.TrimPrefix(path, verbosePrefix)
	return strings.ReplaceAll(path, `\`, "/")
}

// DSN baut den Verbindungs-Locator mit Read/Write/Create-Semantik.
func DSN(dbPath string) string {
	return "file:" + NormalizePath(dbPath) + "?mode=rwc"
}
