package services

import (
	"fmt"
	"os"
)

// ReadPDF liest den vollständigen Inhalt der Datei unter path. Es gibt keine
// Größenbeschränkung; die aufrufende Schicht ist für eine Size-Policy zuständig.
func ReadPDF(path string) ([]byte, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return bytes, nil
}
