package models

import (
	"time"
)

// Paper repräsentiert ein importiertes Dokument der lokalen Bibliothek.
type Paper struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `json:"title" gorm:"not null"`

	// Bibliographische Felder, werden vom Ingest-Flow nicht befüllt.
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
	Year    int    `json:"year,omitempty"`

	// Absoluter Pfad der verwalteten Kopie; ändert sich nach dem Anlegen nie.
	PDFPath string `json:"pdf_path" gorm:"column:pdf_path;not null"`

	Tags  string `json:"tags,omitempty"`
	Notes string `json:"notes,omitempty" gorm:"type:text"`
}
