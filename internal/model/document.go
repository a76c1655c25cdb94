package model

import "time"

// Document records one successful PDF ingestion. The chunks themselves live
// in the vector store; this row is bookkeeping for the upload registry.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"size:256;not null" json:"filename"`
	PageCount  int       `gorm:"not null" json:"page_count"`
	OCRPages   int       `gorm:"not null" json:"ocr_pages"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
