package repository

import (
	"fmt"

	"gorm.io/gorm"

	"pdfqa/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document record failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListRecent(limit int) ([]model.Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.Document
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}
