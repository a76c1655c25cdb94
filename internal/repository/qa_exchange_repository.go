package repository

import (
	"fmt"

	"gorm.io/gorm"

	"pdfqa/internal/model"
)

type QAExchangeRepository struct {
	db *gorm.DB
}

func NewQAExchangeRepository(db *gorm.DB) *QAExchangeRepository {
	return &QAExchangeRepository{db: db}
}

func (r *QAExchangeRepository) Create(ex *model.QAExchange) error {
	if err := r.db.Create(ex).Error; err != nil {
		return fmt.Errorf("create qa exchange failed: %w", err)
	}
	return nil
}

func (r *QAExchangeRepository) ListRecent(limit int) ([]model.QAExchange, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.QAExchange
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list qa exchanges failed: %w", err)
	}
	return list, nil
}
