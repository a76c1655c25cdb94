package model

import "time"

// QAExchange is one answered question, persisted asynchronously by the
// worker for audit and also cached in Redis for the recent-history endpoint.
type QAExchange struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Question    string    `gorm:"type:text;not null" json:"question"`
	Answer      string    `gorm:"type:text;not null" json:"answer"`
	SourceIDs   string    `gorm:"type:text" json:"source_ids"` // comma-separated chunk IDs
	Unsupported bool      `gorm:"not null" json:"unsupported"`
	CreatedAt   time.Time `json:"created_at"`
}
