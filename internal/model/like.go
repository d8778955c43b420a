package model

import "time"

// Like is one row of like history: an account favouriting a video or stream.
type Like struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	AccountID   uint        `json:"account_id" gorm:"not null;uniqueIndex:idx_like"`
	ContentKind ContentKind `json:"content_kind" gorm:"not null;uniqueIndex:idx_like"`
	ContentID   uint        `json:"content_id" gorm:"not null;uniqueIndex:idx_like"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
}
