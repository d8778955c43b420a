package visibility

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipfeed_backend/internal/model"
)

// LikeHistory records which accounts liked which content.
type LikeHistory struct {
	db *gorm.DB
}

func NewLikeHistory(db *gorm.DB) *LikeHistory {
	return &LikeHistory{db: db}
}

func (l *LikeHistory) HasLiked(ctx context.Context, kind model.ContentKind, contentID, requesterID uint) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&model.Like{}).
		Where("account_id = ? AND content_kind = ? AND content_id = ?", requesterID, kind, contentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return count > 0, nil
}

// Like is idempotent; liking twice keeps one row.
func (l *LikeHistory) Like(ctx context.Context, accountID uint, kind model.ContentKind, contentID uint) error {
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Like{AccountID: accountID, ContentKind: kind, ContentID: contentID}).Error
}

func (l *LikeHistory) Unlike(ctx context.Context, accountID uint, kind model.ContentKind, contentID uint) error {
	return l.db.WithContext(ctx).
		Where("account_id = ? AND content_kind = ? AND content_id = ?", accountID, kind, contentID).
		Delete(&model.Like{}).Error
}
