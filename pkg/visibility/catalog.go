package visibility

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
)

// Catalog loads raw content records. Its results are unprojected and must go through a Gate
// before reaching anyone but the owner.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Video(ctx context.Context, id uint) (*model.Video, error) {
	var v model.Video
	if err := first(c.db.WithContext(ctx), &v, id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Catalog) Stream(ctx context.Context, id uint) (*model.Stream, error) {
	var s model.Stream
	if err := first(c.db.WithContext(ctx), &s, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get loads either kind of content behind the common interface.
func (c *Catalog) Get(ctx context.Context, kind model.ContentKind, id uint) (model.Content, error) {
	switch kind {
	case model.KindVideo:
		v, err := c.Video(ctx, id)
		if err != nil {
			return nil, err
		}
		return v, nil
	case model.KindStream:
		s, err := c.Stream(ctx, id)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrNotFound, string(kind))
	}
}

func (c *Catalog) VideosByOwner(ctx context.Context, ownerID uint) ([]model.Content, error) {
	var videos []*model.Video
	err := c.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at desc").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Content, len(videos))
	for i, v := range videos {
		out[i] = v
	}
	return out, nil
}

func (c *Catalog) StreamsByOwner(ctx context.Context, ownerID uint) ([]model.Content, error) {
	var streams []*model.Stream
	err := c.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at desc").Find(&streams).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Content, len(streams))
	for i, s := range streams {
		out[i] = s
	}
	return out, nil
}

func (c *Catalog) CreateVideo(ctx context.Context, v *model.Video) error {
	return c.db.WithContext(ctx).Create(v).Error
}

func (c *Catalog) CreateStream(ctx context.Context, s *model.Stream) error {
	return c.db.WithContext(ctx).Create(s).Error
}

func first(db *gorm.DB, dest interface{}, id uint) error {
	err := db.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return err
}
