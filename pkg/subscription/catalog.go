package subscription

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
)

// Catalog is the read-only view of purchasable packages.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Get returns an active package of the given kind.
func (c *Catalog) Get(ctx context.Context, id uint, kind model.PackageKind) (*model.Package, error) {
	return getPackage(c.db.WithContext(ctx), id, kind)
}

func (c *Catalog) List(ctx context.Context, kind model.PackageKind) ([]model.Package, error) {
	var pkgs []model.Package
	err := c.db.WithContext(ctx).
		Where("kind = ? AND active = ?", kind, true).
		Order("price asc").
		Find(&pkgs).Error
	return pkgs, err
}

func getPackage(tx *gorm.DB, id uint, kind model.PackageKind) (*model.Package, error) {
	var pkg model.Package
	err := tx.Where("kind = ? AND active = ?", kind, true).First(&pkg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrPackageNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
