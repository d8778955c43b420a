package seed

import (
	"log"

	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
)

// DefaultPackages is the catalog a fresh install starts with.
var DefaultPackages = []model.Package{
	{Name: "Fan Week", Kind: model.PackageMembership, Price: 60, DurationUnit: model.DurationDay, DurationNumber: 7},
	{Name: "Fan Month", Kind: model.PackageMembership, Price: 200, DurationUnit: model.DurationMonth, DurationNumber: 1},
	{Name: "Fan Year", Kind: model.PackageMembership, Price: 2000, DurationUnit: model.DurationYear, DurationNumber: 1},
	{Name: "VIP Month", Kind: model.PackageVip, Price: 300, DurationUnit: model.DurationMonth, DurationNumber: 1},
	{Name: "VIP Year", Kind: model.PackageVip, Price: 3000, DurationUnit: model.DurationYear, DurationNumber: 1},
}

// SeedPackages inserts the default packages that are missing. A package with the same name and
// kind, even a deleted one, is left as it is.
func SeedPackages(db *gorm.DB) (int, error) {
	created := 0
	for _, p := range DefaultPackages {
		var existing int64
		err := db.Unscoped().Model(&model.Package{}).
			Where("name = ? AND kind = ?", p.Name, p.Kind).
			Count(&existing).Error
		if err != nil {
			return created, err
		}
		if existing > 0 {
			continue
		}

		pkg := p
		pkg.Active = true
		if err := db.Create(&pkg).Error; err != nil {
			log.Printf("Error creating package %s: %v", pkg.Name, err)
			return created, err
		}
		created++
	}

	log.Printf("Packages seeded: %d created", created)
	return created, nil
}
