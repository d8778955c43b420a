package model

import "gorm.io/gorm"

type DurationUnit string

const (
	DurationDay   DurationUnit = "DAY"
	DurationMonth DurationUnit = "MONTH"
	DurationYear  DurationUnit = "YEAR"
)

// PackageKind separates creator memberships from the platform VIP tier.
type PackageKind string

const (
	PackageMembership PackageKind = "membership"
	PackageVip        PackageKind = "vip"
)

// Package is a purchasable offering. Existing subscriptions keep the expiry already computed
// from it, so price changes never reach back into live records.
type Package struct {
	gorm.Model
	Name           string       `json:"name" gorm:"not null"`
	Kind           PackageKind  `json:"kind" gorm:"not null;index"`
	Price          int64        `json:"price" gorm:"not null"`
	DurationUnit   DurationUnit `json:"duration_unit" gorm:"not null"`
	DurationNumber int          `json:"duration_number" gorm:"not null"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
}
