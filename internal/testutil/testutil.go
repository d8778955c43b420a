// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/database"
)

// NewDB returns an in-memory SQLite database with every table migrated. The pool is pinned to
// one connection so transactions serialize the way row locks do on Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.MigrateDatabase(db, model.All()...))
	return db
}

// NewTransactor wraps db with driver-default isolation, which SQLite accepts.
func NewTransactor(db *gorm.DB) *database.Transactor {
	return database.NewTransactor(db, database.WithIsolation(nil), database.WithRetries(2, time.Millisecond))
}

// Account creates an account holding the given wallet.
func Account(t *testing.T, db *gorm.DB, name string, balance, coin int64) *model.Account {
	t.Helper()
	acc := &model.Account{
		Email:    name + "@example.com",
		Username: name,
		Password: "x",
		Wallet:   model.Wallet{Balance: balance, Coin: coin},
	}
	require.NoError(t, db.Create(acc).Error)
	return acc
}

// Package creates an active package.
func Package(t *testing.T, db *gorm.DB, kind model.PackageKind, price int64, unit model.DurationUnit, n int) *model.Package {
	t.Helper()
	pkg := &model.Package{
		Name:           fmt.Sprintf("%s %d %s", kind, n, unit),
		Kind:           kind,
		Price:          price,
		DurationUnit:   unit,
		DurationNumber: n,
		Active:         true,
	}
	require.NoError(t, db.Create(pkg).Error)
	return pkg
}

// Wallet reloads an account's wallet.
func Wallet(t *testing.T, db *gorm.DB, accountID uint) model.Wallet {
	t.Helper()
	var acc model.Account
	require.NoError(t, db.Unscoped().First(&acc, accountID).Error)
	return acc.Wallet
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func NewClock() *Clock {
	return &Clock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
