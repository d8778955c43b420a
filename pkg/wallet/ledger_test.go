package wallet_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
	"clipfeed_backend/internal/testutil"
	"clipfeed_backend/pkg/database"
	"clipfeed_backend/pkg/wallet"
)

func inTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

func TestCreditDebit(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	acc := testutil.Account(t, db, "alice", 50, 100)

	require.NoError(t, inTx(db, func(tx *gorm.DB) error {
		return l.Credit(tx, acc.ID, wallet.Balance, 25, model.ReasonCredit, nil)
	}))
	require.NoError(t, inTx(db, func(tx *gorm.DB) error {
		return l.Debit(tx, acc.ID, wallet.Coin, 40, model.ReasonDebit, nil)
	}))

	assert.Equal(t, model.Wallet{Balance: 75, Coin: 60}, testutil.Wallet(t, db, acc.ID))
}

func TestDebitFailuresLeaveAccountUnchanged(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	acc := testutil.Account(t, db, "bob", 10, 10)
	gone := testutil.Account(t, db, "gone", 10, 10)
	require.NoError(t, db.Delete(gone).Error)

	tests := []struct {
		name      string
		accountID uint
		currency  wallet.Currency
		amount    int64
		want      error
	}{
		{"insufficient coin", acc.ID, wallet.Coin, 11, wallet.ErrInsufficientFunds},
		{"insufficient balance", acc.ID, wallet.Balance, 1000, wallet.ErrInsufficientFunds},
		{"zero amount", acc.ID, wallet.Coin, 0, wallet.ErrInvalidAmount},
		{"negative amount", acc.ID, wallet.Coin, -5, wallet.ErrInvalidAmount},
		{"unknown currency", acc.ID, wallet.Currency("gems"), 1, wallet.ErrInvalidCurrency},
		{"missing account", 9999, wallet.Coin, 1, wallet.ErrAccountNotFound},
		{"soft deleted account", gone.ID, wallet.Coin, 1, wallet.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inTx(db, func(tx *gorm.DB) error {
				return l.Debit(tx, tt.accountID, tt.currency, tt.amount, model.ReasonDebit, nil)
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, model.Wallet{Balance: 10, Coin: 10}, testutil.Wallet(t, db, acc.ID))
		})
	}
}

func TestCreditMissingAccount(t *testing.T) {
	db := testutil.NewDB(t)
	err := inTx(db, func(tx *gorm.DB) error {
		return wallet.NewLedger().Credit(tx, 42, wallet.Coin, 1, model.ReasonCredit, nil)
	})
	assert.ErrorIs(t, err, wallet.ErrAccountNotFound)
}

func TestOperationsRequireTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	acc := testutil.Account(t, db, "carol", 10, 10)

	err := wallet.NewLedger().Credit(db, acc.ID, wallet.Coin, 1, model.ReasonCredit, nil)
	assert.ErrorIs(t, err, database.ErrNoTransaction)
	assert.Equal(t, int64(10), testutil.Wallet(t, db, acc.ID).Coin)
}

func TestTransferConservesValue(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	a := testutil.Account(t, db, "payer", 0, 100)
	b := testutil.Account(t, db, "payee", 0, 5)

	require.NoError(t, inTx(db, func(tx *gorm.DB) error {
		return l.Transfer(tx, a.ID, b.ID, wallet.Coin, 60, model.ReasonMembership, nil)
	}))
	// Opposite direction exercises the other lock order.
	require.NoError(t, inTx(db, func(tx *gorm.DB) error {
		return l.Transfer(tx, b.ID, a.ID, wallet.Coin, 15, model.ReasonMembership, nil)
	}))

	wa, wb := testutil.Wallet(t, db, a.ID), testutil.Wallet(t, db, b.ID)
	assert.Equal(t, int64(55), wa.Coin)
	assert.Equal(t, int64(50), wb.Coin)
	assert.Equal(t, int64(105), wa.Coin+wb.Coin)
}

func TestTransferIsAllOrNothing(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	payer := testutil.Account(t, db, "payer", 0, 100)
	poor := testutil.Account(t, db, "poor", 0, 1)

	tests := []struct {
		name    string
		payer   uint
		payee   uint
		amount  int64
		want    error
		payerTo int64
	}{
		{"missing payee", payer.ID, 9999, 10, wallet.ErrAccountNotFound, 100},
		{"payee credited first then payer missing", poor.ID + 100, payer.ID, 10, wallet.ErrAccountNotFound, 100},
		{"insufficient funds", poor.ID, payer.ID, 10, wallet.ErrInsufficientFunds, 100},
		{"same account", payer.ID, payer.ID, 10, wallet.ErrSameAccount, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inTx(db, func(tx *gorm.DB) error {
				return l.Transfer(tx, tt.payer, tt.payee, wallet.Coin, tt.amount, model.ReasonMembership, nil)
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.payerTo, testutil.Wallet(t, db, payer.ID).Coin)
			assert.Equal(t, int64(1), testutil.Wallet(t, db, poor.ID).Coin)
		})
	}

	var entries int64
	require.NoError(t, db.Model(&model.LedgerEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestTransferFailureInsideLargerTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	payer := testutil.Account(t, db, "payer", 0, 100)

	// The caller keeps going after a failed transfer; the savepoint must have undone the debit.
	require.NoError(t, inTx(db, func(tx *gorm.DB) error {
		err := l.Transfer(tx, payer.ID, 9999, wallet.Coin, 30, model.ReasonMembership, nil)
		assert.ErrorIs(t, err, wallet.ErrAccountNotFound)
		return nil
	}))
	assert.Equal(t, int64(100), testutil.Wallet(t, db, payer.ID).Coin)
}

func TestExchange(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	acc := testutil.Account(t, db, "dave", 10, 0)

	var credited int64
	require.NoError(t, inTx(db, func(tx *gorm.DB) error {
		var err error
		credited, err = l.Exchange(tx, acc.ID, wallet.Balance, wallet.Coin, 3, decimal.RequireFromString("2.5"))
		return err
	}))
	assert.Equal(t, int64(7), credited)
	assert.Equal(t, model.Wallet{Balance: 7, Coin: 7}, testutil.Wallet(t, db, acc.ID))

	tests := []struct {
		name   string
		amount int64
		rate   decimal.Decimal
		want   error
	}{
		{"insufficient source", 100, decimal.NewFromInt(1), wallet.ErrInsufficientFunds},
		{"zero rate", 1, decimal.Zero, wallet.ErrInvalidRate},
		{"rounds to nothing", 1, decimal.RequireFromString("0.5"), wallet.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inTx(db, func(tx *gorm.DB) error {
				_, err := l.Exchange(tx, acc.ID, wallet.Balance, wallet.Coin, tt.amount, tt.rate)
				return err
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, model.Wallet{Balance: 7, Coin: 7}, testutil.Wallet(t, db, acc.ID))
		})
	}
}

func TestConcurrentDebitsNeverGoNegative(t *testing.T) {
	db := testutil.NewDB(t)
	tr := testutil.NewTransactor(db)
	l := wallet.NewLedger()
	acc := testutil.Account(t, db, "erin", 0, 100)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tr.Run(context.Background(), func(tx *gorm.DB) error {
				return l.Debit(tx, acc.ID, wallet.Coin, 10, model.ReasonDebit, nil)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, int64(0), testutil.Wallet(t, db, acc.ID).Coin)
}

func TestCorrelationIDIsRecorded(t *testing.T) {
	db := testutil.NewDB(t)
	l := wallet.NewLedger()
	frank := testutil.Account(t, db, "frank", 0, 10)
	grace := testutil.Account(t, db, "grace", 0, 0)

	ctx := wallet.WithCorrelationID(context.Background(), "req-1")
	require.NoError(t, db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.Transfer(tx, frank.ID, grace.ID, wallet.Coin, 5, model.ReasonDebit, wallet.Meta{"source": "test"})
	}))

	tests := []struct {
		name      string
		accountID uint
		id        string
		want      bool
	}{
		{"payer under its id", frank.ID, "req-1", true},
		{"payee was only credited", grace.ID, "req-1", false},
		{"other id", frank.ID, "req-2", false},
		{"no id", frank.ID, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, err := l.Recorded(db, tt.accountID, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seen)
		})
	}

	entries, err := l.Entries(db, frank.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-5), entries[0].Delta)
	assert.Equal(t, "req-1", entries[0].CorrelationID)
	assert.Contains(t, string(entries[0].Metadata), `"source":"test"`)
}
