// Package wallet moves balance and coin between accounts. Every operation runs on a caller
// supplied transaction and either applies completely or not at all.
package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/database"
)

type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Meta is free-form context stored with a ledger entry.
type Meta map[string]interface{}

// Credit increases the account's currency by amount.
func (l *Ledger) Credit(tx *gorm.DB, accountID uint, cur Currency, amount int64, reason model.EntryReason, meta Meta) error {
	if err := precheck(tx, cur, amount); err != nil {
		return err
	}
	col, _ := cur.column()

	res := tx.Model(&model.Account{}).
		Where("id = ?", accountID).
		Update(col, gorm.Expr(col+" + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("credit account %d: %w", accountID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("credit account %d: %w", accountID, ErrAccountNotFound)
	}
	return record(tx, accountID, cur, amount, reason, meta)
}

// Debit decreases the account's currency by amount. The balance check and the write are one
// statement, so a concurrent debit can never drive the column negative.
func (l *Ledger) Debit(tx *gorm.DB, accountID uint, cur Currency, amount int64, reason model.EntryReason, meta Meta) error {
	if err := precheck(tx, cur, amount); err != nil {
		return err
	}
	col, _ := cur.column()

	res := tx.Model(&model.Account{}).
		Where("id = ? AND "+col+" >= ?", accountID, amount).
		Update(col, gorm.Expr(col+" - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("debit account %d: %w", accountID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.Account{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
			return fmt.Errorf("debit account %d: %w", accountID, err)
		}
		if count == 0 {
			return fmt.Errorf("debit account %d: %w", accountID, ErrAccountNotFound)
		}
		return fmt.Errorf("debit account %d: %w", accountID, ErrInsufficientFunds)
	}
	return record(tx, accountID, cur, -amount, reason, meta)
}

// Exchange converts amount of from into floor(amount*rate) of to on the same account.
func (l *Ledger) Exchange(tx *gorm.DB, accountID uint, from, to Currency, amount int64, rate decimal.Decimal) (int64, error) {
	if !database.InTransaction(tx) {
		return 0, database.ErrNoTransaction
	}
	if !rate.IsPositive() {
		return 0, ErrInvalidRate
	}
	if from == to {
		return 0, fmt.Errorf("%w: cannot exchange %s into itself", ErrInvalidCurrency, from)
	}
	credited := decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
	if amount <= 0 || credited <= 0 {
		return 0, ErrInvalidAmount
	}

	meta := Meta{"from": from, "to": to, "rate": rate.String()}
	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := l.Debit(tx, accountID, from, amount, model.ReasonExchange, meta); err != nil {
			return err
		}
		return l.Credit(tx, accountID, to, credited, model.ReasonExchange, meta)
	})
	if err != nil {
		return 0, err
	}
	return credited, nil
}

// Transfer debits the payer and credits the payee as one unit. Rows are touched in ascending id
// order so opposing transfers cannot deadlock.
func (l *Ledger) Transfer(tx *gorm.DB, payerID, payeeID uint, cur Currency, amount int64, reason model.EntryReason, meta Meta) error {
	if err := precheck(tx, cur, amount); err != nil {
		return err
	}
	if payerID == payeeID {
		return ErrSameAccount
	}

	meta = withCounterparty(meta, payerID, payeeID)
	return tx.Transaction(func(tx *gorm.DB) error {
		debit := func() error { return l.Debit(tx, payerID, cur, amount, reason, meta) }
		credit := func() error { return l.Credit(tx, payeeID, cur, amount, reason, meta) }

		first, second := debit, credit
		if payeeID < payerID {
			first, second = credit, debit
		}
		if err := first(); err != nil {
			return err
		}
		return second()
	})
}

// Recorded reports whether accountID was already charged under correlationID. Callers use it to
// make a request idempotent before invoking the ledger. Ids are client chosen, so only the
// account's own debits count; a credit received under the same id is someone else's request.
func (l *Ledger) Recorded(tx *gorm.DB, accountID uint, correlationID string) (bool, error) {
	if correlationID == "" {
		return false, nil
	}
	var count int64
	err := tx.Model(&model.LedgerEntry{}).
		Where("account_id = ? AND correlation_id = ? AND delta < 0", accountID, correlationID).
		Count(&count).Error
	return count > 0, err
}

// Entries lists an account's most recent ledger entries.
func (l *Ledger) Entries(tx *gorm.DB, accountID uint, limit int) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := tx.Where("account_id = ?", accountID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func precheck(tx *gorm.DB, cur Currency, amount int64) error {
	if !database.InTransaction(tx) {
		return database.ErrNoTransaction
	}
	if _, err := cur.column(); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func withCounterparty(meta Meta, payerID, payeeID uint) Meta {
	m := Meta{"payer_id": payerID, "payee_id": payeeID}
	for k, v := range meta {
		m[k] = v
	}
	return m
}

func record(tx *gorm.DB, accountID uint, cur Currency, delta int64, reason model.EntryReason, meta Meta) error {
	var raw datatypes.JSON
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode ledger metadata: %w", err)
		}
		raw = datatypes.JSON(b)
	}

	entry := model.LedgerEntry{
		ID:            uuid.NewString(),
		CorrelationID: CorrelationID(tx.Statement.Context),
		AccountID:     accountID,
		Currency:      string(cur),
		Delta:         delta,
		Reason:        reason,
		Metadata:      raw,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("record ledger entry: %w", err)
	}
	return nil
}

