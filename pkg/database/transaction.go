package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrTransactionConflict is returned once a transaction keeps losing write conflicts after every retry.
var ErrTransactionConflict = errors.New("transaction conflict")

// ErrNoTransaction is returned by helpers that must run inside an open transaction.
var ErrNoTransaction = errors.New("operation requires an open transaction")

// Postgres SQLSTATEs that mean "retry the whole transaction".
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Transactor is the single entry point that opens transactions for the engine. Every exit
// path of Run either commits or rolls back.
type Transactor struct {
	db         *gorm.DB
	opts       *sql.TxOptions
	maxRetries int
	backoff    time.Duration
}

type TransactorOption func(*Transactor)

// WithIsolation sets the isolation level; nil keeps the driver default.
func WithIsolation(opts *sql.TxOptions) TransactorOption {
	return func(t *Transactor) { t.opts = opts }
}

func WithRetries(maxRetries int, backoff time.Duration) TransactorOption {
	return func(t *Transactor) {
		t.maxRetries = maxRetries
		t.backoff = backoff
	}
}

func NewTransactor(db *gorm.DB, options ...TransactorOption) *Transactor {
	t := &Transactor{
		db:         db,
		opts:       &sql.TxOptions{Isolation: sql.LevelSerializable},
		maxRetries: 5,
		backoff:    20 * time.Millisecond,
	}
	for _, o := range options {
		o(t)
	}
	return t
}

// DB returns the handle used outside of transactions.
func (t *Transactor) DB() *gorm.DB {
	return t.db
}

// Run executes fn in a transaction and retries it on write conflicts. A cancelled context is
// only honoured before the first attempt starts; once started, the transaction runs to commit
// or full rollback.
func (t *Transactor) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	var err error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(t.backoff << (attempt - 1))
		}
		err = t.db.WithContext(ctx).Transaction(fn, t.opts)
		if !IsConflict(err) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrTransactionConflict, t.maxRetries+1, err)
}

// IsConflict reports whether err is a transient write conflict.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransactionConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

// InTransaction reports whether tx is bound to an open transaction.
func InTransaction(tx *gorm.DB) bool {
	if tx == nil || tx.Statement == nil {
		return false
	}
	_, ok := tx.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}
