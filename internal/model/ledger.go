package model

import (
	"time"

	"gorm.io/datatypes"
)

type EntryReason string

const (
	ReasonCredit     EntryReason = "credit"
	ReasonDebit      EntryReason = "debit"
	ReasonExchange   EntryReason = "exchange"
	ReasonMembership EntryReason = "membership"
	ReasonVip        EntryReason = "vip"
)

// LedgerEntry records a single wallet movement. Rows are never updated.
type LedgerEntry struct {
	ID            string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	CorrelationID string         `json:"correlation_id" gorm:"index"`
	AccountID     uint           `json:"account_id" gorm:"not null;index"`
	Currency      string         `json:"currency" gorm:"not null"`
	Delta         int64          `json:"delta" gorm:"not null"`
	Reason        EntryReason    `json:"reason" gorm:"not null"`
	Metadata      datatypes.JSON `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}
