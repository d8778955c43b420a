package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Wallet holds the two currencies of an account. Neither column may go below zero.
type Wallet struct {
	Balance int64 `json:"balance" gorm:"not null;default:0;check:chk_accounts_balance,balance >= 0"`
	Coin    int64 `json:"coin" gorm:"not null;default:0;check:chk_accounts_coin,coin >= 0"`
}

// Vip is the platform-wide subscription attached to an account.
type Vip struct {
	Status    bool       `json:"status" gorm:"not null;default:false;index"`
	PackageID *uint      `json:"package_id"`
	JoinDate  *time.Time `json:"join_date"`
	EndDate   *time.Time `json:"end_date" gorm:"index"`
}

type Account struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`

	Wallet Wallet `json:"wallet" gorm:"embedded"`
	Vip    Vip    `json:"vip" gorm:"embedded;embeddedPrefix:vip_"`
}

// GenerateUsername builds a URL-friendly username from an email address.
func GenerateUsername(email string) string {
	name := strings.ToLower(email)
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name)
}

func (a *Account) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":       a.ID,
		"username": a.Username,
		"vip":      a.Vip.Status,
	}
}
