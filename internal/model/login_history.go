package model

import "time"

// LoginHistory is one successful login.
type LoginHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AccountID uint      `json:"account_id" gorm:"not null;index"`
	Device    string    `json:"device" gorm:"size:255"`
	IP        string    `json:"ip" gorm:"size:50"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
