package model

import "time"

// MembershipGroup collects everyone holding a membership to one content owner.
type MembershipGroup struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerID   uint      `json:"owner_id" gorm:"uniqueIndex;not null"`
	Members   []Member  `json:"members" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is removed outright once it expires, so it has no DeletedAt.
type Member struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupID   uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_group_member"`
	MemberID  uint      `json:"member_id" gorm:"not null;uniqueIndex:idx_group_member;index"`
	PackageID uint      `json:"package_id" gorm:"not null"`
	JoinDate  time.Time `json:"join_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null;index"`
}
