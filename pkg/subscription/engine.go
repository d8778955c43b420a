// Package subscription sells creator memberships and platform VIP for coin.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/database"
	"clipfeed_backend/pkg/wallet"
)

// MembershipRecord is a buyer's membership to one owner after a purchase.
type MembershipRecord struct {
	OwnerID   uint      `json:"owner_id"`
	MemberID  uint      `json:"member_id"`
	PackageID uint      `json:"package_id"`
	JoinDate  time.Time `json:"join_date"`
	EndDate   time.Time `json:"end_date"`
}

// VipRecord is an account's VIP state.
type VipRecord struct {
	UserID    uint       `json:"user_id"`
	Active    bool       `json:"active"`
	PackageID *uint      `json:"package_id,omitempty"`
	JoinDate  *time.Time `json:"join_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type Engine struct {
	tx     *database.Transactor
	ledger *wallet.Ledger
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(tx *database.Transactor, ledger *wallet.Ledger, options ...Option) *Engine {
	e := &Engine{
		tx:     tx,
		ledger: ledger,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Join buys packageID from ownerID on behalf of buyerID. The coin transfer and the membership
// write commit together or not at all.
func (e *Engine) Join(ctx context.Context, buyerID, ownerID, packageID uint) (*MembershipRecord, error) {
	if buyerID == ownerID {
		return nil, ErrSelfPurchaseNotAllowed
	}

	var rec *MembershipRecord
	err := e.tx.Run(ctx, func(tx *gorm.DB) error {
		if err := e.checkDuplicate(ctx, tx, buyerID); err != nil {
			return err
		}
		pkg, err := getPackage(tx, packageID, model.PackageMembership)
		if err != nil {
			return err
		}
		d, err := Duration(pkg.DurationUnit, pkg.DurationNumber)
		if err != nil {
			return err
		}

		group, err := lockGroup(tx, ownerID)
		if err != nil {
			return err
		}

		meta := wallet.Meta{"package_id": pkg.ID, "owner_id": ownerID}
		if err := e.ledger.Transfer(tx, buyerID, ownerID, wallet.Coin, pkg.Price, model.ReasonMembership, meta); err != nil {
			return err
		}

		now := e.now().UTC()
		var m model.Member
		err = tx.Where("group_id = ? AND member_id = ?", group.ID, buyerID).First(&m).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			m = model.Member{
				GroupID:   group.ID,
				MemberID:  buyerID,
				PackageID: pkg.ID,
				JoinDate:  now,
				EndDate:   now.Add(d),
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("create member: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load member: %w", err)
		default:
			m.JoinDate, m.EndDate = extend(&m.JoinDate, &m.EndDate, now, d)
			m.PackageID = pkg.ID
			if err := tx.Save(&m).Error; err != nil {
				return fmt.Errorf("extend member: %w", err)
			}
		}

		rec = &MembershipRecord{
			OwnerID:   ownerID,
			MemberID:  buyerID,
			PackageID: m.PackageID,
			JoinDate:  m.JoinDate,
			EndDate:   m.EndDate,
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("membership purchase failed",
			"request_id", wallet.CorrelationID(ctx),
			"buyer_id", buyerID,
			"owner_id", ownerID,
			"package_id", packageID,
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("membership purchased",
		"request_id", wallet.CorrelationID(ctx),
		"buyer_id", buyerID,
		"owner_id", ownerID,
		"end_date", rec.EndDate,
	)
	return rec, nil
}

// Upgrade buys platform VIP for userID. The coin is burned; nobody is credited.
func (e *Engine) Upgrade(ctx context.Context, userID, packageID uint) (*VipRecord, error) {
	var rec *VipRecord
	err := e.tx.Run(ctx, func(tx *gorm.DB) error {
		if err := e.checkDuplicate(ctx, tx, userID); err != nil {
			return err
		}
		pkg, err := getPackage(tx, packageID, model.PackageVip)
		if err != nil {
			return err
		}
		d, err := Duration(pkg.DurationUnit, pkg.DurationNumber)
		if err != nil {
			return err
		}

		var acc model.Account
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acc, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("account %d: %w", userID, wallet.ErrAccountNotFound)
		}
		if err != nil {
			return err
		}

		meta := wallet.Meta{"package_id": pkg.ID}
		if err := e.ledger.Debit(tx, userID, wallet.Coin, pkg.Price, model.ReasonVip, meta); err != nil {
			return err
		}

		now := e.now().UTC()
		var join, end *time.Time
		if acc.Vip.Status {
			join, end = acc.Vip.JoinDate, acc.Vip.EndDate
		}
		joinDate, endDate := extend(join, end, now, d)

		err = tx.Model(&acc).Updates(map[string]interface{}{
			"vip_status":     true,
			"vip_package_id": pkg.ID,
			"vip_join_date":  joinDate,
			"vip_end_date":   endDate,
		}).Error
		if err != nil {
			return fmt.Errorf("update vip: %w", err)
		}

		pkgID := pkg.ID
		rec = &VipRecord{UserID: userID, Active: true, PackageID: &pkgID, JoinDate: &joinDate, EndDate: &endDate}
		return nil
	})
	if err != nil {
		e.logger.Warn("vip purchase failed",
			"request_id", wallet.CorrelationID(ctx),
			"user_id", userID,
			"package_id", packageID,
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("vip purchased",
		"request_id", wallet.CorrelationID(ctx),
		"user_id", userID,
		"end_date", rec.EndDate,
	)
	return rec, nil
}

// IsActiveMember reports whether requesterID holds an unexpired membership to ownerID. It reads
// the end date rather than trusting the sweeper to have run.
func (e *Engine) IsActiveMember(ctx context.Context, requesterID, ownerID uint) (bool, error) {
	if requesterID == 0 || ownerID == 0 {
		return false, nil
	}
	var count int64
	err := e.tx.DB().WithContext(ctx).
		Model(&model.Member{}).
		Joins("JOIN membership_groups ON membership_groups.id = members.group_id").
		Where("membership_groups.owner_id = ? AND members.member_id = ? AND members.end_date > ?",
			ownerID, requesterID, e.now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

// Memberships lists the memberships memberID currently holds.
func (e *Engine) Memberships(ctx context.Context, memberID uint) ([]MembershipRecord, error) {
	var recs []MembershipRecord
	err := e.tx.DB().WithContext(ctx).
		Model(&model.Member{}).
		Select("membership_groups.owner_id, members.member_id, members.package_id, members.join_date, members.end_date").
		Joins("JOIN membership_groups ON membership_groups.id = members.group_id").
		Where("members.member_id = ? AND members.end_date > ?", memberID, e.now().UTC()).
		Order("members.end_date asc").
		Scan(&recs).Error
	return recs, err
}

// Vip returns the VIP state of userID. An expired but unswept subscription reads as inactive.
func (e *Engine) Vip(ctx context.Context, userID uint) (*VipRecord, error) {
	var acc model.Account
	err := e.tx.DB().WithContext(ctx).First(&acc, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %d: %w", userID, wallet.ErrAccountNotFound)
	}
	if err != nil {
		return nil, err
	}

	rec := &VipRecord{UserID: userID}
	if acc.Vip.Status && acc.Vip.EndDate != nil && acc.Vip.EndDate.After(e.now()) {
		rec.Active = true
		rec.PackageID = acc.Vip.PackageID
		rec.JoinDate = acc.Vip.JoinDate
		rec.EndDate = acc.Vip.EndDate
	}
	return rec, nil
}

// checkDuplicate rejects a retried request whose earlier attempt already moved coin. It runs
// inside the purchase transaction so two copies of one request cannot both pass.
func (e *Engine) checkDuplicate(ctx context.Context, tx *gorm.DB, payerID uint) error {
	seen, err := e.ledger.Recorded(tx, payerID, wallet.CorrelationID(ctx))
	if err != nil {
		return fmt.Errorf("check correlation id: %w", err)
	}
	if seen {
		return wallet.ErrDuplicateRequest
	}
	return nil
}

// lockGroup returns the owner's membership group, creating it on first use, with its row locked
// for the rest of the transaction. Concurrent purchases against one owner queue here.
func lockGroup(tx *gorm.DB, ownerID uint) (*model.MembershipGroup, error) {
	err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "owner_id"}}, DoNothing: true}).
		Create(&model.MembershipGroup{OwnerID: ownerID}).Error
	if err != nil {
		return nil, fmt.Errorf("create membership group: %w", err)
	}

	var group model.MembershipGroup
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		First(&group).Error
	if err != nil {
		return nil, fmt.Errorf("lock membership group: %w", err)
	}
	return &group, nil
}
