package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"clipfeed_backend/internal/middleware"
	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/database"
	"clipfeed_backend/pkg/wallet"
)

type ExchangeInput struct {
	Amount int64 `json:"amount"`
}

var (
	walletTx     *database.Transactor
	walletLedger *wallet.Ledger
	exchangeRate decimal.Decimal
)

// InitWalletController wires the wallet endpoints. rate is the number of coin bought by one
// unit of balance.
func InitWalletController(tx *database.Transactor, ledger *wallet.Ledger, rate decimal.Decimal) {
	walletTx = tx
	walletLedger = ledger
	exchangeRate = rate
}

func GetWallet(c *fiber.Ctx) error {
	var account model.Account
	if err := walletTx.DB().WithContext(c.UserContext()).First(&account, middleware.RequesterID(c)).Error; err != nil {
		return errorResponse(c, wallet.ErrAccountNotFound)
	}
	return c.JSON(fiber.Map{
		"wallet":        account.Wallet,
		"exchange_rate": exchangeRate.String(),
	})
}

// ExchangeCoins converts balance into coin at the configured rate.
func ExchangeCoins(c *fiber.Ctx) error {
	input := new(ExchangeInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid input")
	}

	ctx := c.UserContext()
	accountID := middleware.RequesterID(c)
	var credited int64
	err := walletTx.Run(ctx, func(tx *gorm.DB) error {
		seen, err := walletLedger.Recorded(tx, accountID, wallet.CorrelationID(ctx))
		if err != nil {
			return err
		}
		if seen {
			return wallet.ErrDuplicateRequest
		}
		credited, err = walletLedger.Exchange(tx, accountID, wallet.Balance, wallet.Coin, input.Amount, exchangeRate)
		return err
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"debited":  input.Amount,
		"credited": credited,
	})
}

func ListLedgerEntries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := walletLedger.Entries(walletTx.DB().WithContext(c.UserContext()), middleware.RequesterID(c), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(entries)
}
