package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"clipfeed_backend/pkg/database"
	"clipfeed_backend/pkg/subscription"
	"clipfeed_backend/pkg/visibility"
	"clipfeed_backend/pkg/wallet"
)

type errorStatus struct {
	err    error
	status int
}

var errorStatuses = []errorStatus{
	{wallet.ErrAccountNotFound, fiber.StatusNotFound},
	{subscription.ErrPackageNotFound, fiber.StatusNotFound},
	{visibility.ErrNotFound, fiber.StatusNotFound},
	{wallet.ErrInsufficientFunds, fiber.StatusPaymentRequired},
	{subscription.ErrSelfPurchaseNotAllowed, fiber.StatusBadRequest},
	{wallet.ErrInvalidAmount, fiber.StatusBadRequest},
	{wallet.ErrInvalidCurrency, fiber.StatusBadRequest},
	{wallet.ErrSameAccount, fiber.StatusBadRequest},
	{subscription.ErrInvalidDurationUnit, fiber.StatusUnprocessableEntity},
	{wallet.ErrDuplicateRequest, fiber.StatusConflict},
	{database.ErrTransactionConflict, fiber.StatusServiceUnavailable},
}

// errorResponse maps domain errors to a status code. Anything unknown is a 500 and its text is
// not echoed to the client.
func errorResponse(c *fiber.Ctx, err error) error {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return c.Status(es.status).JSON(fiber.Map{
				"error": es.err.Error(),
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
