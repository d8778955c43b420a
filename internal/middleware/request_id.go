package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"clipfeed_backend/pkg/wallet"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags the request with the client's X-Request-ID, or a fresh uuid, and carries it
// into the user context so ledger entries and logs share it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		id = strings.Clone(id)
		c.Locals("request_id", id)
		c.Set(HeaderRequestID, id)
		c.SetUserContext(wallet.WithCorrelationID(c.UserContext(), id))
		return c.Next()
	}
}
