package subscription

import "errors"

var (
	ErrPackageNotFound        = errors.New("package not found")
	ErrSelfPurchaseNotAllowed = errors.New("cannot buy a membership to your own channel")
	ErrInvalidDurationUnit    = errors.New("invalid duration unit")
)
