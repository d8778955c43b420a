package wallet

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidCurrency   = errors.New("unknown currency")
	ErrInvalidRate       = errors.New("exchange rate must be greater than zero")
	ErrSameAccount       = errors.New("cannot transfer to same account")

	// ErrDuplicateRequest is for callers that checked Recorded and found their correlation id.
	ErrDuplicateRequest = errors.New("request already processed")
)
