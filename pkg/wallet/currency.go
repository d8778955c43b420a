package wallet

import "fmt"

type Currency string

const (
	Balance Currency = "balance"
	Coin    Currency = "coin"
)

// column maps a currency to its accounts column. Only these two names ever reach SQL.
func (c Currency) column() (string, error) {
	switch c {
	case Balance:
		return "balance", nil
	case Coin:
		return "coin", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, string(c))
	}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if _, err := c.column(); err != nil {
		return "", err
	}
	return c, nil
}
