package trading

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/ledger"
)

// ParseAmount parses a user-supplied amount string. Commas are accepted as
// thousands separators ("1,000.50"). Unparseable input fails with
// ErrInvalidAmount; sign checks are left to the operation.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return decimal.Zero, ledger.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ledger.ErrInvalidAmount
	}
	return d, nil
}

// ParseQuantity resolves a sell-size argument against current holdings.
// A "%" suffix means a percentage of total ("50%" is half the position);
// anything else is an absolute quantity.
func ParseQuantity(s string, total decimal.Decimal) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if strings.HasSuffix(cleaned, "%") {
		pct, err := ParseAmount(strings.TrimSuffix(cleaned, "%"))
		if err != nil {
			return decimal.Zero, err
		}
		return total.Mul(pct).Div(oneHundred), nil
	}
	return ParseAmount(cleaned)
}

var oneHundred = decimal.NewFromInt(100)
