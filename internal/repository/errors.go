package repository

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// DepositLimitError reports a deposit rejected for exceeding the ceiling.
// It carries the allowable amount so callers can display it.
type DepositLimitError struct {
	Allowable decimal.Decimal
}

func (e *DepositLimitError) Error() string {
	return fmt.Sprintf("deposit exceeds allowable limit of %s", e.Allowable.String())
}
