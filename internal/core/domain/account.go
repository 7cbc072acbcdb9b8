package domain

import (
	"fmt"
	"math"
	"time"
)

// Account holds a user's balance in cents. Balance is written only by a
// settlement (or the one-off registration bonus) and never goes negative.
type Account struct {
	ID        string
	Role      Role
	Balance   int64
	PayoutKey string // opaque PIX key, never interpreted
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Debit removes amount from the balance or fails with ErrInsufficientFunds,
// leaving the account untouched.
func (a *Account) Debit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative debit", ErrInvalidArgument)
	}
	if a.Balance < amount {
		return fmt.Errorf("%w: account %s has %s, needs %s",
			ErrInsufficientFunds, a.ID, FormatAmount(a.Balance), FormatAmount(amount))
	}
	a.Balance -= amount
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative credit", ErrInvalidArgument)
	}
	if amount > math.MaxInt64-a.Balance {
		return fmt.Errorf("%w: credit of %s overflows account %s", ErrInvalidArgument, FormatAmount(amount), a.ID)
	}
	a.Balance += amount
	return nil
}
