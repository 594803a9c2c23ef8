package inventory

import (
	"errors"
	"fmt"
)

// ErrInsufficientCoins is returned by Wallet.Deduct when the balance is too low.
var ErrInsufficientCoins = errors.New("inventory: insufficient coins")

// Wallet holds the run's coin balance.
//
// Invariant: balance >= 0.
type Wallet struct {
	balance int
}

// Balance returns the current coin count.
func (w *Wallet) Balance() int { return w.balance }

// Add credits n coins.
//
// Precondition: n >= 0.
// Postcondition: balance increases by n; negative n is rejected.
func (w *Wallet) Add(n int) error {
	if n < 0 {
		return fmt.Errorf("inventory: cannot add negative coins %d", n)
	}
	w.balance += n
	return nil
}

// Deduct debits n coins.
//
// Precondition: n >= 0.
// Postcondition: on success balance decreases by n; on error balance is unchanged.
func (w *Wallet) Deduct(n int) error {
	if n < 0 {
		return fmt.Errorf("inventory: cannot deduct negative coins %d", n)
	}
	if n > w.balance {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientCoins, FormatCoins(w.balance), FormatCoins(n))
	}
	w.balance -= n
	return nil
}

// FormatCoins renders a coin count for player-facing messages.
//
// Postcondition: uses the singular form only when n == 1.
func FormatCoins(n int) string {
	return fmt.Sprintf("%d %s", n, plural(n, "coin"))
}

// plural returns the singular form if n == 1, otherwise appends "s".
func plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}
