package upgrade

import "errors"

// Rejection errors. Each message is a user-facing reason; the menu state is
// unchanged when one is returned.
var (
	ErrNotOpen           = errors.New("the upgrade menu is not open")
	ErrAlreadyOpen       = errors.New("the upgrade menu is already open")
	ErrNoCards           = errors.New("there are no upgrades to choose from")
	ErrInvalidIndex      = errors.New("that card does not exist")
	ErrInsufficientCoins = errors.New("not enough coins to reroll")
)

// rejectionReasons maps each rejection to its metrics label.
var rejectionReasons = map[error]string{
	ErrNotOpen:           "not_open",
	ErrAlreadyOpen:       "already_open",
	ErrNoCards:           "no_cards",
	ErrInvalidIndex:      "invalid_index",
	ErrInsufficientCoins: "insufficient_coins",
}

// RejectionReason returns the metrics label for a rejection error, or
// "other" when err is not a rejection.
func RejectionReason(err error) string {
	for sentinel, reason := range rejectionReasons {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	return "other"
}
