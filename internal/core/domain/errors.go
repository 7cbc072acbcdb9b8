package domain

import "errors"

// Business errors. They describe a well-formed request that the current
// state does not allow; none of them leaves a partial effect behind.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBudgetExceeded    = errors.New("campaign budget exceeded")
	ErrInvalidTransition = errors.New("invalid submission transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
)

// Creation-side errors.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrCampaignInactive    = errors.New("campaign is not active")
	ErrDuplicateSubmission = errors.New("video already submitted to this campaign")
	ErrAccountExists       = errors.New("account already registered")
	ErrRoleMismatch        = errors.New("account role does not allow this operation")
)
