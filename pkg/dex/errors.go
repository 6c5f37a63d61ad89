package dex

import "github.com/pkg/errors"

// validation errors
var (
	ErrPairNotFound      = errors.New("pair not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotOwner          = errors.New("caller does not own the order")
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrZeroPrice         = errors.New("price must be positive")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrOrderTooSmall     = errors.New("order size below the pair minimum")
	ErrInvalidRoute      = errors.New("invalid swap route")
	ErrInvalidSlippage   = errors.New("slippage guard does not apply to the swap direction")
	ErrSlippageExceeded  = errors.New("slippage tolerance exceeded")
	ErrInsufficientLiq   = errors.New("insufficient liquidity")
	ErrUnexpectedFunds   = errors.New("unexpected funds attached")
	ErrUnauthorized      = errors.New("sender is not authorized")
	ErrPaused            = errors.New("trading is paused")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
