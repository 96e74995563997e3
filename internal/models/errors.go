package models

import "errors"

// Errors returned by the order store adapters
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
)
