package models

import "errors"

// Common errors used throughout the application
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSessionExpired = errors.New("session expired")
	ErrCartEmpty      = errors.New("cart is empty")
)
