package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrAccountNotReady    = errors.New("account is not active or verified")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token payload malformed")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found or account deactivated")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Admission errors
var (
	ErrIPBlocked       = errors.New("ip address is blocked")
	ErrTooManyRequests = errors.New("too many requests")
)

// Dependency errors
var (
	ErrProvider = errors.New("identity provider error")
)
