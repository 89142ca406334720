package handlers

import "time"

const (
	// requestTimeout bounds the store work of a single API request
	requestTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20

	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrQuizRequired        = "Quiz required"

	quizPath = "/quiz"
)
