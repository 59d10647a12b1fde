package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication & Authorization
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrForbidden          = errors.New("action forbidden")
	ErrUnauthorized       = errors.New("unauthorized")

	// Account validation
	ErrAccountNotFound   = errors.New("account not found")
	ErrEmailRequired     = errors.New("email is required")
	ErrEmailInvalid      = errors.New("email format is invalid")
	ErrPasswordTooWeak   = errors.New("password does not meet security requirements")
	ErrPasswordRequired  = errors.New("password is required")
	ErrFullNameRequired  = errors.New("full name is required")
	ErrInvalidEntranceKey = errors.New("entrance key is not a valid public key")

	// Registry
	ErrNotAuthorizedToMint = errors.New("not authorized to mint")
	ErrAlreadyMinted       = errors.New("ticket already minted")
	ErrUnknownTicket       = errors.New("unknown ticket")
	ErrNotOwnerOrApproved  = errors.New("not owner or approved")

	// Event lifecycle
	ErrNotAuthorizedToCreate = errors.New("not authorized to create events")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventAlreadyListed    = errors.New("event already listed")
	ErrEventNotListed        = errors.New("event not listed")
	ErrEventAlreadySold      = errors.New("event has already sold tickets")
	ErrNotEventCreator       = errors.New("not event creator")
	ErrQuantityRequired      = errors.New("ticket quantity must be positive")
	ErrQuantityTooLarge      = errors.New("ticket quantity exceeds maximum")
	ErrNameRequired          = errors.New("event name is required")
	ErrInvalidSaleWindow     = errors.New("sale end must be after sale start")
	ErrInvalidPrice          = errors.New("price must be positive")

	// Primary sale
	ErrNoTicketsAvailable  = errors.New("no tickets available")
	ErrCreatorCannotBeBuyer = errors.New("creator cannot be buyer")
	ErrInsufficientPayment = errors.New("insufficient payment")

	// Resale
	ErrNotOwnerOfTicket   = errors.New("not owner of ticket")
	ErrListingNotActive   = errors.New("listing is not active")
	ErrSellerCannotBeBuyer = errors.New("seller cannot be buyer")
	ErrOnlySellerCanCancel = errors.New("only seller can cancel")
	ErrNotListedTicket    = errors.New("not listed ticket")

	// Redemption
	ErrTicketNotBoughtYet    = errors.New("ticket not bought yet")
	ErrNotAllowedToUseTicket = errors.New("not allowed to use ticket")
	ErrTicketAlreadyUsed     = errors.New("ticket already used")

	// Wallet
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Message:    message,
		Code:       "FORBIDDEN",
		StatusCode: 403,
	}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "NOT_FOUND",
		StatusCode: 404,
	}
}

func NewConflictError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "CONFLICT",
		StatusCode: 409,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
