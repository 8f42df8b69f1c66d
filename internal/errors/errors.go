package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidName       ErrorCode = "invalid_name"
	InvalidAmount     ErrorCode = "invalid_amount"
	InvalidAccountID  ErrorCode = "invalid_account_id"
	InvalidInput      ErrorCode = "invalid_input"
	AccountNotFound   ErrorCode = "account_not_found"
	InsufficientFunds ErrorCode = "insufficient_funds"
	DuplicateAccount  ErrorCode = "duplicate_account"
	InternalError     ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to the status the transport layer reports.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidName, InvalidAmount, InvalidAccountID, InvalidInput, InsufficientFunds:
		return http.StatusBadRequest
	case AccountNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// Predefined errors for common cases
var (
	ErrInvalidName       = NewAppError(InvalidName, "name must be non-empty and contain only letters and whitespace")
	ErrInvalidAmount     = NewAppError(InvalidAmount, "amount cannot be negative")
	ErrInvalidAccountID  = NewAppError(InvalidAccountID, "account ID must be a valid UUID")
	ErrAccountNotFound   = NewAppError(AccountNotFound, "account not found")
	ErrSenderNotFound    = NewAppError(AccountNotFound, "sender account not found")
	ErrRecipientNotFound = NewAppError(AccountNotFound, "recipient account not found")
	ErrNoAccountsFound   = NewAppError(AccountNotFound, "sender and recipient accounts not found")
	ErrInsufficientFunds = NewAppError(InsufficientFunds, "insufficient funds")
	ErrDuplicateAccount  = NewAppError(DuplicateAccount, "account already exists")

	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin transaction from within a transaction")
)
