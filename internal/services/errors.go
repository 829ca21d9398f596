package services

import (
	"fmt"
	"net/http"
)

// Error is the stable failure contract exposed to callers: a machine
// code for status selection plus a human-readable description. Raw
// storage errors never cross the service boundary.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func ErrAccountNotFound(accountNumber string) *Error {
	return &Error{
		Code:        "Account.NotFound",
		Description: fmt.Sprintf("Account with account number %s does not exist.", accountNumber),
	}
}

func ErrSourceAccountNotFound() *Error {
	return &Error{
		Code:        "Account.NotFound",
		Description: "No source account exists for this user.",
	}
}

func ErrBeneficiaryNotFound() *Error {
	return &Error{
		Code:        "Account.Beneficiary",
		Description: "Beneficiary account does not exist.",
	}
}

func ErrEmailExists() *Error {
	return &Error{
		Code:        "Account.EmailExists",
		Description: "Email address is already registered.",
	}
}

func ErrCurrencyMismatch(senderCurrency, requestCurrency string) *Error {
	return &Error{
		Code: "Payment.CurrencyMismatch",
		Description: fmt.Sprintf(
			"Transfer request cannot be made between sender currency %s and recipient currency %s",
			senderCurrency, requestCurrency),
	}
}

func ErrInsufficientFunds() *Error {
	return &Error{
		Code:        "Payment.InsufficientFunds",
		Description: "Insufficient funds.",
	}
}

func ErrConcurrencyConflict() *Error {
	return &Error{
		Code:        "Payment.ConcurrencyConflict",
		Description: "The account was modified by another transfer. Retry the operation.",
	}
}

func ErrValidation(description string) *Error {
	return &Error{
		Code:        "Request.Validation",
		Description: description,
	}
}

func ErrStorageFailure() *Error {
	return &Error{
		Code:        "Storage.Failure",
		Description: "An unexpected storage error occurred.",
	}
}

// httpStatus maps an error code to the HTTP status its callers use.
func (e *Error) httpStatus() int {
	switch e.Code {
	case "Account.NotFound", "Account.Beneficiary":
		return http.StatusNotFound
	case "Account.EmailExists":
		return http.StatusConflict
	case "Payment.CurrencyMismatch", "Payment.InsufficientFunds":
		return http.StatusUnprocessableEntity
	case "Payment.ConcurrencyConflict":
		return http.StatusConflict
	case "Request.Validation":
		return http.StatusBadRequest
	case "Request.Unauthorized", "Auth.InvalidCredentials":
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
