package protocol

import (
	"fmt"
	"net/http"
)

// APIError is an error having an HTTP status and a stable, machine-readable
// code. Services return APIErrors for expected failures (a missing item, a
// taken email), and the HTTP gateway presents them to clients as:
//
//	{"error": {"message": "...", "code": "...", "details": ...}}
type APIError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

// Error implements the error interface.
func (e *APIError) Error() string { return e.Message }

// NewAPIError returns an APIError of the status and code, with a message
// formatted per fmt.Sprintf.
func NewAPIError(status int, code, format string, args ...interface{}) *APIError {
	return &APIError{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error codes returned by the storefront API.
const (
	CodeBadJSON            = "BAD_JSON"
	CodeDuplicate          = "DUPLICATE"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInternal           = "INTERNAL"
	CodeInvalidCartID      = "INVALID_CART_ID"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidID          = "INVALID_ID"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeNotFound           = "NOT_FOUND"
	CodeNotInCart          = "NOT_IN_CART"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
)

// Common APIErrors.
var (
	ErrUnauthorized       = NewAPIError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
	ErrEmailTaken         = NewAPIError(http.StatusConflict, CodeEmailTaken, "Email already in use")
	ErrItemNotFound       = NewAPIError(http.StatusNotFound, CodeNotFound, "Item not found")
	ErrInvalidItemID      = NewAPIError(http.StatusBadRequest, CodeInvalidID, "Invalid item id")
	ErrNotInCart          = NewAPIError(http.StatusNotFound, CodeNotInCart, "Item not in cart")
	ErrCartNotFound       = NewAPIError(http.StatusNotFound, CodeNotFound, "Cart not found")
	ErrInvalidCartID      = NewAPIError(http.StatusBadRequest, CodeInvalidCartID, "X-Cart-Id must be a valid UUID")
)
