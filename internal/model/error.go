package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeNoLines            = "NO_LINES"
	ErrCodeAlreadyCompleted   = "ALREADY_COMPLETED"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidCategory    = "INVALID_CATEGORY"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ACCOUNT_DISABLED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a typed business-rule rejection. It is surfaced to the
// caller as-is and never represents a partial write.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrNoLines            = NewDomainError(ErrCodeNoLines, "No lines for this order and category")
	ErrAlreadyCompleted   = NewDomainError(ErrCodeAlreadyCompleted, "Category is already completed")
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "Unknown line status")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid username or password")
	ErrAccountDisabled    = NewDomainError(ErrCodeAccountDisabled, "Account is disabled")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Login required")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "Permission denied")
)

// InsufficientStockError identifies the product an order creation failed on.
// The whole order is rolled back when it is returned.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
