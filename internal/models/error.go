package models

// APIError is the JSON body of every non-OAuth error response
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes carried in APIError.Code
const (
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrEmptyCart        = "EMPTY_CART"
	ErrSourceNotFound   = "SOURCE_NOT_FOUND"
)

// NewAPIError builds an error body; details, when given, go under "details"
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	apiErr := APIError{Code: code, Message: message}
	if len(details) > 0 {
		apiErr.Details = details[0]
	}
	return apiErr
}
