package handler

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope every endpoint except login writes.
// Data is omitted on errors and Message on most successes.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse wraps a resource or list
func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: statusSuccess, Data: data}
}

// NewErrorResponse carries the user-facing message of a failed request
func NewErrorResponse(message string) *Response {
	return &Response{Status: statusError, Message: message}
}
