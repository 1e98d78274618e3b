package types

import "time"

// ApiResponse is the success envelope every endpoint returns.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the failure envelope produced by the boundary handler.
type ErrorResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	ErrorDetails interface{} `json:"errorDetails"`
}

// LogEntry carries one sanitized request/response pair to the async logger.
type LogEntry struct {
	Method          string
	URL             string
	RequestBody     string
	RequestHeaders  string
	ResponseBody    string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}
