package dto

import "time"

// APIResponse is the envelope for successful JSON responses
type APIResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse creates a successful API response
func NewAPIResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// ActionResult is the outcome of a form action. Failures carry the HTTP status and a message.
type ActionResult struct {
	Success bool   `json:"success"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// ActionSucceeded returns a successful action result
func ActionSucceeded() ActionResult {
	return ActionResult{Success: true}
}

// ActionFailed returns a failed action result
func ActionFailed(status int, message string) ActionResult {
	return ActionResult{Success: false, Status: status, Message: message}
}
