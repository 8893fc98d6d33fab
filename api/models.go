package api

import (
	"time"

	"github.com/lookbusy1344/riscv-vm/service"
)

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
	CodeSize  int       `json:"codeSize"`
	Gas       uint64    `json:"gas"`
}

// InstallCodeRequest represents a request to install native code.
// Code is hex-encoded machine code; it is installed at offset 0 of the
// session's code arena.
type InstallCodeRequest struct {
	Code string `json:"code"`
}

// InstallCodeResponse represents the response from installing code
type InstallCodeResponse struct {
	Success bool `json:"success"`
	Size    int  `json:"size"`
}

// CallRequest represents a request to invoke installed code
type CallRequest struct {
	PC  uint32 `json:"pc"`
	Arg uint32 `json:"arg"`
}

// CallResponse represents the result of a call
type CallResponse struct {
	Result uint32 `json:"result"`
}

// EventsResponse represents a page of session events
type EventsResponse struct {
	Events []service.Event `json:"events"`
	Cursor uint64          `json:"cursor"`
}

// SessionListResponse represents the live session inventory
type SessionListResponse struct {
	Sessions []service.SessionInfo `json:"sessions"`
	Count    int                   `json:"count"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a generic success acknowledgement
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}
