package handler

import "github.com/beezio/marketplace/internal/interfaces/http/dto"

// APIResponse is dto.Response with a typed data field. Handlers write
// dto.Response; clients and tests decode into APIResponse[T].
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse = APIResponse[struct{}]
