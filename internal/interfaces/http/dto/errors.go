package dto

import (
	"net/http"

	"github.com/beezio/marketplace/internal/domain/importing"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Identity error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Provider error codes
const (
	// ErrCodeProviderNotSupported is returned for an unregistered provider code
	ErrCodeProviderNotSupported = "ERR_PROVIDER_NOT_SUPPORTED"
	// ErrCodeProviderAuth is returned when the provider refused the credentials
	ErrCodeProviderAuth = "ERR_PROVIDER_AUTH"
	// ErrCodeProviderUnavailable is returned when the provider could not be reached
	ErrCodeProviderUnavailable = "ERR_PROVIDER_UNAVAILABLE"
	// ErrCodeProviderRequest is returned for any other provider-side failure
	ErrCodeProviderRequest = "ERR_PROVIDER_REQUEST"
	// ErrCodeCredentialsMissing is returned when no provider secret was sent
	ErrCodeCredentialsMissing = "ERR_CREDENTIALS_MISSING"
)

// Import error codes, one per importing.Kind
const (
	ErrCodeImportAdapter              = "ERR_IMPORT_ADAPTER"
	ErrCodeImportValidation           = "ERR_IMPORT_VALIDATION"
	ErrCodeImportResolutionMiss       = "ERR_IMPORT_RESOLUTION_MISS"
	ErrCodeImportPersistenceRejected  = "ERR_IMPORT_PERSISTENCE_REJECTED"
	ErrCodeImportInfrastructureAbsent = "ERR_IMPORT_INFRASTRUCTURE_ABSENT"
	ErrCodeImportPartialWrite         = "ERR_IMPORT_PARTIAL_WRITE"
	ErrCodeImportConfiguration        = "ERR_IMPORT_CONFIGURATION"
	ErrCodeImportDuplicate            = "ERR_IMPORT_DUPLICATE"
	ErrCodeImportCancelled            = "ERR_IMPORT_CANCELLED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeProviderNotSupported: http.StatusNotFound,
	ErrCodeProviderAuth:         http.StatusBadGateway,
	ErrCodeProviderUnavailable:  http.StatusBadGateway,
	ErrCodeProviderRequest:      http.StatusBadGateway,
	ErrCodeCredentialsMissing:   http.StatusBadRequest,

	ErrCodeImportAdapter:              http.StatusBadGateway,
	ErrCodeImportValidation:           http.StatusUnprocessableEntity,
	ErrCodeImportResolutionMiss:       http.StatusUnprocessableEntity,
	ErrCodeImportPersistenceRejected:  http.StatusUnprocessableEntity,
	ErrCodeImportInfrastructureAbsent: http.StatusServiceUnavailable,
	ErrCodeImportPartialWrite:         http.StatusInternalServerError,
	ErrCodeImportConfiguration:        http.StatusBadRequest,
	ErrCodeImportDuplicate:            http.StatusConflict,
	ErrCodeImportCancelled:            http.StatusConflict,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to API error codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
	"CONFLICT":       ErrCodeConflict,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

var importKindCodes = map[importing.Kind]string{
	importing.KindAdapter:              ErrCodeImportAdapter,
	importing.KindValidation:           ErrCodeImportValidation,
	importing.KindResolutionMiss:       ErrCodeImportResolutionMiss,
	importing.KindPersistenceRejected:  ErrCodeImportPersistenceRejected,
	importing.KindInfrastructureAbsent: ErrCodeImportInfrastructureAbsent,
	importing.KindPartialWrite:         ErrCodeImportPartialWrite,
	importing.KindConfiguration:        ErrCodeImportConfiguration,
	importing.KindDuplicate:            ErrCodeImportDuplicate,
	importing.KindCancelled:            ErrCodeImportCancelled,
}

// ImportErrorCode returns the API error code of an import failure kind
func ImportErrorCode(kind importing.Kind) string {
	if code, ok := importKindCodes[kind]; ok {
		return code
	}
	return ErrCodeUnknown
}
