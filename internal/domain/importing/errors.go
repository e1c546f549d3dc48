package importing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInfrastructureAbsent means the server import path does not exist or is
	// switched off. It is the only error that permits the client fallback.
	ErrInfrastructureAbsent = errors.New("importing: server import path unavailable")
	// ErrPersistenceRejected is a business-level rejection from the store.
	ErrPersistenceRejected = errors.New("importing: persistence rejected")
	// ErrPartialWrite means the product was written but its supplier link was not.
	ErrPartialWrite = errors.New("importing: product written without supplier link")
	// ErrResolutionMiss means no category or owner could be resolved.
	ErrResolutionMiss = errors.New("importing: resolution miss")
	// ErrJobInFlight rejects a second import of an id that is already running.
	ErrJobInFlight = errors.New("importing: import already in flight")
	// ErrJobCancelled marks a job whose results were discarded.
	ErrJobCancelled = errors.New("importing: import cancelled")
)

// Kind classifies a failed import for the caller
type Kind string

const (
	KindAdapter              Kind = "adapter"
	KindValidation           Kind = "validation"
	KindResolutionMiss       Kind = "resolution_miss"
	KindPersistenceRejected  Kind = "persistence_rejected"
	KindInfrastructureAbsent Kind = "infrastructure_absent"
	KindPartialWrite         Kind = "partial_write"
	KindConfiguration        Kind = "configuration"
	KindDuplicate            Kind = "duplicate"
	KindCancelled            Kind = "cancelled"
)

// Stage is the step of the import pipeline an error came from
type Stage string

const (
	StageAdmission Stage = "admission"
	StageFetching  Stage = "fetching"
	StagePricing   Stage = "pricing"
	StageResolving Stage = "resolving"
	StageServer    Stage = "persisting_server"
	StageFallback  Stage = "persisting_client"
)

// ImportError is the per-item failure of an import job.
type ImportError struct {
	Kind       Kind
	Stage      Stage
	Provider   string
	ExternalID string
	// ProductID is set for partial writes: the orphan to repair.
	ProductID uuid.UUID
	Err       error
}

// NewImportError wraps err with its classification
func NewImportError(kind Kind, stage Stage, provider, externalID string, err error) *ImportError {
	return &ImportError{Kind: kind, Stage: stage, Provider: provider, ExternalID: externalID, Err: err}
}

// Error implements the error interface
func (e *ImportError) Error() string {
	msg := fmt.Sprintf("import %s/%s failed at %s (%s)", e.Provider, e.ExternalID, e.Stage, e.Kind)
	if e.ProductID != uuid.Nil {
		msg += fmt.Sprintf(" orphan product %s", e.ProductID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ImportError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an *ImportError anywhere in err's chain, or "".
func KindOf(err error) Kind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
