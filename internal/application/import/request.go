package importapp

import (
	"github.com/google/uuid"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/pricing"
)

// ImportRequest asks for one listed product to be imported
type ImportRequest struct {
	Provider    integration.ProviderCode
	Credentials integration.Credentials
	// Product is the list-level record the caller picked
	Product integration.ExternalProduct
	// Pricing carries the caller's rates. BaseCost is replaced by the
	// product's price once the detail fetch has run.
	Pricing pricing.Input
	Caller  catalogapp.Caller
}

// Key returns the job key of the request
func (r ImportRequest) Key() importing.JobKey {
	return importing.JobKey{Provider: r.Provider.String(), ExternalID: r.Product.ExternalID}
}

// Path is the persistence route a successful import took
type Path string

const (
	PathServer Path = "server"
	PathClient Path = "client"
)

// Result is the per-item outcome of an import. Exactly one of ProductID
// (with Success) or Error is meaningful.
type Result struct {
	Provider   string
	ExternalID string
	Success    bool
	ProductID  uuid.UUID
	Path       Path
	Error      *importing.ImportError
}

func succeeded(id uuid.UUID, path Path) Result {
	return Result{Success: true, ProductID: id, Path: path}
}

func failed(err *importing.ImportError) Result {
	return Result{Error: err}
}
