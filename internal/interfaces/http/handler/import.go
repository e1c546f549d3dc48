package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	importapp "github.com/beezio/marketplace/internal/application/import"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/pricing"
	"github.com/beezio/marketplace/internal/interfaces/http/dto"
	"github.com/beezio/marketplace/internal/interfaces/http/middleware"
)

// Importer runs and tracks import jobs
type Importer interface {
	ImportMany(ctx context.Context, reqs []importapp.ImportRequest, ws *importapp.WorkingSet) []importapp.Result
	Cancel(ctx context.Context, provider, externalID string) (bool, error)
	InFlight(ctx context.Context) ([]string, error)
}

// OrphanLister lists products left behind by partial writes
type OrphanLister interface {
	List(ctx context.Context) ([]catalogapp.OrphanResponse, error)
}

// ImportHandler handles import endpoints
type ImportHandler struct {
	BaseHandler
	importer Importer
	orphans  OrphanLister
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importer Importer, orphans OrphanLister) *ImportHandler {
	return &ImportHandler{importer: importer, orphans: orphans}
}

// ImportProductsRequest imports products picked from one catalog listing.
// Products are the listing items as returned by the catalog endpoint.
// Remaining is the listing's remaining ids; when empty the product ids are used.
// @Description Request body for importing products
type ImportProductsRequest struct {
	Provider      string                        `json:"provider" binding:"required,max=50" example:"printful"`
	Credentials   integration.Credentials       `json:"credentials"`
	MarkupRate    string                        `json:"markup_rate" binding:"required,decimal" example:"100"`
	AffiliateRate string                        `json:"affiliate_rate" binding:"omitempty,decimal" example:"20"`
	Products      []integration.ExternalProduct `json:"products" binding:"required,min=1,max=100"`
	Remaining     []string                      `json:"remaining"`
}

// ImportFailure describes why one product was not imported
type ImportFailure struct {
	Code    string `json:"code" example:"ERR_IMPORT_RESOLUTION_MISS"`
	Kind    string `json:"kind" example:"resolution_miss"`
	Stage   string `json:"stage" example:"resolving"`
	Message string `json:"message"`
	// OrphanProductID names the product written without its supplier link
	OrphanProductID *uuid.UUID `json:"orphan_product_id,omitempty"`
}

// ImportItemResult is the outcome for one product
type ImportItemResult struct {
	Provider   string         `json:"provider"`
	ExternalID string         `json:"external_id"`
	Success    bool           `json:"success"`
	ProductID  *uuid.UUID     `json:"product_id,omitempty"`
	Path       string         `json:"path,omitempty" example:"server"`
	Error      *ImportFailure `json:"error,omitempty"`
}

// ImportBatchResponse reports every item and the ids still to import
type ImportBatchResponse struct {
	Results   []ImportItemResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Remaining []string           `json:"remaining"`
}

// CancelImportResponse reports a cancelled job
type CancelImportResponse struct {
	Job       string `json:"job" example:"printful:71"`
	Cancelled bool   `json:"cancelled"`
}

// InFlightResponse lists running job keys
type InFlightResponse struct {
	Jobs []string `json:"jobs"`
}

// Import godoc
// @ID           importProducts
// @Summary      Import products
// @Description  Imports the chosen listing products. Items run concurrently and fail independently; the response is 200 with a result per item.
// @Tags         imports
// @Accept       json
// @Produce      json
// @Param        request body ImportProductsRequest true "Products and pricing"
// @Success      200 {object} APIResponse[ImportBatchResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /imports [post]
func (h *ImportHandler) Import(c *gin.Context) {
	var req ImportProductsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	provider := integration.ParseProviderCode(req.Provider)
	caller := callerFrom(middleware.GetIdentity(c))
	rates := pricing.Input{
		MarkupRate:    toDecimal(req.MarkupRate),
		AffiliateRate: toDecimal(req.AffiliateRate),
	}

	seed := req.Remaining
	if len(seed) == 0 {
		seed = make([]string, 0, len(req.Products))
		for _, p := range req.Products {
			seed = append(seed, strings.TrimSpace(p.ExternalID))
		}
	}
	ws := importapp.NewWorkingSet(provider.String(), seed...)

	reqs := make([]importapp.ImportRequest, len(req.Products))
	for i, p := range req.Products {
		p.Provider = provider
		p.ExternalID = strings.TrimSpace(p.ExternalID)
		reqs[i] = importapp.ImportRequest{
			Provider:    provider,
			Credentials: req.Credentials,
			Product:     p,
			Pricing:     rates,
			Caller:      caller,
		}
	}

	results := h.importer.ImportMany(c.Request.Context(), reqs, ws)

	resp := ImportBatchResponse{
		Results:   make([]ImportItemResult, len(results)),
		Remaining: ws.Remaining(),
	}
	for i, r := range results {
		resp.Results[i] = toImportItemResult(r)
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelImport
// @Summary      Cancel an import
// @Description  Abandons an in-flight import. A write already under way completes; its result is discarded.
// @Tags         imports
// @Produce      json
// @Param        provider path string true "Provider code"
// @Param        external_id path string true "External product id"
// @Success      200 {object} APIResponse[CancelImportResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /imports/{provider}/{external_id} [delete]
func (h *ImportHandler) Cancel(c *gin.Context) {
	provider := integration.ParseProviderCode(c.Param("provider"))
	externalID := strings.TrimSpace(c.Param("external_id"))
	job := provider.String() + ":" + externalID

	cancelled, err := h.importer.Cancel(c.Request.Context(), provider.String(), externalID)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeImportInfrastructureAbsent, "Job registry unavailable")
		return
	}
	if !cancelled {
		h.NotFound(c, "No import in flight for "+job)
		return
	}
	h.Success(c, CancelImportResponse{Job: job, Cancelled: true})
}

// InFlight godoc
// @ID           listInFlightImports
// @Summary      List running imports
// @Tags         imports
// @Produce      json
// @Success      200 {object} APIResponse[InFlightResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /imports/in-flight [get]
func (h *ImportHandler) InFlight(c *gin.Context) {
	jobs, err := h.importer.InFlight(c.Request.Context())
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeImportInfrastructureAbsent, "Job registry unavailable")
		return
	}
	if jobs == nil {
		jobs = []string{}
	}
	h.Success(c, InFlightResponse{Jobs: jobs})
}

// Orphans godoc
// @ID           listImportOrphans
// @Summary      List orphaned products
// @Description  Products written without a supplier link by a partial import, oldest first
// @Tags         imports
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.OrphanResponse]
// @Router       /imports/orphans [get]
func (h *ImportHandler) Orphans(c *gin.Context) {
	orphans, err := h.orphans.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orphans)
}

// callerFrom maps the request identity to an import caller. An anonymous
// request yields the zero caller; owner resolution then reports the miss.
func callerFrom(id *middleware.CallerIdentity) catalogapp.Caller {
	if id == nil {
		return catalogapp.Caller{}
	}
	return catalogapp.Caller{
		ProfileID:   id.ProfileID,
		Identity:    id.Identity,
		DisplayName: id.Name,
	}
}

func toImportItemResult(r importapp.Result) ImportItemResult {
	item := ImportItemResult{
		Provider:   r.Provider,
		ExternalID: r.ExternalID,
		Success:    r.Success,
	}
	if r.Success {
		id := r.ProductID
		item.ProductID = &id
		item.Path = string(r.Path)
		return item
	}
	if r.Error != nil {
		item.Error = &ImportFailure{
			Code:    dto.ImportErrorCode(r.Error.Kind),
			Kind:    string(r.Error.Kind),
			Stage:   string(r.Error.Stage),
			Message: r.Error.Error(),
		}
		if r.Error.ProductID != uuid.Nil {
			orphan := r.Error.ProductID
			item.Error.OrphanProductID = &orphan
		}
	}
	return item
}
