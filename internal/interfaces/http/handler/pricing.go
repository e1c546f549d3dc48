package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/beezio/marketplace/internal/domain/pricing"
)

// Quoter prices an input under the configured policy
type Quoter interface {
	Quote(in pricing.Input) (pricing.Breakdown, error)
}

// PricingHandler serves price quotes
type PricingHandler struct {
	BaseHandler
	quoter Quoter
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(quoter Quoter) *PricingHandler {
	return &PricingHandler{quoter: quoter}
}

// QuoteRequest carries amounts as decimal strings so no precision is lost
// @Description Request body for a price quote
type QuoteRequest struct {
	BaseCost      string `json:"base_cost" binding:"required,decimal" example:"10.00"`
	MarkupRate    string `json:"markup_rate" binding:"required,decimal" example:"100"`
	AffiliateRate string `json:"affiliate_rate" binding:"omitempty,decimal" example:"20"`
}

// Quote godoc
// @ID           quotePrice
// @Summary      Quote a final price
// @Description  Grosses up a base cost so the seller, affiliate, recruiter and platform are paid in full after processing fees
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body QuoteRequest true "Base cost and rates"
// @Success      200 {object} APIResponse[pricing.Breakdown]
// @Failure      400 {object} ErrorResponse
// @Router       /pricing/quote [post]
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	breakdown, err := h.quoter.Quote(pricing.Input{
		BaseCost:      toDecimal(req.BaseCost),
		MarkupRate:    toDecimal(req.MarkupRate),
		AffiliateRate: toDecimal(req.AffiliateRate),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}
