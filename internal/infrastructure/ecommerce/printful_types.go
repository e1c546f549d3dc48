package ecommerce

import "encoding/json"

// ---------------------------------------------------------------------------
// Printful API Response Types
// ---------------------------------------------------------------------------

// PrintfulEnvelope is the wrapper around every Printful response
type PrintfulEnvelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *PrintfulError  `json:"error,omitempty"`
}

// PrintfulError describes a failed Printful call
type PrintfulError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// PrintfulCatalogProduct is one blank product in the Printful catalog
type PrintfulCatalogProduct struct {
	ID             int64  `json:"id"`
	MainCategoryID int64  `json:"main_category_id"`
	Type           string `json:"type"`
	TypeName       string `json:"type_name"`
	Title          string `json:"title"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Image          string `json:"image"`
	VariantCount   int    `json:"variant_count"`
	Currency       string `json:"currency"`
	Description    string `json:"description"`
	IsDiscontinued bool   `json:"is_discontinued"`
}

// PrintfulVariant is a purchasable variant (size/color) of a catalog product
type PrintfulVariant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	InStock   bool   `json:"in_stock"`
}

// PrintfulProductDetail is the result of GET /products/{id}
type PrintfulProductDetail struct {
	Product  PrintfulCatalogProduct `json:"product"`
	Variants []PrintfulVariant      `json:"variants"`
}
