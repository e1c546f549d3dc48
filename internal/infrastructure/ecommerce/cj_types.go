package ecommerce

import "encoding/json"

// CJ result codes that mean the access token was rejected
const (
	cjCodeSuccess        = 200
	cjCodeInvalidToken   = 1600001
	cjCodeTokenExpired   = 1600003
	cjCodeNotFound       = 1600100
	cjCodeRateLimited    = 1600200
	cjSellPriceSeparator = "--"
)

// CJEnvelope is the common wrapper around every CJ response
type CJEnvelope struct {
	Code    int             `json:"code"`
	Result  bool            `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CJProduct is a product as returned by both the list and the query endpoints
type CJProduct struct {
	PID             string          `json:"pid"`
	ProductNameEn   string          `json:"productNameEn"`
	ProductSKU      string          `json:"productSku"`
	ProductImage    json.RawMessage `json:"productImage"`
	CategoryID      string          `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	SellPrice       string          `json:"sellPrice"`
	Description     string          `json:"description"`
	ProductImageSet []string        `json:"productImageSet,omitempty"`
	Variants        []CJVariant     `json:"variants,omitempty"`
}

// CJVariant is one purchasable variant of a CJ product
type CJVariant struct {
	VID          string  `json:"vid"`
	VariantSKU   string  `json:"variantSku"`
	VariantImage string  `json:"variantImage"`
	SellPrice    float64 `json:"variantSellPrice"`
}

// CJProductList is the data of the product list endpoint
type CJProductList struct {
	PageNum  int         `json:"pageNum"`
	PageSize int         `json:"pageSize"`
	Total    int         `json:"total"`
	List     []CJProduct `json:"list"`
}
