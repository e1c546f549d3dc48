package ecommerce

import (
	"encoding/json"
	"errors"
)

// Errors for Shopify configuration and requests
var (
	ErrShopifyInvalidAPIVersion = errors.New("shopify: api version must look like YYYY-MM")
	ErrShopifyMissingStore      = errors.New("shopify: store domain is required")
)

// ---------------------------------------------------------------------------
// GraphQL envelope
// ---------------------------------------------------------------------------

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ---------------------------------------------------------------------------
// Product shapes
// ---------------------------------------------------------------------------

// ShopifyProduct is the product selection used by list and detail queries
type ShopifyProduct struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Handle         string `json:"handle"`
	ProductType    string `json:"productType"`
	Description    string `json:"description"`
	TotalInventory *int   `json:"totalInventory"`
	Images         struct {
		Nodes []struct {
			URL string `json:"url"`
		} `json:"nodes"`
	} `json:"images"`
	Variants struct {
		Nodes []struct {
			SKU   string `json:"sku"`
			Price string `json:"price"`
		} `json:"nodes"`
	} `json:"variants"`
}

// ShopifyPageInfo is the Relay cursor info of a connection
type ShopifyPageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ShopifyProductsData is the data of the products list query
type ShopifyProductsData struct {
	Shop struct {
		CurrencyCode string `json:"currencyCode"`
	} `json:"shop"`
	Products struct {
		PageInfo ShopifyPageInfo  `json:"pageInfo"`
		Nodes    []ShopifyProduct `json:"nodes"`
	} `json:"products"`
	ProductsCount *struct {
		Count int `json:"count"`
	} `json:"productsCount"`
}

// ShopifyCursorData is the data of the cursor-only skip query
type ShopifyCursorData struct {
	Products struct {
		PageInfo ShopifyPageInfo `json:"pageInfo"`
	} `json:"products"`
}

// ShopifyProductData is the data of the single product query
type ShopifyProductData struct {
	Shop struct {
		CurrencyCode string `json:"currencyCode"`
	} `json:"shop"`
	Product *ShopifyProduct `json:"product"`
}

const shopifyProductFields = `
      id
      title
      handle
      productType
      description
      totalInventory
      images(first: 10) { nodes { url } }
      variants(first: 1, sortKey: POSITION) { nodes { sku price } }`

const shopifyProductsQuery = `query Products($first: Int!, $after: String, $query: String) {
  shop { currencyCode }
  products(first: $first, after: $after, query: $query, sortKey: ID) {
    pageInfo { hasNextPage endCursor }
    nodes {` + shopifyProductFields + `
    }
  }
  productsCount(query: $query) { count }
}`

const shopifyCursorQuery = `query ProductCursor($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query, sortKey: ID) {
    pageInfo { hasNextPage endCursor }
  }
}`

const shopifyProductQuery = `query Product($id: ID!) {
  shop { currencyCode }
  product(id: $id) {` + shopifyProductFields + `
  }
}`
