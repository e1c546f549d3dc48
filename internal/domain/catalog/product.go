package catalog

import (
	"strings"

	"github.com/beezio/marketplace/internal/domain/pricing"
	"github.com/beezio/marketplace/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// PriceSnapshot is the pricing breakdown frozen onto a product at import time.
type PriceSnapshot struct {
	BaseCost            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SellerProfit        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AffiliateCommission decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RecruiterCommission decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PlatformFee         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ProcessorFee        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	FinalPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MarkupRate          decimal.Decimal `gorm:"type:numeric(7,3);not null"`
	AffiliateRate       decimal.Decimal `gorm:"type:numeric(7,3);not null"`
	Currency            string          `gorm:"type:varchar(3);not null"`
}

// NewPriceSnapshot copies a breakdown and the per-product rates that produced it.
func NewPriceSnapshot(b pricing.Breakdown, in pricing.Input) PriceSnapshot {
	return PriceSnapshot{
		BaseCost:            b.BaseCost,
		SellerProfit:        b.SellerProfit,
		AffiliateCommission: b.AffiliateCommission,
		RecruiterCommission: b.RecruiterCommission,
		PlatformFee:         b.PlatformFee,
		ProcessorFee:        b.ProcessorFee,
		FinalPrice:          b.FinalPrice,
		MarkupRate:          in.MarkupRate,
		AffiliateRate:       in.AffiliateRate,
		Currency:            b.Currency,
	}
}

// ImportedProduct is a sellable product created from an external record. The
// core never mutates it after creation; re-importing the same external id
// creates a new record.
type ImportedProduct struct {
	shared.BaseEntity
	OwnerID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Title       string        `gorm:"type:varchar(255);not null"`
	Slug        string        `gorm:"type:varchar(300);not null;uniqueIndex"`
	Description string        `gorm:"type:text"`
	Images      []string      `gorm:"serializer:json;type:jsonb"`
	SKU         string        `gorm:"type:varchar(100)"`
	Stock       *int          `gorm:"default:null"`
	Pricing     PriceSnapshot `gorm:"embedded;embeddedPrefix:price_"`
	IsActive    bool          `gorm:"not null;default:true"`
	IsListed    bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ImportedProduct) TableName() string {
	return "imported_products"
}

// ProductDraft carries everything needed to create an ImportedProduct
type ProductDraft struct {
	OwnerID     uuid.UUID
	CategoryID  uuid.UUID
	Title       string
	Description string
	Images      []string
	SKU         string
	Stock       *int
	Pricing     PriceSnapshot
}

// NewImportedProduct validates a draft and builds the product record
func NewImportedProduct(d ProductDraft) (*ImportedProduct, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if d.OwnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Product owner is required")
	}
	if d.CategoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if d.Pricing.FinalPrice.IsNegative() || d.Pricing.Currency == "" {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price snapshot is incomplete")
	}
	if runes := []rune(title); len(runes) > 255 {
		title = string(runes[:255])
	}

	p := &ImportedProduct{
		BaseEntity:  shared.NewBaseEntity(),
		OwnerID:     d.OwnerID,
		CategoryID:  d.CategoryID,
		Title:       title,
		Description: d.Description,
		Images:      append([]string(nil), d.Images...),
		SKU:         d.SKU,
		Stock:       d.Stock,
		Pricing:     d.Pricing,
		IsActive:    true,
		IsListed:    true,
	}
	// Same title may be imported many times; the id suffix keeps slugs unique.
	p.Slug = slug.Make(title) + "-" + p.ID.String()[:8]
	return p, nil
}

// SupplierLink ties an imported product to the external record it came from.
type SupplierLink struct {
	shared.BaseEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider    string    `gorm:"type:varchar(40);not null;index:idx_supplier_link_external,priority:1"`
	ExternalID  string    `gorm:"type:varchar(100);not null;index:idx_supplier_link_external,priority:2"`
	ExternalSKU string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SupplierLink) TableName() string {
	return "supplier_links"
}

// NewSupplierLink links productID to provider's externalID
func NewSupplierLink(productID uuid.UUID, provider, externalID, externalSKU string) (*SupplierLink, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Supplier link requires a product")
	}
	if provider == "" || externalID == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier link requires provider and external id")
	}
	return &SupplierLink{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Provider:    provider,
		ExternalID:  externalID,
		ExternalSKU: externalSKU,
	}, nil
}
