package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/infrastructure/config"
)

const importProcedureSQL = `SELECT import_supplier_product(
	@id, @owner_id, @category_id, @title, @slug, @description, @images, @sku, @stock,
	@base_cost, @seller_profit, @affiliate_commission, @recruiter_commission,
	@platform_fee, @processor_fee, @final_price, @markup_rate, @affiliate_rate, @currency,
	@is_active, @is_listed, @link_id, @provider, @external_id, @external_sku)`

// ProcedureImporter writes a product and its supplier link in one call to
// the import_supplier_product database function. The function runs the
// owner and category checks server side.
type ProcedureImporter struct {
	db      *gorm.DB
	enabled bool
}

var _ importing.ServerImporter = (*ProcedureImporter)(nil)

// NewProcedureImporter creates a ProcedureImporter. A disabled importer
// reports ErrInfrastructureAbsent without touching the database.
func NewProcedureImporter(db *gorm.DB, enabled bool) *ProcedureImporter {
	return &ProcedureImporter{db: db, enabled: enabled}
}

// ImportProduct calls the stored function and returns the product id it reports
func (p *ProcedureImporter) ImportProduct(ctx context.Context, product *catalog.ImportedProduct, link *catalog.SupplierLink) (uuid.UUID, error) {
	if !p.enabled {
		return uuid.Nil, fmt.Errorf("%w: server import disabled", importing.ErrInfrastructureAbsent)
	}

	images, err := json.Marshal(product.Images)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: encode images: %v", importing.ErrPersistenceRejected, err)
	}
	ps := product.Pricing
	args := map[string]any{
		"id":                   product.ID,
		"owner_id":             product.OwnerID,
		"category_id":          product.CategoryID,
		"title":                product.Title,
		"slug":                 product.Slug,
		"description":          product.Description,
		"images":               string(images),
		"sku":                  product.SKU,
		"stock":                product.Stock,
		"base_cost":            ps.BaseCost,
		"seller_profit":        ps.SellerProfit,
		"affiliate_commission": ps.AffiliateCommission,
		"recruiter_commission": ps.RecruiterCommission,
		"platform_fee":         ps.PlatformFee,
		"processor_fee":        ps.ProcessorFee,
		"final_price":          ps.FinalPrice,
		"markup_rate":          ps.MarkupRate,
		"affiliate_rate":       ps.AffiliateRate,
		"currency":             ps.Currency,
		"is_active":            product.IsActive,
		"is_listed":            product.IsListed,
		"link_id":              link.ID,
		"provider":             link.Provider,
		"external_id":          link.ExternalID,
		"external_sku":         link.ExternalSKU,
	}

	var id uuid.UUID
	if err := p.db.WithContext(ctx).Raw(importProcedureSQL, args).Row().Scan(&id); err != nil {
		return uuid.Nil, classifyServerError(err)
	}
	return id, nil
}

// TransactionImporter performs the product and link inserts inside one
// database transaction, for databases without the stored function.
type TransactionImporter struct {
	db *Database
}

var _ importing.ServerImporter = (*TransactionImporter)(nil)

// NewTransactionImporter creates a TransactionImporter
func NewTransactionImporter(db *Database) *TransactionImporter {
	return &TransactionImporter{db: db}
}

// ImportProduct inserts both rows or neither
func (t *TransactionImporter) ImportProduct(ctx context.Context, product *catalog.ImportedProduct, link *catalog.SupplierLink) (uuid.UUID, error) {
	err := t.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		link.ProductID = product.ID
		return tx.Create(link).Error
	})
	if err != nil {
		return uuid.Nil, classifyServerError(err)
	}
	return product.ID, nil
}

// NewServerImporter selects the server import path for mode.
func NewServerImporter(db *Database, mode string) (importing.ServerImporter, error) {
	switch mode {
	case config.ServerModeProcedure:
		return NewProcedureImporter(db.DB, true), nil
	case config.ServerModeTransaction:
		return NewTransactionImporter(db), nil
	case config.ServerModeDisabled:
		return NewProcedureImporter(db.DB, false), nil
	}
	return nil, fmt.Errorf("persistence: unknown server import mode %q", mode)
}

func classifyServerError(err error) error {
	if isInfrastructureMissing(err) {
		return fmt.Errorf("%w: %v", importing.ErrInfrastructureAbsent, err)
	}
	return fmt.Errorf("%w: %v", importing.ErrPersistenceRejected, err)
}
