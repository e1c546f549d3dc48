//go:build integration

package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/domain/pricing"
	"github.com/beezio/marketplace/internal/infrastructure/migration"
	"github.com/beezio/marketplace/internal/infrastructure/persistence"
)

func startPostgres(t *testing.T) *persistence.Database {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("marketplace"),
		postgres.WithUsername("marketplace"),
		postgres.WithPassword("marketplace"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return &persistence.Database{DB: db}
}

func importFixtures(t *testing.T, db *persistence.Database, ownerID uuid.UUID) (*catalog.ImportedProduct, *catalog.SupplierLink) {
	t.Helper()
	fallback, err := persistence.NewGormCategoryRepository(db.DB).FindFallback(context.Background())
	require.NoError(t, err)

	in := pricing.Input{
		BaseCost:      decimal.RequireFromString("9.99"),
		MarkupRate:    decimal.NewFromInt(80),
		AffiliateRate: decimal.NewFromInt(15),
	}
	b, err := pricing.ComputeBreakdown(in, pricing.DefaultPolicy())
	require.NoError(t, err)

	product, err := catalog.NewImportedProduct(catalog.ProductDraft{
		OwnerID:    ownerID,
		CategoryID: fallback.ID,
		Title:      "Canvas Tote",
		Images:     []string{"https://cdn.example.com/tote.png"},
		Pricing:    catalog.NewPriceSnapshot(b, in),
	})
	require.NoError(t, err)
	link, err := catalog.NewSupplierLink(product.ID, "printful", "88", "pf-88")
	require.NoError(t, err)
	return product, link
}

func TestProcedureImporter_Postgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	owner, err := catalog.NewOwner("seller@example.com", "", catalog.OwnerRoleSeller)
	require.NoError(t, err)
	owner, err = persistence.NewGormOwnerRepository(db.DB).Upsert(ctx, owner)
	require.NoError(t, err)

	importer := persistence.NewProcedureImporter(db.DB, true)

	t.Run("writes product and link", func(t *testing.T) {
		product, link := importFixtures(t, db, owner.ID)

		id, err := importer.ImportProduct(ctx, product, link)
		require.NoError(t, err)
		assert.Equal(t, product.ID, id)

		imported, err := persistence.NewGormProductRepository(db.DB).ImportedExternalIDs(ctx, "printful", []string{"88"})
		require.NoError(t, err)
		assert.True(t, imported["88"])
	})

	t.Run("unknown owner is rejected", func(t *testing.T) {
		product, link := importFixtures(t, db, uuid.New())

		_, err := importer.ImportProduct(ctx, product, link)
		assert.ErrorIs(t, err, importing.ErrPersistenceRejected)
	})

	t.Run("dropped function is infrastructure absent", func(t *testing.T) {
		require.NoError(t, db.DB.Exec(`ALTER FUNCTION import_supplier_product RENAME TO import_supplier_product_off`).Error)
		t.Cleanup(func() {
			_ = db.DB.Exec(`ALTER FUNCTION import_supplier_product_off RENAME TO import_supplier_product`).Error
		})

		product, link := importFixtures(t, db, owner.ID)
		_, err := importer.ImportProduct(ctx, product, link)
		assert.ErrorIs(t, err, importing.ErrInfrastructureAbsent)
	})
}

func TestTransactionImporter_Postgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	owner, err := catalog.NewOwner("tx@example.com", "", catalog.OwnerRoleSeller)
	require.NoError(t, err)
	owner, err = persistence.NewGormOwnerRepository(db.DB).Upsert(ctx, owner)
	require.NoError(t, err)

	product, link := importFixtures(t, db, owner.ID)
	id, err := persistence.NewTransactionImporter(db).ImportProduct(ctx, product, link)
	require.NoError(t, err)

	stored, err := persistence.NewGormProductRepository(db.DB).FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, product.Pricing.FinalPrice.Equal(stored.Pricing.FinalPrice))
}
