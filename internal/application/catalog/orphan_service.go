package catalog

import (
	"context"

	"github.com/beezio/marketplace/internal/domain/catalog"
)

// OrphanService lists products a client fallback wrote without their
// supplier link, so an operator can repair or delete them.
type OrphanService struct {
	productRepo catalog.ProductRepository
	limit       int
}

// NewOrphanService creates a new OrphanService. limit caps one listing.
func NewOrphanService(productRepo catalog.ProductRepository, limit int) *OrphanService {
	return &OrphanService{productRepo: productRepo, limit: limit}
}

// List returns the newest orphaned products
func (s *OrphanService) List(ctx context.Context) ([]OrphanResponse, error) {
	products, err := s.productRepo.FindOrphans(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	return ToOrphanResponses(products), nil
}
