package catalog

import (
	"strings"

	"github.com/beezio/marketplace/internal/domain/shared"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
)

// FallbackCategoryName is the catch-all category used when a label has no match
const FallbackCategoryName = "Other"

// Category is a marketplace category. Lookups go through NameKey, the Unicode
// case-folded form of Name.
type Category struct {
	shared.BaseEntity
	Name       string `gorm:"type:varchar(100);not null"`
	NameKey    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug       string `gorm:"type:varchar(120);not null"`
	IsFallback bool   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category. fallback marks the catch-all category.
func NewCategory(name string, fallback bool) (*Category, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		NameKey:    FoldName(name),
		Slug:       slug.Make(name),
		IsFallback: fallback,
	}, nil
}

// FoldName returns the comparison key for a category label: whitespace
// collapsed and Unicode case-folded, so "T-SHIRTS", " t-shirts " and
// "T-Shirts" share one key.
func FoldName(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}
