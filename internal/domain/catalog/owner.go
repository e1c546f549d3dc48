package catalog

import (
	"strings"

	"github.com/beezio/marketplace/internal/domain/shared"
)

// OwnerRole is the marketplace role of an account that owns products
type OwnerRole string

const (
	OwnerRoleAdmin  OwnerRole = "admin"
	OwnerRoleSeller OwnerRole = "seller"
)

// IsValid returns true if the role is known
func (r OwnerRole) IsValid() bool {
	switch r {
	case OwnerRoleAdmin, OwnerRoleSeller:
		return true
	}
	return false
}

// Owner is the account record that owns imported products. Identity is the
// caller's stable login identity (normally an email address).
type Owner struct {
	shared.BaseEntity
	Identity    string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string    `gorm:"type:varchar(200)"`
	Role        OwnerRole `gorm:"type:varchar(20);not null;default:'seller'"`
}

// TableName returns the table name for GORM
func (Owner) TableName() string {
	return "owners"
}

// NewOwner creates a minimal owner for a first-time caller
func NewOwner(identity, displayName string, role OwnerRole) (*Owner, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return nil, shared.NewDomainError("INVALID_IDENTITY", "Owner identity cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown owner role: "+string(role))
	}
	if displayName == "" {
		displayName = identity
		if at := strings.IndexByte(identity, '@'); at > 0 {
			displayName = identity[:at]
		}
	}
	return &Owner{
		BaseEntity:  shared.NewBaseEntity(),
		Identity:    identity,
		DisplayName: strings.TrimSpace(displayName),
		Role:        role,
	}, nil
}

// NormalizeIdentity lowercases and trims an identity for comparison and storage
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
