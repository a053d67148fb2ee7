// Package club provides the Club catalog. A club is one storefront owned by
// a user; every ledger row, sale, product and expense belongs to a club.
package club

import (
	"context"
	"strings"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
)

// Club is a location owned by a user.
type Club struct {
	entity.BaseEntity

	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address"`
	OwnerID id.ID  `db:"owner_id" json:"owner"`

	// IsMain marks the owner's primary club. Products created there are
	// copied to the owner's other clubs.
	IsMain bool `db:"is_main" json:"isMain"`

	// Timezone is informational; reports use the business zone.
	Timezone string `db:"timezone" json:"timezone"`
}

// NewClub creates a club for ownerID.
func NewClub(ownerID id.ID, name, address string) *Club {
	return &Club{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Address:    strings.TrimSpace(address),
		OwnerID:    ownerID,
	}
}

// Validate implements entity.Validatable.
func (c *Club) Validate(_ context.Context) error {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if id.IsNil(c.OwnerID) {
		missing = append(missing, "owner")
	}
	if len(missing) > 0 {
		return apperror.NewMissingField(missing...)
	}
	if len(c.Name) > 200 {
		return apperror.NewInvalidInput("name", "at most 200 characters")
	}
	return nil
}
