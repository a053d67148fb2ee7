// Package entity provides core domain entities.
package entity

import (
	"context"
	"time"

	"clubledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields every persisted row carries.
type BaseEntity struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a BaseEntity with a fresh UUIDv7 and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// ClubOwned is a BaseEntity that belongs to one club.
type ClubOwned struct {
	BaseEntity
	ClubID id.ID `db:"club_id" json:"club"`
}

// NewClubOwned creates a ClubOwned for clubID.
func NewClubOwned(clubID id.ID) ClubOwned {
	return ClubOwned{BaseEntity: NewBaseEntity(), ClubID: clubID}
}

// GetID returns the row id.
func (b BaseEntity) GetID() id.ID { return b.ID }

// GetClubID returns the owning club.
func (c ClubOwned) GetClubID() id.ID { return c.ClubID }
