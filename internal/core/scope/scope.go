// Package scope models which clubs a read or report covers.
//
// A Scope is either a single club or a set of clubs. An empty set is valid
// and makes every query return nothing, which is how malformed club
// selectors degrade.
package scope

import (
	"context"
	"slices"
	"strings"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/pkg/logger"
)

// Global is the selector that expands to every club of the caller.
const Global = "global"

// Kind tags the scope variant.
type Kind uint8

const (
	KindSingle Kind = iota + 1
	KindMultiple
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// Scope is an immutable club selector.
type Scope struct {
	kind Kind
	ids  []id.ID
}

// Single scopes to exactly one club.
func Single(clubID id.ID) Scope {
	return Scope{kind: KindSingle, ids: []id.ID{clubID}}
}

// Multiple scopes to a set of clubs. Duplicates are dropped, first occurrence wins.
func Multiple(clubIDs ...id.ID) Scope {
	seen := make(map[id.ID]struct{}, len(clubIDs))
	out := make([]id.ID, 0, len(clubIDs))
	for _, c := range clubIDs {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return Scope{kind: KindMultiple, ids: out}
}

// Kind returns the variant.
func (s Scope) Kind() Kind { return s.kind }

// IsSingle reports whether the scope targets one club.
func (s Scope) IsSingle() bool { return s.kind == KindSingle }

// IsEmpty reports whether no club is selected.
func (s Scope) IsEmpty() bool { return len(s.ids) == 0 }

// IDs returns a copy of the selected club ids.
func (s Scope) IDs() []id.ID { return slices.Clone(s.ids) }

// ClubID returns the club of a single scope.
func (s Scope) ClubID() (id.ID, bool) {
	if s.kind != KindSingle || len(s.ids) == 0 {
		return id.ID{}, false
	}
	return s.ids[0], true
}

// Contains reports whether clubID is selected.
func (s Scope) Contains(clubID id.ID) bool {
	return slices.Contains(s.ids, clubID)
}

// Key is a stable string form used for cache keys.
func (s Scope) Key() string {
	if s.IsEmpty() {
		return s.kind.String() + ":-"
	}
	parts := id.Strings(s.ids)
	slices.Sort(parts)
	return s.kind.String() + ":" + strings.Join(parts, ",")
}

// ClubSource lists the clubs an owner may access.
type ClubSource interface {
	ListIDsByOwner(ctx context.Context, ownerID string) ([]id.ID, error)
}

// Resolver turns a raw club selector into a Scope for the calling owner.
type Resolver struct {
	clubs ClubSource
}

// NewResolver creates a scope resolver.
func NewResolver(clubs ClubSource) *Resolver {
	return &Resolver{clubs: clubs}
}

// Resolve interprets raw for ownerID:
//   - "" is a missing field;
//   - "global" selects every owned club;
//   - a malformed id selects nothing;
//   - a well-formed id not owned by the caller is forbidden.
func (r *Resolver) Resolve(ctx context.Context, ownerID, raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Scope{}, apperror.NewMissingField("club")
	}

	owned, err := r.clubs.ListIDsByOwner(ctx, ownerID)
	if err != nil {
		return Scope{}, err
	}

	if strings.EqualFold(raw, Global) {
		return Multiple(owned...), nil
	}

	clubID, err := id.Parse(raw)
	if err != nil {
		logger.Warn(ctx, "malformed club selector, scope is empty", "club", raw)
		return Multiple(), nil
	}

	if !slices.Contains(owned, clubID) {
		return Scope{}, apperror.NewForbidden("club is not accessible").WithDetail("club", raw)
	}
	return Single(clubID), nil
}

// ResolveClub requires raw to name exactly one owned club.
// Used by writes, where "global" and malformed ids are rejected.
func (r *Resolver) ResolveClub(ctx context.Context, ownerID, raw string) (id.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return id.ID{}, apperror.NewMissingField("club")
	}
	clubID, err := id.Parse(raw)
	if err != nil {
		return id.ID{}, apperror.NewInvalidInput("club", "must be a club id")
	}

	owned, err := r.clubs.ListIDsByOwner(ctx, ownerID)
	if err != nil {
		return id.ID{}, err
	}
	if !slices.Contains(owned, clubID) {
		return id.ID{}, apperror.NewForbidden("club is not accessible").WithDetail("club", raw)
	}
	return clubID, nil
}
