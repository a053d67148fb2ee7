package scope

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
)

type stubClubs struct {
	owned map[string][]id.ID
	err   error
}

func (s stubClubs) ListIDsByOwner(_ context.Context, ownerID string) ([]id.ID, error) {
	return s.owned[ownerID], s.err
}

func TestMultiple_DeduplicatesKeepingOrder(t *testing.T) {
	a, b := id.New(), id.New()

	s := Multiple(a, b, a)

	assert.Equal(t, []id.ID{a, b}, s.IDs())
	assert.Equal(t, KindMultiple, s.Kind())
	assert.False(t, s.IsSingle())
}

func TestScope_Key_IsOrderIndependent(t *testing.T) {
	a, b := id.New(), id.New()
	assert.Equal(t, Multiple(a, b).Key(), Multiple(b, a).Key())
	assert.NotEqual(t, Single(a).Key(), Multiple(a).Key())
	assert.Equal(t, "multiple:-", Multiple().Key())
}

func TestResolver_Resolve(t *testing.T) {
	a, b, c := id.New(), id.New(), id.New()
	clubs := stubClubs{owned: map[string][]id.ID{
		"owner-1": {a, b},
		"owner-2": {c},
	}}
	r := NewResolver(clubs)
	ctx := context.Background()

	t.Run("global selects only owned clubs", func(t *testing.T) {
		s, err := r.Resolve(ctx, "owner-1", "global")
		require.NoError(t, err)
		assert.Equal(t, KindMultiple, s.Kind())
		assert.True(t, s.Contains(a))
		assert.True(t, s.Contains(b))
		assert.False(t, s.Contains(c))
	})

	t.Run("owned id is single", func(t *testing.T) {
		s, err := r.Resolve(ctx, "owner-1", b.String())
		require.NoError(t, err)
		clubID, ok := s.ClubID()
		assert.True(t, ok)
		assert.Equal(t, b, clubID)
	})

	t.Run("foreign id is forbidden", func(t *testing.T) {
		_, err := r.Resolve(ctx, "owner-1", c.String())
		assert.Equal(t, http.StatusForbidden, apperror.GetHTTPStatus(err))
	})

	t.Run("missing selector is a validation error", func(t *testing.T) {
		_, err := r.Resolve(ctx, "owner-1", "  ")
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("malformed selector degrades to empty", func(t *testing.T) {
		s, err := r.Resolve(ctx, "owner-1", "not-a-uuid")
		require.NoError(t, err)
		assert.True(t, s.IsEmpty())
	})

	t.Run("owner without clubs gets empty global", func(t *testing.T) {
		s, err := r.Resolve(ctx, "nobody", Global)
		require.NoError(t, err)
		assert.True(t, s.IsEmpty())
	})
}

func TestResolver_ResolveClub(t *testing.T) {
	a := id.New()
	r := NewResolver(stubClubs{owned: map[string][]id.ID{"owner-1": {a}}})
	ctx := context.Background()

	got, err := r.ResolveClub(ctx, "owner-1", a.String())
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = r.ResolveClub(ctx, "owner-1", "global")
	assert.True(t, apperror.IsValidation(err))

	_, err = r.ResolveClub(ctx, "owner-1", "")
	assert.True(t, apperror.IsValidation(err))

	_, err = r.ResolveClub(ctx, "owner-1", id.New().String())
	assert.Equal(t, http.StatusForbidden, apperror.GetHTTPStatus(err))
}

func TestResolver_PropagatesSourceError(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(stubClubs{err: boom})

	_, err := r.Resolve(context.Background(), "owner-1", Global)
	assert.ErrorIs(t, err, boom)
}
