package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	before := map[string]any{"quantity": int64(100), "type": "restock", "notes": "x"}
	after := map[string]any{"quantity": int64(80), "type": "restock", "club": "a"}

	got := Diff(before, after)

	assert.Equal(t, map[string]any{"old": int64(100), "new": int64(80)}, got["quantity"])
	assert.Equal(t, map[string]any{"old": "x", "new": nil}, got["notes"])
	assert.Equal(t, map[string]any{"old": nil, "new": "a"}, got["club"])
	assert.NotContains(t, got, "type")
}
