package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_InflateRoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte(`{"quantity":{"old":100,"new":80}}`), 500)
	e := AuditEntry{
		ChangesCompressed: svc.encoder.EncodeAll(payload, nil),
		CompressionAlgo:   CompressionZstd,
	}
	require.Less(t, len(e.ChangesCompressed), len(payload))

	require.NoError(t, svc.inflate(&e))
	assert.Equal(t, payload, []byte(e.Changes))
	assert.Nil(t, e.ChangesCompressed)
}

func TestAuditService_InflateSkipsPlainEntries(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	e := AuditEntry{Changes: []byte(`{}`), CompressionAlgo: CompressionNone}
	require.NoError(t, svc.inflate(&e))
	assert.Equal(t, `{}`, string(e.Changes))
}
