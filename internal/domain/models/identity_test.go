package models

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRoundTrip(t *testing.T) {
	id := NewIdentity()
	require.False(t, id.IsAnonymous())

	parsed, err := ParseIdentity(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseIdentityRejectsNonCanonical(t *testing.T) {
	id := NewIdentity()

	for _, s := range []string{
		"",
		"alice",
		strings.ToUpper(id.String()),
		"{" + id.String() + "}",
		"urn:uuid:" + id.String(),
		strings.ReplaceAll(id.String(), "-", ""),
	} {
		_, err := ParseIdentity(s)
		assert.ErrorIs(t, err, types.ErrInvalidIdentity, s)
	}
}

func TestAnonymous(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.Equal(t, Anonymous, CallerFromContext(context.Background()))

	id := NewIdentity()
	assert.Equal(t, id, CallerFromContext(WithCaller(context.Background(), id)))
}

func TestIdentityAsJSONMapKey(t *testing.T) {
	a, b := NewIdentity(), NewIdentity()
	in := LedgerState{Balances: map[Identity]uint64{a: 10, b: 5}, IssuedSupply: 15}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"`+a.String()+`":10`)

	var out LedgerState
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
