package tonaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// кошелёк TON Foundation, обе записи указывают на один адрес
const (
	friendlyAddr = "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"
	rawAddr      = "0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec302e97fbd7269d1e1a"
)

func TestNormalize_FriendlyAndRawMatch(t *testing.T) {
	fromFriendly, err := Normalize(friendlyAddr)
	require.NoError(t, err)

	fromRaw, err := Normalize(rawAddr)
	require.NoError(t, err)

	assert.Equal(t, rawAddr, fromFriendly)
	assert.Equal(t, fromFriendly, fromRaw)
}

func TestNormalize_TrimsWhitespace(t *testing.T) {
	got, err := Normalize("  " + rawAddr + "\n")
	require.NoError(t, err)
	assert.Equal(t, rawAddr, got)
}

func TestNormalize_EmptyAddress(t *testing.T) {
	_, err := Normalize("   ")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestNormalize_Garbage(t *testing.T) {
	_, err := Normalize("not-an-address")
	assert.Error(t, err)
}
