package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_ItemRoundTrip(t *testing.T) {
	payload, err := marshalItem(map[string]any{"op": "put", "n": 7})
	require.NoError(t, err)

	got, err := unmarshalItem(payload)
	require.NoError(t, err)

	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, m["n"])
	assert.Equal(t, "put", m["op"])
}

func TestCodec_BulkRoundTrip(t *testing.T) {
	items := []any{"a", 1, map[string]any{"k": "v"}}
	payload, err := marshalBulk(items)
	require.NoError(t, err)

	got, err := unmarshalBulk(payload)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0])
}

func TestCodec_EmptyBulkRoundTrip(t *testing.T) {
	payload, err := marshalBulk(nil)
	require.NoError(t, err)

	got, err := unmarshalBulk(payload)
	require.NoError(t, err)
	assert.Empty(t, got)
}
