package decoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleEnvelope is a real connector record: the element is the base64
// encoding of a customer JSON payload.
const sampleEnvelope = `{"key":"Q3VzdG9tZXI=","existType":"NONE","ch":"false","incr":false,"zSetEntries":[{"element":"eyJjdXN0b21lck5hbWUiOiJTYW0gVGVzdCIsImVtYWlsIjoic2FtLnRlc3RAdGVzdC5jb20iLCJwaG9uZSI6IjgwMTU1NTEyMTIiLCJiaXJ0aERheSI6IjIwMDEtMDEtMDMifQ==","score":"0.0"}]}`

func TestDecodeEnvelope(t *testing.T) {
	ev, err := DecodeEnvelope([]byte(sampleEnvelope))
	require.NoError(t, err)

	assert.Equal(t, "Q3VzdG9tZXI=", ev.Key)
	assert.Equal(t, "NONE", ev.ExistType)
	assert.Equal(t, "false", ev.Ch)
	assert.False(t, ev.Incr)
	assert.Nil(t, ev.Value)
	assert.Nil(t, ev.ExpiredType)
	assert.Nil(t, ev.ExpiredValue)

	require.Len(t, ev.Entries, 1)
	assert.Equal(t, "0.0", ev.Entries[0].Score)
}

func TestDecodeEnvelope_IgnoresUnknownFields(t *testing.T) {
	raw := `{"key":"a","existType":"NONE","somethingNew":42,"nested":{"x":1}}`
	ev, err := DecodeEnvelope([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "a", ev.Key)
}

func TestDecodeEnvelope_OptionalFields(t *testing.T) {
	raw := `{"key":"a","value":"v","expiredType":"ttl","expiredValue":"10","existType":"NONE"}`
	ev, err := DecodeEnvelope([]byte(raw))
	require.NoError(t, err)

	require.NotNil(t, ev.Value)
	assert.Equal(t, "v", *ev.Value)
	require.NotNil(t, ev.ExpiredType)
	assert.Equal(t, "ttl", *ev.ExpiredType)
	require.NotNil(t, ev.ExpiredValue)
	assert.Equal(t, "10", *ev.ExpiredValue)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{"key":`},
		{name: "truncated", raw: `{"key":"a","zSetEntries":[{"element"`},
		{name: "array", raw: `[1,2,3]`},
		{name: "string", raw: `"not an envelope"`},
		{name: "number", raw: `42`},
		{name: "null", raw: `null`},
		{name: "empty", raw: ``},
		{name: "whitespace", raw: "  \n\t"},
		{name: "binary garbage", raw: "\x00\x01\x02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedEnvelope),
				"expected ErrMalformedEnvelope, got %v", err)
		})
	}
}

func TestDecodeEnvelope_RedundantTwinIgnored(t *testing.T) {
	// The connector emits a lowercase twin of the entries array. Only
	// the canonical zSetEntries field feeds the pipeline.
	t.Run("only twin present", func(t *testing.T) {
		raw := `{"key":"a","existType":"NONE","zsetEntries":[{"element":"dGVzdA==","score":"0.0"}]}`
		ev, err := DecodeEnvelope([]byte(raw))
		require.NoError(t, err)
		assert.Empty(t, ev.Entries)
	})

	t.Run("both present", func(t *testing.T) {
		raw := `{"key":"a","existType":"NONE",` +
			`"zSetEntries":[{"element":"Y2Fub25pY2Fs","score":"1.0"}],` +
			`"zsetEntries":[{"element":"dHdpbg==","score":"2.0"}]}`
		ev, err := DecodeEnvelope([]byte(raw))
		require.NoError(t, err)
		require.Len(t, ev.Entries, 1)
		assert.Equal(t, "Y2Fub25pY2Fs", ev.Entries[0].Element)
	})
}

func TestExtractElement(t *testing.T) {
	ev, err := DecodeEnvelope([]byte(sampleEnvelope))
	require.NoError(t, err)

	element, err := ExtractElement(ev)
	require.NoError(t, err)
	assert.Equal(t, ev.Entries[0].Element, element)
}

func TestExtractElement_OnlyIndexZero(t *testing.T) {
	raw := `{"key":"a","existType":"NONE","zSetEntries":[` +
		`{"element":"Zmlyc3Q=","score":"0.0"},` +
		`{"element":"c2Vjb25k","score":"1.0"},` +
		`{"element":"dGhpcmQ=","score":"2.0"}]}`
	ev, err := DecodeEnvelope([]byte(raw))
	require.NoError(t, err)

	element, err := ExtractElement(ev)
	require.NoError(t, err)
	assert.Equal(t, "Zmlyc3Q=", element)
}

func TestExtractElement_Empty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty array", raw: `{"key":"a","existType":"NONE","zSetEntries":[]}`},
		{name: "absent field", raw: `{"key":"a","existType":"NONE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEnvelope([]byte(tt.raw))
			require.NoError(t, err)

			_, err = ExtractElement(ev)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingElement),
				"expected ErrMissingElement, got %v", err)
		})
	}
}
