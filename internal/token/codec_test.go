package token

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeRaw(t *testing.T, inner string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(inner))
}

func TestDecode_Basic(t *testing.T) {
	enc := encodeRaw(t, "anon=1&key=abc123&ts=1700000000")

	params := Decode(enc)

	assert.Equal(t, "1", params[ParamActivate])
	assert.Equal(t, "abc123", params[ParamKey])
	assert.Equal(t, "1700000000", params[ParamTimestamp])
}

func TestDecode_InvalidBase64_FailsClosed(t *testing.T) {
	params := Decode("not-base64!!!")

	assert.Empty(t, params)
}

func TestDecode_EmptyInput(t *testing.T) {
	params := Decode("")

	assert.Empty(t, params)
}

func TestDecode_DuplicateKeys_LastWins(t *testing.T) {
	enc := encodeRaw(t, "key=first&key=second")

	params := Decode(enc)

	assert.Equal(t, "second", params[ParamKey])
}

func TestDecode_ValuelessSegment(t *testing.T) {
	enc := encodeRaw(t, "anon=1&flag&key=k")

	params := Decode(enc)

	v, ok := params["flag"]
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, "k", params[ParamKey])
}

func TestDecode_PercentDecodedValues(t *testing.T) {
	enc := encodeRaw(t, "cohort=year%2012&key=a%2Bb")

	params := Decode(enc)

	assert.Equal(t, "year 12", params[ParamCohort])
	// '+' is literal, not a space
	assert.Equal(t, "a+b", params[ParamKey])
}

func TestDecode_IgnoresUnparseableSegments(t *testing.T) {
	enc := encodeRaw(t, "&=bare&key=k&&")

	params := Decode(enc)

	assert.Equal(t, RawParams{"key": "k"}, params)
}

func TestEncode_RoundTrip(t *testing.T) {
	in := RawParams{
		ParamActivate:  "1",
		ParamKey:       "abc123",
		ParamTimestamp: "1700000000",
	}

	out := Decode(Encode(in))

	require.Equal(t, in, out)
}

func TestEncode_RoundTrip_ReservedCharacters(t *testing.T) {
	in := RawParams{
		ParamKey:    "a&b=c d/e",
		ParamCohort: "100%",
	}

	out := Decode(Encode(in))

	require.Equal(t, in, out)
	// An embedded '&' must not split the value into a spurious parameter
	_, leaked := out["b"]
	assert.False(t, leaked)
}

func TestEncode_EscapesStructuralCharacters(t *testing.T) {
	enc := Encode(RawParams{ParamKey: "a&b=c d+e"})

	inner, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	assert.Equal(t, "key=a%26b%3Dc%20d%2Be", string(inner))
}

func TestActive(t *testing.T) {
	assert.True(t, RawParams{ParamActivate: "1"}.Active())
	assert.False(t, RawParams{ParamActivate: "true"}.Active())
	assert.False(t, RawParams{ParamActivate: ""}.Active())
	assert.False(t, RawParams{}.Active())
}
