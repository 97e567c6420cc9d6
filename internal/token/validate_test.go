package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestValidator_FreshnessBoundary(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v, err := NewValidatorAt(300, "", fixedClock(now))
	require.NoError(t, err)

	assert.True(t, v.ValidTimestamp(now.Unix()), "current timestamp")
	assert.True(t, v.ValidTimestamp(now.Unix()-300), "exactly at the limit")
	assert.False(t, v.ValidTimestamp(now.Unix()-301), "one second past the limit")
	assert.False(t, v.ValidTimestamp(now.Unix()+1), "future timestamp")
}

func TestValidator_TimeoutDisabled(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v, err := NewValidatorAt(0, "", fixedClock(now))
	require.NoError(t, err)

	assert.True(t, v.ValidTimestamp(0))
	assert.True(t, v.ValidTimestamp(now.Unix()-1e9))
	assert.True(t, v.ValidTimestamp(now.Unix()+1e9))
}

func TestValidator_ZeroTimestampFailsWhenEnabled(t *testing.T) {
	// A non-numeric ts parses to zero upstream; with the gate enabled it
	// must read as ancient and fail.
	now := time.Unix(1700000000, 0)
	v, err := NewValidatorAt(300, "", fixedClock(now))
	require.NoError(t, err)

	assert.False(t, v.ValidTimestamp(0))
}

func TestValidator_EmptyPatternMatchesAny(t *testing.T) {
	v, err := NewValidator(0, "")
	require.NoError(t, err)

	assert.True(t, v.ValidKey("anything"))
	assert.True(t, v.ValidKey("abc123"))
}

func TestValidator_HexPattern(t *testing.T) {
	v, err := NewValidator(0, "^[0-9a-f]+$")
	require.NoError(t, err)

	assert.True(t, v.ValidKey("deadbeef"))
	assert.False(t, v.ValidKey("DEADBEEF"))
	assert.False(t, v.ValidKey("not-hex!"))
}

func TestValidator_StripsSlashDelimiters(t *testing.T) {
	v, err := NewValidator(0, "/^[0-9]+$/")
	require.NoError(t, err)

	assert.True(t, v.ValidKey("12345"))
	assert.False(t, v.ValidKey("12a45"))
}

func TestValidator_StripsOneSidedDelimiters(t *testing.T) {
	// A pattern configured with only one delimiter slash is treated the
	// same as a fully wrapped one
	for _, pattern := range []string{"/^[0-9]+$", "^[0-9]+$/"} {
		v, err := NewValidator(0, pattern)
		require.NoError(t, err, "pattern %q", pattern)

		assert.True(t, v.ValidKey("12345"), "pattern %q", pattern)
		assert.False(t, v.ValidKey("/12345"), "pattern %q", pattern)
	}
}

func TestValidator_BareSlashPatternMatchesAny(t *testing.T) {
	v, err := NewValidator(0, "//")
	require.NoError(t, err)

	assert.True(t, v.ValidKey("anything"))
}

func TestValidator_InvalidPattern(t *testing.T) {
	_, err := NewValidator(0, "([unclosed")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile key pattern")
}
