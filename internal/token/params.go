package token

import (
	"errors"
	"strconv"
)

// ErrMissingParams is returned by ParseParams when a required parameter is
// absent from the decoded token.
var ErrMissingParams = errors.New("token: required parameters missing")

// Params is the typed projection of a decoded token. It is constructed only
// from a mapping that passed the presence gate, so Key and Timestamp are
// always populated; CourseID and Cohort carry defaults when absent.
type Params struct {
	// Key is the opaque per-user handle the referring system minted.
	Key string

	// Timestamp is the token generation time in UNIX seconds.
	Timestamp int64

	// CourseID is the optional post-login course destination. Zero when the
	// parameter is absent or does not parse as a positive integer.
	CourseID int64

	// Cohort optionally overrides the configured enrollment cohort.
	Cohort string
}

// ParseParams applies the presence gate and builds the typed projection.
// Presence means the key exists in the mapping, not that its value is
// non-empty; a `ts` that is present but non-numeric parses as zero and is
// left for the freshness gate to reject.
func ParseParams(raw RawParams) (Params, error) {
	key, hasKey := raw[ParamKey]
	ts, hasTS := raw[ParamTimestamp]
	if !hasKey || !hasTS {
		return Params{}, ErrMissingParams
	}

	p := Params{
		Key:    key,
		Cohort: raw[ParamCohort],
	}
	p.Timestamp, _ = strconv.ParseInt(ts, 10, 64)

	// A course is considered requested only when it decodes as a positive
	// integer; anything else routes to the default landing page.
	if course, err := strconv.ParseInt(raw[ParamCourse], 10, 64); err == nil && course > 0 {
		p.CourseID = course
	}
	return p, nil
}
