package token

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validator applies the freshness and key-pattern gates. It is immutable
// after construction and safe for concurrent use.
type Validator struct {
	timeout int64
	pattern *regexp.Regexp
	now     func() time.Time
}

// NewValidator builds a Validator. timeout is the maximum token age in
// seconds; zero disables the freshness gate. pattern is the key allow-list
// expression; an empty pattern matches any key. A pattern wrapped in
// PCRE-style slash delimiters is accepted and unwrapped, since admins tend
// to copy those verbatim from other systems.
func NewValidator(timeout int64, pattern string) (*Validator, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("token: compile key pattern: %w", err)
	}
	return &Validator{
		timeout: timeout,
		pattern: re,
		now:     time.Now,
	}, nil
}

// NewValidatorAt is NewValidator with an injectable clock, for tests.
func NewValidatorAt(timeout int64, pattern string, now func() time.Time) (*Validator, error) {
	v, err := NewValidator(timeout, pattern)
	if err != nil {
		return nil, err
	}
	v.now = now
	return v, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	// Delimiters are normalized even when only one slash was configured:
	// a leading or trailing slash is always a delimiter, never part of the
	// expression.
	pattern = strings.TrimPrefix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	if pattern == "" {
		pattern = "."
	}
	return regexp.Compile(pattern)
}

// ValidTimestamp applies the freshness gate: with the gate enabled, a
// timestamp in the future fails (clock-skew/tamper guard) and a timestamp
// older than the timeout fails. Comparison is in whole seconds.
func (v *Validator) ValidTimestamp(ts int64) bool {
	if v.timeout == 0 {
		return true
	}
	now := v.now().Unix()
	if ts > now {
		return false
	}
	return now-ts <= v.timeout
}

// ValidKey applies the pattern gate to the opaque key. This is a coarse
// allow-list on the shape of acceptable keys, not a cryptographic check.
func (v *Validator) ValidKey(key string) bool {
	return v.pattern.MatchString(key)
}
