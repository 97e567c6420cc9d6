package token

// Package token implements the hand-off token wire format: a base64-encoded
// query-style parameter string carried on the login URL by the referring
// system. Decoding is deliberately forgiving — malformed input yields fields
// that fail validation downstream rather than an error here.

import (
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// Well-known parameter names in the decoded token.
const (
	ParamActivate  = "anon"
	ParamKey       = "key"
	ParamTimestamp = "ts"
	ParamCourse    = "course"
	ParamCohort    = "cohort"
)

// activeValue is the literal the activation flag must carry for the
// hand-off pipeline to engage at all.
const activeValue = "1"

// RawParams is the flat string mapping decoded from a token.
type RawParams map[string]string

// Decode reverses the transport encoding: base64 outer layer, then
// ampersand-separated key=value pairs with percent-decoded values.
//
// Decoding fails closed: an invalid base64 payload yields an empty map,
// never a partial one. Within a valid payload, unparseable segments are
// skipped and the last occurrence of a duplicate key wins.
func Decode(encoded string) RawParams {
	params := RawParams{}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return params
	}

	for _, segment := range strings.Split(string(decoded), "&") {
		if segment == "" {
			continue
		}
		name, value, _ := strings.Cut(segment, "=")
		if name == "" {
			continue
		}
		// Percent-decoding only; '+' stays literal (rawurldecode semantics,
		// matching how referring systems build these links).
		if unescaped, uerr := url.PathUnescape(value); uerr == nil {
			value = unescaped
		}
		params[name] = value
	}
	return params
}

// Encode is the inverse of Decode. Keys are emitted in sorted order so the
// output is deterministic; values are percent-encoded.
func Encode(params RawParams) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(escapeValue(params[name]))
	}
	return base64.StdEncoding.EncodeToString([]byte(b.String()))
}

// escapeValue percent-encodes a value with rawurlencode semantics: the
// structural characters '&', '=' and '%' are escaped so Decode's segment
// split cannot be confused, and space becomes %20 rather than '+' ('+' is
// literal on the decode side).
func escapeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// Active reports whether the activation flag opts this request into the
// hand-off pipeline. Anything other than the exact literal "1" leaves the
// request for the host's normal authentication flow.
func (p RawParams) Active() bool {
	return p[ParamActivate] == activeValue
}
