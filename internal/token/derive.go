package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveUsername maps (authMethod, opaque key) to the stable local account
// name: lowercase hex SHA-256 over the concatenation. Pure and one-way —
// the same key always lands on the same account, and the opaque key never
// appears in the username itself.
func DeriveUsername(authMethod, key string) string {
	sum := sha256.Sum256([]byte(authMethod + key))
	return hex.EncodeToString(sum[:])
}

// CredentialHash derives the stored credential for a hand-off account from
// the username and the site-wide secret. The same formula is used when
// writing the account and when authenticating it, so a freshly provisioned
// account always validates. The opaque key is never an input.
func CredentialHash(username, siteSecret string) string {
	sum := sha256.Sum256([]byte(username + siteSecret))
	return hex.EncodeToString(sum[:])
}
