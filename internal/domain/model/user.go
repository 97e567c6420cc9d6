package model

import "time"

// User is the durable identity provisioned by the hand-off pipeline.
//
// Username is content-addressed from (auth method, opaque key) and is the
// stable handle a re-used link maps back to; IDNumber keeps the opaque key
// itself for traceability. CredentialHash is derived from the username and
// the site secret — never from the opaque key — and is rewritten on every
// successful hand-off so the credential check always sees it as fresh.
type User struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	IDNumber       string    `db:"idnumber"`
	AuthMethod     string    `db:"auth_method"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          string    `db:"email"`
	Locale         string    `db:"locale"`
	Confirmed      bool      `db:"confirmed"`
	CredentialHash string    `db:"credential_hash"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
