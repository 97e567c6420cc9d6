package config

import (
	"strings"
	"time"
)

// AuthConfig groups the hand-off pipeline configuration.
type AuthConfig struct {
	// Cohort is the default enrollment scope when the token carries none.
	Cohort string `env:"COHORT" envDefault:"anonymous"`

	// FirstName, LastName and Email are the display fields stamped onto
	// provisioned accounts.
	FirstName string `env:"FIRSTNAME" envDefault:"anonymous"`
	LastName  string `env:"LASTNAME"  envDefault:"user"`
	Email     string `env:"EMAIL"     envDefault:"nobody@127.0.0.1"`

	// Regex constrains the shape of acceptable opaque keys. Empty matches
	// any key. PCRE-style slash delimiters are tolerated.
	Regex string `env:"REGEX" envDefault:""`

	// Timeout is the maximum token age in seconds. Zero disables the
	// freshness check entirely.
	Timeout int64 `env:"TIMEOUT" envDefault:"0"`

	// AssignRole is a role ID granted at system scope to every provisioned
	// account. Zero assigns nothing.
	AssignRole int64 `env:"ASSIGN_ROLE" envDefault:"0"`

	// LogoutURL overrides the post-logout redirect for sessions this
	// pipeline established. Empty means no override.
	LogoutURL string `env:"LOGOUT_URL" envDefault:""`

	// SiteSecret salts the credential hash written to provisioned
	// accounts. Required; accounts provisioned under different secrets do
	// not validate against each other.
	SiteSecret string `env:"SITE_SECRET,required"`

	// SessionTTL bounds how long an established session lives.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.Cohort = strings.TrimSpace(a.Cohort)
	a.Regex = strings.TrimSpace(a.Regex)
	if a.Timeout < 0 {
		a.Timeout = 0
	}
	if a.AssignRole < 0 {
		a.AssignRole = 0
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = 8 * time.Hour
	}
}
