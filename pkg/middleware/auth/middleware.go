package auth

import (
	"crypto/rsa"
	"time"
)

// User is the caller resolved from a request frame. The zero User is anonymous.
type User struct {
	Username             string               `json:"username"`
	AuthenticationSource AuthenticationSource `json:"authenticationSource"`
	Role                 Role                 `json:"role"`
}

type Role struct {
	Name string `json:"name"`
}

// AuthenticationSource names what vouched for the user ("assert" or the dev header value).
type AuthenticationSource struct {
	Provider string `json:"provider"`
}

// Middleware authenticates request frames from their Authorization header.
type Middleware struct {
	adminRole string
	devBypass bool

	// Assertion verification
	assertHMAC     []byte
	assertKey      *rsa.PublicKey
	assertIssuer   string
	assertAudience string
	assertLeeway   time.Duration
}

// Options configures a Middleware directly; ProvideAuthentication reads them from env.
type Options struct {
	AdminRole  string
	DevBypass  bool
	HMACSecret []byte
	PublicKey  *rsa.PublicKey
	Issuer     string
	Audience   string
	Leeway     time.Duration
}

func New(o Options) *Middleware {
	return &Middleware{
		adminRole:      o.AdminRole,
		devBypass:      o.DevBypass,
		assertHMAC:     o.HMACSecret,
		assertKey:      o.PublicKey,
		assertIssuer:   o.Issuer,
		assertAudience: o.Audience,
		assertLeeway:   o.Leeway,
	}
}
