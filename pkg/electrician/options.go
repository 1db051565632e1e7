package electrician

import (
	"crypto/tls"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"
)

// RelayOptions configures the forward relay that relay.publish routes feed.
type RelayOptions struct {
	Targets []string

	// TLS
	TLSEnable    bool
	TLSClientCrt string
	TLSClientKey string
	TLSCA        string
	TLSMin       uint16
	TLSMax       uint16
	InsecureTLS  bool // dev only

	// Perf/Security
	CompressSnappy bool
	EncryptAESGCM  bool
	AESKey         []byte // 32 bytes

	// OAuth2 CC
	OAuthIssuer   string
	OAuthJWKS     string
	OAuthClientID string
	OAuthSecret   string
	OAuthScopes   []string
	OAuthLeeway   time.Duration

	// Static headers
	StaticHeaders map[string]string
}

func (o RelayOptions) oauthEnabled() bool {
	return o.OAuthIssuer != "" && o.OAuthClientID != "" && o.OAuthSecret != ""
}

// LoadRelayOptionsFromEnv reads:
//
//	ELECTRICIAN_TARGET          = "host:port[,host2:port2]"
//	ELECTRICIAN_TLS_ENABLE      = "true" | "false"
//	ELECTRICIAN_TLS_CLIENT_CRT  = path (default: keys/tls/client.crt)
//	ELECTRICIAN_TLS_CLIENT_KEY  = path (default: keys/tls/client.key)
//	ELECTRICIAN_TLS_CA          = path (default: keys/tls/ca.crt)
//	ELECTRICIAN_TLS_INSECURE    = "true" | "false"  (dev only; for OAuth HTTP client)
//	ELECTRICIAN_COMPRESS        = "snappy" | ""
//	ELECTRICIAN_ENCRYPT         = "aesgcm" | ""
//	ELECTRICIAN_AES256_KEY_HEX  = 64 hex chars (32 bytes), required with aesgcm
//	ELECTRICIAN_STATIC_HEADERS  = "k=v,k2=v2"
//
// OAuth2 client credentials (issuer, id and secret must all be set to enable):
//
//	OAUTH_ISSUER_BASE, OAUTH_JWKS_URL, OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET,
//	OAUTH_SCOPES ("s1,s2"), OAUTH_REFRESH_LEEWAY (default 20s)
func LoadRelayOptionsFromEnv() (RelayOptions, error) {
	opt := RelayOptions{
		Targets:        splitCSV(os.Getenv("ELECTRICIAN_TARGET")),
		TLSEnable:      strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_ENABLE"), "true"),
		TLSClientCrt:   getenv("ELECTRICIAN_TLS_CLIENT_CRT", "keys/tls/client.crt"),
		TLSClientKey:   getenv("ELECTRICIAN_TLS_CLIENT_KEY", "keys/tls/client.key"),
		TLSCA:          getenv("ELECTRICIAN_TLS_CA", "keys/tls/ca.crt"),
		TLSMin:         tls.VersionTLS13,
		TLSMax:         tls.VersionTLS13,
		InsecureTLS:    strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_INSECURE"), "true"),
		CompressSnappy: strings.EqualFold(os.Getenv("ELECTRICIAN_COMPRESS"), "snappy"),
		EncryptAESGCM:  strings.EqualFold(os.Getenv("ELECTRICIAN_ENCRYPT"), "aesgcm"),

		OAuthIssuer:   strings.TrimSpace(os.Getenv("OAUTH_ISSUER_BASE")),
		OAuthJWKS:     strings.TrimSpace(os.Getenv("OAUTH_JWKS_URL")),
		OAuthClientID: strings.TrimSpace(os.Getenv("OAUTH_CLIENT_ID")),
		OAuthSecret:   strings.TrimSpace(os.Getenv("OAUTH_CLIENT_SECRET")),
		OAuthScopes:   splitCSV(os.Getenv("OAUTH_SCOPES")),
		OAuthLeeway:   parseDur(getenv("OAUTH_REFRESH_LEEWAY", "20s")),

		StaticHeaders: parseKV(os.Getenv("ELECTRICIAN_STATIC_HEADERS")),
	}

	if k := strings.TrimSpace(os.Getenv("ELECTRICIAN_AES256_KEY_HEX")); k != "" {
		raw, err := hex.DecodeString(k)
		if err != nil {
			return RelayOptions{}, err
		}
		if len(raw) != 32 {
			return RelayOptions{}, errors.New("ELECTRICIAN_AES256_KEY_HEX must decode to 32 bytes")
		}
		opt.AESKey = raw
	}
	if opt.EncryptAESGCM && opt.AESKey == nil {
		return RelayOptions{}, errors.New("ELECTRICIAN_ENCRYPT=aesgcm requires ELECTRICIAN_AES256_KEY_HEX")
	}

	return opt, nil
}

// --- small helpers ---

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}

func parseKV(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

func parseDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	if d == 0 {
		d = 20 * time.Second
	}
	return d
}
