package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)

// ProvideAuthentication wires defaults and env config:
//
//	ASSERTION_HMAC_SECRET       HS256 shared secret
//	ASSERTION_PUBLIC_KEY_FILE   PEM RSA public key for RS256
//	ASSERTION_ISSUER, ASSERTION_AUDIENCE, ASSERTION_LEEWAY_SECONDS
//	ADMIN_ROLE_NAME, AUTH_DEV_BYPASS
func ProvideAuthentication() (*Middleware, error) {
	leeway := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("ASSERTION_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leeway = time.Duration(n) * time.Second
		}
	}

	var pub *rsa.PublicKey
	if p := strings.TrimSpace(os.Getenv("ASSERTION_PUBLIC_KEY_FILE")); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("auth: read public key: %w", err)
		}
		if pub, err = ParseRSAPublicKeyPEM(b); err != nil {
			return nil, fmt.Errorf("auth: %s: %w", p, err)
		}
	}

	var secret []byte
	if s := os.Getenv("ASSERTION_HMAC_SECRET"); s != "" {
		secret = []byte(s)
	}

	return New(Options{
		AdminRole:  os.Getenv("ADMIN_ROLE_NAME"),
		DevBypass:  os.Getenv("AUTH_DEV_BYPASS") == "true",
		HMACSecret: secret,
		PublicKey:  pub,
		Issuer:     strings.TrimSpace(os.Getenv("ASSERTION_ISSUER")),
		Audience:   strings.TrimSpace(os.Getenv("ASSERTION_AUDIENCE")),
		Leeway:     leeway,
	}), nil
}

// ParseRSAPublicKeyPEM decodes a PKIX RSA public key.
func ParseRSAPublicKeyPEM(b []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rk, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("PEM is not RSA public key")
	}
	return rk, nil
}
