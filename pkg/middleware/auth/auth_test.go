package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

var secret = []byte("auth-test-secret")

func hsToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func frame(headers ...string) *message.Request {
	req := message.NewRequest(message.MethodGet, "/x")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return req
}

func TestAuthenticateHS256(t *testing.T) {
	m := New(Options{HMACSecret: secret, Issuer: "iss", Audience: "rhttp", AdminRole: "root"})
	exp := time.Now().Add(time.Minute).Unix()

	cases := []struct {
		name     string
		claims   jwt.MapClaims
		wantUser string
		wantRole string
		wantErr  bool
	}{
		{"uid wins", jwt.MapClaims{"uid": "u1", "sub": "s1", "role": "editor", "iss": "iss", "aud": "rhttp", "exp": exp}, "u1", "editor", false},
		{"sub and roles", jwt.MapClaims{"sub": "s1", "roles": []string{"ops", "dev"}, "iss": "iss", "aud": []string{"x", "rhttp"}, "exp": exp}, "s1", "ops", false},
		{"bad issuer", jwt.MapClaims{"sub": "s1", "iss": "other", "aud": "rhttp", "exp": exp}, "", "", true},
		{"bad audience", jwt.MapClaims{"sub": "s1", "iss": "iss", "aud": "else", "exp": exp}, "", "", true},
		{"expired", jwt.MapClaims{"sub": "s1", "iss": "iss", "aud": "rhttp", "exp": time.Now().Add(-time.Hour).Unix()}, "", "", true},
		{"no subject", jwt.MapClaims{"iss": "iss", "aud": "rhttp", "exp": exp}, "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := m.Authenticate(frame("Authorization", "Bearer "+hsToken(t, tc.claims)))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", u)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if u.Username != tc.wantUser || u.Role.Name != tc.wantRole || u.AuthenticationSource.Provider != "assert" {
				t.Errorf("user = %+v", u)
			}
		})
	}
}

func TestAuthenticateRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, _ := x509.MarshalPKIXPublicKey(&key.PublicKey)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	pub, err := ParseRSAPublicKeyPEM(pemBytes)
	if err != nil {
		t.Fatal(err)
	}

	m := New(Options{PublicKey: pub})
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "rs", "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(key)
	if u, err := m.Authenticate(frame("Authorization", "Bearer "+tok)); err != nil || u.Username != "rs" {
		t.Errorf("u=%+v err=%v", u, err)
	}

	// HS256 is not accepted when only an RSA key is configured.
	if _, err := m.Authenticate(frame("Authorization", "Bearer "+hsToken(t, jwt.MapClaims{"sub": "x"}))); err == nil {
		t.Error("HS256 token accepted by RS256-only middleware")
	}

	if _, err := ParseRSAPublicKeyPEM([]byte("nope")); err == nil {
		t.Error("garbage PEM accepted")
	}
}

func TestAuthenticateNoCredentials(t *testing.T) {
	m := New(Options{HMACSecret: secret})
	if _, err := m.Authenticate(frame()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("err = %v", err)
	}
	if _, err := m.Authenticate(frame("Authorization", "Basic abc")); err == nil || errors.Is(err, ErrNoCredentials) {
		t.Errorf("basic scheme err = %v", err)
	}
	if _, err := New(Options{}).Authenticate(frame("Authorization", "Bearer x")); err == nil {
		t.Error("unconfigured middleware accepted a token")
	}
}

func TestDevBypassAndHelpers(t *testing.T) {
	m := New(Options{DevBypass: true, AdminRole: "root"})
	req := frame("X-Dev-User", "dev", "X-Dev-Role", "root", "X-Dev-Provider", "local")

	u := m.GetUser(req)
	if u.Username != "dev" || u.AuthenticationSource.Provider != "local" || !m.IsAuthenticated(req) {
		t.Errorf("user = %+v", u)
	}
	if !m.IsAdmin(u) || !m.IsRole(u, Role{Name: "anything"}) || !m.IsUser(u, "someone") {
		t.Error("admin should pass every check")
	}

	plain := User{Username: "p", Role: Role{Name: "ops"}}
	if m.IsAdmin(plain) || !m.IsRole(plain, Role{Name: "ops"}) || m.IsUser(plain, "q") {
		t.Errorf("helpers misjudged %+v", plain)
	}

	if New(Options{}).IsAuthenticated(req) {
		t.Error("dev headers honored without bypass")
	}
}

func TestProvideAuthenticationFromEnv(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	der, _ := x509.MarshalPKIXPublicKey(&key.PublicKey)
	path := filepath.Join(t.TempDir(), "pub.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ASSERTION_PUBLIC_KEY_FILE", path)
	t.Setenv("ASSERTION_HMAC_SECRET", string(secret))
	t.Setenv("ASSERTION_LEEWAY_SECONDS", "5")
	t.Setenv("ADMIN_ROLE_NAME", "root")
	t.Setenv("AUTH_DEV_BYPASS", "false")

	m, err := ProvideAuthentication()
	if err != nil {
		t.Fatal(err)
	}
	if m.assertKey == nil || string(m.assertHMAC) != string(secret) || m.assertLeeway != 5*time.Second || m.adminRole != "root" || m.devBypass {
		t.Errorf("middleware = %+v", m)
	}

	t.Setenv("ASSERTION_PUBLIC_KEY_FILE", filepath.Join(t.TempDir(), "missing.pem"))
	if _, err := ProvideAuthentication(); err == nil {
		t.Error("missing key file accepted")
	}
}

func TestResolveCachesUser(t *testing.T) {
	m := New(Options{HMACSecret: secret})
	tok := hsToken(t, jwt.MapClaims{"sub": "s1", "role": "ops", "exp": time.Now().Add(time.Minute).Unix()})
	req := frame("Authorization", "Bearer "+tok)

	resolved := m.Resolve(req)
	if m.Resolve(resolved) != resolved {
		t.Error("second Resolve re-authenticated")
	}
	if u, ok := UserFromContext(resolved.Context()); !ok || u.Username != "s1" {
		t.Fatalf("context user = %+v %v", u, ok)
	}
	if _, ok := UserFromContext(req.Context()); ok {
		t.Error("original request was modified")
	}

	// A middleware with another secret would reject the token; the cached
	// user is returned without verifying again.
	other := New(Options{HMACSecret: []byte("different")})
	if u := other.GetUser(resolved); u.Username != "s1" || u.Role.Name != "ops" {
		t.Errorf("cached user = %+v", u)
	}
	if other.IsAuthenticated(req) {
		t.Error("unresolved request should be verified")
	}

	anon := m.Resolve(frame())
	anon.Header.Set("Authorization", "Bearer "+tok)
	if m.IsAuthenticated(anon) {
		t.Error("anonymous resolution should stick")
	}
}
