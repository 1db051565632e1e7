package electrician

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoadRelayOptionsFromEnv(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", " a:1, b:2 ,")
	t.Setenv("ELECTRICIAN_COMPRESS", "SNAPPY")
	t.Setenv("ELECTRICIAN_STATIC_HEADERS", "x-env=dev, x-team = core,broken")
	t.Setenv("OAUTH_ISSUER_BASE", "https://issuer")
	t.Setenv("OAUTH_CLIENT_ID", "id")
	t.Setenv("OAUTH_CLIENT_SECRET", "secret")
	t.Setenv("OAUTH_SCOPES", "write:data, read:data")
	t.Setenv("OAUTH_REFRESH_LEEWAY", "45s")

	opt, err := LoadRelayOptionsFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if len(opt.Targets) != 2 || opt.Targets[0] != "a:1" || opt.Targets[1] != "b:2" {
		t.Errorf("targets = %v", opt.Targets)
	}
	if !opt.CompressSnappy || opt.EncryptAESGCM || opt.TLSEnable {
		t.Errorf("flags = %+v", opt)
	}
	if opt.StaticHeaders["x-env"] != "dev" || opt.StaticHeaders["x-team"] != "core" || len(opt.StaticHeaders) != 2 {
		t.Errorf("headers = %v", opt.StaticHeaders)
	}
	if !opt.oauthEnabled() || opt.OAuthLeeway != 45*time.Second || len(opt.OAuthScopes) != 2 {
		t.Errorf("oauth = %+v", opt)
	}
	if opt.TLSCA != "keys/tls/ca.crt" {
		t.Errorf("ca default = %q", opt.TLSCA)
	}
}

func TestLoadRelayOptionsAESKey(t *testing.T) {
	t.Setenv("ELECTRICIAN_ENCRYPT", "aesgcm")
	if _, err := LoadRelayOptionsFromEnv(); err == nil {
		t.Error("aesgcm without key should fail")
	}

	t.Setenv("ELECTRICIAN_AES256_KEY_HEX", "abcd")
	if _, err := LoadRelayOptionsFromEnv(); err == nil {
		t.Error("short key should fail")
	}

	t.Setenv("ELECTRICIAN_AES256_KEY_HEX", strings.Repeat("ab", 32))
	opt, err := LoadRelayOptionsFromEnv()
	if err != nil || len(opt.AESKey) != 32 {
		t.Errorf("opt=%+v err=%v", opt, err)
	}
}

func TestNewBuilderRelayFromEnvWithoutTarget(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", "")
	rc, err := NewBuilderRelayFromEnv(context.Background())
	if err != nil || rc != nil {
		t.Errorf("rc=%v err=%v", rc, err)
	}
}

func TestBuilderClientRequiresTopic(t *testing.T) {
	var got []byte
	c := &builderClient{submit: func(_ context.Context, b []byte) error { got = b; return nil }}
	if err := c.Publish(context.Background(), RelayRequest{Body: []byte("x")}); err != errMissingTopic {
		t.Errorf("err = %v", err)
	}
	if err := c.Publish(context.Background(), RelayRequest{Topic: "t", Body: []byte("x")}); err != nil || string(got) != "x" {
		t.Errorf("err=%v got=%q", err, got)
	}
}

func TestPreflightRetriesUntilReady(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tokenPath || r.FormValue("grant_type") != "client_credentials" || r.FormValue("scope") != "a b" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"t"}`))
	}))
	defer srv.Close()

	err := preflightOAuthToken(context.Background(), srv.Client(), srv.URL+"/", "id", "secret", []string{"a", "b"}, 3*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d", calls.Load())
	}
}

func TestPreflightGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if err := preflightOAuthToken(context.Background(), srv.Client(), srv.URL, "id", "secret", nil, 100*time.Millisecond); err == nil {
		t.Error("expected error after budget")
	}
	if err := preflightOAuthToken(context.Background(), srv.Client(), "", "id", "secret", nil, time.Second); err != nil {
		t.Errorf("disabled preflight: %v", err)
	}
}
