package electrician

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const tokenPath = "/api/auth/oauth/token"

// preflightOAuthToken polls the issuer's client-credentials endpoint until it
// answers 2xx or budget runs out, doubling the pause up to 2s.
func preflightOAuthToken(ctx context.Context, hc *http.Client, issuer, clientID, clientSecret string, scopes []string, budget time.Duration) error {
	if issuer == "" || clientID == "" || clientSecret == "" {
		return nil
	}
	tokenURL := strings.TrimRight(issuer, "/") + tokenPath
	if _, err := url.Parse(tokenURL); err != nil {
		return fmt.Errorf("oauth preflight: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	payload := form.Encode()

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	pause := 250 * time.Millisecond
	var last error
	for {
		code, err := tokenAttempt(ctx, hc, tokenURL, payload)
		if err == nil && code >= 200 && code < 300 {
			return nil
		}
		if err == nil {
			err = fmt.Errorf("token endpoint answered %d", code)
		}
		last = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("oauth preflight %s: %w", tokenURL, last)
		case <-time.After(pause):
		}
		if pause < 2*time.Second {
			pause *= 2
		}
	}
}

func tokenAttempt(ctx context.Context, hc *http.Client, tokenURL, payload string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, tokenURL, strings.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
