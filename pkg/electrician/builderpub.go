package electrician

// Publish-only RelayClient implemented with Electrician builder primitives.
// Internals are hidden: no builder.* types are stored on the struct.

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joeydtaylor/electrician/pkg/builder"
)

// RelayRequest is the byte-level publish envelope. The wire carries Body
// only; Topic must be set but does not select a target, and per-message
// headers are not supported (use ELECTRICIAN_STATIC_HEADERS).
type RelayRequest struct {
	Topic string
	Body  []byte
}

// RelayClient publishes bytes into a forward relay.
type RelayClient interface {
	Publish(ctx context.Context, rr RelayRequest) error
}

var errMissingTopic = errors.New("relay: missing topic")

type builderClient struct {
	submit func(context.Context, []byte) error // captures wire.Submit
}

// NewBuilderRelayFromEnv builds a relay from LoadRelayOptionsFromEnv that
// runs until ctx is cancelled. It returns a nil client when
// ELECTRICIAN_TARGET is unset.
func NewBuilderRelayFromEnv(ctx context.Context) (RelayClient, error) {
	opt, err := LoadRelayOptionsFromEnv()
	if err != nil {
		return nil, err
	}
	if len(opt.Targets) == 0 {
		return nil, nil
	}
	return NewBuilderRelay(ctx, opt)
}

// NewBuilderRelay starts a wire feeding an Electrician ForwardRelay[[]byte].
// The relay lives until ctx is cancelled.
func NewBuilderRelay(ctx context.Context, opt RelayOptions) (RelayClient, error) {
	if len(opt.Targets) == 0 {
		return nil, errors.New("electrician: no relay targets")
	}

	logger := builder.NewLogger(builder.LoggerWithDevelopment(true))
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	// Always-construct options with on/off flags where supported.
	perf := builder.NewPerformanceOptions(opt.CompressSnappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(opt.EncryptAESGCM, builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		opt.TLSEnable,
		opt.TLSClientCrt, opt.TLSClientKey, opt.TLSCA,
		opt.TLSMin, opt.TLSMax,
	)
	aesKey := string(opt.AESKey)

	var relayStart func(context.Context) error

	if opt.oauthEnabled() {
		var authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(nil)
		if opt.OAuthJWKS != "" {
			authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(
				builder.NewForwardRelayOAuth2JWTOptions(opt.OAuthIssuer, opt.OAuthJWKS, []string{}, opt.OAuthScopes, 300),
			)
		}

		// HTTP client for token fetch (TLS1.3; optional insecure for local).
		authHTTP := &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS13,
					MaxVersion:         tls.VersionTLS13,
					InsecureSkipVerify: opt.InsecureTLS, // dev only
				},
			},
		}
		// Best effort; the relay surfaces token errors itself.
		_ = preflightOAuthToken(ctx, authHTTP, opt.OAuthIssuer, opt.OAuthClientID, opt.OAuthSecret, opt.OAuthScopes, 5*time.Second)

		ts := builder.NewForwardRelayRefreshingClientCredentialsSource(
			opt.OAuthIssuer, opt.OAuthClientID, opt.OAuthSecret, opt.OAuthScopes, opt.OAuthLeeway, authHTTP,
		)

		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](opt.Targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](opt.StaticHeaders),
			builder.ForwardRelayWithAuthenticationOptions[[]byte](authOpts),
			builder.ForwardRelayWithOAuthBearer[[]byte](ts),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	} else {
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](opt.Targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](opt.StaticHeaders),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	}

	if err := wire.Start(ctx); err != nil {
		return nil, fmt.Errorf("builder wire start: %w", err)
	}
	if err := relayStart(ctx); err != nil {
		return nil, fmt.Errorf("builder relay start: %w", err)
	}
	return &builderClient{
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}, nil
}

// Publish submits rr.Body to the wire.
func (c *builderClient) Publish(ctx context.Context, rr RelayRequest) error {
	if rr.Topic == "" {
		return errMissingTopic
	}
	return c.submit(ctx, rr.Body)
}
