package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"github.com/joeydtaylor/steeze-rhttp/pkg/electrician"
	"github.com/joeydtaylor/steeze-rhttp/pkg/manifest"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-rhttp/pkg/server"
	"github.com/joeydtaylor/steeze-rhttp/pkg/transport/httpx"
	"github.com/joeydtaylor/steeze-rhttp/pkg/transport/pubsub"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // RHTTP_MANIFEST
	DefaultManifest string // manifest.toml
	ListenEnv       string // SERVER_LISTEN_ADDRESS, overrides [admin].listen
	RedisAddrEnv    string // REDIS_ADDR, overrides [transport.redis].addr
	TapTopicEnv     string // RHTTP_TAP_TOPIC, relay topic receiving a copy of every response
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY

	// Routes registers code-defined endpoints after the manifest routes.
	Routes func(*core.RegistryBuilder)
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithRedisAddrEnv(k string) Option       { return func(c *Config) { c.RedisAddrEnv = k } }
func WithTapTopicEnv(k string) Option        { return func(c *Config) { c.TapTopicEnv = k } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}
func WithRoutes(fn func(*core.RegistryBuilder)) Option { return func(c *Config) { c.Routes = fn } }

func defaultConfig() Config {
	return Config{
		Service:         "rhttp",
		ManifestEnv:     "RHTTP_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		RedisAddrEnv:    "REDIS_ADDR",
		TapTopicEnv:     "RHTTP_TAP_TOPIC",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Core middleware
		auth.Module,
		logger.Module,
		metrics.Module,
		// Admin router impl
		fx.Provide(httpx.NewChi),
		// Config into DI
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		// Transport
		fx.Provide(provideBus),
		// Electrician publish path
		fx.Provide(provideRelayClient),
		// Endpoints and dispatch
		fx.Provide(provideRegistry, provideDispatcher, provideIdentity, provideServer),
		fx.Provide(fx.Annotate(provideAdmin, fx.ResultTags(`name:"admin"`))),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Manifest ----------

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := envOr(cfg.ManifestEnv, cfg.DefaultManifest)
	man, err := core.LoadConfig(path)
	if err != nil {
		zl.Error("manifest load failed", zap.Error(err), zap.String("path", path))
		return manifest.Config{}, err
	}
	if addr := os.Getenv(cfg.RedisAddrEnv); addr != "" {
		man.Transport.Redis.Addr = addr
	}
	if l := os.Getenv(cfg.ListenEnv); l != "" {
		man.Admin.Listen = l
	}
	for _, i := range man.Shadowed() {
		rt := man.Routes[i]
		zl.Warn("route is unreachable, an earlier route has the same method and path",
			zap.String("method", rt.Method), zap.String("path", rt.Path))
	}
	return man, nil
}

// ---------- Transport ----------

func provideBus(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) (pubsub.Bus, error) {
	var bus pubsub.Bus
	switch man.Transport.Kind {
	case manifest.TransportMemory:
		bus = pubsub.NewHub()
	default:
		r := man.Transport.Redis
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rb, err := pubsub.NewRedisBus(ctx, pubsub.RedisOptions{
			Addr:     r.Addr,
			Username: r.Username,
			Password: r.Password,
			DB:       r.DB,
			TLS:      r.TLS,
		})
		if err != nil {
			return nil, err
		}
		bus = rb
	}
	zl.Info("transport ready", zap.String("kind", man.Transport.Kind), zap.String("addr", man.Transport.Redis.Addr))

	lc.Append(fx.Hook{OnStop: func(context.Context) error { return bus.Close() }})
	return bus, nil
}

func channelsOf(man manifest.Config) pubsub.Channels {
	c := man.Transport.Channels
	return pubsub.Channels{
		Request:     c.Request,
		Response:    c.Response,
		Reject:      c.Reject,
		Heartbeat:   c.Heartbeat,
		Acknowledge: c.Acknowledge,
	}
}

// ---------- Relay adapter ----------

type relayAdapter struct{ inner electrician.RelayClient }

func (a relayAdapter) Publish(ctx context.Context, rr core.RelayRequest) error {
	return a.inner.Publish(ctx, electrician.RelayRequest{Topic: rr.Topic, Body: rr.Body})
}

var newRelayFromEnv = electrician.NewBuilderRelayFromEnv

// provideRelayClient starts the forward relay on a context that OnStop cancels.
func provideRelayClient(lc fx.Lifecycle) (core.RelayClient, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ec, err := newRelayFromEnv(ctx)
	if err != nil || ec == nil {
		cancel()
		return nil, err // nil client: no ELECTRICIAN_TARGET
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		cancel()
		return nil
	}})
	return relayAdapter{inner: ec}, nil
}

// ---------- Registry / dispatcher ----------

type registryDeps struct {
	fx.In
	Cfg   Config
	Man   manifest.Config
	Auth  *auth.Middleware
	LogMW *logger.Middleware
	Rel   core.RelayClient `optional:"true"`
	Log   *zap.Logger
}

func provideRegistry(d registryDeps) (*core.Registry, error) {
	// Fail-safety: warn if manifest needs relay but none provided.
	needsRelay := false
	for _, rt := range d.Man.Routes {
		if rt.Handler.Type == manifest.HandlerRelayPublish {
			needsRelay = true
			break
		}
	}
	if needsRelay && d.Rel == nil {
		d.Log.Error("relay.publish configured but no RelayClient",
			zap.String("ELECTRICIAN_TARGET", os.Getenv("ELECTRICIAN_TARGET")),
			zap.String("OAUTH_ISSUER_BASE", os.Getenv("OAUTH_ISSUER_BASE")),
			zap.String("OAUTH_CLIENT_ID", os.Getenv("OAUTH_CLIENT_ID")),
		)
	}

	return core.BuildRegistry(d.Man, core.BuildDeps{
		Auth:       d.Auth,
		Relay:      d.Rel,
		Middleware: []core.Middleware{d.LogMW.Middleware(d.Auth), metrics.Collect(d.Auth)},
		Extra:      d.Cfg.Routes,
	})
}

type dispatcherDeps struct {
	fx.In
	LC  fx.Lifecycle
	Cfg Config
	Reg *core.Registry
	Rel core.RelayClient `optional:"true"`
	Log *zap.Logger
}

func provideDispatcher(d dispatcherDeps) *core.Dispatcher {
	obs := []core.Observer{metrics.Observer()}
	if topic := os.Getenv(d.Cfg.TapTopicEnv); topic != "" && d.Rel != nil {
		tap := core.NewRelayTap(d.Rel, topic, core.WithTapErrorHandler(func(err error) {
			d.Log.Warn("response tap publish failed", zap.String("topic", topic), zap.Error(err))
		}))
		obs = append(obs, tap)
		runTap(d.LC, tap)
	}
	return core.NewDispatcher(d.Reg, obs...)
}

func runTap(lc fx.Lifecycle, tap *core.RelayTap) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				tap.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stop context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stop.Done():
				return stop.Err()
			}
		},
	})
}

func provideIdentity(man manifest.Config) core.Identity {
	return core.NewIdentity(man.Server.Name, man.Server.Description)
}

func provideServer(bus pubsub.Bus, disp *core.Dispatcher, id core.Identity, man manifest.Config, zl *zap.Logger) *server.Server {
	return server.New(bus, disp, id,
		server.WithChannels(channelsOf(man)),
		server.WithWorkers(man.Server.Workers),
		server.WithLogger(zl),
	)
}

// ---------- Admin HTTP ----------

type adminDeps struct {
	fx.In
	Reg     *core.Registry
	ID      core.Identity
	Metrics http.Handler `name:"metrics"`
	R       httpx.Router
	Log     *zap.Logger
}

func provideAdmin(d adminDeps) http.Handler {
	return httpx.NewAdmin(d.R, httpx.AdminDeps{
		Registry:   d.Reg,
		Identity:   d.ID,
		Metrics:    d.Metrics,
		Log:        d.Log,
		Middleware: []func(http.Handler) http.Handler{metrics.CollectHTTP},
	})
}

// ---------- Lifecycle (pub/sub loop + admin HTTP) ----------

type hookDeps struct {
	fx.In
	Cfg      Config
	Man      manifest.Config
	Server   *server.Server
	Admin    http.Handler `name:"admin"`
	Logger   *zap.Logger
	Shutdown fx.Shutdowner
}

func registerHooks(lc fx.Lifecycle, d hookDeps) {
	addr := d.Man.Admin.Listen
	cert := os.Getenv(d.Cfg.TLSCertEnv)
	key := os.Getenv(d.Cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.Admin,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	serveCtx, serveCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Logger.Info("rhttp server starting",
				zap.String("service", d.Cfg.Service),
				zap.String("name", d.Server.Identity().Name),
			)
			go func() {
				err := d.Server.Serve(serveCtx)
				if serveCtx.Err() == nil {
					// The loop ended without being asked to; take the app down.
					d.Logger.Error("rhttp server exited", zap.Error(err))
					_ = d.Shutdown.Shutdown(fx.ExitCode(1))
				}
				serveDone <- err
			}()

			if d.Man.Admin.Disable {
				return nil
			}
			if useTLS {
				d.Logger.Info("admin server starting (TLS)", zap.String("addr", addr), zap.String("cert", cert))
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Error("admin server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("admin server starting (PLAINTEXT)", zap.String("addr", addr))
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Error("admin server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("rhttp server stopping", zap.String("service", d.Cfg.Service))
			serveCancel()

			var serveErr error
			select {
			case serveErr = <-serveDone:
			case <-ctx.Done():
				serveErr = ctx.Err()
			}
			var httpErr error
			if !d.Man.Admin.Disable {
				httpErr = srv.Shutdown(ctx)
			}
			return multierr.Combine(serveErr, httpErr)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if k == "" {
		return def
	}
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
