package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"admission-gateway/middleware/admission"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"
)

type config struct {
	ListenAddr   string `env:"LISTEN_ADDR" envDefault:":8080"`
	UpstreamURL  string `env:"UPSTREAM_URL,required"`
	PolicyFile   string `env:"POLICY_FILE" envDefault:"policy.yaml"`
	APIKeyHeader string `env:"API_KEY_HEADER" envDefault:"X-Api-Key"`
	TrustXFF     bool   `env:"TRUST_XFF" envDefault:"false"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// DebugAddr expõe um snapshot dos contadores em /debug/admission
	// (vazio desliga o listener).
	DebugAddr string `env:"DEBUG_ADDR"`

	EventsEnabled       bool          `env:"EVENTS_ENABLED" envDefault:"false"`
	EventsRedisAddr     string        `env:"EVENTS_REDIS_ADDR"`
	EventsRedisPassword string        `env:"EVENTS_REDIS_PASSWORD"`
	EventsRedisDB       int           `env:"EVENTS_REDIS_DB" envDefault:"0"`
	EventsPrefix        string        `env:"EVENTS_PREFIX" envDefault:"admission:events"`
	EventsTTL           time.Duration `env:"EVENTS_TTL" envDefault:"24h"`
	EventsPerSecond     float64       `env:"EVENTS_PER_SECOND" envDefault:"10"`
}

func main() {
	// .env é opcional; em produção as variáveis vêm do ambiente
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.EventsEnabled && cfg.EventsRedisAddr == "" {
		log.Fatalf("config error: EVENTS_REDIS_ADDR is required when EVENTS_ENABLED=true")
	}

	policies, err := admission.LoadPolicyFile(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("policy error: %v", err)
	}

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy error: %v", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	var metrics domain.MetricsRecorder = infra.NopMetrics{}
	if cfg.MetricsEnabled {
		mem := infra.NewMemoryMetrics()
		metrics = mem

		if cfg.DebugAddr != "" {
			debugMux := http.NewServeMux()
			debugMux.HandleFunc("/debug/admission", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_ = json.NewEncoder(w).Encode(mem.Counters())
			})
			go func() {
				if err := http.ListenAndServe(cfg.DebugAddr, debugMux); err != nil {
					log.Printf("debug listener error: %v", err)
				}
			}()
			log.Printf("debug: counters on http://%s/debug/admission", cfg.DebugAddr)
		}
	}

	var events domain.EventSink
	if cfg.EventsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.EventsRedisAddr,
			Password: cfg.EventsRedisPassword,
			DB:       cfg.EventsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis events ping error: %v", err)
		}

		events = infra.NewRedisEventSink(
			rdb,
			infra.WithEventPrefix(cfg.EventsPrefix),
			infra.WithEventTTL(cfg.EventsTTL),
			infra.WithEventThrottle(cfg.EventsPerSecond, int(cfg.EventsPerSecond)+1),
		)
	}

	admit, err := admission.Middleware(admission.Options{
		Policies:           policies,
		Events:             events,
		Metrics:            metrics,
		KeyHeader:          cfg.APIKeyHeader,
		TrustXForwardedFor: cfg.TrustXFF,
		Logf:               log.Printf,
	})
	if err != nil {
		log.Fatalf("admission error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := http.Handler(proxy)
	h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{
		Max:            cfg.ConcurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.ConcurrencyTimeout,
		Metrics:        metrics,
	})(h)
	h = admit(h)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s -> %s", cfg.ListenAddr, target)
	log.Printf("admission: enabled=%v strategies=%d cache=%d entries/%s ttl keyHeader=%q trustXFF=%v",
		policies.Enabled, len(policies.Strategies), policies.CacheMaxEntries, policies.CacheTTL, cfg.APIKeyHeader, cfg.TrustXFF)
	log.Printf("events: enabled=%v redisAddr=%q prefix=%q ttl=%s", cfg.EventsEnabled, cfg.EventsRedisAddr, cfg.EventsPrefix, cfg.EventsTTL)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.ConcurrencyMax, cfg.ConcurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
