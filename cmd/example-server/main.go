package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admission-gateway/middleware/admission"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"
)

// Exemplo: injetando o filtro de admissão diretamente no seu webserver
// (sem proxy), com uma política montada em código.
func main() {
	policies := domain.PolicySet{
		Enabled: true,
		Strategies: map[domain.Strategy]domain.Policy{
			domain.StrategyAuth: {
				Enabled:   true,
				Endpoints: []string{"/api/auth/login", "/api/auth/register"},
				Limits: domain.BandwidthSet{
					{Name: "per-minute", Capacity: 10, RefillTokens: 10, RefillPeriod: time.Minute},
				},
			},
			domain.StrategyBusiness: {
				Enabled:   true,
				Endpoints: []string{"/api/business"},
				Plans: map[string]domain.BandwidthSet{
					"free":         {{Name: "per-minute", Capacity: 5, RefillTokens: 5, RefillPeriod: time.Minute}},
					"basic":        {{Name: "per-minute", Capacity: 30, RefillTokens: 30, RefillPeriod: time.Minute}},
					"professional": {{Name: "per-minute", Capacity: 120, RefillTokens: 120, RefillPeriod: time.Minute}},
				},
			},
		},
		TierPrefixes: []domain.TierPrefix{
			{Prefix: "PRO-", Tier: domain.TierProfessional},
			{Prefix: "STD-", Tier: domain.TierBasic},
		},
		CacheMaxEntries: 1000,
		CacheTTL:        30 * time.Minute,
	}

	admit, err := admission.Middleware(admission.Options{
		Policies:           policies,
		Events:             infra.NewMemoryEventSink(),
		Metrics:            infra.NewMemoryMetrics(),
		KeyHeader:          "X-Api-Key",
		TrustXForwardedFor: true,
		Logf:               log.Printf,
	})
	if err != nil {
		log.Fatalf("admission error: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "path": r.URL.Path})
	})

	h := http.Handler(mux)
	h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{Max: 50})(h)
	h = admit(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
