// FraudGuard - real-time fraud risk scoring for mobile money platforms.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reshadx/fraudguard/internal/api"
	"github.com/reshadx/fraudguard/internal/bus"
	"github.com/reshadx/fraudguard/internal/detector"
	"github.com/reshadx/fraudguard/internal/domain"
	"github.com/reshadx/fraudguard/internal/engine"
	"github.com/reshadx/fraudguard/internal/intel"
	"github.com/reshadx/fraudguard/internal/repository"
	"github.com/reshadx/fraudguard/internal/risk"
	"github.com/reshadx/fraudguard/internal/signals"
	"github.com/reshadx/fraudguard/internal/signature"
	"github.com/reshadx/fraudguard/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("FRAUDGUARD_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting fraudguard",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("FRAUDGUARD_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}
	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"signals", cfg.Signals.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Signal Store
	signalStore, err := signals.New(cfg.Signals)
	if err != nil {
		slog.Error("failed to initialize signal store", "error", err)
		os.Exit(1)
	}
	defer signalStore.Close()
	slog.Info("signal store initialized", "type", cfg.Signals.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize external providers
	providerTimeout := time.Duration(cfg.Providers.TimeoutMs) * time.Millisecond

	var telecom domain.TelecomProvider = intel.NoopTelecom{}
	if cfg.Providers.TelecomURL != "" {
		telecom = intel.NewTelecomClient(cfg.Providers.TelecomURL, cfg.Providers.TelecomToken, providerTimeout)
		slog.Info("telecom provider configured", "url", cfg.Providers.TelecomURL)
	}

	var ipintel domain.IPIntelProvider = intel.NoopIPIntel{}
	if cfg.Providers.IPIntelURL != "" {
		ipintel = intel.NewIPIntelClient(cfg.Providers.IPIntelURL, providerTimeout)
		slog.Info("ip intelligence provider configured", "url", cfg.Providers.IPIntelURL)
	}

	// Initialize Signature Matcher
	matcher, err := signature.NewMatcher()
	if err != nil {
		slog.Error("failed to initialize signature matcher", "error", err)
		os.Exit(1)
	}

	// Load signatures from database (none bundled - register via API)
	if err := loadSignaturesFromDatabase(ctx, repo, matcher); err != nil {
		slog.Error("failed to load signatures", "error", err)
		os.Exit(1)
	}
	slog.Info("signature matcher initialized", "signatures_count", matcher.Count())

	// Initialize detectors. Registration order fixes the flag order in
	// results.
	simSwap := detector.NewSimSwap(repo, signalStore, telecom, providerTimeout)
	device := detector.NewDevice(signalStore, ipintel, providerTimeout)
	velocity := detector.NewVelocity(repo)
	detectors := []engine.Detector{
		simSwap,
		detector.NewTransactionPattern(repo),
		device,
		detector.NewLocation(signalStore),
		velocity,
		detector.NewAccountTakeover(repo),
		detector.NewPatternMatch(matcher),
		detector.NewLists(repo),
	}
	slog.Info("detectors initialized", "count", len(detectors))

	// Initialize Engine
	aggregator := &risk.Aggregator{WhitelistCredit: cfg.Policy.WhitelistCredit}
	policy := &risk.Policy{
		DeclineThreshold: cfg.Policy.DeclineThreshold,
		ReviewThreshold:  cfg.Policy.ReviewThreshold,
	}
	eng := engine.New(detectors, aggregator, policy, busImpl, len(detectors))

	// Initialize audit worker. Persistence is bus-driven in both tiers.
	auditWorker := worker.NewWorker(busImpl, repo)
	if err := auditWorker.Start(); err != nil {
		slog.Error("failed to start audit worker", "error", err)
		os.Exit(1)
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, signalStore, busImpl, eng, simSwap, device, velocity, matcher, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("fraudguard is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop the worker first so in-flight envelopes drain
	if err := auditWorker.Stop(); err != nil {
		slog.Error("failed to stop audit worker", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("fraudguard shutdown complete")
}

// applyEnvOverrides maps provider endpoints from the environment; there are
// no usable defaults for external services.
func applyEnvOverrides(cfg *domain.Config) {
	if v := os.Getenv("FRAUDGUARD_TELECOM_URL"); v != "" {
		cfg.Providers.TelecomURL = v
	}
	if v := os.Getenv("FRAUDGUARD_TELECOM_TOKEN"); v != "" {
		cfg.Providers.TelecomToken = v
	}
	if v := os.Getenv("FRAUDGUARD_IPINTEL_URL"); v != "" {
		cfg.Providers.IPIntelURL = v
	}
	if v := os.Getenv("FRAUDGUARD_SQLITE_PATH"); v != "" {
		cfg.Repository.SQLitePath = v
	}
}

// loadSignaturesFromDatabase loads fraud signatures into the matcher.
// All signatures are configured via POST /risk/signatures - none are bundled.
func loadSignaturesFromDatabase(ctx context.Context, repo domain.Repository, matcher *signature.Matcher) error {
	sigs, err := repo.ListSignatures(ctx)
	if err != nil {
		slog.Warn("failed to list signatures from database", "error", err)
		return nil // Start with none - they can be added via API
	}

	if len(sigs) > 0 {
		slog.Info("loading signatures from database", "count", len(sigs))
		return matcher.LoadAll(sigs)
	}

	slog.Info("no signatures in database - register via POST /risk/signatures")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  FraudGuard - Risk Scoring Engine")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /risk/assess             - Run a fraud check")
	fmt.Println("    POST /risk/sim-swap/check     - SIM-swap check only")
	fmt.Println("    POST /risk/device/trust-score - Device trust score")
	fmt.Println("    GET  /risk/velocity-checks    - Velocity check for a user")
	fmt.Println("    GET  /risk/checks/{id}        - Get a check by ID")
	fmt.Println("    GET  /risk/alerts             - List alerts")
	fmt.Println("    POST /risk/alerts/{id}/review - Review an alert")
	fmt.Println("    POST /risk/fraud/report       - File a fraud report")
	fmt.Println("    GET  /risk/signatures         - List fraud signatures")
	fmt.Println("    POST /risk/signatures         - Register a signature")
	fmt.Println("    POST /risk/signatures/reload  - Hot-reload signatures")
	fmt.Println("    POST /risk/lists/{kind}       - Add a list entry")
	fmt.Println("    GET  /health                  - Health check")
	fmt.Println()
}
