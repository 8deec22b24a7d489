package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/config"
	"github.com/gloomspire/server/internal/handler"
	gonet "github.com/gloomspire/server/internal/net"
	"github.com/gloomspire/server/internal/oracle"
	"github.com/gloomspire/server/internal/persist"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/scripting"
)

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Gloomspire  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      tick-based dungeon crawl server      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func serve() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("GLOOMD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	printSection("content")
	ct, err := catalog.LoadAll(cfg.Game.DataDir, log)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	printOK("catalog loaded")

	scripts, err := scripting.NewEngine(cfg.Game.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer scripts.Close()
	printOK("lua formulas loaded")
	fmt.Println()

	printSection("ledger")
	var ledger persist.LedgerRepo
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		ledger = persist.NewPostgresLedger(db)
		printOK("postgres ledger online")
	} else {
		ledger = persist.NewMemoryLedger()
		printOK("in-memory ledger (database disabled)")
	}
	bridge := oracle.NewBridge(ledger, cfg.Oracle, log)
	fmt.Println()

	deps := &handler.Deps{
		Config:  cfg,
		Catalog: ct,
		Scripts: scripts,
		Oracle:  bridge,
		Log:     log,
	}
	registry := run.NewRegistry(ct, scripts, deps, deps, cfg.Network.TickRate, log)
	registry.SetTuning(run.Tuning{
		RespawnDelay:  cfg.Game.RespawnDelay,
		GroundItemTTL: cfg.Game.GroundItemTTL,
		StartingLives: cfg.Game.StartingLives,
	})

	server := gonet.NewServer(cfg, registry, log)

	printSection("server ready")
	printReady(fmt.Sprintf("listening on ws://%s%s", cfg.Server.BindAddr, cfg.Server.WSPath))
	printReady(fmt.Sprintf("simulation tick %s", cfg.Network.TickRate))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down", zap.Int("active_runs", registry.Count()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
