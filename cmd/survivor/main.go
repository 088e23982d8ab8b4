package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/neonronin/survivor/internal/config"
	"github.com/neonronin/survivor/internal/game"
	"github.com/neonronin/survivor/internal/narrative"
	"github.com/neonronin/survivor/internal/persist"
	"github.com/neonronin/survivor/internal/scripting"
	"github.com/neonronin/survivor/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, seed int64) {
	fmt.Println()
	fmt.Println("\033[35;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[35;1m  │\033[0m            NEON RONIN  survivor           \033[35;1m│\033[0m")
	fmt.Println("\033[35;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mSession:\033[0m %s \033[90m(seed %d)\033[0m\n\n", name, seed)
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(3, 42-len(label)-len(numStr))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func loadConfig() (*config.Config, error) {
	path := "config/survivor.toml"
	if p := os.Getenv("SURVIVOR_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// logSink reports finished runs when no database is configured.
type logSink struct{ log *zap.Logger }

func (s logSink) Record(rec *persist.RunRecord) {
	s.log.Info("run finished (not persisted)",
		zap.String("run", rec.ID.String()),
		zap.Int("score", rec.Score),
		zap.Int("level", rec.Level),
	)
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printBanner(cfg.Server.Name, seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("Data")
	tables, err := game.LoadTables(cfg.Data.Dir)
	if err != nil {
		return err
	}
	printStat("Classes", tables.Classes.Count())
	printStat("Upgrades", tables.Upgrades.Count())
	printStat("Enemy kinds", tables.Enemies.Count())
	printStat("Bosses", tables.Bosses.Count())

	var formulas scripting.Formulas = scripting.Defaults{}
	if cfg.Data.ScriptsDir != "" {
		engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer engine.Close()
		formulas = engine
		printOK("Lua balance scripts loaded")
	}
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)

	var sink system.RunSink = logSink{log: log}
	var board runBoard
	if cfg.Database.Enabled {
		printSection("Run ledger")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")
		if err := persist.RunMigrations(dbCtx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("Migrations applied")
		fmt.Println()

		repo := persist.NewRunRepo(db)
		board = repo
		ledger := persist.NewLedger(repo, log)
		sink = ledger
		g.Go(func() error { return ledger.Run(gctx) })
	}

	sess, err := game.NewSession(tables, formulas, game.Options{
		Class:        cfg.Simulation.Class,
		StartMap:     cfg.Simulation.StartMap,
		Weather:      cfg.Simulation.Weather,
		Seed:         seed,
		MaxTimeScale: cfg.Simulation.MaxTimeScale,
		Sink:         sink,
	}, log)
	if err != nil {
		return err
	}

	var briefer narrative.Briefer = narrative.Static{}
	if cfg.Narrative.Endpoint != "" {
		briefer = narrative.NewHTTPBriefer(cfg.Narrative.Endpoint, cfg.Narrative.APIKey, cfg.Narrative.Timeout, log)
	}
	printSection("Briefing")
	fmt.Printf("  %s\n\n", narrative.Fetch(ctx, briefer, cfg.Simulation.Class, seed, log))

	var stream *streamServer
	if cfg.Stream.Enabled {
		stream = newStreamServer(sess, cfg.Stream, log)
		stream.runs = board
		g.Go(func() error { return stream.Run(gctx) })
	}

	printSection("Ready")
	if stream != nil {
		printReady(fmt.Sprintf("Streaming on %s", cfg.Stream.BindAddress))
	}
	printReady(fmt.Sprintf("Game loop running (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	g.Go(func() error {
		defer stop()
		return loop(gctx, sess, stream, cfg, log)
	})
	return g.Wait()
}

// loop ticks the session until the run ends or ctx is cancelled. With a
// stream attached the final state stays served until shutdown.
func loop(ctx context.Context, sess *game.Session, stream *streamServer, cfg *config.Config, log *zap.Logger) error {
	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	last := time.Now()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down", zap.Int("score", sess.Snapshot().Score))
			return nil
		case now := <-ticker.C:
			raw := now.Sub(last)
			last = now

			if cfg.Simulation.Autopilot && (stream == nil || stream.Clients() == 0) {
				if snap := sess.Snapshot(); len(snap.Offers) > 0 {
					if err := sess.ChooseUpgrade(snap.Offers[0].ID); err != nil {
						log.Warn("autopilot upgrade", zap.Error(err))
					}
				}
				sess.SteerWith(game.Autopilot)
			}
			sess.Tick(raw)

			ticks++
			effects := sess.Drain()
			if stream != nil && ticks%cfg.Stream.SendEvery == 0 {
				stream.Publish(sess.Snapshot(), effects)
			}

			if sess.Over() {
				snap := sess.Snapshot()
				log.Info("game over",
					zap.Int("score", snap.Score),
					zap.Int("level", snap.Level),
					zap.Int("kills", snap.Kills),
				)
				if stream != nil {
					stream.Publish(snap, nil)
					<-ctx.Done()
				}
				return nil
			}
		}
	}
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
