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

	"github.com/datkv/itch-creators/app/api"
	"github.com/datkv/itch-creators/app/cfg"
	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/discover"
	"github.com/datkv/itch-creators/app/enrich"
	"github.com/datkv/itch-creators/app/feeds"
	"github.com/datkv/itch-creators/app/ranking"
	"github.com/datkv/itch-creators/app/scoring"
	"github.com/datkv/itch-creators/app/scrape"
	"github.com/datkv/itch-creators/app/sources"
	"github.com/datkv/itch-creators/app/tasks"
)

// cliBackfillLimit is deliberately generous; a one-shot CLI invocation
// should drain the whole unbackfilled backlog.
const cliBackfillLimit = 1000

const usage = `Usage: itch-creators [flags] <command>

Commands:
  migrate    Apply database schema migrations
  seed       Register curated creators from the sources file
  poll       Poll release feeds for new games and creators
  discover   Crawl configured browse pages
  backfill   Walk unbackfilled creator profiles
  enrich     Fetch ratings for pending games
  refresh    Re-fetch ratings for stale games
  score      Recompute creator scores
  run        Full pipeline: poll, backfill, enrich, score
  serve      Run the background scheduler and HTTP API
`

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was requested, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	if len(appCfg.Args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	command := appCfg.Args[0]

	app, err := newApplication(appCfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.runCommand(ctx, command); err != nil {
		slog.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

// application bundles the wired services the commands dispatch into.
type application struct {
	cfg         *cfg.Cfg
	db          *database.DB
	cache       *ranking.RedisCache
	creatorRepo database.CreatorRepository
	gameRepo    database.GameRepository
	scoreRepo   database.ScoreRepository
	sources     *sources.Sources
	seeder      *discover.Seeder
	discovery   *discover.FeedDiscovery
	backfiller  *discover.Backfiller
	crawler     *discover.BrowseCrawler
	enricher    *enrich.Enricher
	scorer      *scoring.Scorer
	leaderboard *ranking.Materializer
}

func newApplication(appCfg *cfg.Cfg) (*application, error) {
	slog.Info("Connecting to database", "host", appCfg.DBHost, "name", appCfg.DBName)
	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		return nil, err
	}

	slog.Info("Loading discovery sources", "file", appCfg.SourcesFile)
	srcs, err := sources.Load(appCfg.SourcesFile)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Discovery sources loaded", "feeds", len(srcs.Feeds),
		"browse_pages", len(srcs.Browse), "seed_creators", len(srcs.SeedCreators))

	strategy, err := scoring.NewStrategy(appCfg.ScoringStrategy)
	if err != nil {
		db.Close()
		return nil, err
	}

	creatorRepo := database.NewCreatorRepository(db)
	gameRepo := database.NewGameRepository(db)
	scoreRepo := database.NewScoreRepository(db)

	client := scrape.NewClient(appCfg.UserAgent,
		time.Duration(appCfg.RequestInterval)*time.Millisecond,
		time.Duration(appCfg.RequestTimeout)*time.Second)

	ingestor := discover.NewIngestor(creatorRepo, gameRepo)

	// The leaderboard mirror is optional. Postgres stays the source of
	// truth, so a missing Redis only costs read speed.
	var cache ranking.ScoreCache
	var redisCache *ranking.RedisCache
	if appCfg.RedisAddr != "" {
		redisCache, err = ranking.NewRedisCache(appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Leaderboard mirror disabled", "error", err)
			redisCache = nil
		} else {
			cache = redisCache
			slog.Info("Leaderboard mirror enabled", "addr", appCfg.RedisAddr)
		}
	}

	leaderboard := ranking.NewMaterializer(scoreRepo, cache)

	return &application{
		cfg:         appCfg,
		db:          db,
		cache:       redisCache,
		creatorRepo: creatorRepo,
		gameRepo:    gameRepo,
		scoreRepo:   scoreRepo,
		sources:     srcs,
		seeder:      discover.NewSeeder(creatorRepo),
		discovery:   discover.NewFeedDiscovery(feeds.NewPoller(client), ingestor, srcs.FeedURLs()),
		backfiller:  discover.NewBackfiller(client, scrape.NewProfileParser(), creatorRepo, gameRepo),
		crawler:     discover.NewBrowseCrawler(client, scrape.NewBrowseParser(), ingestor),
		enricher: enrich.NewEnricher(client, scrape.NewGameParser(), gameRepo,
			appCfg.FailureCooldownDays, appCfg.HiddenCooldownDays),
		scorer:      scoring.NewScorer(creatorRepo, gameRepo, leaderboard, strategy),
		leaderboard: leaderboard,
	}, nil
}

func (a *application) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("Failed to close leaderboard mirror", "error", err)
		}
	}
	a.db.Close()
}

func (a *application) runCommand(ctx context.Context, command string) error {
	switch command {
	case "migrate":
		return a.cmdMigrate()
	case "seed":
		return a.cmdSeed()
	case "poll":
		return a.cmdPoll(ctx)
	case "discover":
		return a.cmdDiscover(ctx)
	case "backfill":
		return a.cmdBackfill(ctx)
	case "enrich":
		return a.cmdEnrich(ctx)
	case "refresh":
		return a.cmdRefresh(ctx)
	case "score":
		return a.cmdScore()
	case "run":
		return a.cmdRun(ctx)
	case "serve":
		return a.cmdServe(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *application) cmdMigrate() error {
	version, dirty, err := database.RunMigrations(a.db)
	if err != nil {
		return err
	}

	slog.Info("Migrations applied", "version", version, "dirty", dirty)
	return nil
}

func (a *application) cmdSeed() error {
	stats, err := a.seeder.Seed(a.sources.SeedCreators)
	if err != nil {
		return err
	}

	slog.Info("Seeding complete", "added", stats.Added, "skipped", stats.Skipped)
	return nil
}

func (a *application) cmdPoll(ctx context.Context) error {
	_, err := a.discovery.Discover(ctx)
	return err
}

func (a *application) cmdDiscover(ctx context.Context) error {
	_, err := a.crawler.CrawlAll(ctx, a.sources.Browse)
	return err
}

func (a *application) cmdBackfill(ctx context.Context) error {
	stats, err := a.backfiller.BackfillAll(ctx, cliBackfillLimit)
	if err != nil {
		return err
	}

	slog.Info("Backfill complete", "creators", stats.Creators, "games", stats.Games, "errors", stats.Errors)
	return nil
}

func (a *application) cmdEnrich(ctx context.Context) error {
	stats, err := a.enricher.EnrichPending(ctx, a.cfg.EnrichLimit)
	if err != nil {
		return err
	}

	slog.Info("Enrichment complete", "processed", stats.Processed, "errors", stats.Errors)
	return nil
}

func (a *application) cmdRefresh(ctx context.Context) error {
	stats, err := a.enricher.RefreshStale(ctx, a.cfg.StaleDays, a.cfg.EnrichLimit)
	if err != nil {
		return err
	}

	slog.Info("Refresh complete", "processed", stats.Processed, "errors", stats.Errors)
	return nil
}

func (a *application) cmdScore() error {
	stats, err := a.scorer.ScoreAll()
	if err != nil {
		return err
	}

	slog.Info("Scoring complete", "scored", stats.Scored, "errors", stats.Errors)
	return nil
}

func (a *application) cmdRun(ctx context.Context) error {
	if err := a.cmdPoll(ctx); err != nil {
		return err
	}

	if err := a.cmdBackfill(ctx); err != nil {
		return err
	}

	if err := a.cmdEnrich(ctx); err != nil {
		return err
	}

	return a.cmdScore()
}

func (a *application) cmdServe(ctx context.Context) error {
	slog.Info("Starting background scheduler", "workers", a.cfg.WorkerCount,
		"interval_seconds", a.cfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(a.discovery, a.backfiller, a.crawler,
		a.enricher, a.scorer, a.sources.Browse)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(a.db, a.creatorRepo, a.gameRepo, a.scoreRepo, a.leaderboard, scheduler)
	server := api.NewServer(handler, a.cfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", a.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	return nil
}
