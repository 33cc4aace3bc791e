package cfg

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"itch" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"itch" description:"Database password"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"itch_creators" description:"Database name"`

	// Application configuration
	SourcesFile       string `long:"sources-file" env:"SOURCES_FILE" default:"sources.yml" description:"Discovery sources file (feeds, browse pages, seed creators)"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background task workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Pipeline scheduling interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for task trigger endpoints (optional)"`
	RedisAddr         string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the leaderboard mirror (optional)"`

	// Scraping configuration
	UserAgent           string `long:"user-agent" env:"USER_AGENT" description:"User agent string for outbound requests"`
	RequestInterval     int    `long:"request-interval" env:"REQUEST_INTERVAL" default:"1000" description:"Minimum delay between outbound requests in milliseconds"`
	RequestTimeout      int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Outbound request timeout in seconds"`
	EnrichLimit         int    `long:"enrich-limit" env:"ENRICH_LIMIT" default:"50" description:"Maximum games processed per enrichment batch"`
	StaleDays           int    `long:"stale-days" env:"STALE_DAYS" default:"30" description:"Age in days after which an enriched game is re-fetched"`
	FailureCooldownDays int    `long:"failure-cooldown-days" env:"FAILURE_COOLDOWN_DAYS" default:"3" description:"Days before a failed game becomes retry-eligible"`
	HiddenCooldownDays  int    `long:"hidden-cooldown-days" env:"HIDDEN_COOLDOWN_DAYS" default:"7" description:"Days before a ratings-hidden game is rechecked"`
	ScoringStrategy     string `long:"scoring-strategy" env:"SCORING_STRATEGY" default:"sqrt" choice:"sqrt" choice:"capped" description:"Track record strategy"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	userAgent := raw.UserAgent
	if userAgent == "" {
		userAgent = "itch-creators/" + GetVersion()
	}

	cfg := &Cfg{
		DBHost:              raw.DBHost,
		DBPort:              raw.DBPort,
		DBUser:              raw.DBUser,
		DBPassword:          raw.DBPassword,
		DBName:              raw.DBName,
		SourcesFile:         raw.SourcesFile,
		Port:                raw.Port,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		APIAccessKey:        raw.APIAccessKey,
		RedisAddr:           raw.RedisAddr,
		UserAgent:           userAgent,
		RequestInterval:     raw.RequestInterval,
		RequestTimeout:      raw.RequestTimeout,
		EnrichLimit:         raw.EnrichLimit,
		StaleDays:           raw.StaleDays,
		FailureCooldownDays: raw.FailureCooldownDays,
		HiddenCooldownDays:  raw.HiddenCooldownDays,
		ScoringStrategy:     raw.ScoringStrategy,
		Debug:               raw.Debug,
		Version:             GetVersion(),
		Args:                args,
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
