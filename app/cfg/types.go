package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesFile       string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	RedisAddr         string

	// Scraping configuration
	UserAgent           string
	RequestInterval     int
	RequestTimeout      int
	EnrichLimit         int
	StaleDays           int
	FailureCooldownDays int
	HiddenCooldownDays  int
	ScoringStrategy     string

	// Application metadata
	Debug   bool
	Version string

	// Args holds positional arguments left after flag parsing: the
	// subcommand name and its operands.
	Args []string
}
