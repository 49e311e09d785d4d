package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/festibooth/boothbot/internal/api"
	"github.com/festibooth/boothbot/internal/availability"
	"github.com/festibooth/boothbot/internal/cloudapi"
	"github.com/festibooth/boothbot/internal/crm"
	"github.com/festibooth/boothbot/internal/funnel"
	"github.com/festibooth/boothbot/internal/genai"
	"github.com/festibooth/boothbot/internal/lockfile"
	"github.com/festibooth/boothbot/internal/messaging"
	"github.com/festibooth/boothbot/internal/store"
	"github.com/festibooth/boothbot/internal/twiliowhatsapp"
	"github.com/festibooth/boothbot/internal/util"
	"github.com/festibooth/boothbot/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for boothbot state data
	DefaultStateDir = "/var/lib/boothbot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "boothbot.db"
	// DefaultTypingDelay is the simulated typing pause before replies
	DefaultTypingDelay = 2 * time.Second
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	msgService, err := buildMessagingService(flags)
	if err != nil {
		slog.Error("Failed to initialize messaging provider", "error", err, "provider", *flags.provider)
		os.Exit(1)
	}

	funnelOpts := []funnel.Option{
		funnel.WithStore(st),
		funnel.WithMessagingService(msgService),
		funnel.WithTypingDelay(config.TypingDelay),
	}
	funnelOpts = append(funnelOpts, buildGenAIOption(flags)...)
	funnelOpts = append(funnelOpts, buildReporterOption(flags)...)
	funnelOpts = append(funnelOpts, buildAvailabilityOption(flags)...)

	f := funnel.New(funnelOpts...)

	evictor, err := funnel.StartEviction(st, config.SessionTTL)
	if err != nil {
		slog.Error("Failed to schedule eviction sweep", "error", err)
		os.Exit(1)
	}
	defer evictor.Stop()

	slog.Info("Bootstrapping boothbot", "provider", *flags.provider, "api_addr", *flags.apiAddr)
	if err := api.Run(f, st, buildAPIOptions(flags)...); err != nil {
		slog.Error("boothbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("boothbot exited successfully")
}

// Config holds environment configuration
type Config struct {
	Provider        string
	DatabaseURL     string
	StateDir        string
	OpenAIKey       string
	APIAddr         string
	VerifyToken     string
	CRMWebhookURL   string
	AvailabilityURL string
	SessionTTL      time.Duration
	TypingDelay     time.Duration
}

// Flags holds command line flag values
type Flags struct {
	provider        *string
	qrOutput        *string
	numeric         *bool
	stateDir        *string
	dbDSN           *string
	openaiKey       *string
	apiAddr         *string
	verifyToken     *string
	crmWebhookURL   *string
	availabilityURL *string
}

// initializeLogger sets up structured logging. Level is info unless
// BOOTHBOT_DEBUG is set.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("BOOTHBOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		Provider:        os.Getenv("MESSAGING_PROVIDER"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StateDir:        os.Getenv("BOOTHBOT_STATE_DIR"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		APIAddr:         os.Getenv("API_ADDR"),
		VerifyToken:     os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		CRMWebhookURL:   os.Getenv("CRM_WEBHOOK_URL"),
		AvailabilityURL: os.Getenv("AVAILABILITY_URL"),
		SessionTTL:      util.ParseDurationEnv("BOOTHBOT_SESSION_TTL", funnel.DefaultSessionTTL),
		TypingDelay:     util.ParseDurationEnv("BOOTHBOT_TYPING_DELAY", DefaultTypingDelay),
	}

	if config.Provider == "" {
		config.Provider = "cloudapi"
		slog.Debug("No MESSAGING_PROVIDER set, using default", "provider", config.Provider)
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No BOOTHBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"MESSAGING_PROVIDER", config.Provider,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"BOOTHBOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"WEBHOOK_VERIFY_TOKEN_SET", config.VerifyToken != "",
		"CRM_WEBHOOK_URL_SET", config.CRMWebhookURL != "",
		"AVAILABILITY_URL_SET", config.AvailabilityURL != "",
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		provider:        flag.String("provider", config.Provider, "messaging provider: cloudapi, twilio, or whatsmeow (overrides $MESSAGING_PROVIDER)"),
		qrOutput:        flag.String("qr-output", "", "path to write whatsmeow login QR code"),
		numeric:         flag.Bool("numeric-code", false, "use numeric whatsmeow login code instead of QR code"),
		stateDir:        flag.String("state-dir", config.StateDir, "state directory for boothbot data (overrides $BOOTHBOT_STATE_DIR)"),
		dbDSN:           flag.String("db-dsn", config.DatabaseURL, "database DSN for the conversation store (overrides $DATABASE_URL)"),
		openaiKey:       flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:         flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		verifyToken:     flag.String("verify-token", config.VerifyToken, "webhook verification token (overrides $WEBHOOK_VERIFY_TOKEN)"),
		crmWebhookURL:   flag.String("crm-webhook-url", config.CRMWebhookURL, "CRM lead webhook URL (overrides $CRM_WEBHOOK_URL)"),
		availabilityURL: flag.String("availability-url", config.AvailabilityURL, "booking availability service URL (overrides $AVAILABILITY_URL)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"provider", *flags.provider,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"verifyTokenSet", *flags.verifyToken != "")

	// Follow the state directory when the DSN was defaulted from it
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	if err := os.MkdirAll(*flags.stateDir, 0755); err != nil {
		return err
	}
	return nil
}

// buildStore constructs the conversation store from the DSN
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildMessagingService constructs the outbound messaging provider
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.provider {
	case "twilio":
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client), nil
	case "whatsmeow":
		var waOpts []whatsapp.Option
		waOpts = append(waOpts, whatsapp.WithDBDSN(filepath.Join(*flags.stateDir, "whatsmeow.db")))
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsmeowService(client), nil
	default:
		client, err := cloudapi.NewClient()
		if err != nil {
			return nil, err
		}
		return messaging.NewCloudAPIService(client), nil
	}
}

// buildGenAIOption constructs the LLM fallback option when a key is configured
func buildGenAIOption(flags Flags) []funnel.Option {
	if *flags.openaiKey == "" {
		slog.Debug("No OpenAI API key configured, LLM fallback disabled")
		return nil
	}
	client, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey))
	if err != nil {
		slog.Warn("GenAI client initialization failed, LLM fallback disabled", "error", err)
		return nil
	}
	return []funnel.Option{funnel.WithCompleter(client)}
}

// buildReporterOption constructs the CRM lead sink when a webhook is configured
func buildReporterOption(flags Flags) []funnel.Option {
	if *flags.crmWebhookURL == "" {
		slog.Debug("No CRM webhook configured, lead reporting disabled")
		return nil
	}
	reporter, err := crm.NewHTTPReporter(crm.WithWebhookURL(*flags.crmWebhookURL))
	if err != nil {
		slog.Warn("CRM reporter initialization failed, lead reporting disabled", "error", err)
		return nil
	}
	return []funnel.Option{funnel.WithReporter(reporter)}
}

// buildAvailabilityOption constructs the booking calendar capability when configured
func buildAvailabilityOption(flags Flags) []funnel.Option {
	if *flags.availabilityURL == "" {
		slog.Debug("No availability service configured, all dates reported available")
		return nil
	}
	checker, err := availability.NewHTTPChecker(availability.WithBaseURL(*flags.availabilityURL))
	if err != nil {
		slog.Warn("Availability checker initialization failed", "error", err)
		return nil
	}
	return []funnel.Option{funnel.WithAvailabilityChecker(checker)}
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.verifyToken != "" {
		apiOpts = append(apiOpts, api.WithVerifyToken(*flags.verifyToken))
	}
	return apiOpts
}
