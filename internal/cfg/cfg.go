package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Supported LLM provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds application-level configuration. Ambient concerns (logging,
// tracing, http server, ops listener) register their own flags from go-core.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	LLMProvider           string
	GeminiAPIKey          string
	GeminiModel           string
	OpenAIAPIKey          string
	OpenAIModel           string
	GoogleMapsAPIKey      string
	DatabaseURL           string
	HistoryFile           string
	HistoryMaxRecords     int
	FacilityRadiusMeters  int
	FacilityMaxResults    int
	SlackWebhookURL       string
	APIToken              string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.LLMProvider, "llm-provider", ProviderGemini, "LLM provider to use for triage (gemini or openai)")
	fs.StringVar(&c.GeminiAPIKey, "gemini-api-key", "", "API key for the Gemini LLM provider")
	fs.StringVar(&c.GeminiModel, "gemini-model", "gemini-2.5-flash", "Gemini model to use")
	fs.StringVar(&c.OpenAIAPIKey, "openai-api-key", "", "API key for the OpenAI LLM provider")
	fs.StringVar(&c.OpenAIModel, "openai-model", "gpt-4o-mini", "OpenAI model to use")
	fs.StringVar(&c.GoogleMapsAPIKey, "google-maps-api-key", "", "Google Maps API key for geocoding and facility search (empty = disabled)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for history storage (empty = file store)")
	fs.StringVar(&c.HistoryFile, "history-file", "history.json", "path to the JSON history file used when no database is configured")
	fs.IntVar(&c.HistoryMaxRecords, "history-max-records", 20, "maximum number of retained history records (1..1000)")
	fs.IntVar(&c.FacilityRadiusMeters, "facility-radius-meters", 5000, "facility search radius in meters (1..50000)")
	fs.IntVar(&c.FacilityMaxResults, "facility-max-results", 3, "maximum facility recommendations per session (1..20)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for ER notifications")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on API requests (empty = no auth)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Exactly one provider is active; its key and model are required.
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when llm-provider=gemini"))
		}
		if c.GeminiModel == "" {
			errs = append(errs, errors.New("GEMINI_MODEL is required when llm-provider=gemini"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when llm-provider=openai"))
		}
		if c.OpenAIModel == "" {
			errs = append(errs, errors.New("OPENAI_MODEL is required when llm-provider=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid LLM_PROVIDER %q (must be %s or %s)", c.LLMProvider, ProviderGemini, ProviderOpenAI))
	}

	if c.DatabaseURL == "" && c.HistoryFile == "" {
		errs = append(errs, errors.New("HISTORY_FILE is required when no DATABASE_URL is configured"))
	}

	if c.HistoryMaxRecords <= 0 || c.HistoryMaxRecords > 1000 {
		errs = append(errs, fmt.Errorf("invalid HISTORY_MAX_RECORDS %d (must be 1..1000)", c.HistoryMaxRecords))
	}

	if c.FacilityRadiusMeters <= 0 || c.FacilityRadiusMeters > 50000 {
		errs = append(errs, fmt.Errorf("invalid FACILITY_RADIUS_METERS %d (must be 1..50000)", c.FacilityRadiusMeters))
	}
	if c.FacilityMaxResults <= 0 || c.FacilityMaxResults > 20 {
		errs = append(errs, fmt.Errorf("invalid FACILITY_MAX_RESULTS %d (must be 1..20)", c.FacilityMaxResults))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
