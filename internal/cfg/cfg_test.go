package cfg

import (
	"flag"
	"math"
	"strings"
	"testing"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		LLMProvider:           ProviderGemini,
		GeminiAPIKey:          "test-key",
		GeminiModel:           "gemini-2.5-flash",
		HistoryFile:           "history.json",
		HistoryMaxRecords:     20,
		FacilityRadiusMeters:  5000,
		FacilityMaxResults:    3,
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.LLMProvider != ProviderGemini {
		t.Errorf("LLMProvider = %q, want %q", c.LLMProvider, ProviderGemini)
	}
	if c.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q, want %q", c.GeminiModel, "gemini-2.5-flash")
	}
	if c.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q, want %q", c.OpenAIModel, "gpt-4o-mini")
	}
	if c.HistoryFile != "history.json" {
		t.Errorf("HistoryFile = %q, want %q", c.HistoryFile, "history.json")
	}
	if c.HistoryMaxRecords != 20 {
		t.Errorf("HistoryMaxRecords = %d, want 20", c.HistoryMaxRecords)
	}
	if c.FacilityRadiusMeters != 5000 {
		t.Errorf("FacilityRadiusMeters = %d, want 5000", c.FacilityRadiusMeters)
	}
	if c.FacilityMaxResults != 3 {
		t.Errorf("FacilityMaxResults = %d, want 3", c.FacilityMaxResults)
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-llm-provider", "openai",
		"-openai-api-key", "sk-override",
		"-openai-model", "gpt-4o",
		"-google-maps-api-key", "maps-key",
		"-database-url", "postgres://localhost/careroute",
		"-history-max-records", "50",
		"-facility-radius-meters", "10000",
		"-facility-max-results", "5",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.LLMProvider != ProviderOpenAI {
		t.Errorf("LLMProvider = %q, want %q", c.LLMProvider, ProviderOpenAI)
	}
	if c.OpenAIAPIKey != "sk-override" {
		t.Errorf("OpenAIAPIKey = %q, want %q", c.OpenAIAPIKey, "sk-override")
	}
	if c.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want %q", c.OpenAIModel, "gpt-4o")
	}
	if c.GoogleMapsAPIKey != "maps-key" {
		t.Errorf("GoogleMapsAPIKey = %q, want maps-key", c.GoogleMapsAPIKey)
	}
	if c.DatabaseURL != "postgres://localhost/careroute" {
		t.Errorf("DatabaseURL = %q, want the override", c.DatabaseURL)
	}
	if c.HistoryMaxRecords != 50 {
		t.Errorf("HistoryMaxRecords = %d, want 50", c.HistoryMaxRecords)
	}
	if c.FacilityRadiusMeters != 10000 {
		t.Errorf("FacilityRadiusMeters = %d, want 10000", c.FacilityRadiusMeters)
	}
	if c.FacilityMaxResults != 5 {
		t.Errorf("FacilityMaxResults = %d, want 5", c.FacilityMaxResults)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "base config is valid",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name: "openai provider valid",
			mutate: func(c *Config) {
				c.LLMProvider = ProviderOpenAI
				c.OpenAIAPIKey = "sk-test"
				c.OpenAIModel = "gpt-4o-mini"
				c.GeminiAPIKey = ""
			},
			wantErr: false,
		},
		// Drain and shutdown budgets
		{
			name:      "drain zero",
			mutate:    func(c *Config) { c.DrainSeconds = 0 },
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "drain above max",
			mutate:    func(c *Config) { c.DrainSeconds = 301; c.ShutdownBudgetSeconds = 302 },
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "budget zero",
			mutate:    func(c *Config) { c.ShutdownBudgetSeconds = 0 },
			wantErr:   true,
			errSubstr: []string{"SHUTDOWN_BUDGET_SECONDS"},
		},
		{
			name:      "budget equals drain",
			mutate:    func(c *Config) { c.ShutdownBudgetSeconds = c.DrainSeconds },
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		// APIPort boundaries
		{
			name:      "port zero",
			mutate:    func(c *Config) { c.APIPort = 0 },
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "port above max",
			mutate:    func(c *Config) { c.APIPort = 65536 },
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		// Provider selection
		{
			name:      "unknown provider",
			mutate:    func(c *Config) { c.LLMProvider = "llama" },
			wantErr:   true,
			errSubstr: []string{"LLM_PROVIDER"},
		},
		{
			name:      "gemini selected without key",
			mutate:    func(c *Config) { c.GeminiAPIKey = "" },
			wantErr:   true,
			errSubstr: []string{"GEMINI_API_KEY"},
		},
		{
			name:      "gemini selected without model",
			mutate:    func(c *Config) { c.GeminiModel = "" },
			wantErr:   true,
			errSubstr: []string{"GEMINI_MODEL"},
		},
		{
			name: "openai selected without key",
			mutate: func(c *Config) {
				c.LLMProvider = ProviderOpenAI
				c.OpenAIAPIKey = ""
				c.OpenAIModel = "gpt-4o-mini"
			},
			wantErr:   true,
			errSubstr: []string{"OPENAI_API_KEY"},
		},
		{
			name: "inactive provider key not required",
			mutate: func(c *Config) {
				// gemini is active; openai fields may stay empty
				c.OpenAIAPIKey = ""
				c.OpenAIModel = ""
			},
			wantErr: false,
		},
		// History
		{
			name:      "no history file and no database",
			mutate:    func(c *Config) { c.HistoryFile = ""; c.DatabaseURL = "" },
			wantErr:   true,
			errSubstr: []string{"HISTORY_FILE"},
		},
		{
			name:    "database without history file is fine",
			mutate:  func(c *Config) { c.HistoryFile = ""; c.DatabaseURL = "postgres://localhost/x" },
			wantErr: false,
		},
		{
			name:      "history records zero",
			mutate:    func(c *Config) { c.HistoryMaxRecords = 0 },
			wantErr:   true,
			errSubstr: []string{"HISTORY_MAX_RECORDS"},
		},
		{
			name:      "history records above max",
			mutate:    func(c *Config) { c.HistoryMaxRecords = 1001 },
			wantErr:   true,
			errSubstr: []string{"HISTORY_MAX_RECORDS"},
		},
		// Facility search bounds
		{
			name:      "radius zero",
			mutate:    func(c *Config) { c.FacilityRadiusMeters = 0 },
			wantErr:   true,
			errSubstr: []string{"FACILITY_RADIUS_METERS"},
		},
		{
			name:      "radius above max",
			mutate:    func(c *Config) { c.FacilityRadiusMeters = 50001 },
			wantErr:   true,
			errSubstr: []string{"FACILITY_RADIUS_METERS"},
		},
		{
			name:      "max results zero",
			mutate:    func(c *Config) { c.FacilityMaxResults = 0 },
			wantErr:   true,
			errSubstr: []string{"FACILITY_MAX_RESULTS"},
		},
		// Error accumulation
		{
			name: "multiple invalid fields reported together",
			mutate: func(c *Config) {
				c.DrainSeconds = 0
				c.APIPort = 0
				c.GeminiAPIKey = ""
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "HTTP_PORT", "GEMINI_API_KEY"},
		},
		{
			name:      "extreme negative values",
			mutate:    func(c *Config) { c.DrainSeconds = math.MinInt32; c.APIPort = math.MinInt32 },
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "HTTP_PORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validBase()
			tt.mutate(&c)

			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}
