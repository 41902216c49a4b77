package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures all tunable settings for the ApplyNERD MCP server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Planner PlannerConfig `yaml:"planner"`
	Policy  PolicyConfig  `yaml:"policy"`
	Facts   FactsConfig   `yaml:"facts"`
	MCP     MCPConfig     `yaml:"mcp"`
	Trace   TraceConfig   `yaml:"trace"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// Log file used in stdio mode (stderr interferes with the MCP protocol).
	LogFile string `yaml:"log_file"`
	// LogLevel: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`
	// ProfilePath points at the JSON document holding applicant profiles
	// and tenant alias overrides.
	ProfilePath string `yaml:"profile_path"`
}

// BrowserConfig configures how sessions launch and drive Chrome through Rod.
type BrowserConfig struct {
	// Control endpoint for Rod (e.g., ws://localhost:9222). When empty a
	// browser is launched per session via Rod's launcher.
	DebuggerURL string `yaml:"debugger_url"`
	// Optional Chrome binary path for the launcher.
	Bin string `yaml:"bin"`
	// Headless controls whether Chrome runs in headless mode (default: true).
	Headless *bool `yaml:"headless"`
	// Default navigation timeout (e.g., "20s").
	DefaultNavigationTimeout string `yaml:"default_navigation_timeout"`
	// Viewport for new pages.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
	// Screenshot push interval for attached viewers (e.g., "1s").
	ScreenshotInterval string `yaml:"screenshot_interval"`
}

// PlannerConfig controls the tiered fill-plan pipeline.
type PlannerConfig struct {
	// AllowFallback enables the generative tier when the rule tier is empty.
	AllowFallback bool `yaml:"allow_fallback"`
	// Model name for the generative tier.
	Model string `yaml:"model"`
	// Environment variable holding the API key for the generative tier.
	APIKeyEnv string `yaml:"api_key_env"`
	// MaxFields caps how many discovered controls a single scan may emit.
	MaxFields int `yaml:"max_fields"`
	// MaxFallbackFields caps how many descriptors are serialized into the
	// generative request.
	MaxFallbackFields int `yaml:"max_fallback_fields"`
	// RequestTimeout bounds one generative call (e.g., "45s").
	RequestTimeout string `yaml:"request_timeout"`
}

// PolicyConfig is the fill policy surface: which canonical keys are never
// auto-filled and how sensitive categories behave.
type PolicyConfig struct {
	// SkipKeys lists canonical keys that are never planned or executed.
	SkipKeys []string `yaml:"skip_keys"`
	// EEOConsent gates auto-filling EEO categories with the configured
	// answers. Off by default: without explicit operator consent the EEO
	// keys resolve empty and only surface as suggestions.
	EEOConsent bool `yaml:"eeo_consent"`
	// Fixed answers used when EEOConsent is set.
	EEOGender        string `yaml:"eeo_gender"`
	EEORaceEthnicity string `yaml:"eeo_race_ethnicity"`
	EEOVeteran       string `yaml:"eeo_veteran"`
	EEODisability    string `yaml:"eeo_disability"`
	// Scheduling answers that have no profile source.
	StartDate    string `yaml:"start_date"`
	NoticePeriod string `yaml:"notice_period"`
}

// FactsConfig controls the embedded audit fact engine.
type FactsConfig struct {
	Enable          bool   `yaml:"enable"`
	SchemaPath      string `yaml:"schema_path"`
	FactBufferLimit int    `yaml:"fact_buffer_limit"`
}

type MCPConfig struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// TraceConfig controls per-run fill trace recording.
type TraceConfig struct {
	Enable bool   `yaml:"enable"`
	Dir    string `yaml:"dir"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:        "applynerd-mcp",
			Version:     "0.1.0",
			LogFile:     "applynerd-mcp.log",
			LogLevel:    "info",
			ProfilePath: "profiles.json",
		},
		Browser: BrowserConfig{
			DefaultNavigationTimeout: "20s",
			ViewportWidth:            1440,
			ViewportHeight:           900,
			ScreenshotInterval:       "1s",
		},
		Planner: PlannerConfig{
			AllowFallback:     true,
			Model:             "gemini-2.0-flash",
			APIKeyEnv:         "GEMINI_API_KEY",
			MaxFields:         300,
			MaxFallbackFields: 40,
			RequestTimeout:    "45s",
		},
		Policy: PolicyConfig{
			SkipKeys:         []string{"cover_letter"},
			EEOConsent:       false,
			EEOGender:        "man",
			EEORaceEthnicity: "Asian",
			EEOVeteran:       "I am not a protected veteran",
			EEODisability:    "No, I do not have a disability",
			StartDate:        "Immediately",
			NoticePeriod:     "2 weeks",
		},
		Facts: FactsConfig{
			Enable:          true,
			SchemaPath:      "schemas/autofill.mg",
			FactBufferLimit: 4096,
		},
		MCP: MCPConfig{
			SSEPort: 0,
		},
		Trace: TraceConfig{
			Enable: false,
			Dir:    "data/traces",
		},
	}
}

// Load reads YAML config from disk and overlays it on the defaults. A missing
// file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate ensures required fields exist so the server can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Planner.MaxFields <= 0 {
		return errors.New("planner.max_fields must be positive")
	}
	if c.Planner.AllowFallback && c.Planner.Model == "" {
		return errors.New("planner.model is required when fallback is enabled")
	}
	for i, k := range c.Policy.SkipKeys {
		if k == "" {
			return fmt.Errorf("policy.skip_keys[%d] is empty", i)
		}
	}
	return nil
}

// NavigationTimeout returns the parsed navigation timeout with a sane default.
func (b BrowserConfig) NavigationTimeout() time.Duration {
	if b.DefaultNavigationTimeout == "" {
		return 20 * time.Second
	}
	d, err := time.ParseDuration(b.DefaultNavigationTimeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// IsHeadless returns whether Chrome should run in headless mode (default: true).
func (b BrowserConfig) IsHeadless() bool {
	if b.Headless == nil {
		return true
	}
	return *b.Headless
}

// GetViewportWidth returns the viewport width with a sane default.
func (b BrowserConfig) GetViewportWidth() int {
	if b.ViewportWidth <= 0 {
		return 1440
	}
	return b.ViewportWidth
}

// GetViewportHeight returns the viewport height with a sane default.
func (b BrowserConfig) GetViewportHeight() int {
	if b.ViewportHeight <= 0 {
		return 900
	}
	return b.ViewportHeight
}

// StreamInterval returns the parsed screenshot push interval (default: 1s).
func (b BrowserConfig) StreamInterval() time.Duration {
	if b.ScreenshotInterval == "" {
		return time.Second
	}
	d, err := time.ParseDuration(b.ScreenshotInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// FallbackTimeout returns the parsed generative request timeout (default: 45s).
func (p PlannerConfig) FallbackTimeout() time.Duration {
	if p.RequestTimeout == "" {
		return 45 * time.Second
	}
	d, err := time.ParseDuration(p.RequestTimeout)
	if err != nil || d <= 0 {
		return 45 * time.Second
	}
	return d
}
