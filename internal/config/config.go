package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "FEEDSIEVE_CONFIG"
	apiKeyEnv        = "GOOGLE_API_KEY"
	primaryModelEnv  = "FEEDSIEVE_PRIMARY_MODEL"
	fallbackModelEnv = "FEEDSIEVE_FALLBACK_MODEL"
	outputDirEnv     = "FEEDSIEVE_OUTPUT_DIR"
	stateFileEnv     = "FEEDSIEVE_STATE_FILE"
)

// Session scope of the oracle model downgrade.
const (
	ScopeRun       = "run"
	ScopePerSource = "per_source"
)

// Policy on total oracle exhaustion for one source.
const (
	ExhaustAbortRun   = "abort_run"
	ExhaustSkipSource = "skip_source"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Output    OutputConfig    `yaml:"output"`
	State     StateConfig     `yaml:"state"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Rulesets  []RulesetConfig `yaml:"rulesets"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OracleConfig defines how to contact the classification oracle.
type OracleConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"apiKey"`
	PrimaryModel   string `yaml:"primaryModel"`
	FallbackModel  string `yaml:"fallbackModel"`
	MaxAttempts    int    `yaml:"maxAttempts"`
	BackoffSeconds int    `yaml:"backoffSeconds"`
	SessionScope   string `yaml:"sessionScope"`
}

// Backoff resolves the configured retry delay.
func (o OracleConfig) Backoff() time.Duration {
	return time.Duration(o.BackoffSeconds) * time.Second
}

// PipelineConfig carries run-level policy flags.
type PipelineConfig struct {
	OnOracleExhaustion string `yaml:"onOracleExhaustion"`
}

// OutputConfig describes where run artifacts are written.
type OutputConfig struct {
	Dir          string   `yaml:"dir"`
	BaseFilename string   `yaml:"baseFilename"`
	HTML         bool     `yaml:"html"`
	DisplayZones []string `yaml:"displayZones"`
}

// StateConfig locates the checkpoint token file.
type StateConfig struct {
	File string `yaml:"file"`
}

// SchedulerConfig enables the built-in interval scheduler; disabled, the
// process runs the pipeline once and exits (external scheduler mode).
type SchedulerConfig struct {
	Enabled       bool `yaml:"enabled"`
	IntervalHours int  `yaml:"intervalHours"`
}

// Interval resolves the scheduler period.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

// RulesetConfig defines one classification ruleset.
type RulesetConfig struct {
	Name    string   `yaml:"name"`
	Match   string   `yaml:"match"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Prompt  string   `yaml:"prompt"`
}

// SourceConfig describes a single feed source and its ruleset.
type SourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Ruleset string `yaml:"ruleset"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	return cfg
}

// RunLink builds the workflow run URL appended to reports, when the
// process runs inside GitHub Actions.
func RunLink() string {
	server := os.Getenv("GITHUB_SERVER_URL")
	repo := os.Getenv("GITHUB_REPOSITORY")
	runID := os.Getenv("GITHUB_RUN_ID")
	if server == "" || repo == "" || runID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", server, repo, runID)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv(primaryModelEnv); v != "" {
		c.Oracle.PrimaryModel = v
	}
	if v := os.Getenv(fallbackModelEnv); v != "" {
		c.Oracle.FallbackModel = v
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(stateFileEnv); v != "" {
		c.State.File = v
	}
}

func (c *Config) normalize() {
	switch strings.TrimSpace(c.Oracle.SessionScope) {
	case ScopeRun, ScopePerSource:
	default:
		if c.Oracle.SessionScope != "" {
			log.Printf("config: unknown sessionScope %q, using %s", c.Oracle.SessionScope, ScopePerSource)
		}
		c.Oracle.SessionScope = ScopePerSource
	}

	switch strings.TrimSpace(c.Pipeline.OnOracleExhaustion) {
	case ExhaustAbortRun, ExhaustSkipSource:
	default:
		if c.Pipeline.OnOracleExhaustion != "" {
			log.Printf("config: unknown onOracleExhaustion %q, using %s", c.Pipeline.OnOracleExhaustion, ExhaustAbortRun)
		}
		c.Pipeline.OnOracleExhaustion = ExhaustAbortRun
	}

	if len(c.Sources) == 0 {
		c.Sources = defaultConfig().Sources
	}
	if len(c.Rulesets) == 0 {
		c.Rulesets = defaultConfig().Rulesets
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Oracle.Endpoint != "" {
		base.Oracle.Endpoint = override.Oracle.Endpoint
	}
	if override.Oracle.APIKey != "" {
		base.Oracle.APIKey = override.Oracle.APIKey
	}
	if override.Oracle.PrimaryModel != "" {
		base.Oracle.PrimaryModel = override.Oracle.PrimaryModel
	}
	if override.Oracle.FallbackModel != "" {
		base.Oracle.FallbackModel = override.Oracle.FallbackModel
	}
	if override.Oracle.MaxAttempts > 0 {
		base.Oracle.MaxAttempts = override.Oracle.MaxAttempts
	}
	if override.Oracle.BackoffSeconds > 0 {
		base.Oracle.BackoffSeconds = override.Oracle.BackoffSeconds
	}
	if override.Oracle.SessionScope != "" {
		base.Oracle.SessionScope = override.Oracle.SessionScope
	}

	if override.Pipeline.OnOracleExhaustion != "" {
		base.Pipeline.OnOracleExhaustion = override.Pipeline.OnOracleExhaustion
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}
	if override.Output.BaseFilename != "" {
		base.Output.BaseFilename = override.Output.BaseFilename
	}
	if override.Output.HTML {
		base.Output.HTML = true
	}
	if len(override.Output.DisplayZones) > 0 {
		base.Output.DisplayZones = override.Output.DisplayZones
	}

	if override.State.File != "" {
		base.State.File = override.State.File
	}

	if override.Scheduler.Enabled {
		base.Scheduler = override.Scheduler
	}

	if len(override.Rulesets) > 0 {
		base.Rulesets = override.Rulesets
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}
