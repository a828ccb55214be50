// Package config provides configuration types and loading for the Atlas
// agent service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the root configuration struct. All fields load from ATLAS_*
// environment variables.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	LLM          LLMConfig          `json:"llm"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Scheduler    SchedulerConfig    `json:"scheduler"`
	Logging      LoggingConfig      `json:"logging"`
}

// ServerConfig groups HTTP listener settings.
type ServerConfig struct {
	Addr string `json:"addr" envconfig:"HTTP_ADDR" default:":8080"`
}

// DatabaseConfig groups store settings.
type DatabaseConfig struct {
	Path string `json:"path" envconfig:"DB_PATH"`
}

// LLMConfig groups hosted-model settings. Model here is the fallback for
// agents that do not set one; temperature and max tokens always come from
// the agent row.
type LLMConfig struct {
	BaseURL string `json:"baseUrl" envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	APIKey  string `json:"apiKey" envconfig:"LLM_API_KEY"`
	Model   string `json:"model" envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	// Prices are USD per million tokens, used for per-message cost accounting.
	PromptPricePerMTok     float64 `json:"promptPricePerMTok" envconfig:"LLM_PROMPT_PRICE_PER_MTOK"`
	CompletionPricePerMTok float64 `json:"completionPricePerMTok" envconfig:"LLM_COMPLETION_PRICE_PER_MTOK"`
}

// OrchestratorConfig groups agent-loop settings.
type OrchestratorConfig struct {
	MaxToolIterations  int           `json:"maxToolIterations" envconfig:"MAX_TOOL_ITERATIONS" default:"8"`
	HistoryLimit       int           `json:"historyLimit" envconfig:"HISTORY_LIMIT" default:"30"`
	ToolOutputMaxRunes int           `json:"toolOutputMaxRunes" envconfig:"TOOL_OUTPUT_MAX_RUNES" default:"4000"`
	AgentCacheSize     int           `json:"agentCacheSize" envconfig:"AGENT_CACHE_SIZE" default:"128"`
	AgentCacheTTL      time.Duration `json:"agentCacheTTL" envconfig:"AGENT_CACHE_TTL" default:"30s"`
}

// SchedulerConfig groups scheduled-task runner settings.
type SchedulerConfig struct {
	Enabled      bool          `json:"enabled" envconfig:"SCHEDULER_ENABLED" default:"true"`
	Interval     time.Duration `json:"interval" envconfig:"SCHEDULER_INTERVAL" default:"1m"`
	StaleTimeout time.Duration `json:"staleTimeout" envconfig:"SCHEDULER_STALE_TIMEOUT" default:"10m"`
}

// LoggingConfig groups logger settings.
type LoggingConfig struct {
	Level string `json:"level" envconfig:"LOG_LEVEL" default:"info"`
	File  string `json:"file" envconfig:"LOG_FILE"`
}

// DefaultDataDir returns the default data directory (project-local .atlas if
// present, else ~/.config/atlas-agent).
func DefaultDataDir() string {
	cwd, _ := os.Getwd()
	local := filepath.Join(cwd, ".atlas")
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "atlas-agent")
}

// Load reads configuration from ATLAS_* environment variables and fills in
// path defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("atlas", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(DefaultDataDir(), "atlas.db")
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(DefaultDataDir(), "atlas.log")
	}
	return &cfg, nil
}
