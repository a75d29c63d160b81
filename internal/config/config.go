// internal/config/config.go
//
// This package handles configuration and the .council directory structure.
// Every project that runs the council gets a .council/ folder created in its
// root, holding configuration, logs, and persisted iteration records.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// CouncilDir is the name of the directory we create in each project
	CouncilDir = ".council"

	defaultTrendLimit = 10
)

const defaultProjectConfigYAML = `# council project configuration
version: 1

# Text-generation backend. The openai provider also covers any
# OpenAI-compatible endpoint (Groq, Together, etc.) via base_url.
llm:
  provider: openai
  model: llama-3.3-70b-versatile
  base_url: https://api.groq.com/openai/v1
  api_key_env: GROQ_API_KEY

# Uniform ranges the engagement simulator draws from.
engagement:
  likes_min: 2000
  likes_max: 8000
  shares_min: 100
  shares_max: 500
  comments_min: 50
  comments_max: 200
  sentiment_min: 0.6
  sentiment_max: 0.9

trends:
  limit: 10
  subreddits:
    - technology
    - startups
  google_keywords:
    - AI
    - technology
    - startup
    - innovation
    - productivity

bridge:
  enabled: false
  host: 127.0.0.1
  port: 4270
`

// LLMConfig selects the text-generation provider used by all agents.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// EngagementConfig holds the uniform ranges the simulator samples from.
// The bounds are a policy choice, not a derived constraint, so they live
// in config rather than code.
type EngagementConfig struct {
	LikesMin     int     `yaml:"likes_min"`
	LikesMax     int     `yaml:"likes_max"`
	SharesMin    int     `yaml:"shares_min"`
	SharesMax    int     `yaml:"shares_max"`
	CommentsMin  int     `yaml:"comments_min"`
	CommentsMax  int     `yaml:"comments_max"`
	SentimentMin float64 `yaml:"sentiment_min"`
	SentimentMax float64 `yaml:"sentiment_max"`
}

// TrendsConfig controls the trend sources consulted each iteration.
type TrendsConfig struct {
	Limit          int      `yaml:"limit"`
	Subreddits     []string `yaml:"subreddits,omitempty"`
	GoogleKeywords []string `yaml:"google_keywords,omitempty"`
}

// BridgeConfig configures the read-only HTTP bridge for dashboards.
type BridgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// ProjectConfig models .council/config.yaml.
type ProjectConfig struct {
	Version    int              `yaml:"version"`
	LLM        LLMConfig        `yaml:"llm"`
	Engagement EngagementConfig `yaml:"engagement"`
	Trends     TrendsConfig     `yaml:"trends"`
	Bridge     BridgeConfig     `yaml:"bridge"`
}

// Config holds the runtime configuration for the council.
type Config struct {
	// ProjectDir is the directory where the user ran `council` from
	ProjectDir string

	// CouncilProjectDir is ProjectDir/.council
	CouncilProjectDir string

	Project ProjectConfig
}

// InitCouncilDir creates the .council directory structure in the given
// project directory. This is called on startup by every entry point.
//
// Structure created:
// .council/
// ├── state/
// │   └── iterations/  <- One JSON record per completed iteration
// ├── logs/            <- Runtime log and the session journal
// ├── images/          <- Generated post images
// └── data/            <- Sample trend data
func InitCouncilDir(projectDir string) error {
	councilDir := filepath.Join(projectDir, CouncilDir)

	dirs := []string{
		filepath.Join(councilDir, "state", "iterations"),
		filepath.Join(councilDir, "logs"),
		filepath.Join(councilDir, "images"),
		filepath.Join(councilDir, "data"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if err := ensureFile(filepath.Join(councilDir, "config.yaml"), defaultProjectConfigYAML); err != nil {
		return err
	}
	if err := ensureFile(filepath.Join(councilDir, "agents.yaml"), DefaultRosterYAML); err != nil {
		return err
	}

	return nil
}

// NewConfig creates a Config populated from .council/config.yaml, falling
// back to defaults when the file is absent.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		CouncilProjectDir: filepath.Join(projectDir, CouncilDir),
		Project:           defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.CouncilProjectDir, "state")
}

// IterationsDir returns the directory where iteration records are persisted.
func (c *Config) IterationsDir() string {
	return filepath.Join(c.StateDir(), "iterations")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.CouncilProjectDir, "logs")
}

// ImagesDir returns the directory generated post images are written to.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.CouncilProjectDir, "images")
}

// DataDir returns the directory holding bundled data files.
func (c *Config) DataDir() string {
	return filepath.Join(c.CouncilProjectDir, "data")
}

// SampleTrendsPath returns the on-disk location of the sample trend set.
func (c *Config) SampleTrendsPath() string {
	return filepath.Join(c.DataDir(), "sample_trends.yaml")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.CouncilProjectDir, "config.yaml")
}

// RosterPath returns the on-disk location of the agent roster.
func (c *Config) RosterPath() string {
	return filepath.Join(c.CouncilProjectDir, "agents.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "llama-3.3-70b-versatile",
			BaseURL:   "https://api.groq.com/openai/v1",
			APIKeyEnv: "GROQ_API_KEY",
		},
		Engagement: defaultEngagementConfig(),
		Trends: TrendsConfig{
			Limit:          defaultTrendLimit,
			Subreddits:     []string{"technology", "startups"},
			GoogleKeywords: []string{"AI", "technology", "startup", "innovation", "productivity"},
		},
		Bridge: BridgeConfig{
			Host: "127.0.0.1",
			Port: 4270,
		},
	}
}

func defaultEngagementConfig() EngagementConfig {
	return EngagementConfig{
		LikesMin:     2000,
		LikesMax:     8000,
		SharesMin:    100,
		SharesMax:    500,
		CommentsMin:  50,
		CommentsMax:  200,
		SentimentMin: 0.6,
		SentimentMax: 0.9,
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.LLM.Provider == "" {
		pc.LLM.Provider = "openai"
	}
	zero := EngagementConfig{}
	if pc.Engagement == zero {
		pc.Engagement = defaultEngagementConfig()
	}
	if pc.Trends.Limit == 0 {
		pc.Trends.Limit = defaultTrendLimit
	}
	if pc.Bridge.Host == "" {
		pc.Bridge.Host = "127.0.0.1"
	}
	if pc.Bridge.Port == 0 {
		pc.Bridge.Port = 4270
	}
}

func (pc *ProjectConfig) normalize() {
	pc.LLM.Provider = strings.ToLower(strings.TrimSpace(pc.LLM.Provider))
	pc.LLM.Model = strings.TrimSpace(pc.LLM.Model)
	pc.LLM.BaseURL = strings.TrimSpace(pc.LLM.BaseURL)
	pc.LLM.APIKeyEnv = strings.TrimSpace(pc.LLM.APIKeyEnv)
	for i := range pc.Trends.Subreddits {
		pc.Trends.Subreddits[i] = strings.TrimSpace(pc.Trends.Subreddits[i])
	}
	for i := range pc.Trends.GoogleKeywords {
		pc.Trends.GoogleKeywords[i] = strings.TrimSpace(pc.Trends.GoogleKeywords[i])
	}
	pc.Bridge.Host = strings.TrimSpace(pc.Bridge.Host)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.LLM.Provider {
	case "openai", "ollama", "mock":
	default:
		return fmt.Errorf("llm.provider must be 'openai', 'ollama', or 'mock'")
	}
	if err := pc.Engagement.validate(); err != nil {
		return fmt.Errorf("engagement: %w", err)
	}
	if pc.Trends.Limit < 1 {
		return fmt.Errorf("trends.limit must be >= 1")
	}
	if pc.Bridge.Port < 1 || pc.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port must be in 1..65535")
	}
	return nil
}

func (ec EngagementConfig) validate() error {
	ranges := []struct {
		name     string
		min, max int
	}{
		{"likes", ec.LikesMin, ec.LikesMax},
		{"shares", ec.SharesMin, ec.SharesMax},
		{"comments", ec.CommentsMin, ec.CommentsMax},
	}
	for _, r := range ranges {
		if r.min < 0 || r.max < r.min {
			return fmt.Errorf("%s range [%d, %d] is invalid", r.name, r.min, r.max)
		}
	}
	if ec.SentimentMin < 0 || ec.SentimentMax > 1 || ec.SentimentMax < ec.SentimentMin {
		return fmt.Errorf("sentiment range [%g, %g] must sit inside [0, 1]", ec.SentimentMin, ec.SentimentMax)
	}
	return nil
}

func ensureFile(path, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
