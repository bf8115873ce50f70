package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources   Sources   `yaml:"sources"`
	Collect   Collect   `yaml:"collect"`
	Keywords  []string  `yaml:"keywords"`
	Dedup     Dedup     `yaml:"dedup"`
	Rank      Rank      `yaml:"rank"`
	Enrich    Enrich    `yaml:"enrich"`
	Translate Translate `yaml:"translate"`
	Email     Email     `yaml:"email"`
	Subscribe Subscribe `yaml:"subscribe"`
	Output    Output    `yaml:"output"`
	Logging   Logging   `yaml:"logging"`
}

type Sources struct {
	Feeds       []Feed            `yaml:"feeds"`
	HackerNews  HackerNewsConfig  `yaml:"hackernews"`
	Reddit      RedditConfig      `yaml:"reddit"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Nitter      NitterConfig      `yaml:"nitter"`
	Tophub      TophubConfig      `yaml:"tophub"`
	Sogou       SogouConfig       `yaml:"sogou"`
}

type Feed struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Language string `yaml:"language"`
}

type HackerNewsConfig struct {
	Enabled    bool `yaml:"enabled"`
	TopStories int  `yaml:"top_stories"`
}

type RedditConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Subreddit    string `yaml:"subreddit"`
	UserAgent    string `yaml:"user_agent"`
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

// IsConfigured reports whether API credentials are present.
func (r RedditConfig) IsConfigured() bool {
	return r.ClientID != "" && r.ClientSecret != ""
}

type HuggingFaceConfig struct {
	Enabled bool `yaml:"enabled"`
}

type NitterConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Instances []string `yaml:"instances"`
	Users     []string `yaml:"users"`
}

type TophubConfig struct {
	Enabled bool          `yaml:"enabled"`
	Boards  []TophubBoard `yaml:"boards"`
}

type TophubBoard struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type SogouConfig struct {
	Enabled bool     `yaml:"enabled"`
	Queries []string `yaml:"queries"`
}

type Collect struct {
	WindowHours    int `yaml:"window_hours"`
	MaxPerSource   int `yaml:"max_per_source"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
	Concurrency    int `yaml:"concurrency"`
}

type Dedup struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

type Rank struct {
	TopN             int                `yaml:"top_n"`
	RecencyWeight    float64            `yaml:"recency_weight"`
	PopularityWeight float64            `yaml:"popularity_weight"`
	SourceWeight     float64            `yaml:"source_weight"`
	SourcePriority   map[string]float64 `yaml:"source_priority"`
}

type Enrich struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

type Translate struct {
	Enabled        bool     `yaml:"enabled"`
	TargetLanguage string   `yaml:"target_language"`
	NativeSources  []string `yaml:"native_sources"`
	APIKey         string   `yaml:"-"`
}

// IsConfigured reports whether the translation API can be called.
func (t Translate) IsConfigured() bool {
	return t.Enabled && t.APIKey != ""
}

type Email struct {
	SMTPHost      string   `yaml:"smtp_host"`
	SMTPPort      int      `yaml:"smtp_port"`
	SubjectPrefix string   `yaml:"subject_prefix"`
	Username      string   `yaml:"-"`
	Password      string   `yaml:"-"`
	From          string   `yaml:"-"`
	Recipients    []string `yaml:"-"`
}

type Subscribe struct {
	IMAPHost         string `yaml:"imap_host"`
	SubscribeToken   string `yaml:"subscribe_token"`
	UnsubscribeToken string `yaml:"unsubscribe_token"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for ainews.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "ainews")
}

// DataDir returns the XDG data directory for ainews.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "ainews")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/ainews/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'ainews init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file, then applies environment
// overrides for credentials and recipients.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Collect: Collect{
			WindowHours:    48,
			MaxPerSource:   50,
			TimeoutSeconds: 20,
			Concurrency:    4,
		},
		Dedup: Dedup{SimilarityThreshold: 0.7},
		Rank: Rank{
			TopN:             10,
			RecencyWeight:    0.4,
			PopularityWeight: 0.3,
			SourceWeight:     0.3,
		},
		Enrich: Enrich{Enabled: true, TimeoutSeconds: 15},
		Translate: Translate{
			Enabled:        true,
			TargetLanguage: "zh-CN",
		},
		Email: Email{
			SMTPHost:      "smtp.gmail.com",
			SMTPPort:      587,
			SubjectPrefix: "AI资讯日报",
		},
		Subscribe: Subscribe{
			IMAPHost:         "imap.gmail.com:993",
			SubscribeToken:   "订阅AI资讯日报",
			UnsubscribeToken: "退订AI资讯日报",
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// applyEnv pulls credentials and recipient overrides from the environment.
// Secrets never live in the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.SMTPPort = port
		}
	}
	c.Email.Username = os.Getenv("EMAIL_USER")
	c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	c.Email.From = os.Getenv("EMAIL_FROM")
	if c.Email.From == "" {
		c.Email.From = c.Email.Username
	}
	for _, addr := range strings.Split(os.Getenv("EMAIL_TO"), ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			c.Email.Recipients = append(c.Email.Recipients, strings.ToLower(addr))
		}
	}

	c.Sources.Reddit.ClientID = os.Getenv("REDDIT_CLIENT_ID")
	c.Sources.Reddit.ClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	if v := os.Getenv("REDDIT_USER_AGENT"); v != "" {
		c.Sources.Reddit.UserAgent = v
	}
	if c.Sources.Reddit.UserAgent == "" {
		c.Sources.Reddit.UserAgent = "AI-News-Daily/1.0"
	}

	c.Translate.APIKey = os.Getenv("GOOGLE_TRANSLATE_API_KEY")
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
