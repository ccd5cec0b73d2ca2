package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWS_CAPSULE_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	newsAPIKeyEnv     = "NEWS_API_KEY1"
	newsAPIKeyAltEnv  = "NEWS_API_KEY2"
	embedEndpointEnv  = "EMBEDDING_ENDPOINT"
	llmEndpointEnv    = "LOCAL_LLM_ENDPOINT"
	chromaURLEnv      = "CHROMA_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds the settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	News          NewsConfig         `yaml:"news"`
	Embedding     EmbeddingConfig    `yaml:"embedding"`
	VectorStore   VectorStoreConfig  `yaml:"vectorStore"`
	LLM           LLMConfig          `yaml:"llm"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Categories    CategoriesConfig   `yaml:"categories"`
	Export        ExportConfig       `yaml:"export"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details for capsule storage.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the capsule pipeline runs.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// IntervalDuration parses the configured interval, defaulting to daily.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NewsConfig groups settings for the news providers.
type NewsConfig struct {
	APIKey     string   `yaml:"apiKey"`
	Query      string   `yaml:"query"`
	FetchLimit int      `yaml:"fetchLimit"`
	ExtraURLs  []string `yaml:"extraUrls"`
}

// EmbeddingConfig wires the embedding model endpoint.
type EmbeddingConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Timeout  int    `yaml:"timeoutSeconds"`
}

// VectorStoreConfig names the two reference collections.
type VectorStoreConfig struct {
	URL                string `yaml:"url"`
	APIKey             string `yaml:"apiKey"`
	Tenant             string `yaml:"tenant"`
	Database           string `yaml:"database"`
	PYQCollection      string `yaml:"pyqCollection"`
	SyllabusCollection string `yaml:"syllabusCollection"`
	TopK               int    `yaml:"topK"`
	Timeout            int    `yaml:"timeoutSeconds"`
}

// LLMConfig defines how to contact the generative model server.
type LLMConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     int     `yaml:"timeoutSeconds"`
}

// PipelineConfig bounds chunking and composition.
type PipelineConfig struct {
	MaxCharsPerChunk int    `yaml:"maxCharsPerChunk"`
	ChunkOverlap     int    `yaml:"chunkOverlap"`
	MinTextLength    int    `yaml:"minTextLength"`
	ExcerptChars     int    `yaml:"excerptChars"`
	Workers          int    `yaml:"workers"`
	CapsuleType      string `yaml:"capsuleType"`
}

// CategoriesConfig fixes the taxonomy; label order is significant because
// classification ties break toward the first label.
type CategoriesConfig struct {
	Labels         []string `yaml:"labels"`
	PromptTemplate string   `yaml:"promptTemplate"`
}

// ExportConfig points at the directory receiving Markdown/JSON snapshots.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SourceConfig describes a single provider with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
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
	cfg.bindTimezone()

	if len(cfg.Categories.Labels) == 0 {
		cfg.Categories = defaultConfig().Categories
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIKey = v
	} else if v := os.Getenv(newsAPIKeyAltEnv); v != "" {
		c.News.APIKey = v
	}

	if v := os.Getenv(embedEndpointEnv); v != "" {
		c.Embedding.Endpoint = v
	}

	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}

	if v := os.Getenv(chromaURLEnv); v != "" {
		c.VectorStore.URL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	base.Scheduler.Enabled = override.Scheduler.Enabled

	if override.News.APIKey != "" {
		base.News.APIKey = override.News.APIKey
	}
	if override.News.Query != "" {
		base.News.Query = override.News.Query
	}
	if override.News.FetchLimit != 0 {
		base.News.FetchLimit = override.News.FetchLimit
	}
	if len(override.News.ExtraURLs) > 0 {
		base.News.ExtraURLs = override.News.ExtraURLs
	}

	if override.Embedding.Endpoint != "" {
		base.Embedding.Endpoint = override.Embedding.Endpoint
	}
	if override.Embedding.Model != "" {
		base.Embedding.Model = override.Embedding.Model
	}
	if override.Embedding.APIKey != "" {
		base.Embedding.APIKey = override.Embedding.APIKey
	}
	if override.Embedding.Timeout != 0 {
		base.Embedding.Timeout = override.Embedding.Timeout
	}

	if override.VectorStore.URL != "" {
		base.VectorStore.URL = override.VectorStore.URL
	}
	if override.VectorStore.APIKey != "" {
		base.VectorStore.APIKey = override.VectorStore.APIKey
	}
	if override.VectorStore.Tenant != "" {
		base.VectorStore.Tenant = override.VectorStore.Tenant
	}
	if override.VectorStore.Database != "" {
		base.VectorStore.Database = override.VectorStore.Database
	}
	if override.VectorStore.PYQCollection != "" {
		base.VectorStore.PYQCollection = override.VectorStore.PYQCollection
	}
	if override.VectorStore.SyllabusCollection != "" {
		base.VectorStore.SyllabusCollection = override.VectorStore.SyllabusCollection
	}
	if override.VectorStore.TopK != 0 {
		base.VectorStore.TopK = override.VectorStore.TopK
	}
	if override.VectorStore.Timeout != 0 {
		base.VectorStore.Timeout = override.VectorStore.Timeout
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.MaxTokens != 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Temperature != 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.Timeout != 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	if override.Pipeline.MaxCharsPerChunk != 0 {
		base.Pipeline.MaxCharsPerChunk = override.Pipeline.MaxCharsPerChunk
	}
	if override.Pipeline.ChunkOverlap != 0 {
		base.Pipeline.ChunkOverlap = override.Pipeline.ChunkOverlap
	}
	if override.Pipeline.MinTextLength != 0 {
		base.Pipeline.MinTextLength = override.Pipeline.MinTextLength
	}
	if override.Pipeline.ExcerptChars != 0 {
		base.Pipeline.ExcerptChars = override.Pipeline.ExcerptChars
	}
	if override.Pipeline.Workers != 0 {
		base.Pipeline.Workers = override.Pipeline.Workers
	}
	if override.Pipeline.CapsuleType != "" {
		base.Pipeline.CapsuleType = override.Pipeline.CapsuleType
	}

	if len(override.Categories.Labels) > 0 {
		base.Categories.Labels = override.Categories.Labels
	}
	if override.Categories.PromptTemplate != "" {
		base.Categories.PromptTemplate = override.Categories.PromptTemplate
	}

	if override.Export.Dir != "" {
		base.Export = override.Export
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Interval: "24h",
			Timezone: defaultTimezone,
			location: tz,
		},
		News: NewsConfig{
			Query:      "UPSC OR civil services OR current affairs",
			FetchLimit: 30,
		},
		Embedding: EmbeddingConfig{
			Endpoint: "http://localhost:11434/v1/embeddings",
			Model:    "all-mpnet-base-v2",
			Timeout:  30,
		},
		VectorStore: VectorStoreConfig{
			URL:                "http://localhost:8001",
			Tenant:             "default_tenant",
			Database:           "default_database",
			PYQCollection:      "upsc_pyq",
			SyllabusCollection: "upsc_syllabus",
			TopK:               3,
			Timeout:            15,
		},
		LLM: LLMConfig{
			Endpoint:    "http://localhost:8000/v1/chat/completions",
			Model:       "local-llama",
			MaxTokens:   512,
			Temperature: 0.1,
			Timeout:     60,
		},
		Pipeline: PipelineConfig{
			MaxCharsPerChunk: 1500,
			ChunkOverlap:     200,
			MinTextLength:    100,
			ExcerptChars:     4000,
			Workers:          4,
			CapsuleType:      "news",
		},
		Categories: CategoriesConfig{
			Labels: []string{
				"Polity & Governance",
				"Economy",
				"International Relations",
				"Environment & Ecology",
				"Science & Technology",
				"Social Issues",
				"Security",
				"History & Culture",
				"Geography",
				"Ethics & Society",
			},
			PromptTemplate: "%s news relevant to UPSC civil services",
		},
		Export: ExportConfig{Dir: "."},
		Sources: []SourceConfig{
			{
				Name:    "newsapi",
				Scanner: "newsapi",
				Options: map[string]string{},
			},
		},
	}
}
