package config

import (
	"time"
)

// ClassifierConfig selects the scoring table
type ClassifierConfig struct {
	Mode        string
	MaxBodySize int
}

// IntelConfig represents the threat intel provider configuration
type IntelConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// CacheConfig represents the intel cache configuration
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// StoreConfig represents the email store configuration
type StoreConfig struct {
	Type        string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
}

// ServerConfig represents the Postfix content filter configuration
type ServerConfig struct {
	Enabled          bool
	FilterType       string
	ListenAddress    string
	BlockPhishing    bool
	VerdictHeader    string
	ConfidenceHeader string
	RulesHeader      string
	PostfixEnabled   bool
	PostfixAddress   string
	PostfixPort      int
	ModifySubject    bool
	SubjectPrefix    string
	AnalysisTimeout  time.Duration
}

// APIConfig represents the dashboard API configuration
type APIConfig struct {
	Enabled       bool
	ListenAddress string
}

// IMAPConfig represents one IMAP mailbox to ingest from
type IMAPConfig struct {
	Enabled     bool
	Server      string
	Port        int
	Username    string
	Password    string
	Folders     []string
	MaxMessages int
	TLS         bool
	Timeout     time.Duration
}

// IngestConfig represents the scheduled ingest configuration
type IngestConfig struct {
	Schedule string
	EMLDir   string
	IMAP     IMAPConfig
}

// LLMConfig represents the configuration for the LLM reviewer
type LLMConfig struct {
	Enabled          bool
	Provider         string
	ReviewSuspicious bool
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Mode:        c.GetString("classifier.mode"),
		MaxBodySize: c.GetInt("classifier.max_body_size"),
	}
}

// GetIntel returns the threat intel configuration
func (c *Config) GetIntel() IntelConfig {
	return IntelConfig{
		Provider: c.GetString("intel.provider"),
		BaseURL:  c.GetString("intel.base_url"),
		APIKey:   c.GetString("intel.api_key"),
		Timeout:  c.v.GetDuration("intel.timeout"),
	}
}

// GetCache returns the intel cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              c.v.GetDuration("cache.ttl"),
		CleanupFrequency: c.v.GetDuration("cache.cleanup_frequency"),
		SQLitePath:       c.GetString("cache.sqlite_path"),
		RedisAddr:        c.GetString("cache.redis.addr"),
		RedisPassword:    c.GetString("cache.redis.password"),
		RedisDB:          c.GetInt("cache.redis.db"),
	}
}

// GetStore returns the email store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:        c.GetString("store.type"),
		SQLitePath:  c.GetString("store.sqlite_path"),
		MySQLDSN:    c.GetString("store.mysql_dsn"),
		PostgresDSN: c.GetString("store.postgres_dsn"),
	}
}

// GetServer returns the content filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Enabled:          c.GetBool("server.enabled"),
		FilterType:       c.GetString("server.filter_type"),
		ListenAddress:    c.GetString("server.listen_address"),
		BlockPhishing:    c.GetBool("server.block_phishing"),
		VerdictHeader:    c.GetString("server.headers.verdict"),
		ConfidenceHeader: c.GetString("server.headers.confidence"),
		RulesHeader:      c.GetString("server.headers.rules"),
		PostfixEnabled:   c.GetBool("server.postfix.enabled"),
		PostfixAddress:   c.GetString("server.postfix.address"),
		PostfixPort:      c.GetInt("server.postfix.port"),
		ModifySubject:    c.GetBool("server.modify_subject"),
		SubjectPrefix:    c.GetString("server.subject_prefix"),
		AnalysisTimeout:  c.v.GetDuration("server.analysis_timeout"),
	}
}

// GetAPI returns the dashboard API configuration
func (c *Config) GetAPI() APIConfig {
	return APIConfig{
		Enabled:       c.GetBool("api.enabled"),
		ListenAddress: c.GetString("api.listen_address"),
	}
}

// GetIngest returns the ingest configuration
func (c *Config) GetIngest() IngestConfig {
	return IngestConfig{
		Schedule: c.GetString("ingest.schedule"),
		EMLDir:   c.GetString("ingest.eml_dir"),
		IMAP: IMAPConfig{
			Enabled:     c.GetBool("ingest.imap.enabled"),
			Server:      c.GetString("ingest.imap.server"),
			Port:        c.GetInt("ingest.imap.port"),
			Username:    c.GetString("ingest.imap.username"),
			Password:    c.GetString("ingest.imap.password"),
			Folders:     c.GetStringSlice("ingest.imap.folders"),
			MaxMessages: c.GetInt("ingest.imap.max_messages"),
			TLS:         c.GetBool("ingest.imap.tls"),
			Timeout:     c.v.GetDuration("ingest.imap.timeout"),
		},
	}
}

// GetLLM returns the LLM reviewer configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Enabled:          c.GetBool("llm.enabled"),
		Provider:         c.GetString("llm.provider"),
		ReviewSuspicious: c.GetBool("llm.review_suspicious"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetWhitelistedDomains returns the sender domains that bypass classification
func (c *Config) GetWhitelistedDomains() []string {
	return c.GetStringSlice("spam.whitelisted_domains")
}
