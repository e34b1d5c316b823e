// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Server    ServerConfig            `mapstructure:"server"`
	Storage   StorageConfig           `mapstructure:"storage"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Cache     CacheConfig             `mapstructure:"cache"`
	Generator GeneratorConfig         `mapstructure:"generator"`
	Embedder  EmbedderConfig          `mapstructure:"embedder"`
	Pipeline  PipelineConfig          `mapstructure:"pipeline"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// StorageConfig selects the record-store backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory | postgres
}

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the Redis cache in front of the supplement catalog.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // seconds
	Prefix  string `mapstructure:"prefix"`
}

// GeneratorConfig selects and tunes the text generation backend.
type GeneratorConfig struct {
	Provider    string  `mapstructure:"provider"` // none | genai | ollama | gemini
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// EmbedderConfig selects the embedding backend used by the knowledge retriever.
type EmbedderConfig struct {
	Provider string `mapstructure:"provider"` // none | ollama | gemini
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// PipelineConfig holds tunables of the analysis stages.
type PipelineConfig struct {
	RetrievalK         int  `mapstructure:"retrieval_k"`
	PerCategoryLimit   int  `mapstructure:"per_category_limit"`
	MaxRecommendations int  `mapstructure:"max_recommendations"`
	ScanAnalysisText   bool `mapstructure:"scan_analysis_text"`
	PersistenceReserve int  `mapstructure:"persistence_reserve"` // milliseconds
	HistoryLimit       int  `mapstructure:"history_limit"`
	MaxHistoryLimit    int  `mapstructure:"max_history_limit"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
