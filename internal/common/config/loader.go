// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<env>.yaml on top and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if rootDir := findProjectRoot(); rootDir != "" {
		v.AddConfigPath(filepath.Join(rootDir, "configs"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working dir.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally set without the
// nested key prefix.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Generator.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.Generator.APIKey = val
		}
	}
	if cfg.Embedder.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.Embedder.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pet-doctor"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverMemory
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "catalog"
	}

	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = "none"
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 30000
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 1000
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.3
	}

	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = "none"
	}
	if cfg.Embedder.Timeout == 0 {
		cfg.Embedder.Timeout = 10000
	}

	if cfg.Pipeline.RetrievalK == 0 {
		cfg.Pipeline.RetrievalK = 3
	}
	if cfg.Pipeline.PerCategoryLimit == 0 {
		cfg.Pipeline.PerCategoryLimit = 2
	}
	if cfg.Pipeline.MaxRecommendations == 0 {
		cfg.Pipeline.MaxRecommendations = 3
	}
	if cfg.Pipeline.PersistenceReserve == 0 {
		cfg.Pipeline.PersistenceReserve = 2000
	}
	if cfg.Pipeline.HistoryLimit == 0 {
		cfg.Pipeline.HistoryLimit = 10
	}
	if cfg.Pipeline.MaxHistoryLimit == 0 {
		cfg.Pipeline.MaxHistoryLimit = 100
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 90000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}

	switch cfg.Generator.Provider {
	case "none":
	case "genai", "ollama":
		if cfg.Generator.BaseURL == "" {
			return fmt.Errorf("generator.base_url is required for provider %s", cfg.Generator.Provider)
		}
	case "gemini":
		if cfg.Generator.APIKey == "" {
			return fmt.Errorf("generator.api_key is required for provider gemini")
		}
	default:
		return fmt.Errorf("generator.provider %q is not supported", cfg.Generator.Provider)
	}

	switch cfg.Embedder.Provider {
	case "none", "ollama", "gemini":
	default:
		return fmt.Errorf("embedder.provider %q is not supported", cfg.Embedder.Provider)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Pipeline.MaxRecommendations < 0 || cfg.Pipeline.PerCategoryLimit < 0 {
		return fmt.Errorf("pipeline limits must not be negative")
	}

	return validateTimeouts(cfg)
}

// validateTimeouts requires every caller deadline to outlast the worst case
// of one query embedding plus both generator calls, so a hung backend falls
// back instead of expiring the request.
func validateTimeouts(cfg *Config) error {
	need := consultationBudget(cfg)
	if need == 0 {
		return nil
	}
	if cfg.Server.WriteTimeout <= need {
		return fmt.Errorf("server.write_timeout (%dms) must exceed %dms (2x generator.timeout + embedder.timeout)", cfg.Server.WriteTimeout, need)
	}
	if cfg.Camunda.Enabled {
		for name, worker := range cfg.Workers {
			if worker.Enabled && worker.Timeout <= need {
				return fmt.Errorf("workers.%s.timeout (%dms) must exceed %dms (2x generator.timeout + embedder.timeout)", name, worker.Timeout, need)
			}
		}
	}
	return nil
}

// consultationBudget is the worst-case backend time of one consultation in
// milliseconds. It is zero when no generator is configured.
func consultationBudget(cfg *Config) int {
	if cfg.Generator.Provider == "none" {
		return 0
	}
	need := 2 * cfg.Generator.Timeout
	if cfg.Embedder.Provider != "none" {
		need += cfg.Embedder.Timeout
	}
	return need
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       90000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
