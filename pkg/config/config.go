// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Pipeline, Spell, Input, Output, Postgres, Kafka, Redis, etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// Sink names accepted in OutputConfig.Sinks.
const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
	SinkKafka    = "kafka"
)

// Source names accepted in InputConfig.Source.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Spell    SpellConfig    `yaml:"spell"`
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// PipelineConfig controls the fork-join stages.
type PipelineConfig struct {
	Parallelism   int `yaml:"parallelism"`
	MaxChunkSize  int `yaml:"maxChunkSize"`
	TopErrorWords int `yaml:"topErrorWords"`
}

// SpellConfig controls the vocabulary classifier and its dictionary.
type SpellConfig struct {
	DictionaryPath         string   `yaml:"dictionaryPath"`
	MaxEditDistance        int      `yaml:"maxEditDistance"`
	DomainExceptions       []string `yaml:"domainExceptions"`
	LiteralIdentifierClass bool     `yaml:"literalIdentifierClass"`
}

// InputConfig selects where documents are loaded from.
type InputConfig struct {
	Source       string `yaml:"source"`
	MetadataPath string `yaml:"metadataPath"`
	QrelsPath    string `yaml:"qrelsPath"`
}

// OutputConfig selects where per-document results are written.
type OutputConfig struct {
	Sinks   []string `yaml:"sinks"`
	CSVPath string   `yaml:"csvPath"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	Topics        KafkaTopics `yaml:"topics"`
	BatchSize     int         `yaml:"batchSize"`
	ConsumerGroup string      `yaml:"consumerGroup"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentErrors string `yaml:"documentErrors"`
}

// RedisConfig holds Redis connection and verdict-cache parameters.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	PoolSize       int           `yaml:"poolSize"`
	CacheTTL       time.Duration `yaml:"cacheTTL"`
	LocalCacheSize int           `yaml:"localCacheSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// DefaultParallelism is the number of available CPUs minus one, never less
// than two.
func DefaultParallelism() int {
	return max(2, runtime.NumCPU()-1)
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.Parallelism <= 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"pipeline.parallelism must be positive, got %d", c.Pipeline.Parallelism)
	}
	if c.Pipeline.MaxChunkSize < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"pipeline.maxChunkSize must not be negative, got %d", c.Pipeline.MaxChunkSize)
	}
	if c.Spell.MaxEditDistance < 1 || c.Spell.MaxEditDistance > 2 {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"spell.maxEditDistance must be 1 or 2, got %d", c.Spell.MaxEditDistance)
	}
	switch c.Input.Source {
	case SourceCSV, SourcePostgres:
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"unknown input source %q", c.Input.Source)
	}
	for _, sink := range c.Output.Sinks {
		switch sink {
		case SinkCSV, SinkPostgres, SinkKafka:
		default:
			return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
				"unknown output sink %q", sink)
		}
	}
	return nil
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Output.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Parallelism:   DefaultParallelism(),
			MaxChunkSize:  50000,
			TopErrorWords: 10,
		},
		Spell: SpellConfig{
			MaxEditDistance: 2,
		},
		Input: InputConfig{
			Source:       SourceCSV,
			MetadataPath: "data/index/metadata.csv",
		},
		Output: OutputConfig{
			Sinks:   []string{SinkCSV},
			CSVPath: "bow_spell_check_results.csv",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "spelling",
			User:            "spelling",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			BatchSize:     500,
			ConsumerGroup: "spellcheck-watch",
			Topics: KafkaTopics{
				DocumentErrors: "document-errors",
			},
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			Password:       "",
			DB:             0,
			PoolSize:       10,
			CacheTTL:       24 * time.Hour,
			LocalCacheSize: 100000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads DSA_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DSA_PIPELINE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Parallelism = n
		}
	}
	if v := os.Getenv("DSA_PIPELINE_MAX_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MaxChunkSize = n
		}
	}
	if v := os.Getenv("DSA_SPELL_DICTIONARY_PATH"); v != "" {
		cfg.Spell.DictionaryPath = v
	}
	if v := os.Getenv("DSA_SPELL_DOMAIN_EXCEPTIONS"); v != "" {
		cfg.Spell.DomainExceptions = append(cfg.Spell.DomainExceptions, strings.Split(v, ",")...)
	}
	if v := os.Getenv("DSA_INPUT_SOURCE"); v != "" {
		cfg.Input.Source = v
	}
	if v := os.Getenv("DSA_INPUT_METADATA_PATH"); v != "" {
		cfg.Input.MetadataPath = v
	}
	if v := os.Getenv("DSA_INPUT_QRELS_PATH"); v != "" {
		cfg.Input.QrelsPath = v
	}
	if v := os.Getenv("DSA_OUTPUT_SINKS"); v != "" {
		cfg.Output.Sinks = strings.Split(v, ",")
	}
	if v := os.Getenv("DSA_OUTPUT_CSV_PATH"); v != "" {
		cfg.Output.CSVPath = v
	}
	if v := os.Getenv("DSA_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("DSA_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("DSA_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("DSA_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("DSA_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("DSA_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("DSA_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DSA_REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("DSA_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DSA_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DSA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DSA_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("DSA_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
			cfg.Metrics.Enabled = true
		}
	}
}
