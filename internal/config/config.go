package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Storage StorageConfig
	AMQP    AMQPConfig
	Worker  WorkerConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	amqp, err := loadAMQPConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Storage: storage,
		AMQP:    amqp,
		Worker:  loadWorkerConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the Ark chat model used as the inference capability.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present. When they
// are not, the service still runs: chat is unavailable and add-by-sentence
// falls back to the degraded instruction parser.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel instantiates the configured model.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// StorageConfig selects the durable backend for histories and the
// transaction archive.
type StorageConfig struct {
	Backend    string // "memory" or "sqlite"
	SQLitePath string
}

func loadStorageConfig() (StorageConfig, error) {
	cfg := StorageConfig{
		Backend:    getEnvOrDefault("DATA_BACKEND", "memory"),
		SQLitePath: getEnvOrDefault("SQLITE_DB_PATH", "./data/pennyledger.db"),
	}

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		return StorageConfig{}, fmt.Errorf("invalid DATA_BACKEND %q: must be memory or sqlite", cfg.Backend)
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLitePath == "" {
			return StorageConfig{}, fmt.Errorf("SQLITE_DB_PATH cannot be empty with the sqlite backend")
		}
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return StorageConfig{}, fmt.Errorf("create sqlite directory %q: %w", dir, err)
			}
		}
	}

	return cfg, nil
}

// AMQPConfig describes the optional transaction-event fan-out.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// Enabled reports whether event publishing is configured at all.
func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

func loadAMQPConfig() (AMQPConfig, error) {
	cfg := AMQPConfig{
		URL:      strings.TrimSpace(os.Getenv("AMQP_URL")),
		Exchange: getEnvOrDefault("AMQP_EXCHANGE", "pennyledger"),
		Queue:    getEnvOrDefault("AMQP_QUEUE", "transaction_events"),
	}

	if cfg.URL != "" {
		parsed, err := url.Parse(cfg.URL)
		if err != nil {
			return AMQPConfig{}, fmt.Errorf("invalid AMQP_URL %q: %w", cfg.URL, err)
		}
		if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			return AMQPConfig{}, fmt.Errorf("invalid AMQP_URL scheme %q: must be amqp or amqps", parsed.Scheme)
		}
	}

	return cfg, nil
}

// WorkerConfig describes the export worker binary.
type WorkerConfig struct {
	ExportPath string
}

func loadWorkerConfig() WorkerConfig {
	return WorkerConfig{
		ExportPath: getEnvOrDefault("EXPORT_PATH", "./data/transactions.jsonl"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
