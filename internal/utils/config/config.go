package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/openpeerlabs/escrow-backend/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Escrow      EscrowConfig
	Listener    ListenerConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
	AppEnv         string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode       string
	MaxRetries    int
	RetryInterval time.Duration
}

// EscrowConfig drives the deadline sweep and the auto-cancellation monitor.
type EscrowConfig struct {
	ArbitratorPrivateKey string

	AutoCancelDelay      time.Duration
	MonitorEnabled       bool
	MonitorBatchSize     int
	MonitorCronSchedule  string
	DeadlineCronSchedule string
	SweepBatchSize       int
}

// ListenerConfig controls the per-network event listeners. Reconnect is an
// explicit opt-in policy: off by default, a transport failure marks the
// listener FAILED and leaves restart to the operator.
type ListenerConfig struct {
	EventBufferSize      int
	Reconnect            bool
	ReconnectMaxAttempts int
	ReconnectBackoff     time.Duration
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// this will not override env variables if they already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarOrDefault("API_PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
			AppEnv:         env,
		},
		Postgres: DBConnection{
			Host:          os.Getenv("DB_HOST"),
			Port:          os.Getenv("DB_PORT"),
			User:          os.Getenv("DB_USER"),
			Name:          os.Getenv("DB_NAME"),
			Pass:          os.Getenv("DB_PASS"),
			SSLMode:       envVarOrDefault("DB_SSL_MODE", "disable"),
			MaxRetries:    envVarAtoiOrDefault("DB_MAX_RETRIES", 3),
			RetryInterval: envVarDurationOrDefault("DB_RETRY_INTERVAL", 500*time.Millisecond),
		},
		Escrow: EscrowConfig{
			ArbitratorPrivateKey: os.Getenv("ARBITRATOR_PRIVATE_KEY"),
			AutoCancelDelay:      envVarDurationOrDefault("AUTO_CANCEL_DELAY", 15*time.Minute),
			MonitorEnabled:       envVarAsBool("ESCROW_MONITOR_ENABLED"),
			MonitorBatchSize:     envVarAtoiOrDefault("ESCROW_MONITOR_BATCH_SIZE", 25),
			MonitorCronSchedule:  envVarOrDefault("ESCROW_MONITOR_CRON", "@every 10m"),
			DeadlineCronSchedule: envVarOrDefault("DEADLINE_SWEEP_CRON", "@every 1m"),
			SweepBatchSize:       envVarAtoiOrDefault("DEADLINE_SWEEP_BATCH_SIZE", 100),
		},
		Listener: ListenerConfig{
			EventBufferSize:      envVarAtoiOrDefault("LISTENER_EVENT_BUFFER", 256),
			Reconnect:            envVarAsBool("LISTENER_RECONNECT"),
			ReconnectMaxAttempts: envVarAtoiOrDefault("LISTENER_RECONNECT_MAX_ATTEMPTS", 5),
			ReconnectBackoff:     envVarDurationOrDefault("LISTENER_RECONNECT_BACKOFF", 5*time.Second),
		},
	}
}

func envVarOrDefault(envName, defaultValue string) string {
	value := os.Getenv(envName)
	if value == "" {
		return defaultValue
	}
	return value
}

func envVarAtoiOrDefault(envName string, defaultValue int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func envVarDurationOrDefault(envName string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func envVarAsBool(envName string) bool {
	valueStr := os.Getenv(envName)
	return valueStr == "true"
}
