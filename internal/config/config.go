package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`    // Total time spent retrying the initial connection
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL             string        `mapstructure:"url"`
	StreamName      string        `mapstructure:"stream_name"`
	ConsumerName    string        `mapstructure:"consumer_name"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName  string        `mapstructure:"connection_name"`
	AckWait         time.Duration `mapstructure:"ack_wait"`
	MaxDeliver      int           `mapstructure:"max_deliver"`
	NakDelay        time.Duration `mapstructure:"nak_delay"`
	EnsureStream    bool          `mapstructure:"ensure_stream"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
}

// Enabled reports whether a NATS server is configured
func (c *NATSConfig) Enabled() bool {
	return c.URL != ""
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string        `mapstructure:"host_port"`
	Namespace                          string        `mapstructure:"namespace"`
	RefreshTaskQueue                   string        `mapstructure:"refresh_task_queue"`
	WorkflowTimeout                    time.Duration `mapstructure:"workflow_timeout"`
	MaxConcurrentActivityExecutionSize int           `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64       `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int           `mapstructure:"max_concurrent_activity_task_pollers"`
}

// RefreshConfig holds the view catalog and refresh timeouts shared by every refresh caller
type RefreshConfig struct {
	CatalogPath           string        `mapstructure:"catalog_path"` // YAML view catalog; empty uses the built-in catalog
	Timeout               time.Duration `mapstructure:"timeout"`      // Upper bound of one refresh
	TenantWorkflowTimeout time.Duration `mapstructure:"tenant_workflow_timeout"`
	PublishResults        bool          `mapstructure:"publish_results"` // Publish every result to NATS in addition to the database
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize int `mapstructure:"pool_size"`
}

// RefreshSweeperConfig holds configuration for the refresh sweeper
type RefreshSweeperConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	VerifyInvariants bool          `mapstructure:"verify_invariants"`
	ListRetryMaxTime time.Duration `mapstructure:"list_retry_max_time"`
	Worker           WorkerConfig  `mapstructure:"worker"`
}

// RefreshWorkerConfig holds configuration for refresh-worker
type RefreshWorkerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Refresh    RefreshConfig  `mapstructure:"refresh"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig     `mapstructure:",squash"`
	Database       DatabaseConfig       `mapstructure:"database"`
	NATS           NATSConfig           `mapstructure:"nats"`
	Refresh        RefreshConfig        `mapstructure:"refresh"`
	RefreshSweeper RefreshSweeperConfig `mapstructure:"refresh_sweeper"`
}

// RefreshBridgeConfig holds configuration for refresh-bridge
type RefreshBridgeConfig struct {
	BaseConfig `mapstructure:",squash"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Refresh    RefreshConfig  `mapstructure:"refresh"`
	Worker     WorkerConfig   `mapstructure:"worker"`
}

// CLIConfig holds configuration for ledgerctl
type CLIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Refresh    RefreshConfig  `mapstructure:"refresh"`
}

// setCommonDefaults sets the defaults every service shares
func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.connect_timeout", "1m")
	v.SetDefault("refresh.timeout", "10m")
	v.SetDefault("refresh.tenant_workflow_timeout", "30m")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.refresh_task_queue", "view-refresh")
	v.SetDefault("temporal.workflow_timeout", "1h")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
}

// LoadRefreshWorkerConfig loads configuration for refresh-worker
func LoadRefreshWorkerConfig(configFile string, envPath string) (*RefreshWorkerConfig, error) {
	v := configureViper("refresh-worker", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("nats.stream_name", "REFRESH_RESULTS")
	v.SetDefault("nats.connection_name", "refresh-worker")
	v.SetDefault("nats.duplicate_window", "2m")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 20)
	v.SetDefault("temporal.worker_activities_per_second", 20)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 4)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg RefreshWorkerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	if cfg.Refresh.PublishResults && !cfg.NATS.Enabled() {
		return nil, errors.New("nats.url is required when refresh.publish_results is set")
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.stream_name", "REFRESH_RESULTS")
	v.SetDefault("nats.connection_name", "refresh-sweeper")
	v.SetDefault("nats.duplicate_window", "2m")
	v.SetDefault("refresh_sweeper.interval", "5m")
	v.SetDefault("refresh_sweeper.verify_invariants", false)
	v.SetDefault("refresh_sweeper.list_retry_max_time", "2m")
	v.SetDefault("refresh_sweeper.worker.pool_size", 4)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	if cfg.Refresh.PublishResults && !cfg.NATS.Enabled() {
		return nil, errors.New("nats.url is required when refresh.publish_results is set")
	}

	return &cfg, nil
}

// LoadRefreshBridgeConfig loads configuration for refresh-bridge
func LoadRefreshBridgeConfig(configFile string, envPath string) (*RefreshBridgeConfig, error) {
	v := configureViper("refresh-bridge", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "REFRESH_REQUESTS")
	v.SetDefault("nats.consumer_name", "refresh-bridge")
	v.SetDefault("nats.connection_name", "refresh-bridge")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", 5)
	v.SetDefault("nats.nak_delay", "5s")
	v.SetDefault("worker.pool_size", 8)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg RefreshBridgeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadCLIConfig loads configuration for ledgerctl.
// Nothing is required up front; commands that need the database fail when they connect.
func LoadCLIConfig(configFile string, envPath string) (*CLIConfig, error) {
	v := configureViper("ledgerctl", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// readConfig reads the config file, falling back to defaults and environment variables when there is none
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		"database.connect_timeout",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.nak_delay",
		"nats.ensure_stream",
		"nats.duplicate_window",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.refresh_task_queue",
		"temporal.workflow_timeout",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Refresh
		"refresh.catalog_path",
		"refresh.timeout",
		"refresh.tenant_workflow_timeout",
		"refresh.publish_results",
		// Worker pool
		"worker.pool_size",
		// Refresh sweeper
		"refresh_sweeper.interval",
		"refresh_sweeper.verify_invariants",
		"refresh_sweeper.list_retry_max_time",
		"refresh_sweeper.worker.pool_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// Validate checks that the connection settings name a database
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return errors.New("database.host is required")
	}
	if c.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReplicaDSN returns the read-replica connection string, or "" when no replica is configured
func (c *DatabaseConfig) ReplicaDSN() string {
	if c.ReadHost == "" {
		return ""
	}
	return c.ReadDSN()
}
