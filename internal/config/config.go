package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/thand-io/britive/internal/common"
)

const (
	EnvPrefix = "BRITIVE"

	DefaultMaxRetries  = 5
	DefaultBackoffBase = time.Second

	minimumFederationDuration = time.Minute
)

// Config is the environment driven configuration. Nothing is read from or
// written to configuration files.
type Config struct {
	Tenant      string           `mapstructure:"tenant"`
	Token       string           `mapstructure:"api_token"`
	CABundle    string           `mapstructure:"ca_bundle"`
	NoVerifySSL bool             `mapstructure:"no_verify_ssl"`
	Federation  FederationConfig `mapstructure:"federation"`
	Transport   TransportConfig  `mapstructure:"transport"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

type FederationConfig struct {
	// Provider selector, e.g. "aws", "azureumi-<client-id>" or "auto"
	Provider    string `mapstructure:"provider"`
	Duration    string `mapstructure:"duration"`
	IMDSDisable bool   `mapstructure:"aws_imds_disable"`
}

type TransportConfig struct {
	MaxRetries        int           `mapstructure:"max_retries"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FederationDuration parses the configured duration. Zero means the
// provider default.
func (c *Config) FederationDuration() (time.Duration, error) {
	if len(strings.TrimSpace(c.Federation.Duration)) == 0 {
		return 0, nil
	}
	return common.ValidateDuration(c.Federation.Duration, minimumFederationDuration)
}

func DefaultConfig() *Config {

	v := viper.New()

	// Set default values
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		logrus.WithError(err).Fatalln("error unmarshaling default config")
	}

	return &config
}

// Load reads the configuration from the process environment and an optional
// .env file in the working directory.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	setupViperConfig(v)
	bindEnvironmentVariables(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := setupLogging(&config, v); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		// .env file not found, that's okay - continue with other sources
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warnln("Error loading .env file")
		}
	}
	return nil
}

// setupViperConfig configures defaults and the environment variable prefix
func setupViperConfig(v *viper.Viper) {
	// Set default values
	setDefaults(v)

	// Set environment variable settings
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// bindEnvironmentVariables binds all environment variables to viper
func bindEnvironmentVariables(v *viper.Viper) {

	// Tenant and credential defaults
	v.BindEnv("tenant", "BRITIVE_TENANT")
	v.BindEnv("api_token", "BRITIVE_API_TOKEN")

	// TLS overrides. REQUESTS_CA_BUNDLE is honoured for parity with other
	// tooling on the same machine.
	v.BindEnv("ca_bundle", "BRITIVE_CA_BUNDLE", "REQUESTS_CA_BUNDLE")
	v.BindEnv("no_verify_ssl", "BRITIVE_NO_VERIFY_SSL")

	bindFederationEnvVars(v)
	bindTransportEnvVars(v)
	bindLoggingEnvVars(v)
}

// bindFederationEnvVars binds workload federation environment variables
func bindFederationEnvVars(v *viper.Viper) {
	v.BindEnv("federation.provider", "BRITIVE_FEDERATION_PROVIDER")
	v.BindEnv("federation.duration", "BRITIVE_FEDERATION_DURATION")
	v.BindEnv("federation.aws_imds_disable", "BRITIVE_AWS_IMDS_DISABLE")
}

// bindTransportEnvVars binds retry and rate limit settings
func bindTransportEnvVars(v *viper.Viper) {
	v.BindEnv("transport.max_retries", "BRITIVE_MAX_RETRIES")
	v.BindEnv("transport.backoff_base", "BRITIVE_BACKOFF_BASE")
	v.BindEnv("transport.requests_per_second", "BRITIVE_REQUESTS_PER_SECOND")
}

// bindLoggingEnvVars binds logging configuration environment variables
func bindLoggingEnvVars(v *viper.Viper) {
	v.BindEnv("logging.level", "BRITIVE_LOGGING_LEVEL")
	v.BindEnv("logging.format", "BRITIVE_LOGGING_FORMAT")
}

func setDefaults(v *viper.Viper) {

	v.SetDefault("tenant", "")
	v.SetDefault("api_token", "")
	v.SetDefault("ca_bundle", "")
	v.SetDefault("no_verify_ssl", false)

	v.SetDefault("federation.provider", "")
	v.SetDefault("federation.duration", "")
	v.SetDefault("federation.aws_imds_disable", false)

	v.SetDefault("transport.max_retries", DefaultMaxRetries)
	v.SetDefault("transport.backoff_base", DefaultBackoffBase)
	v.SetDefault("transport.requests_per_second", 0)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

var loggingOnce sync.Once

// setupLogging configures the logging system based on the config
func setupLogging(config *Config, v *viper.Viper) error {
	// Set logging level
	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)
	EnableRedaction()
	RegisterSecret(config.Token)

	// Set logging format
	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	// Dump out the config settings if in debug mode. Secrets are masked by
	// the redaction hook.
	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			logrus.Debugf("Config '%s': %v", key, value)
		}
	}

	return nil
}
