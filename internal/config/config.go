package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. PERSONADASH_SERVER_PORT
const EnvPrefix = "PERSONADASH"

// Config holds the application configuration
type Config struct {
	Server        ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging       LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Dashboard     DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	AutoLoad      ColumnProfile   `yaml:"autoload" envconfig:"AUTOLOAD"`
	Upload        ColumnProfile   `yaml:"upload" envconfig:"UPLOAD"`
	RatePerKWh    float64         `yaml:"rate_per_kwh,omitempty" envconfig:"RATE_PER_KWH" validate:"gte=0"` // Cost per kWh, 0 disables cost estimates
	MQTT          MQTTConfig      `yaml:"mqtt,omitempty" envconfig:"MQTT"`
	HomeAssistant HAConfig        `yaml:"home_assistant,omitempty" envconfig:"HOME_ASSISTANT"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	Debug           bool          `yaml:"debug" envconfig:"DEBUG"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gte=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"min=1"`
	UploadRPS       float64       `yaml:"upload_rps,omitempty" envconfig:"UPLOAD_RPS" validate:"gte=0"` // 0 disables upload rate limiting
	UploadBurst     int           `yaml:"upload_burst,omitempty" envconfig:"UPLOAD_BURST" validate:"gte=0"`
}

// LoggingConfig holds the slog settings
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path,omitempty" envconfig:"FILE_PATH" validate:"required_unless=Output stdout"`
}

// DashboardConfig holds presentation settings
type DashboardConfig struct {
	Title     string `yaml:"title" envconfig:"TITLE"`
	DataFile  string `yaml:"data_file,omitempty" envconfig:"DATA_FILE"` // Auto-loaded at startup when set
	PageSize  int    `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"min=1"`
	RadarSize int    `yaml:"radar_size" envconfig:"RADAR_SIZE" validate:"min=1"`
}

// ColumnProfile names the columns a dataset variant is read with
type ColumnProfile struct {
	Consumption string `yaml:"consumption" envconfig:"CONSUMPTION" validate:"required"`
	Location    string `yaml:"location" envconfig:"LOCATION" validate:"required"`
	RadarValue  string `yaml:"radar_value" envconfig:"RADAR_VALUE" validate:"required"`
	Cluster     string `yaml:"cluster,omitempty" envconfig:"CLUSTER"` // Empty disables cluster grouping
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	Broker      string `yaml:"broker" envconfig:"BROKER" validate:"required_if=Enabled true"` // e.g., "localhost:1883"
	Username    string `yaml:"username,omitempty" envconfig:"USERNAME"`
	Password    string `yaml:"password,omitempty" envconfig:"PASSWORD"`
	ClientID    string `yaml:"client_id,omitempty" envconfig:"CLIENT_ID"`
	TopicPrefix string `yaml:"topic_prefix,omitempty" envconfig:"TOPIC_PREFIX"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	URL      string `yaml:"url" envconfig:"URL" validate:"required_if=Enabled true"`             // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token" envconfig:"TOKEN" validate:"required_if=Enabled true"`         // Long-lived access token
	EntityID string `yaml:"entity_id" envconfig:"ENTITY_ID" validate:"required_if=Enabled true"` // e.g., "sensor.household_mean_consumption"
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            10000,
			Debug:           true,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
			UploadBurst:     5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/personadash.log",
		},
		Dashboard: DashboardConfig{
			Title:     "DSM+SAT Dashboard – Energy Insights",
			DataFile:  "data.csv",
			PageSize:  10,
			RadarSize: 6,
		},
		AutoLoad: ColumnProfile{
			Consumption: "Consumption",
			Location:    "Location",
			RadarValue:  "Consumption",
		},
		Upload: ColumnProfile{
			Consumption: "Monthly Consumption (kWh)",
			Location:    "Location",
			RadarValue:  "CO2 Offset (kg)",
			Cluster:     "Cluster",
		},
		MQTT: MQTTConfig{
			ClientID:    "personadash",
			TopicPrefix: "personadash",
		},
	}
}

// Load reads the config file on top of the defaults, then applies
// environment overrides and validates the result
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Profile returns the column profile for a variant name ("autoload" or "upload")
func (c *Config) Profile(name string) (ColumnProfile, error) {
	switch name {
	case "autoload", "auto":
		return c.AutoLoad, nil
	case "upload":
		return c.Upload, nil
	default:
		return ColumnProfile{}, fmt.Errorf("unknown profile: %s (available: autoload, upload)", name)
	}
}
