// Package config handles configuration management using Viper. The config is
// loaded once at process start and passed explicitly into the adapters that
// need it; nothing re-reads the file at call time.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	// Control tunes the shared switching behavior.
	Control ControlConfig `mapstructure:"control"`

	// LocalControl configures the local network remote-control backend.
	LocalControl LocalControlConfig `mapstructure:"local_control"`

	// SmartThings configures the cloud device-control backend.
	SmartThings SmartThingsConfig `mapstructure:"smartthings"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ControlConfig contains switching behavior settings.
type ControlConfig struct {
	SettleDelaySeconds    int `mapstructure:"settle_delay_seconds"`    // pause after a successful switch
	ReadRetries           int `mapstructure:"read_retries"`            // attempts for transient read failures
	ReadRetryDelaySeconds int `mapstructure:"read_retry_delay_seconds"`
}

// LocalControlConfig contains the remote-control emulation settings for the
// monitor that exposes no DDC channel. Enabled plus a monitor IP makes the
// local backend viable; otherwise the cloud backend is used.
type LocalControlConfig struct {
	Enabled     bool   `mapstructure:"use_local_control"`
	MonitorIP   string `mapstructure:"monitor_ip"`
	MonitorMAC  string `mapstructure:"monitor_mac"`
	MonitorName string `mapstructure:"monitor_name"`
	TokenFile   string `mapstructure:"token_file"` // pairing credential, written on first connect
}

// Viable reports whether the local remote-control backend can be attempted.
func (l LocalControlConfig) Viable() bool {
	return l.Enabled && l.MonitorIP != ""
}

// SmartThingsConfig contains cloud API credentials. Both values must be
// present for the cloud backend to be configured.
type SmartThingsConfig struct {
	DeviceID string `mapstructure:"device_id"`
	APIToken string `mapstructure:"api_token"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	LogLevel    string `mapstructure:"log_level"` // overrides the LOG_LEVEL env var
	FileLogging bool   `mapstructure:"file_logging"`
}

var (
	// DefaultConfig provides sensible defaults.
	DefaultConfig = Config{
		Control: ControlConfig{
			SettleDelaySeconds:    2,
			ReadRetries:           3,
			ReadRetryDelaySeconds: 1,
		},
		LocalControl: LocalControlConfig{
			Enabled:   false,
			TokenFile: defaultTokenPath(),
		},
		Logging: LoggingConfig{
			FileLogging: false,
			LogLevel:    "",
		},
	}

	cfg *Config

	configPathOverride string
)

// SetConfigPath allows overriding the config path (used by tests and the
// --config flag).
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system.
func Init() error {
	viper.SetConfigName("switchdeck")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "switchdeck"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("control.settle_delay_seconds", DefaultConfig.Control.SettleDelaySeconds)
	viper.SetDefault("control.read_retries", DefaultConfig.Control.ReadRetries)
	viper.SetDefault("control.read_retry_delay_seconds", DefaultConfig.Control.ReadRetryDelaySeconds)

	viper.SetDefault("local_control.use_local_control", DefaultConfig.LocalControl.Enabled)
	viper.SetDefault("local_control.monitor_ip", DefaultConfig.LocalControl.MonitorIP)
	viper.SetDefault("local_control.monitor_mac", DefaultConfig.LocalControl.MonitorMAC)
	viper.SetDefault("local_control.monitor_name", DefaultConfig.LocalControl.MonitorName)
	viper.SetDefault("local_control.token_file", DefaultConfig.LocalControl.TokenFile)

	viper.SetDefault("smartthings.device_id", DefaultConfig.SmartThings.DeviceID)
	viper.SetDefault("smartthings.api_token", DefaultConfig.SmartThings.APIToken)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults.
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing).
func Set(c *Config) {
	cfg = c
}

// Save writes the current configuration to file.
func Save() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "switchdeck.toml"
	}
	return filepath.Join(home, ".config", "switchdeck", "switchdeck.toml")
}

// UpdateLocalControl persists new local-control settings (used by the pair
// command after a successful pairing).
func UpdateLocalControl(lc LocalControlConfig) error {
	c := Get()
	c.LocalControl = lc
	viper.Set("local_control.use_local_control", lc.Enabled)
	viper.Set("local_control.monitor_ip", lc.MonitorIP)
	viper.Set("local_control.monitor_mac", lc.MonitorMAC)
	viper.Set("local_control.monitor_name", lc.MonitorName)
	viper.Set("local_control.token_file", lc.TokenFile)
	return Save()
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "switchdeck_token.txt"
	}
	return filepath.Join(home, ".config", "switchdeck", "pairing_token.txt")
}
