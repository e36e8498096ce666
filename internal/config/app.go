// Package config loads process configuration from configs/config.yml and the
// user-editable device settings from their JSON file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ZPC"

type App struct {
	Port         string `mapstructure:"port"`
	LogLevel     string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	SettingsPath string `mapstructure:"settings_path" validate:"required"`

	DB      DB      `mapstructure:"db"`
	Auth    Auth    `mapstructure:"auth"`
	Logs    Logs    `mapstructure:"logs"`
	Probe   Probe   `mapstructure:"probe"`
	Timing  Timing  `mapstructure:"timing"`
	GPIO    GPIO    `mapstructure:"gpio"`
	Network Network `mapstructure:"network"`
	MQTT    MQTT    `mapstructure:"mqtt"`
	Notify  Notify  `mapstructure:"notify"`
}

type DB struct {
	Path string `mapstructure:"path" validate:"required"`
}

type Auth struct {
	SigningKey string        `mapstructure:"signing_key" validate:"required,min=16"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type Logs struct {
	Path      string `mapstructure:"path" validate:"required"`
	OldPath   string `mapstructure:"old_path" validate:"required,nefield=Path"`
	MaxBytes  int64  `mapstructure:"max_bytes" validate:"gt=0"`
	TailBytes int    `mapstructure:"tail_bytes" validate:"gte=0"`
}

// Probe describes the reachability check run by the health monitor.
type Probe struct {
	Method     string        `mapstructure:"method" validate:"oneof=icmp tcp"`
	Target     string        `mapstructure:"target" validate:"required,ipv4"`
	Port       int           `mapstructure:"port" validate:"required_if=Method tcp,gte=0,lte=65535"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Privileged bool          `mapstructure:"privileged"`
}

// Timing holds the worker cadences.
type Timing struct {
	Health       time.Duration `mapstructure:"health" validate:"gt=0"`
	Connectivity time.Duration `mapstructure:"connectivity" validate:"gt=0"`
	Indicator    time.Duration `mapstructure:"indicator" validate:"gt=0"`
	Aggregator   time.Duration `mapstructure:"aggregator" validate:"gt=0"`
	Notifier     time.Duration `mapstructure:"notifier" validate:"gt=0"`
}

type GPIO struct {
	Enabled   bool   `mapstructure:"enabled"`
	Chip      string `mapstructure:"chip" validate:"required_if=Enabled true"`
	PowerLine int    `mapstructure:"power_line" validate:"gte=0"`
	LEDLine   int    `mapstructure:"led_line" validate:"gte=0"`
}

type Network struct {
	Interface   string        `mapstructure:"interface"`
	Nmcli       bool          `mapstructure:"nmcli"`
	ConnectWait time.Duration `mapstructure:"connect_wait" validate:"gt=0"`
}

type MQTT struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker" validate:"required_if=Enabled true"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Prefix   string `mapstructure:"prefix"`
}

type Notify struct {
	TelegramBaseURL string        `mapstructure:"telegram_base_url" validate:"required,url"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

func setAppDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("settings_path", "data/config.json")

	v.SetDefault("db.path", "data/app.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("logs.path", "data/logs.txt")
	v.SetDefault("logs.old_path", "data/logs_old.txt")
	v.SetDefault("logs.max_bytes", 50*1024)
	v.SetDefault("logs.tail_bytes", 2048)

	v.SetDefault("probe.method", "icmp")
	v.SetDefault("probe.target", "192.168.1.100")
	v.SetDefault("probe.port", 0)
	v.SetDefault("probe.timeout", time.Second)
	v.SetDefault("probe.privileged", false)

	v.SetDefault("timing.health", 5*time.Second)
	v.SetDefault("timing.connectivity", 200*time.Millisecond)
	v.SetDefault("timing.indicator", 200*time.Millisecond)
	v.SetDefault("timing.aggregator", 2*time.Second)
	v.SetDefault("timing.notifier", 10*time.Second)

	v.SetDefault("gpio.enabled", false)
	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.power_line", 5)
	v.SetDefault("gpio.led_line", 2)

	v.SetDefault("network.interface", "wlan0")
	v.SetDefault("network.nmcli", false)
	v.SetDefault("network.connect_wait", 10*time.Second)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.client_id", "zenith-pc-control")
	v.SetDefault("mqtt.prefix", "zenith")

	v.SetDefault("notify.telegram_base_url", "https://api.telegram.org")
	v.SetDefault("notify.timeout", 5*time.Second)
}

// LoadApp reads config.yml from dir (when present), applies defaults and
// ZPC_* environment overrides, and validates the result.
func LoadApp(dir string) (*App, error) {
	v := viper.New()
	setAppDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := newValidator().Struct(app); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &app, nil
}
