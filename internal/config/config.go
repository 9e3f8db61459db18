package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/jacoelho/proligent"
	"github.com/jacoelho/proligent/export"
)

// ConfigName is the base name of the config file searched in the working
// directory and the home directory (.proligent.yaml, .proligent.toml, ...).
const ConfigName = ".proligent"

// EnvPrefix prefixes every environment override, e.g. PROLIGENT_TIME_ZONE.
const EnvPrefix = "PROLIGENT"

// SinkConfig selects where generated payloads are uploaded.
// An empty driver disables uploads.
type SinkConfig struct {
	Driver    string `mapstructure:"driver"`
	Dir       string `mapstructure:"dir"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle bool   `mapstructure:"path_style"`
}

// LedgerConfig selects the fingerprint ledger backend.
type LedgerConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchConfig tunes the drop-folder watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds all runtime configuration.
// Values are populated from .proligent.*, PROLIGENT_* env vars, and CLI flags.
type Config struct {
	TimeZone       string       `mapstructure:"time_zone"`
	DestinationDir string       `mapstructure:"destination_dir"`
	SchemaDir      string       `mapstructure:"schema_dir"`
	Sink           SinkConfig   `mapstructure:"sink"`
	Ledger         LedgerConfig `mapstructure:"ledger"`
	Log            LogConfig    `mapstructure:"log"`
	Watch          WatchConfig  `mapstructure:"watch"`
}

// SetDefaults registers the built-in defaults on v. Every key is registered
// so that environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("time_zone", "Local")
	v.SetDefault("destination_dir", export.DefaultDir)
	v.SetDefault("schema_dir", "")
	v.SetDefault("sink.driver", "")
	v.SetDefault("sink.dir", "")
	v.SetDefault("sink.bucket", "")
	v.SetDefault("sink.region", "us-east-1")
	v.SetDefault("sink.endpoint", "")
	v.SetDefault("sink.prefix", "")
	v.SetDefault("sink.path_style", false)
	v.SetDefault("ledger.driver", "memory")
	v.SetDefault("ledger.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("watch.debounce", 100*time.Millisecond)
}

// NewViper returns a viper instance with defaults, env binding and, when
// present, the config file loaded. A nil fsys means the OS file system.
// An explicit configFile must exist; the searched default may be absent.
func NewViper(fsys afero.Fs, configFile string) (*viper.Viper, error) {
	v := viper.New()
	if fsys != nil {
		v.SetFs(fsys)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	return proligent.LoadLocation(c.TimeZone)
}

// BuildOptions returns the build options implied by the configuration.
func (c Config) BuildOptions() (proligent.BuildOptions, error) {
	loc, err := c.Location()
	if err != nil {
		return proligent.BuildOptions{}, err
	}
	return proligent.BuildOptions{Location: loc}, nil
}
