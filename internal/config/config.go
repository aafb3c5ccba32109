package config

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Bot            BotConfig            `mapstructure:"bot"`
	Logger         LoggerConfig         `mapstructure:"logger"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Exile          ExileConfig          `mapstructure:"exile"`
	ProtectedNames ProtectedNamesConfig `mapstructure:"protected_names"`
	Monitor        MonitorConfig        `mapstructure:"monitor"`
	Translation    TranslationConfig    `mapstructure:"translation"`
}

// Discord bot configuration
type BotConfig struct {
	Token     string       `mapstructure:"token"`
	ServerIDs []string     `mapstructure:"server_ids"`
	Status    StatusConfig `mapstructure:"status"`
}

// status server configuration
type StatusConfig struct {
	Listen      string `mapstructure:"listen"`
	DebugPath   string `mapstructure:"debug_path"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// exile command and sanction settings
type ExileConfig struct {
	Trigger         string        `mapstructure:"trigger"`
	Enforcers       []string      `mapstructure:"enforcers"`
	RoleName        string        `mapstructure:"role_name"`
	RoleID          string        `mapstructure:"role_id"`
	RemoveRoleName  string        `mapstructure:"remove_role_name"`
	ChannelName     string        `mapstructure:"channel_name"`
	InmatePrefix    string        `mapstructure:"inmate_prefix"`
	Message         string        `mapstructure:"message"`
	EvadeMessage    string        `mapstructure:"evade_message"`
	Reaction        string        `mapstructure:"reaction"`
	DeleteAfter     time.Duration `mapstructure:"delete_after"`
	DrunkTankAfter  time.Duration `mapstructure:"drunk_tank_after"`
	RoleMentionLink string        `mapstructure:"role_mention_link"`
	OpenExile       bool          `mapstructure:"open_exile"`
}

type ProtectedNamesConfig struct {
	Names          []string `mapstructure:"names"`
	Reason         string   `mapstructure:"reason"`
	AlertRoleID    string   `mapstructure:"alert_role_id"`
	AlertChannelID string   `mapstructure:"alert_channel_id"`
}

// market talk monitor settings
type MonitorConfig struct {
	TriggerWords          []string `mapstructure:"trigger_words"`
	NotificationChannelID string   `mapstructure:"notification_channel_id"`
	IgnoredAuthors        []string `mapstructure:"ignored_authors"`
}

type TranslationConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Endpoint      string        `mapstructure:"endpoint"`
	Target        string        `mapstructure:"target"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	CacheSize     int           `mapstructure:"cache_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Getter returns the configuration snapshot that is current at call time.
type Getter func() *Config

var current atomic.Pointer[Config]

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)

	return cfg, nil
}

// Watch reloads the configuration whenever the file changes on disk. A file
// that fails to decode or validate is ignored and the previous snapshot kept.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Printf("Config watch disabled: %v", err)
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			log.Printf("Ignoring config change in %s: %v", e.Name, err)
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Printf("Ignoring invalid config change in %s: %v", e.Name, err)
			return
		}
		current.Store(cfg)
		log.Printf("Configuration reloaded from %s", e.Name)
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
}

func Get() *Config {
	cfg := current.Load()
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

// Set replaces the current snapshot. Used by tests and tools that build a
// Config without a file.
func Set(cfg *Config) {
	current.Store(cfg)
}

// Validate checks the settings the bot cannot run without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	if c.Exile.Trigger == "" {
		return fmt.Errorf("exile trigger is required")
	}
	if c.Exile.RoleName == "" {
		return fmt.Errorf("exile role name is required")
	}
	return nil
}

// IsMonitored reports whether events from guildID should be processed.
func (c *Config) IsMonitored(guildID string) bool {
	for _, id := range c.Bot.ServerIDs {
		if id == guildID {
			return true
		}
	}
	return false
}

// CommandTriggers lists every command token, used to strip commands out of
// reason and rename text.
func (c *Config) CommandTriggers() []string {
	t := c.Exile.Trigger
	return []string{t + "exile", t + "unexile", t + "release", t + "releaseall", t + "crime", t + "rename"}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("exile")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.status.listen", "127.0.0.1:9090")
	v.SetDefault("bot.status.debug_path", "/debug")
	v.SetDefault("bot.status.metrics_path", "/metrics")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "exile.sqlite")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")

	v.SetDefault("exile.trigger", "!")
	v.SetDefault("exile.role_name", "exiled")
	v.SetDefault("exile.channel_name", "exile")
	v.SetDefault("exile.inmate_prefix", "Inmate")
	v.SetDefault("exile.message", "you have been exiled. Think about what you did.")
	v.SetDefault("exile.evade_message", "you can't escape exile by leaving and coming back.")
	v.SetDefault("exile.reaction", "✅")
	v.SetDefault("exile.delete_after", "5s")
	v.SetDefault("exile.drunk_tank_after", "1m")
	v.SetDefault("exile.role_mention_link", "https://youtu.be/u0I5ZZ6dlto")
	v.SetDefault("exile.open_exile", true)

	v.SetDefault("protected_names.reason", "Impersonating a protected name")

	v.SetDefault("monitor.ignored_authors", []string{"mee6"})

	v.SetDefault("translation.endpoint", "https://translation.googleapis.com/language/translate/v2")
	v.SetDefault("translation.target", "en")
	v.SetDefault("translation.rate_per_second", 5.0)
	v.SetDefault("translation.cache_size", 512)
	v.SetDefault("translation.timeout", "10s")
}
