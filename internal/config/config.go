package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Goals    GoalsConfig    `mapstructure:"goals"`
	Photos   PhotosConfig   `mapstructure:"photos"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// UpstreamConfig points at the HealthyTrack JSON API.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type DatabaseConfig struct {
	HistoryPath string `mapstructure:"history_path"`
}

// QuizConfig.BankPath empty means the built-in question bank.
type QuizConfig struct {
	BankPath string `mapstructure:"bank_path"`
}

type GoalsConfig struct {
	Path string `mapstructure:"path"`
}

type PhotosConfig struct {
	StagingDir string `mapstructure:"staging_dir"`
}

type ChatConfig struct {
	TrustAssistantHTML bool `mapstructure:"trust_assistant_html"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8090")

	v.SetDefault("upstream.base_url", "http://localhost:5000")
	v.SetDefault("upstream.timeout_seconds", 30)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:8090"})

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)

	v.SetDefault("database.history_path", "./data/quiz_history.db")
	v.SetDefault("quiz.bank_path", "")
	v.SetDefault("goals.path", "./data/goals.json")
	v.SetDefault("photos.staging_dir", "./data/staging")
	v.SetDefault("chat.trust_assistant_html", true)
}

// Loader reads the configuration from defaults, an optional config.yaml,
// HEALTHYTRACK_* environment variables and command-line flags, in increasing
// precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader parses args (without the program name).
func NewLoader(args []string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("healthytrack-dashboard", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a config file (default: ./config/config.yaml or ./config.yaml)")
	flags.String("port", "", "listen address for the dashboard, e.g. :8090")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("server.port", flags.Lookup("port")); err != nil {
		return nil, err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HEALTHYTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return &Loader{v: v}, nil
}

// ConfigFile is the file in use, or "" when running on defaults and env.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) Load() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8090"
	}
	if !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")
	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	return &cfg, nil
}

// Watch reloads the config file on change and passes the new values to
// onChange. Only settings that are safe to change at runtime should be
// applied by the callback.
func (l *Loader) Watch(logger *zap.Logger, onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("configuration file changed, reloading", zap.String("file", e.Name))
		cfg, err := l.Load()
		if err != nil {
			logger.Error("error reloading configuration", zap.Error(err))
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}
