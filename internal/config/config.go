package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bassista/mkdoc/internal/logger"
	"github.com/bassista/mkdoc/internal/markdown"
)

// EnvPrefix prefixes every environment override, e.g. MKDOC_WATCH_POLL_INTERVAL.
const EnvPrefix = "MKDOC"

type Config struct {
	Render   RenderConfig
	Markdown MarkdownConfig
	Watch    WatchConfig
	Server   ServerConfig
	Misc     MiscConfig
}

type RenderConfig struct {
	TemplatePath string `validate:"required"`
}

type MarkdownConfig struct {
	Extensions  []string
	UnsafeHTML  bool
	HardWraps   bool
	HeadingIDs  bool
	FrontMatter bool
}

type WatchConfig struct {
	PollInterval time.Duration `validate:"gt=0s"`
	Notify       bool
}

// ServerConfig configures the preview server. An empty Addr disables it.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutDownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins string
}

type MiscConfig struct {
	LogLevel string `validate:"required"`
	GinMode  string `validate:"oneof=debug release test"`
}

// Options converts the markdown section into converter options.
func (m MarkdownConfig) Options() markdown.Options {
	return markdown.Options{
		Extensions:  m.Extensions,
		UnsafeHTML:  m.UnsafeHTML,
		HardWraps:   m.HardWraps,
		HeadingIDs:  m.HeadingIDs,
		FrontMatter: m.FrontMatter,
	}
}

// SetDefaults registers the default of every key on the global viper instance.
func SetDefaults() {
	viper.SetDefault("render.template", "template.html")

	viper.SetDefault("markdown.extensions", []string{})
	viper.SetDefault("markdown.unsafe_html", true)
	viper.SetDefault("markdown.hard_wraps", false)
	viper.SetDefault("markdown.heading_ids", false)
	viper.SetDefault("markdown.front_matter", false)

	viper.SetDefault("watch.poll_interval", time.Second)
	viper.SetDefault("watch.notify", false)

	viper.SetDefault("server.addr", "")
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.idle_timeout", 120*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("server.request_timeout", time.Second)
	viper.SetDefault("server.cors_allowed_origins", "*")

	viper.SetDefault("misc.log_level", "info")
	viper.SetDefault("misc.gin_mode", "release")
}

// LoadConfig reads mkdoc.yaml from confPath (or MKDOC_CONFIG_PATH, or the
// working directory), applies MKDOC_* environment overrides and flags bound
// to viper, and validates the result. A missing config file is not an error.
func LoadConfig(confPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot load .env: %v", err)
	}

	if confPath == "" {
		confPath = getEnvOrDefault(EnvPrefix+"_CONFIG_PATH", ".")
	}

	viper.SetConfigName("mkdoc")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(confPath)

	SetDefaults()

	// Environment variables automatically override config file values
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Debug("no config file found, using defaults and env vars")
	}

	cfg := &Config{
		Render: RenderConfig{
			TemplatePath: viper.GetString("render.template"),
		},
		Markdown: MarkdownConfig{
			Extensions:  viper.GetStringSlice("markdown.extensions"),
			UnsafeHTML:  viper.GetBool("markdown.unsafe_html"),
			HardWraps:   viper.GetBool("markdown.hard_wraps"),
			HeadingIDs:  viper.GetBool("markdown.heading_ids"),
			FrontMatter: viper.GetBool("markdown.front_matter"),
		},
		Watch: WatchConfig{
			PollInterval: viper.GetDuration("watch.poll_interval"),
			Notify:       viper.GetBool("watch.notify"),
		},
		Server: ServerConfig{
			Addr:               viper.GetString("server.addr"),
			ReadTimeout:        viper.GetDuration("server.read_timeout"),
			WriteTimeout:       viper.GetDuration("server.write_timeout"),
			IdleTimeout:        viper.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    viper.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     viper.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: viper.GetString("server.cors_allowed_origins"),
		},
		Misc: MiscConfig{
			LogLevel: viper.GetString("misc.log_level"),
			GinMode:  viper.GetString("misc.gin_mode"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := logrus.ParseLevel(strings.ToLower(c.Misc.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Misc.LogLevel)
	}

	for _, name := range c.Markdown.Extensions {
		if !markdown.KnownExtension(name) {
			return fmt.Errorf("unknown markdown extension %q", name)
		}
	}

	if c.Server.Addr != "" {
		if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
			return errors.New("server timeouts must be positive")
		}
		if c.Server.ShutDownTimeout <= 0 {
			return errors.New("server shutdown timeout must be positive")
		}
		if c.Server.RequestTimeout < 0 {
			return errors.New("server request timeout must not be negative")
		}
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
