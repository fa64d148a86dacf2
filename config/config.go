package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Environment EnvironmentConfig

	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	GitLab  GitLabConfig
	IRC     IRCConfig
	Webhook WebhookConfig
	Store   StoreConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// GitLabConfig mirrors the plugin-level settings: the API endpoint the bot
// manages, the private token it acts with, and the channel notices stream to.
type GitLabConfig struct {
	Endpoint     string
	PrivateToken string
	Channel      string
}

type IRCConfig struct {
	Server   string
	Nick     string
	Username string
	Password string
	TLS      bool
}

type WebhookConfig struct {
	RateLimitPerMin int
}

type StoreConfig struct {
	Path string
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// GitLab
	cfg.GitLab.Endpoint = viper.GetString("gitlab.endpoint")
	cfg.GitLab.PrivateToken = viper.GetString("gitlab.private_token")
	cfg.GitLab.Channel = viper.GetString("gitlab.channel")
	if token := viper.GetString("gitlab_private_token"); token != "" {
		cfg.GitLab.PrivateToken = token
	}

	// IRC
	cfg.IRC.Server = viper.GetString("irc.server")
	cfg.IRC.Nick = viper.GetString("irc.nick")
	cfg.IRC.Username = viper.GetString("irc.username")
	cfg.IRC.Password = viper.GetString("irc.password")
	cfg.IRC.TLS = viper.GetBool("irc.tls")
	if pass := viper.GetString("irc_password"); pass != "" {
		cfg.IRC.Password = pass
	}

	// Webhooks
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")

	// Credential store
	cfg.Store.Path = viper.GetString("store.path")

	if cfg.GitLab.Channel == "" {
		return nil, fmt.Errorf("gitlab.channel is required - set the channel notices should stream to")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)
	viper.SetDefault("irc.nick", "GitLab")
	viper.SetDefault("irc.username", "GitLab")
	viper.SetDefault("webhook.rate_limit_per_min", 60)
	viper.SetDefault("store.path", "gitlab.json")
}
