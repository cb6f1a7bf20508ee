package core

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug        bool   `mapstructure:"debug"`
		Env          string `mapstructure:"env" validate:"oneof=DEV TEST QA PROD"`
		AppName      string `mapstructure:"appName"`
		Build        string `mapstructure:"build"`
		RollbarToken string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Report   ReportConfig   `mapstructure:"report"`
		Source   SourceConfig   `mapstructure:"source"`
	}

	ServerConfig struct {
		Host string `mapstructure:"host"`
	}

	DatabaseConfig struct {
		Driver     string `mapstructure:"driver" validate:"oneof=postgres pgx sqlite"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name" validate:"required"`
		DisableTLS bool   `mapstructure:"disableTLS"`
		// DSN, when set, is handed to the driver as is.
		DSN string `mapstructure:"dsn"`
	}

	ReportConfig struct {
		AtRiskBelow      float64 `mapstructure:"atRiskBelow" validate:"percentage"`
		TopPerformerFrom float64 `mapstructure:"topPerformerFrom" validate:"percentage"`
		Workers          int     `mapstructure:"workers" validate:"gte=1"`
	}

	SourceConfig struct {
		Kind string `mapstructure:"kind" validate:"oneof=db file"`
		File string `mapstructure:"file" validate:"required_if=Kind file"`
	}
)

func (db DatabaseConfig) Address() string {
	if db.Port == "" {
		return db.Host
	}
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig reads configuration from defaults, the optional config/.env.<env>
// file and the environment, in increasing order of precedence.
// Environment variables are prefixed with the environment: DEV_DATABASE_HOST.
func NewConfig() (*Config, error) {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Alama")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("database.driver", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.user", "postgres")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.name", "alama")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("database.dsn", "")
	conf.SetDefault("report.atRiskBelow", 70.0)
	conf.SetDefault("report.topPerformerFrom", 90.0)
	conf.SetDefault("report.workers", 8)
	conf.SetDefault("source.kind", "db")
	conf.SetDefault("source.file", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("debug", false)
		conf.SetDefault("database.driver", "sqlite")
		conf.SetDefault("database.name", ":memory:")
	}
	conf.SetDefault("env", env)
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	conf.AutomaticEnv()

	var c Config
	if err := conf.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	c.Env = env
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	validate, translator := NewValidator()
	return Validate(validate, translator, c, "invalid configuration")
}
