package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ctfbridge/ctfbridge/internal/logger"
	"github.com/ctfbridge/ctfbridge/internal/validator"
)

type StaticConfig struct {
	// Path to a YAML dataset. Empty means the built-in sample dataset.
	DatasetFile string `mapstructure:"dataset_file"`
}

type CTFdConfig struct {
	BaseURL     string `mapstructure:"base_url"     validate:"required"`
	Token       string `mapstructure:"token"`
	Cookie      string `mapstructure:"cookie"`
	TimeoutSecs int    `mapstructure:"timeout_secs" validate:"required"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

type PostgresConfig struct {
	User               string        `validate:"required"`
	Password           string        `validate:"required"`
	Host               string        `validate:"required"`
	Database           string        `validate:"required"`
	MaxIdleConnections int           `validate:"required" mapstructure:"max_idle_connections"`
	MaxOpenConnections int           `validate:"required" mapstructure:"max_open_connections"`
	ConnectionTTL      time.Duration `validate:"required" mapstructure:"connection_ttl"`
	Port               int16         `validate:"required"`
}

type AttemptsConfig struct {
	Store     string        `mapstructure:"store"      validate:"oneof=none redis"`
	RedisHost string        `mapstructure:"redis_host"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type GormLogConfig struct {
	Level        int  `mapstructure:"level"`
	TraceQueries bool `mapstructure:"trace_queries"`
}

type LoggingConfig struct {
	Gorm            GormLogConfig `mapstructure:"gorm"`
	App             SlogConfig    `mapstructure:"app"`
	UseOTLP         bool          `mapstructure:"use_otlp"`
	EnableTelemetry bool          `mapstructure:"enable_telemetry"`
}

// See ctfbridge.yaml for an example config
//
// The provider sections are structonly: defaults allocate all of them, and
// only the selected provider's settings are enforced (see Validate).
type Config struct {
	Provider string          `mapstructure:"provider" validate:"required,oneof=static ctfd postgres"`
	Static   StaticConfig    `mapstructure:"static"`
	CTFd     *CTFdConfig     `mapstructure:"ctfd"     validate:"structonly,required_if=Provider ctfd"`
	Postgres *PostgresConfig `mapstructure:"postgres" validate:"structonly,required_if=Provider postgres"`
	Attempts *AttemptsConfig `mapstructure:"attempts" validate:"required"`
	Logging  *LoggingConfig  `mapstructure:"logging"  validate:"required"`
}

// Validate checks the top-level shape, then dives into the section of the
// selected provider only. An unselected section may be empty or incomplete
// without failing the load.
func (c *Config) Validate() error {
	valid := validator.Create()
	err := valid.Validate(c)
	if err != nil {
		return err
	}

	switch c.Provider {
	case "ctfd":
		return valid.Validate(c.CTFd)
	case "postgres":
		return valid.Validate(c.Postgres)
	}

	return nil
}

const (
	AppLogLevel                string = "logging.app.level"
	AttemptsRedisDB            string = "attempts.redis_db"
	AttemptsRedisHost          string = "attempts.redis_host"
	AttemptsStore              string = "attempts.store"
	AttemptsTTL                string = "attempts.ttl"
	CTFdCookie                 string = "ctfd.cookie"
	CTFdMaxRetries             string = "ctfd.max_retries"
	CTFdTimeoutSecs            string = "ctfd.timeout_secs"
	CTFdToken                  string = "ctfd.token"
	EnableTelemetry            string = "logging.enable_telemetry"
	EnvPrefix                  string = "ctfbridge"
	GormLogLevel               string = "logging.gorm.level"
	GormTraceQueries           string = "logging.gorm.trace_queries"
	PostgresConnectonTTL       string = "postgres.connection_ttl"
	PostgresDatabase           string = "postgres.database"
	PostgresHost               string = "postgres.host"
	PostgresMaxIdleConnections string = "postgres.max_idle_connections"
	PostgresMaxOpenConnections string = "postgres.max_open_connections"
	PostgresPassword           string = "postgres.password"
	PostgresPort               string = "postgres.port"
	PostgresUser               string = "postgres.user"
	Provider                   string = "provider"
	StaticDatasetFile          string = "static.dataset_file"
	UseOTLP                    string = "logging.use_otlp"
)

var configReady = false
var config Config

func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}
	logger.Logger.Debug("loading config")

	v := viper.New()

	v.SetConfigName("ctfbridge")

	v.AddConfigPath("/etc/ctfbridge/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// workaround for https://github.com/spf13/viper/issues/761
	// bind env vars explicitly so they unmarshal into the nested struct
	err := v.BindEnv(PostgresPassword)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(CTFdToken)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(CTFdCookie)
	if err != nil {
		return nil, err
	}

	v.SetDefault(Provider, "static")
	v.SetDefault(StaticDatasetFile, "")

	v.SetDefault(CTFdTimeoutSecs, 30)
	v.SetDefault(CTFdMaxRetries, 3)

	v.SetDefault(PostgresHost, "localhost")
	v.SetDefault(PostgresPort, 5432)
	v.SetDefault(PostgresMaxIdleConnections, 2)
	v.SetDefault(PostgresMaxOpenConnections, 10)
	v.SetDefault(PostgresConnectonTTL, 10*time.Minute)

	v.SetDefault(AttemptsStore, "none")
	v.SetDefault(AttemptsRedisHost, "localhost:6379")
	v.SetDefault(AttemptsRedisDB, 0)
	v.SetDefault(AttemptsTTL, 24*time.Hour)

	// default quiet so a healthy exchange leaves stderr to the diagnostics
	v.SetDefault(AppLogLevel, int(slog.LevelWarn))
	v.SetDefault(GormLogLevel, int(slog.LevelWarn))
	v.SetDefault(GormTraceQueries, false)
	v.SetDefault(UseOTLP, false)
	v.SetDefault(EnableTelemetry, false)

	err = v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		configReady = false
		return nil, err
	}

	err = config.Validate()
	if err != nil {
		configReady = false
		return nil, err
	}

	configReady = true
	return &config, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		url.QueryEscape(c.Postgres.User),
		url.QueryEscape(c.Postgres.Password),
		c.Postgres.Host, c.Postgres.Port,
		url.QueryEscape(c.Postgres.Database),
	)
}
