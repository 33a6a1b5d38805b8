package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/zifybot/internal/handlers"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/service/calls"
	"github.com/nkiryanov/zifybot/internal/service/telnyx"
)

const (
	defaultListenAddr   = "localhost:5000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
)

type TelnyxConfig struct {
	APIKey       string `yaml:"api_key"`
	ConnectionID string `yaml:"connection_id"`
	PhoneNumber  string `yaml:"phone_number"`
	CallerNumber string `yaml:"caller_number"`
	WebhookURL   string `yaml:"webhook_url"`
	APIURL       string `yaml:"api_url"`
	AssistantID  string `yaml:"assistant_id"`

	// Start agent only on the first answered event of a call
	StartAgentOnce bool `yaml:"start_agent_once"`
}

type Config struct {
	// Default logging level
	LogLevel string `yaml:"log_level"`

	// Address on which the service will be run
	ListenAddr string `yaml:"address"`

	// Database to connect to; postgres:// or mongodb://
	DatabaseDSN string `yaml:"database_uri"`

	// Secrets to sign access and refresh tokens. Both required and must differ
	AccessSecret  string `yaml:"access_token_secret"`
	RefreshSecret string `yaml:"refresh_token_secret"`

	// Environment
	Environment string `yaml:"environment"`

	// Browser origins allowed to call the API
	CORSOrigins []string `yaml:"cors_origins"`

	Telnyx TelnyxConfig `yaml:"telnyx"`
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		CORSOrigins: handlers.DefaultCORSOrigins,
		Telnyx:      TelnyxConfig{APIURL: telnyx.DefaultBaseURL},
	}
}

// Load config from YAML file. Fields absent in the file keep their values
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := cleanenv.ReadConfig(path, c); err != nil {
		return fmt.Errorf("failed to read config %q: %w", path, err)
	}
	return nil
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = splitList(value)
			}
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"ACCESS_TOKEN_SECRET":  setString(&c.AccessSecret),
		"REFRESH_TOKEN_SECRET": setString(&c.RefreshSecret),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"CORS_ORIGINS":         setList(&c.CORSOrigins),
		"TELNYX_API_KEY":       setString(&c.Telnyx.APIKey),
		"TELNYX_CONNECTION_ID": setString(&c.Telnyx.ConnectionID),
		"TELNYX_PHONE_NUMBER":  setString(&c.Telnyx.PhoneNumber),
		"TELNYX_CALLER_NUMBER": setString(&c.Telnyx.CallerNumber),
		"TELNYX_WEBHOOK_URL":   setString(&c.Telnyx.WebhookURL),
		"TELNYX_API_URL":       setString(&c.Telnyx.APIURL),
		"AI_ASSISTANT_ID":      setString(&c.Telnyx.AssistantID),
		"AGENT_START_ONCE":     setBool(&c.Telnyx.StartAgentOnce),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := newFlagSet()

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string (postgres:// or mongodb://)")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Secret to sign access tokens")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Secret to sign refresh tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Allowed CORS origins, comma separated")
	fs.BoolVar(&c.Telnyx.StartAgentOnce, "agent-start-once", c.Telnyx.StartAgentOnce, "Start agent only on the first answered event of a call")

	return fs.Parse(args)
}

// Check settings the server can't start without
func (c *Config) Validate() error {
	switch {
	case c.DatabaseDSN == "":
		return errors.New("database dsn is required (DATABASE_URI or --database)")
	case c.AccessSecret == "":
		return errors.New("access token secret is required (ACCESS_TOKEN_SECRET)")
	case c.RefreshSecret == "":
		return errors.New("refresh token secret is required (REFRESH_TOKEN_SECRET)")
	case c.AccessSecret == c.RefreshSecret:
		return errors.New("access and refresh token secrets must differ")
	}
	return nil
}

func (c *Config) CallsConfig() calls.Config {
	return calls.Config{
		APIKey:       c.Telnyx.APIKey,
		ConnectionID: c.Telnyx.ConnectionID,
		PhoneNumber:  c.Telnyx.PhoneNumber,
		CallerNumber: c.Telnyx.CallerNumber,
		WebhookURL:   c.Telnyx.WebhookURL,
		AssistantID:  c.Telnyx.AssistantID,
	}
}

// Config file path from --config flag or CONFIG_PATH; flag wins
func configPath(args []string, getenv func(string) string) (string, error) {
	fs := pflag.NewFlagSet("zifybot-config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	path := fs.StringP("config", "c", getenv("CONFIG_PATH"), "")
	if err := fs.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return "", err
	}
	return *path, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("zifybot", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Path to YAML config file (or CONFIG_PATH)")
	return fs
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
