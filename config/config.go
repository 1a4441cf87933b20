package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the server. Every flag can also be set
// through the environment variable named in its env tag.
type Config struct {
	Host         string        `arg:"--host,env:QUICKQ_HOST" default:"0.0.0.0" help:"address to bind"`
	Port         int           `arg:"-p,--port,env:QUICKQ_PORT" default:"9324" help:"port to listen on" validate:"min=1,max=65535"`
	Hostname     string        `arg:"--hostname,env:QUICKQ_HOSTNAME" default:"http://localhost:9324" help:"base URL used to build queue URLs" validate:"required"`
	DBDriver     string        `arg:"--db-driver,env:QUICKQ_DB_DRIVER" default:"sqlite" help:"metadata store: sqlite or postgres" validate:"oneof=sqlite postgres"`
	DBPath       string        `arg:"--db-path,env:QUICKQ_DB_PATH" default:"quickq.db" help:"sqlite database file"`
	DBDSN        string        `arg:"--db-dsn,env:QUICKQ_DB_DSN" help:"postgres connection string"`
	DefaultQueue string        `arg:"--default-queue,env:QUICKQ_DEFAULT_QUEUE" default:"myqueue" help:"queue used when a request has no QueueUrl; empty disables"`
	LogLevel     string        `arg:"--log-level,env:QUICKQ_LOG_LEVEL" default:"info" help:"debug, info, warn or error" validate:"oneof=debug info warn error"`
	Timeout      time.Duration `arg:"--timeout,env:QUICKQ_REQUEST_TIMEOUT" default:"5s" help:"per-request timeout" validate:"min=0"`
	MaxBodyBytes int64         `arg:"--max-body-bytes,env:QUICKQ_MAX_BODY_BYTES" default:"1048576" help:"largest request body accepted" validate:"min=1024"`
	EnvFile      string        `arg:"--env-file,env:QUICKQ_ENV_FILE" default:".env" help:"optional dotenv file loaded before parsing"`
}

func (Config) Description() string {
	return "quickq is an SQS-compatible message queue emulator speaking the query protocol."
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.DBDriver == "postgres" && c.DBDSN == "" {
		return errors.New("invalid configuration: --db-dsn is required with --db-driver postgres")
	}
	if c.DBDriver == "sqlite" && c.DBPath == "" {
		return errors.New("invalid configuration: --db-path is required with --db-driver sqlite")
	}
	return nil
}

// Parse loads the dotenv file named by --env-file or QUICKQ_ENV_FILE (or
// .env) if it exists, then parses args and the environment.
func Parse(args []string) (*Config, error) {
	cfg, _, err := parse(args)
	return cfg, err
}

// MustParse is Parse for main: it prints usage and exits on bad input.
func MustParse(args []string) *Config {
	cfg, p, err := parse(args)
	switch {
	case err == nil:
		return cfg
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	case p != nil:
		p.Fail(err.Error())
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
	return nil
}

func parse(args []string) (*Config, *arg.Parser, error) {
	envFile := envFileFromArgs(args)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := &Config{}
	p, err := arg.NewParser(arg.Config{Program: "quickq"}, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Parse(args); err != nil {
		return nil, p, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, p, err
	}
	return cfg, p, nil
}

// envFileFromArgs finds --env-file ahead of the full parse so the file can
// feed the env tags.
func envFileFromArgs(args []string) string {
	for i, a := range args {
		if a == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "--env-file="); ok {
			return v
		}
	}
	if v := os.Getenv("QUICKQ_ENV_FILE"); v != "" {
		return v
	}
	return ".env"
}
