package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/nazh/votelink/internal/logger"
	"github.com/nazh/votelink/internal/service/notifier"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultVotePageURL  = "http://localhost:8000/vote"
	defaultTokenExpiry  = 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the votelink service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key to sign operator access tokens
	SecretKey string

	// Bcrypt hash of the operator password (generate with cmd/gensecret)
	OperatorPasswordHash string

	// Absolute URL of the protected vote page used in one-time links
	VotePageURL string

	// How long issued tokens stay valid
	TokenExpiry time.Duration

	// Orders below this total get no voting link, zero allows all
	MinOrderTotal decimal.Decimal

	// Operator notification on every new submission
	OperatorNotifyEnabled bool
	OperatorEmail         string

	// Mail template overrides, empty fields keep the built-in texts
	MailTemplates notifier.Templates

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		VotePageURL: defaultVotePageURL,
		TokenExpiry: defaultTokenExpiry,
		Environment: defaultEnvironment,
	}
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
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value == "1" || value == "true"
			}
		}
	}

	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if parsed, err := time.ParseDuration(value); err == nil {
				*o = parsed
			}
		}
	}

	setDecimal := func(o *decimal.Decimal) func(value string) {
		return func(value string) {
			if parsed, err := decimal.NewFromString(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":             setString(&c.ListenAddr),
		"DATABASE_URI":            setString(&c.DatabaseDSN),
		"SECRET_KEY":              setString(&c.SecretKey),
		"OPERATOR_PASSWORD_HASH":  setString(&c.OperatorPasswordHash),
		"VOTE_PAGE_URL":           setString(&c.VotePageURL),
		"TOKEN_EXPIRY":            setDuration(&c.TokenExpiry),
		"MIN_ORDER_TOTAL":         setDecimal(&c.MinOrderTotal),
		"OPERATOR_NOTIFY_ENABLED": setBool(&c.OperatorNotifyEnabled),
		"OPERATOR_EMAIL":          setString(&c.OperatorEmail),
		"MAIL_LINK_SUBJECT":       setString(&c.MailTemplates.LinkSubject),
		"MAIL_LINK_BODY":          setString(&c.MailTemplates.LinkBody),
		"MAIL_CONFIRM_SUBJECT":    setString(&c.MailTemplates.ConfirmSubject),
		"MAIL_CONFIRM_BODY":       setString(&c.MailTemplates.ConfirmBody),
		"MAIL_OPERATOR_SUBJECT":   setString(&c.MailTemplates.OperatorSubject),
		"MAIL_OPERATOR_BODY":      setString(&c.MailTemplates.OperatorBody),
		"LOG_LEVEL":               setString(&c.LogLevel),
		"ENVIRONMENT":             setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("votelink", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.OperatorPasswordHash, "operator-hash", "p", c.OperatorPasswordHash, "Bcrypt hash of the operator password")
	fs.StringVarP(&c.VotePageURL, "vote-page", "u", c.VotePageURL, "Vote page URL for one-time links")
	fs.DurationVarP(&c.TokenExpiry, "token-expiry", "t", c.TokenExpiry, "Lifetime of issued tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
