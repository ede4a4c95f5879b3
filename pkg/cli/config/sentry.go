package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled when empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("RELVAULT_SENTRY_DSN", "SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Destination: &c.Env,
			Sources:     cli.EnvVars("RELVAULT_SENTRY_ENV", "SENTRY_ENVIRONMENT"),
		},
	}
}

// Configure initializes the Sentry SDK. It reports whether reporting is
// enabled; a missing DSN disables it without error.
func (c *Sentry) Configure() (bool, error) {
	if c.DSN == "" {
		return false, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     "relvault@" + types.Version,
	}); err != nil {
		return false, goerr.Wrap(err, "failed to initialize Sentry")
	}
	return true, nil
}
