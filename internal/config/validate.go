package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the fields a command needs are present. mode matches
// the command about to run: ingest, enrich, report, serve.
func (c *Config) Validate(mode string) error {
	var problems []string

	// Shared bounds.
	if c.Enrich.Concurrency < 1 || c.Enrich.Concurrency > 32 {
		problems = append(problems, "enrich.concurrency must be between 1 and 32")
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}
	if c.Store.Driver == "sqlite" && c.Store.SQLitePath == "" {
		problems = append(problems, "store.sqlite_path is required for the sqlite driver")
	}

	switch mode {
	case "ingest":
		if c.Ingest.Source == "" {
			problems = append(problems, "ingest.source is required")
		}
	case "enrich":
		if c.Places.Key == "" {
			problems = append(problems, "places.key is required")
		}
		if c.BestTime.PrivateKey == "" {
			problems = append(problems, "besttime.private_key is required")
		}
	case "report":
		if c.Report.Format != "xlsx" && c.Report.Format != "csv" {
			problems = append(problems, "report.format must be xlsx or csv")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.New(fmt.Sprintf("config: unknown mode %q", mode))
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
