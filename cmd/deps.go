package main

import (
	"context"
	"os"
	"time"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/eagle-eye-cli/internal/ingest"
	"github.com/sells-group/eagle-eye-cli/internal/priority"
	"github.com/sells-group/eagle-eye-cli/internal/store"
	"github.com/sells-group/eagle-eye-cli/pkg/anthropic"
	"github.com/sells-group/eagle-eye-cli/pkg/besttime"
	"github.com/sells-group/eagle-eye-cli/pkg/notion"
	"github.com/sells-group/eagle-eye-cli/pkg/places"
	sfpkg "github.com/sells-group/eagle-eye-cli/pkg/salesforce"
)

// initStore opens the configured store backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// initLoader builds the dump loader from the ingest config, honoring a
// --source flag override.
func initLoader(source string) (*ingest.Loader, error) {
	if source == "" {
		source = cfg.Ingest.Source
	}
	l := ingest.NewLoader(source)
	l.FTP = ingest.NewFTPFetcher(ingest.FTPOptions{
		Timeout:  time.Duration(cfg.Ingest.TimeoutSecs) * time.Second,
		User:     cfg.Ingest.FTPUser,
		Password: cfg.Ingest.FTPPassword,
	})
	if cfg.Ingest.WeightsPath != "" {
		w, err := priority.LoadWeights(cfg.Ingest.WeightsPath)
		if err != nil {
			return nil, err
		}
		l.Weights = w
	}
	return l, nil
}

func initPlaces() places.Client {
	return places.NewClient(cfg.Places.Key,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithRateLimit(cfg.Places.RateLimit),
	)
}

func initBestTime() besttime.Client {
	return besttime.NewClient(cfg.BestTime.PrivateKey, cfg.BestTime.PublicKey,
		besttime.WithBaseURL(cfg.BestTime.BaseURL),
		besttime.WithRateLimit(cfg.BestTime.RateLimit),
	)
}

func initNotion() (notion.Client, error) {
	if cfg.Notion.Token == "" {
		return nil, eris.New("notion token is required (EAGLE_NOTION_TOKEN)")
	}
	if cfg.Notion.BlockDB == "" {
		return nil, eris.New("notion block database ID is required (EAGLE_NOTION_BLOCK_DB)")
	}
	return notion.NewClient(cfg.Notion.Token), nil
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (EAGLE_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := gosf.Init(gosf.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

func initAnthropic() (anthropic.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (EAGLE_ANTHROPIC_KEY)")
	}
	return anthropic.NewClient(cfg.Anthropic.Key), nil
}
