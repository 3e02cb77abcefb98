package ingest

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/priority"
)

// Stats summarizes one load.
type Stats struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	SkippedRows int `json:"skipped_rows"`
}

// Loader reads an L2 utilization dump, applies the cleaning filter, and
// scores each record.
type Loader struct {
	Source     string // local path or ftp:// URL
	SampleSize int    // 0 = all rows
	Weights    priority.Weights
	FTP        *FTPFetcher
}

// NewLoader creates a Loader with default scoring weights.
func NewLoader(source string) *Loader {
	return &Loader{
		Source:  source,
		Weights: priority.DefaultWeights(),
		FTP:     NewFTPFetcher(FTPOptions{}),
	}
}

// Load reads and parses the dump. Rows failing the cleaning filter are
// counted and dropped. When SampleSize is set, parsing stops after that many
// valid rows.
func (l *Loader) Load(ctx context.Context) ([]model.L2Port, Stats, error) {
	r, err := l.open(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	defer func() { _ = r.Close() }()

	log := zap.L().With(zap.String("component", "ingest"), zap.String("source", l.Source))
	log.Info("loading L2 dump")

	if isXLSX(l.Source) {
		return l.loadXLSX(r, log)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(streamCtx, r, CSVOptions{
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var header headerMap
	select {
	case h, ok := <-headerCh:
		if !ok {
			return nil, Stats{}, eris.New("ingest: empty dump")
		}
		header = newHeaderMap(h)
	case <-ctx.Done():
		return nil, Stats{}, eris.Wrap(ctx.Err(), "ingest: waiting for header")
	}
	if err := header.validate(); err != nil {
		return nil, Stats{}, err
	}

	var (
		records []model.L2Port
		stats   Stats
		capped  bool
	)
	for row := range rowCh {
		if capped {
			continue // drain so the stream goroutine can finish
		}
		stats.TotalRows++

		l2, ok := header.parseRow(row)
		if !ok {
			stats.SkippedRows++
			continue
		}
		priority.Score(&l2, l.Weights)
		records = append(records, l2)
		stats.ValidRows++

		if l.SampleSize > 0 && stats.ValidRows >= l.SampleSize {
			log.Info("sample cap reached", zap.Int("rows", stats.ValidRows))
			capped = true
			cancel()
		}
	}
	if err := <-errCh; err != nil && !capped {
		return nil, stats, err
	}

	log.Info("L2 dump loaded",
		zap.Int("total", stats.TotalRows),
		zap.Int("valid", stats.ValidRows),
		zap.Int("skipped", stats.SkippedRows),
	)
	return records, stats, nil
}

// loadXLSX parses a spreadsheet dump through the same cleaning filter as
// the CSV path.
func (l *Loader) loadXLSX(r io.Reader, log *zap.Logger) ([]model.L2Port, Stats, error) {
	rows, err := readXLSX(r)
	if err != nil {
		return nil, Stats{}, err
	}
	if len(rows) == 0 {
		return nil, Stats{}, eris.New("ingest: empty dump")
	}

	header := newHeaderMap(rows[0])
	if err := header.validate(); err != nil {
		return nil, Stats{}, err
	}

	var (
		records []model.L2Port
		stats   Stats
	)
	for _, row := range rows[1:] {
		stats.TotalRows++

		l2, ok := header.parseRow(row)
		if !ok {
			stats.SkippedRows++
			continue
		}
		priority.Score(&l2, l.Weights)
		records = append(records, l2)
		stats.ValidRows++

		if l.SampleSize > 0 && stats.ValidRows >= l.SampleSize {
			log.Info("sample cap reached", zap.Int("rows", stats.ValidRows))
			break
		}
	}

	log.Info("L2 dump loaded",
		zap.Int("total", stats.TotalRows),
		zap.Int("valid", stats.ValidRows),
		zap.Int("skipped", stats.SkippedRows),
	)
	return records, stats, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(l.Source, "ftp://") {
		if l.FTP == nil {
			l.FTP = NewFTPFetcher(FTPOptions{})
		}
		return l.FTP.Download(ctx, l.Source)
	}

	f, err := os.Open(l.Source)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open dump %s", l.Source)
	}
	return f, nil
}
