package ingest

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP fetcher for the weekly utilization drop.
type FTPOptions struct {
	Timeout  time.Duration
	User     string // default "anonymous"
	Password string
}

// FTPFetcher downloads dump files over FTP.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates an FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	return &FTPFetcher{opts: opts}
}

// parseFTPURL extracts host (with port) and path from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "ingest: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ingest: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	path = u.Path
	if path == "" {
		return "", "", eris.New("ingest: empty path in ftp url")
	}

	return host, path, nil
}

// ftpConnReader ties the FTP data connection to the control connection so
// closing the reader releases both.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "ingest: close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "ingest: quit ftp connection")
	}
	return nil
}

// Download retrieves the file at an ftp:// URL. The caller must close the
// returned ReadCloser to release the connection.
func (f *FTPFetcher) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	host, path, err := parseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ftp: connecting", zap.String("host", host), zap.String("path", path))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ingest: ftp dial")
	}

	if err := conn.Login(f.opts.User, f.opts.Password); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ingest: ftp login")
	}

	resp, err := conn.Retr(path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ingest: ftp retrieve")
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}
