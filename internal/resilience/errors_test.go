package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit transient", NewTransientError(errors.New("server overloaded"), 503), true},
		{"wrapped transient", fmt.Errorf("besttime: forecast: %w", NewTransientError(errors.New("rate limited"), 429)), true},
		{"plain error", errors.New("ingest: dump missing columns: splt_l2"), false},
		{"connection reset errno", fmt.Errorf("write tcp: %w", syscall.ECONNRESET), true},
		{"connection refused errno", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), true},
		{"dns timeout", &net.DNSError{IsTimeout: true, Err: "timeout"}, true},
		{"message fragment reset", errors.New("read: connection reset by peer"), true},
		{"message fragment tls", errors.New("net/http: TLS handshake timeout"), true},
		{"message fragment io", errors.New("ftp: retrieve: i/o timeout"), true},
		{"bad request text", errors.New("places: geocode status REQUEST_DENIED"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 409, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
}

func TestTransientError_Chain(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError(inner, 500)

	require.ErrorIs(t, te, inner)
	assert.Equal(t, 500, te.StatusCode)
	assert.Equal(t, "root cause", te.Error())
}
