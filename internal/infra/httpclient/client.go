// Package httpclient builds the shared outbound client used by provider adapters.
package httpclient

import (
	"net"
	"net/http"

	"github.com/arix/server/internal/infra/config"
	"github.com/arix/server/internal/utils/requestctx"
)

// RequestIDHeader is forwarded to providers so their logs can be joined with ours.
const RequestIDHeader = "X-Request-ID"

// New creates the pooled client shared by the Gemini, Clipdrop and Clerk adapters.
// Per-call deadlines come from the resilience guard, so ResponseTimeout is
// normally left at zero.
func New(cfg config.HTTPClientConfig) *http.Client {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &tagging{next: base, userAgent: cfg.UserAgent},
		Timeout:   cfg.ResponseTimeout,
	}
}

// tagging stamps outgoing requests with the user agent and request ID.
type tagging struct {
	next      http.RoundTripper
	userAgent string
}

func (t *tagging) RoundTrip(req *http.Request) (*http.Response, error) {
	id := requestctx.RequestID(req.Context())
	if t.userAgent == "" && id == "" {
		return t.next.RoundTrip(req)
	}

	// RoundTrip must not mutate the caller's request.
	out := req.Clone(req.Context())
	if t.userAgent != "" && out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", t.userAgent)
	}
	if id != "" && out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, id)
	}
	return t.next.RoundTrip(out)
}
