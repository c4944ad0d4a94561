package observability

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient returns an http.Client instrumented with otelhttp tracing,
// used wherever this module calls out to an embedding or chat-completion
// endpoint so the request shows up as a span in the same trace as the
// ingestion or search request that triggered it.
func NewHTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	base.Transport = otelhttp.NewTransport(rt)
	return base
}

// headerInjectingTransport sets a fixed set of headers on every outgoing
// request that doesn't already set them, then delegates to next.
type headerInjectingTransport struct {
	next    http.RoundTripper
	headers map[string]string
}

func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
	}
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}

// WithHeaders returns base with headers injected onto every request that
// doesn't already set them, for providers that need a fixed extra header
// (e.g. an API gateway key) on every call regardless of per-request
// Authorization handling.
func WithHeaders(base *http.Client, headers map[string]string) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	base.Transport = &headerInjectingTransport{next: base.Transport, headers: headers}
	return base
}
