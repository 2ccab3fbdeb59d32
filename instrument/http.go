package instrument

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	httpMu       sync.Mutex
	httpOriginal http.RoundTripper
	httpActive   bool
)

// HTTPClient wraps http.DefaultTransport with OTel instrumentation so every
// outgoing request creates a client span and propagates trace context.
// excludedURLs is a comma-delimited list of regex patterns; matching URLs
// bypass instrumentation. Calling it again while active is a no-op.
func HTTPClient(excludedURLs string) error {
	httpMu.Lock()
	defer httpMu.Unlock()

	if httpActive {
		return nil
	}

	patterns, err := compileExclusions(excludedURLs)
	if err != nil {
		return err
	}

	base := http.DefaultTransport
	instrumented := otelhttp.NewTransport(base)
	if len(patterns) > 0 {
		http.DefaultTransport = &excludingTransport{
			instrumented: instrumented,
			base:         base,
			patterns:     patterns,
		}
	} else {
		http.DefaultTransport = instrumented
	}

	httpOriginal = base
	httpActive = true
	return nil
}

// UninstrumentHTTPClient restores the transport that was in place before
// HTTPClient was called. No-op when not instrumented.
func UninstrumentHTTPClient() {
	httpMu.Lock()
	defer httpMu.Unlock()

	if !httpActive {
		return
	}
	http.DefaultTransport = httpOriginal
	httpOriginal = nil
	httpActive = false
}

// excludingTransport routes excluded URLs around the instrumented transport.
type excludingTransport struct {
	instrumented http.RoundTripper
	base         http.RoundTripper
	patterns     []*regexp.Regexp
}

func (t *excludingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	for _, pattern := range t.patterns {
		if pattern.MatchString(url) {
			return t.base.RoundTrip(req)
		}
	}
	return t.instrumented.RoundTrip(req)
}

func compileExclusions(excludedURLs string) ([]*regexp.Regexp, error) {
	if strings.TrimSpace(excludedURLs) == "" {
		return nil, nil
	}

	parts := strings.Split(excludedURLs, ",")
	patterns := make([]*regexp.Regexp, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pattern, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid excluded URL pattern %q: %w", part, err)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}
