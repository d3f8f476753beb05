package probes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	DefaultUserAgent      = "netkit/1.0"
	defaultHeadersTimeout = 10 * time.Second
)

// SecurityHeaders are reported individually, present or not.
var SecurityHeaders = []string{
	"strict-transport-security",
	"content-security-policy",
	"x-frame-options",
	"x-content-type-options",
	"x-xss-protection",
	"referrer-policy",
	"permissions-policy",
}

// HeaderInspector issues a HEAD request and reports the response headers.
type HeaderInspector struct {
	client    *http.Client
	userAgent string
}

// NewHeaderInspector creates an inspector. Redirects are reported, not
// followed.
func NewHeaderInspector(userAgent string, timeout time.Duration) *HeaderInspector {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultHeadersTimeout
	}
	return &HeaderInspector{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: userAgent,
	}
}

// SetTransport replaces the HTTP transport, e.g. to trust a test server.
func (h *HeaderInspector) SetTransport(rt http.RoundTripper) {
	h.client.Transport = rt
}

// NormalizeURL prefixes https:// when rawURL has no scheme.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "https://" + rawURL
}

// Inspect fetches the headers of rawURL.
func (h *HeaderInspector) Inspect(ctx context.Context, rawURL string) model.HTTPHeadersResult {
	target := NormalizeURL(rawURL)
	result := model.HTTPHeadersResult{
		URL:             target,
		Headers:         map[string]string{},
		SecurityHeaders: map[string]*string{},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", h.userAgent)

	start := time.Now()
	resp, err := h.client.Do(req)
	result.Timing.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.StatusMessage = http.StatusText(resp.StatusCode)
	for name, values := range resp.Header {
		result.Headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	for _, name := range SecurityHeaders {
		if v, ok := result.Headers[name]; ok {
			v := v
			result.SecurityHeaders[name] = &v
		} else {
			result.SecurityHeaders[name] = nil
		}
	}
	result.Success = true

	util.Debug("HEAD %s: %d in %dms", target, resp.StatusCode, result.Timing.ResponseTimeMs)
	return result
}
