package probes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", NormalizeURL("example.com"))
	assert.Equal(t, "https://example.com/path?q=1", NormalizeURL(" example.com/path?q=1 "))
	assert.Equal(t, "http://example.com", NormalizeURL("http://example.com"))
	assert.Equal(t, "", NormalizeURL("  "))
}

func TestHeaderInspect(t *testing.T) {
	var gotMethod, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotUA = r.Method, r.UserAgent()
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := NewHeaderInspector("", 5*time.Second).Inspect(context.Background(), srv.URL)

	require.True(t, result.Success, result.Error)
	assert.Equal(t, http.MethodHead, gotMethod)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, srv.URL, result.URL)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, "OK", result.StatusMessage)
	assert.Equal(t, "a, b", result.Headers["x-multi"])

	require.Len(t, result.SecurityHeaders, len(SecurityHeaders))
	require.NotNil(t, result.SecurityHeaders["strict-transport-security"])
	assert.Equal(t, "max-age=63072000", *result.SecurityHeaders["strict-transport-security"])
	assert.Equal(t, "DENY", *result.SecurityHeaders["x-frame-options"])

	csp, present := result.SecurityHeaders["content-security-policy"]
	assert.True(t, present)
	assert.Nil(t, csp)
}

func TestHeaderInspectDoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moved" {
			t.Error("redirect was followed")
		}
		http.Redirect(w, r, "/moved", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	result := NewHeaderInspector("probe/2", time.Second).Inspect(context.Background(), srv.URL)

	require.True(t, result.Success, result.Error)
	assert.Equal(t, http.StatusMovedPermanently, result.StatusCode)
	assert.Equal(t, "Moved Permanently", result.StatusMessage)
	assert.Equal(t, "/moved", result.Headers["location"])
}

func TestHeaderInspectTLSWithTransport(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
	}))
	defer srv.Close()

	inspector := NewHeaderInspector("", time.Second)
	inspector.SetTransport(srv.Client().Transport)

	result := inspector.Inspect(context.Background(), srv.URL)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "default-src 'self'", *result.SecurityHeaders["content-security-policy"])
}

func TestHeaderInspectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := NewHeaderInspector("", time.Second).Inspect(context.Background(), url)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}
