package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

func withOutput(t *testing.T, format, q string) {
	t.Helper()
	prevCfg, prevQuery := cfg, query
	cfg = util.DefaultConfig()
	cfg.Output = format
	query = q
	t.Cleanup(func() { cfg, query = prevCfg, prevQuery })
}

var subnetResult = model.SubnetResult{
	CIDR:    "10.0.0.0/30",
	Info:    &model.SubnetInfo{NetworkAddress: "10.0.0.0", UsableHosts: 2, TotalHosts: 4, Prefix: 30},
	Success: true,
}

func TestEmitJSON(t *testing.T) {
	withOutput(t, "json", "")
	var buf bytes.Buffer

	require.NoError(t, emit(&buf, subnetResult))
	assert.Contains(t, buf.String(), `"cidr": "10.0.0.0/30"`)
	assert.Contains(t, buf.String(), `"usableHosts": 2`)
}

func TestEmitYAML(t *testing.T) {
	withOutput(t, "yaml", "")
	var buf bytes.Buffer

	require.NoError(t, emit(&buf, subnetResult))
	assert.Contains(t, buf.String(), "cidr: 10.0.0.0/30\n")
	assert.Contains(t, buf.String(), "  usableHosts: 2\n")
}

func TestEmitMarkdown(t *testing.T) {
	withOutput(t, "markdown", "")
	var buf bytes.Buffer

	require.NoError(t, emit(&buf, subnetResult))
	assert.Contains(t, buf.String(), "```json")
}

func TestEmitQuery(t *testing.T) {
	withOutput(t, "text", ".info.usableHosts")
	var buf bytes.Buffer
	require.NoError(t, emit(&buf, subnetResult))
	assert.Equal(t, "2\n", buf.String())

	withOutput(t, "json", ".cidr")
	buf.Reset()
	require.NoError(t, emit(&buf, subnetResult))
	assert.Equal(t, "10.0.0.0/30\n", buf.String())

	withOutput(t, "json", "(.info | length > 0), .success")
	buf.Reset()
	require.NoError(t, emit(&buf, subnetResult))
	assert.Equal(t, "true\ntrue\n", buf.String())
}

func TestEmitInvalidQuery(t *testing.T) {
	withOutput(t, "json", ".[")
	err := emit(&bytes.Buffer{}, subnetResult)
	assert.ErrorContains(t, err, "invalid query")
}

func TestEmitUnsuccessful(t *testing.T) {
	withOutput(t, "json", "")
	var buf bytes.Buffer

	err := emit(&buf, model.SubnetResult{CIDR: "bogus", Error: "invalid CIDR"})
	assert.ErrorIs(t, err, errUnsuccessful)
	assert.Contains(t, buf.String(), `"success": false`)
}

func TestEmitUnknownFormat(t *testing.T) {
	withOutput(t, "xml", "")
	assert.ErrorContains(t, emit(&bytes.Buffer{}, subnetResult), "unknown output format")
}

func TestEmitHistoryList(t *testing.T) {
	withOutput(t, "json", "length")
	var buf bytes.Buffer

	require.NoError(t, emit(&buf, []model.HistoryEntry{{ID: 1}, {ID: 2}}))
	assert.Equal(t, "2\n", buf.String())
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"90m", 90 * time.Minute},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseDuration("soon")
	assert.Error(t, err)
}

func TestSplitHostPort(t *testing.T) {
	host, port, ok := splitHostPort("mail.example.com:993")
	require.True(t, ok)
	assert.Equal(t, "mail.example.com", host)
	assert.Equal(t, 993, port)

	host, port, ok = splitHostPort("[2001:db8::1]:8443")
	require.True(t, ok)
	assert.Equal(t, "2001:db8::1", host)
	assert.Equal(t, 8443, port)

	_, _, ok = splitHostPort("example.com")
	assert.False(t, ok)

	_, _, ok = splitHostPort("example.com:99999")
	assert.False(t, ok)
}
