package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/netkit/internal/model"
)

func TestRenderSubnet(t *testing.T) {
	out := Render(model.SubnetResult{
		CIDR: "192.168.1.0/24",
		Info: &model.SubnetInfo{
			NetworkAddress:   "192.168.1.0",
			BroadcastAddress: "192.168.1.255",
			SubnetMask:       "255.255.255.0",
			FirstHost:        "192.168.1.1",
			LastHost:         "192.168.1.254",
			TotalHosts:       256,
			UsableHosts:      254,
			Prefix:           24,
			IPClass:          "C",
			IsPrivate:        true,
		},
		Success: true,
	})

	assert.Contains(t, out, "Subnet")
	assert.Contains(t, out, "192.168.1.255")
	assert.Contains(t, out, "254 of 256")
	assert.NotContains(t, out, "✗")
}

func TestRenderFailure(t *testing.T) {
	out := Render(model.PingResult{Host: "nowhere.invalid", Sent: 4, Lost: 4, LossPercent: 100, Error: "no replies"})

	assert.Contains(t, out, "✗ no replies")
	assert.Contains(t, out, "100%")
	assert.NotContains(t, out, "RTT")
}

func TestRenderPortScanAndTools(t *testing.T) {
	out := Render(model.PortScanResult{
		Host:       "10.0.0.1",
		TotalPorts: 2,
		OpenPorts:  []model.OpenPort{{Port: 22, Service: "SSH"}},
		Success:    true,
	})
	assert.Contains(t, out, "22/tcp")
	assert.Contains(t, out, "SSH")

	out = Render(model.ToolsResult{Tools: []model.CommandAvailability{
		{ToolName: "whois", Command: "whois", Available: false},
	}, Success: true})
	assert.Contains(t, out, "whois (whois) not found")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, Render([]model.HistoryEntry{}), "No results recorded yet")

	out := Render([]model.HistoryEntry{
		{ID: 7, Operation: "ping", Target: "8.8.8.8", Success: true, DurationMs: 3000, CreatedAt: time.Now()},
	})
	assert.Contains(t, out, "8.8.8.8")
	assert.Contains(t, out, "ping")
}

func TestRenderFallsBackToJSON(t *testing.T) {
	out := Render(map[string]int{"answer": 42})
	assert.Contains(t, out, `"answer": 42`)
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, 10, strings.Count(RenderBar(50, 100, 10), "█")+strings.Count(RenderBar(50, 100, 10), "░"))
	assert.Equal(t, 5, strings.Count(RenderBar(50, 100, 10), "█"))
	assert.Equal(t, 10, strings.Count(RenderBar(500, 100, 10), "█"))
	assert.Equal(t, 0, strings.Count(RenderBar(-5, 100, 10), "█"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}

func TestSpinnerModel(t *testing.T) {
	cancelled := false
	done := make(chan struct{})
	m := newModel("Pinging", done, func() { cancelled = true })

	assert.Contains(t, m.View(), "Pinging")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(spinnerModel)
	assert.True(t, cancelled)
	assert.Contains(t, m.View(), "Cancelling...")

	next, cmd := m.Update(doneMsg{})
	m = next.(spinnerModel)
	require.NotNil(t, cmd)
	assert.True(t, m.finished)
	assert.Empty(t, m.View())
}

func TestWaitFor(t *testing.T) {
	done := make(chan struct{})
	close(done)
	assert.Equal(t, doneMsg{}, waitFor(done)())
}
