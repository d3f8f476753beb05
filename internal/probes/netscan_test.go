package probes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkScanFindsAliveHosts(t *testing.T) {
	dialer := &fakeDialer{
		open:    map[string]bool{"10.9.9.5:80": true},
		refused: map[string]bool{"10.9.9.2:80": true},
	}
	resolver := NewDNSResolverWith(&fakeLookuper{addrs: map[string][]string{
		"10.9.9.5": {"web.lan."},
	}}, nil)
	scanner := NewNetworkScanner(NewTCPProbeWithDialer(dialer), resolver)

	result := scanner.Scan(context.Background(), "10.9.9.0/29", 30*time.Millisecond)

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 6, result.ScannedCount)
	assert.EqualValues(t, 6, dialer.calls.Load())
	require.NotNil(t, result.SubnetInfo)
	assert.Equal(t, "10.9.9.0", result.SubnetInfo.NetworkAddress)

	require.Len(t, result.Hosts, 2)
	assert.Equal(t, "10.9.9.2", result.Hosts[0].IP)
	assert.Empty(t, result.Hosts[0].Hostname)
	assert.Equal(t, "10.9.9.5", result.Hosts[1].IP)
	assert.Equal(t, "web.lan", result.Hosts[1].Hostname)
}

func TestNetworkScanRejectsLargeSubnets(t *testing.T) {
	dialer := &fakeDialer{}
	scanner := NewNetworkScanner(NewTCPProbeWithDialer(dialer), nil)

	result := scanner.Scan(context.Background(), "10.0.0.0/21", time.Second)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "limited to 1024 hosts")
	require.NotNil(t, result.SubnetInfo)
	assert.EqualValues(t, 2048, result.SubnetInfo.TotalHosts)
	assert.Zero(t, dialer.calls.Load())
	assert.Empty(t, result.Hosts)
}

func TestNetworkScanAcceptsLimit(t *testing.T) {
	scanner := NewNetworkScanner(NewTCPProbeWithDialer(&fakeDialer{refused: map[string]bool{}}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := scanner.Scan(ctx, "10.0.0.0/22", time.Millisecond)

	assert.True(t, result.Success)
	assert.Equal(t, 1022, result.ScannedCount)
}

func TestNetworkScanInvalidSubnet(t *testing.T) {
	result := NewNetworkScanner(nil, nil).Scan(context.Background(), "10.0.0.0/40", time.Second)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid CIDR")
	assert.Nil(t, result.SubnetInfo)
}

func TestNetworkScanSingleHost(t *testing.T) {
	dialer := &fakeDialer{open: map[string]bool{"192.168.7.7:80": true}}
	result := NewNetworkScanner(NewTCPProbeWithDialer(dialer), nil).Scan(context.Background(), "192.168.7.7/32", time.Second)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.ScannedCount)
	require.Len(t, result.Hosts, 1)
	assert.Equal(t, "192.168.7.7", result.Hosts[0].IP)
}
