package probes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSubnet(t *testing.T) {
	info, err := CalculateSubnet("192.168.1.0/24")
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.0", info.NetworkAddress)
	assert.Equal(t, "192.168.1.255", info.BroadcastAddress)
	assert.Equal(t, "255.255.255.0", info.SubnetMask)
	assert.Equal(t, "0.0.0.255", info.WildcardMask)
	assert.Equal(t, "192.168.1.1", info.FirstHost)
	assert.Equal(t, "192.168.1.254", info.LastHost)
	assert.Equal(t, int64(256), info.TotalHosts)
	assert.Equal(t, int64(254), info.UsableHosts)
	assert.Equal(t, 24, info.Prefix)
	assert.Equal(t, "C", info.IPClass)
	assert.True(t, info.IsPrivate)
	assert.Equal(t, "11111111.11111111.11111111.00000000", info.BinaryMask)
}

func TestCalculateSubnetNormalizesHostBits(t *testing.T) {
	info, err := CalculateSubnet("10.1.2.3/8")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.0", info.NetworkAddress)
	assert.Equal(t, "10.255.255.255", info.BroadcastAddress)
	assert.Equal(t, "A", info.IPClass)
	assert.Equal(t, int64(16777214), info.UsableHosts)
}

func TestCalculateSubnetSmallPrefixes(t *testing.T) {
	tests := []struct {
		cidr        string
		first, last string
		total       int64
		usable      int64
	}{
		{"10.0.0.0/30", "10.0.0.1", "10.0.0.2", 4, 2},
		{"10.0.0.0/31", "10.0.0.0", "10.0.0.1", 2, 2},
		{"10.0.0.7/32", "10.0.0.7", "10.0.0.7", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			info, err := CalculateSubnet(tt.cidr)
			require.NoError(t, err)
			assert.Equal(t, tt.first, info.FirstHost)
			assert.Equal(t, tt.last, info.LastHost)
			assert.Equal(t, tt.total, info.TotalHosts)
			assert.Equal(t, tt.usable, info.UsableHosts)
		})
	}
}

func TestCalculateSubnetZeroPrefix(t *testing.T) {
	info, err := CalculateSubnet("8.8.8.8/0")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", info.NetworkAddress)
	assert.Equal(t, "255.255.255.255", info.BroadcastAddress)
	assert.Equal(t, "0.0.0.0", info.SubnetMask)
	assert.Equal(t, int64(1)<<32, info.TotalHosts)
	assert.False(t, info.IsPrivate)
}

func TestCalculateSubnetInvalid(t *testing.T) {
	for _, cidr := range []string{
		"",
		"192.168.1.0",
		"192.168.1.0/33",
		"256.1.1.1/24",
		"1.2.3/24",
		"2001:db8::/32",
		"a.b.c.d/24",
	} {
		_, err := CalculateSubnet(cidr)
		assert.ErrorIs(t, err, ErrInvalidCIDR, cidr)
	}
}

func TestIPConversionRoundTrip(t *testing.T) {
	for _, ip := range []string{"0.0.0.0", "10.0.0.1", "172.16.254.3", "255.255.255.255"} {
		v, err := IPToInt(ip)
		require.NoError(t, err)
		assert.Equal(t, ip, IntToIP(v))
	}

	v, err := IPToInt("1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)
}

func TestIPClassAndPrivate(t *testing.T) {
	tests := []struct {
		cidr    string
		class   string
		private bool
	}{
		{"10.0.0.0/8", "A", true},
		{"127.0.0.1/32", "A", true},
		{"172.16.0.0/12", "B", true},
		{"172.32.0.0/16", "B", false},
		{"192.168.0.0/16", "C", true},
		{"8.8.8.8/32", "A", false},
		{"224.0.0.1/32", "D", false},
		{"240.0.0.1/32", "E", false},
	}

	for _, tt := range tests {
		info, err := CalculateSubnet(tt.cidr)
		require.NoError(t, err)
		assert.Equal(t, tt.class, info.IPClass, tt.cidr)
		assert.Equal(t, tt.private, info.IsPrivate, tt.cidr)
	}
}

func TestHostRange(t *testing.T) {
	info, err := CalculateSubnet("192.168.0.0/29")
	require.NoError(t, err)

	hosts := hostRange(info)
	require.Len(t, hosts, 6)
	assert.Equal(t, "192.168.0.1", hosts[0])
	assert.Equal(t, "192.168.0.6", hosts[5])

	info, err = CalculateSubnet("192.168.0.9/32")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.0.9"}, hostRange(info))
}
