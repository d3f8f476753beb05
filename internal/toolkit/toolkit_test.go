package toolkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/probes"
	"github.com/user/netkit/internal/util"
)

const pingOutput = `PING 192.0.2.1 (192.0.2.1) 56(84) bytes of data.
64 bytes from 192.0.2.1: icmp_seq=1 ttl=64 time=1.10 ms
64 bytes from 192.0.2.1: icmp_seq=2 ttl=64 time=1.30 ms

--- 192.0.2.1 ping statistics ---
2 packets transmitted, 2 received, 0% packet loss, time 1001ms
rtt min/avg/max/mdev = 1.100/1.200/1.300/0.100 ms
`

type stubRunner struct {
	mu    sync.Mutex
	out   *probes.ProcessOutput
	specs []probes.CommandSpec
}

func (s *stubRunner) Run(_ context.Context, spec probes.CommandSpec) (*probes.ProcessOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
	return s.out, nil
}

func newTestToolkit(t *testing.T) (*Toolkit, *stubRunner, *[]Record) {
	t.Helper()
	resolver := probes.NewCommandResolverFor("linux", func(context.Context, string, string) bool { return true })
	tk := New(util.DefaultConfig(), resolver)

	runner := &stubRunner{out: &probes.ProcessOutput{Stdout: pingOutput}}
	tk.SetRunner(runner)

	var records []Record
	tk.SetRecorder(func(r Record) { records = append(records, r) })
	return tk, runner, &records
}

func TestPingUsesConfiguredDefaults(t *testing.T) {
	tk, runner, records := newTestToolkit(t)

	res := tk.Ping(context.Background(), PingParams{Host: " 192.0.2.1 "})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 2, res.Received)
	require.Len(t, runner.specs, 1)
	assert.Equal(t, []string{"-c", "4", "-W", "5", "192.0.2.1"}, runner.specs[0].Args)

	require.Len(t, *records, 1)
	rec := (*records)[0]
	assert.Equal(t, OpPing, rec.Operation)
	assert.Equal(t, "192.0.2.1", rec.Target)
	assert.True(t, rec.Success)
	assert.IsType(t, model.PingResult{}, rec.Result)
}

func TestPingTimeoutUnits(t *testing.T) {
	tk, runner, _ := newTestToolkit(t)
	ctx := context.Background()

	out, err := tk.Dispatch(ctx, "ping", []byte(`{"host":"192.0.2.1","count":2,"timeoutSeconds":2}`))
	require.NoError(t, err)
	assert.True(t, out.(model.PingResult).Success)

	tk.Ping(ctx, PingParams{Host: "192.0.2.1", Count: 2, TimeoutSeconds: 2, TimeoutMs: 7000})

	require.Len(t, runner.specs, 2)
	assert.Equal(t, []string{"-c", "2", "-W", "2", "192.0.2.1"}, runner.specs[0].Args)
	assert.Equal(t, []string{"-c", "2", "-W", "7", "192.0.2.1"}, runner.specs[1].Args)
}

func TestRequiredFieldsShortCircuit(t *testing.T) {
	tk, runner, records := newTestToolkit(t)
	ctx := context.Background()

	assert.Equal(t, "host is required", tk.Ping(ctx, PingParams{}).Error)
	assert.Equal(t, "host is required", tk.Traceroute(ctx, TracerouteParams{Host: "  "}).Error)
	assert.Equal(t, "host is required", tk.ScanPorts(ctx, PortScanParams{}).Error)
	assert.Equal(t, "domain is required", tk.LookupDNS(ctx, DNSParams{}).Error)
	assert.Equal(t, "ip is required", tk.ReverseDNS(ctx, ReverseDNSParams{}).Error)
	assert.Equal(t, "host is required", tk.InspectTLS(ctx, TLSParams{}).Error)
	assert.Equal(t, "domain is required", tk.Whois(ctx, WhoisParams{}).Error)
	assert.Equal(t, "url is required", tk.HTTPHeaders(ctx, HTTPHeadersParams{}).Error)
	assert.Equal(t, "cidr is required", tk.CalculateSubnet(SubnetParams{}).Error)
	assert.Equal(t, "mac is required", tk.WakeOnLAN(ctx, WakeOnLANParams{}).Error)
	assert.Equal(t, "subnet is required", tk.ScanNetwork(ctx, NetworkScanParams{}).Error)

	assert.Empty(t, runner.specs)
	require.Len(t, *records, 11)
	for _, r := range *records {
		assert.False(t, r.Success, r.Operation)
	}
}

func TestInvalidInputsFailWithoutIO(t *testing.T) {
	tk, _, _ := newTestToolkit(t)
	ctx := context.Background()

	res := tk.ScanPorts(ctx, PortScanParams{Host: "192.0.2.1", Ports: PortSpec{Spec: "70000"}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid port specification")
	assert.NotNil(t, res.OpenPorts)

	dns := tk.LookupDNS(ctx, DNSParams{Domain: "example.com", Type: "PTR"})
	assert.Contains(t, dns.Error, "unsupported record type")

	cert := tk.InspectTLS(ctx, TLSParams{Host: "example.com", Port: 70000})
	assert.Equal(t, "port must be between 1 and 65535", cert.Error)

	subnet := tk.CalculateSubnet(SubnetParams{CIDR: "10.0.0.0/33"})
	assert.False(t, subnet.Success)
	assert.Nil(t, subnet.Info)
}

func TestTracerouteHonoursMaxHops(t *testing.T) {
	tk, runner, _ := newTestToolkit(t)
	runner.out = &probes.ProcessOutput{Stdout: " 1  gateway (192.168.1.1)  0.5 ms\n"}

	res := tk.Traceroute(context.Background(), TracerouteParams{Host: "example.com", MaxHops: 12})

	require.True(t, res.Success)
	require.Len(t, runner.specs, 1)
	assert.Equal(t, "12", runner.specs[0].Args[1])
}

func TestCalculateSubnet(t *testing.T) {
	tk, _, records := newTestToolkit(t)

	res := tk.CalculateSubnet(SubnetParams{CIDR: "192.168.1.0/24"})

	require.True(t, res.Success)
	assert.Equal(t, "192.168.1.0/24", res.CIDR)
	assert.Equal(t, int64(254), res.Info.UsableHosts)
	require.Len(t, *records, 1)
	assert.Equal(t, OpSubnet, (*records)[0].Operation)
}

func TestWakeOnLANConfigDefaults(t *testing.T) {
	cfg := util.DefaultConfig()
	cfg.WOLBroadcast = "192.168.1.255"
	cfg.WOLPort = 7
	tk := New(cfg, probes.NewCommandResolverFor("linux", func(context.Context, string, string) bool { return true }))

	res := tk.WakeOnLAN(context.Background(), WakeOnLANParams{MAC: "zz"})

	assert.False(t, res.Success)
	assert.Equal(t, "192.168.1.255", res.Broadcast)
	assert.Equal(t, 7, res.Port)
	assert.Contains(t, res.Error, "invalid MAC address")
}

func TestTools(t *testing.T) {
	tk, _, _ := newTestToolkit(t)

	res := tk.Tools(context.Background())
	assert.True(t, res.Success)
	assert.Len(t, res.Tools, len(probes.Tools))
}

func TestDispatch(t *testing.T) {
	tk, _, _ := newTestToolkit(t)
	ctx := context.Background()

	out, err := tk.Dispatch(ctx, "subnet", []byte(`{"cidr":"10.0.0.0/30"}`))
	require.NoError(t, err)
	subnet, ok := out.(model.SubnetResult)
	require.True(t, ok)
	assert.Equal(t, int64(2), subnet.Info.UsableHosts)

	out, err = tk.Dispatch(ctx, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "host is required", out.(model.PingResult).Error)

	out, err = tk.Dispatch(ctx, "ping", []byte(`{"host":"192.0.2.1","count":2}`))
	require.NoError(t, err)
	assert.True(t, out.(model.PingResult).Success)

	_, err = tk.Dispatch(ctx, "portscan", nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, err = tk.Dispatch(ctx, "ping", []byte(`{"host":`))
	assert.ErrorIs(t, err, ErrBadParams)

	_, err = tk.Dispatch(ctx, "ping", []byte(`{"hostname":"192.0.2.1"}`))
	assert.ErrorIs(t, err, ErrBadParams)

	_, err = tk.Dispatch(ctx, "ping", []byte(`{"count":"four"}`))
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestOperations(t *testing.T) {
	ops := Operations()
	assert.Len(t, ops, 13)
	assert.True(t, sort.SliceIsSorted(ops, func(i, j int) bool { return ops[i] < ops[j] }))
	assert.Contains(t, ops, OpNetworkScan)
	assert.Contains(t, ops, OpTools)
}

type memoryJournal struct {
	entries []*model.HistoryEntry
	err     error
}

func (m *memoryJournal) Save(e *model.HistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestJournalRecorder(t *testing.T) {
	tk, _, _ := newTestToolkit(t)
	journal := &memoryJournal{}
	tk.SetRecorder(JournalRecorder(journal))

	tk.CalculateSubnet(SubnetParams{CIDR: "10.0.0.0/8"})

	require.Len(t, journal.entries, 1)
	e := journal.entries[0]
	assert.Equal(t, "subnet", e.Operation)
	assert.Equal(t, "10.0.0.0/8", e.Target)
	assert.True(t, e.Success)
	assert.False(t, e.CreatedAt.IsZero())

	var payload model.SubnetResult
	require.NoError(t, json.Unmarshal([]byte(e.Payload), &payload))
	assert.Equal(t, "10.255.255.255", payload.Info.BroadcastAddress)
}

func TestJournalRecorderIgnoresSaveFailure(t *testing.T) {
	tk, _, _ := newTestToolkit(t)
	tk.SetRecorder(JournalRecorder(&memoryJournal{err: errors.New("disk full")}))

	res := tk.CalculateSubnet(SubnetParams{CIDR: "10.0.0.0/8"})
	assert.True(t, res.Success)
}

func TestPortSpecJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PortSpec
	}{
		{"spec string", `"22,80,8000-8001"`, PortSpec{Spec: "22,80,8000-8001"}},
		{"list", `[443, 22]`, PortList(443, 22)},
		{"single number", `8080`, PortList(8080)},
		{"empty list", `[]`, PortList()},
		{"null", `null`, PortSpec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PortSpec
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad PortSpec
	assert.Error(t, json.Unmarshal([]byte(`[22,"ssh"]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))

	data, err := json.Marshal(PortList(22, 80))
	require.NoError(t, err)
	assert.JSONEq(t, `[22,80]`, string(data))
}

func TestPortSpecResolve(t *testing.T) {
	ports, err := PortList(443, 22, 443).Resolve()
	require.NoError(t, err)
	assert.Equal(t, []int{22, 443}, ports)

	ports, err = PortSpec{Spec: "80,20-21"}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []int{20, 21, 80}, ports)

	ports, err = PortSpec{}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, probes.TopPorts(), ports)

	_, err = PortList().Resolve()
	assert.ErrorIs(t, err, probes.ErrInvalidPortSpec)

	_, err = PortList(22, 70000).Resolve()
	assert.ErrorIs(t, err, probes.ErrInvalidPortSpec)
}

func TestDispatchPortList(t *testing.T) {
	tk, _, _ := newTestToolkit(t)

	open, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer open.Close()
	go func() {
		for {
			conn, err := open.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	gone, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := gone.Addr().(*net.TCPAddr).Port
	gone.Close()
	openPort := open.Addr().(*net.TCPAddr).Port

	body := fmt.Sprintf(`{"host":"127.0.0.1","ports":[%d,%d,%d],"timeoutMs":2000}`, openPort, closedPort, openPort)
	out, err := tk.Dispatch(context.Background(), "ports", []byte(body))
	require.NoError(t, err)

	res, ok := out.(model.PortScanResult)
	require.True(t, ok)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 2, res.TotalPorts)
	require.Len(t, res.OpenPorts, 1)
	assert.Equal(t, openPort, res.OpenPorts[0].Port)
	assert.Equal(t, []int{closedPort}, res.ClosedPorts)

	out, err = tk.Dispatch(context.Background(), "ports", []byte(`{"host":"127.0.0.1","ports":[0]}`))
	require.NoError(t, err)
	assert.Contains(t, out.(model.PortScanResult).Error, "invalid port specification")
}
