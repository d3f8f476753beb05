package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Operation names an entry point of the toolkit.
type Operation string

const (
	OpPing        Operation = "ping"
	OpTraceroute  Operation = "trace"
	OpPortScan    Operation = "ports"
	OpDNS         Operation = "dns"
	OpReverseDNS  Operation = "rdns"
	OpTLS         Operation = "cert"
	OpWhois       Operation = "whois"
	OpHeaders     Operation = "headers"
	OpSubnet      Operation = "subnet"
	OpWakeOnLAN   Operation = "wol"
	OpNetworkScan Operation = "discover"
	OpInterfaces  Operation = "ifaces"
	OpTools       Operation = "tools"
)

var (
	// ErrUnknownOperation is returned by Dispatch for unrecognised names.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrBadParams is returned by Dispatch when params cannot be decoded.
	ErrBadParams = errors.New("invalid parameters")
)

type handler func(ctx context.Context, t *Toolkit, raw []byte) (interface{}, error)

// bind decodes raw into P and invokes fn. An empty body is an empty P.
func bind[P any, R any](fn func(*Toolkit, context.Context, P) R) handler {
	return func(ctx context.Context, t *Toolkit, raw []byte) (interface{}, error) {
		var p P
		if len(bytes.TrimSpace(raw)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&p); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadParams, err)
			}
		}
		return fn(t, ctx, p), nil
	}
}

var handlers = map[Operation]handler{
	OpPing:        bind((*Toolkit).Ping),
	OpTraceroute:  bind((*Toolkit).Traceroute),
	OpPortScan:    bind((*Toolkit).ScanPorts),
	OpDNS:         bind((*Toolkit).LookupDNS),
	OpReverseDNS:  bind((*Toolkit).ReverseDNS),
	OpTLS:         bind((*Toolkit).InspectTLS),
	OpWhois:       bind((*Toolkit).Whois),
	OpHeaders:     bind((*Toolkit).HTTPHeaders),
	OpWakeOnLAN:   bind((*Toolkit).WakeOnLAN),
	OpNetworkScan: bind((*Toolkit).ScanNetwork),
	OpSubnet: bind(func(t *Toolkit, _ context.Context, p SubnetParams) interface{} {
		return t.CalculateSubnet(p)
	}),
	OpInterfaces: func(_ context.Context, t *Toolkit, _ []byte) (interface{}, error) {
		return t.Interfaces(), nil
	},
	OpTools: func(ctx context.Context, t *Toolkit, _ []byte) (interface{}, error) {
		return t.Tools(ctx), nil
	},
}

// Operations returns every operation name in sorted order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(handlers))
	for op := range handlers {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Dispatch decodes raw JSON params for op and runs it. Probe failures are
// reported inside the result; an error means the request itself was bad.
func (t *Toolkit) Dispatch(ctx context.Context, op string, raw []byte) (interface{}, error) {
	h, ok := handlers[Operation(op)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return h(ctx, t, raw)
}
