package probes

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	minPort = 1
	maxPort = 65535
)

// ErrInvalidPortSpec is returned for malformed or out-of-range port specs.
var ErrInvalidPortSpec = errors.New("invalid port specification")

// ParsePortSpec expands "80,443", "1-1024" or a mix of both into a sorted,
// duplicate-free port list. A range end above 65535 is truncated; single
// ports and range starts outside 1-65535 are rejected.
func ParsePortSpec(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: no ports given", ErrInvalidPortSpec)
	}

	var ports []int
	expanded := 0
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parsePortToken(part)
		if err != nil {
			return nil, err
		}

		expanded += hi - lo + 1
		if expanded > maxPort {
			return nil, fmt.Errorf("%w: expands to more than %d ports", ErrInvalidPortSpec, maxPort)
		}
		for p := lo; p <= hi; p++ {
			ports = append(ports, p)
		}
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: no ports given", ErrInvalidPortSpec)
	}
	return normalizePorts(ports), nil
}

func parsePortToken(token string) (int, int, error) {
	if dash := strings.Index(token, "-"); dash > 0 {
		lo, err := strconv.Atoi(strings.TrimSpace(token[:dash]))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad range %q", ErrInvalidPortSpec, token)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(token[dash+1:]))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad range %q", ErrInvalidPortSpec, token)
		}
		if lo < minPort || lo > maxPort {
			return 0, 0, fmt.Errorf("%w: port %d out of range %d-%d", ErrInvalidPortSpec, lo, minPort, maxPort)
		}
		if hi > maxPort {
			hi = maxPort
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("%w: range %q ends before it starts", ErrInvalidPortSpec, token)
		}
		return lo, hi, nil
	}

	p, err := strconv.Atoi(token)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad port %q", ErrInvalidPortSpec, token)
	}
	if p < minPort || p > maxPort {
		return 0, 0, fmt.Errorf("%w: port %d out of range %d-%d", ErrInvalidPortSpec, p, minPort, maxPort)
	}
	return p, p, nil
}

// ValidatePorts checks an explicit port list and returns it sorted and
// de-duplicated.
func ValidatePorts(ports []int) ([]int, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: no ports given", ErrInvalidPortSpec)
	}
	if len(ports) > maxPort {
		return nil, fmt.Errorf("%w: more than %d ports", ErrInvalidPortSpec, maxPort)
	}
	for _, p := range ports {
		if p < minPort || p > maxPort {
			return nil, fmt.Errorf("%w: port %d out of range %d-%d", ErrInvalidPortSpec, p, minPort, maxPort)
		}
	}
	return normalizePorts(append([]int(nil), ports...)), nil
}

func normalizePorts(ports []int) []int {
	sort.Ints(ports)
	out := make([]int, 0, len(ports))
	for _, p := range ports {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
