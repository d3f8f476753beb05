package probes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

// Tool is the logical name of an external diagnostic binary.
type Tool string

const (
	ToolPing       Tool = "ping"
	ToolTraceroute Tool = "traceroute"
	ToolWhois      Tool = "whois"
)

// Tools lists every external tool netkit may invoke.
var Tools = []Tool{ToolPing, ToolTraceroute, ToolWhois}

var (
	// ErrToolUnavailable is returned when a binary is missing from PATH.
	ErrToolUnavailable = errors.New("tool not available")
	// ErrTimeout is returned when a command exceeds its time budget.
	ErrTimeout = errors.New("command timed out")
)

const availabilityTimeout = 2 * time.Second

// AvailabilityProbe reports whether command can be found on PATH.
type AvailabilityProbe func(ctx context.Context, goos, command string) bool

// CommandResolver maps logical tools to platform binaries and remembers
// whether each binary is installed. The verdict is cached for the lifetime
// of the resolver.
type CommandResolver struct {
	goos  string
	probe AvailabilityProbe
	cache *xsync.MapOf[Tool, bool]
}

// NewCommandResolver creates a resolver for the running platform.
func NewCommandResolver() *CommandResolver {
	return NewCommandResolverFor(runtime.GOOS, nil)
}

// NewCommandResolverFor creates a resolver for goos. A nil probe uses
// `where` on Windows and `command -v` elsewhere.
func NewCommandResolverFor(goos string, probe AvailabilityProbe) *CommandResolver {
	if probe == nil {
		probe = probeCommand
	}
	return &CommandResolver{
		goos:  goos,
		probe: probe,
		cache: xsync.NewMapOf[Tool, bool](),
	}
}

// GOOS returns the platform the resolver builds commands for.
func (r *CommandResolver) GOOS() string {
	return r.goos
}

// Command returns the executable name for tool on this platform.
func (r *CommandResolver) Command(tool Tool) string {
	if tool == ToolTraceroute && r.goos == "windows" {
		return "tracert"
	}
	return string(tool)
}

// Available reports whether the binary for tool is installed.
func (r *CommandResolver) Available(ctx context.Context, tool Tool) bool {
	if ok, found := r.cache.Load(tool); found {
		return ok
	}

	ok := r.probe(ctx, r.goos, r.Command(tool))
	actual, _ := r.cache.LoadOrStore(tool, ok)
	util.Debug("Tool %s (%s) available: %v", tool, r.Command(tool), actual)
	return actual
}

// Availability checks every known tool.
func (r *CommandResolver) Availability(ctx context.Context) []model.CommandAvailability {
	out := make([]model.CommandAvailability, 0, len(Tools))
	for _, tool := range Tools {
		out = append(out, model.CommandAvailability{
			ToolName:  string(tool),
			Command:   r.Command(tool),
			Available: r.Available(ctx, tool),
		})
	}
	return out
}

// Reset forgets every cached verdict.
func (r *CommandResolver) Reset() {
	r.cache.Clear()
}

// unavailableError builds the user-facing "not installed" error for tool.
func (r *CommandResolver) unavailableError(tool Tool) error {
	return fmt.Errorf("%w: %s is not installed. %s",
		ErrToolUnavailable, r.Command(tool), InstallHint(tool, r.goos))
}

func probeCommand(ctx context.Context, goos, command string) bool {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if goos == "windows" {
		cmd = exec.CommandContext(ctx, "where", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", `command -v "$1"`, "sh", command)
	}
	return cmd.Run() == nil
}

// InstallHint returns platform-specific install instructions for tool.
func InstallHint(tool Tool, goos string) string {
	switch tool {
	case ToolWhois:
		switch goos {
		case "windows":
			return "Download Sysinternals Whois from https://learn.microsoft.com/sysinternals/downloads/whois and add whois.exe to PATH."
		case "darwin":
			return "whois ships with macOS; reinstall the Command Line Tools with: xcode-select --install"
		default:
			return "Install it with: sudo apt install whois (Debian/Ubuntu), sudo dnf install whois (Fedora/RHEL) or sudo pacman -S whois (Arch)."
		}
	case ToolTraceroute:
		switch goos {
		case "windows":
			return "tracert is part of Windows; check that C:\\Windows\\System32 is on PATH."
		case "darwin":
			return "traceroute ships with macOS; check that /usr/sbin is on PATH."
		default:
			return "Install it with: sudo apt install traceroute (Debian/Ubuntu), sudo dnf install traceroute (Fedora/RHEL) or sudo pacman -S traceroute (Arch)."
		}
	default:
		switch goos {
		case "windows":
			return "ping is part of Windows; check that C:\\Windows\\System32 is on PATH."
		case "darwin":
			return "ping ships with macOS; check that /sbin is on PATH."
		default:
			return "Install it with: sudo apt install iputils-ping (Debian/Ubuntu) or sudo dnf install iputils (Fedora/RHEL)."
		}
	}
}

// CommandSpec describes one invocation of an external tool. Args are passed
// to the binary as-is; nothing is interpreted by a shell.
type CommandSpec struct {
	Tool    Tool
	Args    []string
	Timeout time.Duration
}

// ProcessOutput is the captured result of a command.
type ProcessOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout followed by stderr.
func (o *ProcessOutput) Combined() string {
	if o == nil {
		return ""
	}
	if o.Stderr == "" {
		return o.Stdout
	}
	if o.Stdout == "" {
		return o.Stderr
	}
	return o.Stdout + "\n" + o.Stderr
}

// CommandRunner executes a CommandSpec.
type CommandRunner interface {
	Run(ctx context.Context, spec CommandSpec) (*ProcessOutput, error)
}

// ProcessRunner runs commands as child processes.
type ProcessRunner struct {
	resolver *CommandResolver
}

// NewProcessRunner creates a runner backed by resolver.
func NewProcessRunner(resolver *CommandResolver) *ProcessRunner {
	return &ProcessRunner{resolver: resolver}
}

// Resolver returns the resolver the runner uses.
func (r *ProcessRunner) Resolver() *CommandResolver {
	return r.resolver
}

// Run executes spec. On timeout the process is killed and whatever output
// was captured is returned together with an error wrapping ErrTimeout. A
// non-zero exit status is not an error; callers inspect ExitCode.
func (r *ProcessRunner) Run(ctx context.Context, spec CommandSpec) (*ProcessOutput, error) {
	if !r.resolver.Available(ctx, spec.Tool) {
		return nil, r.resolver.unavailableError(spec.Tool)
	}

	name := r.resolver.Command(spec.Tool)
	runCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, spec.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second

	util.Debug("Running %s %v (timeout %s)", name, spec.Args, spec.Timeout)

	start := time.Now()
	err := cmd.Run()
	out := &ProcessOutput{
		Stdout:   decodeConsole(stdout.Bytes(), r.resolver.goos),
		Stderr:   decodeConsole(stderr.Bytes(), r.resolver.goos),
		Duration: time.Since(start),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		out.ExitCode = -1
		return out, fmt.Errorf("%w: %s did not finish within %s", ErrTimeout, name, spec.Timeout)
	}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil, r.resolver.unavailableError(spec.Tool)
	}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	return out, fmt.Errorf("failed to run %s: %w", name, err)
}
