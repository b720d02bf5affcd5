// Package doctor runs runtime readiness diagnostics for config, the speech
// model, audio input, and the InSim endpoint.
package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/racetalk/racetalk/internal/audio"
	"github.com/racetalk/racetalk/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})
	for _, warning := range cfg.Warnings {
		checks = append(checks, Check{
			Name:    "config",
			Pass:    true,
			Message: warning.Message,
		})
	}

	checks = append(checks, checkModel(cfg.Config.Model))
	checks = append(checks, checkAudioInput(ctx))
	checks = append(checks, checkInSimEndpoint(cfg.Config.InSim))

	return Report{Checks: checks}
}

// checkModel validates the recognizer is runnable before the first session.
func checkModel(cfg config.ModelConfig) Check {
	switch cfg.Mode {
	case "whisper":
		info, err := os.Stat(cfg.Path)
		if err != nil {
			return Check{Name: "model", Pass: false, Message: fmt.Sprintf("model file not found: %s", cfg.Path)}
		}
		if info.IsDir() {
			return Check{Name: "model", Pass: false, Message: fmt.Sprintf("model path is a directory: %s", cfg.Path)}
		}
		return Check{Name: "model", Pass: true, Message: fmt.Sprintf("%s (%d MiB)", cfg.Path, info.Size()>>20)}
	case "exec":
		argv, err := shellwords.Parse(cfg.Command)
		if err != nil || len(argv) == 0 {
			return Check{Name: "model", Pass: false, Message: fmt.Sprintf("unparseable command: %q", cfg.Command)}
		}
		path, err := exec.LookPath(argv[0])
		if err != nil {
			return Check{Name: "model", Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", argv[0])}
		}
		return Check{Name: "model", Pass: true, Message: fmt.Sprintf("command found at %s", path)}
	case "mock":
		return Check{Name: "model", Pass: true, Message: "mock recognizer, nothing to check"}
	default:
		return Check{Name: "model", Pass: false, Message: fmt.Sprintf("unknown mode %q", cfg.Mode)}
	}
}

// checkAudioInput lists Pulse sources to surface mute/availability issues.
func checkAudioInput(ctx context.Context) Check {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		return Check{Name: "audio.input", Pass: false, Message: err.Error()}
	}
	if len(devices) == 0 {
		return Check{Name: "audio.input", Pass: false, Message: "no input sources"}
	}

	for _, device := range devices {
		if !device.Default {
			continue
		}
		message := fmt.Sprintf("default source %q", device.ID)
		if !device.Available {
			return Check{Name: "audio.input", Pass: false, Message: message + " is unavailable"}
		}
		if device.Muted {
			message = message + " (muted)"
		}
		return Check{Name: "audio.input", Pass: true, Message: message}
	}
	return Check{Name: "audio.input", Pass: true, Message: fmt.Sprintf("%d sources, no default marked", len(devices))}
}

// checkInSimEndpoint probes the configured host with a plain TCP dial. The
// sim only accepts the link once InSim is initialised in-game, so a refused
// connection is reported but does not fail the whole doctor run.
func checkInSimEndpoint(cfg config.InSimConfig) Check {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return Check{Name: "insim", Pass: true, Message: fmt.Sprintf("%s not reachable yet (start the sim and run /insim %d)", addr, cfg.Port)}
	}
	conn.Close()
	return Check{Name: "insim", Pass: true, Message: fmt.Sprintf("listening at %s", addr)}
}
