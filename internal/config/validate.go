package config

import (
	"fmt"
	"strings"
)

// Button ids live in a byte-sized namespace shared with every other InSim
// consumer; the simulator rejects ids at or above 240.
const maxButtonID = 239

// roleCount is the number of button ids racetalk claims above its offset.
const roleCount = 3

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.InSim.Host) == "" {
		return nil, fmt.Errorf("insim.host must not be empty")
	}
	if cfg.InSim.Port < 1 || cfg.InSim.Port > 65535 {
		return nil, fmt.Errorf("insim.port must be in 1..65535, got %d", cfg.InSim.Port)
	}
	if strings.TrimSpace(cfg.InSim.IName) == "" {
		return nil, fmt.Errorf("insim.iname must not be empty")
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Model.Mode))
	switch mode {
	case "whisper":
		if strings.TrimSpace(cfg.Model.Path) == "" {
			return nil, fmt.Errorf("model.path must not be empty when model.mode=whisper")
		}
	case "exec":
		if strings.TrimSpace(cfg.Model.Command) == "" {
			return nil, fmt.Errorf("model.command must not be empty when model.mode=exec")
		}
	case "mock":
	default:
		return nil, fmt.Errorf("model.mode must be one of: whisper, exec, mock")
	}

	if cfg.Timeouts.RecordingSecs <= 0 {
		return nil, fmt.Errorf("timeouts.recording_secs must be > 0")
	}
	if cfg.Timeouts.PreviewSecs <= 0 {
		return nil, fmt.Errorf("timeouts.preview_secs must be > 0")
	}

	if cfg.UI.Scale <= 0 {
		return nil, fmt.Errorf("ui.scale must be > 0")
	}
	if cfg.UI.Left < 0 || cfg.UI.Left > 200 {
		return nil, fmt.Errorf("ui.left must be in 0..200")
	}
	if cfg.UI.Top < 0 || cfg.UI.Top > 200 {
		return nil, fmt.Errorf("ui.top must be in 0..200")
	}
	if cfg.UI.ButtonIDOffset < 0 || cfg.UI.ButtonIDOffset+roleCount-1 > maxButtonID {
		return nil, fmt.Errorf("ui.button_id_offset must leave %d ids below %d", roleCount, maxButtonID+1)
	}

	binds := map[string]string{
		"binds.talk":         cfg.Binds.Talk,
		"binds.accept":       cfg.Binds.Accept,
		"binds.next_channel": cfg.Binds.NextChannel,
		"binds.prev_channel": cfg.Binds.PrevChannel,
	}
	seen := make(map[string]string, len(binds))
	for name, command := range binds {
		trimmed := strings.TrimSpace(command)
		if trimmed == "" {
			return nil, fmt.Errorf("%s must not be empty", name)
		}
		if other, dup := seen[trimmed]; dup {
			return nil, fmt.Errorf("%s and %s share the command %q", other, name, trimmed)
		}
		seen[trimmed] = name
	}

	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("channels must list at least one entry")
	}
	for i, ch := range cfg.Channels {
		if strings.TrimSpace(ch.Label) == "" {
			return nil, fmt.Errorf("channels[%d].label must not be empty", i)
		}
	}

	if cfg.Timeouts.PreviewSecs < 5 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("timeouts.preview_secs=%d leaves little time to read the preview", cfg.Timeouts.PreviewSecs),
		})
	}

	return warnings, nil
}
