// Package config resolves, parses, validates, and defaults racetalk configuration.
package config

// Config is the fully materialized runtime configuration used by racetalk.
type Config struct {
	InSim      InSimConfig   `yaml:"insim"`
	Model      ModelConfig   `yaml:"model"`
	Timeouts   TimeoutConfig `yaml:"timeouts"`
	UI         UIConfig      `yaml:"ui"`
	Binds      BindConfig    `yaml:"binds"`
	Channels   []Channel     `yaml:"channels"`
	DebugAudio bool          `yaml:"debug_audio"`
	LogLevel   string        `yaml:"log_level"`
}

// InSimConfig controls the connection to the simulator host.
type InSimConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Admin string `yaml:"admin"`
	IName string `yaml:"iname"`
}

// ModelConfig controls speech-recognition backend selection.
type ModelConfig struct {
	Mode     string `yaml:"mode"` // whisper, exec, mock
	Path     string `yaml:"path"`
	UseGPU   bool   `yaml:"use_gpu"`
	Language string `yaml:"language"`
	Command  string `yaml:"command"`
}

// TimeoutConfig holds the session deadline budgets in seconds.
type TimeoutConfig struct {
	RecordingSecs int `yaml:"recording_secs"`
	PreviewSecs   int `yaml:"preview_secs"`
}

// UIConfig controls in-game button layout and the claimed id range.
type UIConfig struct {
	Scale          int `yaml:"scale"`
	Left           int `yaml:"left"`
	Top            int `yaml:"top"`
	ButtonIDOffset int `yaml:"button_id_offset"`
}

// BindConfig maps in-game bind command strings to session events.
type BindConfig struct {
	Talk        string `yaml:"talk"`
	Accept      string `yaml:"accept"`
	NextChannel string `yaml:"next_channel"`
	PrevChannel string `yaml:"prev_channel"`
}

// Channel routes an accepted transcript into chat with a fixed prefix.
type Channel struct {
	Label  string `yaml:"label"`
	Prefix string `yaml:"prefix"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}
