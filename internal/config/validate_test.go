package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.InSim.Host = " " },
			wantErr: "insim.host",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.InSim.Port = 0 },
			wantErr: "insim.port",
		},
		{
			name:    "unknown model mode",
			mutate:  func(c *Config) { c.Model.Mode = "remote" },
			wantErr: "model.mode",
		},
		{
			name: "whisper without path",
			mutate: func(c *Config) {
				c.Model.Mode = "whisper"
				c.Model.Path = ""
			},
			wantErr: "model.path",
		},
		{
			name: "exec without command",
			mutate: func(c *Config) {
				c.Model.Mode = "exec"
				c.Model.Command = ""
			},
			wantErr: "model.command",
		},
		{
			name:    "zero recording timeout",
			mutate:  func(c *Config) { c.Timeouts.RecordingSecs = 0 },
			wantErr: "recording_secs",
		},
		{
			name:    "zero preview timeout",
			mutate:  func(c *Config) { c.Timeouts.PreviewSecs = 0 },
			wantErr: "preview_secs",
		},
		{
			name:    "button offset collides with id ceiling",
			mutate:  func(c *Config) { c.UI.ButtonIDOffset = 238 },
			wantErr: "button_id_offset",
		},
		{
			name:    "empty bind",
			mutate:  func(c *Config) { c.Binds.Accept = "" },
			wantErr: "binds.accept",
		},
		{
			name: "duplicate binds",
			mutate: func(c *Config) {
				c.Binds.Talk = "stt go"
				c.Binds.Accept = "stt go"
			},
			wantErr: "share the command",
		},
		{
			name:    "zero channels",
			mutate:  func(c *Config) { c.Channels = nil },
			wantErr: "channels",
		},
		{
			name:    "blank channel label",
			mutate:  func(c *Config) { c.Channels = []Channel{{Label: "  ", Prefix: "!l"}} },
			wantErr: "channels[0].label",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateAllowsEmptyChannelPrefix(t *testing.T) {
	cfg := Default()
	cfg.Channels = []Channel{{Label: "^5!local", Prefix: "!l"}, {Label: "^7say", Prefix: ""}}
	_, err := Validate(cfg)
	require.NoError(t, err)
}

func TestValidateWarnsOnShortPreview(t *testing.T) {
	cfg := Default()
	cfg.Timeouts.PreviewSecs = 2
	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "preview_secs")
}
