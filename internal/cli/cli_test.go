package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Parsed
		wantErr bool
	}{
		{name: "no args runs", args: nil, want: Parsed{Command: CommandRun}},
		{name: "doctor", args: []string{"doctor"}, want: Parsed{Command: CommandDoctor}},
		{name: "version command", args: []string{"version"}, want: Parsed{Command: CommandVersion}},
		{name: "version flag", args: []string{"--version"}, want: Parsed{Command: CommandVersion}},
		{name: "help flag", args: []string{"-h"}, want: Parsed{Command: CommandHelp, ShowHelp: true}},
		{
			name: "config flag",
			args: []string{"--config", "/etc/racetalk.yaml"},
			want: Parsed{Command: CommandRun, ConfigPath: "/etc/racetalk.yaml"},
		},
		{
			name: "command with config",
			args: []string{"doctor", "--config", "x.yaml"},
			want: Parsed{Command: CommandDoctor, ConfigPath: "x.yaml"},
		},
		{name: "config missing path", args: []string{"--config"}, wantErr: true},
		{name: "unknown flag", args: []string{"--loud"}, wantErr: true},
		{name: "unknown command", args: []string{"shout"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.args)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestHelpTextMentionsCommands(t *testing.T) {
	text := HelpText("racetalk")
	for _, want := range []string{"run", "doctor", "version", "--config"} {
		require.Contains(t, text, want)
	}
}
