// Package cli parses process arguments into a command plus options.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandRun}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			command := Command(arg)
			if _, ok := validCommands[command]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}
			parsed.Command = command
			if command == CommandHelp {
				parsed.ShowHelp = true
			}
		}
	}

	return parsed, nil
}

func HelpText(program string) string {
	return fmt.Sprintf(`%[1]s - voice chat for the simulator via InSim

Usage:
  %[1]s [command] [flags]

Commands:
  run       connect and serve voice chat sessions (default)
  doctor    check config, model, audio, and host readiness
  version   print build information
  help      show this help

Flags:
  --config <path>   config file (default racetalk.yaml)
  --version         print build information
  -h, --help        show this help
`, program)
}
