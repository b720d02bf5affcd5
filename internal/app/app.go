// Package app wires the CLI, config, recognizer, protocol link, and session
// loop into one process.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/racetalk/racetalk/internal/audio"
	"github.com/racetalk/racetalk/internal/cli"
	"github.com/racetalk/racetalk/internal/config"
	"github.com/racetalk/racetalk/internal/doctor"
	"github.com/racetalk/racetalk/internal/insim"
	"github.com/racetalk/racetalk/internal/logging"
	"github.com/racetalk/racetalk/internal/session"
	"github.com/racetalk/racetalk/internal/stt"
	"github.com/racetalk/racetalk/internal/ui"
	"github.com/racetalk/racetalk/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("racetalk"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("racetalk"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
	}

	logger := r.Logger
	if logger == nil {
		logger, err = logging.New(r.Stderr, cfgLoaded.Config.LogLevel)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
			return 1
		}
	}

	logger.Info("command start", "command", string(parsed.Command), "config", cfgLoaded.Path)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandRun holds the link and loops sessions until shutdown or link loss.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	// Fail before the loop starts if there is no microphone at all; a device
	// vanishing later only aborts that one recording.
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("audio probe failed", "error", err.Error())
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintf(r.Stderr, "error: %v\n", audio.ErrNoDevice)
		logger.Error("audio probe failed", "error", audio.ErrNoDevice.Error())
		return 1
	}

	recognizer, err := stt.New(cfg.Model)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("recognizer startup failed", "error", err.Error())
		return 1
	}
	defer func() { _ = recognizer.Close() }()

	client, err := insim.Connect(ctx, insim.Options{
		Host:  cfg.InSim.Host,
		Port:  cfg.InSim.Port,
		Admin: cfg.InSim.Admin,
		IName: cfg.InSim.IName,
		Binds: insim.Binds{
			Talk:        cfg.Binds.Talk,
			Accept:      cfg.Binds.Accept,
			NextChannel: cfg.Binds.NextChannel,
			PrevChannel: cfg.Binds.PrevChannel,
		},
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("insim connect failed", "error", err.Error())
		return 1
	}
	defer func() { _ = client.Close() }()

	presenter := ui.NewPresenter(client, cfg.UI, logger)

	coordinator := session.New(session.Options{
		Logger:   logger,
		Link:     client,
		Renderer: presenter,
		Begin: func(ctx context.Context) (session.Capture, error) {
			return audio.Begin(ctx)
		},
		Recognizer:       recognizer,
		Channels:         cfg.Channels,
		RecordingTimeout: time.Duration(cfg.Timeouts.RecordingSecs) * time.Second,
		PreviewTimeout:   time.Duration(cfg.Timeouts.PreviewSecs) * time.Second,
		DebugAudio:       cfg.DebugAudio,
	})

	if err := coordinator.Run(ctx, client.Events()); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("session loop failed", "error", err.Error())
		return 1
	}

	// Best effort: leave the screen clean before dropping the link.
	if err := client.ClearButtons(); err != nil {
		logger.Debug("clear buttons on shutdown failed", "error", err.Error())
	}

	logger.Info("shutdown complete")
	return 0
}
