// Package session coordinates the voice chat lifecycle: binds in, recording,
// off-thread transcription, preview, and chat injection out.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/racetalk/racetalk/internal/audio"
	"github.com/racetalk/racetalk/internal/config"
	"github.com/racetalk/racetalk/internal/fsm"
	"github.com/racetalk/racetalk/internal/insim"
	"github.com/racetalk/racetalk/internal/stt"
	"github.com/racetalk/racetalk/internal/transcript"
	"github.com/racetalk/racetalk/internal/ui"
)

// Capture is the session-facing subset of an active recording.
type Capture interface {
	Device() string
	End() audio.Clip
	Abandon()
}

// BeginCapture opens the microphone; audio.Begin satisfies this.
type BeginCapture func(context.Context) (Capture, error)

// Link is the session-facing subset of the protocol client.
type Link interface {
	SendChat(prefix, text string) error
}

// Renderer receives a view after every transition; ui.Presenter satisfies this.
type Renderer interface {
	Render(ui.View)
}

// Options bundles coordinator dependencies and tuning.
type Options struct {
	Logger     *slog.Logger
	Link       Link
	Renderer   Renderer
	Begin      BeginCapture
	Recognizer stt.Recognizer

	Channels         []config.Channel
	RecordingTimeout time.Duration
	PreviewTimeout   time.Duration
	DebugAudio       bool
	DebugAudioPath   string

	// TickInterval bounds timer latency; zero selects the default 250ms.
	TickInterval time.Duration
}

type result struct {
	res stt.Result
	err error
}

// Coordinator owns all session state. Only the Run goroutine mutates it; the
// transcription worker communicates back through the results channel.
type Coordinator struct {
	logger     *slog.Logger
	link       Link
	renderer   Renderer
	begin      BeginCapture
	recognizer stt.Recognizer
	opts       Options

	now func() time.Time

	state             fsm.State
	inGame            bool
	channelIdx        int
	capture           Capture
	transcriptText    string
	recordingDeadline time.Time
	previewDeadline   time.Time

	results chan result
}

const defaultTickInterval = 250 * time.Millisecond

// New constructs an idle coordinator. Channels must be non-empty; config
// validation guarantees that before this point.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DebugAudioPath == "" {
		opts.DebugAudioPath = audio.DebugWAVPath
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}

	return &Coordinator{
		logger:     logger,
		link:       opts.Link,
		renderer:   opts.Renderer,
		begin:      opts.Begin,
		recognizer: opts.Recognizer,
		opts:       opts,
		now:        time.Now,
		state:      fsm.StateIdle,
		results:    make(chan result, 1),
	}
}

// State returns the current FSM state. Intended for startup logging and
// tests; the loop goroutine is the only writer.
func (c *Coordinator) State() fsm.State {
	return c.state
}

// Run drives the event loop until the context ends or the link is lost.
// Timers are cooperative: deadlines are checked on every tick rather than
// preempting anything.
func (c *Coordinator) Run(ctx context.Context, events <-chan insim.Event) error {
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	c.render()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case ev, ok := <-events:
			if !ok {
				c.shutdown()
				return errors.New("event stream ended unexpectedly")
			}
			if ev.Kind == insim.EventClosed {
				c.shutdown()
				return ev.Err
			}
			c.handleEvent(ctx, ev)
		case res := <-c.results:
			c.handleResult(res)
		case now := <-ticker.C:
			c.checkDeadlines(ctx, now)
		}
	}
}

func (c *Coordinator) handleEvent(ctx context.Context, ev insim.Event) {
	switch ev.Kind {
	case insim.EventGameState:
		c.handleGameState(ev.InGame)
	case insim.EventBind:
		if !c.inGame {
			c.logger.Debug("bind ignored off track", "bind", ev.Bind.String())
			return
		}
		switch ev.Bind {
		case insim.BindTalk:
			c.handleTalk(ctx)
		case insim.BindAccept:
			c.handleAccept()
		case insim.BindNextChannel:
			c.cycleChannel(1)
		case insim.BindPrevChannel:
			c.cycleChannel(-1)
		}
	}
}

func (c *Coordinator) handleTalk(ctx context.Context) {
	if !c.inGame {
		c.logger.Debug("talk ignored off track")
		return
	}

	switch c.state {
	case fsm.StateIdle:
		capture, err := c.begin(ctx)
		if err != nil {
			c.logger.Warn("recording unavailable", "error", err)
			return
		}
		c.capture = capture
		c.transition(fsm.EventTalk)
		c.recordingDeadline = c.now().Add(c.opts.RecordingTimeout)
		c.logger.Info("recording started", "device", capture.Device())
		c.render()
	case fsm.StateRecording:
		c.finishRecording(ctx, fsm.EventTalk)
	default:
		// One session at a time; a talk mid-transcription or mid-preview
		// must not abort the in-flight work.
		c.logger.Debug("talk ignored", "state", string(c.state))
	}
}

// finishRecording closes the capture and hands the clip to the recognizer
// without blocking the loop.
func (c *Coordinator) finishRecording(ctx context.Context, event fsm.Event) {
	clip := c.capture.End()
	c.capture = nil
	c.recordingDeadline = time.Time{}
	c.transition(event)
	c.logger.Info("recording finished", "duration", clip.Duration(), "trigger", string(event))

	if c.opts.DebugAudio {
		if err := audio.DumpWAV(c.opts.DebugAudioPath, clip); err != nil {
			c.logger.Warn("debug audio dump failed", "error", err)
		}
	}

	go func() {
		res, err := c.recognizer.Transcribe(ctx, clip.Samples)
		c.results <- result{res: res, err: err}
	}()

	c.render()
}

func (c *Coordinator) handleResult(r result) {
	if c.state != fsm.StateTranscribing {
		c.logger.Warn("dropping transcription result outside transcribing state", "state", string(c.state))
		return
	}

	text := transcript.Normalize(r.res.Text)
	if r.err != nil || text == "" {
		if r.err != nil {
			c.logger.Warn("transcription failed", "error", r.err)
		} else {
			c.logger.Info("no speech recognized")
		}
		c.transition(fsm.EventFail)
		c.render()
		return
	}

	c.transcriptText = text
	c.transition(fsm.EventTranscribed)
	c.previewDeadline = c.now().Add(c.opts.PreviewTimeout)
	c.logger.Info("transcript ready", "text", text)
	c.render()
}

func (c *Coordinator) handleAccept() {
	if c.state != fsm.StatePreview {
		c.logger.Debug("accept ignored", "state", string(c.state))
		return
	}

	channel := c.opts.Channels[c.channelIdx]
	if err := c.link.SendChat(channel.Prefix, c.transcriptText); err != nil {
		c.logger.Warn("chat send failed", "error", err)
	} else {
		c.logger.Info("chat sent", "prefix", channel.Prefix, "text", c.transcriptText)
	}

	c.clearPreview()
	c.transition(fsm.EventAccept)
	c.render()
}

// cycleChannel moves the selection by delta, wrapping at both ends. It never
// touches in-flight recording or transcription.
func (c *Coordinator) cycleChannel(delta int) {
	n := len(c.opts.Channels)
	c.channelIdx = ((c.channelIdx+delta)%n + n) % n
	c.render()
}

func (c *Coordinator) handleGameState(inGame bool) {
	if c.inGame == inGame {
		return
	}
	c.inGame = inGame
	c.logger.Info("game state changed", "in_game", inGame)

	if !inGame && c.state == fsm.StateRecording {
		// The mic cannot usefully keep rolling through a menu screen.
		c.capture.Abandon()
		c.capture = nil
		c.recordingDeadline = time.Time{}
		c.state = fsm.StateIdle
	}
	c.render()
}

func (c *Coordinator) checkDeadlines(ctx context.Context, now time.Time) {
	switch c.state {
	case fsm.StateRecording:
		if !c.recordingDeadline.IsZero() && !now.Before(c.recordingDeadline) {
			c.finishRecording(ctx, fsm.EventRecordingTimeout)
		}
	case fsm.StatePreview:
		if !c.previewDeadline.IsZero() && !now.Before(c.previewDeadline) {
			c.logger.Info("preview expired, transcript discarded")
			c.clearPreview()
			c.transition(fsm.EventPreviewTimeout)
			c.render()
		}
	}
}

func (c *Coordinator) clearPreview() {
	c.transcriptText = ""
	c.previewDeadline = time.Time{}
}

func (c *Coordinator) transition(event fsm.Event) {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		// Handlers gate every event on state, so this is a programming error.
		c.logger.Error("illegal transition", "state", string(c.state), "event", string(event), "error", err)
		return
	}
	c.state = next
}

func (c *Coordinator) render() {
	c.renderer.Render(ui.View{
		State:        c.state,
		InGame:       c.inGame,
		Transcript:   c.transcriptText,
		ChannelLabel: c.opts.Channels[c.channelIdx].Label,
	})
}

// shutdown releases the microphone if a recording is still open.
func (c *Coordinator) shutdown() {
	if c.capture != nil {
		c.capture.Abandon()
		c.capture = nil
	}
}
