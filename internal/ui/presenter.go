package ui

import (
	"log/slog"

	"github.com/racetalk/racetalk/internal/config"
	"github.com/racetalk/racetalk/internal/insim"
)

// Link is the subset of the protocol client the presenter drives.
type Link interface {
	SendButton(insim.Btn) error
	DeleteButton(clickID byte) error
}

// Presenter pushes frames to the link, sending only what changed since the
// previous frame so identical frames are wire-level no-ops.
type Presenter struct {
	link   Link
	layout config.UIConfig
	logger *slog.Logger

	shown map[byte]Button
}

func NewPresenter(link Link, layout config.UIConfig, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		link:   link,
		layout: layout,
		logger: logger,
		shown:  make(map[byte]Button),
	}
}

// Render derives and applies the frame for a view in one step.
func (p *Presenter) Render(view View) {
	p.Apply(Render(view, p.layout))
}

// Apply reconciles the on-screen buttons with frame. Send failures are
// logged, not returned: a stale button is recoverable, and real link loss
// surfaces through the event stream anyway.
func (p *Presenter) Apply(frame Frame) {
	next := make(map[byte]Button, len(frame.Buttons))
	for _, btn := range frame.Buttons {
		next[btn.ID] = btn

		if shown, ok := p.shown[btn.ID]; ok && shown == btn {
			continue
		}
		if err := p.link.SendButton(insim.Btn{
			ReqI:    1,
			ClickID: btn.ID,
			BStyle:  btn.Style,
			L:       btn.L,
			T:       btn.T,
			W:       btn.W,
			H:       btn.H,
			Text:    btn.Text,
		}); err != nil {
			p.logger.Warn("send button failed", "id", btn.ID, "error", err)
			continue
		}
		p.shown[btn.ID] = btn
	}

	for id := range p.shown {
		if _, keep := next[id]; keep {
			continue
		}
		if err := p.link.DeleteButton(id); err != nil {
			p.logger.Warn("delete button failed", "id", id, "error", err)
			continue
		}
		delete(p.shown, id)
	}
}
