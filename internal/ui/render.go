// Package ui turns session state into in-game button frames and keeps the
// on-screen set in sync with the latest frame.
package ui

import (
	"github.com/racetalk/racetalk/internal/config"
	"github.com/racetalk/racetalk/internal/fsm"
	"github.com/racetalk/racetalk/internal/insim"
)

// Logical button roles; final ids are role + configured offset so several
// InSim programs can share the id space.
const (
	roleState = iota
	roleChannel
	rolePreview
)

// View is the render input derived from session state.
type View struct {
	State        fsm.State
	InGame       bool
	Transcript   string
	ChannelLabel string
}

// Button is one positioned, styled on-screen button.
type Button struct {
	ID    byte
	L, T  byte
	W, H  byte
	Style byte
	Text  string
}

// Frame is the complete set of buttons that should be visible right now.
type Frame struct {
	Buttons []Button
}

// Render derives the button frame for a view. It is pure: identical input
// yields an identical frame, so re-applying one causes no visible change.
func Render(view View, layout config.UIConfig) Frame {
	if !view.InGame {
		return Frame{}
	}

	scale := byte(layout.Scale)
	left := byte(layout.Left)
	top := byte(layout.Top)
	offset := byte(layout.ButtonIDOffset)

	buttons := []Button{{
		ID:    offset + roleState,
		L:     left,
		T:     top,
		W:     scale,
		H:     scale,
		Style: insim.StyleLight,
		Text:  stateDot(view.State),
	}}

	channelLeft := left + scale
	channelWidth := textWidth(view.ChannelLabel, layout)
	buttons = append(buttons, Button{
		ID:    offset + roleChannel,
		L:     channelLeft,
		T:     top,
		W:     channelWidth,
		H:     scale,
		Style: insim.StyleLight,
		Text:  view.ChannelLabel,
	})

	if view.State == fsm.StatePreview {
		buttons = append(buttons, Button{
			ID:    offset + rolePreview,
			L:     channelLeft + channelWidth,
			T:     top,
			W:     textWidth(view.Transcript, layout),
			H:     scale,
			Style: insim.StyleLight | insim.StyleLeft,
			Text:  "^3" + view.Transcript,
		})
	}

	return Frame{Buttons: buttons}
}

// stateDot is the recording indicator: green idle, red recording, yellow busy.
func stateDot(state fsm.State) string {
	switch state {
	case fsm.StateRecording:
		return "^1•"
	case fsm.StateTranscribing:
		return "^3•"
	default:
		return "^2•"
	}
}

// textWidth estimates button width from text length; the exact value depends
// on glyphs, so this errs wide and clamps to the visible area.
func textWidth(text string, layout config.UIConfig) byte {
	width := (len(text)*3 + 3) / 4
	if width < 5 {
		width = 5
	}
	if limit := 200 - layout.Left; width > limit {
		width = limit
	}
	return byte(width)
}
