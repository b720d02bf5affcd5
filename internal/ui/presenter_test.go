package ui

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/racetalk/racetalk/internal/config"
	"github.com/racetalk/racetalk/internal/fsm"
	"github.com/racetalk/racetalk/internal/insim"
)

func testLayout() config.UIConfig {
	return config.UIConfig{Scale: 4, Left: 4, Top: 185, ButtonIDOffset: 100}
}

func TestRenderDeterministic(t *testing.T) {
	view := View{
		State:        fsm.StatePreview,
		InGame:       true,
		Transcript:   "three wide into turn one",
		ChannelLabel: "^5!local",
	}

	a := Render(view, testLayout())
	b := Render(view, testLayout())
	require.Equal(t, a, b)
}

func TestRenderOutOfGameIsEmpty(t *testing.T) {
	frame := Render(View{State: fsm.StateRecording, InGame: false}, testLayout())
	require.Empty(t, frame.Buttons)
}

func TestRenderStateDot(t *testing.T) {
	tests := []struct {
		state fsm.State
		want  string
	}{
		{state: fsm.StateIdle, want: "^2•"},
		{state: fsm.StateRecording, want: "^1•"},
		{state: fsm.StateTranscribing, want: "^3•"},
		{state: fsm.StatePreview, want: "^2•"},
	}

	for _, tc := range tests {
		t.Run(string(tc.state), func(t *testing.T) {
			frame := Render(View{State: tc.state, InGame: true, ChannelLabel: "^7say"}, testLayout())
			require.NotEmpty(t, frame.Buttons)
			require.Equal(t, tc.want, frame.Buttons[0].Text)
			require.Equal(t, byte(100), frame.Buttons[0].ID)
		})
	}
}

func TestRenderPreviewButtonOnlyInPreview(t *testing.T) {
	layout := testLayout()

	for _, state := range []fsm.State{fsm.StateIdle, fsm.StateRecording, fsm.StateTranscribing} {
		frame := Render(View{State: state, InGame: true, ChannelLabel: "x"}, layout)
		require.Len(t, frame.Buttons, 2, "state %s must not show a preview", state)
	}

	frame := Render(View{State: fsm.StatePreview, InGame: true, Transcript: "hello", ChannelLabel: "x"}, layout)
	require.Len(t, frame.Buttons, 3)
	preview := frame.Buttons[2]
	require.Equal(t, byte(102), preview.ID)
	require.Equal(t, "^3hello", preview.Text)
	require.NotZero(t, preview.Style&insim.StyleLeft)
}

func TestTextWidthClamps(t *testing.T) {
	layout := testLayout()
	require.EqualValues(t, 5, textWidth("", layout))
	require.EqualValues(t, 5, textWidth("hi", layout))

	long := make([]byte, 400)
	require.EqualValues(t, 196, textWidth(string(long), layout))
}

type fakeLink struct {
	sent    []insim.Btn
	deleted []byte
	sendErr error
}

func (f *fakeLink) SendButton(btn insim.Btn) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, btn)
	return nil
}

func (f *fakeLink) DeleteButton(clickID byte) error {
	f.deleted = append(f.deleted, clickID)
	return nil
}

func newTestPresenter(link Link) *Presenter {
	return NewPresenter(link, testLayout(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestApplyIdenticalFrameIsNoOp(t *testing.T) {
	link := &fakeLink{}
	p := newTestPresenter(link)
	view := View{State: fsm.StateIdle, InGame: true, ChannelLabel: "^7say"}

	p.Render(view)
	first := len(link.sent)
	require.NotZero(t, first)

	p.Render(view)
	require.Len(t, link.sent, first, "identical frame must not resend")
	require.Empty(t, link.deleted)
}

func TestApplySendsOnlyChangedButtons(t *testing.T) {
	link := &fakeLink{}
	p := newTestPresenter(link)

	p.Render(View{State: fsm.StateIdle, InGame: true, ChannelLabel: "^7say"})
	link.sent = nil

	p.Render(View{State: fsm.StateRecording, InGame: true, ChannelLabel: "^7say"})
	require.Len(t, link.sent, 1)
	require.Equal(t, "^1•", link.sent[0].Text)
}

func TestApplyDeletesVanishedButtons(t *testing.T) {
	link := &fakeLink{}
	p := newTestPresenter(link)

	p.Render(View{State: fsm.StatePreview, InGame: true, Transcript: "hi", ChannelLabel: "x"})
	p.Render(View{State: fsm.StateIdle, InGame: true, ChannelLabel: "x"})

	require.Equal(t, []byte{102}, link.deleted)
}

func TestApplyClearsEverythingWhenLeavingGame(t *testing.T) {
	link := &fakeLink{}
	p := newTestPresenter(link)

	p.Render(View{State: fsm.StateIdle, InGame: true, ChannelLabel: "x"})
	p.Render(View{State: fsm.StateIdle, InGame: false, ChannelLabel: "x"})

	require.Len(t, link.deleted, 2)
}

func TestApplyRetriesAfterSendFailure(t *testing.T) {
	link := &fakeLink{sendErr: errors.New("pipe full")}
	p := newTestPresenter(link)
	view := View{State: fsm.StateIdle, InGame: true, ChannelLabel: "x"}

	p.Render(view)
	require.Empty(t, link.sent)

	link.sendErr = nil
	p.Render(view)
	require.Len(t, link.sent, 2, "failed buttons must be resent on the next frame")
}
