package insim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Bind identifies which configured command string a message matched.
type Bind int

const (
	BindNone Bind = iota
	BindTalk
	BindAccept
	BindNextChannel
	BindPrevChannel
)

func (b Bind) String() string {
	switch b {
	case BindTalk:
		return "talk"
	case BindAccept:
		return "accept"
	case BindNextChannel:
		return "next-channel"
	case BindPrevChannel:
		return "prev-channel"
	default:
		return "none"
	}
}

// EventKind discriminates entries on the client's event stream.
type EventKind int

const (
	// EventBind is a user-configured command string arriving via IS_MSO.
	EventBind EventKind = iota + 1
	// EventGameState carries the on-track flag from IS_STA.
	EventGameState
	// EventClosed is terminal: the link is gone and the stream is ending.
	EventClosed
)

// Event is one entry on the inbound stream consumed by the session loop.
type Event struct {
	Kind   EventKind
	Bind   Bind
	InGame bool
	Err    error
}

// Binds holds the command strings the client matches against host messages.
type Binds struct {
	Talk        string
	Accept      string
	NextChannel string
	PrevChannel string
}

// Options configures one connection attempt.
type Options struct {
	Host        string
	Port        int
	Admin       string
	IName       string
	Binds       Binds
	Logger      *slog.Logger
	DialTimeout time.Duration
}

// Client owns the single InSim connection for the process lifetime.
type Client struct {
	conn   net.Conn
	logger *slog.Logger
	binds  map[string]Bind
	events chan Event

	writeMu sync.Mutex
	closed  atomic.Bool
	once    sync.Once
}

const handshakeTimeout = 5 * time.Second

// Connect dials the host, performs the IS_ISI/IS_VER handshake, requests an
// initial state snapshot, and starts the read loop.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = handshakeTimeout
	}

	addr := net.JoinHostPort(opts.Host, fmt.Sprintf("%d", opts.Port))
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial insim host %s: %w", addr, err)
	}

	c := &Client{
		conn:   conn,
		logger: logger,
		binds:  bindTable(opts.Binds),
		events: make(chan Event, 128),
	}

	if err := c.handshake(opts); err != nil {
		conn.Close()
		return nil, err
	}

	// Ask for a state snapshot so the in-game flag settles before first use.
	if err := c.write(Tiny{ReqI: 2, SubT: TinySST}.Encode()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("request state snapshot: %w", err)
	}

	go c.readLoop()
	return c, nil
}

func bindTable(b Binds) map[string]Bind {
	table := make(map[string]Bind, 4)
	for command, bind := range map[string]Bind{
		b.Talk:        BindTalk,
		b.Accept:      BindAccept,
		b.NextChannel: BindNextChannel,
		b.PrevChannel: BindPrevChannel,
	} {
		command = strings.TrimSpace(command)
		if command != "" {
			table[command] = bind
		}
	}
	return table
}

// handshake sends IS_ISI and waits for the matching IS_VER reply.
func (c *Client) handshake(opts Options) error {
	isi := Isi{
		ReqI:  1,
		Flags: FlagLocal,
		Admin: opts.Admin,
		IName: opts.IName,
	}
	if err := c.write(isi.Encode()); err != nil {
		return fmt.Errorf("send IS_ISI: %w", err)
	}

	deadline := time.Now().Add(handshakeTimeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		frame, err := ReadFrame(c.conn)
		if err != nil {
			return fmt.Errorf("await IS_VER: %w", err)
		}
		if frame[1] != TypeVER {
			continue
		}
		ver, err := ParseVer(frame)
		if err != nil {
			return err
		}
		if ver.InSimVer != insimVersion {
			return fmt.Errorf("host speaks InSim version %d, need %d", ver.InSimVer, insimVersion)
		}
		c.logger.Info("insim connected",
			"product", ver.Product,
			"version", ver.Version,
			"insim_version", ver.InSimVer,
		)
		return nil
	}
}

// Events returns the inbound event stream. It is consumed by exactly one
// reader and ends with an EventClosed entry.
func (c *Client) Events() <-chan Event {
	return c.events
}

// readLoop parses inbound frames until the connection dies.
func (c *Client) readLoop() {
	defer close(c.events)

	for {
		frame, err := ReadFrame(c.conn)
		if err != nil {
			if c.closed.Load() {
				c.events <- Event{Kind: EventClosed}
				return
			}
			if errors.Is(err, net.ErrClosed) {
				err = errors.New("connection closed")
			}
			c.events <- Event{Kind: EventClosed, Err: fmt.Errorf("insim link lost: %w", err)}
			return
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame []byte) {
	switch frame[1] {
	case TypeTINY:
		tiny, err := ParseTiny(frame)
		if err != nil {
			c.logger.Warn("drop malformed IS_TINY", "error", err)
			return
		}
		if tiny.SubT == TinyNone {
			// Keep-alive: the host drops us if the echo does not come back.
			if err := c.write(Tiny{SubT: TinyNone}.Encode()); err != nil {
				c.logger.Warn("keep-alive reply failed", "error", err)
			}
		}
	case TypeSTA:
		sta, err := ParseSta(frame)
		if err != nil {
			c.logger.Warn("drop malformed IS_STA", "error", err)
			return
		}
		c.events <- Event{Kind: EventGameState, InGame: sta.InGame()}
	case TypeMSO:
		mso, err := ParseMso(frame)
		if err != nil {
			c.logger.Warn("drop malformed IS_MSO", "error", err)
			return
		}
		text := strings.TrimSpace(mso.Text())
		if bind, ok := c.binds[text]; ok {
			c.events <- Event{Kind: EventBind, Bind: bind}
		}
	default:
		// Other packet types are not subscribed to and carry no session meaning.
	}
}

// SendButton creates or updates one button.
func (c *Client) SendButton(btn Btn) error {
	if btn.ReqI == 0 {
		btn.ReqI = 1
	}
	frame, err := btn.Encode()
	if err != nil {
		return err
	}
	return c.write(frame)
}

// DeleteButton removes one button by click id.
func (c *Client) DeleteButton(clickID byte) error {
	return c.write(Bfn{SubT: BfnDelBtn, ClickID: clickID, ClickMax: clickID}.Encode())
}

// ClearButtons removes every button this instance created.
func (c *Client) ClearButtons() error {
	return c.write(Bfn{SubT: BfnClear}.Encode())
}

// SendChat injects prefix+text into the game chat.
//
// Commands (leading slash) must travel as IS_MST, which caps them at 63
// characters; plain chat uses IS_MSX up to 95. Longer payloads are truncated
// on a rune boundary rather than rejected.
func (c *Client) SendChat(prefix, text string) error {
	msg := prefix + text
	if strings.TrimSpace(msg) == "" {
		return errors.New("refusing to send empty chat message")
	}

	if strings.HasPrefix(msg, "/") || len(msg) <= MaxMstChars {
		return c.write(Mst{Msg: truncate(msg, MaxMstChars)}.Encode())
	}
	return c.write(Msx{Msg: truncate(msg, MaxMsxChars)}.Encode())
}

// Close signals the host and tears the connection down. Safe to call twice.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		_ = c.write(Tiny{SubT: TinyClose}.Encode())
		err = c.conn.Close()
	})
	return err
}

// write serializes frame writes; the read loop's keep-alive echo and the
// session loop both send here.
func (c *Client) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.conn, frame)
}
