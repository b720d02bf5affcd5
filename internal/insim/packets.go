// Package insim speaks the simulator's InSim control protocol: framed binary
// packets over one TCP connection, used for binds, buttons, and chat injection.
package insim

import (
	"encoding/binary"
	"fmt"
)

// Packet type identifiers (InSim version 9).
const (
	TypeISI  byte = 1  // instance init (handshake)
	TypeVER  byte = 2  // version reply
	TypeTINY byte = 3  // small control packet / keep-alive
	TypeSTA  byte = 5  // state snapshot
	TypeMSO  byte = 11 // message out (chat / typed commands)
	TypeMST  byte = 13 // message type-in (<= 63 chars)
	TypeMSX  byte = 39 // extended message (<= 95 chars)
	TypeBFN  byte = 42 // button function (delete/clear)
	TypeBTN  byte = 45 // button create/update
)

// IS_TINY sub-types used by racetalk.
const (
	TinyNone  byte = 0 // keep-alive, must be echoed back
	TinyClose byte = 2 // request connection close
	TinySST   byte = 7 // request an IS_STA snapshot
)

// ISI flags.
const (
	FlagLocal uint16 = 4 // receive local messages and buttons only
)

// IS_STA flags.
const (
	StateGame uint16 = 256 // player is on track
)

// IS_MSO user types.
const (
	MsoSystem byte = 0
	MsoUser   byte = 1
	MsoPrefix byte = 2
	MsoO      byte = 3 // text sent with the /o command
)

// Button style bits.
const (
	StyleClick byte = 8
	StyleLight byte = 16
	StyleDark  byte = 32
	StyleLeft  byte = 64
	StyleRight byte = 128
)

// Wire limits fixed by the protocol.
const (
	MaxMstChars   = 63  // IS_MST payload minus mandatory NUL
	MaxMsxChars   = 95  // IS_MSX payload minus mandatory NUL
	MaxButtonText = 239 // IS_BTN text minus mandatory NUL
	MaxClickID    = 239
)

const insimVersion = 9

// Isi is the handshake packet sent once after connecting.
type Isi struct {
	ReqI     byte
	UDPPort  uint16
	Flags    uint16
	Prefix   byte
	Interval uint16
	Admin    string
	IName    string
}

func (p Isi) Encode() []byte {
	buf := make([]byte, 44)
	buf[0] = 11
	buf[1] = TypeISI
	buf[2] = p.ReqI
	binary.LittleEndian.PutUint16(buf[4:6], p.UDPPort)
	binary.LittleEndian.PutUint16(buf[6:8], p.Flags)
	buf[8] = insimVersion
	buf[9] = p.Prefix
	binary.LittleEndian.PutUint16(buf[10:12], p.Interval)
	putPadded(buf[12:28], p.Admin)
	putPadded(buf[28:44], p.IName)
	return buf
}

// Ver is the host's reply to a non-zero ReqI handshake.
type Ver struct {
	ReqI     byte
	Version  string
	Product  string
	InSimVer byte
}

func ParseVer(raw []byte) (Ver, error) {
	if len(raw) < 20 {
		return Ver{}, fmt.Errorf("IS_VER too short: %d bytes", len(raw))
	}
	return Ver{
		ReqI:     raw[2],
		Version:  cstring(raw[4:12]),
		Product:  cstring(raw[12:18]),
		InSimVer: raw[18],
	}, nil
}

// Tiny is the 4-byte control packet.
type Tiny struct {
	ReqI byte
	SubT byte
}

func (p Tiny) Encode() []byte {
	return []byte{1, TypeTINY, p.ReqI, p.SubT}
}

func ParseTiny(raw []byte) (Tiny, error) {
	if len(raw) < 4 {
		return Tiny{}, fmt.Errorf("IS_TINY too short: %d bytes", len(raw))
	}
	return Tiny{ReqI: raw[2], SubT: raw[3]}, nil
}

// Sta is the subset of the state snapshot racetalk consumes.
type Sta struct {
	Flags uint16
	Track string
}

// InGame reports whether the player is on track rather than in menus.
func (p Sta) InGame() bool {
	return p.Flags&StateGame != 0
}

func ParseSta(raw []byte) (Sta, error) {
	if len(raw) < 28 {
		return Sta{}, fmt.Errorf("IS_STA too short: %d bytes", len(raw))
	}
	return Sta{
		Flags: binary.LittleEndian.Uint16(raw[8:10]),
		Track: cstring(raw[20:26]),
	}, nil
}

// Mso is an outbound message from the host: system lines, user chat, and the
// typed command strings that carry binds.
type Mso struct {
	UCID      byte
	PLID      byte
	UserType  byte
	TextStart byte
	Msg       string
}

// Text returns the message body without the player-name prefix.
func (p Mso) Text() string {
	start := int(p.TextStart)
	if start >= len(p.Msg) {
		return p.Msg
	}
	return p.Msg[start:]
}

func ParseMso(raw []byte) (Mso, error) {
	if len(raw) < 12 {
		return Mso{}, fmt.Errorf("IS_MSO too short: %d bytes", len(raw))
	}
	return Mso{
		UCID:      raw[4],
		PLID:      raw[5],
		UserType:  raw[6],
		TextStart: raw[7],
		Msg:       cstring(raw[8:]),
	}, nil
}

// Mst types a message or command into the game (63 char limit).
type Mst struct {
	Msg string
}

func (p Mst) Encode() []byte {
	buf := make([]byte, 68)
	buf[0] = 17
	buf[1] = TypeMST
	putPadded(buf[4:67], p.Msg) // byte 67 stays NUL per protocol
	return buf
}

// Msx is the extended message packet (95 char limit, no command parsing).
type Msx struct {
	Msg string
}

func (p Msx) Encode() []byte {
	buf := make([]byte, 100)
	buf[0] = 25
	buf[1] = TypeMSX
	putPadded(buf[4:99], p.Msg)
	return buf
}

// Btn creates or updates one on-screen button.
type Btn struct {
	ReqI    byte // must be non-zero or the host discards the packet
	UCID    byte
	ClickID byte
	Inst    byte
	BStyle  byte
	TypeIn  byte
	L, T    byte
	W, H    byte
	Text    string
}

func (p Btn) Encode() ([]byte, error) {
	if p.ReqI == 0 {
		return nil, fmt.Errorf("IS_BTN requires non-zero ReqI")
	}
	if p.ClickID > MaxClickID {
		return nil, fmt.Errorf("button id %d exceeds protocol maximum %d", p.ClickID, MaxClickID)
	}
	text := p.Text
	if len(text) > MaxButtonText {
		text = truncate(text, MaxButtonText)
	}

	// Text block is NUL-terminated and padded to a 4-byte boundary.
	textLen := (len(text) + 4) &^ 3
	buf := make([]byte, 12+textLen)
	buf[0] = byte(len(buf) / 4)
	buf[1] = TypeBTN
	buf[2] = p.ReqI
	buf[3] = p.UCID
	buf[4] = p.ClickID
	buf[5] = p.Inst
	buf[6] = p.BStyle
	buf[7] = p.TypeIn
	buf[8] = p.L
	buf[9] = p.T
	buf[10] = p.W
	buf[11] = p.H
	copy(buf[12:], text)
	return buf, nil
}

// IS_BFN sub-types.
const (
	BfnDelBtn byte = 0
	BfnClear  byte = 1
)

// Bfn deletes one button, a button range, or every button this instance owns.
type Bfn struct {
	SubT     byte
	UCID     byte
	ClickID  byte
	ClickMax byte
	Inst     byte
}

func (p Bfn) Encode() []byte {
	return []byte{2, TypeBFN, 0, p.SubT, p.UCID, p.ClickID, p.ClickMax, p.Inst}
}

// putPadded copies s into dst, NUL-padding the remainder. Overlong values are
// cut at the field boundary.
func putPadded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// cstring reads a NUL-terminated byte field.
func cstring(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
