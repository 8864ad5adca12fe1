package midifile

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"gitlab.com/gomidi/midi/v2"
)

// Meta event types understood by the parser.
const (
	MetaText          = 0x01
	MetaLastText      = 0x07
	MetaChannelPrefix = 0x20
	MetaEndOfTrack    = 0x2F
	MetaTempo         = 0x51
	MetaTimeSignature = 0x58
)

type state int

const (
	stateReadDelta state = iota
	stateDispatchEvent
	stateReadMetaEvent
	stateReadSysEx
	stateEndOfTrack
)

// Text is a text-class meta event (types 0x01 to 0x07).
type Text struct {
	Track int
	Delta uint32
	Type  byte
	Text  string
}

// Tempo is a captured set-tempo meta event.
type Tempo struct {
	Raw [3]byte
}

// MicrosecondsPerQuarter returns the tempo as stored in the file.
func (t Tempo) MicrosecondsPerQuarter() int {
	return int(t.Raw[0])<<16 | int(t.Raw[1])<<8 | int(t.Raw[2])
}

// BPM converts the tempo to quarter notes per minute.
func (t Tempo) BPM() float64 {
	us := t.MicrosecondsPerQuarter()
	if us == 0 {
		return 0
	}
	return 60e6 / float64(us)
}

// TimeSignature is a captured time signature meta event. Denominator is
// stored as a power of two, as in the file.
type TimeSignature struct {
	Numerator      byte
	Denominator    byte
	ClocksPerClick byte
	ThirtySeconds  byte
}

// SysEx is one SysEx event found in a track. Data holds the message body
// without the leading 0xF0 and without a trailing 0xF7.
type SysEx struct {
	Track int
	Delta uint32
	Data  []byte
}

// Stream is everything the parser captured from a container.
type Stream struct {
	Header           *Header
	HasChannelPrefix bool
	ChannelPrefix    byte
	Texts            []Text
	Tempo            *Tempo
	TimeSignature    *TimeSignature
	SysEx            []SysEx
}

// FirstSysEx returns the body of the first SysEx message in the stream.
func (s *Stream) FirstSysEx() ([]byte, error) {
	if len(s.SysEx) == 0 {
		return nil, ErrNoSysEx
	}
	return s.SysEx[0].Data, nil
}

// Parser walks container bytes. Log receives informational messages about
// meta events; a nil Log keeps the parser silent. Unless AllTracks is set
// parsing stops after the first track that yields a SysEx message.
type Parser struct {
	Log       *log.Logger
	AllTracks bool
}

// ParseFile reads path fully and parses it.
func (p *Parser) ParseFile(path string) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse interprets data as a Standard MIDI File or a raw SysEx file.
func (p *Parser) Parse(data []byte) (*Stream, error) {
	f, err := Split(data)
	if err != nil {
		return nil, err
	}

	s := &Stream{Header: f.Header}
	if !f.IsSMF() {
		s.SysEx = append(s.SysEx, SysEx{Data: f.SysEx()})
		return s, nil
	}

	p.logf("MIDI file: format=%d tracks=%d division=%d", f.Header.Format, f.Header.Tracks, f.Header.Division)
	for n := 0; n < f.NumTracks(); n++ {
		track, _ := f.Track(n)
		t := &trackParser{p: p, s: s, track: n, full: track, data: track}
		if err := t.run(); err != nil {
			return nil, fmt.Errorf("track #%d: %w", n, err)
		}
		if !p.AllTracks && len(s.SysEx) > 0 {
			break
		}
	}
	return s, nil
}

func (p *Parser) logf(format string, args ...any) {
	if p.Log != nil {
		p.Log.Printf(format, args...)
	}
}

// trackParser holds the cursor state while walking one track.
type trackParser struct {
	p     *Parser
	s     *Stream
	track int
	full  []byte
	data  []byte
	delta uint32
	state state
}

func (t *trackParser) offset() int {
	return len(t.full) - len(t.data)
}

func (t *trackParser) run() error {
	for {
		switch t.state {
		case stateReadDelta:
			if len(t.data) == 0 {
				return nil
			}
			delta, rest, err := ReadDelta(t.data)
			if err != nil {
				return fmt.Errorf("delta time at offset %d: %w", t.offset(), err)
			}
			t.delta, t.data = delta, rest
			t.state = stateDispatchEvent

		case stateDispatchEvent:
			if len(t.data) == 0 {
				return fmt.Errorf("event after delta time: %w", ErrTruncated)
			}
			switch t.data[0] {
			case metaEvent:
				t.state = stateReadMetaEvent
			case sysExStart:
				t.state = stateReadSysEx
			default:
				return fmt.Errorf("%w: byte 0x%02X at offset %d", ErrUnknownEvent, t.data[0], t.offset())
			}

		case stateReadMetaEvent:
			if err := t.readMeta(); err != nil {
				return err
			}

		case stateReadSysEx:
			if err := t.readSysEx(); err != nil {
				return err
			}
			t.state = stateReadDelta

		case stateEndOfTrack:
			if len(t.data) > 0 {
				t.p.logf("track #%d: %d bytes after end of track ignored", t.track, len(t.data))
			}
			return nil
		}
	}
}

func (t *trackParser) readMeta() error {
	at := t.offset()
	if len(t.data) < 2 {
		return fmt.Errorf("meta event at offset %d: %w", at, ErrTruncated)
	}
	typ := t.data[1]
	length, rest, err := ReadDelta(t.data[2:])
	if err != nil {
		return fmt.Errorf("meta event 0x%02X length at offset %d: %w", typ, at, err)
	}
	if uint64(len(rest)) < uint64(length) {
		return fmt.Errorf("meta event 0x%02X at offset %d: %w", typ, at, ErrTruncated)
	}
	body := rest[:length]
	t.data = rest[length:]
	t.state = stateReadDelta

	switch {
	case typ == MetaChannelPrefix:
		if len(body) < 1 {
			return fmt.Errorf("%w: empty channel prefix at offset %d", ErrBadMeta, at)
		}
		t.s.HasChannelPrefix = true
		t.s.ChannelPrefix = body[0]
		t.p.logf("%d midi channel prefix=%d", t.delta, body[0])
	case typ >= MetaText && typ <= MetaLastText:
		t.s.Texts = append(t.s.Texts, Text{Track: t.track, Delta: t.delta, Type: typ, Text: string(body)})
		t.p.logf("%d text(0x%02X)=%q", t.delta, typ, body)
	case typ == MetaEndOfTrack:
		t.p.logf("end of track #%d", t.track)
		t.state = stateEndOfTrack
	case typ == MetaTempo:
		if len(body) < 3 {
			return fmt.Errorf("%w: tempo needs 3 bytes, got %d", ErrBadMeta, len(body))
		}
		tempo := &Tempo{}
		copy(tempo.Raw[:], body)
		t.s.Tempo = tempo
		t.p.logf("%d tempo=%d us/quarter", t.delta, tempo.MicrosecondsPerQuarter())
	case typ == MetaTimeSignature:
		if len(body) < 4 {
			return fmt.Errorf("%w: time signature needs 4 bytes, got %d", ErrBadMeta, len(body))
		}
		t.s.TimeSignature = &TimeSignature{
			Numerator:      body[0],
			Denominator:    body[1],
			ClocksPerClick: body[2],
			ThirtySeconds:  body[3],
		}
		t.p.logf("%d time signature=%d/%d", t.delta, body[0], 1<<body[1])
	default:
		return fmt.Errorf("%w: type 0x%02X at offset %d", ErrUnknownMeta, typ, at)
	}
	return nil
}

func (t *trackParser) readSysEx() error {
	at := t.offset()
	length, rest, err := ReadDelta(t.data[1:])
	if err != nil {
		return fmt.Errorf("SysEx length at offset %d: %w", at, err)
	}
	if uint64(len(rest)) < uint64(length) {
		return fmt.Errorf("SysEx at offset %d declares %d bytes, %d left: %w", at, length, len(rest), ErrTruncated)
	}
	body := rest[:length]
	t.data = rest[length:]
	if n := len(body); n > 0 && body[n-1] == sysExEnd {
		body = body[:n-1]
	}
	t.s.SysEx = append(t.s.SysEx, SysEx{Track: t.track, Delta: t.delta, Data: body})
	t.p.logf("%d SysEx of %d bytes", t.delta, len(body))
	return nil
}

// UnwrapSysEx returns the body of a complete 0xF0 ... 0xF7 message.
// Whitespace after the 0xF7, such as a final newline, is ignored.
func UnwrapSysEx(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != sysExStart {
		return nil, ErrNotSysEx
	}
	end := bytes.IndexByte(data, sysExEnd)
	if end < 0 {
		return nil, fmt.Errorf("SysEx without terminating 0xF7: %w", ErrTruncated)
	}
	if extra := data[end+1:]; len(bytes.TrimSpace(extra)) > 0 {
		return nil, fmt.Errorf("%w: %d bytes after 0xF7 at offset %d", ErrTrailingData, len(extra), end)
	}
	data = data[:end+1]
	var body []byte
	if !midi.Message(data).GetSysEx(&body) {
		return nil, ErrNotSysEx
	}
	return body, nil
}
