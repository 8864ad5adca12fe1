package midifile

import (
	"bytes"
	"encoding/binary"
	"os"

	"gitlab.com/gomidi/midi/v2"
)

// Division written into wrapped dumps: 480 ticks per quarter note.
const WrapDivision = 0x01E0

var (
	// conductorTrack is the first track of a wrapped dump: 4/4 time,
	// 24 clocks per click, 8 32nds per quarter, 500000 us per quarter.
	conductorTrack = []byte{
		0x00, metaEvent, MetaTimeSignature, 0x04, 0x04, 0x02, 0x18, 0x08,
		0x00, metaEvent, MetaTempo, 0x03, 0x07, 0xA1, 0x20,
		0x00, metaEvent, MetaEndOfTrack, 0x00,
	}
	endOfTrack = []byte{0x00, metaEvent, MetaEndOfTrack, 0x00}
)

// WrapSysEx frames body as a raw SysEx message: 0xF0 body 0xF7.
func WrapSysEx(body []byte) []byte {
	return []byte(midi.SysEx(body))
}

// WrapDump builds a format 1 Standard MIDI File with two tracks: the
// conductor track and one track holding body as a single SysEx event.
func WrapDump(body []byte) []byte {
	var buf bytes.Buffer

	buf.Write(headerChunk[:])
	binary.Write(&buf, binary.BigEndian, uint32(headerDataLength))
	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, uint16(2))
	binary.Write(&buf, binary.BigEndian, uint16(WrapDivision))

	writeTrack(&buf, conductorTrack)

	// The SMF SysEx event length counts everything after 0xF0, including
	// the terminating 0xF7.
	msg := WrapSysEx(body)
	var events bytes.Buffer
	events.WriteByte(0x00)
	events.WriteByte(sysExStart)
	events.Write(EncodeDelta(uint32(len(msg) - 1)))
	events.Write(msg[1:])
	events.Write(endOfTrack)
	writeTrack(&buf, events.Bytes())

	return buf.Bytes()
}

func writeTrack(buf *bytes.Buffer, events []byte) {
	buf.Write(trackChunk[:])
	binary.Write(buf, binary.BigEndian, uint32(len(events)))
	buf.Write(events)
}

// WriteFile writes data to path, replacing any existing file.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
