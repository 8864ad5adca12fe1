package midifile_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	. "k4edit/midifile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smf(tracks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("MThd")
	buf.Write([]byte{0, 0, 0, 6, 0, 1})
	binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))
	buf.Write([]byte{0x01, 0xE0})
	for _, tr := range tracks {
		buf.WriteString("MTrk")
		binary.Write(&buf, binary.BigEndian, uint32(len(tr)))
		buf.Write(tr)
	}
	return buf.Bytes()
}

func TestReadDelta(t *testing.T) {
	delta, rest, err := ReadDelta([]byte{0x81, 0x48})
	require.NoError(t, err)
	assert.Equal(t, uint32(200), delta)
	assert.Empty(t, rest)

	delta, rest, err = ReadDelta([]byte{0x7F, 0x01})
	require.NoError(t, err)
	assert.Equal(t, uint32(127), delta)
	assert.Equal(t, []byte{0x01}, rest)

	delta, _, err = ReadDelta([]byte{0xFF, 0xFF, 0x7F})
	require.NoError(t, err)
	assert.Equal(t, uint32(2097151), delta)

	delta, _, err = ReadDelta([]byte{0x81, 0x80, 0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(2097152), delta)
}

func TestReadDeltaErrors(t *testing.T) {
	_, _, err := ReadDelta([]byte{0x81})
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = ReadDelta(nil)
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = ReadDelta([]byte{0x81, 0x81, 0x81, 0x81, 0x01})
	assert.ErrorIs(t, err, ErrBadDelta)
}

func TestEncodeDelta(t *testing.T) {
	assert.Equal(t, []byte{0x00}, EncodeDelta(0))
	assert.Equal(t, []byte{0x7F}, EncodeDelta(127))
	assert.Equal(t, []byte{0x81, 0x48}, EncodeDelta(200))
	assert.Equal(t, []byte{0x81, 0x80, 0x80, 0x00}, EncodeDelta(2097152))

	for _, v := range []uint32{1, 128, 15114, 0x0FFFFFFF} {
		got, rest, err := ReadDelta(EncodeDelta(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Empty(t, rest)
	}
}

func TestSplitRejectsGarbage(t *testing.T) {
	_, err := Split([]byte("Hello World!"))
	assert.ErrorIs(t, err, ErrBadChunk)

	_, err = Split(nil)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Split([]byte("MThd\x00\x00\x00\x06\x00"))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Split([]byte("MThd\x00\x00\x00\x02\x00\x01"))
	assert.ErrorIs(t, err, ErrBadChunk)
}

func TestSplitTrackChunks(t *testing.T) {
	data := smf([]byte{0x00, 0xFF, 0x2F, 0x00}, []byte{0x00, 0xFF, 0x2F, 0x00})
	f, err := Split(data)
	require.NoError(t, err)
	require.True(t, f.IsSMF())
	assert.Equal(t, uint16(1), f.Header.Format)
	assert.Equal(t, uint16(2), f.Header.Tracks)
	assert.Equal(t, uint16(0x01E0), f.Header.Division)
	assert.Equal(t, 2, f.NumTracks())

	_, err = f.Track(2)
	assert.ErrorIs(t, err, ErrBadChunk)

	bad := append([]byte(nil), data...)
	copy(bad[14:], "MTrx")
	_, err = Split(bad)
	assert.ErrorIs(t, err, ErrBadChunk)

	_, err = Split(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParseMetaAndSysEx(t *testing.T) {
	track := []byte{
		0x00, 0xFF, 0x20, 0x01, 0x03,
		0x00, 0xFF, 0x03, 0x02, 'K', '4',
		0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08,
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
		0x81, 0x48, 0xF0, 0x04, 0x40, 0x00, 0x22, 0xF7,
		0x00, 0xFF, 0x2F, 0x00,
	}
	var p Parser
	s, err := p.Parse(smf(track))
	require.NoError(t, err)

	assert.True(t, s.HasChannelPrefix)
	assert.Equal(t, byte(3), s.ChannelPrefix)
	require.Len(t, s.Texts, 1)
	assert.Equal(t, "K4", s.Texts[0].Text)
	assert.Equal(t, byte(0x03), s.Texts[0].Type)
	require.NotNil(t, s.TimeSignature)
	assert.Equal(t, byte(4), s.TimeSignature.Numerator)
	assert.Equal(t, byte(2), s.TimeSignature.Denominator)
	require.NotNil(t, s.Tempo)
	assert.Equal(t, 500000, s.Tempo.MicrosecondsPerQuarter())
	assert.InDelta(t, 120.0, s.Tempo.BPM(), 0.001)

	require.Len(t, s.SysEx, 1)
	assert.Equal(t, uint32(200), s.SysEx[0].Delta)
	assert.Equal(t, []byte{0x40, 0x00, 0x22}, s.SysEx[0].Data)

	body, err := s.FirstSysEx()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00, 0x22}, body)
}

func TestParseStopsAfterFirstSysExTrack(t *testing.T) {
	first := []byte{0x00, 0xF0, 0x02, 0x01, 0xF7, 0x00, 0xFF, 0x2F, 0x00}
	second := []byte{0x00, 0xF0, 0x02, 0x02, 0xF7, 0x00, 0xFF, 0x2F, 0x00}

	var p Parser
	s, err := p.Parse(smf(first, second))
	require.NoError(t, err)
	require.Len(t, s.SysEx, 1)
	assert.Equal(t, []byte{0x01}, s.SysEx[0].Data)

	p.AllTracks = true
	s, err = p.Parse(smf(first, second))
	require.NoError(t, err)
	require.Len(t, s.SysEx, 2)
	assert.Equal(t, 1, s.SysEx[1].Track)
}

func TestParseUnknownMetaIsFatal(t *testing.T) {
	var p Parser
	_, err := p.Parse(smf([]byte{0x00, 0xFF, 0x7F, 0x01, 0x00}))
	assert.ErrorIs(t, err, ErrUnknownMeta)
}

func TestParseUnknownEventIsFatal(t *testing.T) {
	var p Parser
	_, err := p.Parse(smf([]byte{0x00, 0x90, 0x3C, 0x64}))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestParseTruncatedEvents(t *testing.T) {
	var p Parser
	_, err := p.Parse(smf([]byte{0x00, 0xF0, 0x10, 0x01}))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = p.Parse(smf([]byte{0x00, 0xFF, 0x01, 0x05, 'a'}))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = p.Parse(smf([]byte{0x00}))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = p.Parse(smf([]byte{0x00, 0xFF, 0x51, 0x01, 0x07}))
	assert.ErrorIs(t, err, ErrBadMeta)
}

func TestParseNoSysEx(t *testing.T) {
	var p Parser
	s, err := p.Parse(smf([]byte{0x00, 0xFF, 0x2F, 0x00}))
	require.NoError(t, err)
	_, err = s.FirstSysEx()
	assert.ErrorIs(t, err, ErrNoSysEx)
}

func TestParseRawSysEx(t *testing.T) {
	var p Parser
	s, err := p.Parse([]byte{0xF0, 0x40, 0x00, 0x22, 0xF7})
	require.NoError(t, err)
	assert.Nil(t, s.Header)
	body, err := s.FirstSysEx()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00, 0x22}, body)

	_, err = p.Parse([]byte{0xF0, 0x40, 0x00})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWrapSysEx(t *testing.T) {
	assert.Equal(t, []byte{0xF0, 0x01, 0x02, 0xF7}, WrapSysEx([]byte{0x01, 0x02}))

	body, err := UnwrapSysEx(WrapSysEx([]byte{0x01, 0x02}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, body)

	_, err = UnwrapSysEx([]byte{0x90, 0x01})
	assert.ErrorIs(t, err, ErrNotSysEx)
}

func TestUnwrapSysExTrailingBytes(t *testing.T) {
	body, err := UnwrapSysEx([]byte{0xF0, 0x40, 0x00, 0xF7, '\r', '\n'})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00}, body)

	_, err = UnwrapSysEx([]byte{0xF0, 0x40, 0x00, 0xF7, 0xF0, 0x01})
	assert.ErrorIs(t, err, ErrTrailingData)
	assert.ErrorContains(t, err, "2 bytes after 0xF7")

	_, err = UnwrapSysEx([]byte{0xF0, 0x40, 0x00})
	assert.ErrorIs(t, err, ErrTruncated)

	s, err := new(Parser).Parse([]byte{0xF0, 0x40, 0x00, 0x22, 0xF7, '\n'})
	require.NoError(t, err)
	first, err := s.FirstSysEx()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00, 0x22}, first)
}

func TestWrapDumpLayout(t *testing.T) {
	body := bytes.Repeat([]byte{0x11}, 200)
	data := WrapDump(body)

	want := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 2, 0x01, 0xE0,
		'M', 'T', 'r', 'k', 0, 0, 0, 19,
		0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08,
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
		0x00, 0xFF, 0x2F, 0x00,
		'M', 'T', 'r', 'k',
	}
	require.True(t, bytes.HasPrefix(data, want))

	// delta, F0, two-byte length (201), body, F7, end of track
	trackLen := binary.BigEndian.Uint32(data[len(want) : len(want)+4])
	assert.Equal(t, uint32(1+1+2+200+1+4), trackLen)
	assert.Equal(t, []byte{0x00, 0xF0, 0x81, 0x49}, data[len(want)+4:len(want)+8])
	assert.Equal(t, []byte{0xF7, 0x00, 0xFF, 0x2F, 0x00}, data[len(data)-5:])

	var p Parser
	s, err := p.Parse(data)
	require.NoError(t, err)
	got, err := s.FirstSysEx()
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, 500000, s.Tempo.MicrosecondsPerQuarter())
}
