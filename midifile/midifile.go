// Package midifile reads the two containers K4 dumps travel in: Standard
// MIDI Files carrying a SysEx event, and raw .syx files holding a single
// SysEx message. It also writes both containers back.
package midifile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	sysExStart = 0xF0
	sysExEnd   = 0xF7
	metaEvent  = 0xFF

	msbMask      = 0x80
	sevenBitMask = 0x7F

	// maxDeltaBytes bounds a variable length quantity to four bytes.
	maxDeltaBytes = 4

	chunkHeaderSize  = 8
	headerDataLength = 6
)

var (
	headerChunk = [4]byte{'M', 'T', 'h', 'd'}
	trackChunk  = [4]byte{'M', 'T', 'r', 'k'}
)

var (
	ErrTruncated    = errors.New("midifile: truncated data")
	ErrBadChunk     = errors.New("midifile: invalid chunk")
	ErrBadDelta     = errors.New("midifile: variable length quantity exceeds 4 bytes")
	ErrBadMeta      = errors.New("midifile: malformed meta event")
	ErrUnknownMeta  = errors.New("midifile: unknown meta event")
	ErrUnknownEvent = errors.New("midifile: unknown event")
	ErrNotSysEx     = errors.New("midifile: not a SysEx message")
	ErrNoSysEx      = errors.New("midifile: no SysEx message found")
	ErrTrailingData = errors.New("midifile: trailing bytes after SysEx")
)

// Header is the content of the MThd chunk.
type Header struct {
	Length   uint32
	Format   uint16
	Tracks   uint16
	Division uint16
}

// File is a container split into its parts. For a Standard MIDI File the
// track chunk bodies are kept in order; for a raw SysEx file only the SysEx
// body (without 0xF0/0xF7) is kept and Header is nil.
type File struct {
	Header *Header
	tracks [][]byte
	sysex  []byte
}

// IsSMF reports whether data starts with an MThd chunk.
func IsSMF(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], headerChunk[:])
}

// IsSysEx reports whether data looks like a raw SysEx file.
func IsSysEx(data []byte) bool {
	return len(data) > 0 && data[0] == sysExStart
}

// Split breaks data into its container parts without interpreting events.
func Split(data []byte) (*File, error) {
	switch {
	case IsSMF(data):
		return splitSMF(data)
	case IsSysEx(data):
		body, err := UnwrapSysEx(data)
		if err != nil {
			return nil, err
		}
		return &File{sysex: body}, nil
	default:
		if len(data) == 0 {
			return nil, fmt.Errorf("empty file: %w", ErrTruncated)
		}
		return nil, fmt.Errorf("%w: leading byte 0x%02X is neither MThd nor SysEx", ErrBadChunk, data[0])
	}
}

func splitSMF(data []byte) (*File, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	var h Header
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading header magic: %w", ErrTruncated)
	}
	if err := binary.Read(r, binary.BigEndian, &h.Length); err != nil {
		return nil, fmt.Errorf("reading header length: %w", ErrTruncated)
	}
	if h.Length < headerDataLength {
		return nil, fmt.Errorf("%w: header length %d, want at least %d", ErrBadChunk, h.Length, headerDataLength)
	}
	if uint64(len(data)) < chunkHeaderSize+uint64(h.Length) {
		return nil, fmt.Errorf("header chunk: %w", ErrTruncated)
	}
	for _, v := range []*uint16{&h.Format, &h.Tracks, &h.Division} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return nil, fmt.Errorf("reading header fields: %w", ErrTruncated)
		}
	}

	f := &File{Header: &h}
	ofs := chunkHeaderSize + int(h.Length)
	for n := 0; n < int(h.Tracks); n++ {
		body, next, err := readTrackChunk(data, ofs)
		if err != nil {
			return nil, fmt.Errorf("track #%d: %w", n, err)
		}
		f.tracks = append(f.tracks, body)
		ofs = next
	}
	return f, nil
}

// readTrackChunk reads the MTrk chunk starting at ofs and returns its body
// and the offset just past it.
func readTrackChunk(data []byte, ofs int) ([]byte, int, error) {
	if len(data)-ofs < chunkHeaderSize {
		return nil, 0, ErrTruncated
	}
	if !bytes.Equal(data[ofs:ofs+4], trackChunk[:]) {
		return nil, 0, fmt.Errorf("%w: found %q, want %q", ErrBadChunk, data[ofs:ofs+4], trackChunk[:])
	}
	length := binary.BigEndian.Uint32(data[ofs+4 : ofs+8])
	start := ofs + chunkHeaderSize
	if uint64(len(data)-start) < uint64(length) {
		return nil, 0, fmt.Errorf("declared length %d, %d bytes left: %w", length, len(data)-start, ErrTruncated)
	}
	end := start + int(length)
	return data[start:end], end, nil
}

// IsSMF reports whether f came from a Standard MIDI File.
func (f *File) IsSMF() bool {
	return f.Header != nil
}

// NumTracks returns the number of track chunks read.
func (f *File) NumTracks() int {
	return len(f.tracks)
}

// Track returns the event bytes of track n.
func (f *File) Track(n int) ([]byte, error) {
	if n < 0 || n >= len(f.tracks) {
		return nil, fmt.Errorf("%w: no track #%d", ErrBadChunk, n)
	}
	return f.tracks[n], nil
}

// SysEx returns the body of a raw SysEx file.
func (f *File) SysEx() []byte {
	return f.sysex
}

// ReadDelta decodes a big-endian base-128 variable length quantity from the
// front of data and returns the value and the remaining bytes.
func ReadDelta(data []byte) (uint32, []byte, error) {
	var delta uint32
	for i := 0; i < maxDeltaBytes; i++ {
		if i >= len(data) {
			return 0, data, fmt.Errorf("variable length quantity: %w", ErrTruncated)
		}
		b := data[i]
		delta = delta<<7 | uint32(b&sevenBitMask)
		if b&msbMask == 0 {
			return delta, data[i+1:], nil
		}
	}
	return 0, data, ErrBadDelta
}

// EncodeDelta encodes v as a variable length quantity.
func EncodeDelta(v uint32) []byte {
	var buf [maxDeltaBytes + 1]byte
	i := len(buf) - 1
	buf[i] = byte(v & sevenBitMask)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&sevenBitMask) | msbMask
	}
	return append([]byte(nil), buf[i:]...)
}
