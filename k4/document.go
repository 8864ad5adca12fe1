package k4

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"k4edit/midifile"
)

// Format is the container a dump is stored in.
type Format int

const (
	// FormatSMF is a Standard MIDI File with the dump as one SysEx event.
	FormatSMF Format = iota
	// FormatSysEx is a bare 0xF0 ... 0xF7 message.
	FormatSysEx
)

func (f Format) String() string {
	switch f {
	case FormatSMF:
		return "smf"
	case FormatSysEx:
		return "syx"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat accepts the names returned by Format.String.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "smf", "mid", "midi":
		return FormatSMF, nil
	case "syx", "sysex":
		return FormatSysEx, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath picks the format from the file extension: .mid, .midi and
// .smf for FormatSMF, .syx for FormatSysEx.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// EncodeSysEx encodes the dump as a raw SysEx message.
func (d *Dump) EncodeSysEx() ([]byte, error) {
	return d.EncodeWith([]byte{0xF0}, []byte{0xF7})
}

// EncodeSMF encodes the dump as a wrapped Standard MIDI File.
func (d *Dump) EncodeSMF() ([]byte, error) {
	body, err := d.Encode()
	if err != nil {
		return nil, err
	}
	return midifile.WrapDump(body), nil
}

// EncodeFormat encodes the dump in format f.
func (d *Dump) EncodeFormat(f Format) ([]byte, error) {
	switch f {
	case FormatSMF:
		return d.EncodeSMF()
	case FormatSysEx:
		return d.EncodeSysEx()
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// Document is a dump together with the container it was read from.
type Document struct {
	Path   string
	Format Format
	Stream *midifile.Stream
	*Dump
}

// Open reads and decodes the file at path. logger may be nil.
func Open(path string, logger *log.Logger) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := ReadDocument(data, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// ReadDocument parses data as a Standard MIDI File or raw SysEx file and
// decodes its first SysEx message.
func ReadDocument(data []byte, logger *log.Logger) (*Document, error) {
	p := midifile.Parser{Log: logger}
	s, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	body, err := s.FirstSysEx()
	if err != nil {
		return nil, err
	}

	dec := Decoder{Log: logger}
	d, err := dec.Decode(body)
	if err != nil {
		return nil, err
	}

	doc := &Document{Format: FormatSysEx, Stream: s, Dump: d}
	if midifile.IsSMF(data) {
		doc.Format = FormatSMF
	}
	return doc, nil
}

// Save encodes the dump in format f and writes it to path.
func (doc *Document) Save(path string, f Format) error {
	data, err := doc.EncodeFormat(f)
	if err != nil {
		return err
	}
	if err := midifile.WriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
