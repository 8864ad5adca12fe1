package k4

import (
	"fmt"
	"log"
)

const (
	// HeaderSize is the length of the SysEx header following 0xF0.
	HeaderSize = 7

	VendorKawai = 0x40
	MachineK4   = 0x04

	// FunctionAllDataDump marks a full dump of the internal memory.
	FunctionAllDataDump = 0x22
)

// Header is the SysEx header of a K4 dump, kept verbatim for re-encoding.
type Header struct {
	Vendor     byte
	Channel    byte
	Function   byte
	Group      byte
	Machine    byte
	SubStatus1 byte
	SubStatus2 byte
}

func parseHeader(b []byte) Header {
	return Header{
		Vendor:     b[0],
		Channel:    b[1],
		Function:   b[2],
		Group:      b[3],
		Machine:    b[4],
		SubStatus1: b[5],
		SubStatus2: b[6],
	}
}

// Bytes returns the header as it appears on the wire.
func (h Header) Bytes() []byte {
	return []byte{h.Vendor, h.Channel, h.Function, h.Group, h.Machine, h.SubStatus1, h.SubStatus2}
}

// FullDumpSize returns the number of record bytes in a full dump.
func FullDumpSize() int {
	n := 0
	for _, k := range Kinds {
		n += k.Size() * k.Count()
	}
	return n
}

// Dump is the decoded content of one K4 SysEx message. Only full dumps
// carry records; for any other function just the Header is filled in.
type Dump struct {
	Header     Header
	Singles    []*Single
	Multis     []*Multi
	DrumCommon *DrumCommon
	Drums      []*Drum
	Effects    []*Effect

	// Warnings holds a *RecordError for every record whose checksum did
	// not match when it was decoded.
	Warnings []error
}

// NewDump returns a full dump of blank records for the given MIDI channel
// (1 to 16).
func NewDump(channel int) *Dump {
	d := &Dump{Header: Header{
		Vendor:   VendorKawai,
		Channel:  byte(channel-1) & 0x0F,
		Function: FunctionAllDataDump,
		Machine:  MachineK4,
	}}
	for _, k := range Kinds {
		blank := make([]byte, k.Size())
		for i := 0; i < k.Count(); i++ {
			r, _ := d.add(k, blank)
			r.SetName("")
			r.UpdateChecksum()
		}
	}
	return d
}

// IsFull reports whether the dump is a full dump.
func (d *Dump) IsFull() bool {
	return d.Header.Function == FunctionAllDataDump
}

// Decoder turns SysEx bodies into Dumps. Log receives the header fields and
// checksum warnings; nil keeps the decoder silent.
type Decoder struct {
	Log *log.Logger
}

// Decode decodes payload without logging. See Decoder.Decode.
func Decode(payload []byte) (*Dump, error) {
	var dec Decoder
	return dec.Decode(payload)
}

// Decode decodes a SysEx body (the bytes between 0xF0 and 0xF7). A full
// dump must consist of exactly the header and the fixed-order records.
// Records with a bad checksum are kept and reported in Dump.Warnings.
func (dec *Decoder) Decode(payload []byte) (*Dump, error) {
	if len(payload) < HeaderSize {
		return nil, fmt.Errorf("%w: %d header bytes, want %d", ErrTruncated, len(payload), HeaderSize)
	}
	h := parseHeader(payload)
	dec.logf("vendor=%x channel=%x function=%x group=%x machine=%x sub_status1=%x sub_status2=%x",
		h.Vendor, h.Channel, h.Function, h.Group, h.Machine, h.SubStatus1, h.SubStatus2)

	d := &Dump{Header: h}
	if !d.IsFull() {
		dec.logf("function 0x%02X is not a full dump, records skipped", h.Function)
		return d, nil
	}

	want := HeaderSize + FullDumpSize()
	switch {
	case len(payload) < want:
		return nil, fmt.Errorf("%w: %d bytes, full dump needs %d", ErrTruncated, len(payload), want)
	case len(payload) > want:
		return nil, fmt.Errorf("%w: %d bytes, full dump needs %d", ErrTrailingData, len(payload), want)
	}

	data := payload[HeaderSize:]
	for _, k := range Kinds {
		for i := 0; i < k.Count(); i++ {
			r, err := d.add(k, data[:k.Size()])
			if err != nil {
				return nil, &RecordError{Kind: k, Index: i, Err: err}
			}
			data = data[k.Size():]
			if !r.Verify() {
				werr := &RecordError{Kind: k, Index: i, Err: ErrChecksum}
				d.Warnings = append(d.Warnings, werr)
				dec.logf("warning: %v", werr)
			}
		}
	}
	return d, nil
}

func (dec *Decoder) logf(format string, args ...any) {
	if dec.Log != nil {
		dec.Log.Printf(format, args...)
	}
}

// add builds a record of kind k from data and appends it to the dump.
func (d *Dump) add(k Kind, data []byte) (*Record, error) {
	switch k {
	case KindSingle:
		s, err := NewSingle(data)
		if err != nil {
			return nil, err
		}
		d.Singles = append(d.Singles, s)
		return &s.Record, nil
	case KindMulti:
		m, err := NewMulti(data)
		if err != nil {
			return nil, err
		}
		d.Multis = append(d.Multis, m)
		return &m.Record, nil
	case KindDrumCommon:
		c, err := NewDrumCommon(data)
		if err != nil {
			return nil, err
		}
		d.DrumCommon = c
		return &c.Record, nil
	case KindDrum:
		dr, err := NewDrum(data)
		if err != nil {
			return nil, err
		}
		d.Drums = append(d.Drums, dr)
		return &dr.Record, nil
	case KindEffect:
		e, err := NewEffect(data)
		if err != nil {
			return nil, err
		}
		d.Effects = append(d.Effects, e)
		return &e.Record, nil
	}
	return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownKind, byte(k))
}

// Len returns how many records of kind k the dump holds.
func (d *Dump) Len(k Kind) int {
	switch k {
	case KindSingle:
		return len(d.Singles)
	case KindMulti:
		return len(d.Multis)
	case KindDrumCommon:
		if d.DrumCommon == nil {
			return 0
		}
		return 1
	case KindDrum:
		return len(d.Drums)
	case KindEffect:
		return len(d.Effects)
	}
	return 0
}

// Record returns slot i of kind k.
func (d *Dump) Record(k Kind, i int) (*Record, error) {
	if i < 0 || i >= d.Len(k) {
		return nil, fmt.Errorf("%w: %s #%d (dump holds %d)", ErrNoSlot, k, i, d.Len(k))
	}
	switch k {
	case KindSingle:
		return &d.Singles[i].Record, nil
	case KindMulti:
		return &d.Multis[i].Record, nil
	case KindDrumCommon:
		return &d.DrumCommon.Record, nil
	case KindDrum:
		return &d.Drums[i].Record, nil
	default:
		return &d.Effects[i].Record, nil
	}
}

// Records returns every record in full dump order.
func (d *Dump) Records() []*Record {
	var out []*Record
	for _, k := range Kinds {
		for i := 0; i < d.Len(k); i++ {
			r, _ := d.Record(k, i)
			out = append(out, r)
		}
	}
	return out
}

// Verify checks every record now and returns a *RecordError for each one
// whose checksum does not match.
func (d *Dump) Verify() []error {
	var errs []error
	for _, k := range Kinds {
		for i := 0; i < d.Len(k); i++ {
			r, _ := d.Record(k, i)
			if !r.Verify() {
				errs = append(errs, &RecordError{Kind: k, Index: i, Err: ErrChecksum})
			}
		}
	}
	return errs
}

// Encode returns the SysEx body of the dump: header then every record in
// full dump order, each with a freshly computed checksum.
func (d *Dump) Encode() ([]byte, error) {
	if !d.IsFull() {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedFunction, d.Header.Function)
	}
	for _, k := range Kinds {
		if n := d.Len(k); n != k.Count() {
			return nil, fmt.Errorf("%w: dump holds %d %s records, want %d", ErrWrongSize, n, k, k.Count())
		}
	}

	out := make([]byte, 0, HeaderSize+FullDumpSize())
	out = append(out, d.Header.Bytes()...)
	for _, r := range d.Records() {
		r.UpdateChecksum()
		out = append(out, r.data...)
	}
	return out, nil
}

// EncodeWith encodes the dump between the given start and end markers, for
// example 0xF0 and 0xF7 for a raw SysEx message.
func (d *Dump) EncodeWith(start, end []byte) ([]byte, error) {
	body, err := d.Encode()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(start)+len(body)+len(end))
	out = append(out, start...)
	out = append(out, body...)
	return append(out, end...), nil
}
