package k4

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// Kind is the one byte tag of a record type, used both inside full dumps and
// in per-record files.
type Kind byte

const (
	KindSingle     Kind = 0x10
	KindMulti      Kind = 0x11
	KindDrumCommon Kind = 0x12
	KindDrum       Kind = 0x13
	KindEffect     Kind = 0x14
)

// Kinds lists the record kinds in full dump order.
var Kinds = []Kind{KindSingle, KindMulti, KindDrumCommon, KindDrum, KindEffect}

var kindInfo = map[Kind]struct {
	name  string
	size  int
	count int
}{
	KindSingle:     {"single", 131, 64},
	KindMulti:      {"multi", 77, 64},
	KindDrumCommon: {"drumcommon", 11, 1},
	KindDrum:       {"drum", 11, 61},
	KindEffect:     {"effect", 35, 32},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(0x%02X)", byte(k))
}

// Size returns the record length in bytes, checksum included.
func (k Kind) Size() int {
	return kindInfo[k].size
}

// Count returns how many records of this kind a full dump holds.
func (k Kind) Count() int {
	return kindInfo[k].count
}

// ParseKind maps a kind name as returned by String back to the Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

const (
	nameLength = 10
	frameSize  = 3
)

// layout is the declarative description of one record kind.
type layout struct {
	kind   Kind
	named  bool
	fields []Field
	index  map[string]int
}

func newLayout(kind Kind, named bool, groups ...[]Field) *layout {
	l := &layout{kind: kind, named: named, index: map[string]int{}}
	for _, g := range groups {
		for _, f := range g {
			l.index[f.Name] = len(l.fields)
			l.fields = append(l.fields, f)
		}
	}
	return l
}

// repeat lays out count copies of a parameter block, stride bytes apart,
// naming each field prefix<n>.<name> with n counted from 1.
func repeat(prefix string, count, stride int, fields []Field) []Field {
	out := make([]Field, 0, count*len(fields))
	for i := 0; i < count; i++ {
		for _, f := range fields {
			out = append(out, f.at(i*stride, fmt.Sprintf("%s%d.%s", prefix, i+1, f.Name)))
		}
	}
	return out
}

var layouts = map[Kind]*layout{}

// LayoutFields returns the field descriptors of kind k in layout order.
func LayoutFields(k Kind) ([]Field, error) {
	l, ok := layouts[k]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownKind, byte(k))
	}
	return l.fields, nil
}

func register(l *layout) *layout {
	layouts[l.kind] = l
	return l
}

// Record is a fixed-size K4 parameter block. The last byte is the checksum
// of the bytes before it. The buffer is owned by the record; Copy hands out
// detached snapshots.
type Record struct {
	kind   Kind
	data   []byte
	layout *layout
}

func newRecord(kind Kind, data []byte) (Record, error) {
	if len(data) != kind.Size() {
		return Record{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrWrongSize, kind, kind.Size(), len(data))
	}
	l, ok := layouts[kind]
	if !ok {
		return Record{}, fmt.Errorf("%w: 0x%02X", ErrUnknownKind, byte(kind))
	}
	return Record{kind: kind, data: append([]byte(nil), data...), layout: l}, nil
}

// NewRecord builds a record of the given kind from a copy of data.
func NewRecord(kind Kind, data []byte) (*Record, error) {
	r, err := newRecord(kind, data)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Kind returns the record kind.
func (r *Record) Kind() Kind {
	return r.kind
}

// Size returns the record length in bytes.
func (r *Record) Size() int {
	return len(r.data)
}

// Copy returns a detached snapshot of the record bytes.
func (r *Record) Copy() []byte {
	return append([]byte(nil), r.data...)
}

// Paste replaces the record bytes with data and refreshes the checksum. A
// slice of the wrong length is rejected and the record stays as it was.
func (r *Record) Paste(data []byte) error {
	if len(data) != len(r.data) {
		return fmt.Errorf("%w: paste of %d bytes into %s of %d", ErrWrongSize, len(data), r.kind, len(r.data))
	}
	copy(r.data, data)
	r.UpdateChecksum()
	return nil
}

// Checksum returns the stored checksum byte.
func (r *Record) Checksum() byte {
	return r.data[len(r.data)-1]
}

// Verify recomputes the checksum and compares it with the stored one.
func (r *Record) Verify() bool {
	return validChecksum(r.data)
}

// UpdateChecksum recomputes the checksum and stores it.
func (r *Record) UpdateChecksum() {
	n := len(r.data) - 1
	r.data[n] = Checksum(r.data[:n])
}

// Fields returns the field descriptors of the record kind in layout order.
func (r *Record) Fields() []Field {
	return r.layout.fields
}

// Field looks up a descriptor by name.
func (r *Record) Field(name string) (Field, bool) {
	i, ok := r.layout.index[name]
	if !ok {
		return Field{}, false
	}
	return r.layout.fields[i], true
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (int, error) {
	f, ok := r.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, r.kind, name)
	}
	return r.get(f), nil
}

// Set stores value into the named field and refreshes the checksum.
func (r *Record) Set(name string, value int) error {
	f, ok := r.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, r.kind, name)
	}
	r.set(f, value)
	return nil
}

// Values returns every field value keyed by field name.
func (r *Record) Values() map[string]int {
	out := make(map[string]int, len(r.layout.fields))
	for _, f := range r.layout.fields {
		out[f.Name] = r.get(f)
	}
	return out
}

func (r *Record) get(f Field) int {
	return f.Get(r.data)
}

func (r *Record) set(f Field, value int) {
	f.Set(r.data, value)
	r.UpdateChecksum()
}

// HasName reports whether the record kind carries a 10 character name.
func (r *Record) HasName() bool {
	return r.layout.named
}

// Name returns the patch name with trailing padding removed, or "" for
// kinds without a name.
func (r *Record) Name() string {
	if !r.layout.named {
		return ""
	}
	return strings.TrimRight(string(r.data[:nameLength]), " \x00")
}

// SetName stores name truncated or space padded to 10 characters.
// Characters outside printable ASCII are stored as spaces.
func (r *Record) SetName(name string) {
	if !r.layout.named {
		return
	}
	buf := []byte(strings.Repeat(" ", nameLength))
	i := 0
	for _, c := range name {
		if i == nameLength {
			break
		}
		if c >= 0x20 && c < 0x7F {
			buf[i] = byte(c)
		}
		i++
	}
	copy(r.data, buf)
	r.UpdateChecksum()
}

// Frame encodes the record as a per-record file: kind, big-endian length,
// then the record bytes.
func (r *Record) Frame() []byte {
	out := make([]byte, frameSize, frameSize+len(r.data))
	out[0] = byte(r.kind)
	binary.BigEndian.PutUint16(out[1:], uint16(len(r.data)))
	return append(out, r.data...)
}

// LoadFrame replaces the record bytes with the payload of a per-record
// file. Kind or length mismatches return ErrWrongKind or ErrWrongSize; a
// payload failing its checksum returns ErrChecksum. In every failure case
// the record keeps its previous bytes.
func (r *Record) LoadFrame(frame []byte) error {
	payload, err := r.checkFrame(frame)
	if err != nil {
		return err
	}
	if !validChecksum(payload) {
		return fmt.Errorf("%w: stored 0x%02X, computed 0x%02X", ErrChecksum, payload[len(payload)-1], Checksum(payload[:len(payload)-1]))
	}
	copy(r.data, payload)
	return nil
}

// ForceLoadFrame is LoadFrame for callers that want to keep corrupt data:
// after the structural checks pass the bytes are always taken, and
// ErrChecksum still reports a bad checksum.
func (r *Record) ForceLoadFrame(frame []byte) error {
	payload, err := r.checkFrame(frame)
	if err != nil {
		return err
	}
	copy(r.data, payload)
	if !r.Verify() {
		return ErrChecksum
	}
	return nil
}

func (r *Record) checkFrame(frame []byte) ([]byte, error) {
	if len(frame) < frameSize {
		return nil, fmt.Errorf("%w: frame of %d bytes", ErrWrongSize, len(frame))
	}
	if Kind(frame[0]) != r.kind {
		return nil, fmt.Errorf("%w: file holds %s, slot is %s", ErrWrongKind, Kind(frame[0]), r.kind)
	}
	length := int(binary.BigEndian.Uint16(frame[1:frameSize]))
	if length != len(r.data) {
		return nil, fmt.Errorf("%w: file declares %d bytes, %s needs %d", ErrWrongSize, length, r.kind, len(r.data))
	}
	payload := frame[frameSize:]
	if len(payload) != length {
		return nil, fmt.Errorf("%w: file holds %d payload bytes, declares %d", ErrWrongSize, len(payload), length)
	}
	return payload, nil
}

// Save writes the record to path as a per-record file.
func (r *Record) Save(path string) error {
	if err := os.WriteFile(path, r.Frame(), 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", r.kind, err)
	}
	return nil
}

// Load reads a per-record file written by Save. See LoadFrame.
func (r *Record) Load(path string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", r.kind, err)
	}
	return r.LoadFrame(frame)
}

// ForceLoad reads a per-record file and keeps its bytes even when the
// checksum is wrong. See ForceLoadFrame.
func (r *Record) ForceLoad(path string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", r.kind, err)
	}
	return r.ForceLoadFrame(frame)
}

// group is a view onto one copy of a repeated parameter block. It shares
// the record buffer; offsets are those of the first copy plus delta.
type group struct {
	r      *Record
	fields []Field
	delta  int
}

func (g group) get(p int) int {
	return g.r.get(g.fields[p].at(g.delta, g.fields[p].Name))
}

func (g group) set(p int, value int) {
	g.r.set(g.fields[p].at(g.delta, g.fields[p].Name), value)
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("k4: index %d out of range [0,%d)", i, n))
	}
}
