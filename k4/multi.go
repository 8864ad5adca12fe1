package k4

import "fmt"

// MultiParam identifies a global Multi Instrument parameter.
type MultiParam int

const (
	MultiVolume MultiParam = iota
	MultiEffect
)

// SectionParam identifies a parameter of one Multi Instrument section.
type SectionParam int

const (
	SectionInstrument SectionParam = iota
	SectionZoneLow
	SectionZoneHigh
	SectionRecChannel
	SectionVelSwitch
	SectionMute
	SectionOutSelect
	SectionMode
	SectionLevel
	SectionTranspose
	SectionTune
)

const (
	// Sections is the number of sections in a Multi Instrument.
	Sections = 8

	sectionBase = 12
	sectionSize = 8
)

var multiFields = [...]Field{
	MultiVolume: field("volume", 10, 0, 0x7F, 0).limit(0, 100),
	MultiEffect: field("effect", 11, 0, 0x1F, 1),
}

// Offsets are relative to the start of the section.
var sectionFields = [...]Field{
	SectionInstrument: field("instrument", 0, 0, 0x3F, 0),
	SectionZoneLow:    field("zone_low", 1, 0, 0x7F, 0),
	SectionZoneHigh:   field("zone_high", 2, 0, 0x7F, 0),
	SectionRecChannel: field("rec_channel", 3, 0, 0x0F, 0),
	SectionVelSwitch:  field("vel_switch", 3, 4, 0x03, 0).limit(0, 2),
	SectionMute:       field("mute", 3, 6, 0x01, 0),
	SectionOutSelect:  field("out_select", 4, 0, 0x07, 0),
	SectionMode:       field("mode", 4, 3, 0x03, 0).limit(0, 2),
	SectionLevel:      field("level", 5, 0, 0x7F, 0).limit(0, 100),
	SectionTranspose:  field("transpose", 6, 0, 0x3F, -24).limit(-24, 24),
	SectionTune:       field("tune", 7, 0, 0x7F, -50).limit(-50, 50),
}

var multiLayout = register(newLayout(KindMulti, true,
	multiFields[:],
	repeat("section", Sections, sectionSize, sectionFieldsAt(sectionBase)),
))

func sectionFieldsAt(base int) []Field {
	out := make([]Field, len(sectionFields))
	for i, f := range sectionFields {
		out[i] = f.at(base, f.Name)
	}
	return out
}

// Multi is a Multi Instrument: a named layering of up to eight Single
// Instruments, one per section.
type Multi struct {
	Record
}

// NewMulti builds a Multi Instrument from 77 bytes.
func NewMulti(data []byte) (*Multi, error) {
	r, err := newRecord(KindMulti, data)
	if err != nil {
		return nil, err
	}
	return &Multi{r}, nil
}

func (m *Multi) Param(p MultiParam) int {
	return m.get(multiFields[p])
}

func (m *Multi) SetParam(p MultiParam, value int) {
	m.set(multiFields[p], value)
}

// Section returns section i (0 to 7). The section works directly on the
// Multi Instrument's buffer: changes through it change the parent and
// refresh the parent's checksum.
func (m *Multi) Section(i int) Section {
	checkIndex(i, Sections)
	return Section{group{&m.Record, sectionFields[:], sectionOffset(i)}}
}

func sectionOffset(i int) int {
	return sectionBase + i*sectionSize
}

// Section is a view of eight bytes inside a Multi Instrument.
type Section struct{ g group }

func (s Section) Get(p SectionParam) int        { return s.g.get(int(p)) }
func (s Section) Set(p SectionParam, value int) { s.g.set(int(p), value) }

// Offset returns the position of the section inside the parent record.
func (s Section) Offset() int {
	return s.g.delta
}

// Copy returns a detached copy of the section bytes.
func (s Section) Copy() []byte {
	return append([]byte(nil), s.g.r.data[s.g.delta:s.g.delta+sectionSize]...)
}

// Paste overwrites the section with 8 bytes taken from another section's
// Copy and refreshes the parent checksum.
func (s Section) Paste(data []byte) error {
	if len(data) != sectionSize {
		return fmt.Errorf("%w: section paste of %d bytes, want %d", ErrWrongSize, len(data), sectionSize)
	}
	copy(s.g.r.data[s.g.delta:], data)
	s.g.r.UpdateChecksum()
	return nil
}
