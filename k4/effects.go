package k4

import "strings"

// EffectParam identifies an effect type or parameter.
type EffectParam int

const (
	EffectType EffectParam = iota
	EffectParam1
	EffectParam2
	EffectParam3
)

// SubmixParam identifies a parameter of one of the eight submix channels.
type SubmixParam int

const (
	SubmixPan SubmixParam = iota
	SubmixSend1
	SubmixSend2
)

const (
	// Submixes is the number of submix channels (A to H).
	Submixes = 8

	submixStride = 3
)

var effectFields = [...]Field{
	EffectType:   field("type", 0, 0, 0x0F, 1),
	EffectParam1: field("para1", 1, 0, 0x07, 0),
	EffectParam2: field("para2", 2, 0, 0x07, 0),
	EffectParam3: field("para3", 3, 0, 0x1F, 0),
}

// Offsets are those of submix A.
var submixFields = [...]Field{
	SubmixPan:   field("pan", 10, 0, 0x1F, -8).limit(-7, 7),
	SubmixSend1: field("send1", 11, 0, 0x7F, 0).limit(0, 100),
	SubmixSend2: field("send2", 12, 0, 0x7F, 0).limit(0, 100),
}

var effectLayout = register(newLayout(KindEffect, false,
	effectFields[:],
	submixLayoutFields(),
))

// submixLayoutFields names submix fields after the channel letter, e.g.
// submix_c.pan.
func submixLayoutFields() []Field {
	out := make([]Field, 0, Submixes*len(submixFields))
	for i := 0; i < Submixes; i++ {
		for _, f := range submixFields {
			out = append(out, f.at(i*submixStride, "submix_"+strings.ToLower(SubmixName(i))+"."+f.Name))
		}
	}
	return out
}

// Effect is one of the 32 effect patches.
type Effect struct {
	Record
}

func NewEffect(data []byte) (*Effect, error) {
	r, err := newRecord(KindEffect, data)
	if err != nil {
		return nil, err
	}
	return &Effect{r}, nil
}

func (e *Effect) Param(p EffectParam) int {
	return e.get(effectFields[p])
}

func (e *Effect) SetParam(p EffectParam, value int) {
	e.set(effectFields[p], value)
}

// Submix returns submix channel i (0 to 7 for A to H).
func (e *Effect) Submix(i int) Submix {
	checkIndex(i, Submixes)
	return Submix{group{&e.Record, submixFields[:], i * submixStride}}
}

type Submix struct{ g group }

func (s Submix) Get(p SubmixParam) int        { return s.g.get(int(p)) }
func (s Submix) Set(p SubmixParam, value int) { s.g.set(int(p), value) }
