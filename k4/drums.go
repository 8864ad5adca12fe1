package k4

// DrumCommonParam identifies a parameter shared by the whole drum kit.
type DrumCommonParam int

const (
	DrumChannel DrumCommonParam = iota
	DrumVolume
	DrumVelDepth
)

// DrumParam identifies a per-key drum parameter outside the two sources.
type DrumParam int

const (
	DrumOutSelect DrumParam = iota
)

// DrumSourceParam identifies a parameter of one of the two drum sources.
type DrumSourceParam int

const (
	DrumSourceWave DrumSourceParam = iota
	DrumSourceDecay
	DrumSourceTune
	DrumSourceLevel
)

const drumSources = 2

var drumCommonFields = [...]Field{
	DrumChannel:  field("channel", 0, 0, 0x0F, 1),
	DrumVolume:   field("volume", 1, 0, 0x7F, 0).limit(0, 100),
	DrumVelDepth: field("vel_depth", 2, 0, 0x7F, -50).limit(-50, 50),
}

var drumFields = [...]Field{
	DrumOutSelect: field("out_select", 0, 4, 0x07, 0),
}

// Offsets are those of source 1; source 2 follows byte by byte.
var drumSourceFields = [...]Field{
	DrumSourceWave:  splitField("wave", 2, 0),
	DrumSourceDecay: field("decay", 4, 0, 0x7F, 0).limit(0, 100),
	DrumSourceTune:  field("tune", 6, 0, 0x7F, -50).limit(-50, 50),
	DrumSourceLevel: field("level", 8, 0, 0x7F, 0).limit(0, 100),
}

var drumCommonLayout = register(newLayout(KindDrumCommon, false, drumCommonFields[:]))

var drumLayout = register(newLayout(KindDrum, false,
	drumFields[:],
	repeat("src", drumSources, 1, drumSourceFields[:]),
))

// DrumCommon holds the drum kit settings.
type DrumCommon struct {
	Record
}

func NewDrumCommon(data []byte) (*DrumCommon, error) {
	r, err := newRecord(KindDrumCommon, data)
	if err != nil {
		return nil, err
	}
	return &DrumCommon{r}, nil
}

func (d *DrumCommon) Param(p DrumCommonParam) int {
	return d.get(drumCommonFields[p])
}

func (d *DrumCommon) SetParam(p DrumCommonParam, value int) {
	d.set(drumCommonFields[p], value)
}

// Drum is the drum assignment of one key.
type Drum struct {
	Record
}

func NewDrum(data []byte) (*Drum, error) {
	r, err := newRecord(KindDrum, data)
	if err != nil {
		return nil, err
	}
	return &Drum{r}, nil
}

func (d *Drum) Param(p DrumParam) int {
	return d.get(drumFields[p])
}

func (d *Drum) SetParam(p DrumParam, value int) {
	d.set(drumFields[p], value)
}

// Source returns drum source i (0 or 1).
func (d *Drum) Source(i int) DrumSource {
	checkIndex(i, drumSources)
	return DrumSource{group{&d.Record, drumSourceFields[:], i}}
}

type DrumSource struct{ g group }

func (s DrumSource) Get(p DrumSourceParam) int        { return s.g.get(int(p)) }
func (s DrumSource) Set(p DrumSourceParam, value int) { s.g.set(int(p), value) }
