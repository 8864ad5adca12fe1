package k4

// SingleParam identifies a global Single Instrument parameter.
type SingleParam int

const (
	SingleVolume SingleParam = iota
	SingleEffect
	SingleOutSelect
	SingleSourceMode
	SinglePolyMode
	SingleAMS1S2
	SingleAMS3S4
	SingleMuteS1
	SingleMuteS2
	SingleMuteS3
	SingleMuteS4
	SingleVibShape
	SinglePitchBend
	SingleWheelAssign
	SingleVibSpeed
	SingleWheelDepth
	SingleAutoBendTime
	SingleAutoBendDepth
	SingleAutoBendKSTime
	SingleAutoBendVelDepth
	SingleVibPressure
	SingleVibDepth
	SingleLFOShape
	SingleLFOSpeed
	SingleLFODelay
	SingleLFODepth
	SingleLFOPressure
	SinglePressureFreq
)

// SourceParam identifies an oscillator parameter of one of the four sources.
type SourceParam int

const (
	SourceDelay SourceParam = iota
	SourceWave
	SourceKSCurve
	SourceCoarse
	SourceKeyTrack
	SourceFix
	SourceFine
	SourcePressureFreq
	SourceVibBend
	SourceVelCurve
)

// DCAParam identifies an amplifier envelope parameter of one source.
type DCAParam int

const (
	DCALevel DCAParam = iota
	DCAAttack
	DCADecay
	DCASustain
	DCARelease
	DCALevelModVel
	DCALevelModPressure
	DCALevelModKS
	DCATimeModOnVel
	DCATimeModOffVel
	DCATimeModKS
)

// FilterParam identifies a parameter of one of the two DCF blocks.
type FilterParam int

const (
	FilterCutoff FilterParam = iota
	FilterResonance
	FilterLFO
	FilterCutoffModVel
	FilterCutoffModPressure
	FilterCutoffModKS
	FilterEnvDepth
	FilterEnvVelDepth
	FilterAttack
	FilterDecay
	FilterSustain
	FilterRelease
	FilterTimeModOnVel
	FilterTimeModOffVel
	FilterTimeModKS
)

const (
	singleSources = 4
	singleFilters = 2
)

var singleFields = [...]Field{
	SingleVolume:           field("volume", 10, 0, 0x7F, 0).limit(0, 100),
	SingleEffect:           field("effect", 11, 0, 0x1F, 1),
	SingleOutSelect:        field("out_select", 12, 0, 0x07, 0),
	SingleSourceMode:       field("source_mode", 13, 0, 0x03, 0).limit(0, 2),
	SinglePolyMode:         field("poly_mode", 13, 2, 0x03, 0),
	SingleAMS1S2:           field("am_s1_s2", 13, 4, 0x01, 0),
	SingleAMS3S4:           field("am_s3_s4", 13, 5, 0x01, 0),
	SingleMuteS1:           field("mute_s1", 14, 0, 0x01, 0),
	SingleMuteS2:           field("mute_s2", 14, 1, 0x01, 0),
	SingleMuteS3:           field("mute_s3", 14, 2, 0x01, 0),
	SingleMuteS4:           field("mute_s4", 14, 3, 0x01, 0),
	SingleVibShape:         field("vib_shape", 14, 4, 0x03, 0),
	SinglePitchBend:        field("pitch_bend", 15, 0, 0x0F, 0).limit(0, 12),
	SingleWheelAssign:      field("wheel_assign", 15, 4, 0x03, 0).limit(0, 2),
	SingleVibSpeed:         field("vib_speed", 16, 0, 0x7F, 0).limit(0, 100),
	SingleWheelDepth:       field("wheel_depth", 17, 0, 0x7F, -50).limit(-50, 50),
	SingleAutoBendTime:     field("auto_bend_time", 18, 0, 0x7F, 0).limit(0, 100),
	SingleAutoBendDepth:    field("auto_bend_depth", 19, 0, 0x7F, -50).limit(-50, 50),
	SingleAutoBendKSTime:   field("auto_bend_ks_time", 20, 0, 0x7F, -50).limit(-50, 50),
	SingleAutoBendVelDepth: field("auto_bend_vel_depth", 21, 0, 0x7F, -50).limit(-50, 50),
	SingleVibPressure:      field("vib_pressure", 22, 0, 0x7F, -50).limit(-50, 50),
	SingleVibDepth:         field("vib_depth", 23, 0, 0x7F, -50).limit(-50, 50),
	SingleLFOShape:         field("lfo_shape", 24, 0, 0x03, 0),
	SingleLFOSpeed:         field("lfo_speed", 25, 0, 0x7F, 0).limit(0, 100),
	SingleLFODelay:         field("lfo_delay", 26, 0, 0x7F, 0).limit(0, 100),
	SingleLFODepth:         field("lfo_depth", 27, 0, 0x7F, -50).limit(-50, 50),
	SingleLFOPressure:      field("lfo_pressure", 28, 0, 0x7F, -50).limit(-50, 50),
	SinglePressureFreq:     field("pressure_freq", 29, 0, 0x7F, -50).limit(-50, 50),
}

// Offsets are those of source 1; sources 2 to 4 follow byte by byte.
var sourceFields = [...]Field{
	SourceDelay:        field("delay", 30, 0, 0x7F, 0).limit(0, 100),
	SourceWave:         splitField("wave", 38, 34),
	SourceKSCurve:      field("ks_curve", 34, 4, 0x07, 1),
	SourceCoarse:       field("coarse", 42, 0, 0x3F, -24).limit(-24, 24),
	SourceKeyTrack:     field("key_track", 42, 6, 0x01, 0),
	SourceFix:          field("fix", 46, 0, 0x7F, 0).limit(0, 115),
	SourceFine:         field("fine", 50, 0, 0x7F, -50).limit(-50, 50),
	SourcePressureFreq: field("pressure_freq", 54, 0, 0x01, 0),
	SourceVibBend:      field("vib_bend", 54, 1, 0x01, 0),
	SourceVelCurve:     field("vel_curve", 54, 2, 0x07, 1),
}

var dcaFields = [...]Field{
	DCALevel:            field("level", 58, 0, 0x7F, 0).limit(0, 100),
	DCAAttack:           field("attack", 62, 0, 0x7F, 0).limit(0, 100),
	DCADecay:            field("decay", 66, 0, 0x7F, 0).limit(0, 100),
	DCASustain:          field("sustain", 70, 0, 0x7F, 0).limit(0, 100),
	DCARelease:          field("release", 74, 0, 0x7F, 0).limit(0, 100),
	DCALevelModVel:      field("level_mod_vel", 78, 0, 0x7F, -50).limit(-50, 50),
	DCALevelModPressure: field("level_mod_pressure", 82, 0, 0x7F, -50).limit(-50, 50),
	DCALevelModKS:       field("level_mod_ks", 86, 0, 0x7F, -50).limit(-50, 50),
	DCATimeModOnVel:     field("time_mod_on_vel", 90, 0, 0x7F, -50).limit(-50, 50),
	DCATimeModOffVel:    field("time_mod_off_vel", 94, 0, 0x7F, -50).limit(-50, 50),
	DCATimeModKS:        field("time_mod_ks", 98, 0, 0x7F, -50).limit(-50, 50),
}

var filterFields = [...]Field{
	FilterCutoff:            field("cutoff", 102, 0, 0x7F, 0).limit(0, 100),
	FilterResonance:         field("resonance", 104, 0, 0x07, 0),
	FilterLFO:               field("lfo", 104, 3, 0x01, 0),
	FilterCutoffModVel:      field("cutoff_mod_vel", 106, 0, 0x7F, -50).limit(-50, 50),
	FilterCutoffModPressure: field("cutoff_mod_pressure", 108, 0, 0x7F, -50).limit(-50, 50),
	FilterCutoffModKS:       field("cutoff_mod_ks", 110, 0, 0x7F, -50).limit(-50, 50),
	FilterEnvDepth:          field("env_depth", 112, 0, 0x7F, -50).limit(-50, 50),
	FilterEnvVelDepth:       field("env_vel_depth", 114, 0, 0x7F, -50).limit(-50, 50),
	FilterAttack:            field("attack", 116, 0, 0x7F, 0).limit(0, 100),
	FilterDecay:             field("decay", 118, 0, 0x7F, 0).limit(0, 100),
	FilterSustain:           field("sustain", 120, 0, 0x7F, 0).limit(0, 100),
	FilterRelease:           field("release", 122, 0, 0x7F, 0).limit(0, 100),
	FilterTimeModOnVel:      field("time_mod_on_vel", 124, 0, 0x7F, -50).limit(-50, 50),
	FilterTimeModOffVel:     field("time_mod_off_vel", 126, 0, 0x7F, -50).limit(-50, 50),
	FilterTimeModKS:         field("time_mod_ks", 128, 0, 0x7F, -50).limit(-50, 50),
}

var singleLayout = register(newLayout(KindSingle, true,
	singleFields[:],
	repeat("s", singleSources, 1, sourceFields[:]),
	repeat("dca", singleSources, 1, dcaFields[:]),
	repeat("dcf", singleFilters, 1, filterFields[:]),
))

// Single is a Single Instrument: a named patch of four sources, each with
// its own amplifier envelope, and two filters.
type Single struct {
	Record
}

// NewSingle builds a Single Instrument from 131 bytes.
func NewSingle(data []byte) (*Single, error) {
	r, err := newRecord(KindSingle, data)
	if err != nil {
		return nil, err
	}
	return &Single{r}, nil
}

func (s *Single) Param(p SingleParam) int {
	return s.get(singleFields[p])
}

func (s *Single) SetParam(p SingleParam, value int) {
	s.set(singleFields[p], value)
}

// Source returns the oscillator block of source i (0 to 3).
func (s *Single) Source(i int) Source {
	checkIndex(i, singleSources)
	return Source{group{&s.Record, sourceFields[:], i}}
}

// DCA returns the amplifier block of source i (0 to 3).
func (s *Single) DCA(i int) DCA {
	checkIndex(i, singleSources)
	return DCA{group{&s.Record, dcaFields[:], i}}
}

// Filter returns DCF block i (0 or 1).
func (s *Single) Filter(i int) Filter {
	checkIndex(i, singleFilters)
	return Filter{group{&s.Record, filterFields[:], i}}
}

type Source struct{ g group }

func (s Source) Get(p SourceParam) int        { return s.g.get(int(p)) }
func (s Source) Set(p SourceParam, value int) { s.g.set(int(p), value) }

type DCA struct{ g group }

func (d DCA) Get(p DCAParam) int        { return d.g.get(int(p)) }
func (d DCA) Set(p DCAParam, value int) { d.g.set(int(p), value) }

type Filter struct{ g group }

func (f Filter) Get(p FilterParam) int        { return f.g.get(int(p)) }
func (f Filter) Set(p FilterParam, value int) { f.g.set(int(p), value) }
