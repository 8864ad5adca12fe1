package k4

import (
	"math/rand"
	"strings"

	"github.com/Pallinder/go-randomdata"
)

// Randomize sets the selected fields to random values between Min and Max
// and returns how many fields changed. group is a field name or a group
// such as "s2" or "dcf1." that selects every field below it; an empty group
// selects the whole record.
func (r *Record) Randomize(rng *rand.Rand, group string) int {
	n := 0
	for _, f := range r.layout.fields {
		if !inGroup(f.Name, group) {
			continue
		}
		f.Set(r.data, rng.Intn(f.Max()-f.Min()+1)+f.Min())
		n++
	}
	r.UpdateChecksum()
	return n
}

// inGroup reports whether name is group itself or lies below it. Matching
// stops at dots, so "s" does not select source_mode and "dca1" does not
// select dca10.attack.
func inGroup(name, group string) bool {
	group = strings.TrimSuffix(group, ".")
	if group == "" || name == group {
		return true
	}
	return strings.HasPrefix(name, group+".")
}

// RandomName returns an upper case adjective that fits a patch name.
func RandomName() string {
	name := strings.ToUpper(randomdata.Adjective())
	if len(name) > nameLength {
		name = name[:nameLength]
	}
	return name
}
