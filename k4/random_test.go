package k4_test

import (
	"math/rand"
	"strings"
	"testing"

	. "k4edit/k4"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomizeStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, k := range Kinds {
		r := blank(t, k)
		for round := 0; round < 200; round++ {
			n := r.Randomize(rng, "")
			require.Equal(t, len(r.Fields()), n)
			require.True(t, r.Verify())
			for _, f := range r.Fields() {
				v, err := r.Get(f.Name)
				require.NoError(t, err)
				require.GreaterOrEqual(t, v, f.Min(), "%s %s", k, f.Name)
				require.LessOrEqual(t, v, f.Max(), "%s %s", k, f.Name)
			}
		}
	}
}

func TestRandomizeHardwareLimits(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s := blank(t, KindSingle)
	for round := 0; round < 500; round++ {
		s.Randomize(rng, "s1")
		fine, err := s.Get("s1.fine")
		require.NoError(t, err)
		require.LessOrEqual(t, fine, 50)
		require.GreaterOrEqual(t, fine, -50)
		coarse, err := s.Get("s1.coarse")
		require.NoError(t, err)
		require.LessOrEqual(t, coarse, 24)
	}

	e := blank(t, KindEffect)
	for round := 0; round < 500; round++ {
		e.Randomize(rng, "submix_b.pan")
		pan, err := e.Get("submix_b.pan")
		require.NoError(t, err)
		require.GreaterOrEqual(t, pan, -7)
		require.LessOrEqual(t, pan, 7)
	}
}

func TestRandomizeGroup(t *testing.T) {
	s := blank(t, KindSingle)
	s.SetName("KEEP")
	zero := blank(t, KindSingle).Values()

	n := s.Randomize(rand.New(rand.NewSource(1)), "s2.")
	assert.Equal(t, 10, n)
	assert.Equal(t, "KEEP", s.Name())
	for name, v := range s.Values() {
		if !strings.HasPrefix(name, "s2.") {
			assert.Equal(t, zero[name], v, name)
		}
	}

	for group, want := range map[string]int{
		"":       len(s.Fields()),
		"s":      0,
		"s2":     10,
		"s2.":    10,
		"volume": 1,
		"dca1":   11,
		"dcf2":   15,
		"vol":    0,
		"s2.fin": 0,
	} {
		assert.Equal(t, want, blank(t, KindSingle).Randomize(rand.New(rand.NewSource(1)), group), "group %q", group)
	}
}

func TestRandomizeGroupStopsAtDots(t *testing.T) {
	s := blank(t, KindSingle)
	zero := s.Values()
	s.Randomize(rand.New(rand.NewSource(5)), "s")
	assert.Equal(t, zero, s.Values())

	s.Randomize(rand.New(rand.NewSource(5)), "dca1")
	for name, v := range s.Values() {
		if strings.HasPrefix(name, "dca2.") || name == "source_mode" {
			assert.Equal(t, zero[name], v, name)
		}
	}
}

func TestRandomName(t *testing.T) {
	name := RandomName()
	assert.NotEmpty(t, name)
	assert.LessOrEqual(t, len(name), 10)
	assert.Equal(t, strings.ToUpper(name), name)
}
