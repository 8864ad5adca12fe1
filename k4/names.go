package k4

import "fmt"

var keyNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var effectTypeNames = [...]string{
	"REVERB 1",
	"REVERB 2",
	"REVERB 3",
	"REVERB 4",
	"GATE REVERB",
	"REVERSE GATE",
	"NORMAL DELAY",
	"STEREO PANPOT DELAY",
	"CHORUS",
	"OVERDRIVE + FLANGER",
	"OVERDRIVE + NORMAL DELAY",
	"OVERDRIVE + REVERB",
	"NORMAL DELAY + NORMAL DELAY",
	"NORMAL DELAY + STEREO PAN. DELAY",
	"CHORUS + NORMAL DELAY",
	"CHORUS + STEREO PAN. DELAY",
}

// firstDrumKey is the MIDI note of the first drum record.
const firstDrumKey = 36

// KeyName returns the note name of MIDI note n, counting octaves from C-2
// at note 0 as the K4 zone display does.
func KeyName(n int) string {
	if n < 0 || n > 127 {
		return "err"
	}
	return fmt.Sprintf("%s%d", keyNames[n%12], n/12-2)
}

// EffectTypeName returns the display name of an effect type (1 to 16).
func EffectTypeName(t int) string {
	if t < 1 || t > len(effectTypeNames) {
		return "err"
	}
	return effectTypeNames[t-1]
}

// SubmixName returns the letter of submix channel i (0 to 7).
func SubmixName(i int) string {
	if i < 0 || i >= Submixes {
		return "err"
	}
	return string(rune('A' + i))
}

// SlotName returns the front panel name of instrument slot i: A-1 to D-16.
func SlotName(i int) string {
	if i < 0 || i >= 64 {
		return "err"
	}
	return fmt.Sprintf("%c-%d", 'A'+i/16, i%16+1)
}

// SlotName returns the display name of slot i of this record kind.
func (k Kind) SlotName(i int) string {
	switch k {
	case KindSingle, KindMulti:
		return SlotName(i)
	case KindDrumCommon:
		return "common"
	case KindDrum:
		return KeyName(firstDrumKey + i)
	case KindEffect:
		return fmt.Sprintf("effect %d", i+1)
	}
	return fmt.Sprint(i)
}
