package k4_test

import (
	"bytes"
	"errors"
	"log"
	"testing"

	. "k4edit/k4"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payloadSize = 7 + 131*64 + 77*64 + 11 + 11*61 + 35*32

// fullDump returns a valid full dump body with a few fields set.
func fullDump(t *testing.T) []byte {
	t.Helper()
	d := NewDump(3)
	d.Singles[0].SetName("PIANO 1")
	d.Singles[0].SetParam(SingleVolume, 100)
	d.Singles[63].Source(3).Set(SourceWave, 255)
	d.Multis[3].SetName("SPLIT")
	d.Multis[3].Section(2).Set(SectionLevel, 90)
	d.DrumCommon.SetParam(DrumChannel, 10)
	d.Drums[60].Source(0).Set(DrumSourceDecay, 70)
	d.Effects[31].SetParam(EffectType, 16)

	body, err := d.Encode()
	require.NoError(t, err)
	return body
}

func TestNewDumpHeader(t *testing.T) {
	d := NewDump(3)
	assert.Equal(t, []byte{0x40, 0x02, 0x22, 0x00, 0x04, 0x00, 0x00}, d.Header.Bytes())
	assert.True(t, d.IsFull())
	assert.Empty(t, d.Verify())
	assert.Equal(t, payloadSize-HeaderSize, FullDumpSize())
}

func TestDecodeSlotCounts(t *testing.T) {
	p := fullDump(t)
	require.Len(t, p, payloadSize)

	d, err := Decode(p)
	require.NoError(t, err)
	assert.Len(t, d.Singles, 64)
	assert.Len(t, d.Multis, 64)
	assert.NotNil(t, d.DrumCommon)
	assert.Len(t, d.Drums, 61)
	assert.Len(t, d.Effects, 32)
	assert.Len(t, d.Records(), 64+64+1+61+32)
	assert.Empty(t, d.Warnings)

	assert.Equal(t, "PIANO 1", d.Singles[0].Name())
	assert.Equal(t, 100, d.Singles[0].Param(SingleVolume))
	assert.Equal(t, 255, d.Singles[63].Source(3).Get(SourceWave))
	assert.Equal(t, "SPLIT", d.Multis[3].Name())
	assert.Equal(t, 90, d.Multis[3].Section(2).Get(SectionLevel))
	assert.Equal(t, 10, d.DrumCommon.Param(DrumChannel))
	assert.Equal(t, 70, d.Drums[60].Source(0).Get(DrumSourceDecay))
	assert.Equal(t, 16, d.Effects[31].Param(EffectType))
}

func TestDecodeExactLength(t *testing.T) {
	p := fullDump(t)

	_, err := Decode(append(append([]byte(nil), p...), 0x00))
	assert.ErrorIs(t, err, ErrTrailingData)

	_, err = Decode(p[:len(p)-1])
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(p[:5])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestRoundTrip(t *testing.T) {
	p := fullDump(t)
	d, err := Decode(p)
	require.NoError(t, err)

	out, err := d.Encode()
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestCorruptRecordIsFlagged(t *testing.T) {
	p := fullDump(t)
	p[HeaderSize+5*131+20] ^= 0x01

	var logs bytes.Buffer
	dec := Decoder{Log: log.New(&logs, "", 0)}
	d, err := dec.Decode(p)
	require.NoError(t, err)
	require.Len(t, d.Warnings, 1)

	var rerr *RecordError
	require.True(t, errors.As(d.Warnings[0], &rerr))
	assert.Equal(t, KindSingle, rerr.Kind)
	assert.Equal(t, 5, rerr.Index)
	assert.ErrorIs(t, d.Warnings[0], ErrChecksum)
	assert.Contains(t, logs.String(), "single #5 (A-6)")
	assert.Contains(t, logs.String(), "function=22")

	for i, r := range d.Records() {
		assert.Equal(t, i != 5, r.Verify(), "record %d", i)
	}
	assert.Len(t, d.Verify(), 1)

	out, err := d.Encode()
	require.NoError(t, err)
	assert.Empty(t, d.Verify())
	assert.NotEqual(t, p, out)
}

func TestCorruptChecksumByteIsFlagged(t *testing.T) {
	orig := fullDump(t)
	p := append([]byte(nil), orig...)
	sum := HeaderSize + 64*131 + 10*77 + 76
	p[sum] ^= 0x01

	d, err := Decode(p)
	require.NoError(t, err)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, "multi #10 (A-11): k4: checksum mismatch", d.Warnings[0].Error())

	var rerr *RecordError
	require.True(t, errors.As(d.Warnings[0], &rerr))
	assert.Equal(t, KindMulti, rerr.Kind)
	assert.Equal(t, 10, rerr.Index)
	assert.Equal(t, p[sum], d.Multis[10].Checksum())
	assert.False(t, d.Multis[10].Verify())

	// encoding recomputes the stored checksum
	out, err := d.Encode()
	require.NoError(t, err)
	assert.Equal(t, orig, out)
}

func TestDecodeOtherFunction(t *testing.T) {
	d, err := Decode([]byte{0x40, 0x00, 0x20, 0x00, 0x04, 0x00, 0x05})
	require.NoError(t, err)
	assert.False(t, d.IsFull())
	assert.Equal(t, byte(0x20), d.Header.Function)
	assert.Empty(t, d.Records())

	_, err = d.Encode()
	assert.ErrorIs(t, err, ErrUnsupportedFunction)
}

func TestDumpRecord(t *testing.T) {
	d, err := Decode(fullDump(t))
	require.NoError(t, err)

	r, err := d.Record(KindMulti, 3)
	require.NoError(t, err)
	assert.Equal(t, "SPLIT", r.Name())

	r, err = d.Record(KindDrumCommon, 0)
	require.NoError(t, err)
	assert.Equal(t, KindDrumCommon, r.Kind())

	// edits through Record reach the dump
	require.NoError(t, r.Set("volume", 33))
	assert.Equal(t, 33, d.DrumCommon.Param(DrumVolume))

	_, err = d.Record(KindDrum, 61)
	assert.ErrorIs(t, err, ErrNoSlot)
	_, err = d.Record(KindSingle, -1)
	assert.ErrorIs(t, err, ErrNoSlot)
}

func TestEncodeWith(t *testing.T) {
	p := fullDump(t)
	d, err := Decode(p)
	require.NoError(t, err)

	out, err := d.EncodeWith([]byte{0xF0}, []byte{0xF7})
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), out[0])
	assert.Equal(t, byte(0xF7), out[len(out)-1])
	assert.Equal(t, p, out[1:len(out)-1])

	d.Effects = d.Effects[:31]
	_, err = d.Encode()
	assert.ErrorIs(t, err, ErrWrongSize)
}
