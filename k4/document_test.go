package k4_test

import (
	"os"
	"path/filepath"
	"testing"

	. "k4edit/k4"
	"k4edit/midifile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"bank.mid":   FormatSMF,
		"bank.MIDI":  FormatSMF,
		"a/bank.smf": FormatSMF,
		"bank.syx":   FormatSysEx,
		"bank.SYX":   FormatSysEx,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("bank")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = FormatFromPath("bank.wav")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestContainersShareCorePayload(t *testing.T) {
	d, err := Decode(fullDump(t))
	require.NoError(t, err)

	syx, err := d.EncodeSysEx()
	require.NoError(t, err)
	smf, err := d.EncodeSMF()
	require.NoError(t, err)
	assert.True(t, midifile.IsSMF(smf))

	fromSyx, err := ReadDocument(syx, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatSysEx, fromSyx.Format)

	fromSMF, err := ReadDocument(smf, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatSMF, fromSMF.Format)
	require.NotNil(t, fromSMF.Stream.Tempo)
	assert.Equal(t, 500000, fromSMF.Stream.Tempo.MicrosecondsPerQuarter())

	a, err := fromSyx.Encode()
	require.NoError(t, err)
	b, err := fromSMF.Encode()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, syx[1:len(syx)-1], a)
}

func TestDocumentSaveOpen(t *testing.T) {
	dir := t.TempDir()

	d, err := Decode(fullDump(t))
	require.NoError(t, err)
	doc := &Document{Dump: d}

	midPath := filepath.Join(dir, "bank.mid")
	require.NoError(t, doc.Save(midPath, FormatSMF))
	opened, err := Open(midPath, nil)
	require.NoError(t, err)
	assert.Equal(t, midPath, opened.Path)
	assert.Equal(t, FormatSMF, opened.Format)
	assert.Equal(t, "PIANO 1", opened.Singles[0].Name())

	opened.Singles[0].SetName("EP")
	syxPath := filepath.Join(dir, "bank.syx")
	require.NoError(t, opened.Save(syxPath, FormatSysEx))

	raw, err := os.ReadFile(syxPath)
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), raw[0])
	assert.Equal(t, byte(0xF7), raw[len(raw)-1])

	again, err := Open(syxPath, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatSysEx, again.Format)
	assert.Equal(t, "EP", again.Singles[0].Name())
	assert.Empty(t, again.Warnings)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.syx"), nil)
	assert.Error(t, err)

	_, err = ReadDocument([]byte{0xF0, 0x40, 0x00, 0x22, 0xF7}, nil)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = ReadDocument([]byte("RIFF"), nil)
	assert.ErrorIs(t, err, midifile.ErrBadChunk)
}
