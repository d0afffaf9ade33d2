package logfacility

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinaryConfigRoundTrip(t *testing.T) {
	entries := []LevelEntry{
		{Name: "alpha", Level: Debug},
		{Name: "beta", Level: Fatal},
		{Name: "gamma", Level: LevelNothing},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBinaryConfig(&buf, entries))

	got, err := ReadBinaryConfig(&buf)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestReadBinaryConfigRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	_, err := ReadBinaryConfig(&buf)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTextConfigRoundTrip(t *testing.T) {
	entries := []LevelEntry{
		{Name: "alpha", Level: Warning},
		{Name: "beta", Level: Error},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTextConfig(&buf, entries))

	got, err := ReadTextConfig(&buf)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestReadTextConfigSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# header\n\n  # another comment\nalpha : info\n"
	got, err := ReadTextConfig(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []LevelEntry{{Name: "alpha", Level: Info}}, got)
}

func TestReadTextConfigRejectsMalformedLine(t *testing.T) {
	_, err := ReadTextConfig(strings.NewReader("alpha not-a-valid-line\n"))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestReadTextConfigRejectsUnknownLevelWord(t *testing.T) {
	_, err := ReadTextConfig(strings.NewReader("alpha : bogus\n"))
	require.ErrorIs(t, err, ErrInvalidFormat)
}
