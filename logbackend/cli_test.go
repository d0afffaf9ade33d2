package logbackend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/corert/logfacility"
)

func TestCLIWritesPlainWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	c := NewCLI(&buf)
	c.Color = false
	c.Process("[INFO] src: hello", logfacility.Info)
	require.Equal(t, "[INFO] src: hello\n", buf.String())
}

func TestCLIColorsWarningAndResets(t *testing.T) {
	var buf bytes.Buffer
	c := NewCLI(&buf)
	c.Color = true
	c.Process("[WARNING] src: careful", logfacility.Warning)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, csiYellowB))
	require.True(t, strings.HasSuffix(out, csiReset))
	require.Contains(t, out, "[WARNING] src: careful")
}

func TestCLINoColorOverridesInstanceColor(t *testing.T) {
	var buf bytes.Buffer
	c := NewCLI(&buf)
	c.Color = true

	NoColor = true
	defer func() { NoColor = false }()

	c.Process("[ERROR] src: boom", logfacility.Error)
	require.Equal(t, "[ERROR] src: boom\n", buf.String())
}
