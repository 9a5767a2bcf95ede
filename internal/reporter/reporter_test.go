package reporter

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestConsoleWrite(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, strings.NewReader(""))

	c.Write(Info, "plain")
	c.Write(Warning, "careful")
	c.Write(Success, "done")
	c.Write(Error, "failed")

	assert.Equal(t, "plain\ncareful\ndone\nfailed\n", out.String())
}

func TestConsolePrompt(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, strings.NewReader("yes\r\nno\n"))

	answer, err := c.Prompt("Sure? ")
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
	assert.Equal(t, "Sure? ", out.String())

	answer, err = c.Prompt("Again? ")
	require.NoError(t, err)
	assert.Equal(t, "no", answer)
}

func TestConsolePromptWithoutTrailingNewline(t *testing.T) {
	c := NewConsole(io.Discard, strings.NewReader("YES"))

	answer, err := c.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "YES", answer)
}

func TestConsolePromptEOF(t *testing.T) {
	c := NewConsole(io.Discard, strings.NewReader(""))

	_, err := c.Prompt("> ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "error", Error.String())
}
