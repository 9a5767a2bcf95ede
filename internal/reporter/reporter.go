package reporter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type Level int

const (
	Info Level = iota
	Warning
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Reporter interface {
	Write(level Level, text string)
}

type Prompter interface {
	// Prompt shows text and returns one line of input without its line ending.
	Prompt(text string) (string, error)
}

// Console writes styled lines to out and reads answers from in.
type Console struct {
	out    io.Writer
	in     *bufio.Reader
	styles map[Level]*color.Color
}

func NewConsole(out io.Writer, in io.Reader) *Console {
	return &Console{
		out: out,
		in:  bufio.NewReader(in),
		styles: map[Level]*color.Color{
			Warning: color.New(color.FgYellow),
			Success: color.New(color.FgGreen),
			Error:   color.New(color.FgRed),
		},
	}
}

func (c *Console) Write(level Level, text string) {
	if style, ok := c.styles[level]; ok {
		style.Fprintln(c.out, text)
		return
	}
	fmt.Fprintln(c.out, text)
}

func (c *Console) Prompt(text string) (string, error) {
	fmt.Fprint(c.out, text)

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
