package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func (k statusKind) String() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

var statusColors = map[statusKind]text.Colors{
	statusInfo:  {text.FgBlue},
	statusOK:    {text.FgGreen},
	statusWarn:  {text.FgYellow},
	statusError: {text.FgRed},
}

// statusLabelWidth fits a typical "Series Name v01.cbz" label.
const statusLabelWidth = 28

// statusWriter prints one aligned line per archive below the summary tables.
type statusWriter struct {
	out      io.Writer
	colorize bool
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w *statusWriter) print(label string, kind statusKind, message string) {
	fmt.Fprintln(w.out, renderStatusLine(label, kind, message, w.colorize))
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + kind.String() + "]"
	if message != "" {
		status += " " + message
	}
	line := "  " + fitLabel(label+":", statusLabelWidth) + " " + status
	if colorize {
		return statusColors[kind].Sprint(line)
	}
	return line
}

// fitLabel pads label to width terminal cells. Longer labels keep their tail,
// which for archive paths is the file name.
func fitLabel(label string, width int) string {
	if text.StringWidthWithoutEscSequences(label) > width {
		runes := []rune(label)
		for len(runes) > 0 && text.StringWidthWithoutEscSequences(string(runes))+3 > width {
			runes = runes[1:]
		}
		label = "..." + string(runes)
	}
	return text.Pad(label, width, ' ')
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
