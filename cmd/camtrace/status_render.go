package main

import (
	"fmt"
	"io"
	"os"
	"strings"

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

func (k statusKind) label() string {
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

func (k statusKind) colors() text.Colors {
	switch k {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

const statusLabelWidth = 20

// statusWriter prints the sectioned "label: [KIND] detail" report used by the
// status command. Sections after the first are separated by a blank line.
type statusWriter struct {
	out      io.Writer
	colorize bool
	sections int
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w *statusWriter) section(title string) {
	if w.sections > 0 {
		fmt.Fprintln(w.out)
	}
	w.sections++
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if w.colorize {
		heading = text.FgBlue.Sprint(heading)
		rule = text.FgBlue.Sprint(rule)
	}
	fmt.Fprintln(w.out, heading)
	fmt.Fprintln(w.out, rule)
}

func (w *statusWriter) line(label string, kind statusKind, detail string) {
	status := "[" + kind.label() + "]"
	if detail != "" {
		status += " " + detail
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status)
	if w.colorize {
		line = kind.colors().Sprint(line)
	}
	fmt.Fprintln(w.out, line)
}

// isTerminal reports whether writer is an interactive terminal. Buffers and
// pipes are never terminals.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer) && os.Getenv("NO_COLOR") == ""
}
