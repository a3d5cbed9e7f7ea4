package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"auditflow/internal/api"
)

// statusKind selects the tag and color for one rendered status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func (k statusKind) tag() string {
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

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

// renderStatusLine produces one aligned "label: [TAG] message" line,
// colorized by kind when writing to a terminal.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := "[" + kind.tag() + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag)
	if colorize {
		return kind.color() + line + ansiReset
	}
	return line
}

// renderSectionHeader renders a titled divider above a block of output.
func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if !colorize {
		return []string{line, rule}
	}
	return []string{ansiBlue + line + ansiReset, ansiBlue + rule + ansiReset}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func auditStateKind(state api.AuditState) statusKind {
	switch state {
	case api.AuditCompleted:
		return statusOK
	case api.AuditFailed:
		return statusError
	case api.AuditRunning:
		return statusInfo
	default:
		return statusWarn
	}
}

func benchmarkStateKind(state api.BenchmarkState) statusKind {
	switch state {
	case api.BenchmarkCompleted:
		return statusOK
	case api.BenchmarkFailed:
		return statusError
	case api.BenchmarkRunning:
		return statusInfo
	default:
		return statusWarn
	}
}

// renderAuditProgress is the one-line progress report printed on each poll.
func renderAuditProgress(status api.AuditStatus) string {
	message := status.Message
	if message == "" {
		message = string(status.State)
	}
	return fmt.Sprintf("%s%-*s [%3d%%] %s", statusIndent, statusLabelWidth, "progress:", status.Progress, message)
}
