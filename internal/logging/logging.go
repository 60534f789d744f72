// Package logging wires rs/zerolog into the multi-destination, leveled
// shape of the teacher's minilog package (src/minilog/minilog.go): a
// console destination always installed, plus an optional file destination
// that only receives error-and-above records, matching minilog's
// AddLogger(level, writer) model without minilog's hand-rolled formatting.
package logging

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// New builds the console logger. verbose selects debug level; otherwise
// info. errorFile, when non-nil, adds a second destination that only
// receives error-and-above records, matching minilog's fatal-error log
// file (src/minilog/minilog.go's per-logger level filtering) without its
// hand-rolled formatting. Output is colorized through fatih/color when
// stderr is a terminal, mirroring minilog's
// colorDebug/colorWarn/colorError palette.
func New(verbose bool, errorFile io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !isTerminal(os.Stderr),
		TimeFormat: "15:04:05",
	}
	console.FormatLevel = formatLevel

	var w io.Writer = console
	if errorFile != nil {
		w = zerolog.MultiLevelWriter(console, levelFiltered{errorFile, zerolog.ErrorLevel})
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// levelFiltered drops any write whose zerolog level is below min, letting a
// single MultiLevelWriter destination receive only error-and-above records
// while the console destination still sees everything at the logger's
// configured level.
type levelFiltered struct {
	w   io.Writer
	min zerolog.Level
}

func (lf levelFiltered) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lf.min {
		return len(p), nil
	}
	return lf.w.Write(p)
}

func (lf levelFiltered) Write(p []byte) (int, error) {
	return lf.w.Write(p)
}

func formatLevel(i interface{}) string {
	level, _ := i.(string)
	switch level {
	case "debug":
		return color.BlueString("DEBUG")
	case "info":
		return color.GreenString("INFO")
	case "warn":
		return color.YellowString("WARN")
	case "error":
		return color.RedString("ERROR")
	case "fatal":
		return color.New(color.FgRed, color.Bold).Sprint("FATAL")
	default:
		return level
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
