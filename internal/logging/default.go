package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// DefaultLogger writes one line per event through the standard log package.
// Debug/Info go to the stdout writer, Warn/Error to the stderr writer.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        *levelVar
	fields       Fields
	useColors    bool
}

type levelVar struct {
	mu    sync.RWMutex
	level Level
}

func (v *levelVar) get() Level {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.level
}

func (v *levelVar) set(l Level) {
	v.mu.Lock()
	v.level = l
	v.mu.Unlock()
}

// NewDefaultLogger creates a logger writing every level to os.Stderr,
// colored when stderr is a terminal. Stdout stays free for command output.
func NewDefaultLogger() *DefaultLogger {
	l := NewWriterLogger(os.Stderr, os.Stderr, log.LstdFlags)
	l.useColors = isTerminal()
	return l
}

// NewWriterLogger creates an uncolored logger on arbitrary writers.
func NewWriterLogger(stdout, stderr io.Writer, flags int) *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(stdout, "", flags),
		stderrLogger: log.New(stderr, "", flags),
		level:        &levelVar{level: InfoLevel},
		fields:       make(Fields),
	}
}

func isTerminal() bool {
	if fileInfo, _ := os.Stderr.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	allFields := make(Fields)
	maps.Copy(allFields, d.fields)
	for _, f := range fields {
		maps.Copy(allFields, f)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", level, msg)

	if err != nil {
		fmt.Fprintf(&sb, ": %v", err)
	}

	// Sorted keys keep lines diffable.
	for _, k := range slices.Sorted(maps.Keys(allFields)) {
		fmt.Fprintf(&sb, " %s=%v", k, allFields[k])
	}

	logMsg := sb.String()
	if d.useColors {
		switch level {
		case WarnLevel:
			logMsg = colorYellow + logMsg + colorReset
		case ErrorLevel:
			logMsg = colorRed + logMsg + colorReset
		}
	}

	return logMsg
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < d.level.get() {
		return
	}

	formatted := d.formatMessage(level, err, msg, fields...)

	switch level {
	case DebugLevel, InfoLevel:
		d.stdoutLogger.Println(formatted)
	default:
		d.stderrLogger.Println(formatted)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

// WithFields returns a child logger sharing writers and level.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       newFields,
		useColors:    d.useColors,
	}
}

// SetLevel sets the minimum level for this logger and all its children.
func (d *DefaultLogger) SetLevel(level Level) {
	d.level.set(level)
}
