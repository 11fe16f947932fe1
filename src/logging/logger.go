// Package logging is the leveled stderr logger shared by the pipeline, the reader and the viewer.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level represents severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the tag printed in front of each line, e.g. "WARN".
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
	return levelTags[l]
}

// ParseLevel maps a configured name (debug|info|warn|error, any case) to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, tag := range levelTags {
		if tag == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var currentLevel atomic.Int32

var out atomic.Pointer[log.Logger]

func init() {
	currentLevel.Store(int32(LevelInfo))
	out.Store(log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds))
}

// SetLevel sets the global level from its name. An unknown name leaves the level unchanged.
func SetLevel(s string) error {
	l, err := ParseLevel(s)
	if err != nil {
		return err
	}
	currentLevel.Store(int32(l))
	return nil
}

func GetLevel() Level { return Level(currentLevel.Load()) }

// SetOutput sends log lines to w without timestamps and returns a func restoring the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	prev := out.Swap(log.New(w, "", 0))
	return func() { out.Store(prev) }
}

func logf(l Level, format string, args ...interface{}) {
	if GetLevel() > l {
		return
	}
	// Entity names such as "European Union (27)" and shares like "42.0%" reach messages verbatim;
	// without args the text is not passed through fmt.
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	out.Load().Printf("[%s] %s", l, msg)
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// TimeTrack logs the duration of a phase at debug level. Use with defer.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start).Round(time.Millisecond))
}
