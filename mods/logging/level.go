package logging

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"

	gometrics "github.com/rcrowley/go-metrics"
)

type Level int

const (
	LevelAll Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone silences a logger.
	LevelNone
)

var levelNames = [...]string{"ALL", "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "NONE"}

func (lvl Level) String() string {
	if lvl >= 0 && int(lvl) < len(levelNames) {
		return levelNames[lvl]
	}
	return "UNKNOWN"
}

// ParseLogLevelP reports false for anything but TRACE, DEBUG, INFO, WARN and
// ERROR. NONE parses to LevelNone, everything else to LevelAll.
func ParseLogLevelP(name string) (Level, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for lvl := LevelTrace; lvl <= LevelError; lvl++ {
		if levelNames[lvl] == n {
			return lvl, true
		}
	}
	if n == levelNames[LevelNone] {
		return LevelNone, false
	}
	return LevelAll, false
}

func ParseLogLevel(name string) Level {
	lvl, _ := ParseLogLevelP(name)
	return lvl
}

// Log is the leveled logger handed out by GetLog and NewLog.
type Log interface {
	TraceEnabled() bool
	Tracef(format string, args ...any)
	DebugEnabled() bool
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	WarnEnabled() bool
	Warn(args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	SetLevel(level Level)
}

type levelLogger struct {
	name         string
	level        Level
	underlying   []*logWriter
	prefixWidth  int
	enableSrcLoc bool
	// slog handler state
	attrs  []slog.Attr
	filter func(string, context.Context, slog.Record) bool
}

func newLogger(name string, writers []*logWriter) *levelLogger {
	ret := &levelLogger{
		name:       name,
		level:      GetLevel(name),
		underlying: writers,
	}
	defaults.RLock()
	ret.prefixWidth, ret.enableSrcLoc = defaults.prefixWidth, defaults.sourceLocation
	defaults.RUnlock()
	return ret
}

func (l *levelLogger) SetLevel(level Level) { l.level = level }

func (l *levelLogger) enabled(lvl Level) bool { return l.level <= lvl }

func (l *levelLogger) TraceEnabled() bool { return l.enabled(LevelTrace) }
func (l *levelLogger) DebugEnabled() bool { return l.enabled(LevelDebug) }
func (l *levelLogger) WarnEnabled() bool  { return l.enabled(LevelWarn) }

func (l *levelLogger) Tracef(format string, args ...any) { l.logf(LevelTrace, format, args) }
func (l *levelLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args) }
func (l *levelLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args) }
func (l *levelLogger) Warn(args ...any)                  { l.logf(LevelWarn, "", args) }
func (l *levelLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args) }
func (l *levelLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args) }

var lineCounters = struct {
	total, warns, errors gometrics.Counter
}{
	total:  gometrics.GetOrRegisterCounter("log.total", gometrics.DefaultRegistry),
	warns:  gometrics.GetOrRegisterCounter("log.warns", gometrics.DefaultRegistry),
	errors: gometrics.GetOrRegisterCounter("log.errors", gometrics.DefaultRegistry),
}

// Counts returns the number of lines written in total, at WARN and at ERROR.
func Counts() (total, warns, errors int64) {
	return lineCounters.total.Count(), lineCounters.warns.Count(), lineCounters.errors.Count()
}

func countLine(lvl Level) {
	lineCounters.total.Inc(1)
	switch lvl {
	case LevelWarn:
		lineCounters.warns.Inc(1)
	case LevelError:
		lineCounters.errors.Inc(1)
	}
}

const defaultPrefixWidth = 18

// defaults apply to loggers created after they are set.
var defaults = struct {
	sync.RWMutex
	level          Level
	prefixWidth    int
	sourceLocation bool
	patterns       map[string]Level
}{
	level:       LevelInfo,
	prefixWidth: defaultPrefixWidth,
	patterns:    map[string]Level{},
}

func SetDefaultLevel(lvl Level) {
	defaults.Lock()
	defaults.level = lvl
	defaults.Unlock()
}

func DefaultLevel() Level {
	defaults.RLock()
	defer defaults.RUnlock()
	return defaults.level
}

func SetDefaultEnableSourceLocation(flag bool) {
	defaults.Lock()
	defaults.sourceLocation = flag
	defaults.Unlock()
}

// SetDefaultPrefixWidth sets the width of the name column, 0 or less restores 18.
func SetDefaultPrefixWidth(width int) {
	if width <= 0 {
		width = defaultPrefixWidth
	}
	defaults.Lock()
	defaults.prefixWidth = width
	defaults.Unlock()
}

func DefaultPrefixWidth() int {
	defaults.RLock()
	defer defaults.RUnlock()
	return defaults.prefixWidth
}

// SetLevel sets the level of the loggers whose name matches pattern,
// a path.Match pattern such as "crs" or "crs.*".
func SetLevel(pattern string, lvl Level) {
	defaults.Lock()
	defaults.patterns[pattern] = lvl
	defaults.Unlock()
}

func unsetLevel(pattern string) {
	defaults.Lock()
	delete(defaults.patterns, pattern)
	defaults.Unlock()
}

// GetLevel returns the level of the longest pattern matching name, or the default level.
func GetLevel(name string) Level {
	defaults.RLock()
	defer defaults.RUnlock()
	best, ret := "", defaults.level
	for pattern, lvl := range defaults.patterns {
		if len(pattern) <= len(best) {
			continue
		}
		if ok, err := path.Match(pattern, name); ok && err == nil {
			best, ret = pattern, lvl
		}
	}
	return ret
}
