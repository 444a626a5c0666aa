package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	colorWarn  = "\033[90;43m"
	colorError = "\033[97;41m"
	colorReset = "\033[0m"
)

const timeFormat = "2006/01/02 15:04:05.000"

// logf writes one line to every writer. An empty format joins args with spaces.
func (l *levelLogger) logf(lvl Level, format string, args []any) {
	if !l.enabled(lvl) {
		return
	}
	countLine(lvl)

	var msg string
	if format == "" {
		toks := make([]string, len(args))
		for i, a := range args {
			toks[i] = fmt.Sprint(a)
		}
		msg = strings.Join(toks, " ")
	} else {
		msg = fmt.Sprintf(format, args...)
	}

	var prefix string
	if l.enableSrcLoc {
		// logf <- Warnf <- caller
		_, file, line, _ := runtime.Caller(2)
		prefix = fmt.Sprintf("%-*s %s:%d", l.prefixWidth, l.name, filepath.Base(file), line)
	} else {
		prefix = fmt.Sprintf("%-*s", l.prefixWidth, l.name)
	}

	ts := time.Now().Format(timeFormat)
	levelText := fmt.Sprintf("%-5s", lvl)
	color := ""
	switch lvl {
	case LevelWarn:
		color = colorWarn
	case LevelError:
		color = colorError
	}

	plain := fmt.Sprintf("%s %s %s %s\n", ts, levelText, prefix, msg)
	colored := plain
	if color != "" {
		colored = fmt.Sprintf("%s %s%s%s %s %s\n", ts, color, levelText, colorReset, prefix, msg)
	}
	for _, w := range l.underlying {
		if w.isTerm {
			w.Write([]byte(colored))
		} else {
			w.Write([]byte(plain))
		}
	}
}
