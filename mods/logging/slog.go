package logging

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Wrap returns a slog.Logger writing through l. filter, when not nil,
// drops the records it returns false for.
func Wrap(l Log, filter func(string, context.Context, slog.Record) bool) *slog.Logger {
	if h, ok := l.(*levelLogger); ok && h != nil {
		h.filter = filter
		return slog.New(h)
	} else {
		return slog.Default()
	}
}

func fromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	}
	return LevelError
}

func (ll *levelLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return ll.enabled(fromSlog(level))
}

// Handle writes the record message followed by key=value attributes.
func (ll *levelLogger) Handle(ctx context.Context, r slog.Record) error {
	if ll.filter != nil && !ll.filter(ll.name, ctx, r) {
		return nil
	}
	args := []any{r.Message}
	for _, a := range ll.attrs {
		args = append(args, fmt.Sprintf("%v=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		args = append(args, fmt.Sprintf("%v=%v", a.Key, a.Value))
		return true
	})
	ll.logf(fromSlog(r.Level), "", args)
	return nil
}

func (ll *levelLogger) WithAttrs(attrs []slog.Attr) slog.Handler {
	ret := &levelLogger{
		name:         ll.name,
		level:        ll.level,
		underlying:   ll.underlying,
		prefixWidth:  ll.prefixWidth,
		enableSrcLoc: ll.enableSrcLoc,
		attrs:        append(slices.Clone(ll.attrs), attrs...),
		filter:       ll.filter,
	}
	return ret
}

// WithGroup switches to the logger named by the group.
func (ll *levelLogger) WithGroup(name string) slog.Handler {
	if r, ok := GetLog(name).(*levelLogger); ok {
		return r
	}
	return ll
}
